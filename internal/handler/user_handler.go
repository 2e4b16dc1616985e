package handler

import (
	"net/http"

	"pollapp/internal/services"
	"pollapp/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service *services.PollService
}

func NewUserHandler(service *services.PollService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) List(c *gin.Context) {
	users := h.service.ListUsers(c.Request.Context())
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromUserSlice(users)))
}

func (h *UserHandler) Create(c *gin.Context) {
	var req httpdto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", httpdto.CodeInvalidRequest))
		return
	}

	created := h.service.CreateUser(c.Request.Context(), req.ToDomain())
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromUser(created)))
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	u, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromUser(u)))
}

// Delete removes the user and everything it owns. Unknown ids succeed.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	h.service.DeleteUser(c.Request.Context(), id)
	c.Status(http.StatusNoContent)
}
