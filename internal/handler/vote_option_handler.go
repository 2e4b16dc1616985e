package handler

import (
	"net/http"

	"pollapp/internal/services"
	"pollapp/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type VoteOptionHandler struct {
	service *services.PollService
}

func NewVoteOptionHandler(service *services.PollService) *VoteOptionHandler {
	return &VoteOptionHandler{service: service}
}

func (h *VoteOptionHandler) List(c *gin.Context) {
	options := h.service.ListVoteOptions(c.Request.Context())
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromVoteOptionSlice(options)))
}

func (h *VoteOptionHandler) Create(c *gin.Context) {
	var req httpdto.CreateVoteOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", httpdto.CodeInvalidRequest))
		return
	}

	created := h.service.CreateVoteOption(c.Request.Context(), req.ToDomain())
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromVoteOption(created)))
}

func (h *VoteOptionHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	o, err := h.service.GetVoteOption(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromVoteOption(o)))
}
