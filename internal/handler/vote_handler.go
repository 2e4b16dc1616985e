package handler

import (
	"net/http"

	"pollapp/internal/domain/poll"
	"pollapp/internal/services"
	"pollapp/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	service *services.PollService
}

func NewVoteHandler(service *services.PollService) *VoteHandler {
	return &VoteHandler{service: service}
}

func (h *VoteHandler) List(c *gin.Context) {
	votes := h.service.ListVotes(c.Request.Context())

	dtos := make([]httpdto.VoteDTO, 0, len(votes))
	for _, v := range votes {
		dtos = append(dtos, h.toDTO(c, v))
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(dtos))
}

// Create casts a vote. Earlier votes of the same user stay in place; to
// change a vote the client deletes the old one.
func (h *VoteHandler) Create(c *gin.Context) {
	var req httpdto.CreateVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", httpdto.CodeInvalidRequest))
		return
	}

	created := h.service.CreateVote(c.Request.Context(), req.ToDomain())
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(h.toDTO(c, created)))
}

func (h *VoteHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	v, err := h.service.GetVote(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(h.toDTO(c, v)))
}

// Delete removes a vote. Unknown ids succeed.
func (h *VoteHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	h.service.DeleteVote(c.Request.Context(), id)
	c.Status(http.StatusNoContent)
}

func (h *VoteHandler) toDTO(c *gin.Context, v poll.Vote) httpdto.VoteDTO {
	ctx := c.Request.Context()

	var user *poll.User
	if u, err := h.service.GetUser(ctx, v.UserID); err == nil {
		user = &u
	}
	var option *poll.VoteOption
	if o, err := h.service.GetVoteOption(ctx, v.VoteOptionID); err == nil {
		option = &o
	}
	return httpdto.FromVote(v, user, option)
}
