package handler

import (
	"net/http"

	"pollapp/internal/domain/poll"
	"pollapp/internal/services"
	"pollapp/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type PollHandler struct {
	service *services.PollService
}

func NewPollHandler(service *services.PollService) *PollHandler {
	return &PollHandler{service: service}
}

func (h *PollHandler) List(c *gin.Context) {
	polls := h.service.ListPolls(c.Request.Context())

	dtos := make([]httpdto.PollDTO, 0, len(polls))
	for _, p := range polls {
		dtos = append(dtos, h.toDTO(c, p))
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(dtos))
}

// Create stores the poll. Options embedded in the body are not persisted
// and do not appear in the response.
func (h *PollHandler) Create(c *gin.Context) {
	var req httpdto.CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", httpdto.CodeInvalidRequest))
		return
	}

	p, drafts := req.ToDomain()
	created := h.service.CreatePoll(c.Request.Context(), p, drafts)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(h.toDTO(c, created)))
}

func (h *PollHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetPoll(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(h.toDTO(c, p)))
}

func (h *PollHandler) Options(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	options, err := h.service.PollOptions(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromVoteOptionSlice(options)))
}

// Delete removes the poll with its options and votes. Unknown ids succeed.
func (h *PollHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	h.service.DeletePoll(c.Request.Context(), id)
	c.Status(http.StatusNoContent)
}

// Results returns option id -> vote count for the poll.
func (h *PollHandler) Results(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	counts := h.service.VoteCounts(c.Request.Context(), id)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromVoteCounts(counts)))
}

func (h *PollHandler) toDTO(c *gin.Context, p poll.Poll) httpdto.PollDTO {
	ctx := c.Request.Context()

	var creator *poll.User
	if p.CreatorID != 0 {
		if u, err := h.service.GetUser(ctx, p.CreatorID); err == nil {
			creator = &u
		}
	}
	options, _ := h.service.PollOptions(ctx, p.ID)
	return httpdto.FromPoll(p, creator, options)
}
