package websocket

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"pollapp/internal/domain/poll"
	"pollapp/internal/events"
	"pollapp/internal/transport/httpdto"
	poll_errors "pollapp/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// PollLookup checks that a poll exists before a client may watch it.
type PollLookup interface {
	GetPoll(ctx context.Context, id int64) (poll.Poll, error)
}

type Handler struct {
	polls    PollLookup
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewHandler(polls PollLookup, hub *Hub) *Handler {
	return &Handler{
		polls: polls,
		hub:   hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Live streams the events of one poll to the connection until it closes.
func (h *Handler) Live(c *gin.Context) {
	pollID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid poll id", httpdto.CodeInvalidRequest))
		return
	}
	if _, err := h.polls.GetPoll(c.Request.Context(), pollID); err != nil {
		if errors.Is(err, poll_errors.ErrNotFound) {
			c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("poll not found", httpdto.CodeNotFound))
			return
		}
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(err.Error(), httpdto.CodeInternal))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := NewClient(conn)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client, events.PollChannel(pollID))
	go client.WriteLoop(ctx)

	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
	}

	h.hub.Unregister(client)
}
