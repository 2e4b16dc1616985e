package handler

import (
	"errors"
	"net/http"
	"strconv"

	"pollapp/internal/transport/httpdto"
	poll_errors "pollapp/pkg/errors"

	"github.com/gin-gonic/gin"
)

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid "+param, httpdto.CodeInvalidRequest))
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, poll_errors.ErrNotFound):
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse(err.Error(), httpdto.CodeNotFound))
	case errors.Is(err, poll_errors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), httpdto.CodeInvalidRequest))
	default:
		_ = c.Error(err)
		c.Status(http.StatusInternalServerError)
	}
}
