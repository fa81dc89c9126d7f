package handler

import (
	"errors"
	"net/http"

	"telemed-chat/internal/transport/httpdto"
	telemed_errors "telemed-chat/pkg/errors"

	"github.com/gin-gonic/gin"
)

var errorStatuses = []struct {
	err    error
	status int
	code   string
	detail bool
}{
	{telemed_errors.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED", false},
	{telemed_errors.ErrForbidden, http.StatusForbidden, "FORBIDDEN", false},
	{telemed_errors.ErrNotFound, http.StatusNotFound, "NOT_FOUND", false},
	{telemed_errors.ErrInvalidInput, http.StatusBadRequest, "INVALID_REQUEST", true},
	{telemed_errors.ErrTooLarge, http.StatusRequestEntityTooLarge, "TOO_LARGE", true},
	{telemed_errors.ErrAlreadyExists, http.StatusConflict, "CONFLICT", false},
	{telemed_errors.ErrConflict, http.StatusConflict, "CONFLICT", false},
	{telemed_errors.ErrServiceUnavailable, http.StatusServiceUnavailable, "UNAVAILABLE", false},
}

// writeError maps service errors onto HTTP statuses. Anything unknown is a
// 500; the error is attached to the context for the error middleware to log
// and its text never reaches the client.
func writeError(c *gin.Context, err error) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			msg := e.err.Error()
			if e.detail {
				msg = err.Error()
			}
			c.JSON(e.status, httpdto.NewErrorResponse(msg, e.code))
			return
		}
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("internal error", "INTERNAL_ERROR"))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(msg, "INVALID_REQUEST"))
}
