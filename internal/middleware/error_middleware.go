package middleware

import (
	"net/http"

	"telemed-chat/internal/transport/httpdto"
	"telemed-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler logs errors attached by handlers and answers with a 500 when
// nothing has been written yet.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		if l != nil {
			l.WithContext(c.Request.Context()).Sugar().Errorf("request error: %s", err.Error())
		}
		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("internal error", "INTERNAL_ERROR"))
		}
	}
}
