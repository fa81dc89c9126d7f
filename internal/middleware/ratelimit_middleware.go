package middleware

import (
	"context"
	"net/http"
	"strconv"

	"telemed-chat/internal/redis"
	"telemed-chat/internal/services"
	"telemed-chat/internal/transport/httpdto"
	"telemed-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

// LimitFunc consumes one unit of a user's quota.
type LimitFunc func(ctx context.Context, userID string) (*redis.RateLimitResult, error)

// RateLimitMiddleware applies check to the authenticated caller. It must run
// after AuthMiddleware. When the limiter itself fails the request is let
// through.
func RateLimitMiddleware(check LimitFunc, l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := services.UserIDFromContext(c.Request.Context())
		if !ok || check == nil {
			c.Next()
			return
		}

		result, err := check(c.Request.Context(), userID.String())
		if err != nil {
			if l != nil {
				l.WithContext(c.Request.Context()).Sugar().Warnf("rate limit check failed: %v", err)
			}
			c.Next()
			return
		}

		setRateLimitHeaders(c, result)

		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, httpdto.NewErrorResponse("rate limit exceeded", "RATE_LIMITED"))
			c.Abort()
			return
		}

		c.Next()
	}
}

func setRateLimitHeaders(c *gin.Context, result *redis.RateLimitResult) {
	if result.Limit <= 0 {
		return
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(result.ResetIn.Seconds()), 10))
}
