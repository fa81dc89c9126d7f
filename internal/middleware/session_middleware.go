package middleware

import (
	"net/http"
	"time"

	"telemed-chat/internal/session"
	"telemed-chat/internal/transport/httpdto"
	"telemed-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionContextKey = "chat.session"

type SessionOptions struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// SessionMiddleware binds the request to the session named by the session
// cookie, starting a new one when the cookie is missing or malformed.
func SessionMiddleware(store session.Store, opts SessionOptions, l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(opts.CookieName)
		started := err != nil || uuid.Validate(id) != nil
		if started {
			id = uuid.NewString()
		}

		if err := store.Touch(c.Request.Context(), id); err != nil {
			if l != nil {
				l.WithContext(c.Request.Context()).Sugar().Errorf("session store unavailable: %v", err)
			}
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse("session store unavailable", "UNAVAILABLE"))
			c.Abort()
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(opts.CookieName, id, int(opts.TTL.Seconds()), "/", "", opts.Secure, true)
		sess := session.New(id, store)
		if started && l != nil {
			l.Debugf("started session %s", sess.ID())
		}
		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

// SessionFromContext returns the session bound by SessionMiddleware.
func SessionFromContext(c *gin.Context) (*session.Session, bool) {
	value, ok := c.Get(sessionContextKey)
	if !ok {
		return nil, false
	}
	s, ok := value.(*session.Session)
	return s, ok
}
