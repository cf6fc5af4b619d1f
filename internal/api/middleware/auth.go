package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const sessionKey = "session"

type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (domain.Session, error)
}

// BasicAuth resolves HTTP Basic credentials into a session stored on the
// gin context. Authenticator errors matching invalid answer 401; any other
// error answers 500.
func BasicAuth(auth Authenticator, realm string, invalid error) gin.HandlerFunc {
	challenge := "Basic realm=" + strconv.Quote(realm)
	return func(c *gin.Context) {
		email, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", challenge)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		session, err := auth.Authenticate(c.Request.Context(), email, password)
		if err != nil {
			if invalid == nil || !errors.Is(err, invalid) {
				log.Error().Err(err).Msg("authentication failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "authentication unavailable"})
				return
			}
			c.Header("WWW-Authenticate", challenge)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// RequireAdmin rejects callers whose session is not an admin one.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !SessionFrom(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

// SessionFrom returns the authenticated session, or a zero session (which is
// restricted and sees no stores) when none was set.
func SessionFrom(c *gin.Context) domain.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(domain.Session); ok {
			return s
		}
	}
	return domain.Session{}
}
