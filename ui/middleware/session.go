package middleware

import (
	"context"
	"net/http"

	"aireliance/internal"
	apperrors "aireliance/internal/errors"
	"aireliance/internal/experiment"

	"github.com/gin-gonic/gin"
)

const sessionKey = "experiment.session"

// SessionFinder resolves a participant ID to its live session
type SessionFinder interface {
	GetSession(ctx context.Context, rawID string) (*experiment.Session, error)
}

// LoadSession resolves the :id route parameter and stores the session on the
// context. Unknown or malformed IDs end the request with 404.
func LoadSession(finder SessionFinder, logger *internal.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	logger = logger.With("LoadSession")

	return func(c *gin.Context) {
		session, err := finder.GetSession(c.Request.Context(), c.Param("id"))
		if err != nil {
			logger.Debug("lookup failed for %q: %v", c.Param("id"), err)
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error": "session not found",
				"code":  apperrors.CodeNotFound,
			})
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

// Session returns the session loaded by LoadSession
func Session(c *gin.Context) *experiment.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*experiment.Session)
	return session
}
