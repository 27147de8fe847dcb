package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookieName is the cookie carrying the anonymous storefront session.
	SessionCookieName = "fram_session"

	// SessionIDKey is the gin context key holding the resolved session ID.
	SessionIDKey = "session_id"

	sessionCookieMaxAge = 60 * 60 * 24 * 30 // 30 days
)

// SessionMiddleware resolves the caller's cart session. Every visitor gets a
// session cookie on first contact; no login is involved.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookieName)
		if err != nil || sessionID == "" || uuid.Validate(sessionID) != nil {
			sessionID = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookieName, sessionID, sessionCookieMaxAge, "/", "", false, true)

			log := GetLoggerFromContext(c)
			log.Debug("Issued new cart session", map[string]interface{}{
				"session_id": sessionID,
			})
		}

		c.Set(SessionIDKey, sessionID)
		c.Next()
	}
}

// GetSessionID extracts the session ID from context
func GetSessionID(c *gin.Context) (string, bool) {
	sessionID, exists := c.Get(SessionIDKey)
	if !exists {
		return "", false
	}
	id, ok := sessionID.(string)
	return id, ok && id != ""
}
