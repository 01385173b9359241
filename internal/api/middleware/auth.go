package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/princeprakhar/game-reviews-backend/internal/models"
	"github.com/princeprakhar/game-reviews-backend/internal/utils"
)

const (
	SessionCookie = "session"
	userKey       = "user"
)

// SessionParser turns a session token into the signed-in user.
type SessionParser interface {
	ParseSession(token string) (*models.User, error)
}

// sessionToken reads the bearer token, falling back to the session cookie.
func sessionToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// AuthMiddleware rejects requests without a valid session.
func AuthMiddleware(sessions SessionParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			utils.SendUnauthorized(c, "Authentication required")
			c.Abort()
			return
		}

		user, err := sessions.ParseSession(token)
		if err != nil {
			utils.SendUnauthorized(c, "Invalid or expired session")
			c.Abort()
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin {
			utils.SendForbidden(c, "Admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
