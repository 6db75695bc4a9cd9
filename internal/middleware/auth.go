package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/taste-records-go/pkg/response"
)

// SessionCookie is the name of the cookie that carries the session token
const SessionCookie = "session"

const userIDKey = "userID"

// TokenParser validates a session token and returns its user ID
type TokenParser interface {
	ParseToken(token string) (int64, error)
}

// RequireSession rejects requests without a valid session cookie
func RequireSession(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			response.Unauthorized(c, "Login required")
			return
		}

		userID, err := parser.ParseToken(token)
		if err != nil {
			response.Unauthorized(c, "Session expired, please log in again")
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user ID set by RequireSession
func UserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}
