package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// userIDKey and emailKey are the gin context keys set by Middleware.
	userIDKey = "auth.userID"
	emailKey  = "auth.email"
)

// Middleware rejects requests without a valid access-token bearer
// credential. Expired and malformed tokens both yield 401 so the client's
// refresh-and-retry protocol engages.
func Middleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := VerifyToken(secret, token, TokenUseAccess)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(userIDKey, claims.Subject)
		c.Set(emailKey, claims.Email)
		c.Next()
	}
}

// UserID returns the authenticated user id set by Middleware.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// Email returns the authenticated email set by Middleware.
func Email(c *gin.Context) string {
	return c.GetString(emailKey)
}
