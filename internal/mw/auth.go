package mw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"maintenance-checklist-backend/internal/auth"
)

// UserIDKey is the gin context key carrying the authenticated user ID.
const UserIDKey = "currentUserId"

// RequireAuth verifies the bearer token and stores the calling user's
// ID on the request context.
func RequireAuth(m *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}

		userID, err := m.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}
