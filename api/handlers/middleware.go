// Package handlers contains the gin HTTP handlers for the v1 API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const userIDContextKey = "userID"

// RequireUser extracts the caller identity from the X-User-ID header.
// Requests without one are rejected with 401.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(userIDContextKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated caller id set by RequireUser.
func UserID(c *gin.Context) string {
	return c.GetString(userIDContextKey)
}
