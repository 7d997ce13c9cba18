package middlewares

import (
	"net/http"
	"strings"

	"devarena/internal/models"
	"devarena/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	userContextKey     = "userID"
	usernameContextKey = "username"
	emailContextKey    = "email"
	roleContextKey     = "role"
)

// AuthMiddleware creates a middleware that enforces authentication.
// It validates the access token from the cookie and sets the user identity
// in the context.
func AuthMiddleware(tokenService *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie("access_token")
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
			c.Abort()
			return
		}

		claims, err := tokenService.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(userContextKey, claims.UserID)
		c.Set(usernameContextKey, claims.Username)
		c.Set(emailContextKey, claims.Email)
		c.Set(roleContextKey, claims.Role)
		c.Next()
	}
}

// OptionalAuthMiddleware checks for authentication but doesn't enforce it.
// If a valid token is present, it sets the user identity in the context.
// Otherwise, it continues without it.
func OptionalAuthMiddleware(tokenService *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie("access_token")
		if err != nil || strings.TrimSpace(tokenString) == "" {
			c.Next()
			return
		}

		claims, err := tokenService.ValidateToken(tokenString)
		if err == nil && claims != nil {
			c.Set(userContextKey, claims.UserID)
			c.Set(usernameContextKey, claims.Username)
			c.Set(roleContextKey, claims.Role)
		}

		c.Next()
	}
}

// AdminMiddleware rejects requests from non-admin users. Must run after
// AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(roleContextKey)
		if !ok || role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserIDFromContext returns the authenticated user's ID, or 0 when the
// request is anonymous.
func UserIDFromContext(c *gin.Context) int {
	if v, ok := c.Get(userContextKey); ok {
		if id, ok := v.(int); ok {
			return id
		}
	}
	return 0
}
