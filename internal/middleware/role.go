package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"leadintake/internal/pkg/response"
)

// RequireRole ensures that the authenticated user has one of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(KeyRole)
		if role == "" {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			return
		}

		if !slices.Contains(roles, role) {
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			return
		}

		c.Next()
	}
}

// SuperAdminOnly requires the super_admin role
func SuperAdminOnly() gin.HandlerFunc {
	return RequireRole("super_admin")
}
