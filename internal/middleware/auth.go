package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"leadintake/internal/pkg/jwt"
	"leadintake/internal/pkg/response"
)

// Context keys set by JWTAuth.
const (
	KeyUserID    = "user_id"
	KeyRole      = "role"
	KeyUserName  = "user_name"
	KeyUserEmail = "user_email"
	KeyToken     = "token"
)

// JWTAuth verifies the dashboard bearer token and stores the caller in the
// gin context. Websocket upgrades may pass the token as ?token= instead.
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, code, msg := bearerToken(c)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, code, msg)
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set(KeyUserID, claims.UserID)
		c.Set(KeyRole, claims.Role)
		c.Set(KeyUserName, claims.Name)
		c.Set(KeyUserEmail, claims.Email)
		c.Set(KeyToken, token)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (token, code, msg string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if isWebsocketUpgrade(c) {
			if q := strings.TrimSpace(c.Query("token")); q != "" {
				return q, "", ""
			}
		}
		return "", "AUTH_HEADER_MISSING", "Authorization header is required"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'"
	}
	return strings.TrimSpace(parts[1]), "", ""
}

func isWebsocketUpgrade(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}
