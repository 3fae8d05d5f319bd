package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

// CORS allows the local dashboard dev servers plus extra origins.
func CORS(extra []string) gin.HandlerFunc {
	allowedOrigins := originSet(extra)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		if origin != "" && allowedOrigins[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers",
			"Content-Type, Content-Length, Authorization, Accept, Origin, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods",
			"GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Max-Age", "600")

		// preflight ends before auth
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// OriginAllowed reports whether origin may open the live websocket.
func OriginAllowed(extra []string) func(origin string) bool {
	allowed := originSet(extra)
	return func(origin string) bool {
		return origin == "" || allowed[origin]
	}
}

func originSet(extra []string) map[string]bool {
	set := make(map[string]bool, len(defaultOrigins)+len(extra))
	for _, o := range append(slices.Clone(defaultOrigins), extra...) {
		set[o] = true
	}
	return set
}
