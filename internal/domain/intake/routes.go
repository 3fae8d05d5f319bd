package intake

import (
	"github.com/gin-gonic/gin"

	"leadintake/internal/middleware"
)

// RegisterRoutes registers lead form routes under the protected group
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	sessions := r.Group("/lead-sessions")
	{
		sessions.POST("", h.Open)
		sessions.GET("/:id", h.Get)
		sessions.DELETE("/:id", h.Close)

		// Draft edits
		sessions.PUT("/:id/selection", h.Select)
		sessions.PATCH("/:id/fields", h.EditField)
		sessions.PUT("/:id/assignment", h.SetAssignment)

		// Documents
		sessions.POST("/:id/documents", h.UploadDocument)
		sessions.DELETE("/:id/documents/:index", h.RemoveDocument)

		// Submission
		sessions.POST("/:id/validate", h.Validate)
		sessions.POST("/:id/submit", h.Submit)

		// WebSocket
		sessions.GET("/:id/live", h.Live)
	}

	r.POST("/lead-forms/preview", h.Preview)
	r.GET("/lead-submissions", middleware.SuperAdminOnly(), h.ListSubmissions)
}
