package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers booking routes. All routes require
// authentication; the lifecycle transitions (confirm, cancel, complete)
// additionally require the manager or admin role.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, managerMiddleware gin.HandlerFunc) {
	group := g.Group("/bookings")
	group.Use(authMiddleware)
	{
		group.POST("", h.Create)
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.PATCH("/:id", h.Update)
		group.DELETE("/:id", h.Delete)

		group.GET("/pending", h.ListPending)

		group.POST("/:id/confirm", managerMiddleware, h.Confirm)
		group.POST("/:id/cancel", managerMiddleware, h.Cancel)
		group.POST("/:id/complete", managerMiddleware, h.Complete)
	}

	// Free/busy lookup lives under the room resource.
	rooms := g.Group("/rooms")
	rooms.Use(authMiddleware)
	{
		rooms.GET("/:id/availability", h.Availability)
	}
}
