package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers room routes. Reads are open to any authenticated
// user; the stats board needs manager or admin, writes need admin.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, managerMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/rooms")
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/stats", managerMiddleware, h.Stats)
		group.GET("/:id", h.Get)

		group.POST("", adminMiddleware, h.Create)
		group.PATCH("/:id", adminMiddleware, h.Update)
		group.DELETE("/:id", adminMiddleware, h.Delete)
	}
}
