package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roombook/internal/auth"
	"roombook/internal/user"
)

// RequireManager ensures the authenticated user may manage bookings
// (manager or admin role). MUST be used after auth.AuthRequired.
// The role is re-read from the database so a demotion takes effect
// immediately instead of at token expiry.
func RequireManager(userService user.Service) gin.HandlerFunc {
	return requireRole(userService, func(r user.Role) bool {
		return r.CanManageBookings()
	}, "manager access required")
}

// RequireAdmin ensures the authenticated user is an admin.
// MUST be used after auth.AuthRequired.
func RequireAdmin(userService user.Service) gin.HandlerFunc {
	return requireRole(userService, func(r user.Role) bool {
		return r.CanAdministrate()
	}, "admin access required")
}

func requireRole(userService user.Service, allowed func(user.Role) bool, denyMsg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.GetUserID(c)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		u, err := userService.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}

		if !allowed(u.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: " + denyMsg})
			return
		}

		// Downstream handlers trust this over the token claim.
		c.Set("userRole", string(u.Role))

		c.Next()
	}
}
