package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"roombook/internal/auth"
	"roombook/internal/booking"
	bookingHttp "roombook/internal/booking/http"
	"roombook/internal/location"
	locationHttp "roombook/internal/location/http"
	"roombook/internal/resource"
	resourceHttp "roombook/internal/resource/http"
	"roombook/internal/room"
	roomHttp "roombook/internal/room/http"
	"roombook/internal/user"
	userHttp "roombook/internal/user/http"
)

// Config holds the services and settings the router needs.
type Config struct {
	IsProduction bool
	ProdOrigins  string // comma-separated allowed origins in production

	UserService     user.Service
	LocationService location.Service
	ResourceService resource.Service
	RoomService     room.Service
	BookingService  booking.Service

	JWTManager *auth.JWTManager
}

// NewRouter assembles middleware (CORS, logging, recovery, auth) and
// registers every module's routes under /v1.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	managerMiddleware := RequireManager(cfg.UserService)
	adminMiddleware := RequireAdmin(cfg.UserService)

	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	locationHandler := locationHttp.NewHandler(cfg.LocationService)
	resourceHandler := resourceHttp.NewHandler(cfg.ResourceService)
	roomHandler := roomHttp.NewHandler(cfg.RoomService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, adminMiddleware)
		locationHttp.RegisterRoutes(v1, locationHandler, authMiddleware, adminMiddleware)
		resourceHttp.RegisterRoutes(v1, resourceHandler, authMiddleware, adminMiddleware)
		roomHttp.RegisterRoutes(v1, roomHandler, authMiddleware, managerMiddleware, adminMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, managerMiddleware)
	}

	return r
}
