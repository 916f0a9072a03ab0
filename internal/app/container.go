package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"roombook/internal/api"
	"roombook/internal/auth"
	"roombook/internal/booking"
	"roombook/internal/location"
	"roombook/internal/resource"
	"roombook/internal/room"
	"roombook/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	JWTSecret    string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	BcryptCost   int

	BusinessHoursStart string
	BusinessHoursEnd   string
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)

	// User module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// Location module
	locRepo := location.NewPgxRepository(cfg.DBPool)
	locService := location.NewService(locRepo)

	// Resource module
	resRepo := resource.NewPgxRepository(cfg.DBPool)
	resService := resource.NewService(resRepo)

	// Room module
	roomRepo := room.NewPgxRepository(cfg.DBPool)
	roomService := room.NewService(roomRepo, locService)

	// Booking module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, roomService, cfg.BusinessHoursStart, cfg.BusinessHoursEnd)

	router := api.NewRouter(api.Config{
		IsProduction:    cfg.IsProduction,
		ProdOrigins:     cfg.ProdOrigins,
		UserService:     userService,
		LocationService: locService,
		ResourceService: resService,
		RoomService:     roomService,
		BookingService:  bookingService,
		JWTManager:      jwtManager,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
	}
}
