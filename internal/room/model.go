package room

import (
	"net/http"
	"time"

	"roombook/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "room not found")
	ErrNameTaken       = apperror.New(http.StatusConflict, "a room with this name already exists at the location")
	ErrInvalidCapacity = apperror.New(http.StatusBadRequest, "capacity must be at least 1")
	ErrLocationMissing = apperror.New(http.StatusNotFound, "location not found")
)

// ResourceTag is a named resource attached to a room.
type ResourceTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Room is a bookable meeting room at a location.
type Room struct {
	ID           string
	Name         string
	LocationID   string
	LocationName string
	Capacity     int
	Resources    []ResourceTag
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Filter defines parameters for listing rooms.
type Filter struct {
	LocationID  string
	Keyword     string // matched against room and location name
	MinCapacity int
	Page        int
	PageSize    int
}

// LocationStats holds per-location occupancy numbers.
type LocationStats struct {
	LocationID     string `json:"location_id"`
	LocationName   string `json:"location_name"`
	TotalRooms     int    `json:"total_rooms"`
	AvailableRooms int    `json:"available_rooms"`
	OccupiedRooms  int    `json:"occupied_rooms"`
}

// Stats summarizes room occupancy at a point in time. A room counts as
// occupied when a confirmed booking covers that instant.
type Stats struct {
	TotalRooms     int             `json:"total_rooms"`
	AvailableRooms int             `json:"available_rooms"`
	OccupiedRooms  int             `json:"occupied_rooms"`
	ByLocation     []LocationStats `json:"by_location"`
	Timestamp      time.Time       `json:"timestamp"`
}
