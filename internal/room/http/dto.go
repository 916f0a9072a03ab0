package http

import (
	"time"

	"roombook/internal/room"
)

type CreateRoomRequest struct {
	Name        string   `json:"name" binding:"required,max=100"`
	LocationID  string   `json:"location_id" binding:"required,uuid"`
	Capacity    int      `json:"capacity" binding:"required,min=1"`
	ResourceIDs []string `json:"resource_ids" binding:"omitempty,dive,uuid"`
}

type UpdateRoomRequest struct {
	Name        *string  `json:"name" binding:"omitempty,max=100"`
	Capacity    *int     `json:"capacity" binding:"omitempty,min=1"`
	IsActive    *bool    `json:"is_active"`
	ResourceIDs []string `json:"resource_ids" binding:"omitempty,dive,uuid"`
}

type ListRoomsRequest struct {
	Page        int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	LocationID  string `form:"location_id" binding:"omitempty,uuid"`
	Keyword     string `form:"keyword"`
	MinCapacity int    `form:"min_capacity" binding:"omitempty,min=1"`
}

type RoomResponse struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	LocationID   string             `json:"location_id"`
	LocationName string             `json:"location_name"`
	Capacity     int                `json:"capacity"`
	Resources    []room.ResourceTag `json:"resources"`
	IsActive     bool               `json:"is_active"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func NewRoomResponse(rm *room.Room) RoomResponse {
	resources := rm.Resources
	if resources == nil {
		resources = make([]room.ResourceTag, 0)
	}

	return RoomResponse{
		ID:           rm.ID,
		Name:         rm.Name,
		LocationID:   rm.LocationID,
		LocationName: rm.LocationName,
		Capacity:     rm.Capacity,
		Resources:    resources,
		IsActive:     rm.IsActive,
		CreatedAt:    rm.CreatedAt,
		UpdatedAt:    rm.UpdatedAt,
	}
}
