package http

import (
	"time"

	"roombook/internal/location"
)

type CreateLocationRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Address     string `json:"address" binding:"required,max=100"`
	City        string `json:"city" binding:"required,max=100"`
	State       string `json:"state" binding:"required,len=2"`
	CEP         string `json:"cep" binding:"required"`
	Description string `json:"description" binding:"omitempty,max=512"`
}

type UpdateLocationRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Address     *string `json:"address" binding:"omitempty,max=100"`
	City        *string `json:"city" binding:"omitempty,max=100"`
	State       *string `json:"state" binding:"omitempty,len=2"`
	CEP         *string `json:"cep"`
	Description *string `json:"description" binding:"omitempty,max=512"`
	IsActive    *bool   `json:"is_active"`
}

type ListLocationsRequest struct {
	Page     int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	Keyword  string `form:"keyword"`
}

// LocationTag is the compact location reference embedded in other modules' responses.
type LocationTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type LocationResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	CEP         string    `json:"cep"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewLocationResponse(l *location.Location) LocationResponse {
	return LocationResponse{
		ID:          l.ID,
		Name:        l.Name,
		Address:     l.Address,
		City:        l.City,
		State:       l.State,
		CEP:         l.CEP,
		Description: l.Description,
		IsActive:    l.IsActive,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}
