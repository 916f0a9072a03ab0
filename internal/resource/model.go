package resource

import (
	"net/http"
	"time"

	"roombook/internal/pkg/apperror"
)

var (
	ErrNotFound  = apperror.New(http.StatusNotFound, "resource not found")
	ErrNameTaken = apperror.New(http.StatusConflict, "resource name already in use")
)

// Resource is a piece of equipment a room can offer (projector, whiteboard, ...).
type Resource struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Filter defines parameters for listing resources.
type Filter struct {
	Keyword  string
	Page     int
	PageSize int
}
