package booking

import (
	"fmt"
	"net/http"
	"time"

	"roombook/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "booking not found")
	ErrTimeConflict      = apperror.New(http.StatusConflict, "time slot already booked")
	ErrInvalidTimeRange  = apperror.New(http.StatusBadRequest, "end time must be after start time")
	ErrInvalidTimeFormat = apperror.New(http.StatusBadRequest, "invalid time format, use HH:MM (e.g. 09:00, 14:30)")
	ErrInvalidDateFormat = apperror.New(http.StatusBadRequest, "invalid date format, use YYYY-MM-DD")
	ErrRoomNotFound      = apperror.New(http.StatusNotFound, "room not found")
	ErrPermissionDenied  = apperror.New(http.StatusForbidden, "permission denied")
	ErrInvalidHeadcount  = apperror.New(http.StatusBadRequest, "coffee break headcount must be at least 1")

	// Lifecycle precondition failures. These describe the state the booking
	// had to be in for the transition to be legal.
	ErrNotPending       = apperror.New(http.StatusBadRequest, "only pending bookings may be confirmed")
	ErrAlreadyCancelled = apperror.New(http.StatusBadRequest, "booking is already cancelled")
	ErrAlreadyCompleted = apperror.New(http.StatusBadRequest, "completed bookings cannot be cancelled")
	ErrNotConfirmed     = apperror.New(http.StatusBadRequest, "only confirmed bookings may be completed")
)

// Status is the closed set of booking states.
//
// Legal transitions: pending -> confirmed, pending|confirmed -> cancelled,
// confirmed -> completed. cancelled and completed are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Blocks reports whether a booking in this status occupies its time slot.
// Cancelled and completed bookings free the room.
func (s Status) Blocks() bool {
	return s != StatusCancelled && s != StatusCompleted
}

// Booking is a reservation of a room for a time interval.
type Booking struct {
	ID           string
	RoomID       string
	RoomName     string
	LocationID   string
	LocationName string
	ManagerID    string // the requesting user
	ManagerName  string

	DateBooking   time.Time // calendar date of the reservation
	StartDatetime time.Time
	EndDatetime   time.Time

	HasCoffeeBreak       bool
	CoffeeBreakHeadcount int

	Status Status

	ConfirmedBy        *string
	ConfirmedByName    *string
	ConfirmedAt        *time.Time
	CancelledBy        *string
	CancelledByName    *string
	CancelledAt        *time.Time
	CancellationReason *string

	Notes    *string
	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Range returns the booking's interval.
func (b *Booking) Range() TimeRange {
	return TimeRange{Start: b.StartDatetime, End: b.EndDatetime}
}

// ConflictError reports that a requested interval overlaps existing active
// bookings. It carries the full conflict set; the first entry feeds the
// human-readable message and the structured payload.
type ConflictError struct {
	Conflicts []*Booking
}

func (e *ConflictError) Error() string {
	c := e.Conflicts[0]
	return fmt.Sprintf(
		"time conflict: room %q is already booked from %s to %s on %s",
		c.RoomName,
		c.StartDatetime.Format("15:04"),
		c.EndDatetime.Format("15:04"),
		c.DateBooking.Format("02/01/2006"),
	)
}

// First returns the earliest conflicting booking.
func (e *ConflictError) First() *Booking {
	return e.Conflicts[0]
}

// Filter defines filter options for listing bookings.
type Filter struct {
	ManagerID  string
	RoomID     string
	LocationID string
	Status     string
	Date       *time.Time // exact booking date
	DateFrom   *time.Time
	DateTo     *time.Time
	Search     string // matched against room, location and manager names

	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
