package http

import (
	"time"

	"roombook/internal/booking"
	"roombook/internal/pkg/request"
)

type CreateBookingRequest struct {
	RoomID               string    `json:"room_id" binding:"required,uuid"`
	StartDatetime        time.Time `json:"start_datetime" binding:"required"`
	EndDatetime          time.Time `json:"end_datetime" binding:"required"`
	HasCoffeeBreak       bool      `json:"has_coffee_break"`
	CoffeeBreakHeadcount int       `json:"coffee_break_headcount" binding:"omitempty,min=1"`
	Notes                *string   `json:"notes"`
}

type UpdateBookingRequest struct {
	StartDatetime        time.Time `json:"start_datetime" binding:"required"`
	EndDatetime          time.Time `json:"end_datetime" binding:"required"`
	HasCoffeeBreak       bool      `json:"has_coffee_break"`
	CoffeeBreakHeadcount int       `json:"coffee_break_headcount" binding:"omitempty,min=1"`
	Notes                *string   `json:"notes"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

type ListBookingsRequest struct {
	request.ListParams
	RoomID     string `form:"room_id" binding:"omitempty,uuid"`
	LocationID string `form:"location_id" binding:"omitempty,uuid"`
	ManagerID  string `form:"manager_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=pending confirmed cancelled completed"`
	Date       string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	DateFrom   string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo     string `form:"date_to" binding:"omitempty,datetime=2006-01-02"`
	Search     string `form:"search" binding:"omitempty,max=100"`
	SortBy     string `form:"sort_by" binding:"omitempty,oneof=date_booking start_datetime end_datetime status created_at"`
	SortOrder  string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

type AvailabilityRequest struct {
	Date  string `form:"date" binding:"required,datetime=2006-01-02"`
	Start string `form:"start_time" binding:"required"`
	End   string `form:"end_time" binding:"required"`
}

type BookingResponse struct {
	ID           string `json:"id"`
	RoomID       string `json:"room_id"`
	RoomName     string `json:"room_name"`
	LocationID   string `json:"location_id"`
	LocationName string `json:"location_name"`
	ManagerID    string `json:"manager_id"`
	ManagerName  string `json:"manager_name"`

	DateBooking   string    `json:"date_booking"`
	StartDatetime time.Time `json:"start_datetime"`
	EndDatetime   time.Time `json:"end_datetime"`

	HasCoffeeBreak       bool `json:"has_coffee_break"`
	CoffeeBreakHeadcount int  `json:"coffee_break_headcount"`

	Status string `json:"status"`

	ConfirmedBy        *string    `json:"confirmed_by,omitempty"`
	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty"`
	CancelledBy        *string    `json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`

	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:                   b.ID,
		RoomID:               b.RoomID,
		RoomName:             b.RoomName,
		LocationID:           b.LocationID,
		LocationName:         b.LocationName,
		ManagerID:            b.ManagerID,
		ManagerName:          b.ManagerName,
		DateBooking:          b.DateBooking.Format("2006-01-02"),
		StartDatetime:        b.StartDatetime,
		EndDatetime:          b.EndDatetime,
		HasCoffeeBreak:       b.HasCoffeeBreak,
		CoffeeBreakHeadcount: b.CoffeeBreakHeadcount,
		Status:               string(b.Status),
		ConfirmedBy:          b.ConfirmedByName,
		ConfirmedAt:          b.ConfirmedAt,
		CancelledBy:          b.CancelledByName,
		CancelledAt:          b.CancelledAt,
		CancellationReason:   b.CancellationReason,
		Notes:                b.Notes,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
	}
}

// ConflictResponse is the 409 payload when a requested interval overlaps an
// existing booking. Details describe the earliest conflicting booking.
type ConflictResponse struct {
	Message              string    `json:"message"`
	ConflictingBookingID string    `json:"conflicting_booking_id"`
	ConflictingStart     time.Time `json:"conflicting_start"`
	ConflictingEnd       time.Time `json:"conflicting_end"`
	ConflictingManager   string    `json:"conflicting_manager"`
}

func NewConflictResponse(e *booking.ConflictError) ConflictResponse {
	first := e.First()
	return ConflictResponse{
		Message:              e.Error(),
		ConflictingBookingID: first.ID,
		ConflictingStart:     first.StartDatetime,
		ConflictingEnd:       first.EndDatetime,
		ConflictingManager:   first.ManagerName,
	}
}

// SlotResponse renders an alternative slot as wall-clock times; the date is
// already fixed by the request.
type SlotResponse struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func NewSlotResponse(s booking.TimeSlot) SlotResponse {
	return SlotResponse{
		StartTime: s.StartTime.Format("15:04"),
		EndTime:   s.EndTime.Format("15:04"),
	}
}

type AvailabilityResponse struct {
	Available      bool      `json:"available"`
	RoomID         string    `json:"room_id"`
	RoomName       string    `json:"room_name"`
	RequestedDate  string    `json:"requested_date"`
	RequestedStart time.Time `json:"requested_start"`
	RequestedEnd   time.Time `json:"requested_end"`

	Message             string            `json:"message,omitempty"`
	ConflictingBookings []BookingResponse `json:"conflicting_bookings,omitempty"`
	Suggestions         []SlotResponse    `json:"suggestions,omitempty"`
}

func NewAvailabilityResponse(a *booking.Availability) AvailabilityResponse {
	resp := AvailabilityResponse{
		Available:      a.Available,
		RoomID:         a.RoomID,
		RoomName:       a.RoomName,
		RequestedDate:  a.Date.Format("2006-01-02"),
		RequestedStart: a.Requested.Start,
		RequestedEnd:   a.Requested.End,
	}
	if a.Available {
		return resp
	}

	resp.Message = (&booking.ConflictError{Conflicts: a.Conflicts}).Error()
	for _, c := range a.Conflicts {
		resp.ConflictingBookings = append(resp.ConflictingBookings, NewBookingResponse(c))
	}
	for _, s := range a.Suggestions {
		resp.Suggestions = append(resp.Suggestions, NewSlotResponse(s))
	}
	return resp
}
