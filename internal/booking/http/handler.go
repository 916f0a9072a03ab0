package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"roombook/internal/auth"
	"roombook/internal/booking"
	"roombook/internal/pkg/request"
	"roombook/internal/pkg/response"
	"roombook/internal/user"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

func actor(c *gin.Context) (string, user.Role) {
	return auth.GetUserID(c), user.Role(auth.GetUserRole(c))
}

// writeError renders booking errors, upgrading conflicts to the structured
// 409 payload so clients can point at the booking that is in the way.
func writeError(c *gin.Context, err error) {
	var conflict *booking.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, NewConflictResponse(conflict))
		return
	}
	response.Error(c, err)
}

// Create makes a new pending booking for the authenticated user.
func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	userID, _ := actor(c)

	b := &booking.Booking{
		RoomID:               req.RoomID,
		ManagerID:            userID,
		StartDatetime:        req.StartDatetime.UTC(),
		EndDatetime:          req.EndDatetime.UTC(),
		HasCoffeeBreak:       req.HasCoffeeBreak,
		CoffeeBreakHeadcount: req.CoffeeBreakHeadcount,
		Notes:                req.Notes,
	}

	if err := h.service.Create(c.Request.Context(), b); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	userID, role := actor(c)

	b, err := h.service.GetByID(c.Request.Context(), req.ID, userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	userID, role := actor(c)

	filter, err := req.toFilter()
	if err != nil {
		response.Error(c, err)
		return
	}

	bookings, total, err := h.service.List(c.Request.Context(), filter, userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, NewBookingResponse(b))
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, filter.Page, filter.PageSize, total))
}

// ListPending lists bookings awaiting confirmation. Managers and admins see
// the whole queue, regular users only their own.
func (h *Handler) ListPending(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	userID, role := actor(c)

	filter, err := req.toFilter()
	if err != nil {
		response.Error(c, err)
		return
	}

	bookings, total, err := h.service.ListPending(c.Request.Context(), filter, userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, NewBookingResponse(b))
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, filter.Page, filter.PageSize, total))
}

// Update reschedules a booking. Owners may edit their own pending or
// confirmed bookings; managers and admins may edit any.
func (h *Handler) Update(c *gin.Context) {
	var uriReq request.ByIDRequest
	if err := c.ShouldBindUri(&uriReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	userID, role := actor(c)

	b := &booking.Booking{
		ID:                   uriReq.ID,
		StartDatetime:        req.StartDatetime.UTC(),
		EndDatetime:          req.EndDatetime.UTC(),
		HasCoffeeBreak:       req.HasCoffeeBreak,
		CoffeeBreakHeadcount: req.CoffeeBreakHeadcount,
		Notes:                req.Notes,
	}

	if err := h.service.Update(c.Request.Context(), b, userID, role); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Confirm(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	userID, role := actor(c)

	b, err := h.service.Confirm(c.Request.Context(), req.ID, userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Cancel(c *gin.Context) {
	var uriReq request.ByIDRequest
	if err := c.ShouldBindUri(&uriReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	// The body is optional; a missing reason is fine.
	var req CancelBookingRequest
	_ = c.ShouldBindJSON(&req)

	userID, role := actor(c)

	b, err := h.service.Cancel(c.Request.Context(), uriReq.ID, req.Reason, userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Complete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	userID, role := actor(c)

	b, err := h.service.Complete(c.Request.Context(), req.ID, userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	userID, role := actor(c)

	if err := h.service.Delete(c.Request.Context(), req.ID, userID, role); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Availability checks whether a room is free for an interval and, when it
// is not, suggests up to three alternative slots inside business hours.
func (h *Handler) Availability(c *gin.Context) {
	var uriReq request.ByIDRequest
	if err := c.ShouldBindUri(&uriReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	var req AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), uriReq.ID, req.Date, req.Start, req.End)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewAvailabilityResponse(result))
}

func (r ListBookingsRequest) toFilter() (booking.Filter, error) {
	filter := booking.Filter{
		RoomID:     r.RoomID,
		LocationID: r.LocationID,
		ManagerID:  r.ManagerID,
		Status:     r.Status,
		Search:     r.Search,
		Page:       r.Page,
		PageSize:   r.PageSize,
		SortBy:     r.SortBy,
		SortOrder:  r.SortOrder,
	}

	parse := func(s string) (*time.Time, error) {
		if s == "" {
			return nil, nil
		}
		t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
		if err != nil {
			return nil, booking.ErrInvalidDateFormat
		}
		return &t, nil
	}

	var err error
	if filter.Date, err = parse(r.Date); err != nil {
		return filter, err
	}
	if filter.DateFrom, err = parse(r.DateFrom); err != nil {
		return filter, err
	}
	if filter.DateTo, err = parse(r.DateTo); err != nil {
		return filter, err
	}

	return filter, nil
}
