package booking

import (
	"context"
	"errors"
	"regexp"
	"time"

	"roombook/internal/room"
	"roombook/internal/user"
)

var timeOfDayPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

const maxSuggestions = 3

// Availability is the result of a free/busy check for a room and interval.
type Availability struct {
	RoomID      string
	RoomName    string
	Date        time.Time
	Requested   TimeRange
	Available   bool
	Conflicts   []*Booking
	Suggestions []TimeSlot
}

// Service defines business logic for bookings.
type Service interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string, actorID string, actorRole user.Role) (*Booking, error)
	List(ctx context.Context, filter Filter, actorID string, actorRole user.Role) ([]*Booking, int, error)
	ListPending(ctx context.Context, filter Filter, actorID string, actorRole user.Role) ([]*Booking, int, error)
	Update(ctx context.Context, b *Booking, actorID string, actorRole user.Role) error
	Confirm(ctx context.Context, id string, actorID string, actorRole user.Role) (*Booking, error)
	Cancel(ctx context.Context, id string, reason string, actorID string, actorRole user.Role) (*Booking, error)
	Complete(ctx context.Context, id string, actorID string, actorRole user.Role) (*Booking, error)
	Delete(ctx context.Context, id string, actorID string, actorRole user.Role) error
	CheckAvailability(ctx context.Context, roomID, dateStr, startStr, endStr string) (*Availability, error)
}

type service struct {
	repo        Repository
	roomService room.Service

	businessStart string // HH:MM
	businessEnd   string
}

func NewService(repo Repository, roomService room.Service, businessStart, businessEnd string) Service {
	return &service{
		repo:          repo,
		roomService:   roomService,
		businessStart: businessStart,
		businessEnd:   businessEnd,
	}
}

func (s *service) Create(ctx context.Context, b *Booking) error {
	if !b.Range().IsValid() {
		return ErrInvalidTimeRange
	}
	if b.HasCoffeeBreak && b.CoffeeBreakHeadcount < 1 {
		return ErrInvalidHeadcount
	}

	rm, err := s.roomService.GetByID(ctx, b.RoomID)
	if err != nil {
		return ErrRoomNotFound
	}

	b.DateBooking = dateOf(b.StartDatetime)
	b.Status = StatusPending
	b.RoomName = rm.Name
	b.LocationID = rm.LocationID
	b.LocationName = rm.LocationName

	// Pre-check so the caller gets a structured conflict payload. The
	// exclusion constraint remains the real guard against races.
	conflicts, err := s.repo.FindConflicts(ctx, b.RoomID, b.StartDatetime, b.EndDatetime, "")
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return s.onWriteConflict(ctx, err, b, "")
	}
	return nil
}

// onWriteConflict upgrades a bare exclusion-violation error to the same
// structured ConflictError the pre-check produces, so the API responds
// identically whichever path detected the overlap.
func (s *service) onWriteConflict(ctx context.Context, err error, b *Booking, excludeID string) error {
	if !errors.Is(err, ErrTimeConflict) {
		return err
	}
	conflicts, qerr := s.repo.FindConflicts(ctx, b.RoomID, b.StartDatetime, b.EndDatetime, excludeID)
	if qerr != nil || len(conflicts) == 0 {
		return ErrTimeConflict
	}
	return &ConflictError{Conflicts: conflicts}
}

func (s *service) GetByID(ctx context.Context, id string, actorID string, actorRole user.Role) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actorRole.CanManageBookings() && b.ManagerID != actorID {
		return nil, ErrPermissionDenied
	}
	return b, nil
}

func (s *service) List(ctx context.Context, filter Filter, actorID string, actorRole user.Role) ([]*Booking, int, error) {
	// Regular users only ever see their own reservations.
	if !actorRole.CanManageBookings() {
		filter.ManagerID = actorID
	}
	return s.repo.List(ctx, filter)
}

// ListPending returns the confirmation queue. Managers and admins see all
// pending bookings; regular users only their own.
func (s *service) ListPending(ctx context.Context, filter Filter, actorID string, actorRole user.Role) ([]*Booking, int, error) {
	if !actorRole.CanManageBookings() {
		filter.ManagerID = actorID
	}
	filter.Status = string(StatusPending)
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, b *Booking, actorID string, actorRole user.Role) error {
	current, err := s.repo.GetByID(ctx, b.ID)
	if err != nil {
		return err
	}
	if !actorRole.CanManageBookings() && current.ManagerID != actorID {
		return ErrPermissionDenied
	}
	if current.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	if current.Status == StatusCompleted {
		return ErrAlreadyCompleted
	}
	if !b.Range().IsValid() {
		return ErrInvalidTimeRange
	}
	if b.HasCoffeeBreak && b.CoffeeBreakHeadcount < 1 {
		return ErrInvalidHeadcount
	}

	current.DateBooking = dateOf(b.StartDatetime)
	current.StartDatetime = b.StartDatetime
	current.EndDatetime = b.EndDatetime
	current.HasCoffeeBreak = b.HasCoffeeBreak
	current.CoffeeBreakHeadcount = b.CoffeeBreakHeadcount
	current.Notes = b.Notes

	conflicts, err := s.repo.FindConflicts(ctx, current.RoomID, current.StartDatetime, current.EndDatetime, current.ID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}

	if err := s.repo.Update(ctx, current); err != nil {
		return s.onWriteConflict(ctx, err, current, current.ID)
	}

	*b = *current
	return nil
}

func (s *service) Confirm(ctx context.Context, id string, actorID string, actorRole user.Role) (*Booking, error) {
	if !actorRole.CanManageBookings() {
		return nil, ErrPermissionDenied
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusPending {
		return nil, ErrNotPending
	}

	now := time.Now().UTC()
	b.Status = StatusConfirmed
	b.ConfirmedBy = &actorID
	b.ConfirmedAt = &now

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) Cancel(ctx context.Context, id string, reason string, actorID string, actorRole user.Role) (*Booking, error) {
	if !actorRole.CanManageBookings() {
		return nil, ErrPermissionDenied
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	if b.Status == StatusCompleted {
		return nil, ErrAlreadyCompleted
	}

	now := time.Now().UTC()
	b.Status = StatusCancelled
	b.CancelledBy = &actorID
	b.CancelledAt = &now
	if reason != "" {
		b.CancellationReason = &reason
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) Complete(ctx context.Context, id string, actorID string, actorRole user.Role) (*Booking, error) {
	if !actorRole.CanManageBookings() {
		return nil, ErrPermissionDenied
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusConfirmed {
		return nil, ErrNotConfirmed
	}

	b.Status = StatusCompleted

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id string, actorID string, actorRole user.Role) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actorRole.CanAdministrate() && b.ManagerID != actorID {
		return ErrPermissionDenied
	}

	// Deleting a still-blocking booking frees its slot, so the status must
	// say why. Record the deletion as a cancellation first.
	if b.Status.Blocks() {
		now := time.Now().UTC()
		b.Status = StatusCancelled
		b.CancelledBy = &actorID
		b.CancelledAt = &now
		if err := s.repo.Update(ctx, b); err != nil {
			return err
		}
	}

	return s.repo.Deactivate(ctx, id)
}

func (s *service) CheckAvailability(ctx context.Context, roomID, dateStr, startStr, endStr string) (*Availability, error) {
	rm, err := s.roomService.GetByID(ctx, roomID)
	if err != nil {
		return nil, ErrRoomNotFound
	}

	date, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}
	if !timeOfDayPattern.MatchString(startStr) || !timeOfDayPattern.MatchString(endStr) {
		return nil, ErrInvalidTimeFormat
	}

	start, err := combine(date, startStr)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}
	end, err := combine(date, endStr)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}

	requested := TimeRange{Start: start, End: end}
	if !requested.IsValid() {
		return nil, ErrInvalidTimeRange
	}

	conflicts, err := s.repo.FindConflicts(ctx, roomID, start, end, "")
	if err != nil {
		return nil, err
	}

	result := &Availability{
		RoomID:    roomID,
		RoomName:  rm.Name,
		Date:      date,
		Requested: requested,
		Available: len(conflicts) == 0,
		Conflicts: conflicts,
	}
	if result.Available {
		return result, nil
	}

	dayBookings, err := s.repo.ListForRoomDay(ctx, roomID, date)
	if err != nil {
		return nil, err
	}
	booked := make([]TimeRange, 0, len(dayBookings))
	for _, db := range dayBookings {
		booked = append(booked, db.Range())
	}

	windowStart, err := combine(date, s.businessStart)
	if err != nil {
		return nil, err
	}
	windowEnd, err := combine(date, s.businessEnd)
	if err != nil {
		return nil, err
	}

	result.Suggestions = SuggestSlots(booked, windowStart, windowEnd, requested.Duration(), maxSuggestions)
	return result, nil
}

// combine anchors an HH:MM time of day on the given date, in UTC.
func combine(date time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
