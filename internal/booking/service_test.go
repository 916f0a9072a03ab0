package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombook/internal/room"
	"roombook/internal/user"
)

// fakeRepository is an in-memory Repository for service tests. Conflict
// detection mirrors the SQL predicate via TimeRange.Overlaps.
type fakeRepository struct {
	bookings map[string]*Booking
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{bookings: make(map[string]*Booking)}
}

func (r *fakeRepository) Create(_ context.Context, b *Booking) error {
	b.ID = uuid.NewString()
	b.IsActive = true
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	clone := *b
	r.bookings[b.ID] = &clone
	return nil
}

func (r *fakeRepository) GetByID(_ context.Context, id string) (*Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *fakeRepository) List(_ context.Context, filter Filter) ([]*Booking, int, error) {
	var out []*Booking
	for _, b := range r.bookings {
		if filter.ManagerID != "" && b.ManagerID != filter.ManagerID {
			continue
		}
		if filter.Status != "" && string(b.Status) != filter.Status {
			continue
		}
		clone := *b
		out = append(out, &clone)
	}
	return out, len(out), nil
}

func (r *fakeRepository) Update(_ context.Context, b *Booking) error {
	if _, ok := r.bookings[b.ID]; !ok {
		return ErrNotFound
	}
	clone := *b
	r.bookings[b.ID] = &clone
	return nil
}

func (r *fakeRepository) Deactivate(_ context.Context, id string) error {
	b, ok := r.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.IsActive = false
	return nil
}

func (r *fakeRepository) FindConflicts(_ context.Context, roomID string, start, end time.Time, excludeID string) ([]*Booking, error) {
	requested := TimeRange{Start: start, End: end}
	var out []*Booking
	for _, b := range r.bookings {
		if b.RoomID != roomID || b.ID == excludeID || !b.IsActive || !b.Status.Blocks() {
			continue
		}
		if requested.Overlaps(b.Range()) {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeRepository) ListForRoomDay(_ context.Context, roomID string, date time.Time) ([]*Booking, error) {
	var out []*Booking
	for _, b := range r.bookings {
		if b.RoomID != roomID || !b.IsActive || !b.Status.Blocks() {
			continue
		}
		if b.DateBooking.Equal(date) {
			clone := *b
			out = append(out, &clone)
		}
	}
	// Keep ascending order by start, as the real repository does.
	for i := range out {
		for j := i + 1; j < len(out); j++ {
			if out[j].StartDatetime.Before(out[i].StartDatetime) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

// fakeRoomService serves a fixed set of rooms; only GetByID matters here.
type fakeRoomService struct {
	rooms map[string]*room.Room
}

func (s *fakeRoomService) GetByID(_ context.Context, id string) (*room.Room, error) {
	rm, ok := s.rooms[id]
	if !ok {
		return nil, room.ErrNotFound
	}
	return rm, nil
}

func (s *fakeRoomService) Create(context.Context, *room.Room, []string) error {
	return errors.New("not implemented")
}

func (s *fakeRoomService) List(context.Context, room.Filter) ([]*room.Room, int, error) {
	return nil, 0, errors.New("not implemented")
}

func (s *fakeRoomService) Update(context.Context, *room.Room, []string) error {
	return errors.New("not implemented")
}

func (s *fakeRoomService) Delete(context.Context, string) error {
	return errors.New("not implemented")
}

func (s *fakeRoomService) Stats(context.Context) (*room.Stats, error) {
	return nil, errors.New("not implemented")
}

func newTestService(t *testing.T) (Service, *fakeRepository, string) {
	t.Helper()

	repo := newFakeRepository()
	roomID := uuid.NewString()
	rooms := &fakeRoomService{rooms: map[string]*room.Room{
		roomID: {ID: roomID, Name: "Sala Aurora", LocationID: uuid.NewString(), LocationName: "Matriz", Capacity: 8},
	}}

	return NewService(repo, rooms, "08:00", "18:00"), repo, roomID
}

func newBooking(roomID, managerID string, startHour, endHour int) *Booking {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return &Booking{
		RoomID:        roomID,
		ManagerID:     managerID,
		StartDatetime: day.Add(time.Duration(startHour) * time.Hour),
		EndDatetime:   day.Add(time.Duration(endHour) * time.Hour),
	}
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("success starts pending", func(t *testing.T) {
		svc, repo, roomID := newTestService(t)

		b := newBooking(roomID, uuid.NewString(), 10, 11)
		require.NoError(t, svc.Create(ctx, b))

		assert.NotEmpty(t, b.ID)
		assert.Equal(t, StatusPending, b.Status)
		assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), b.DateBooking)

		// Room metadata is resolved before the insert, so the stored row
		// already carries it.
		stored, err := repo.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, "Sala Aurora", stored.RoomName)
		assert.Equal(t, "Matriz", stored.LocationName)
	})

	t.Run("overlap returns conflict error", func(t *testing.T) {
		svc, _, roomID := newTestService(t)

		first := newBooking(roomID, uuid.NewString(), 10, 12)
		require.NoError(t, svc.Create(ctx, first))

		second := newBooking(roomID, uuid.NewString(), 11, 13)
		err := svc.Create(ctx, second)

		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		require.Len(t, conflict.Conflicts, 1)
		assert.Equal(t, first.ID, conflict.First().ID)
		assert.Contains(t, conflict.Error(), "Sala Aurora")
	})

	t.Run("adjacent bookings do not conflict", func(t *testing.T) {
		svc, _, roomID := newTestService(t)

		first := newBooking(roomID, uuid.NewString(), 10, 11)
		require.NoError(t, svc.Create(ctx, first))

		second := newBooking(roomID, uuid.NewString(), 11, 12)
		require.NoError(t, svc.Create(ctx, second))
	})

	t.Run("cancelled booking does not block", func(t *testing.T) {
		svc, _, roomID := newTestService(t)

		first := newBooking(roomID, uuid.NewString(), 10, 11)
		require.NoError(t, svc.Create(ctx, first))
		_, err := svc.Cancel(ctx, first.ID, "plans changed", uuid.NewString(), user.RoleManager)
		require.NoError(t, err)

		second := newBooking(roomID, uuid.NewString(), 10, 11)
		require.NoError(t, svc.Create(ctx, second))
	})

	t.Run("invalid range", func(t *testing.T) {
		svc, _, roomID := newTestService(t)

		b := newBooking(roomID, uuid.NewString(), 12, 10)
		assert.ErrorIs(t, svc.Create(ctx, b), ErrInvalidTimeRange)
	})

	t.Run("unknown room", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		b := newBooking(uuid.NewString(), uuid.NewString(), 10, 11)
		assert.ErrorIs(t, svc.Create(ctx, b), ErrRoomNotFound)
	})

	t.Run("coffee break needs headcount", func(t *testing.T) {
		svc, _, roomID := newTestService(t)

		b := newBooking(roomID, uuid.NewString(), 10, 11)
		b.HasCoffeeBreak = true
		assert.ErrorIs(t, svc.Create(ctx, b), ErrInvalidHeadcount)
	})
}

func TestServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	managerID := uuid.NewString()

	t.Run("confirm then complete", func(t *testing.T) {
		svc, _, roomID := newTestService(t)

		b := newBooking(roomID, uuid.NewString(), 10, 11)
		require.NoError(t, svc.Create(ctx, b))

		confirmed, err := svc.Confirm(ctx, b.ID, managerID, user.RoleManager)
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, confirmed.Status)
		require.NotNil(t, confirmed.ConfirmedBy)
		assert.Equal(t, managerID, *confirmed.ConfirmedBy)
		assert.NotNil(t, confirmed.ConfirmedAt)

		completed, err := svc.Complete(ctx, b.ID, managerID, user.RoleManager)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, completed.Status)
	})

	t.Run("confirm requires pending", func(t *testing.T) {
		svc, _, roomID := newTestService(t)

		b := newBooking(roomID, uuid.NewString(), 10, 11)
		require.NoError(t, svc.Create(ctx, b))

		_, err := svc.Confirm(ctx, b.ID, managerID, user.RoleManager)
		require.NoError(t, err)

		_, err = svc.Confirm(ctx, b.ID, managerID, user.RoleManager)
		assert.ErrorIs(t, err, ErrNotPending)
	})

	t.Run("confirm requires manager role", func(t *testing.T) {
		svc, _, roomID := newTestService(t)

		b := newBooking(roomID, uuid.NewString(), 10, 11)
		require.NoError(t, svc.Create(ctx, b))

		_, err := svc.Confirm(ctx, b.ID, uuid.NewString(), user.RoleUser)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("cancel records actor and reason", func(t *testing.T) {
		svc, _, roomID := newTestService(t)

		b := newBooking(roomID, uuid.NewString(), 10, 11)
		require.NoError(t, svc.Create(ctx, b))

		cancelled, err := svc.Cancel(ctx, b.ID, "no longer needed", managerID, user.RoleManager)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, cancelled.Status)
		require.NotNil(t, cancelled.CancelledBy)
		assert.Equal(t, managerID, *cancelled.CancelledBy)
		require.NotNil(t, cancelled.CancellationReason)
		assert.Equal(t, "no longer needed", *cancelled.CancellationReason)
	})

	t.Run("cancel requires manager role", func(t *testing.T) {
		svc, _, roomID := newTestService(t)
		owner := uuid.NewString()

		b := newBooking(roomID, owner, 10, 11)
		require.NoError(t, svc.Create(ctx, b))

		_, err := svc.Cancel(ctx, b.ID, "", owner, user.RoleUser)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("cancel twice fails", func(t *testing.T) {
		svc, _, roomID := newTestService(t)

		b := newBooking(roomID, uuid.NewString(), 10, 11)
		require.NoError(t, svc.Create(ctx, b))

		_, err := svc.Cancel(ctx, b.ID, "", managerID, user.RoleManager)
		require.NoError(t, err)

		_, err = svc.Cancel(ctx, b.ID, "", managerID, user.RoleManager)
		assert.ErrorIs(t, err, ErrAlreadyCancelled)
	})

	t.Run("completed booking cannot be cancelled", func(t *testing.T) {
		svc, _, roomID := newTestService(t)

		b := newBooking(roomID, uuid.NewString(), 10, 11)
		require.NoError(t, svc.Create(ctx, b))

		_, err := svc.Confirm(ctx, b.ID, managerID, user.RoleManager)
		require.NoError(t, err)
		_, err = svc.Complete(ctx, b.ID, managerID, user.RoleManager)
		require.NoError(t, err)

		_, err = svc.Cancel(ctx, b.ID, "", managerID, user.RoleManager)
		assert.ErrorIs(t, err, ErrAlreadyCompleted)
	})

	t.Run("complete requires confirmed", func(t *testing.T) {
		svc, _, roomID := newTestService(t)

		b := newBooking(roomID, uuid.NewString(), 10, 11)
		require.NoError(t, svc.Create(ctx, b))

		_, err := svc.Complete(ctx, b.ID, managerID, user.RoleManager)
		assert.ErrorIs(t, err, ErrNotConfirmed)
	})

	t.Run("owner cannot confirm own booking", func(t *testing.T) {
		svc, _, roomID := newTestService(t)
		owner := uuid.NewString()

		b := newBooking(roomID, owner, 10, 11)
		require.NoError(t, svc.Create(ctx, b))

		_, err := svc.Confirm(ctx, b.ID, owner, user.RoleUser)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})
}

func TestServiceVisibility(t *testing.T) {
	ctx := context.Background()

	t.Run("users only see their own bookings", func(t *testing.T) {
		svc, _, roomID := newTestService(t)
		alice := uuid.NewString()
		bob := uuid.NewString()

		require.NoError(t, svc.Create(ctx, newBooking(roomID, alice, 8, 9)))
		require.NoError(t, svc.Create(ctx, newBooking(roomID, bob, 9, 10)))
		require.NoError(t, svc.Create(ctx, newBooking(roomID, bob, 10, 11)))

		mine, total, err := svc.List(ctx, Filter{}, bob, user.RoleUser)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		for _, b := range mine {
			assert.Equal(t, bob, b.ManagerID)
		}

		all, total, err := svc.List(ctx, Filter{}, uuid.NewString(), user.RoleManager)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, all, 3)
	})

	t.Run("get denies other users", func(t *testing.T) {
		svc, _, roomID := newTestService(t)
		owner := uuid.NewString()

		b := newBooking(roomID, owner, 10, 11)
		require.NoError(t, svc.Create(ctx, b))

		_, err := svc.GetByID(ctx, b.ID, uuid.NewString(), user.RoleUser)
		assert.ErrorIs(t, err, ErrPermissionDenied)

		got, err := svc.GetByID(ctx, b.ID, uuid.NewString(), user.RoleManager)
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)
	})

	t.Run("pending queue scope", func(t *testing.T) {
		svc, _, roomID := newTestService(t)
		alice := uuid.NewString()
		bob := uuid.NewString()
		managerID := uuid.NewString()

		aliceBooking := newBooking(roomID, alice, 8, 9)
		require.NoError(t, svc.Create(ctx, aliceBooking))
		require.NoError(t, svc.Create(ctx, newBooking(roomID, bob, 9, 10)))

		confirmed := newBooking(roomID, bob, 10, 11)
		require.NoError(t, svc.Create(ctx, confirmed))
		_, err := svc.Confirm(ctx, confirmed.ID, managerID, user.RoleManager)
		require.NoError(t, err)

		// Regular users see only their own pending bookings
		mine, total, err := svc.ListPending(ctx, Filter{}, alice, user.RoleUser)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, mine, 1)
		assert.Equal(t, aliceBooking.ID, mine[0].ID)

		// Managers see the whole queue; confirmed bookings are excluded
		_, total, err = svc.ListPending(ctx, Filter{}, managerID, user.RoleManager)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
	})
}

func TestServiceUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("reschedule within own slot", func(t *testing.T) {
		svc, _, roomID := newTestService(t)
		owner := uuid.NewString()

		b := newBooking(roomID, owner, 10, 12)
		require.NoError(t, svc.Create(ctx, b))

		upd := newBooking(roomID, owner, 10, 11)
		upd.ID = b.ID
		require.NoError(t, svc.Update(ctx, upd, owner, user.RoleUser))
		assert.Equal(t, b.StartDatetime, upd.StartDatetime)
	})

	t.Run("reschedule into another booking conflicts", func(t *testing.T) {
		svc, _, roomID := newTestService(t)
		owner := uuid.NewString()

		other := newBooking(roomID, uuid.NewString(), 14, 15)
		require.NoError(t, svc.Create(ctx, other))

		b := newBooking(roomID, owner, 10, 11)
		require.NoError(t, svc.Create(ctx, b))

		upd := newBooking(roomID, owner, 14, 16)
		upd.ID = b.ID
		err := svc.Update(ctx, upd, owner, user.RoleUser)

		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, other.ID, conflict.First().ID)
	})

	t.Run("delete cancels a blocking booking", func(t *testing.T) {
		svc, repo, roomID := newTestService(t)
		owner := uuid.NewString()

		b := newBooking(roomID, owner, 10, 11)
		require.NoError(t, svc.Create(ctx, b))
		require.NoError(t, svc.Delete(ctx, b.ID, owner, user.RoleUser))

		stored, err := repo.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsActive)
		assert.Equal(t, StatusCancelled, stored.Status)
		assert.NotNil(t, stored.CancelledAt)

		// The freed slot can be booked again
		require.NoError(t, svc.Create(ctx, newBooking(roomID, uuid.NewString(), 10, 11)))
	})

	t.Run("cancelled booking cannot be rescheduled", func(t *testing.T) {
		svc, _, roomID := newTestService(t)
		owner := uuid.NewString()

		b := newBooking(roomID, owner, 10, 11)
		require.NoError(t, svc.Create(ctx, b))
		_, err := svc.Cancel(ctx, b.ID, "", uuid.NewString(), user.RoleManager)
		require.NoError(t, err)

		upd := newBooking(roomID, owner, 12, 13)
		upd.ID = b.ID
		assert.ErrorIs(t, svc.Update(ctx, upd, owner, user.RoleUser), ErrAlreadyCancelled)
	})
}

func TestServiceCheckAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("free slot", func(t *testing.T) {
		svc, _, roomID := newTestService(t)

		result, err := svc.CheckAvailability(ctx, roomID, "2026-03-10", "10:00", "11:00")
		require.NoError(t, err)
		assert.True(t, result.Available)
		assert.Empty(t, result.Conflicts)
		assert.Empty(t, result.Suggestions)
	})

	t.Run("busy slot suggests alternatives", func(t *testing.T) {
		svc, _, roomID := newTestService(t)

		b := newBooking(roomID, uuid.NewString(), 10, 11)
		require.NoError(t, svc.Create(ctx, b))

		result, err := svc.CheckAvailability(ctx, roomID, "2026-03-10", "10:00", "11:00")
		require.NoError(t, err)
		assert.False(t, result.Available)
		require.Len(t, result.Conflicts, 1)
		assert.Equal(t, b.ID, result.Conflicts[0].ID)

		require.Len(t, result.Suggestions, 3)
		wantStarts := []string{"08:00", "09:00", "11:00"}
		for i, s := range result.Suggestions {
			assert.Equal(t, wantStarts[i], s.StartTime.Format("15:04"), fmt.Sprintf("suggestion %d", i))
		}
	})

	t.Run("invalid time format", func(t *testing.T) {
		svc, _, roomID := newTestService(t)

		_, err := svc.CheckAvailability(ctx, roomID, "2026-03-10", "10h00", "11:00")
		assert.ErrorIs(t, err, ErrInvalidTimeFormat)

		_, err = svc.CheckAvailability(ctx, roomID, "2026-03-10", "10:00", "25:00")
		assert.ErrorIs(t, err, ErrInvalidTimeFormat)
	})

	t.Run("invalid date format", func(t *testing.T) {
		svc, _, roomID := newTestService(t)

		_, err := svc.CheckAvailability(ctx, roomID, "10/03/2026", "10:00", "11:00")
		assert.ErrorIs(t, err, ErrInvalidDateFormat)
	})

	t.Run("end before start", func(t *testing.T) {
		svc, _, roomID := newTestService(t)

		_, err := svc.CheckAvailability(ctx, roomID, "2026-03-10", "11:00", "10:00")
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})

	t.Run("unknown room", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.CheckAvailability(ctx, uuid.NewString(), "2026-03-10", "10:00", "11:00")
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})
}
