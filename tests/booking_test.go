package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingHttp "roombook/internal/booking/http"
	locationHttp "roombook/internal/location/http"
	"roombook/internal/pkg/response"
	roomHttp "roombook/internal/room/http"
	"roombook/internal/user"
)

func setupRoom(t *testing.T, adminToken string) roomHttp.RoomResponse {
	t.Helper()

	locPayload := locationHttp.CreateLocationRequest{
		Name:    "Matriz",
		Address: "Av. Paulista, 1000",
		City:    "São Paulo",
		State:   "SP",
		CEP:     "01310-100",
	}
	w := executeRequest("POST", "/v1/locations", locPayload, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var loc locationHttp.LocationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loc))

	roomPayload := roomHttp.CreateRoomRequest{
		Name:       "Sala Aurora",
		LocationID: loc.ID,
		Capacity:   8,
	}
	w = executeRequest("POST", "/v1/rooms", roomPayload, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var rm roomHttp.RoomResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rm))
	return rm
}

func TestBookingFlow(t *testing.T) {
	clearTables()

	admin := createTestUser(t, "admin@rooms.com", "pass", user.RoleAdmin)
	manager := createTestUser(t, "manager@rooms.com", "pass", user.RoleManager)
	alice := createTestUser(t, "alice@rooms.com", "pass", user.RoleUser)
	bob := createTestUser(t, "bob@rooms.com", "pass", user.RoleUser)

	adminToken := generateToken(t, admin)
	managerToken := generateToken(t, manager)
	aliceToken := generateToken(t, alice)
	bobToken := generateToken(t, bob)

	rm := setupRoom(t, adminToken)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	slotStart := day.Add(10 * time.Hour)
	slotEnd := day.Add(11 * time.Hour)

	var bookingID string

	t.Run("Create Booking: Success", func(t *testing.T) {
		payload := bookingHttp.CreateBookingRequest{
			RoomID:        rm.ID,
			StartDatetime: slotStart,
			EndDatetime:   slotEnd,
		}

		w := executeRequest("POST", "/v1/bookings", payload, aliceToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp bookingHttp.BookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, "Sala Aurora", resp.RoomName)
		assert.Equal(t, "2026-03-10", resp.DateBooking)

		bookingID = resp.ID
	})

	t.Run("Create Booking: Conflict returns structured payload", func(t *testing.T) {
		payload := bookingHttp.CreateBookingRequest{
			RoomID:        rm.ID,
			StartDatetime: day.Add(10*time.Hour + 30*time.Minute),
			EndDatetime:   day.Add(11*time.Hour + 30*time.Minute),
		}

		w := executeRequest("POST", "/v1/bookings", payload, bobToken)
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

		var resp bookingHttp.ConflictResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		assert.Equal(t, bookingID, resp.ConflictingBookingID)
		assert.True(t, resp.ConflictingStart.Equal(slotStart))
		assert.True(t, resp.ConflictingEnd.Equal(slotEnd))
		assert.Contains(t, resp.Message, "Sala Aurora")
	})

	t.Run("Create Booking: Adjacent slot succeeds", func(t *testing.T) {
		payload := bookingHttp.CreateBookingRequest{
			RoomID:        rm.ID,
			StartDatetime: slotEnd,
			EndDatetime:   day.Add(12 * time.Hour),
		}

		w := executeRequest("POST", "/v1/bookings", payload, bobToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("Availability: busy slot suggests alternatives", func(t *testing.T) {
		path := fmt.Sprintf("/v1/rooms/%s/availability?date=2026-03-10&start_time=10:00&end_time=11:00", rm.ID)

		w := executeRequest("GET", path, nil, aliceToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp bookingHttp.AvailabilityResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		assert.False(t, resp.Available)
		assert.Equal(t, "Sala Aurora", resp.RoomName)
		assert.NotEmpty(t, resp.Message)
		require.NotEmpty(t, resp.ConflictingBookings)
		assert.NotEmpty(t, resp.Suggestions)
		assert.LessOrEqual(t, len(resp.Suggestions), 3)
		assert.Regexp(t, `^\d{2}:\d{2}$`, resp.Suggestions[0].StartTime)
		assert.Regexp(t, `^\d{2}:\d{2}$`, resp.Suggestions[0].EndTime)
	})

	t.Run("Get Booking: Owner only", func(t *testing.T) {
		w := executeRequest("GET", "/v1/bookings/"+bookingID, nil, aliceToken)
		assert.Equal(t, http.StatusOK, w.Code)

		w = executeRequest("GET", "/v1/bookings/"+bookingID, nil, bobToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = executeRequest("GET", "/v1/bookings/"+bookingID, nil, managerToken)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("List Bookings: Scoped to owner", func(t *testing.T) {
		w := executeRequest("GET", "/v1/bookings", nil, aliceToken)
		require.Equal(t, http.StatusOK, w.Code)

		var resp response.PageResponse[bookingHttp.BookingResponse]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		assert.Equal(t, 1, resp.Total)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, bookingID, resp.Items[0].ID)
	})

	t.Run("Pending Queue: Scoped by role", func(t *testing.T) {
		// Alice only sees her own pending booking
		w := executeRequest("GET", "/v1/bookings/pending", nil, aliceToken)
		require.Equal(t, http.StatusOK, w.Code)

		var resp response.PageResponse[bookingHttp.BookingResponse]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Total)

		// The manager sees the whole queue
		w = executeRequest("GET", "/v1/bookings/pending", nil, managerToken)
		require.Equal(t, http.StatusOK, w.Code)

		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Total)
	})

	t.Run("Confirm: Regular user forbidden", func(t *testing.T) {
		w := executeRequest("POST", "/v1/bookings/"+bookingID+"/confirm", nil, aliceToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Confirm: Manager succeeds", func(t *testing.T) {
		w := executeRequest("POST", "/v1/bookings/"+bookingID+"/confirm", nil, managerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp bookingHttp.BookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		assert.Equal(t, "confirmed", resp.Status)
		require.NotNil(t, resp.ConfirmedBy)
		assert.NotNil(t, resp.ConfirmedAt)
	})

	t.Run("Confirm: Already confirmed fails", func(t *testing.T) {
		w := executeRequest("POST", "/v1/bookings/"+bookingID+"/confirm", nil, managerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Complete: Manager succeeds", func(t *testing.T) {
		w := executeRequest("POST", "/v1/bookings/"+bookingID+"/complete", nil, managerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp bookingHttp.BookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "completed", resp.Status)
	})

	t.Run("Cancel: Completed booking fails", func(t *testing.T) {
		w := executeRequest("POST", "/v1/bookings/"+bookingID+"/cancel", bookingHttp.CancelBookingRequest{Reason: "too late"}, managerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Completed booking frees the slot", func(t *testing.T) {
		payload := bookingHttp.CreateBookingRequest{
			RoomID:        rm.ID,
			StartDatetime: slotStart,
			EndDatetime:   slotEnd,
		}

		w := executeRequest("POST", "/v1/bookings", payload, bobToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("Unauthorized without token", func(t *testing.T) {
		w := executeRequest("GET", "/v1/bookings", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestBookingCancelFlow(t *testing.T) {
	clearTables()

	admin := createTestUser(t, "admin@cancel.com", "pass", user.RoleAdmin)
	alice := createTestUser(t, "alice@cancel.com", "pass", user.RoleUser)

	adminToken := generateToken(t, admin)
	aliceToken := generateToken(t, alice)

	rm := setupRoom(t, adminToken)

	day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	payload := bookingHttp.CreateBookingRequest{
		RoomID:        rm.ID,
		StartDatetime: day.Add(9 * time.Hour),
		EndDatetime:   day.Add(10 * time.Hour),
	}
	w := executeRequest("POST", "/v1/bookings", payload, aliceToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created bookingHttp.BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	t.Run("Cancel forbidden for regular user", func(t *testing.T) {
		w := executeRequest("POST", "/v1/bookings/"+created.ID+"/cancel", bookingHttp.CancelBookingRequest{Reason: "meeting moved"}, aliceToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Admin cancels with reason", func(t *testing.T) {
		w := executeRequest("POST", "/v1/bookings/"+created.ID+"/cancel", bookingHttp.CancelBookingRequest{Reason: "meeting moved"}, adminToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp bookingHttp.BookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		assert.Equal(t, "cancelled", resp.Status)
		require.NotNil(t, resp.CancellationReason)
		assert.Equal(t, "meeting moved", *resp.CancellationReason)
	})

	t.Run("Cancelled slot can be rebooked", func(t *testing.T) {
		w := executeRequest("POST", "/v1/bookings", payload, aliceToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("Cancel twice fails", func(t *testing.T) {
		w := executeRequest("POST", "/v1/bookings/"+created.ID+"/cancel", nil, adminToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
