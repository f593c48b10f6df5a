package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"court-booking-tui/internal/apitest"
	"court-booking-tui/model"
	"court-booking-tui/service"
)

var courtA = model.Court{ID: 1, Name: "Court A", Type: "clay", Location: "North"}

func TestBoard_SlotState(t *testing.T) {
	board := Board{
		Courts: []model.Court{courtA},
		Bookings: []model.Booking{
			{ID: 9, CourtID: 1, Time: "08:00", Players: []string{"Ana"}},
			{ID: 10, CourtID: 1, Time: "09:00", Players: []string{"Ana", "Beto"}},
		},
	}

	tests := []struct {
		time      string
		state     SlotState
		available bool
	}{
		{time: "08:00", state: SlotHalfFilled, available: true},
		{time: "09:00", state: SlotFull, available: false},
		{time: "10:00", state: SlotOpen, available: true},
	}
	for _, tt := range tests {
		t.Run(tt.time, func(t *testing.T) {
			assert.Equal(t, tt.state, board.SlotState(1, tt.time))
			assert.Equal(t, tt.available, board.IsTimeSlotAvailable(1, tt.time))
		})
	}

	assert.Equal(t, SlotOpen, board.SlotState(2, "09:00"), "other courts are unaffected")
}

// Full iff a booking with two players exists, for every slot of the grid.
func TestBoard_FullIffTwoPlayers(t *testing.T) {
	board := Board{Courts: []model.Court{courtA}}
	for i, slot := range model.TimeSlots {
		switch i % 3 {
		case 1:
			board.Bookings = append(board.Bookings, model.Booking{ID: i, CourtID: 1, Time: slot, Players: []string{"Ana"}})
		case 2:
			board.Bookings = append(board.Bookings, model.Booking{ID: i, CourtID: 1, Time: slot, Players: []string{"Ana", "Beto"}})
		}
	}

	for i, slot := range model.TimeSlots {
		full := board.SlotState(1, slot) == SlotFull
		assert.Equal(t, i%3 == 2, full, slot)
		assert.Equal(t, !full, board.IsTimeSlotAvailable(1, slot), slot)
	}
}

func TestBoard_FirstMatchWins(t *testing.T) {
	board := Board{Bookings: []model.Booking{
		{ID: 1, CourtID: 1, Time: "08:00", Players: []string{"Ana"}},
		{ID: 2, CourtID: 1, Time: "08:00", Players: []string{"Caio", "Duda"}},
	}}

	info, ok := board.BookingInfo(1, "08:00")
	require.True(t, ok)
	assert.Equal(t, 1, info.ID)
	assert.Equal(t, SlotHalfFilled, board.SlotState(1, "08:00"))

	opponent, ok := board.Opponent(1, "08:00")
	require.True(t, ok)
	assert.Equal(t, "Ana", opponent)

	_, ok = board.Opponent(1, "11:00")
	assert.False(t, ok)
}

type fakeAPI struct {
	courts      []model.Court
	bookings    []model.Booking
	courtsErr   error
	bookingsErr error
	createErr   error
	created     []model.BookingRequest
}

func (f *fakeAPI) GetCourts(context.Context) ([]model.Court, error) {
	return f.courts, f.courtsErr
}

func (f *fakeAPI) GetBookings(context.Context) ([]model.Booking, error) {
	return f.bookings, f.bookingsErr
}

func (f *fakeAPI) CreateBooking(_ context.Context, req model.BookingRequest) (model.BookingResult, error) {
	f.created = append(f.created, req)
	if f.createErr != nil {
		return model.BookingResult{}, f.createErr
	}
	return model.BookingResult{Message: "ok"}, nil
}

func TestLoad_ReplacesBothCollections(t *testing.T) {
	api := &fakeAPI{
		courts:   []model.Court{courtA},
		bookings: []model.Booking{{ID: 9, CourtID: 1, Time: "08:00", Players: []string{"Ana"}}},
	}
	prev := Board{Bookings: []model.Booking{{ID: 1}}}

	board, err := Load(context.Background(), api, prev)
	require.NoError(t, err)
	assert.Equal(t, api.courts, board.Courts)
	assert.Equal(t, api.bookings, board.Bookings)
}

func TestLoad_CourtsFailureKeepsPrevious(t *testing.T) {
	prev := Board{Courts: []model.Court{courtA}, Bookings: []model.Booking{{ID: 1}}}
	api := &fakeAPI{courtsErr: errors.New("connection refused")}

	board, err := Load(context.Background(), api, prev)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrPartialLoad))
	assert.Equal(t, prev, board)
	assert.Equal(t, "Could not load data from the server", LoadMessage(err))
}

func TestLoad_BookingsFailureIsPartial(t *testing.T) {
	courtB := model.Court{ID: 2, Name: "Court B"}
	prev := Board{Courts: []model.Court{courtA}, Bookings: []model.Booking{{ID: 1}}}
	api := &fakeAPI{courts: []model.Court{courtA, courtB}, bookingsErr: errors.New("timeout")}

	board, err := Load(context.Background(), api, prev)
	require.ErrorIs(t, err, ErrPartialLoad)
	assert.Len(t, board.Courts, 2)
	assert.Equal(t, prev.Bookings, board.Bookings)
	assert.Contains(t, LoadMessage(err), "out of date")
}

func TestLoad_AgainstBackend(t *testing.T) {
	backend := apitest.NewBackend([]model.Court{courtA}, nil)
	server := backend.Start(t)
	client := service.NewClient(server.Client(), service.WithBaseURL(server.URL+"/api"))

	board, err := Load(context.Background(), client, Board{})
	require.NoError(t, err)
	assert.Equal(t, []model.Court{courtA}, board.Courts)
	assert.Empty(t, board.Bookings)
	assert.Equal(t, 1, backend.Calls("GET /courts"))
	assert.Equal(t, 1, backend.Calls("GET /bookings"))
}
