// Package booking holds the court availability board and the booking draft.
//
// Both are plain values owned by a single caller (the TUI model or a CLI command);
// nothing here is safe for concurrent mutation and nothing needs to be.
package booking

import (
	"context"
	"errors"
	"fmt"

	"court-booking-tui/model"
)

// SlotState classifies one court/time cell of the grid.
type SlotState int

const (
	// SlotOpen has no booking.
	SlotOpen SlotState = iota
	// SlotHalfFilled has one player waiting for an opponent.
	SlotHalfFilled
	// SlotFull has two players and accepts no claims.
	SlotFull
)

func (s SlotState) String() string {
	switch s {
	case SlotOpen:
		return "open"
	case SlotHalfFilled:
		return "half-filled"
	case SlotFull:
		return "full"
	default:
		return "unknown"
	}
}

// ErrPartialLoad marks a load where courts were refreshed but bookings were not.
var ErrPartialLoad = errors.New("bookings could not be refreshed")

// API is the subset of the backend client the board needs.
type API interface {
	GetCourts(ctx context.Context) ([]model.Court, error)
	GetBookings(ctx context.Context) ([]model.Booking, error)
	CreateBooking(ctx context.Context, req model.BookingRequest) (model.BookingResult, error)
}

// Board is the pair of collections fetched from the backend.
type Board struct {
	Courts   []model.Court
	Bookings []model.Booking
}

// Load fetches courts then bookings and replaces each collection wholesale.
// When the courts call fails prev is returned untouched. When only the bookings
// call fails the new courts are kept next to the old bookings and the error
// wraps ErrPartialLoad.
func Load(ctx context.Context, api API, prev Board) (Board, error) {
	next := prev

	courts, err := api.GetCourts(ctx)
	if err != nil {
		return prev, fmt.Errorf("load courts: %w", err)
	}
	next.Courts = courts

	bookings, err := api.GetBookings(ctx)
	if err != nil {
		return next, fmt.Errorf("%w: %w", ErrPartialLoad, err)
	}
	next.Bookings = bookings
	return next, nil
}

// BookingInfo returns the first booking in list order for the court/time pair.
func (b Board) BookingInfo(courtID int, time string) (model.Booking, bool) {
	for _, booking := range b.Bookings {
		if booking.CourtID == courtID && booking.Time == time {
			return booking, true
		}
	}
	return model.Booking{}, false
}

// IsTimeSlotAvailable reports whether a player can still claim the slot.
func (b Board) IsTimeSlotAvailable(courtID int, time string) bool {
	booking, ok := b.BookingInfo(courtID, time)
	return !ok || len(booking.Players) < model.MaxPlayers
}

func (b Board) SlotState(courtID int, time string) SlotState {
	booking, ok := b.BookingInfo(courtID, time)
	switch {
	case !ok:
		return SlotOpen
	case len(booking.Players) >= model.MaxPlayers:
		return SlotFull
	default:
		return SlotHalfFilled
	}
}

// Opponent is the player already holding the slot, if any.
func (b Board) Opponent(courtID int, time string) (string, bool) {
	booking, ok := b.BookingInfo(courtID, time)
	if !ok || len(booking.Players) == 0 {
		return "", false
	}
	return booking.Players[0], true
}

// Court looks a court up by id.
func (b Board) Court(courtID int) (model.Court, bool) {
	for _, court := range b.Courts {
		if court.ID == courtID {
			return court, true
		}
	}
	return model.Court{}, false
}
