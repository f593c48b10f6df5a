package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"court-booking-tui/model"
	"court-booking-tui/service"
)

// DateLayout is the DD/MM/YYYY format the backend stores booking dates in.
const DateLayout = "02/01/2006"

var (
	ErrIncompleteDraft = errors.New("please fill in all fields")
	ErrSlotFull        = errors.New("this time slot is already full")
)

const (
	rejectedFallback    = "Could not complete the booking"
	unreachableFallback = "Could not reach the server"
	loadFallback        = "Could not load data from the server"
)

// Draft is the unsaved booking form. The zero value means no slot is selected.
type Draft struct {
	Court      model.Court
	Time       string
	PlayerName string
}

// Start opens a draft for the slot. Full slots are refused with ErrSlotFull.
func Start(board Board, court model.Court, slot string) (Draft, error) {
	if board.SlotState(court.ID, slot) == SlotFull {
		return Draft{}, ErrSlotFull
	}
	return Draft{Court: court, Time: slot}, nil
}

// Request validates the draft and builds the POST body dated with now.
func (d Draft) Request(now time.Time) (model.BookingRequest, error) {
	name := strings.TrimSpace(d.PlayerName)
	if d.Court.ID == 0 || d.Time == "" || name == "" {
		return model.BookingRequest{}, ErrIncompleteDraft
	}
	return model.BookingRequest{
		CourtID:    d.Court.ID,
		Time:       d.Time,
		PlayerName: name,
		Date:       FormatDate(now),
	}, nil
}

// FormatDate renders t as the DD/MM/YYYY booking date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Submit validates and posts the draft. Nothing is sent for an incomplete draft.
func Submit(ctx context.Context, api API, draft Draft, now time.Time) (model.BookingResult, error) {
	req, err := draft.Request(now)
	if err != nil {
		return model.BookingResult{}, err
	}
	result, err := api.CreateBooking(ctx, req)
	if err != nil {
		return model.BookingResult{}, fmt.Errorf("create booking: %w", err)
	}
	return result, nil
}

// SubmitMessage is the notification shown after a failed Submit. Server supplied
// rejection messages are returned verbatim. Transport failures and unreadable
// replies share the connectivity message.
func SubmitMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrIncompleteDraft) || errors.Is(err, ErrSlotFull) {
		return capitalize(err.Error())
	}
	var apiErr *service.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return rejectedFallback
	}
	return unreachableFallback
}

// LoadMessage is the notification shown after a failed Load.
func LoadMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrPartialLoad) {
		return loadFallback + " (bookings may be out of date)"
	}
	return loadFallback
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
