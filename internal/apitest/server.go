// Package apitest runs an in-memory court booking backend for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"court-booking-tui/model"
)

// Backend mimics the REST contract of the booking server: a second claim on a
// slot joins the existing booking and a third is rejected.
type Backend struct {
	mu       sync.Mutex
	courts   []model.Court
	bookings []model.Booking
	nextID   int
	calls    map[string]int
	posts    []model.BookingRequest

	// FailBookings makes GET /bookings answer 500.
	FailBookings bool
	// Reject, when set, is returned as the error of every POST with status 400.
	Reject string
	// MalformedReply stores accepted bookings but answers with a non-JSON body.
	MalformedReply bool
}

// NewBackend seeds a backend with courts and bookings. New ids continue after the seeded ones.
func NewBackend(courts []model.Court, bookings []model.Booking) *Backend {
	b := &Backend{
		courts:   append([]model.Court(nil), courts...),
		bookings: append([]model.Booking(nil), bookings...),
		nextID:   1,
		calls:    map[string]int{},
	}
	for _, booking := range bookings {
		if booking.ID >= b.nextID {
			b.nextID = booking.ID + 1
		}
	}
	return b
}

// Start serves the backend under /api and closes it with the test.
func (b *Backend) Start(t interface{ Cleanup(func()) }) *httptest.Server {
	server := httptest.NewServer(b.Router())
	t.Cleanup(server.Close)
	return server
}

// Router exposes the REST routes under /api.
func (b *Backend) Router() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/courts", b.listCourts)
		r.Get("/courts/{id}", b.getCourt)
		r.Get("/bookings", b.listBookings)
		r.Post("/bookings", b.createBooking)
		r.Get("/bookings/availability/{id}", b.availability)
	})
	return r
}

// Calls returns how many times "METHOD /path-pattern" was hit.
func (b *Backend) Calls(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[key]
}

// Posts returns every booking request received, in order.
func (b *Backend) Posts() []model.BookingRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.BookingRequest(nil), b.posts...)
}

// Bookings returns the current bookings, including joins.
func (b *Backend) Bookings() []model.Booking {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Booking(nil), b.bookings...)
}

func (b *Backend) count(key string) {
	b.mu.Lock()
	b.calls[key]++
	b.mu.Unlock()
}

func (b *Backend) listCourts(w http.ResponseWriter, r *http.Request) {
	b.count("GET /courts")
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.courts)
}

func (b *Backend) getCourt(w http.ResponseWriter, r *http.Request) {
	b.count("GET /courts/{id}")
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid court id"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, court := range b.courts {
		if court.ID == id {
			writeJSON(w, http.StatusOK, court)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "court not found"})
}

func (b *Backend) listBookings(w http.ResponseWriter, r *http.Request) {
	b.count("GET /bookings")
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailBookings {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "database unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, b.bookings)
}

func (b *Backend) createBooking(w http.ResponseWriter, r *http.Request) {
	b.count("POST /bookings")
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.posts = append(b.posts, req)

	if b.Reject != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": b.Reject})
		return
	}
	if req.CourtID == 0 || req.Time == "" || req.PlayerName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "court_id, time and player_name are required"})
		return
	}
	var court *model.Court
	for i := range b.courts {
		if b.courts[i].ID == req.CourtID {
			court = &b.courts[i]
			break
		}
	}
	if court == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "court not found"})
		return
	}

	for i := range b.bookings {
		existing := &b.bookings[i]
		if existing.CourtID != req.CourtID || existing.Time != req.Time || existing.Date != req.Date {
			continue
		}
		if len(existing.Players) >= model.MaxPlayers {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "this time slot is already fully booked"})
			return
		}
		existing.Players = append(existing.Players, req.PlayerName)
		b.writeResult(w, http.StatusOK, model.BookingResult{
			Message: "Booking confirmed! You will play against " + existing.Players[0] + ".",
			Booking: existing,
		})
		return
	}

	booking := model.Booking{
		ID:        b.nextID,
		CourtID:   req.CourtID,
		CourtName: court.Name,
		Time:      req.Time,
		Date:      req.Date,
		Players:   []string{req.PlayerName},
	}
	b.nextID++
	b.bookings = append(b.bookings, booking)
	b.writeResult(w, http.StatusCreated, model.BookingResult{Message: "Booking created!", Booking: &booking})
}

func (b *Backend) writeResult(w http.ResponseWriter, status int, result model.BookingResult) {
	if b.MalformedReply {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		_, _ = w.Write([]byte("<html>ok</html>"))
		return
	}
	writeJSON(w, status, result)
}

func (b *Backend) availability(w http.ResponseWriter, r *http.Request) {
	b.count("GET /bookings/availability/{id}")
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid court id"})
		return
	}
	date := r.URL.Query().Get("date")

	b.mu.Lock()
	defer b.mu.Unlock()
	out := map[string]model.SlotAvailability{}
	for _, booking := range b.bookings {
		if booking.CourtID != id || (date != "" && booking.Date != date) {
			continue
		}
		out[booking.Time] = model.SlotAvailability{
			Available:    len(booking.Players) < model.MaxPlayers,
			PlayersCount: len(booking.Players),
			Players:      append([]string(nil), booking.Players...),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
