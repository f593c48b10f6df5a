package model

// MaxPlayers is the number of players that fills a booking.
const MaxPlayers = 2

type Booking struct {
	ID        int      `json:"id"`
	CourtID   int      `json:"court_id"`
	CourtName string   `json:"court_name"`
	Time      string   `json:"time"`
	Date      string   `json:"date"`
	Players   []string `json:"players"`
	CreatedAt string   `json:"created_at,omitempty"`
}

// Full reports whether the booking accepts no further players.
func (b Booking) Full() bool {
	return len(b.Players) >= MaxPlayers
}

type BookingRequest struct {
	CourtID    int    `json:"court_id"`
	Time       string `json:"time"`
	PlayerName string `json:"player_name"`
	Date       string `json:"date"`
}

type BookingResult struct {
	Message string   `json:"message"`
	Booking *Booking `json:"booking,omitempty"`
}
