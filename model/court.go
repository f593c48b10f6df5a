package model

type Court struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Location string `json:"location"`
}

// SlotAvailability is one entry of the per-court availability map keyed by time.
type SlotAvailability struct {
	Available    bool     `json:"available"`
	PlayersCount int      `json:"players_count"`
	Players      []string `json:"players"`
}

// TimeSlots is the fixed set of bookable hours, in display order.
var TimeSlots = []string{
	"08:00", "09:00", "10:00", "11:00", "12:00",
	"13:00", "14:00", "15:00", "16:00", "17:00", "18:00",
}

// IsTimeSlot reports whether value is one of TimeSlots.
func IsTimeSlot(value string) bool {
	for _, slot := range TimeSlots {
		if slot == value {
			return true
		}
	}
	return false
}
