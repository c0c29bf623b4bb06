// Package transport records a traveller's transport mode for a trip.
package transport

import "time"

// Collection holds stored transport selections.
const Collection = "transport_selections"

// Mode is a supported transport mode.
type Mode string

const (
	ModeBus    Mode = "bus"
	ModeFlight Mode = "flight"
	ModeTrain  Mode = "train"
)

// Details is the fixed schedule attached to a mode.
type Details struct {
	Number    string `json:"number"`
	Departure string `json:"departure"`
	Arrival   string `json:"arrival"`
}

var schedules = map[Mode]Details{
	ModeBus:    {Number: "KA-05-1234", Departure: "10:00 AM", Arrival: "5:00 PM"},
	ModeFlight: {Number: "AI-202", Departure: "6:00 AM", Arrival: "9:00 AM"},
	ModeTrain:  {Number: "12627", Departure: "8:00 PM", Arrival: "6:00 AM"},
}

// DetailsFor returns the schedule for mode.
func DetailsFor(mode Mode) (Details, bool) {
	d, ok := schedules[mode]
	return d, ok
}

// Selection is a stored choice.
type Selection struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	TripID    string    `json:"trip_id"`
	Mode      Mode      `json:"mode"`
	Details   Details   `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}
