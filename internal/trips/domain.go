// Package trips manages trips, their itineraries and individual applications.
package trips

import "time"

// Collections used by the trips module.
const (
	TripsCollection        = "trips"
	ApplicationsCollection = "applications"
)

// StatusPending is the initial status of every application.
const StatusPending = "Pending"

// ItineraryItem is one day of a trip.
type ItineraryItem struct {
	Day      string   `json:"day" validate:"required,max=100"`
	Activity string   `json:"activity" validate:"required,max=500"`
	Stops    []string `json:"stops" validate:"omitempty,dive,max=200"`
}

// Schedule bounds a trip in calendar dates (YYYY-MM-DD).
type Schedule struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// Transportation describes how a trip travels.
type Transportation struct {
	Mode    string `json:"mode" validate:"required,max=50"`
	Details string `json:"details" validate:"max=500"`
}

// Trip is a stored trip.
type Trip struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Location       string          `json:"location"`
	Itinerary      []ItineraryItem `json:"itinerary"`
	Schedule       Schedule        `json:"schedule"`
	Transportation Transportation  `json:"transportation"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CreateTripInput carries a new trip.
type CreateTripInput struct {
	Name           string          `json:"name" validate:"required,max=200"`
	Description    string          `json:"description" validate:"required,max=2000"`
	Location       string          `json:"location" validate:"required,max=200"`
	Itinerary      []ItineraryItem `json:"itinerary" validate:"required,min=1,dive"`
	Schedule       Schedule        `json:"schedule"`
	Transportation Transportation  `json:"transportation"`
}

// Application is a user's request to join a trip.
type Application struct {
	ID        string    `json:"id"`
	TripID    string    `json:"trip_id"`
	Applicant string    `json:"applicant"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func applicationKey(tripID, applicant string) string {
	return tripID + ":" + applicant
}
