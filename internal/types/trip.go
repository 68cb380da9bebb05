package types

import (
	"time"

	"github.com/google/uuid"
)

// SavedTrip is a persisted itinerary. BudgetEstimate holds the budget exactly
// as it was stored; Budget is the reconciled value computed on load.
type SavedTrip struct {
	ID                   uuid.UUID       `json:"id"`
	UserID               string          `json:"user_id"`
	Name                 string          `json:"name"`
	City                 string          `json:"city"`
	Places               []Place         `json:"places"`
	Route                *RouteSummary   `json:"route,omitempty"`
	TotalPlaces          int             `json:"total_places"`
	TotalDistanceMeters  int             `json:"total_distance_meters"`
	TotalDurationSeconds int             `json:"total_duration_seconds"`
	Prompt               string          `json:"prompt,omitempty"`
	Interests            []string        `json:"interests,omitempty"`
	BudgetEstimate       map[string]any  `json:"budget_estimate,omitempty"`
	Budget               *BudgetEstimate `json:"budget,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

type SaveTripRequest struct {
	Name      string         `json:"name,omitempty" validate:"max=200"`
	Itinerary Itinerary      `json:"itinerary"`
	Budget    map[string]any `json:"budget_estimate,omitempty"`
}

// TripSummary is the list view of a saved trip.
type TripSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	City        string    `json:"city"`
	TotalPlaces int       `json:"total_places"`
	CreatedAt   time.Time `json:"created_at"`
}
