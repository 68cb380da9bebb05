package types

// RouteLeg is one hop between two consecutive waypoints.
type RouteLeg struct {
	DistanceMeters  int    `json:"distance_meters"`
	DurationSeconds int    `json:"duration_seconds"`
	EncodedPolyline string `json:"encoded_polyline,omitempty"`
}

// RouteSummary is the routing provider's answer, reduced to what the
// itinerary needs.
type RouteSummary struct {
	TotalDistanceMeters  int        `json:"total_distance_meters"`
	TotalDurationSeconds int        `json:"total_duration_seconds"`
	EncodedPolyline      string     `json:"encoded_polyline,omitempty"`
	Path                 []LatLng   `json:"path,omitempty"`
	Legs                 []RouteLeg `json:"legs,omitempty"`
	OptimizedOrder       []int      `json:"optimized_order,omitempty"`
	Summary              string     `json:"summary,omitempty"`
}

// RouteRequest is the input for a single routing call. Origin and
// Destination are fixed; Intermediates may be reordered when
// OptimizeWaypointOrder is set.
type RouteRequest struct {
	Origin                LatLng   `json:"origin"`
	Destination           LatLng   `json:"destination"`
	Intermediates         []LatLng `json:"intermediates,omitempty"`
	OptimizeWaypointOrder bool     `json:"optimize_waypoint_order"`
	TravelMode            string   `json:"travel_mode"`
}

// ItineraryDraft carries one assembly run from validation to routing.
type ItineraryDraft struct {
	Places        []Place       `json:"places"`
	Centroid      LatLng        `json:"centroid"`
	OrderedPlaces []Place       `json:"ordered_places"`
	Route         *RouteSummary `json:"route,omitempty"`
}

type BuildItineraryRequest struct {
	Places    []map[string]any `json:"places" validate:"required,min=1"`
	Selection []string         `json:"selection" validate:"required,min=1"`
	City      string           `json:"city,omitempty"`
	Prompt    string           `json:"prompt,omitempty"`
	Interests []string         `json:"interests,omitempty"`
}

// Itinerary is the finished, client-facing result of a build.
type Itinerary struct {
	City                 string         `json:"city"`
	Places               []Place        `json:"places"`
	Route                *RouteSummary  `json:"route,omitempty"`
	TotalDistanceMeters  int            `json:"total_distance_meters"`
	TotalDurationSeconds int            `json:"total_duration_seconds"`
	Budget               BudgetEstimate `json:"budget"`
	MapsURL              string         `json:"maps_url,omitempty"`
	Prompt               string         `json:"prompt,omitempty"`
	Interests            []string       `json:"interests,omitempty"`
}

type MapsLinkRequest struct {
	Places []Place `json:"places" validate:"required,min=1,dive"`
}

type MapsLinkResponse struct {
	URL string `json:"url"`
}
