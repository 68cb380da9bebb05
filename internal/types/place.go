package types

// LatLng is a WGS84 coordinate pair in decimal degrees.
type LatLng struct {
	Latitude  float64 `json:"lat" validate:"latitude"`
	Longitude float64 `json:"lng" validate:"longitude"`
}

// Place is a validated point of interest. Instances are only produced by the
// place validator, so every Place has a name and usable coordinates.
type Place struct {
	Name       string   `json:"name"`
	PlaceID    string   `json:"place_id,omitempty"`
	Location   LatLng   `json:"location"`
	Rating     *float64 `json:"rating,omitempty"`
	PriceLevel *int     `json:"price_level,omitempty"`
	Categories []string `json:"types,omitempty"`
	Address    string   `json:"formatted_address,omitempty"`
	Vicinity   string   `json:"vicinity,omitempty"`
}

// ToRaw renders the place back into the provider-native record shape so it
// can travel through the same pipeline as raw search results.
func (p Place) ToRaw() map[string]any {
	raw := map[string]any{
		"name": p.Name,
		"geometry": map[string]any{
			"location": map[string]any{
				"lat": p.Location.Latitude,
				"lng": p.Location.Longitude,
			},
		},
	}
	if p.PlaceID != "" {
		raw["place_id"] = p.PlaceID
	}
	if p.Rating != nil {
		raw["rating"] = *p.Rating
	}
	if p.PriceLevel != nil {
		raw["price_level"] = *p.PriceLevel
	}
	if len(p.Categories) > 0 {
		cats := make([]any, len(p.Categories))
		for i, c := range p.Categories {
			cats[i] = c
		}
		raw["types"] = cats
	}
	if p.Address != "" {
		raw["formatted_address"] = p.Address
	}
	if p.Vicinity != "" {
		raw["vicinity"] = p.Vicinity
	}
	return raw
}

// DisplayAddress returns the best human readable address available.
func (p Place) DisplayAddress() string {
	if p.Address != "" {
		return p.Address
	}
	return p.Vicinity
}

type PlaceSearchRequest struct {
	City     string `json:"city" validate:"required,max=120"`
	Interest string `json:"interest" validate:"required,max=120"`
}

type AssistSearchRequest struct {
	Prompt string `json:"prompt" validate:"required,max=2000"`
}

// PlaceSearchResult is what the search endpoints hand to the client.
// Places are kept in their raw (sanitized) form so a later selection can be
// resolved by index against exactly this list.
type PlaceSearchResult struct {
	City      string           `json:"city"`
	Interests []string         `json:"interests,omitempty"`
	Center    LatLng           `json:"center"`
	Places    []map[string]any `json:"places"`
	Message   string           `json:"message,omitempty"`
}

// TravelIntent is the structured form of a free-text travel request.
type TravelIntent struct {
	City      string   `json:"city"`
	Interests []string `json:"interests"`
}
