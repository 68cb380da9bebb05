package google

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/raiigauravv/WanderWhiz/internal/types"
)

const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

// placesResponse keeps results provider-native; validation happens later.
type placesResponse struct {
	Status       string           `json:"status"`
	ErrorMessage string           `json:"error_message"`
	Results      []map[string]any `json:"results"`
}

type detailsResponse struct {
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message"`
	Result       map[string]any `json:"result"`
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func statusError(op, status, message string) error {
	if message != "" {
		return fmt.Errorf("%s: %s: %s", op, status, message)
	}
	return fmt.Errorf("%s: %s", op, status)
}

// SearchText runs a Places text search and returns the raw result records.
func (c *Client) SearchText(ctx context.Context, query string) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("query", query)

	var resp placesResponse
	if err := c.getJSON(ctx, c.cfg.PlacesBaseURL+"/textsearch/json", params, &resp); err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}
	switch resp.Status {
	case statusOK:
		return resp.Results, nil
	case statusZeroResults:
		return []map[string]any{}, nil
	default:
		return nil, statusError("text search", resp.Status, resp.ErrorMessage)
	}
}

// Details fetches address fields for a place id.
func (c *Client) Details(ctx context.Context, placeID string) (map[string]any, error) {
	if placeID == "" {
		return nil, fmt.Errorf("place details: placeID cannot be empty")
	}
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "formatted_address,name,geometry")

	var resp detailsResponse
	if err := c.getJSON(ctx, c.cfg.PlacesBaseURL+"/details/json", params, &resp); err != nil {
		return nil, fmt.Errorf("place details: %w", err)
	}
	if resp.Status != statusOK {
		return nil, statusError("place details", resp.Status, resp.ErrorMessage)
	}
	return resp.Result, nil
}

// ReverseGeocode returns the formatted address closest to loc.
func (c *Client) ReverseGeocode(ctx context.Context, loc types.LatLng) (string, error) {
	params := url.Values{}
	params.Set("latlng", strconv.FormatFloat(loc.Latitude, 'f', -1, 64)+","+strconv.FormatFloat(loc.Longitude, 'f', -1, 64))

	var resp geocodeResponse
	if err := c.getJSON(ctx, c.cfg.GeocodeBaseURL, params, &resp); err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	if resp.Status != statusOK || len(resp.Results) == 0 {
		return "", statusError("reverse geocode", resp.Status, resp.ErrorMessage)
	}
	return resp.Results[0].FormattedAddress, nil
}

// Geocode resolves an address or city name to coordinates.
func (c *Client) Geocode(ctx context.Context, address string) (types.LatLng, error) {
	params := url.Values{}
	params.Set("address", address)

	var resp geocodeResponse
	if err := c.getJSON(ctx, c.cfg.GeocodeBaseURL, params, &resp); err != nil {
		return types.LatLng{}, fmt.Errorf("geocode: %w", err)
	}
	if resp.Status != statusOK || len(resp.Results) == 0 {
		return types.LatLng{}, statusError("geocode", resp.Status, resp.ErrorMessage)
	}
	loc := resp.Results[0].Geometry.Location
	return types.LatLng{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}
