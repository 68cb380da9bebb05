package places

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/raiigauravv/WanderWhiz/internal/sanitizer"
	"github.com/raiigauravv/WanderWhiz/internal/types"
)

// DefaultLocationPath is where provider records keep their coordinates.
const DefaultLocationPath = "geometry.location"

// Validator turns raw provider records into Places, rejecting anything that
// cannot be placed on a map.
type Validator struct {
	logger       *slog.Logger
	locationPath []string
}

// NewValidator builds a validator reading coordinates from the dotted
// locationPath. An empty path means DefaultLocationPath.
func NewValidator(locationPath string, logger *slog.Logger) *Validator {
	if strings.TrimSpace(locationPath) == "" {
		locationPath = DefaultLocationPath
	}
	return &Validator{
		logger:       logger,
		locationPath: strings.Split(locationPath, "."),
	}
}

// Validate sanitizes raw and returns a Place, or false when the record lacks a
// usable name or location. Invalid optional fields are omitted.
func (v *Validator) Validate(raw map[string]any) (*types.Place, bool) {
	clean := sanitizer.SanitizeMap(raw)
	if clean == nil {
		return nil, false
	}

	name, ok := asText(clean["name"])
	if !ok {
		return nil, false
	}

	loc, ok := v.location(clean)
	if !ok {
		return nil, false
	}

	place := &types.Place{Name: name, Location: loc}

	if id, ok := asText(clean["place_id"]); ok {
		place.PlaceID = id
	}
	if rating, ok := asFloat(clean["rating"]); ok && rating >= 0 && rating <= 5 {
		place.Rating = &rating
	}
	if level, ok := asInt(clean["price_level"]); ok && level >= 0 && level <= 4 {
		place.PriceLevel = &level
	}
	if cats, ok := clean["types"].([]any); ok {
		for _, c := range cats {
			if s, ok := c.(string); ok && s != "" {
				place.Categories = append(place.Categories, s)
			}
		}
	}
	if addr, ok := clean["formatted_address"].(string); ok {
		place.Address = strings.TrimSpace(addr)
	}
	if vicinity, ok := clean["vicinity"].(string); ok {
		place.Vicinity = strings.TrimSpace(vicinity)
	}

	return place, true
}

// ValidateAll validates every record and returns the survivors in their
// original relative order.
func (v *Validator) ValidateAll(raws []map[string]any) []types.Place {
	out := make([]types.Place, 0, len(raws))
	for i, raw := range raws {
		place, ok := v.Validate(raw)
		if !ok {
			v.logger.Debug("Dropping invalid place record", slog.Int("index", i))
			continue
		}
		out = append(out, *place)
	}
	if dropped := len(raws) - len(out); dropped > 0 {
		v.logger.Info("Dropped invalid place records",
			slog.Int("dropped", dropped),
			slog.Int("kept", len(out)))
	}
	return out
}

func (v *Validator) location(record map[string]any) (types.LatLng, bool) {
	var node any = record
	for _, key := range v.locationPath {
		m, ok := node.(map[string]any)
		if !ok {
			return types.LatLng{}, false
		}
		node = m[key]
	}
	loc, ok := node.(map[string]any)
	if !ok {
		return types.LatLng{}, false
	}

	lat, ok := asFloat(firstPresent(loc, "lat", "latitude"))
	if !ok {
		return types.LatLng{}, false
	}
	lng, ok := asFloat(firstPresent(loc, "lng", "longitude"))
	if !ok {
		return types.LatLng{}, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return types.LatLng{}, false
	}
	// a zero coordinate is how upstream encodes "unknown"
	if lat == 0 || lng == 0 {
		return types.LatLng{}, false
	}
	return types.LatLng{Latitude: lat, Longitude: lng}, true
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func asText(v any) (string, bool) {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case int, int64, int32:
		s = fmt.Sprint(t)
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func asFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case int32:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func asInt(v any) (int, bool) {
	f, ok := asFloat(v)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
