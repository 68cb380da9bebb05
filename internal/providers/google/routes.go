package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/twpayne/go-polyline"

	"github.com/raiigauravv/WanderWhiz/internal/types"
)

const routesFieldMask = "routes.duration,routes.distanceMeters,routes.polyline.encodedPolyline," +
	"routes.legs.duration,routes.legs.distanceMeters,routes.legs.polyline.encodedPolyline," +
	"routes.optimizedIntermediateWaypointIndex,routes.description"

type latLngLiteral struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type waypoint struct {
	Location struct {
		LatLng latLngLiteral `json:"latLng"`
	} `json:"location"`
}

func toWaypoint(l types.LatLng) waypoint {
	var w waypoint
	w.Location.LatLng = latLngLiteral{Latitude: l.Latitude, Longitude: l.Longitude}
	return w
}

type computeRoutesRequest struct {
	Origin                waypoint   `json:"origin"`
	Destination           waypoint   `json:"destination"`
	Intermediates         []waypoint `json:"intermediates,omitempty"`
	TravelMode            string     `json:"travelMode"`
	RoutingPreference     string     `json:"routingPreference,omitempty"`
	OptimizeWaypointOrder bool       `json:"optimizeWaypointOrder,omitempty"`
}

type encodedPolyline struct {
	EncodedPolyline string `json:"encodedPolyline"`
}

type routeLeg struct {
	DistanceMeters int             `json:"distanceMeters"`
	Duration       string          `json:"duration"`
	Polyline       encodedPolyline `json:"polyline"`
}

type route struct {
	DistanceMeters                     int             `json:"distanceMeters"`
	Duration                           string          `json:"duration"`
	Description                        string          `json:"description"`
	Polyline                           encodedPolyline `json:"polyline"`
	Legs                               []routeLeg      `json:"legs"`
	OptimizedIntermediateWaypointIndex []int           `json:"optimizedIntermediateWaypointIndex"`
}

type computeRoutesResponse struct {
	Routes []route `json:"routes"`
}

type routesErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// ComputeRoute calls the Routes API and reduces the first route to a
// RouteSummary. Non-200 answers and empty route lists become
// *types.RoutingError carrying the API's message.
func (c *Client) ComputeRoute(ctx context.Context, req types.RouteRequest) (*types.RouteSummary, error) {
	payload := computeRoutesRequest{
		Origin:      toWaypoint(req.Origin),
		Destination: toWaypoint(req.Destination),
		TravelMode:  req.TravelMode,
	}
	if payload.TravelMode == "" {
		payload.TravelMode = "DRIVE"
	}
	if payload.TravelMode == "DRIVE" {
		payload.RoutingPreference = "TRAFFIC_AWARE"
	}
	for _, l := range req.Intermediates {
		payload.Intermediates = append(payload.Intermediates, toWaypoint(l))
	}
	payload.OptimizeWaypointOrder = req.OptimizeWaypointOrder && len(payload.Intermediates) > 0

	status, body, err := c.postJSON(ctx, c.cfg.RoutesURL, map[string]string{
		"X-Goog-Api-Key":   c.cfg.APIKey,
		"X-Goog-FieldMask": routesFieldMask,
	}, payload)
	if err != nil {
		return nil, fmt.Errorf("compute routes: %w", err)
	}

	if status != http.StatusOK {
		var apiErr routesErrorResponse
		msg := "Unknown error"
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return nil, &types.RoutingError{StatusCode: status, Message: msg}
	}

	var resp computeRoutesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &types.RoutingError{StatusCode: status, Message: "unreadable routes response"}
	}
	if len(resp.Routes) == 0 {
		return nil, &types.RoutingError{StatusCode: status, Message: "No routes found"}
	}

	summary := summarize(resp.Routes[0])
	c.logger.DebugContext(ctx, "Route computed",
		"distance_m", summary.TotalDistanceMeters,
		"duration_s", summary.TotalDurationSeconds,
		"legs", len(summary.Legs))
	return summary, nil
}

func summarize(r route) *types.RouteSummary {
	s := &types.RouteSummary{
		EncodedPolyline: r.Polyline.EncodedPolyline,
		OptimizedOrder:  r.OptimizedIntermediateWaypointIndex,
		Summary:         r.Description,
	}

	var legPolylines []string
	for _, leg := range r.Legs {
		secs := parseDurationSeconds(leg.Duration)
		s.Legs = append(s.Legs, types.RouteLeg{
			DistanceMeters:  leg.DistanceMeters,
			DurationSeconds: secs,
			EncodedPolyline: leg.Polyline.EncodedPolyline,
		})
		s.TotalDistanceMeters += leg.DistanceMeters
		s.TotalDurationSeconds += secs
		if leg.Polyline.EncodedPolyline != "" {
			legPolylines = append(legPolylines, leg.Polyline.EncodedPolyline)
		}
	}
	if len(r.Legs) == 0 {
		s.TotalDistanceMeters = r.DistanceMeters
		s.TotalDurationSeconds = parseDurationSeconds(r.Duration)
	}

	if s.EncodedPolyline != "" {
		s.Path = decodePath(s.EncodedPolyline)
	} else {
		for _, enc := range legPolylines {
			s.Path = append(s.Path, decodePath(enc)...)
		}
		s.EncodedPolyline = strings.Join(legPolylines, "")
	}
	return s
}

// parseDurationSeconds reads protobuf JSON durations such as "754s".
func parseDurationSeconds(d string) int {
	if d == "" {
		return 0
	}
	parsed, err := time.ParseDuration(d)
	if err != nil {
		return 0
	}
	return int(parsed.Seconds())
}

func decodePath(encoded string) []types.LatLng {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil
	}
	path := make([]types.LatLng, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		path = append(path, types.LatLng{Latitude: c[0], Longitude: c[1]})
	}
	return path
}
