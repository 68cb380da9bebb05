package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/raiigauravv/WanderWhiz/internal/api/places"
	"github.com/raiigauravv/WanderWhiz/internal/geo"
	"github.com/raiigauravv/WanderWhiz/internal/types"
)

// TravelModeDrive is the only travel mode requested from the route provider.
const TravelModeDrive = "DRIVE"

// RouteProvider computes a route through the given waypoints.
type RouteProvider interface {
	ComputeRoute(ctx context.Context, req types.RouteRequest) (*types.RouteSummary, error)
}

// Assembler turns a raw place list plus a user selection into an ordered,
// routable itinerary.
type Assembler struct {
	validator       *places.Validator
	logger          *slog.Logger
	clusterRadiusKm float64
}

func NewAssembler(validator *places.Validator, clusterRadiusKm float64, logger *slog.Logger) *Assembler {
	if clusterRadiusKm <= 0 {
		clusterRadiusKm = geo.ClusterRadiusKm
	}
	return &Assembler{
		validator:       validator,
		logger:          logger,
		clusterRadiusKm: clusterRadiusKm,
	}
}

// ResolveSelection maps selection entries onto raw records and validates
// them. Entries are decimal indices or place ids; anything unresolvable is
// skipped, and repeats keep their first occurrence.
func (a *Assembler) ResolveSelection(raws []map[string]any, selection []string) []types.Place {
	seenIdx := make(map[int]struct{}, len(selection))
	seenID := make(map[string]struct{}, len(selection))
	out := make([]types.Place, 0, len(selection))

	for _, entry := range selection {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		idx, err := strconv.Atoi(entry)
		if err != nil {
			idx = indexOfPlaceID(raws, entry)
		}
		if idx < 0 || idx >= len(raws) {
			a.logger.Debug("Skipping unresolvable selection entry", slog.String("entry", entry))
			continue
		}
		if _, dup := seenIdx[idx]; dup {
			continue
		}
		seenIdx[idx] = struct{}{}

		place, ok := a.validator.Validate(raws[idx])
		if !ok {
			a.logger.Debug("Skipping invalid selected place", slog.Int("index", idx))
			continue
		}
		if place.PlaceID != "" {
			if _, dup := seenID[place.PlaceID]; dup {
				continue
			}
			seenID[place.PlaceID] = struct{}{}
		}
		out = append(out, *place)
	}
	return out
}

func indexOfPlaceID(raws []map[string]any, id string) int {
	for i, raw := range raws {
		if pid, ok := raw["place_id"].(string); ok && pid == id {
			return i
		}
	}
	return -1
}

// Prepare runs selection, validation and clustering. It fails when fewer than
// two places survive either stage.
func (a *Assembler) Prepare(raws []map[string]any, selection []string) (*types.ItineraryDraft, error) {
	valid := a.ResolveSelection(raws, selection)
	if len(valid) < 2 {
		return nil, types.ErrInsufficientPlaces
	}

	centroid := geo.Centroid(valid)
	clustered := geo.FilterWithinKm(valid, centroid, a.clusterRadiusKm)
	if dropped := len(valid) - len(clustered); dropped > 0 {
		a.logger.Info("Dropped outlying places",
			slog.Int("dropped", dropped),
			slog.Float64("radius_km", a.clusterRadiusKm))
	}
	if len(clustered) < 2 {
		return nil, types.ErrInsufficientAfterClustering
	}

	return &types.ItineraryDraft{
		Places:        clustered,
		Centroid:      centroid,
		OrderedPlaces: clustered,
	}, nil
}

// RouteRequestFor fixes the first place as origin and the last as
// destination; everything in between may be reordered by the provider.
func RouteRequestFor(ordered []types.Place) types.RouteRequest {
	req := types.RouteRequest{
		OptimizeWaypointOrder: true,
		TravelMode:            TravelModeDrive,
	}
	if len(ordered) == 0 {
		return req
	}
	req.Origin = ordered[0].Location
	req.Destination = ordered[len(ordered)-1].Location
	for _, p := range ordered[1 : max(len(ordered)-1, 1)] {
		req.Intermediates = append(req.Intermediates, p.Location)
	}
	return req
}

// ReconcileOrder applies the provider's optimized order to the interior
// places. The order is ignored unless it is a permutation of exactly the
// interior indices.
func ReconcileOrder(ordered []types.Place, optimized []int) []types.Place {
	out := make([]types.Place, len(ordered))
	copy(out, ordered)
	if len(ordered) < 3 {
		return out
	}

	interior := ordered[1 : len(ordered)-1]
	if len(optimized) != len(interior) {
		return out
	}
	seen := make([]bool, len(interior))
	for _, idx := range optimized {
		if idx < 0 || idx >= len(interior) || seen[idx] {
			return out
		}
		seen[idx] = true
	}

	for i, idx := range optimized {
		out[i+1] = interior[idx]
	}
	return out
}

// Assemble runs the whole pipeline, including the routing call.
func (a *Assembler) Assemble(ctx context.Context, raws []map[string]any, selection []string, router RouteProvider) (*types.ItineraryDraft, error) {
	draft, err := a.Prepare(raws, selection)
	if err != nil {
		return nil, err
	}

	route, err := router.ComputeRoute(ctx, RouteRequestFor(draft.Places))
	if err != nil {
		var routingErr *types.RoutingError
		if errors.As(err, &routingErr) {
			return nil, err
		}
		return nil, fmt.Errorf("compute route: %w", &types.RoutingError{Message: err.Error()})
	}
	if route == nil {
		return nil, &types.RoutingError{Message: "No routes found"}
	}

	draft.OrderedPlaces = ReconcileOrder(draft.Places, route.OptimizedOrder)
	draft.Route = route
	return draft, nil
}
