package itinerary

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/raiigauravv/WanderWhiz/internal/api/places"
	"github.com/raiigauravv/WanderWhiz/internal/types"
)

// MockRouteProvider is a mock implementation of RouteProvider
type MockRouteProvider struct {
	mock.Mock
}

func (m *MockRouteProvider) ComputeRoute(ctx context.Context, req types.RouteRequest) (*types.RouteSummary, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RouteSummary), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func setupAssembler() *Assembler {
	logger := testLogger()
	return NewAssembler(places.NewValidator("", logger), 0, logger)
}

func raw(name string, lat, lng any) map[string]any {
	return map[string]any{
		"name": name,
		"geometry": map[string]any{
			"location": map[string]any{"lat": lat, "lng": lng},
		},
	}
}

func withID(r map[string]any, id string) map[string]any {
	r["place_id"] = id
	return r
}

func names(ps []types.Place) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func parisRaws() []map[string]any {
	return []map[string]any{
		raw("Eiffel Tower", 48.8584, 2.2945),
		raw("Broken", 0, 2.35),
		raw("Louvre", 48.8606, 2.3376),
		raw("Garbage", "abc", 2.35),
		raw("Notre-Dame", 48.8530, 2.3499),
	}
}

func TestAssembler_Prepare(t *testing.T) {
	a := setupAssembler()

	t.Run("drops invalid records and keeps the rest in order", func(t *testing.T) {
		draft, err := a.Prepare(parisRaws(), []string{"0", "1", "2", "3", "4"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Eiffel Tower", "Louvre", "Notre-Dame"}, names(draft.OrderedPlaces))
	})

	t.Run("two co-located places succeed", func(t *testing.T) {
		raws := []map[string]any{raw("A", 48.85, 2.35), raw("B", 48.85, 2.35)}
		draft, err := a.Prepare(raws, []string{"0", "1"})
		require.NoError(t, err)
		assert.Len(t, draft.Places, 2)
		assert.Equal(t, types.LatLng{Latitude: 48.85, Longitude: 2.35}, draft.Centroid)
	})

	t.Run("one valid place is insufficient", func(t *testing.T) {
		raws := []map[string]any{raw("A", 48.85, 2.35), raw("B", 0, 0)}
		_, err := a.Prepare(raws, []string{"0", "1"})
		assert.ErrorIs(t, err, types.ErrInsufficientPlaces)
	})

	t.Run("places far from their centroid are insufficient after clustering", func(t *testing.T) {
		// 0.36 degrees of latitude is about 40 km, so each is 20 km from the centroid
		raws := []map[string]any{raw("North", 48.85, 2.35), raw("South", 48.49, 2.35)}
		_, err := a.Prepare(raws, []string{"0", "1"})
		assert.ErrorIs(t, err, types.ErrInsufficientAfterClustering)
	})

	t.Run("outlier is dropped", func(t *testing.T) {
		raws := []map[string]any{
			raw("Eiffel Tower", 48.8584, 2.2945),
			raw("Louvre", 48.8606, 2.3376),
			raw("Notre-Dame", 48.8530, 2.3499),
			raw("Sacre-Coeur", 48.8867, 2.3431),
			raw("Versailles", 48.8049, 2.1204),
			raw("Disneyland", 48.8674, 2.7836),
		}
		draft, err := a.Prepare(raws, []string{"0", "1", "2", "3", "4", "5"})
		require.NoError(t, err)
		assert.NotContains(t, names(draft.Places), "Disneyland")
	})
}

func TestAssembler_ResolveSelection(t *testing.T) {
	a := setupAssembler()
	raws := []map[string]any{
		withID(raw("A", 48.85, 2.35), "id-a"),
		withID(raw("B", 48.86, 2.34), "id-b"),
		withID(raw("C", 48.87, 2.33), "id-a"),
	}

	t.Run("malformed and out of range entries are skipped", func(t *testing.T) {
		got := a.ResolveSelection(raws, []string{"", "7", "-1", "1", "x"})
		assert.Equal(t, []string{"B"}, names(got))
	})

	t.Run("entries may name place ids", func(t *testing.T) {
		got := a.ResolveSelection(raws, []string{"id-b", " 0 "})
		assert.Equal(t, []string{"B", "A"}, names(got))
	})

	t.Run("repeats keep their first occurrence", func(t *testing.T) {
		got := a.ResolveSelection(raws, []string{"0", "0", "1", "2"})
		assert.Equal(t, []string{"A", "B"}, names(got))
	})
}

func TestReconcileOrder(t *testing.T) {
	ps := []types.Place{{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"}, {Name: "E"}}

	t.Run("valid permutation reorders the interior", func(t *testing.T) {
		got := ReconcileOrder(ps, []int{2, 0, 1})
		assert.Equal(t, []string{"A", "D", "B", "C", "E"}, names(got))
	})

	t.Run("length mismatch keeps the original order", func(t *testing.T) {
		assert.Equal(t, names(ps), names(ReconcileOrder(ps, []int{1, 0})))
		assert.Equal(t, names(ps), names(ReconcileOrder(ps, nil)))
	})

	t.Run("non permutations keep the original order", func(t *testing.T) {
		assert.Equal(t, names(ps), names(ReconcileOrder(ps, []int{0, 0, 1})))
		assert.Equal(t, names(ps), names(ReconcileOrder(ps, []int{0, 1, 3})))
	})

	t.Run("input is not mutated", func(t *testing.T) {
		_ = ReconcileOrder(ps, []int{2, 1, 0})
		assert.Equal(t, []string{"A", "B", "C", "D", "E"}, names(ps))
	})

	t.Run("two places have nothing to reorder", func(t *testing.T) {
		two := ps[:2]
		assert.Equal(t, names(two), names(ReconcileOrder(two, []int{})))
	})
}

func TestRouteRequestFor(t *testing.T) {
	ps := []types.Place{
		{Name: "A", Location: types.LatLng{Latitude: 1, Longitude: 1}},
		{Name: "B", Location: types.LatLng{Latitude: 2, Longitude: 2}},
		{Name: "C", Location: types.LatLng{Latitude: 3, Longitude: 3}},
	}
	req := RouteRequestFor(ps)
	assert.Equal(t, ps[0].Location, req.Origin)
	assert.Equal(t, ps[2].Location, req.Destination)
	assert.Equal(t, []types.LatLng{ps[1].Location}, req.Intermediates)
	assert.True(t, req.OptimizeWaypointOrder)
	assert.Equal(t, TravelModeDrive, req.TravelMode)

	assert.Empty(t, RouteRequestFor(ps[:2]).Intermediates)
}

func TestAssembler_Assemble(t *testing.T) {
	ctx := context.Background()
	raws := []map[string]any{
		raw("Eiffel Tower", 48.8584, 2.2945),
		raw("Louvre", 48.8606, 2.3376),
		raw("Notre-Dame", 48.8530, 2.3499),
		raw("Sacre-Coeur", 48.8867, 2.3431),
	}
	selection := []string{"0", "1", "2", "3"}

	t.Run("applies the provider order", func(t *testing.T) {
		a := setupAssembler()
		router := new(MockRouteProvider)
		route := &types.RouteSummary{TotalDistanceMeters: 12000, TotalDurationSeconds: 1800, OptimizedOrder: []int{1, 0}}
		router.On("ComputeRoute", mock.Anything, mock.MatchedBy(func(req types.RouteRequest) bool {
			return len(req.Intermediates) == 2 && req.OptimizeWaypointOrder
		})).Return(route, nil).Once()

		draft, err := a.Assemble(ctx, raws, selection, router)
		require.NoError(t, err)
		assert.Equal(t, []string{"Eiffel Tower", "Notre-Dame", "Louvre", "Sacre-Coeur"}, names(draft.OrderedPlaces))
		assert.Equal(t, route, draft.Route)
		router.AssertExpectations(t)
	})

	t.Run("provider routing errors pass through", func(t *testing.T) {
		a := setupAssembler()
		router := new(MockRouteProvider)
		router.On("ComputeRoute", mock.Anything, mock.Anything).
			Return(nil, &types.RoutingError{StatusCode: 400, Message: "API key not valid"}).Once()

		_, err := a.Assemble(ctx, raws, selection, router)
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrRoutingFailed)
		var routingErr *types.RoutingError
		require.True(t, errors.As(err, &routingErr))
		assert.Equal(t, "API key not valid", routingErr.Message)
	})

	t.Run("transport errors become routing failures", func(t *testing.T) {
		a := setupAssembler()
		router := new(MockRouteProvider)
		router.On("ComputeRoute", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused")).Once()

		_, err := a.Assemble(ctx, raws, selection, router)
		assert.ErrorIs(t, err, types.ErrRoutingFailed)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("missing route is a routing failure", func(t *testing.T) {
		a := setupAssembler()
		router := new(MockRouteProvider)
		router.On("ComputeRoute", mock.Anything, mock.Anything).Return(nil, nil).Once()

		_, err := a.Assemble(ctx, raws, selection, router)
		assert.ErrorIs(t, err, types.ErrRoutingFailed)
	})

	t.Run("gates run before routing", func(t *testing.T) {
		a := setupAssembler()
		router := new(MockRouteProvider)

		_, err := a.Assemble(ctx, raws, []string{"0"}, router)
		assert.ErrorIs(t, err, types.ErrInsufficientPlaces)
		router.AssertNotCalled(t, "ComputeRoute", mock.Anything, mock.Anything)
	})
}

func BenchmarkAssembler_Prepare(b *testing.B) {
	a := setupAssembler()
	raws := make([]map[string]any, 0, 40)
	selection := make([]string, 0, 40)
	for i := 0; i < 40; i++ {
		raws = append(raws, raw("p", 48.85+float64(i)*0.001, 2.35+float64(i)*0.001))
		selection = append(selection, strconv.Itoa(i))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = a.Prepare(raws, selection)
	}
}
