package google

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-polyline"

	"github.com/raiigauravv/WanderWhiz/internal/types"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		APIKey:         "test-key",
		PlacesBaseURL:  srv.URL + "/place",
		GeocodeBaseURL: srv.URL + "/geocode/json",
		RoutesURL:      srv.URL + "/routes",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_SearchText(t *testing.T) {
	t.Run("returns raw results", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/place/textsearch/json", r.URL.Path)
			assert.Equal(t, "museums in Lisbon", r.URL.Query().Get("query"))
			assert.Equal(t, "test-key", r.URL.Query().Get("key"))
			writeJSON(t, w, http.StatusOK, map[string]any{
				"status": "OK",
				"results": []map[string]any{
					{"name": "MAAT", "place_id": "p1", "geometry": map[string]any{"location": map[string]any{"lat": 38.69, "lng": -9.19}}},
				},
			})
		}))

		results, err := client.SearchText(context.Background(), "museums in Lisbon")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "MAAT", results[0]["name"])
	})

	t.Run("zero results is empty, not an error", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]any{"status": "ZERO_RESULTS", "results": []any{}})
		}))

		results, err := client.SearchText(context.Background(), "nothing")
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("denied status surfaces message", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]any{"status": "REQUEST_DENIED", "error_message": "bad key"})
		}))

		_, err := client.SearchText(context.Background(), "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "REQUEST_DENIED")
		assert.Contains(t, err.Error(), "bad key")
	})

	t.Run("http failure", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		_, err := client.SearchText(context.Background(), "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
	})
}

func TestClient_DetailsAndGeocode(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/place/details/json":
			assert.Equal(t, "p1", r.URL.Query().Get("place_id"))
			writeJSON(t, w, http.StatusOK, map[string]any{
				"status": "OK",
				"result": map[string]any{"formatted_address": "Av. Brasília, Lisboa"},
			})
		case "/geocode/json":
			if r.URL.Query().Get("latlng") != "" {
				assert.Equal(t, "38.69,-9.19", r.URL.Query().Get("latlng"))
				writeJSON(t, w, http.StatusOK, map[string]any{
					"status":  "OK",
					"results": []map[string]any{{"formatted_address": "Belém, Lisboa"}},
				})
				return
			}
			assert.Equal(t, "Lisbon", r.URL.Query().Get("address"))
			writeJSON(t, w, http.StatusOK, map[string]any{
				"status": "OK",
				"results": []map[string]any{{
					"geometry": map[string]any{"location": map[string]any{"lat": 38.72, "lng": -9.14}},
				}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	ctx := context.Background()

	details, err := client.Details(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Av. Brasília, Lisboa", details["formatted_address"])

	_, err = client.Details(ctx, "")
	require.Error(t, err)

	addr, err := client.ReverseGeocode(ctx, types.LatLng{Latitude: 38.69, Longitude: -9.19})
	require.NoError(t, err)
	assert.Equal(t, "Belém, Lisboa", addr)

	center, err := client.Geocode(ctx, "Lisbon")
	require.NoError(t, err)
	assert.InDelta(t, 38.72, center.Latitude, 1e-9)
	assert.InDelta(t, -9.14, center.Longitude, 1e-9)
}

func TestClient_ComputeRoute(t *testing.T) {
	a := types.LatLng{Latitude: 38.5, Longitude: -120.2}
	b := types.LatLng{Latitude: 40.7, Longitude: -120.95}
	c := types.LatLng{Latitude: 43.252, Longitude: -126.453}

	t.Run("sums legs and decodes polyline", func(t *testing.T) {
		encoded := string(polyline.EncodeCoords([][]float64{{38.5, -120.2}, {40.7, -120.95}, {43.252, -126.453}}))

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
			assert.Contains(t, r.Header.Get("X-Goog-FieldMask"), "optimizedIntermediateWaypointIndex")

			var body computeRoutesRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "DRIVE", body.TravelMode)
			assert.Equal(t, "TRAFFIC_AWARE", body.RoutingPreference)
			assert.True(t, body.OptimizeWaypointOrder)
			require.Len(t, body.Intermediates, 1)
			assert.InDelta(t, 40.7, body.Intermediates[0].Location.LatLng.Latitude, 1e-9)

			writeJSON(t, w, http.StatusOK, map[string]any{
				"routes": []map[string]any{{
					"polyline": map[string]any{"encodedPolyline": encoded},
					"legs": []map[string]any{
						{"distanceMeters": 1200, "duration": "300s"},
						{"distanceMeters": 800, "duration": "150s"},
					},
					"optimizedIntermediateWaypointIndex": []int{0},
				}},
			})
		}))

		summary, err := client.ComputeRoute(context.Background(), types.RouteRequest{
			Origin: a, Destination: c, Intermediates: []types.LatLng{b},
			OptimizeWaypointOrder: true, TravelMode: "DRIVE",
		})
		require.NoError(t, err)
		assert.Equal(t, 2000, summary.TotalDistanceMeters)
		assert.Equal(t, 450, summary.TotalDurationSeconds)
		assert.Equal(t, []int{0}, summary.OptimizedOrder)
		assert.Equal(t, encoded, summary.EncodedPolyline)
		require.Len(t, summary.Path, 3)
		assert.InDelta(t, 43.252, summary.Path[2].Latitude, 1e-5)
		assert.Len(t, summary.Legs, 2)
	})

	t.Run("api error becomes routing error", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusBadRequest, map[string]any{
				"error": map[string]any{"code": 400, "message": "Invalid waypoint", "status": "INVALID_ARGUMENT"},
			})
		}))

		_, err := client.ComputeRoute(context.Background(), types.RouteRequest{Origin: a, Destination: b})
		require.Error(t, err)
		var routingErr *types.RoutingError
		require.ErrorAs(t, err, &routingErr)
		assert.Equal(t, http.StatusBadRequest, routingErr.StatusCode)
		assert.Equal(t, "Invalid waypoint", routingErr.Message)
		assert.ErrorIs(t, err, types.ErrRoutingFailed)
	})

	t.Run("empty routes", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]any{"routes": []any{}})
		}))

		_, err := client.ComputeRoute(context.Background(), types.RouteRequest{Origin: a, Destination: b})
		var routingErr *types.RoutingError
		require.ErrorAs(t, err, &routingErr)
		assert.Equal(t, "No routes found", routingErr.Message)
	})

	t.Run("no intermediates disables optimization", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body computeRoutesRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.False(t, body.OptimizeWaypointOrder)
			writeJSON(t, w, http.StatusOK, map[string]any{
				"routes": []map[string]any{{"distanceMeters": 5000, "duration": "600s"}},
			})
		}))

		summary, err := client.ComputeRoute(context.Background(), types.RouteRequest{
			Origin: a, Destination: b, OptimizeWaypointOrder: true,
		})
		require.NoError(t, err)
		assert.Equal(t, 5000, summary.TotalDistanceMeters)
		assert.Equal(t, 600, summary.TotalDurationSeconds)
	})
}

func TestParseDurationSeconds(t *testing.T) {
	assert.Equal(t, 754, parseDurationSeconds("754s"))
	assert.Equal(t, 12, parseDurationSeconds("12.7s"))
	assert.Equal(t, 0, parseDurationSeconds(""))
	assert.Equal(t, 0, parseDurationSeconds("garbage"))
}
