package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/raiigauravv/WanderWhiz/internal/types"
)

type benchmarkStack struct {
	handler http.Handler
	google  *httptest.Server
}

func setupBenchmarkStack(b *testing.B) *benchmarkStack {
	b.Helper()
	google := httptest.NewServer(fakeGoogle())
	handler, c, err := newTestStack(google.URL, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() {
		google.Close()
		c.Close()
	})
	return &benchmarkStack{handler: handler, google: google}
}

func (s *benchmarkStack) post(b *testing.B, path string, body []byte) {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		b.Fatalf("unexpected status %d: %s", rr.Code, rr.Body.String())
	}
}

func mustJSON(b *testing.B, v any) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		b.Fatal(err)
	}
	return raw
}

func BenchmarkBuildItinerary(b *testing.B) {
	stack := setupBenchmarkStack(b)
	body := mustJSON(b, types.BuildItineraryRequest{
		Places:    lisbonPlaces,
		Selection: []string{"0", "1", "2"},
		City:      "Lisbon",
	})

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		stack.post(b, "/api/v1/itinerary", body)
	}
}

func BenchmarkPlaceSearchCached(b *testing.B) {
	stack := setupBenchmarkStack(b)
	body := mustJSON(b, types.PlaceSearchRequest{City: "Lisbon", Interest: "sights"})
	stack.post(b, "/api/v1/places/search", body)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		stack.post(b, "/api/v1/places/search", body)
	}
}

func BenchmarkBudgetEstimate(b *testing.B) {
	stack := setupBenchmarkStack(b)
	places := make([]types.Place, 0, 50)
	for i := 0; i < 50; i++ {
		level := i % 5
		places = append(places, types.Place{
			Name:       "p",
			Location:   types.LatLng{Latitude: 38.7, Longitude: -9.1},
			PriceLevel: &level,
			Categories: []string{[]string{"restaurant", "museum", "lodging", "park"}[i%4]},
		})
	}
	body := mustJSON(b, types.BudgetEstimateRequest{Places: places})

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		stack.post(b, "/api/v1/budget/estimate", body)
	}
}
