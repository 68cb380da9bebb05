package metrics

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	ItineraryBuildsTotal          metric.Int64Counter
	ItineraryBuildDurationSeconds metric.Float64Histogram
	PlacesDroppedTotal            metric.Int64Counter
	RoutingFailuresTotal          metric.Int64Counter
	PlaceSearchesTotal            metric.Int64Counter
	TripStoreFallbacksTotal       metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments once, from the global MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("WanderWhiz")
		m, err := New(meter)
		if err != nil {
			log.Fatalf("Metrics: %v", err)
		}
		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the instruments created by InitAppMetrics.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}

// New creates the instruments on meter.
func New(meter metric.Meter) (*AppMetrics, error) {
	var err error
	m := &AppMetrics{}

	m.ItineraryBuildsTotal, err = meter.Int64Counter(
		"itinerary_builds_total",
		metric.WithDescription("Itinerary builds by outcome"),
		metric.WithUnit("{build}"),
	)
	if err != nil {
		return nil, err
	}

	m.ItineraryBuildDurationSeconds, err = meter.Float64Histogram(
		"itinerary_build_duration_seconds",
		metric.WithDescription("Duration of itinerary builds, routing included"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.PlacesDroppedTotal, err = meter.Int64Counter(
		"places_dropped_total",
		metric.WithDescription("Place records dropped by validation or distance filters"),
		metric.WithUnit("{place}"),
	)
	if err != nil {
		return nil, err
	}

	m.RoutingFailuresTotal, err = meter.Int64Counter(
		"routing_failures_total",
		metric.WithDescription("Route provider calls that failed"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	m.PlaceSearchesTotal, err = meter.Int64Counter(
		"place_searches_total",
		metric.WithDescription("Place searches by source and cache status"),
		metric.WithUnit("{search}"),
	)
	if err != nil {
		return nil, err
	}

	m.TripStoreFallbacksTotal, err = meter.Int64Counter(
		"trip_store_fallbacks_total",
		metric.WithDescription("Trip store operations served by the in-memory fallback"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordBuild is safe to call on a nil *AppMetrics.
func (m *AppMetrics) RecordBuild(ctx context.Context, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.ItineraryBuildsTotal.Add(ctx, 1, attrs)
	m.ItineraryBuildDurationSeconds.Record(ctx, elapsed.Seconds(), attrs)
}

func (m *AppMetrics) RecordDropped(ctx context.Context, stage string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.PlacesDroppedTotal.Add(ctx, int64(n), metric.WithAttributes(attribute.String("stage", stage)))
}

func (m *AppMetrics) RecordRoutingFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.RoutingFailuresTotal.Add(ctx, 1)
}

func (m *AppMetrics) RecordSearch(ctx context.Context, source string, cached bool) {
	if m == nil {
		return
	}
	m.PlaceSearchesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.Bool("cached", cached),
	))
}

func (m *AppMetrics) RecordTripFallback(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.TripStoreFallbacksTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}
