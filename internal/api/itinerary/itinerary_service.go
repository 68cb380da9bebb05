package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/raiigauravv/WanderWhiz/app/observability/metrics"
	"github.com/raiigauravv/WanderWhiz/internal/api/budget"
	"github.com/raiigauravv/WanderWhiz/internal/sanitizer"
	"github.com/raiigauravv/WanderWhiz/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	BuildItinerary(ctx context.Context, req types.BuildItineraryRequest) (*types.Itinerary, error)
	MapsLink(ctx context.Context, places []types.Place) (string, error)
}

type ServiceImpl struct {
	logger    *slog.Logger
	assembler *Assembler
	router    RouteProvider
	metrics   *metrics.AppMetrics
}

func NewServiceImpl(assembler *Assembler, router RouteProvider, appMetrics *metrics.AppMetrics, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		assembler: assembler,
		router:    router,
		metrics:   appMetrics,
	}
}

func (s *ServiceImpl) BuildItinerary(ctx context.Context, req types.BuildItineraryRequest) (*types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "BuildItinerary", trace.WithAttributes(
		attribute.Int("places.raw", len(req.Places)),
		attribute.Int("selection.size", len(req.Selection)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "BuildItinerary"))
	start := time.Now()

	draft, err := s.assembler.Assemble(ctx, req.Places, req.Selection, s.router)
	if err != nil {
		outcome := "rejected"
		if errors.Is(err, types.ErrRoutingFailed) {
			outcome = "routing_failed"
			s.metrics.RecordRoutingFailure(ctx)
			l.ErrorContext(ctx, "Route provider failed", slog.Any("error", err))
		} else {
			l.InfoContext(ctx, "Itinerary rejected", slog.Any("error", err))
		}
		s.metrics.RecordBuild(ctx, outcome, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return nil, err
	}
	s.metrics.RecordDropped(ctx, "assembly", len(req.Selection)-len(draft.Places))

	result := &types.Itinerary{
		City:      cityFor(req.City, draft.OrderedPlaces),
		Places:    draft.OrderedPlaces,
		Route:     draft.Route,
		Budget:    budget.Estimate(draft.OrderedPlaces),
		Prompt:    req.Prompt,
		Interests: req.Interests,
	}
	if draft.Route != nil {
		result.TotalDistanceMeters = draft.Route.TotalDistanceMeters
		result.TotalDurationSeconds = draft.Route.TotalDurationSeconds
	}
	if link, err := MapsLink(draft.OrderedPlaces); err == nil {
		result.MapsURL = link
	}

	clean, err := s.outbound(ctx, result)
	if err != nil {
		s.metrics.RecordBuild(ctx, "serialization_failed", time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "serialization failed")
		return nil, err
	}

	s.metrics.RecordBuild(ctx, "ok", time.Since(start))
	span.SetAttributes(
		attribute.Int("places.ordered", len(clean.Places)),
		attribute.Int("budget.total", clean.Budget.Total),
	)
	span.SetStatus(codes.Ok, "Itinerary built")
	l.InfoContext(ctx, "Itinerary built",
		slog.String("city", clean.City),
		slog.Int("places", len(clean.Places)),
		slog.Int("distance_m", clean.TotalDistanceMeters))
	return clean, nil
}

// outbound sanitizes the finished itinerary. If the route cannot be
// serialized it is dropped and places and budget are still returned.
func (s *ServiceImpl) outbound(ctx context.Context, result *types.Itinerary) (*types.Itinerary, error) {
	var clean types.Itinerary
	err := sanitizer.Clean(result, &clean)
	if err == nil {
		return &clean, nil
	}

	s.logger.WarnContext(ctx, "Dropping route from unserializable itinerary", slog.Any("error", err))
	degraded := *result
	degraded.Route = nil
	if err := sanitizer.Clean(&degraded, &clean); err != nil {
		return nil, fmt.Errorf("sanitize itinerary: %w", err)
	}
	return &clean, nil
}

func (s *ServiceImpl) MapsLink(ctx context.Context, places []types.Place) (string, error) {
	_, span := otel.Tracer("ItineraryService").Start(ctx, "MapsLink", trace.WithAttributes(
		attribute.Int("places.count", len(places)),
	))
	defer span.End()

	link, err := MapsLink(places)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	span.SetStatus(codes.Ok, "Link generated")
	return link, nil
}

// cityFor prefers the caller's city, then the first segment of the first
// place's vicinity.
func cityFor(requested string, ordered []types.Place) string {
	if c := strings.TrimSpace(requested); c != "" {
		return c
	}
	if len(ordered) > 0 {
		if first := strings.TrimSpace(strings.Split(ordered[0].Vicinity, ",")[0]); first != "" {
			return first
		}
	}
	return "Unknown"
}
