package trips

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/raiigauravv/WanderWhiz/internal/api/budget"
	"github.com/raiigauravv/WanderWhiz/internal/sanitizer"
	"github.com/raiigauravv/WanderWhiz/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

const DefaultListLimit = 50

type Service interface {
	SaveTrip(ctx context.Context, userID string, req types.SaveTripRequest) (*types.SavedTrip, error)
	GetTrip(ctx context.Context, id uuid.UUID) (*types.SavedTrip, error)
	ListTrips(ctx context.Context, userID string) ([]types.TripSummary, error)
	DeleteTrip(ctx context.Context, userID string, id uuid.UUID) error
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	now    func() time.Time
}

func NewServiceImpl(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		now:    time.Now,
	}
}

// SaveTrip sanitizes the itinerary into a SavedTrip and stores it.
func (s *ServiceImpl) SaveTrip(ctx context.Context, userID string, req types.SaveTripRequest) (*types.SavedTrip, error) {
	ctx, span := otel.Tracer("TripsService").Start(ctx, "SaveTrip", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.Int("trip.places", len(req.Itinerary.Places)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "SaveTrip"))

	if len(req.Itinerary.Places) == 0 {
		span.SetStatus(codes.Error, "Empty itinerary")
		return nil, fmt.Errorf("%w: itinerary has no places", types.ErrBadRequest)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Trip " + s.now().Format("01/02/2006")
	}

	it := req.Itinerary
	draft := types.SavedTrip{
		UserID:               userID,
		Name:                 name,
		City:                 it.City,
		Places:               it.Places,
		Route:                it.Route,
		TotalPlaces:          len(it.Places),
		TotalDistanceMeters:  it.TotalDistanceMeters,
		TotalDurationSeconds: it.TotalDurationSeconds,
		Prompt:               it.Prompt,
		Interests:            it.Interests,
		BudgetEstimate:       sanitizer.SanitizeMap(req.Budget),
		CreatedAt:            s.now().UTC(),
	}
	if draft.BudgetEstimate == nil {
		var stored map[string]any
		if err := sanitizer.Clean(it.Budget, &stored); err == nil {
			draft.BudgetEstimate = stored
		}
	}

	var trip types.SavedTrip
	if err := sanitizer.Clean(draft, &trip); err != nil {
		l.ErrorContext(ctx, "Failed to sanitize trip", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Sanitize failed")
		return nil, err
	}

	id, err := s.repo.Save(ctx, &trip)
	if err != nil {
		l.ErrorContext(ctx, "Failed to save trip", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Save failed")
		return nil, fmt.Errorf("failed to save trip: %w", err)
	}
	trip.ID = id
	reconciled := budget.Reconcile(trip.BudgetEstimate, trip.Places)
	trip.Budget = &reconciled

	l.InfoContext(ctx, "Trip saved", slog.String("trip_id", id.String()), slog.Int("places", trip.TotalPlaces))
	span.SetStatus(codes.Ok, "Trip saved")
	return &trip, nil
}

// GetTrip loads a trip and reconciles its stored budget.
func (s *ServiceImpl) GetTrip(ctx context.Context, id uuid.UUID) (*types.SavedTrip, error) {
	ctx, span := otel.Tracer("TripsService").Start(ctx, "GetTrip", trace.WithAttributes(
		attribute.String("trip.id", id.String()),
	))
	defer span.End()

	trip, err := s.repo.Load(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Load failed")
		return nil, err
	}
	reconciled := budget.Reconcile(trip.BudgetEstimate, trip.Places)
	trip.Budget = &reconciled

	span.SetStatus(codes.Ok, "Trip loaded")
	return trip, nil
}

func (s *ServiceImpl) ListTrips(ctx context.Context, userID string) ([]types.TripSummary, error) {
	ctx, span := otel.Tracer("TripsService").Start(ctx, "ListTrips", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	summaries, err := s.repo.List(ctx, userID, DefaultListLimit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "List failed")
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	return summaries, nil
}

func (s *ServiceImpl) DeleteTrip(ctx context.Context, userID string, id uuid.UUID) error {
	ctx, span := otel.Tracer("TripsService").Start(ctx, "DeleteTrip", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("trip.id", id.String()),
	))
	defer span.End()

	deleted, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	if !deleted {
		return fmt.Errorf("trip %s: %w", id, types.ErrNotFound)
	}
	return nil
}
