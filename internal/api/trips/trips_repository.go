package trips

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/raiigauravv/WanderWhiz/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

const tripsTable = "trips"

// Repository stores saved trips. Load returns types.ErrNotFound for unknown ids.
type Repository interface {
	Save(ctx context.Context, trip *types.SavedTrip) (uuid.UUID, error)
	Load(ctx context.Context, id uuid.UUID) (*types.SavedTrip, error)
	List(ctx context.Context, userID string, limit int) ([]types.TripSummary, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) (bool, error)
}

// Querier is the subset of pgxpool.Pool the repository needs.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type RepositoryImpl struct {
	db     Querier
	logger *slog.Logger
}

func NewRepository(db Querier, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func psql() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *RepositoryImpl) Save(ctx context.Context, trip *types.SavedTrip) (uuid.UUID, error) {
	ctx, span := otel.Tracer("TripsRepository").Start(ctx, "Save", trace.WithAttributes(
		attribute.String("user.id", trip.UserID),
		attribute.Int("trip.places", len(trip.Places)),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Save"))

	if trip.ID == uuid.Nil {
		trip.ID = uuid.New()
	}
	if trip.CreatedAt.IsZero() {
		trip.CreatedAt = time.Now().UTC()
	}

	document, err := json.Marshal(trip)
	if err != nil {
		span.RecordError(err)
		return uuid.Nil, fmt.Errorf("%w: %v", types.ErrSerialization, err)
	}

	query, args, err := psql().Insert(tripsTable).
		Columns("id", "user_id", "name", "city", "total_places", "document", "created_at").
		Values(trip.ID, trip.UserID, trip.Name, trip.City, trip.TotalPlaces, document, trip.CreatedAt).
		ToSql()
	if err != nil {
		span.RecordError(err)
		return uuid.Nil, fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		l.ErrorContext(ctx, "Failed to insert trip", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database insert failed")
		return uuid.Nil, fmt.Errorf("failed to insert trip: %w", err)
	}

	span.SetAttributes(attribute.String("trip.id", trip.ID.String()))
	span.SetStatus(codes.Ok, "Trip saved")
	return trip.ID, nil
}

func (r *RepositoryImpl) Load(ctx context.Context, id uuid.UUID) (*types.SavedTrip, error) {
	ctx, span := otel.Tracer("TripsRepository").Start(ctx, "Load", trace.WithAttributes(
		attribute.String("trip.id", id.String()),
	))
	defer span.End()

	query, args, err := psql().Select("document").
		From(tripsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	var document []byte
	if err := r.db.QueryRow(ctx, query, args...).Scan(&document); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "Trip not found")
			return nil, fmt.Errorf("trip %s: %w", id, types.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to load trip", slog.String("trip_id", id.String()), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("failed to load trip: %w", err)
	}

	var trip types.SavedTrip
	if err := json.Unmarshal(document, &trip); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", types.ErrSerialization, err)
	}
	trip.ID = id

	span.SetStatus(codes.Ok, "Trip loaded")
	return &trip, nil
}

func (r *RepositoryImpl) List(ctx context.Context, userID string, limit int) ([]types.TripSummary, error) {
	ctx, span := otel.Tracer("TripsRepository").Start(ctx, "List", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.Int("limit", limit),
	))
	defer span.End()

	builder := psql().Select("id", "name", "city", "total_places", "created_at").
		From(tripsTable).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list trips", slog.String("user_id", userID), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	summaries := []types.TripSummary{}
	for rows.Next() {
		var s types.TripSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.City, &s.TotalPlaces, &s.CreatedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan trip row: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating trip rows: %w", err)
	}

	span.SetAttributes(attribute.Int("trips.count", len(summaries)))
	span.SetStatus(codes.Ok, "Trips listed")
	return summaries, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, userID string, id uuid.UUID) (bool, error) {
	ctx, span := otel.Tracer("TripsRepository").Start(ctx, "Delete", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("trip.id", id.String()),
	))
	defer span.End()

	query, args, err := psql().Delete(tripsTable).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to build delete: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete trip", slog.String("trip_id", id.String()), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database delete failed")
		return false, fmt.Errorf("failed to delete trip: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
