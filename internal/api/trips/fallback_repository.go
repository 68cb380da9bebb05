package trips

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/raiigauravv/WanderWhiz/app/observability/metrics"
	"github.com/raiigauravv/WanderWhiz/internal/types"
)

var _ Repository = (*FallbackRepository)(nil)

// FallbackRepository writes to the primary store and falls back to memory
// when the primary is missing or failing. Reads consult both.
type FallbackRepository struct {
	primary Repository
	memory  *MemoryRepository
	metrics *metrics.AppMetrics
	logger  *slog.Logger
}

// NewFallbackRepository accepts a nil primary, in which case only memory is used.
func NewFallbackRepository(primary Repository, memory *MemoryRepository, appMetrics *metrics.AppMetrics, logger *slog.Logger) *FallbackRepository {
	return &FallbackRepository{
		primary: primary,
		memory:  memory,
		metrics: appMetrics,
		logger:  logger,
	}
}

func (f *FallbackRepository) fallback(ctx context.Context, op string, err error) {
	f.metrics.RecordTripFallback(ctx, op)
	if err != nil {
		f.logger.WarnContext(ctx, "Primary trip store failed, using memory",
			slog.String("operation", op), slog.Any("error", err))
	}
}

func (f *FallbackRepository) Save(ctx context.Context, trip *types.SavedTrip) (uuid.UUID, error) {
	if f.primary != nil {
		id, err := f.primary.Save(ctx, trip)
		if err == nil {
			return id, nil
		}
		if errors.Is(err, types.ErrSerialization) {
			return uuid.Nil, err
		}
		f.fallback(ctx, "save", err)
	} else {
		f.fallback(ctx, "save", nil)
	}
	return f.memory.Save(ctx, trip)
}

func (f *FallbackRepository) Load(ctx context.Context, id uuid.UUID) (*types.SavedTrip, error) {
	if f.primary != nil {
		trip, err := f.primary.Load(ctx, id)
		if err == nil {
			return trip, nil
		}
		if !errors.Is(err, types.ErrNotFound) {
			f.fallback(ctx, "load", err)
		}
	}
	return f.memory.Load(ctx, id)
}

// List merges primary and memory results, newest first.
func (f *FallbackRepository) List(ctx context.Context, userID string, limit int) ([]types.TripSummary, error) {
	var merged []types.TripSummary
	seen := map[uuid.UUID]struct{}{}

	if f.primary != nil {
		fromPrimary, err := f.primary.List(ctx, userID, limit)
		if err != nil {
			f.fallback(ctx, "list", err)
		}
		for _, s := range fromPrimary {
			seen[s.ID] = struct{}{}
			merged = append(merged, s)
		}
	}

	fromMemory, err := f.memory.List(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	for _, s := range fromMemory {
		if _, dup := seen[s.ID]; dup {
			continue
		}
		merged = append(merged, s)
	}

	sortNewestFirst(merged)
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	if merged == nil {
		merged = []types.TripSummary{}
	}
	return merged, nil
}

func (f *FallbackRepository) Delete(ctx context.Context, userID string, id uuid.UUID) (bool, error) {
	deleted := false
	if f.primary != nil {
		ok, err := f.primary.Delete(ctx, userID, id)
		if err != nil {
			f.fallback(ctx, "delete", err)
		}
		deleted = ok
	}
	ok, err := f.memory.Delete(ctx, userID, id)
	if err != nil {
		return deleted, err
	}
	return deleted || ok, nil
}
