package trips

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/raiigauravv/WanderWhiz/internal/types"
)

var _ Repository = (*MemoryRepository)(nil)

// MaxTripsPerUser bounds how many trips the in-memory store keeps per user.
const MaxTripsPerUser = 10

// MemoryRepository keeps trips in a go-cache. Entries are stored as JSON so
// callers never share mutable state with the store.
type MemoryRepository struct {
	mu      sync.Mutex
	store   *cache.Cache
	perUser int
}

func NewMemoryRepository(store *cache.Cache) *MemoryRepository {
	return &MemoryRepository{
		store:   store,
		perUser: MaxTripsPerUser,
	}
}

func tripKey(id uuid.UUID) string { return "trip:" + id.String() }
func userKey(userID string) string { return "user-trips:" + userID }

func (m *MemoryRepository) userTrips(userID string) []uuid.UUID {
	if v, ok := m.store.Get(userKey(userID)); ok {
		if ids, ok := v.([]uuid.UUID); ok {
			return ids
		}
	}
	return nil
}

func (m *MemoryRepository) Save(_ context.Context, trip *types.SavedTrip) (uuid.UUID, error) {
	if trip.ID == uuid.Nil {
		trip.ID = uuid.New()
	}
	if trip.CreatedAt.IsZero() {
		trip.CreatedAt = time.Now().UTC()
	}
	document, err := json.Marshal(trip)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", types.ErrSerialization, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.store.Set(tripKey(trip.ID), document, cache.NoExpiration)

	ids := append(m.userTrips(trip.UserID), trip.ID)
	for len(ids) > m.perUser {
		m.store.Delete(tripKey(ids[0]))
		ids = ids[1:]
	}
	m.store.Set(userKey(trip.UserID), append([]uuid.UUID(nil), ids...), cache.NoExpiration)
	return trip.ID, nil
}

func (m *MemoryRepository) Load(_ context.Context, id uuid.UUID) (*types.SavedTrip, error) {
	v, ok := m.store.Get(tripKey(id))
	if !ok {
		return nil, fmt.Errorf("trip %s: %w", id, types.ErrNotFound)
	}
	var trip types.SavedTrip
	if err := json.Unmarshal(v.([]byte), &trip); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrSerialization, err)
	}
	return &trip, nil
}

func (m *MemoryRepository) List(ctx context.Context, userID string, limit int) ([]types.TripSummary, error) {
	m.mu.Lock()
	ids := append([]uuid.UUID(nil), m.userTrips(userID)...)
	m.mu.Unlock()

	summaries := make([]types.TripSummary, 0, len(ids))
	for _, id := range ids {
		trip, err := m.Load(ctx, id)
		if err != nil {
			continue
		}
		summaries = append(summaries, summaryOf(trip))
	}
	sortNewestFirst(summaries)
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

func (m *MemoryRepository) Delete(_ context.Context, userID string, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := m.userTrips(userID)
	kept := make([]uuid.UUID, 0, len(ids))
	found := false
	for _, existing := range ids {
		if existing == id {
			found = true
			continue
		}
		kept = append(kept, existing)
	}
	if !found {
		return false, nil
	}
	m.store.Delete(tripKey(id))
	m.store.Set(userKey(userID), kept, cache.NoExpiration)
	return true, nil
}

func summaryOf(trip *types.SavedTrip) types.TripSummary {
	return types.TripSummary{
		ID:          trip.ID,
		Name:        trip.Name,
		City:        trip.City,
		TotalPlaces: trip.TotalPlaces,
		CreatedAt:   trip.CreatedAt,
	}
}

func sortNewestFirst(s []types.TripSummary) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].CreatedAt.After(s[j].CreatedAt) })
}
