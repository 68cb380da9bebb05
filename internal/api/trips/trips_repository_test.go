package trips

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raiigauravv/WanderWhiz/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleTrip(userID string) *types.SavedTrip {
	rating := 4.5
	return &types.SavedTrip{
		UserID: userID,
		Name:   "Paris weekend",
		City:   "Paris",
		Places: []types.Place{
			{Name: "Louvre", Location: types.LatLng{Latitude: 48.8606, Longitude: 2.3376}, Rating: &rating, Categories: []string{"museum"}},
			{Name: "Orsay", Location: types.LatLng{Latitude: 48.86, Longitude: 2.3266}, Categories: []string{"museum"}},
		},
		TotalPlaces:    2,
		BudgetEstimate: map[string]any{"breakdown": map[string]any{"transportation": 25.0, "activities": 60.0}, "total": 85.0},
	}
}

func setupRepository(t *testing.T) (*RepositoryImpl, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return NewRepository(mockPool, testLogger()), mockPool
}

func TestRepositoryImpl_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id and inserts document", func(t *testing.T) {
		repo, mockPool := setupRepository(t)
		trip := sampleTrip("u1")

		mockPool.ExpectExec(regexp.QuoteMeta("INSERT INTO trips")).
			WithArgs(pgxmock.AnyArg(), "u1", "Paris weekend", "Paris", 2, pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		id, err := repo.Save(ctx, trip)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)
		assert.Equal(t, id, trip.ID)
		assert.False(t, trip.CreatedAt.IsZero())
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		repo, mockPool := setupRepository(t)

		mockPool.ExpectExec(regexp.QuoteMeta("INSERT INTO trips")).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(errors.New("connection refused"))

		_, err := repo.Save(ctx, sampleTrip("u1"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to insert trip")
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestRepositoryImpl_Load(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		repo, mockPool := setupRepository(t)
		doc, err := json.Marshal(sampleTrip("u1"))
		require.NoError(t, err)

		mockPool.ExpectQuery(regexp.QuoteMeta("SELECT document FROM trips WHERE id = $1")).
			WithArgs(id.String()).
			WillReturnRows(pgxmock.NewRows([]string{"document"}).AddRow(doc))

		trip, err := repo.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, trip.ID)
		assert.Equal(t, "Paris", trip.City)
		require.Len(t, trip.Places, 2)
		assert.Equal(t, "Louvre", trip.Places[0].Name)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mockPool := setupRepository(t)

		mockPool.ExpectQuery(regexp.QuoteMeta("SELECT document FROM trips WHERE id = $1")).
			WithArgs(id.String()).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.Load(ctx, id)
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestRepositoryImpl_List(t *testing.T) {
	repo, mockPool := setupRepository(t)
	created := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	id := uuid.New()

	mockPool.ExpectQuery(regexp.QuoteMeta("FROM trips WHERE user_id = $1 ORDER BY created_at DESC LIMIT 10")).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "city", "total_places", "created_at"}).
			AddRow(id, "Paris weekend", "Paris", 2, created))

	summaries, err := repo.List(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, id, summaries[0].ID)
	assert.Equal(t, 2, summaries[0].TotalPlaces)
	assert.Equal(t, created, summaries[0].CreatedAt)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRepositoryImpl_Delete(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "deleted", affected: 1, want: true},
		{name: "missing", affected: 0, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mockPool := setupRepository(t)
			mockPool.ExpectExec(regexp.QuoteMeta("DELETE FROM trips WHERE id = $1 AND user_id = $2")).
				WithArgs(id.String(), "u1").
				WillReturnResult(pgxmock.NewResult("DELETE", tt.affected))

			deleted, err := repo.Delete(context.Background(), "u1", id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, deleted)
			assert.NoError(t, mockPool.ExpectationsWereMet())
		})
	}
}
