package container

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raiigauravv/WanderWhiz/config"
	"github.com/raiigauravv/WanderWhiz/internal/router"
)

func TestNewContainer_MemoryOnly(t *testing.T) {
	var cfg config.Config
	cfg.Itinerary.ClusterRadiusKm = 15

	c, err := NewContainer(context.Background(), &cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.Pool)
	require.NotNil(t, c.TripsHandler)

	r := router.SetupRouter(c.RouterConfig())

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, "pong", rr.Body.String())

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/places/assist", strings.NewReader(`{"prompt":"museums in Rome"}`)))
	assert.Equal(t, http.StatusBadGateway, rr.Code, "assistant is disabled without an LLM key")

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/trips/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}
