package container

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/patrickmn/go-cache"

	database "github.com/raiigauravv/WanderWhiz/app/db"
	"github.com/raiigauravv/WanderWhiz/app/observability/metrics"
	"github.com/raiigauravv/WanderWhiz/config"
	"github.com/raiigauravv/WanderWhiz/internal/api/budget"
	generativeAI "github.com/raiigauravv/WanderWhiz/internal/api/generative_ai"
	"github.com/raiigauravv/WanderWhiz/internal/api/itinerary"
	"github.com/raiigauravv/WanderWhiz/internal/api/places"
	"github.com/raiigauravv/WanderWhiz/internal/api/trips"
	"github.com/raiigauravv/WanderWhiz/internal/providers/google"
	"github.com/raiigauravv/WanderWhiz/internal/router"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *slog.Logger
	Pool             *pgxpool.Pool
	PlacesHandler    *places.HandlerImpl
	ItineraryHandler *itinerary.HandlerImpl
	BudgetHandler    *budget.HandlerImpl
	TripsHandler     *trips.HandlerImpl
}

// NewContainer wires providers, services and handlers. A failing or disabled
// Postgres leaves trips in the in-memory store; a missing LLM key disables
// assistant search only.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	metrics.InitAppMetrics()
	appMetrics := metrics.Get()

	googleCfg := cfg.Providers.Google
	mapsClient := google.NewClient(google.Config{
		APIKey:            googleCfg.APIKey,
		PlacesBaseURL:     googleCfg.PlacesBaseURL,
		GeocodeBaseURL:    googleCfg.GeocodeBaseURL,
		RoutesURL:         googleCfg.RoutesURL,
		RequestsPerSecond: googleCfg.RequestsPerSecond,
		Burst:             googleCfg.Burst,
		Timeout:           googleCfg.Timeout,
	}, logger)

	var intents places.IntentExtractor
	aiClient, err := generativeAI.NewAIClient(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
	if err != nil {
		logger.Warn("Assistant search disabled", slog.Any("error", err))
	} else {
		intents = generativeAI.NewIntentService(aiClient, logger)
	}

	ttl, cleanup := cfg.Cache.TTL, cfg.Cache.Cleanup
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if cleanup <= 0 {
		cleanup = 2 * ttl
	}

	validator := places.NewValidator(cfg.Itinerary.LocationPath, logger)
	placesService := places.NewServiceImpl(mapsClient, intents, validator, cache.New(ttl, cleanup), appMetrics, places.Options{
		ResultsPerInterest: cfg.Itinerary.ResultsPerInterest,
		RadiusDegrees:      cfg.Itinerary.SearchRadiusDegrees,
	}, logger)

	assembler := itinerary.NewAssembler(validator, cfg.Itinerary.ClusterRadiusKm, logger)
	itineraryService := itinerary.NewServiceImpl(assembler, mapsClient, appMetrics, logger)

	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	var primary trips.Repository
	if cfg.Repositories.Postgres.Enabled {
		if pool := c.connectPostgres(ctx); pool != nil {
			c.Pool = pool
			primary = trips.NewRepository(pool, logger)
		}
	}
	tripRepo := trips.NewFallbackRepository(primary,
		trips.NewMemoryRepository(cache.New(cache.NoExpiration, cleanup)), appMetrics, logger)
	tripsService := trips.NewServiceImpl(tripRepo, logger)

	c.PlacesHandler = places.NewHandlerImpl(placesService, logger)
	c.ItineraryHandler = itinerary.NewHandlerImpl(itineraryService, logger)
	c.BudgetHandler = budget.NewHandlerImpl(logger)
	c.TripsHandler = trips.NewHandlerImpl(tripsService, logger)
	return c, nil
}

// connectPostgres returns nil when the trip store should run in memory.
func (c *Container) connectPostgres(ctx context.Context) *pgxpool.Pool {
	dbConfig, err := database.NewDatabaseConfig(c.Config, c.Logger)
	if err != nil {
		c.Logger.Warn("Trip store falling back to memory", slog.Any("error", err))
		return nil
	}
	if err := database.RunMigrations(dbConfig.ConnectionURL, c.Logger); err != nil {
		c.Logger.Warn("Trip store falling back to memory", slog.Any("error", err))
		return nil
	}
	pool, err := database.Init(dbConfig.ConnectionURL, c.Logger)
	if err != nil {
		c.Logger.Warn("Trip store falling back to memory", slog.Any("error", err))
		return nil
	}

	waitCtx := ctx
	if dbConfig.MaxConnWait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, dbConfig.MaxConnWait)
		defer cancel()
	}
	if !database.WaitForDB(waitCtx, pool, c.Logger) {
		pool.Close()
		c.Logger.Warn("Trip store falling back to memory: database not ready")
		return nil
	}
	return pool
}

// RouterConfig exposes the handlers to router.SetupRouter.
func (c *Container) RouterConfig() *router.Config {
	return &router.Config{
		PlacesHandler:    c.PlacesHandler,
		ItineraryHandler: c.ItineraryHandler,
		BudgetHandler:    c.BudgetHandler,
		TripsHandler:     c.TripsHandler,
		AllowedOrigins:   c.Config.Server.AllowedOrigins,
	}
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
