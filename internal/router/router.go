package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appMiddleware "github.com/raiigauravv/WanderWhiz/app/middleware"
	"github.com/raiigauravv/WanderWhiz/internal/api"
	"github.com/raiigauravv/WanderWhiz/internal/api/budget"
	"github.com/raiigauravv/WanderWhiz/internal/api/itinerary"
	"github.com/raiigauravv/WanderWhiz/internal/api/places"
	"github.com/raiigauravv/WanderWhiz/internal/api/trips"
)

var defaultOrigins = []string{"http://localhost:5173", "http://localhost:3000"}

// Config contains dependencies needed for the router setup
type Config struct {
	PlacesHandler    *places.HandlerImpl
	ItineraryHandler *itinerary.HandlerImpl
	BudgetHandler    *budget.HandlerImpl
	TripsHandler     *trips.HandlerImpl
	AllowedOrigins   []string
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are applied in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = defaultOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", api.UserIDHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(appMiddleware.UserIdentity(api.UserIDHeader, api.AnonymousUserID))

		r.Route("/places", func(r chi.Router) {
			r.Post("/search", cfg.PlacesHandler.Search)
			r.Post("/assist", cfg.PlacesHandler.Assist)
		})

		r.Route("/itinerary", func(r chi.Router) {
			r.Post("/", cfg.ItineraryHandler.BuildItinerary)
			r.Post("/maps-link", cfg.ItineraryHandler.MapsLink)
		})

		r.Route("/budget", func(r chi.Router) {
			r.Post("/estimate", cfg.BudgetHandler.Estimate)
			r.Post("/reconcile", cfg.BudgetHandler.Reconcile)
		})

		r.Route("/trips", func(r chi.Router) {
			r.Post("/", cfg.TripsHandler.SaveTrip)
			r.Get("/", cfg.TripsHandler.ListTrips)
			r.Get("/{tripID}", cfg.TripsHandler.GetTrip)
			r.Delete("/{tripID}", cfg.TripsHandler.DeleteTrip)
		})
	})

	return r
}
