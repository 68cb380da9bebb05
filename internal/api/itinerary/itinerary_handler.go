package itinerary

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/raiigauravv/WanderWhiz/internal/api"
	"github.com/raiigauravv/WanderWhiz/internal/types"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

// BuildItinerary assembles an ordered itinerary from a selection of places.
func (h *HandlerImpl) BuildItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "BuildItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/itinerary"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "BuildItinerary"))
	l.DebugContext(ctx, "Build itinerary handler invoked")

	var req types.BuildItineraryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.ValidateRequest(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	itinerary, err := h.service.BuildItinerary(ctx, req)
	if err != nil {
		span.RecordError(err)
		status := api.StatusForError(err)
		msg := err.Error()
		var routingErr *types.RoutingError
		switch {
		case errors.As(err, &routingErr):
			msg = "Route calculation failed: " + routingErr.Message
		case status == http.StatusInternalServerError:
			l.ErrorContext(ctx, "Failed to build itinerary", slog.Any("error", err))
			msg = "Failed to build itinerary"
		}
		api.ErrorResponse(w, r, status, msg)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, itinerary)
}

// MapsLink returns a shareable maps URL for an ordered list of places.
func (h *HandlerImpl) MapsLink(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "MapsLink", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/itinerary/maps-link"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "MapsLink"))

	var req types.MapsLinkRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.ValidateRequest(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	link, err := h.service.MapsLink(ctx, req.Places)
	if err != nil {
		api.ErrorResponse(w, r, api.StatusForError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.MapsLinkResponse{URL: link})
}
