package trips

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
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

func tripIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID format")
		return uuid.Nil, false
	}
	return id, true
}

func (h *HandlerImpl) SaveTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripsHandler").Start(r.Context(), "SaveTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/trips"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "SaveTrip"))

	var req types.SaveTripRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.ValidateRequest(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	trip, err := h.service.SaveTrip(ctx, api.UserIDFromRequest(r), req)
	if err != nil {
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusForError(err), "Failed to save trip")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, trip)
}

func (h *HandlerImpl) ListTrips(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripsHandler").Start(r.Context(), "ListTrips", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/trips"),
	))
	defer span.End()

	summaries, err := h.service.ListTrips(ctx, api.UserIDFromRequest(r))
	if err != nil {
		span.RecordError(err)
		h.logger.ErrorContext(ctx, "Failed to list trips", slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusForError(err), "Failed to list trips")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, summaries)
}

func (h *HandlerImpl) GetTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripsHandler").Start(r.Context(), "GetTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/trips/{tripID}"),
	))
	defer span.End()

	id, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	trip, err := h.service.GetTrip(ctx, id)
	if err != nil {
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusForError(err), "Failed to load trip")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, trip)
}

func (h *HandlerImpl) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripsHandler").Start(r.Context(), "DeleteTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/trips/{tripID}"),
	))
	defer span.End()

	id, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteTrip(ctx, api.UserIDFromRequest(r), id); err != nil {
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusForError(err), "Failed to delete trip")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
