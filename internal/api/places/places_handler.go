package places

import (
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

// Search looks up places for a city and a single interest.
func (h *HandlerImpl) Search(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlacesHandler").Start(r.Context(), "Search", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/places/search"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Search"))

	var req types.PlaceSearchRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.ValidateRequest(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Search(ctx, req.City, req.Interest)
	if err != nil {
		span.RecordError(err)
		l.ErrorContext(ctx, "Place search failed", slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusForError(err), "Place search failed")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

// Assist searches places from a free-text travel request.
func (h *HandlerImpl) Assist(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlacesHandler").Start(r.Context(), "Assist", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/places/assist"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Assist"))

	var req types.AssistSearchRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.ValidateRequest(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.SearchFromPrompt(ctx, req.Prompt)
	if err != nil {
		span.RecordError(err)
		status := api.StatusForError(err)
		msg := "Assistant search failed"
		if status == http.StatusBadRequest {
			msg = err.Error()
		}
		l.WarnContext(ctx, "Assistant search failed", slog.Any("error", err))
		api.ErrorResponse(w, r, status, msg)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}
