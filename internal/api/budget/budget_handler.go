package budget

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/raiigauravv/WanderWhiz/internal/api"
	"github.com/raiigauravv/WanderWhiz/internal/types"
)

type HandlerImpl struct {
	logger *slog.Logger
}

func NewHandlerImpl(logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{logger: logger}
}

// Estimate returns a fresh budget for the posted places.
func (h *HandlerImpl) Estimate(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("BudgetHandler").Start(r.Context(), "Estimate", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/budget/estimate"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Estimate"))

	var req types.BudgetEstimateRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.ValidateRequest(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	estimate := Estimate(req.Places)
	span.SetAttributes(
		attribute.Int("places.count", len(req.Places)),
		attribute.Int("budget.total", estimate.Total),
	)
	l.DebugContext(ctx, "Budget estimated", slog.Int("total", estimate.Total))
	api.WriteJSONResponse(w, r, http.StatusOK, estimate)
}

// Reconcile normalizes a previously stored budget.
func (h *HandlerImpl) Reconcile(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("BudgetHandler").Start(r.Context(), "Reconcile", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/budget/reconcile"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Reconcile"))

	var req types.BudgetReconcileRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.ValidateRequest(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, Reconcile(req.Saved, req.Places))
}
