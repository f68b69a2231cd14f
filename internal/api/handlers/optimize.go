package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"shipment-dispatch-service/internal/api/dto"
	"shipment-dispatch-service/internal/platform/obs"
	"shipment-dispatch-service/internal/services"
)

// RouteOptimizer runs one plan negotiation over the stored fleet.
type RouteOptimizer interface {
	OptimizeRoutes(ctx context.Context) (services.NegotiationResult, error)
}

type OptimizeHandler struct {
	Optimizer RouteOptimizer
}

// Optimize negotiates and commits a truck assignment plan. An exhausted run
// is not an error: it answers 200 with a null plan.
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	res, err := h.Optimizer.OptimizeRoutes(r.Context())
	if err != nil {
		writeServiceError(w, r, "optimize routes", err)
		return
	}

	obs.Logger(r.Context()).Info("optimize routes finished",
		zap.String("req_id", obs.RequestID(r.Context())),
		zap.String("state", string(res.State)),
		zap.Int("attempts", res.Attempts),
		zap.Int("assignments", len(res.Assignments)),
	)

	if res.State != services.StateCommitted {
		writeJSON(w, r, http.StatusOK, dto.OptimizeRoutesResponse{})
		return
	}
	writeJSON(w, r, http.StatusOK, dto.OptimizeRoutesResponse{OptimizedRoutes: res.Plan})
}
