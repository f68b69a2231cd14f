package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shipment-dispatch-service/internal/api/dto"
	"shipment-dispatch-service/internal/domain"
)

// RouteSequencer orders the drop-offs committed to one truck.
type RouteSequencer interface {
	Sequence(ctx context.Context, truckNumber string) (*domain.TruckRoute, error)
}

type RouteHandler struct {
	Sequencer RouteSequencer
}

// Get returns the drop-off order for the truck named by its registration number.
func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	route, err := h.Sequencer.Sequence(r.Context(), chi.URLParam(r, "truckNumber"))
	if err != nil {
		writeServiceError(w, r, "sequence route", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewTruckRouteResponse(route))
}
