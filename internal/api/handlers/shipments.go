package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"shipment-dispatch-service/internal/api/dto"
	"shipment-dispatch-service/internal/domain"
	"shipment-dispatch-service/internal/ports"
)

// GeocodeFiller resolves missing shipment coordinates.
type GeocodeFiller interface {
	Fill(ctx context.Context) ([]*domain.Shipment, error)
}

// ShipmentHandler exposes shipment endpoints.
type ShipmentHandler struct {
	Repo   ports.ShipmentRepository
	Filler GeocodeFiller
}

func (h *ShipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	shipments, err := h.Repo.ListShipments(r.Context())
	if err != nil {
		writeServiceError(w, r, "list shipments", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewListShipmentsResponse(shipments))
}

func (h *ShipmentHandler) ListUngeocoded(w http.ResponseWriter, r *http.Request) {
	shipments, err := h.Repo.ListUngeocodedShipments(r.Context())
	if err != nil {
		writeServiceError(w, r, "list ungeocoded shipments", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewListShipmentsResponse(shipments))
}

func (h *ShipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.ShipmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	shipments, err := newShipments([]dto.ShipmentRequest{req})
	if err != nil {
		writeServiceError(w, r, "create shipment", err)
		return
	}

	if err := h.Repo.CreateShipments(r.Context(), shipments); err != nil {
		writeServiceError(w, r, "create shipment", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.NewShipmentResponse(shipments[0]))
}

// CreateBulk inserts a JSON array of shipments in one transaction.
func (h *ShipmentHandler) CreateBulk(w http.ResponseWriter, r *http.Request) {
	var req []dto.ShipmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	shipments, err := newShipments(req)
	if err != nil {
		writeServiceError(w, r, "create shipments", err)
		return
	}

	if err := h.Repo.CreateShipments(r.Context(), shipments); err != nil {
		writeServiceError(w, r, "create shipments", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.NewListShipmentsResponse(shipments))
}

func (h *ShipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.DeleteShipment(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, "delete shipment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Geocode fills missing coordinates and returns the shipments that changed.
func (h *ShipmentHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	if h.Filler == nil {
		writeError(w, r, http.StatusServiceUnavailable, "geocoding is not configured")
		return
	}

	updated, err := h.Filler.Fill(r.Context())
	if err != nil {
		writeServiceError(w, r, "geocode shipments", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewListShipmentsResponse(updated))
}

func newShipments(reqs []dto.ShipmentRequest) ([]*domain.Shipment, error) {
	shipments := make([]*domain.Shipment, 0, len(reqs))
	for _, req := range reqs {
		s := req.Domain()
		if s.ShipmentID == "" {
			s.ShipmentID = uuid.NewString()
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		shipments = append(shipments, s)
	}
	return shipments, nil
}
