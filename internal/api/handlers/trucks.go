package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"shipment-dispatch-service/internal/api/dto"
	"shipment-dispatch-service/internal/domain"
	"shipment-dispatch-service/internal/ports"
)

// TruckHandler exposes fleet truck endpoints.
type TruckHandler struct {
	Repo ports.TruckRepository
}

func (h *TruckHandler) List(w http.ResponseWriter, r *http.Request) {
	trucks, err := h.Repo.ListTrucks(r.Context())
	if err != nil {
		writeServiceError(w, r, "list trucks", err)
		return
	}

	res := dto.ListTrucksResponse{Trucks: make([]dto.TruckResponse, 0, len(trucks))}
	for _, t := range trucks {
		res.Trucks = append(res.Trucks, dto.NewTruckResponse(t))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *TruckHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.TruckRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	trucks, err := newTrucks([]dto.TruckRequest{req})
	if err != nil {
		writeServiceError(w, r, "create truck", err)
		return
	}

	if err := h.Repo.CreateTrucks(r.Context(), trucks); err != nil {
		writeServiceError(w, r, "create truck", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.NewTruckResponse(trucks[0]))
}

// CreateBulk inserts a JSON array of trucks in one transaction.
func (h *TruckHandler) CreateBulk(w http.ResponseWriter, r *http.Request) {
	var req []dto.TruckRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	trucks, err := newTrucks(req)
	if err != nil {
		writeServiceError(w, r, "create trucks", err)
		return
	}

	if err := h.Repo.CreateTrucks(r.Context(), trucks); err != nil {
		writeServiceError(w, r, "create trucks", err)
		return
	}

	res := dto.ListTrucksResponse{Trucks: make([]dto.TruckResponse, 0, len(trucks))}
	for _, t := range trucks {
		res.Trucks = append(res.Trucks, dto.NewTruckResponse(t))
	}
	writeJSON(w, r, http.StatusCreated, res)
}

func (h *TruckHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.DeleteTruck(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, "delete truck", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func newTrucks(reqs []dto.TruckRequest) ([]*domain.Truck, error) {
	trucks := make([]*domain.Truck, 0, len(reqs))
	for _, req := range reqs {
		t := req.Domain()
		if t.TruckID == "" {
			t.TruckID = uuid.NewString()
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		trucks = append(trucks, t)
	}
	return trucks, nil
}
