package dto

import "shipment-dispatch-service/internal/domain"

// OptimizeRoutesResponse carries the committed plan; null when every attempt was rejected.
type OptimizeRoutesResponse struct {
	OptimizedRoutes domain.Plan `json:"optimized_routes"`
}
