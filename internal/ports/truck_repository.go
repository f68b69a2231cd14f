package ports

import (
	"context"
	"shipment-dispatch-service/internal/domain"
)

// Port: a boundary for storing and retrieving Truck entities.
type TruckRepository interface {
	// Retrieve every truck in the fleet.
	ListTrucks(ctx context.Context) ([]*domain.Truck, error)
	// Insert trucks in a single transaction. Duplicates fail with domain.ErrConflict.
	CreateTrucks(ctx context.Context, trucks []*domain.Truck) error
	// Remove one truck. Unknown ids fail with domain.ErrNotFound.
	DeleteTruck(ctx context.Context, truckID string) error
}
