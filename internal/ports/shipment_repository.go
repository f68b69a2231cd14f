package ports

import (
	"context"
	"shipment-dispatch-service/internal/domain"
)

// Port: a boundary for storing and retrieving Shipment entities.
type ShipmentRepository interface {
	// Retrieve every shipment, assigned or not.
	ListShipments(ctx context.Context) ([]*domain.Shipment, error)
	// Retrieve shipments missing origin or destination coordinates.
	ListUngeocodedShipments(ctx context.Context) ([]*domain.Shipment, error)
	// Insert shipments in a single transaction. Duplicates fail with domain.ErrConflict.
	CreateShipments(ctx context.Context, shipments []*domain.Shipment) error
	// Remove one shipment. Unknown ids fail with domain.ErrNotFound.
	DeleteShipment(ctx context.Context, shipmentID string) error
	// Apply all assignments in one transaction.
	SaveAssignments(ctx context.Context, assignments []domain.Assignment) error
	// Apply all resolved coordinates in one transaction.
	SaveCoordinates(ctx context.Context, coords []domain.ShipmentCoordinates) error
}

// FleetStore is everything a negotiation run reads and writes.
type FleetStore interface {
	ListTrucks(ctx context.Context) ([]*domain.Truck, error)
	ListShipments(ctx context.Context) ([]*domain.Shipment, error)
	SaveAssignments(ctx context.Context, assignments []domain.Assignment) error
}
