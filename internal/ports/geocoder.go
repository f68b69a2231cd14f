package ports

import (
	"context"
	"shipment-dispatch-service/internal/domain"
)

// Contract for turning a free-form address line into coordinates.
type Geocoder interface {
	// Return coordinates for the address; ok is false when nothing matched.
	Geocode(ctx context.Context, address string) (coords domain.Coordinates, ok bool, err error)
}

// Contract for caching address -> coordinate lookups.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
