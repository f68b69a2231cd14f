package domain

import "fmt"

// Capacity dimension of a truck.
type Dimension string

const (
	DimensionWeight Dimension = "weight"
	DimensionVolume Dimension = "volume"
)

// Delivery truck with fixed weight (kg) and volume (m³) limits.
// RegistrationNumber is unique and is the key plans refer to.
type Truck struct {
	TruckID            string
	RegistrationNumber string
	CapacityKg         float64
	CapacityVolume     float64
}

// Check a summed load against the truck limits.
// Weight is checked before volume so the reported dimension is stable.
func (t *Truck) CheckLoad(weight, volume float64) error {
	if weight > t.CapacityKg {
		return &CapacityError{
			TruckNumber: t.RegistrationNumber,
			Dimension:   DimensionWeight,
			Load:        weight,
			Capacity:    t.CapacityKg,
		}
	}
	if volume > t.CapacityVolume {
		return &CapacityError{
			TruckNumber: t.RegistrationNumber,
			Dimension:   DimensionVolume,
			Load:        volume,
			Capacity:    t.CapacityVolume,
		}
	}
	return nil
}

// Validate the truck fields before they are stored.
func (t *Truck) Validate() error {
	if t.RegistrationNumber == "" {
		return fmt.Errorf("truck: registration number must be non-empty: %w", ErrInvalid)
	}
	if t.CapacityKg <= 0 || t.CapacityVolume <= 0 {
		return fmt.Errorf("truck %s: capacities must be positive: %w", t.RegistrationNumber, ErrInvalid)
	}
	return nil
}
