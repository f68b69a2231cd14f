package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
	ErrInvalid  = errors.New("invalid input")

	// Oracle text could not be turned into the expected JSON shape.
	ErrMalformedOracleOutput = errors.New("malformed oracle output")
	// The oracle transport could not complete a call (network, auth, quota).
	ErrOracleUnavailable = errors.New("oracle unavailable")
	// The finalize stage produced no usable plan. Never retried.
	ErrFinalizeFailed = errors.New("final plan could not be processed")
)

// CapacityError reports a truck whose assigned load exceeds one capacity dimension.
type CapacityError struct {
	TruckNumber string
	Dimension   Dimension
	Load        float64
	Capacity    float64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf(
		"truck %s exceeds %s capacity: load=%g capacity=%g",
		e.TruckNumber, e.Dimension, e.Load, e.Capacity,
	)
}

// DuplicateShipmentError reports a shipment assigned to more than one plan entry.
type DuplicateShipmentError struct {
	ShipmentID string
	Trucks     []string
}

func (e *DuplicateShipmentError) Error() string {
	return fmt.Sprintf("shipment %s assigned to more than one truck: %v", e.ShipmentID, e.Trucks)
}
