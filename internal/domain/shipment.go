package domain

import (
	"fmt"
	"strings"
)

// Represents a single consignment waiting to be carried by a truck.
// AssignedVehicle holds the registration number of the truck it was
// committed to; it stays nil until a finalized plan is applied.
// Coordinates are filled by the geocoding pass and are nil until then.
type Shipment struct {
	ShipmentID        string
	Origin            Address
	Destination       Address
	Weight            float64
	Volume            float64
	OriginCoords      *Coordinates
	DestinationCoords *Coordinates
	AssignedVehicle   *string
}

// Report whether both ends of the shipment have coordinates.
func (s *Shipment) Geocoded() bool {
	return s.OriginCoords != nil && s.DestinationCoords != nil
}

// Validate the shipment fields before they are stored.
func (s *Shipment) Validate() error {
	if s.Weight <= 0 || s.Volume <= 0 {
		return fmt.Errorf("shipment %s: weight and volume must be positive: %w", s.ShipmentID, ErrInvalid)
	}
	if strings.TrimSpace(s.Origin.City) == "" || strings.TrimSpace(s.Destination.City) == "" {
		return fmt.Errorf("shipment %s: origin and destination city are required: %w", s.ShipmentID, ErrInvalid)
	}
	return nil
}

// Assignment is a single shipment -> truck mutation produced by the committer.
type Assignment struct {
	ShipmentID  string
	TruckNumber string
}

// ShipmentCoordinates carries the coordinates resolved for one shipment.
// A nil side means it was already known or could not be resolved.
type ShipmentCoordinates struct {
	ShipmentID  string
	Origin      *Coordinates
	Destination *Coordinates
}
