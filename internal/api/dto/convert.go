package dto

import (
	"strings"

	"shipment-dispatch-service/internal/domain"
)

func (r TruckRequest) Domain() *domain.Truck {
	return &domain.Truck{
		TruckID:            strings.TrimSpace(r.TruckID),
		RegistrationNumber: strings.TrimSpace(r.RegistrationNumber),
		CapacityKg:         r.CapacityKg,
		CapacityVolume:     r.CapacityVolume,
	}
}

func NewTruckResponse(t *domain.Truck) TruckResponse {
	return TruckResponse{
		TruckID:            t.TruckID,
		RegistrationNumber: t.RegistrationNumber,
		CapacityKg:         t.CapacityKg,
		CapacityVolume:     t.CapacityVolume,
	}
}

func (a Address) domain() domain.Address {
	return domain.Address{
		Street:  strings.TrimSpace(a.Street),
		City:    strings.TrimSpace(a.City),
		State:   strings.TrimSpace(a.State),
		Pincode: strings.TrimSpace(a.Pincode),
		Country: strings.TrimSpace(a.Country),
	}
}

func newAddress(a domain.Address) Address {
	return Address{Street: a.Street, City: a.City, State: a.State, Pincode: a.Pincode, Country: a.Country}
}

func newCoordinates(c *domain.Coordinates) *Coordinates {
	if c == nil {
		return nil
	}
	return &Coordinates{Lon: c.Lon, Lat: c.Lat}
}

func (r ShipmentRequest) Domain() *domain.Shipment {
	return &domain.Shipment{
		ShipmentID:  strings.TrimSpace(r.ShipmentID),
		Origin:      r.Origin.domain(),
		Destination: r.Destination.domain(),
		Weight:      r.Weight,
		Volume:      r.Volume,
	}
}

func NewShipmentResponse(s *domain.Shipment) ShipmentResponse {
	return ShipmentResponse{
		ShipmentID:        s.ShipmentID,
		Origin:            newAddress(s.Origin),
		Destination:       newAddress(s.Destination),
		Weight:            s.Weight,
		Volume:            s.Volume,
		OriginCoords:      newCoordinates(s.OriginCoords),
		DestinationCoords: newCoordinates(s.DestinationCoords),
		AssignedVehicle:   s.AssignedVehicle,
	}
}

func NewListShipmentsResponse(shipments []*domain.Shipment) ListShipmentsResponse {
	res := ListShipmentsResponse{Shipments: make([]ShipmentResponse, 0, len(shipments))}
	for _, s := range shipments {
		res.Shipments = append(res.Shipments, NewShipmentResponse(s))
	}
	return res
}
