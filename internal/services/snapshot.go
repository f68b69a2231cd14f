package services

import (
	"context"
	"fmt"

	"shipment-dispatch-service/internal/domain"
	"shipment-dispatch-service/internal/platform/obs"
	"shipment-dispatch-service/internal/ports"
)

// Flat truck record sent to the oracle.
type TruckRecord struct {
	ID             string  `json:"id"`
	TruckNumber    string  `json:"truck_number"`
	CapacityWeight float64 `json:"capacity_weight"`
	CapacityVolume float64 `json:"capacity_volume"`
}

// Flat shipment record sent to the oracle.
type ShipmentRecord struct {
	ID              string  `json:"id"`
	OriginCity      string  `json:"origin_address_city"`
	DestinationCity string  `json:"destination_address_city"`
	Weight          float64 `json:"weight"`
	Volume          float64 `json:"volume"`
}

// Snapshot is the fleet as seen by one negotiation run: the serializable
// records for the oracle plus lookup maps for checking and committing.
type Snapshot struct {
	Trucks    []TruckRecord    `json:"trucks"`
	Shipments []ShipmentRecord `json:"shipments"`

	TrucksByNumber map[string]*domain.Truck    `json:"-"`
	ShipmentsByID  map[string]*domain.Shipment `json:"-"`
}

// BuildSnapshot flattens every truck and shipment. Nothing is filtered out,
// including shipments that already carry an assignment.
func BuildSnapshot(trucks []*domain.Truck, shipments []*domain.Shipment) *Snapshot {
	snap := &Snapshot{
		Trucks:         make([]TruckRecord, 0, len(trucks)),
		Shipments:      make([]ShipmentRecord, 0, len(shipments)),
		TrucksByNumber: make(map[string]*domain.Truck, len(trucks)),
		ShipmentsByID:  make(map[string]*domain.Shipment, len(shipments)),
	}

	for _, t := range trucks {
		snap.Trucks = append(snap.Trucks, TruckRecord{
			ID:             t.TruckID,
			TruckNumber:    t.RegistrationNumber,
			CapacityWeight: t.CapacityKg,
			CapacityVolume: t.CapacityVolume,
		})
		snap.TrucksByNumber[t.RegistrationNumber] = t
	}

	for _, s := range shipments {
		snap.Shipments = append(snap.Shipments, ShipmentRecord{
			ID:              s.ShipmentID,
			OriginCity:      s.Origin.City,
			DestinationCity: s.Destination.City,
			Weight:          s.Weight,
			Volume:          s.Volume,
		})
		snap.ShipmentsByID[s.ShipmentID] = s
	}

	return snap
}

// LoadSnapshot reads the fleet from storage and builds a snapshot.
func LoadSnapshot(ctx context.Context, store ports.FleetStore) (_ *Snapshot, err error) {
	defer obs.Time(ctx, "snapshot.Load")(&err)

	trucks, err := store.ListTrucks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: list trucks: %w", err)
	}

	shipments, err := store.ListShipments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: list shipments: %w", err)
	}

	return BuildSnapshot(trucks, shipments), nil
}
