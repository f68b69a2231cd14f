package repositories

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"shipment-dispatch-service/internal/domain"
)

// Fleet data loaded by dbtool seed and by the server when SEED_PATH exists.
// YAML is a superset of JSON so both formats decode here.
type SeedFile struct {
	Trucks    []TruckSeed    `yaml:"trucks"`
	Shipments []ShipmentSeed `yaml:"shipments"`
}

type TruckSeed struct {
	TruckID            string  `yaml:"truck_id"`
	RegistrationNumber string  `yaml:"registration_number"`
	CapacityKg         float64 `yaml:"capacity_kg"`
	CapacityVolume     float64 `yaml:"capacity_volume"`
}

type AddressSeed struct {
	Street  string `yaml:"street"`
	City    string `yaml:"city"`
	State   string `yaml:"state"`
	Pincode string `yaml:"pincode"`
	Country string `yaml:"country"`
}

type ShipmentSeed struct {
	ShipmentID  string      `yaml:"shipment_id"`
	Origin      AddressSeed `yaml:"origin"`
	Destination AddressSeed `yaml:"destination"`
	Weight      float64     `yaml:"weight"`
	Volume      float64     `yaml:"volume"`
}

func (a AddressSeed) address() domain.Address {
	return domain.Address{
		Street:  strings.TrimSpace(a.Street),
		City:    strings.TrimSpace(a.City),
		State:   strings.TrimSpace(a.State),
		Pincode: strings.TrimSpace(a.Pincode),
		Country: strings.TrimSpace(a.Country),
	}
}

// Read and validate a seed file.
func ReadSeedFile(path string) (*SeedFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed fleet: read %q: %w", path, err)
	}

	var data SeedFile
	if err := yaml.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("seed fleet: parse %q: %w", path, err)
	}

	return &data, nil
}

// Convert seed rows into validated domain values.
func (f *SeedFile) Fleet() ([]*domain.Truck, []*domain.Shipment, error) {
	trucks := make([]*domain.Truck, 0, len(f.Trucks))
	for i, item := range f.Trucks {
		t := &domain.Truck{
			TruckID:            strings.TrimSpace(item.TruckID),
			RegistrationNumber: strings.TrimSpace(item.RegistrationNumber),
			CapacityKg:         item.CapacityKg,
			CapacityVolume:     item.CapacityVolume,
		}
		if t.TruckID == "" {
			t.TruckID = uuid.NewString()
		}
		if err := t.Validate(); err != nil {
			return nil, nil, fmt.Errorf("seed fleet: truck at index %d: %w", i+1, err)
		}
		trucks = append(trucks, t)
	}

	shipments := make([]*domain.Shipment, 0, len(f.Shipments))
	for i, item := range f.Shipments {
		sh := &domain.Shipment{
			ShipmentID:  strings.TrimSpace(item.ShipmentID),
			Origin:      item.Origin.address(),
			Destination: item.Destination.address(),
			Weight:      item.Weight,
			Volume:      item.Volume,
		}
		if sh.ShipmentID == "" {
			sh.ShipmentID = uuid.NewString()
		}
		if err := sh.Validate(); err != nil {
			return nil, nil, fmt.Errorf("seed fleet: shipment at index %d: %w", i+1, err)
		}
		shipments = append(shipments, sh)
	}

	return trucks, shipments, nil
}

// Populate the database from a YAML or JSON seed file.
func (s *SQLRepository) SeedFromFile(ctx context.Context, path string) (int, int, error) {
	data, err := ReadSeedFile(path)
	if err != nil {
		return 0, 0, err
	}

	trucks, shipments, err := data.Fleet()
	if err != nil {
		return 0, 0, err
	}

	if err := s.CreateTrucks(ctx, trucks); err != nil {
		return 0, 0, fmt.Errorf("seed fleet: %w", err)
	}
	if err := s.CreateShipments(ctx, shipments); err != nil {
		return len(trucks), 0, fmt.Errorf("seed fleet: %w", err)
	}

	return len(trucks), len(shipments), nil
}
