package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"shipment-dispatch-service/internal/domain"
	"shipment-dispatch-service/internal/platform/obs"
	"shipment-dispatch-service/internal/ports"
)

// Committer applies a finalized plan to shipment records.
type Committer struct {
	store  ports.FleetStore
	logger *zap.Logger
}

func NewCommitter(store ports.FleetStore, logger *zap.Logger) *Committer {
	return &Committer{store: store, logger: obs.OrNop(logger)}
}

// Commit resolves each entry's truck by registration number and each
// shipment by id, then saves every resulting assignment in one transaction.
// Unknown trucks and shipment ids are logged and skipped.
// On success the in-memory shipments carry their new vehicle.
func (c *Committer) Commit(
	ctx context.Context,
	plan domain.Plan,
	trucks map[string]*domain.Truck,
	shipments map[string]*domain.Shipment,
) (_ []domain.Assignment, err error) {
	defer obs.Time(ctx, "assignments.Commit")(&err)

	if c.store == nil {
		return nil, errors.New("commit assignments: store is nil")
	}

	assignments := make([]domain.Assignment, 0, len(shipments))
	for _, entry := range plan {
		truck, ok := trucks[entry.TruckNumber]
		if !ok {
			c.logger.Warn("skipping entry for unknown truck", zap.String("truck_number", entry.TruckNumber))
			continue
		}

		for _, id := range entry.ShipmentIDs {
			if _, ok := shipments[id]; !ok {
				c.logger.Warn("skipping unknown shipment", zap.String("shipment_id", id), zap.String("truck_number", truck.RegistrationNumber))
				continue
			}
			assignments = append(assignments, domain.Assignment{
				ShipmentID:  id,
				TruckNumber: truck.RegistrationNumber,
			})
		}
	}

	if err := c.store.SaveAssignments(ctx, assignments); err != nil {
		return nil, fmt.Errorf("commit assignments: %w", err)
	}

	for _, a := range assignments {
		vehicle := a.TruckNumber
		shipments[a.ShipmentID].AssignedVehicle = &vehicle
	}

	return assignments, nil
}
