package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipment-dispatch-service/internal/domain"
)

func TestCommitSkipsUnknownTrucksAndShipments(t *testing.T) {
	store := testFleet()
	snap := BuildSnapshot(store.trucks, store.shipments)

	plan := domain.Plan{
		{TruckNumber: "T9", ShipmentIDs: domain.ShipmentIDs{"s1"}},
		{TruckNumber: "T2", ShipmentIDs: domain.ShipmentIDs{"s2", "s404"}},
	}

	got, err := NewCommitter(store, nil).Commit(context.Background(), plan, snap.TrucksByNumber, snap.ShipmentsByID)
	require.NoError(t, err)

	want := []domain.Assignment{{ShipmentID: "s2", TruckNumber: "T2"}}
	assert.Equal(t, want, got)
	require.Len(t, store.saved, 1)
	assert.Equal(t, want, store.saved[0])

	assert.Nil(t, snap.ShipmentsByID["s1"].AssignedVehicle)
	require.NotNil(t, snap.ShipmentsByID["s2"].AssignedVehicle)
	assert.Equal(t, "T2", *snap.ShipmentsByID["s2"].AssignedVehicle)
}

func TestCommitEmptyPlanSavesNothingButSucceeds(t *testing.T) {
	store := testFleet()
	snap := BuildSnapshot(store.trucks, store.shipments)

	got, err := NewCommitter(store, nil).Commit(context.Background(), domain.Plan{}, snap.TrucksByNumber, snap.ShipmentsByID)
	require.NoError(t, err)
	assert.Empty(t, got)
	require.Len(t, store.saved, 1)
	assert.Empty(t, store.saved[0])
}

func TestCommitRequiresStore(t *testing.T) {
	_, err := NewCommitter(nil, nil).Commit(context.Background(), nil, nil, nil)
	assert.Error(t, err)
}
