package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipment-dispatch-service/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestNearestNeighborRouteOrdersByDistance(t *testing.T) {
	pune := domain.Coordinates{Lon: 73.8567, Lat: 18.5204}
	lonavala := domain.Coordinates{Lon: 73.4062, Lat: 18.7546}
	mumbai := domain.Coordinates{Lon: 72.8777, Lat: 19.0760}

	shipments := []*domain.Shipment{
		{ShipmentID: "a", Destination: domain.Address{City: "Mumbai"}, OriginCoords: &pune, DestinationCoords: &mumbai},
		{ShipmentID: "b", Destination: domain.Address{City: "Lonavala"}, OriginCoords: &pune, DestinationCoords: &lonavala},
		{ShipmentID: "c", Destination: domain.Address{City: "Mumbai"}, DestinationCoords: &mumbai},
		{ShipmentID: "d", Destination: domain.Address{City: "Nowhere"}},
	}

	route := NearestNeighborRoute("T1", shipments)

	require.NotNil(t, route.Start)
	assert.Equal(t, pune, *route.Start)
	require.Len(t, route.Stops, 2)
	assert.Equal(t, "Lonavala", route.Stops[0].City)
	assert.Equal(t, []string{"b"}, route.Stops[0].ShipmentIDs)
	assert.Equal(t, "Mumbai", route.Stops[1].City)
	assert.Equal(t, []string{"a", "c"}, route.Stops[1].ShipmentIDs)
	assert.Equal(t, []string{"d"}, route.Unrouted)

	wantTotal := domain.HaversineMeters(pune, lonavala) + domain.HaversineMeters(lonavala, mumbai)
	assert.InDelta(t, wantTotal, route.TotalMeters, 1e-6)
}

func TestNearestNeighborRouteEmpty(t *testing.T) {
	route := NearestNeighborRoute("T1", nil)
	assert.Nil(t, route.Start)
	assert.Empty(t, route.Stops)
	assert.Zero(t, route.TotalMeters)
}

func TestRouteSequencerUsesCommittedShipmentsOnly(t *testing.T) {
	store := testFleet()
	mumbai := domain.Coordinates{Lon: 72.8777, Lat: 19.0760}
	store.shipments[0].AssignedVehicle = ptr("T1")
	store.shipments[0].DestinationCoords = &mumbai
	store.shipments[1].AssignedVehicle = ptr("T2")
	store.shipments[1].DestinationCoords = &mumbai

	route, err := NewRouteSequencer(store).Sequence(context.Background(), "T1")
	require.NoError(t, err)
	require.Len(t, route.Stops, 1)
	assert.Equal(t, []string{"s1"}, route.Stops[0].ShipmentIDs)

	_, err = NewRouteSequencer(store).Sequence(context.Background(), "T9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
