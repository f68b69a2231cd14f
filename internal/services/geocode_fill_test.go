package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipment-dispatch-service/internal/adapters/geocode"
	"shipment-dispatch-service/internal/adapters/repositories"
	"shipment-dispatch-service/internal/domain"
	"shipment-dispatch-service/internal/platform/db"
)

func newSQLiteRepo(t *testing.T) *repositories.SQLRepository {
	t.Helper()

	conn, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, repositories.Migrate(context.Background(), conn, db.DriverSQLite))

	return repositories.NewSQLRepository(conn, db.DriverSQLite)
}

func TestGeocodeFillResolvesAndSkipsFailures(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	require.NoError(t, repo.CreateShipments(ctx, []*domain.Shipment{
		{ShipmentID: "s1", Origin: domain.Address{City: "Pune", Country: "India"}, Destination: domain.Address{City: "Mumbai", Country: "India"}, Weight: 1, Volume: 1},
		{ShipmentID: "s2", Origin: domain.Address{City: "Atlantis"}, Destination: domain.Address{City: "Mumbai", Country: "India"}, Weight: 1, Volume: 1},
		{ShipmentID: "s3", Origin: domain.Address{City: "Broken"}, Destination: domain.Address{City: "Pune", Country: "India"}, Weight: 1, Volume: 1},
		{
			ShipmentID: "s4", Origin: domain.Address{City: "Done"}, Destination: domain.Address{City: "Done"}, Weight: 1, Volume: 1,
			OriginCoords: &domain.Coordinates{Lon: 1, Lat: 1}, DestinationCoords: &domain.Coordinates{Lon: 2, Lat: 2},
		},
	}))

	geocoder := geocode.NewMockGeocoder(map[string]domain.Coordinates{
		"Pune, India":   {Lon: 73.85, Lat: 18.52},
		"Mumbai, India": {Lon: 72.88, Lat: 19.07},
	})
	geocoder.Fail["Broken"] = true

	updated, err := NewGeocodeFiller(repo, geocoder, 2, nil).Fill(ctx)
	require.NoError(t, err)

	require.Len(t, updated, 2)
	assert.Equal(t, "s1", updated[0].ShipmentID)
	assert.Equal(t, "s2", updated[1].ShipmentID)
	assert.True(t, updated[0].Geocoded())
	assert.Nil(t, updated[1].OriginCoords)
	require.NotNil(t, updated[1].DestinationCoords)

	ungeocoded, err := repo.ListUngeocodedShipments(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(ungeocoded))
	for _, s := range ungeocoded {
		ids = append(ids, s.ShipmentID)
	}
	assert.Equal(t, []string{"s2", "s3"}, ids)

	assert.NotContains(t, geocoder.Calls(), "Done")
}

func TestGeocodeFillNothingPending(t *testing.T) {
	repo := newSQLiteRepo(t)
	geocoder := geocode.NewMockGeocoder(nil)

	updated, err := NewGeocodeFiller(repo, geocoder, 4, nil).Fill(context.Background())
	require.NoError(t, err)
	assert.Empty(t, updated)
	assert.Empty(t, geocoder.Calls())
}

func TestGeocodeFillStopsOnCancelledContext(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	require.NoError(t, repo.CreateShipments(ctx, []*domain.Shipment{
		{ShipmentID: "s1", Origin: domain.Address{City: "Pune"}, Destination: domain.Address{City: "Mumbai"}, Weight: 1, Volume: 1},
	}))

	cctx, cancel := context.WithCancel(ctx)
	cancel()

	_, err := NewGeocodeFiller(repo, geocode.NewMockGeocoder(nil), 1, nil).Fill(cctx)
	assert.Error(t, err)
}

func TestGeocodeFillKeepsOriginWhenDestinationFails(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	require.NoError(t, repo.CreateShipments(ctx, []*domain.Shipment{
		{ShipmentID: "s1", Origin: domain.Address{City: "Pune", Country: "India"}, Destination: domain.Address{City: "Broken"}, Weight: 1, Volume: 1},
	}))

	geocoder := geocode.NewMockGeocoder(map[string]domain.Coordinates{
		"Pune, India": {Lon: 73.85, Lat: 18.52},
	})
	geocoder.Fail["Broken"] = true

	updated, err := NewGeocodeFiller(repo, geocoder, 1, nil).Fill(ctx)
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, &domain.Coordinates{Lon: 73.85, Lat: 18.52}, updated[0].OriginCoords)
	assert.Nil(t, updated[0].DestinationCoords)

	stored, err := repo.ListShipments(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.NotNil(t, stored[0].OriginCoords)
	assert.InDelta(t, 73.85, stored[0].OriginCoords.Lon, 1e-9)
	assert.Nil(t, stored[0].DestinationCoords)
}
