package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipment-dispatch-service/internal/adapters/oracle"
	"shipment-dispatch-service/internal/domain"
	"shipment-dispatch-service/internal/prompts"
)

// Two trucks, three shipments, stored in SQLite. The first proposal puts
// 1300 kg on T1 and is rejected by the validator. The second puts s3
// (600 kg) on the 500 kg T2; the validator accepts it but the local check
// does not. The third proposal is feasible and gets committed.
func TestOptimizeRoutesEndToEnd(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	fleet := testFleet()
	require.NoError(t, repo.CreateTrucks(ctx, fleet.trucks))
	require.NoError(t, repo.CreateShipments(ctx, fleet.shipments))

	transport := oracle.NewScriptedTransport().
		On(proposer, oracle.Text(planAllOnT1, "Corrected plan:\n"+planT2Heavy, "```json\n"+planFeasible+"\n```")...).
		On(validator, oracle.Text(verdictT1Over, verdictOK, verdictOK)...).
		On(finalizer, oracle.Text(planFeasible)...)

	roles, err := prompts.Default()
	require.NoError(t, err)
	client, err := NewOracleClient(transport, roles)
	require.NoError(t, err)

	optimizer := NewRouteOptimizer(repo, NewNegotiator(client, NewCommitter(repo, nil), nil))

	res, err := optimizer.OptimizeRoutes(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, res.State)
	assert.Equal(t, 3, res.Attempts)

	assert.Equal(t, []string{
		"",
		domain.CapacityFeedback("T1", "weight"),
		domain.CapacityFeedback("T2", "weight"),
	}, previousFailures(t, transport))

	shipments, err := repo.ListShipments(ctx)
	require.NoError(t, err)

	got := map[string]string{}
	for _, s := range shipments {
		require.NotNil(t, s.AssignedVehicle, s.ShipmentID)
		got[s.ShipmentID] = *s.AssignedVehicle
	}
	assert.Equal(t, map[string]string{"s1": "T1", "s2": "T2", "s3": "T1"}, got)

	// every committed truck stays within both capacity limits
	trucks, err := repo.ListTrucks(ctx)
	require.NoError(t, err)
	snap := BuildSnapshot(trucks, shipments)
	assert.NoError(t, res.Plan.Check(snap.TrucksByNumber, snap.ShipmentsByID))
}

func TestOptimizeRoutesExhaustedLeavesStorageUntouched(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	fleet := testFleet()
	require.NoError(t, repo.CreateTrucks(ctx, fleet.trucks))
	require.NoError(t, repo.CreateShipments(ctx, fleet.shipments))

	transport := oracle.NewScriptedTransport().
		On(proposer, oracle.Text("no idea")...).
		On(validator, oracle.Text(verdictOK)...).
		On(finalizer, oracle.Text(planFeasible)...)

	roles, err := prompts.Default()
	require.NoError(t, err)
	client, err := NewOracleClient(transport, roles)
	require.NoError(t, err)

	res, err := NewRouteOptimizer(repo, NewNegotiator(client, NewCommitter(repo, nil), nil)).OptimizeRoutes(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateExhausted, res.State)
	assert.Len(t, transport.Calls(proposer), MaxAttempts)
	assert.Empty(t, transport.Calls(validator))

	shipments, err := repo.ListShipments(ctx)
	require.NoError(t, err)
	for _, s := range shipments {
		assert.Nil(t, s.AssignedVehicle, s.ShipmentID)
	}
}

func TestOptimizeRoutesRequiresWiring(t *testing.T) {
	res, err := NewRouteOptimizer(nil, nil).OptimizeRoutes(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StateFatal, res.State)
}
