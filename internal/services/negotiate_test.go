package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipment-dispatch-service/internal/adapters/oracle"
	"shipment-dispatch-service/internal/domain"
	"shipment-dispatch-service/internal/prompts"
)

const (
	proposer  = string(prompts.RoleProposer)
	validator = string(prompts.RoleValidator)
	finalizer = string(prompts.RoleFinalizer)
)

func negotiate(t *testing.T, transport *oracle.ScriptedTransport, store *memStore) (NegotiationResult, *Snapshot, error) {
	t.Helper()

	snap := BuildSnapshot(store.trucks, store.shipments)
	res, err := newTestNegotiator(t, transport, store).Negotiate(context.Background(), snap)
	return res, snap, err
}

func TestNegotiateCommitsFirstValidatedPlan(t *testing.T) {
	store := testFleet()
	transport := oracle.NewScriptedTransport().
		On(proposer, oracle.Text(planFeasible)...).
		On(validator, oracle.Text(verdictOK)...).
		On(finalizer, oracle.Text("```json\n"+planFeasible+"\n```")...)

	res, snap, err := negotiate(t, transport, store)
	require.NoError(t, err)

	assert.Equal(t, StateCommitted, res.State)
	assert.Equal(t, 1, res.Attempts)
	assert.Len(t, transport.Calls(finalizer), 1)

	require.Len(t, store.saved, 1)
	assert.ElementsMatch(t, []domain.Assignment{
		{ShipmentID: "s1", TruckNumber: "T1"},
		{ShipmentID: "s3", TruckNumber: "T1"},
		{ShipmentID: "s2", TruckNumber: "T2"},
	}, store.saved[0])

	require.NotNil(t, snap.ShipmentsByID["s2"].AssignedVehicle)
	assert.Equal(t, "T2", *snap.ShipmentsByID["s2"].AssignedVehicle)
}

func TestNegotiateStopsAfterMaxAttempts(t *testing.T) {
	store := testFleet()
	transport := oracle.NewScriptedTransport().
		On(proposer, oracle.Text(planAllOnT1)...).
		On(validator, oracle.Text(verdictT1Over)...).
		On(finalizer, oracle.Text(planAllOnT1)...)

	res, _, err := negotiate(t, transport, store)
	require.NoError(t, err)

	assert.Equal(t, StateExhausted, res.State)
	assert.Nil(t, res.Plan)
	assert.Equal(t, MaxAttempts, res.Attempts)
	assert.Len(t, transport.Calls(proposer), MaxAttempts)
	assert.Len(t, transport.Calls(validator), MaxAttempts)
	assert.Empty(t, transport.Calls(finalizer))
	assert.Empty(t, store.saved)
}

func TestNegotiateFeedbackIsReplacedNotAccumulated(t *testing.T) {
	store := testFleet()
	transport := oracle.NewScriptedTransport().
		On(proposer, oracle.Text(planAllOnT1, planAllOnT1, planFeasible)...).
		On(validator, oracle.Text(
			verdictT1Over,
			`{"status":"capacity_exceeded","truck_number":"T2","exceeded_type":"volume"}`,
			verdictOK,
		)...).
		On(finalizer, oracle.Text(planFeasible)...)

	res, _, err := negotiate(t, transport, store)
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, res.State)
	assert.Equal(t, 3, res.Attempts)

	assert.Equal(t, []string{
		"",
		domain.CapacityFeedback("T1", "weight"),
		domain.CapacityFeedback("T2", "volume"),
	}, previousFailures(t, transport))
}

func TestNegotiateMalformedProposalSkipsValidator(t *testing.T) {
	store := testFleet()
	transport := oracle.NewScriptedTransport().
		On(proposer, oracle.Text("Sorry, I can't help with that.", planFeasible)...).
		On(validator, oracle.Text(verdictOK)...).
		On(finalizer, oracle.Text(planFeasible)...)

	res, _, err := negotiate(t, transport, store)
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, res.State)
	assert.Equal(t, 2, res.Attempts)
	assert.Len(t, transport.Calls(validator), 1)

	failures := previousFailures(t, transport)
	assert.Equal(t, "Failed to generate a valid JSON. Response was: Sorry, I can't help with that.", failures[1])
}

func TestNegotiateMalformedVerdictIsRetried(t *testing.T) {
	store := testFleet()
	transport := oracle.NewScriptedTransport().
		On(proposer, oracle.Text(planFeasible)...).
		On(validator, oracle.Text("looks fine to me", verdictOK)...).
		On(finalizer, oracle.Text(planFeasible)...)

	res, _, err := negotiate(t, transport, store)
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, res.State)
	assert.Equal(t, 2, res.Attempts)

	failures := previousFailures(t, transport)
	assert.Equal(t, "Validator failed to provide a valid JSON. Raw response: looks fine to me", failures[1])
}

func TestNegotiateCatchesOverloadTheValidatorMissed(t *testing.T) {
	store := testFleet()
	transport := oracle.NewScriptedTransport().
		On(proposer, oracle.Text(planT2Heavy, planFeasible)...).
		On(validator, oracle.Text(verdictOK)...).
		On(finalizer, oracle.Text(planFeasible)...)

	res, _, err := negotiate(t, transport, store)
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, res.State)
	assert.Equal(t, 2, res.Attempts)
	assert.Len(t, transport.Calls(finalizer), 1)

	failures := previousFailures(t, transport)
	assert.Equal(t, domain.CapacityFeedback("T2", "weight"), failures[1])
}

func TestNegotiateRejectsDuplicateAssignments(t *testing.T) {
	store := testFleet()
	dup := `[{"truck_number":"T1","shipment_ids":["s1"]},{"truck_number":"T2","shipment_ids":["s1"]}]`
	transport := oracle.NewScriptedTransport().
		On(proposer, oracle.Text(dup, planFeasible)...).
		On(validator, oracle.Text(verdictOK)...).
		On(finalizer, oracle.Text(planFeasible)...)

	res, _, err := negotiate(t, transport, store)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempts)

	failures := previousFailures(t, transport)
	assert.True(t, strings.Contains(failures[1], "shipment s1 is assigned to more than one truck (T1, T2)"), failures[1])
}

func TestNegotiateMalformedFinalPlanIsFatal(t *testing.T) {
	store := testFleet()
	transport := oracle.NewScriptedTransport().
		On(proposer, oracle.Text(planFeasible)...).
		On(validator, oracle.Text(verdictOK)...).
		On(finalizer, oracle.Text("Plan confirmed.")...)

	res, _, err := negotiate(t, transport, store)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFinalizeFailed)
	assert.ErrorIs(t, err, domain.ErrMalformedOracleOutput)
	assert.Equal(t, StateFatal, res.State)
	assert.Len(t, transport.Calls(proposer), 1)
	assert.Empty(t, store.saved)
}

func TestNegotiateChangedFinalPlanIsFatal(t *testing.T) {
	store := testFleet()
	transport := oracle.NewScriptedTransport().
		On(proposer, oracle.Text(planFeasible)...).
		On(validator, oracle.Text(verdictOK)...).
		On(finalizer, oracle.Text(planT2Heavy)...)

	res, _, err := negotiate(t, transport, store)
	assert.ErrorIs(t, err, domain.ErrFinalizeFailed)
	assert.Equal(t, StateFatal, res.State)
	assert.Empty(t, store.saved)
}

func TestNegotiateOracleUnavailableIsFatal(t *testing.T) {
	store := testFleet()
	transport := oracle.NewScriptedTransport().
		On(proposer, oracle.Reply{Err: errors.New("dial tcp: connection refused")}).
		On(validator, oracle.Text(verdictOK)...).
		On(finalizer, oracle.Text(planFeasible)...)

	res, _, err := negotiate(t, transport, store)
	assert.ErrorIs(t, err, domain.ErrOracleUnavailable)
	assert.Equal(t, StateFatal, res.State)
	assert.Equal(t, 1, res.Attempts)
	assert.Len(t, transport.Calls(proposer), 1)
	assert.Empty(t, transport.Calls(validator))
}

func TestNegotiateValidatorUnavailableIsFatal(t *testing.T) {
	store := testFleet()
	transport := oracle.NewScriptedTransport().
		On(proposer, oracle.Text(planFeasible)...).
		On(validator, oracle.Reply{Err: errors.New("quota exceeded")})

	_, _, err := negotiate(t, transport, store)
	assert.ErrorIs(t, err, domain.ErrOracleUnavailable)
}

func TestNegotiateCommitFailureIsFatal(t *testing.T) {
	store := testFleet()
	store.saveErr = errors.New("database is locked")
	transport := oracle.NewScriptedTransport().
		On(proposer, oracle.Text(planFeasible)...).
		On(validator, oracle.Text(verdictOK)...).
		On(finalizer, oracle.Text(planFeasible)...)

	res, snap, err := negotiate(t, transport, store)
	require.Error(t, err)
	assert.Equal(t, StateFatal, res.State)
	assert.Nil(t, snap.ShipmentsByID["s1"].AssignedVehicle)
}

func TestNegotiatePayloads(t *testing.T) {
	store := testFleet()
	transport := oracle.NewScriptedTransport().
		On(proposer, oracle.Text(planFeasible)...).
		On(validator, oracle.Text(verdictOK)...).
		On(finalizer, oracle.Text(planFeasible)...)

	_, _, err := negotiate(t, transport, store)
	require.NoError(t, err)

	roles, err := prompts.Default()
	require.NoError(t, err)

	p := transport.Calls(proposer)[0]
	assert.Equal(t, roles.Proposer, p.Instructions)
	assert.Contains(t, p.Payload, `"previous_failure":""`)
	assert.Contains(t, p.Payload, `"truck_number":"T1"`)
	assert.Contains(t, p.Payload, `"origin_address_city":"Pune"`)

	v := transport.Calls(validator)[0]
	assert.Equal(t, roles.Validator, v.Instructions)
	assert.Contains(t, v.Payload, `"proposed_plan":[{"truck_number":"T1","shipment_ids":["s1","s3"]}`)

	f := transport.Calls(finalizer)[0]
	assert.JSONEq(t, planFeasible, f.Payload)
}
