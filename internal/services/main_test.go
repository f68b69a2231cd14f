package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"shipment-dispatch-service/internal/adapters/oracle"
	"shipment-dispatch-service/internal/domain"
	"shipment-dispatch-service/internal/prompts"
)

// The genai client links in opencensus, whose stats worker starts in init
// and runs for the life of the process.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
	)
}

// memStore is an in-memory FleetStore recording every SaveAssignments call.
type memStore struct {
	mu        sync.Mutex
	trucks    []*domain.Truck
	shipments []*domain.Shipment
	saved     [][]domain.Assignment
	saveErr   error
}

func (s *memStore) ListTrucks(context.Context) ([]*domain.Truck, error) {
	return s.trucks, nil
}

func (s *memStore) ListShipments(context.Context) ([]*domain.Shipment, error) {
	return s.shipments, nil
}

func (s *memStore) SaveAssignments(_ context.Context, a []domain.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, a)
	return nil
}

// testFleet is two trucks (T1 1000kg/10m³, T2 500kg/5m³) and three shipments.
func testFleet() *memStore {
	return &memStore{
		trucks: []*domain.Truck{
			{TruckID: "t-1", RegistrationNumber: "T1", CapacityKg: 1000, CapacityVolume: 10},
			{TruckID: "t-2", RegistrationNumber: "T2", CapacityKg: 500, CapacityVolume: 5},
		},
		shipments: []*domain.Shipment{
			{ShipmentID: "s1", Origin: domain.Address{City: "Pune"}, Destination: domain.Address{City: "Mumbai"}, Weight: 400, Volume: 3},
			{ShipmentID: "s2", Origin: domain.Address{City: "Pune"}, Destination: domain.Address{City: "Nashik"}, Weight: 300, Volume: 2},
			{ShipmentID: "s3", Origin: domain.Address{City: "Mumbai"}, Destination: domain.Address{City: "Nagpur"}, Weight: 600, Volume: 6},
		},
	}
}

const (
	planAllOnT1   = `[{"truck_number":"T1","shipment_ids":["s1","s2","s3"]}]`
	planT2Heavy   = `[{"truck_number":"T1","shipment_ids":["s1","s2"]},{"truck_number":"T2","shipment_ids":["s3"]}]`
	planFeasible  = `[{"truck_number":"T1","shipment_ids":["s1","s3"]},{"truck_number":"T2","shipment_ids":["s2"]}]`
	verdictOK     = `{"status":"validated"}`
	verdictT1Over = `{"status":"capacity_exceeded","truck_number":"T1","exceeded_type":"weight"}`
)

func newTestNegotiator(t *testing.T, transport *oracle.ScriptedTransport, store *memStore) *Negotiator {
	t.Helper()

	roles, err := prompts.Default()
	if err != nil {
		t.Fatalf("load roles: %v", err)
	}
	client, err := NewOracleClient(transport, roles)
	if err != nil {
		t.Fatalf("new oracle client: %v", err)
	}
	return NewNegotiator(client, NewCommitter(store, nil), nil)
}

// previousFailures decodes the previous_failure field of every proposer call.
func previousFailures(t *testing.T, transport *oracle.ScriptedTransport) []string {
	t.Helper()

	calls := transport.Calls(string(prompts.RoleProposer))
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		var in proposalInput
		if err := json.Unmarshal([]byte(c.Payload), &in); err != nil {
			t.Fatalf("decode proposer payload: %v", err)
		}
		out = append(out, in.PreviousFailure)
	}
	return out
}
