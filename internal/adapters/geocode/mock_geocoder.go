package geocode

import (
	"context"
	"fmt"
	"sync"

	"shipment-dispatch-service/internal/domain"
)

// MockGeocoder resolves addresses from a fixed table. Addresses listed in
// Fail return an error; anything else unknown is reported as no match.
type MockGeocoder struct {
	Known map[string]domain.Coordinates
	Fail  map[string]bool

	mu    sync.Mutex
	calls []string
}

func NewMockGeocoder(known map[string]domain.Coordinates) *MockGeocoder {
	return &MockGeocoder{Known: known, Fail: map[string]bool{}}
}

func (m *MockGeocoder) Geocode(_ context.Context, address string) (domain.Coordinates, bool, error) {
	m.mu.Lock()
	m.calls = append(m.calls, address)
	m.mu.Unlock()

	if m.Fail[address] {
		return domain.Coordinates{}, false, fmt.Errorf("mock geocode %q failed", address)
	}
	c, ok := m.Known[address]
	return c, ok, nil
}

// Calls returns the addresses looked up so far.
func (m *MockGeocoder) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
