package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"shipment-dispatch-service/internal/domain"
)

// coordinate payload plus map overhead, used as the ristretto cost of one entry
const coordCost = 32

// MemoryGeocodeCache is an in-process L1 cache in front of a shared store.
type MemoryGeocodeCache struct {
	c   *ristretto.Cache[string, domain.Coordinates]
	ttl time.Duration
}

// NewMemoryGeocodeCache creates a ristretto-backed cache holding roughly maxCostBytes of entries.
func NewMemoryGeocodeCache(maxCostBytes int64, ttl time.Duration) (*MemoryGeocodeCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, domain.Coordinates]{
		NumCounters: maxCostBytes / 100 * 10,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("geocode memory cache: %w", err)
	}
	return &MemoryGeocodeCache{c: c, ttl: ttl}, nil
}

func (m *MemoryGeocodeCache) GetMany(_ context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	uniq := uniqueAddresses(addresses)
	out := make(map[string]domain.Coordinates, len(uniq))
	for _, a := range uniq {
		if c, ok := m.c.Get(a); ok {
			out[a] = c
		}
	}
	return out, nil
}

// PutMany waits for the write buffers so stored entries are visible to the next GetMany.
func (m *MemoryGeocodeCache) PutMany(_ context.Context, results map[string]domain.Coordinates) error {
	if len(results) == 0 {
		return nil
	}
	for addr, c := range results {
		m.c.SetWithTTL(addr, c, int64(len(addr))+coordCost, m.ttl)
	}
	m.c.Wait()
	return nil
}

func (m *MemoryGeocodeCache) Close() {
	m.c.Close()
}
