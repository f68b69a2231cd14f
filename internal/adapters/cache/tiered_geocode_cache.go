package cache

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"shipment-dispatch-service/internal/domain"
	"shipment-dispatch-service/internal/ports"
)

// TieredGeocodeCache checks layers in order; hits from a lower layer are
// copied into the layers above it.
type TieredGeocodeCache struct {
	layers []ports.GeocodeCache
	logger *zap.Logger
}

func NewTieredGeocodeCache(logger *zap.Logger, layers ...ports.GeocodeCache) *TieredGeocodeCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TieredGeocodeCache{layers: layers, logger: logger}
}

func (t *TieredGeocodeCache) GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	missing := uniqueAddresses(addresses)
	out := make(map[string]domain.Coordinates, len(missing))

	for i, layer := range t.layers {
		if len(missing) == 0 {
			break
		}

		hits, err := layer.GetMany(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("tiered geocode cache: layer %d: %w", i, err)
		}
		if len(hits) == 0 {
			continue
		}

		for addr, c := range hits {
			out[addr] = c
		}
		for _, upper := range t.layers[:i] {
			if err := upper.PutMany(ctx, hits); err != nil {
				t.logger.Warn("geocode cache backfill failed", zap.Int("layer", i), zap.Error(err))
			}
		}

		next := missing[:0:0]
		for _, a := range missing {
			if _, ok := hits[a]; !ok {
				next = append(next, a)
			}
		}
		missing = next
	}

	return out, nil
}

// PutMany writes through every layer.
func (t *TieredGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) error {
	var errs []error
	for i, layer := range t.layers {
		if err := layer.PutMany(ctx, results); err != nil {
			errs = append(errs, fmt.Errorf("layer %d: %w", i, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("tiered geocode cache: %w", err)
	}
	return nil
}
