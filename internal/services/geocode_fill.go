package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"shipment-dispatch-service/internal/domain"
	"shipment-dispatch-service/internal/platform/obs"
	"shipment-dispatch-service/internal/ports"
)

// GeocodeFiller resolves missing shipment coordinates.
type GeocodeFiller struct {
	repo        ports.ShipmentRepository
	geocoder    ports.Geocoder
	concurrency int
	logger      *zap.Logger
}

func NewGeocodeFiller(repo ports.ShipmentRepository, geocoder ports.Geocoder, concurrency int, logger *zap.Logger) *GeocodeFiller {
	if concurrency < 1 {
		concurrency = 1
	}
	return &GeocodeFiller{repo: repo, geocoder: geocoder, concurrency: concurrency, logger: obs.OrNop(logger)}
}

// Fill geocodes every shipment missing coordinates and commits the results
// in one transaction. A failed lookup is logged; the other side of the same
// shipment is still saved when it resolved.
// Returns the shipments that gained at least one coordinate, ordered by id.
func (f *GeocodeFiller) Fill(ctx context.Context) (_ []*domain.Shipment, err error) {
	defer obs.Time(ctx, "geocode.Fill")(&err)

	if f.repo == nil || f.geocoder == nil {
		return nil, errors.New("geocode fill: filler is not configured")
	}

	pending, err := f.repo.ListUngeocodedShipments(ctx)
	if err != nil {
		return nil, fmt.Errorf("geocode fill: list shipments: %w", err)
	}
	if len(pending) == 0 {
		return []*domain.Shipment{}, nil
	}

	var (
		mu      sync.Mutex
		updates = make([]domain.ShipmentCoordinates, 0, len(pending))
		updated = make([]*domain.Shipment, 0, len(pending))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for _, s := range pending {
		g.Go(func() error {
			u, err := f.resolve(gctx, s)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				f.logger.Warn("shipment geocoding failed", zap.String("shipment_id", s.ShipmentID), zap.Error(err))
			}
			if u.Origin == nil && u.Destination == nil {
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			updates = append(updates, u)
			if u.Origin != nil {
				s.OriginCoords = u.Origin
			}
			if u.Destination != nil {
				s.DestinationCoords = u.Destination
			}
			updated = append(updated, s)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("geocode fill: %w", err)
	}

	if err := f.repo.SaveCoordinates(ctx, updates); err != nil {
		return nil, fmt.Errorf("geocode fill: save coordinates: %w", err)
	}

	slices.SortFunc(updated, func(a, b *domain.Shipment) int {
		return strings.Compare(a.ShipmentID, b.ShipmentID)
	})
	return updated, nil
}

// resolve returns whatever sides resolved, even alongside an error.
func (f *GeocodeFiller) resolve(ctx context.Context, s *domain.Shipment) (domain.ShipmentCoordinates, error) {
	out := domain.ShipmentCoordinates{ShipmentID: s.ShipmentID}

	if s.OriginCoords == nil {
		c, err := f.lookup(ctx, s.Origin)
		if err != nil {
			return out, fmt.Errorf("origin: %w", err)
		}
		out.Origin = c
	}

	if s.DestinationCoords == nil {
		c, err := f.lookup(ctx, s.Destination)
		if err != nil {
			return out, fmt.Errorf("destination: %w", err)
		}
		out.Destination = c
	}

	return out, nil
}

func (f *GeocodeFiller) lookup(ctx context.Context, a domain.Address) (*domain.Coordinates, error) {
	line := a.Line()
	if line == "" {
		return nil, nil
	}

	c, ok, err := f.geocoder.Geocode(ctx, line)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &c, nil
}
