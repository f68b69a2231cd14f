package services

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"shipment-dispatch-service/internal/domain"
	"shipment-dispatch-service/internal/platform/obs"
	"shipment-dispatch-service/internal/ports"
)

// RouteSequencer orders the drop-offs of the shipments committed to a truck.
type RouteSequencer struct {
	store ports.FleetStore
}

func NewRouteSequencer(store ports.FleetStore) *RouteSequencer {
	return &RouteSequencer{store: store}
}

// Sequence builds the route for the truck with the given registration number.
// Unknown trucks fail with domain.ErrNotFound.
func (r *RouteSequencer) Sequence(ctx context.Context, truckNumber string) (_ *domain.TruckRoute, err error) {
	defer obs.Time(ctx, "route.Sequence")(&err)

	snap, err := LoadSnapshot(ctx, r.store)
	if err != nil {
		return nil, fmt.Errorf("sequence route: %w", err)
	}

	if _, ok := snap.TrucksByNumber[truckNumber]; !ok {
		return nil, fmt.Errorf("sequence route: truck %q: %w", truckNumber, domain.ErrNotFound)
	}

	assigned := make([]*domain.Shipment, 0, len(snap.ShipmentsByID))
	for _, s := range snap.ShipmentsByID {
		if s.AssignedVehicle != nil && *s.AssignedVehicle == truckNumber {
			assigned = append(assigned, s)
		}
	}
	slices.SortFunc(assigned, func(a, b *domain.Shipment) int {
		return strings.Compare(a.ShipmentID, b.ShipmentID)
	})

	return NearestNeighborRoute(truckNumber, assigned), nil
}

// Order drop-offs with a greedy nearest-neighbor walk.
//
// The walk starts at the first geocoded origin (by shipment id) and always
// moves to the closest remaining destination. It does not attempt global
// route optimization; ties break on the location key so output is deterministic.
func NearestNeighborRoute(truckNumber string, shipments []*domain.Shipment) *domain.TruckRoute {
	route := &domain.TruckRoute{
		TruckNumber: truckNumber,
		Stops:       []domain.RouteStop{},
		Unrouted:    []string{},
	}

	type stop struct {
		city string
		loc  domain.Coordinates
		ids  []string
	}

	byLocation := make(map[string]*stop)
	for _, s := range shipments {
		if route.Start == nil && s.OriginCoords != nil {
			start := *s.OriginCoords
			route.Start = &start
		}
		if s.DestinationCoords == nil {
			route.Unrouted = append(route.Unrouted, s.ShipmentID)
			continue
		}

		key := locationKey(*s.DestinationCoords)
		st, ok := byLocation[key]
		if !ok {
			st = &stop{city: s.Destination.City, loc: *s.DestinationCoords}
			byLocation[key] = st
		}
		st.ids = append(st.ids, s.ShipmentID)
	}

	if len(byLocation) == 0 {
		return route
	}

	current := route.Start
	for len(byLocation) > 0 {
		var (
			bestKey  string
			bestDist = math.Inf(1)
		)

		// Select next stop by minimum great-circle distance (greedy step).
		for key, st := range byLocation {
			d := 0.0
			if current != nil {
				d = domain.HaversineMeters(*current, st.loc)
			}
			if d < bestDist || (d == bestDist && key < bestKey) {
				bestDist = d
				bestKey = key
			}
		}

		best := byLocation[bestKey]
		route.Stops = append(route.Stops, domain.RouteStop{
			City:        best.city,
			Location:    best.loc,
			ShipmentIDs: best.ids,
			LegMeters:   bestDist,
		})
		route.TotalMeters += bestDist

		loc := best.loc
		current = &loc
		delete(byLocation, bestKey)
	}

	return route
}

func locationKey(c domain.Coordinates) string {
	return strconv.FormatFloat(c.Lat, 'f', 5, 64) + "," + strconv.FormatFloat(c.Lon, 'f', 5, 64)
}
