package services

import (
	"context"
	"errors"
	"fmt"

	"shipment-dispatch-service/internal/ports"
)

// RouteOptimizer runs one negotiation over the current fleet.
type RouteOptimizer struct {
	store      ports.FleetStore
	negotiator *Negotiator
}

func NewRouteOptimizer(store ports.FleetStore, negotiator *Negotiator) *RouteOptimizer {
	return &RouteOptimizer{store: store, negotiator: negotiator}
}

// OptimizeRoutes snapshots storage, negotiates a plan and commits it.
func (o *RouteOptimizer) OptimizeRoutes(ctx context.Context) (NegotiationResult, error) {
	if o.store == nil || o.negotiator == nil {
		return NegotiationResult{State: StateFatal}, errors.New("optimize routes: optimizer is not configured")
	}

	snap, err := LoadSnapshot(ctx, o.store)
	if err != nil {
		return NegotiationResult{State: StateFatal}, fmt.Errorf("optimize routes: %w", err)
	}

	res, err := o.negotiator.Negotiate(ctx, snap)
	if err != nil {
		return res, fmt.Errorf("optimize routes: %w", err)
	}
	return res, nil
}
