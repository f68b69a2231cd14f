package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// One truck and the shipments it should carry. Shipment order is irrelevant.
type RoutePlanEntry struct {
	TruckNumber string      `json:"truck_number"`
	ShipmentIDs ShipmentIDs `json:"shipment_ids"`
}

// Ordered sequence of truck assignments, as proposed, validated or finalized.
type Plan []RoutePlanEntry

// ShipmentIDs decodes ids written either as JSON strings or as bare numbers.
type ShipmentIDs []string

func (ids *ShipmentIDs) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*ids = nil
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("shipment_ids: %w", err)
	}

	out := make(ShipmentIDs, 0, len(raw))
	for i, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			out = append(out, s)
			continue
		}
		var n json.Number
		if err := json.Unmarshal(r, &n); err != nil {
			return fmt.Errorf("shipment_ids[%d]: expected string or number, got %s", i, r)
		}
		if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
			return fmt.Errorf("shipment_ids[%d]: %w", i, err)
		}
		out = append(out, n.String())
	}
	*ids = out
	return nil
}

// Check recomputes, without trusting any oracle verdict, that no shipment is
// assigned twice and that no known truck is loaded past its capacity.
// Entries naming an unknown truck and unknown shipment ids are ignored here;
// the committer skips them as well.
func (p Plan) Check(trucks map[string]*Truck, shipments map[string]*Shipment) error {
	seen := make(map[string]string)
	for _, e := range p {
		for _, id := range e.ShipmentIDs {
			if first, ok := seen[id]; ok {
				return &DuplicateShipmentError{ShipmentID: id, Trucks: []string{first, e.TruckNumber}}
			}
			seen[id] = e.TruckNumber
		}
	}

	weight := make(map[string]float64)
	volume := make(map[string]float64)
	order := make([]string, 0, len(p))
	for _, e := range p {
		if _, ok := trucks[e.TruckNumber]; !ok {
			continue
		}
		if !slices.Contains(order, e.TruckNumber) {
			order = append(order, e.TruckNumber)
		}
		for _, id := range e.ShipmentIDs {
			s, ok := shipments[id]
			if !ok {
				continue
			}
			weight[e.TruckNumber] += s.Weight
			volume[e.TruckNumber] += s.Volume
		}
	}

	for _, number := range order {
		if err := trucks[number].CheckLoad(weight[number], volume[number]); err != nil {
			return err
		}
	}

	return nil
}

// SameAssignments reports whether both plans map the same shipments to the
// same trucks, ignoring entry and id order.
func (p Plan) SameAssignments(other Plan) bool {
	return slices.Equal(p.pairs(), other.pairs())
}

func (p Plan) pairs() []string {
	out := make([]string, 0, len(p))
	for _, e := range p {
		for _, id := range e.ShipmentIDs {
			out = append(out, e.TruckNumber+"|"+id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
