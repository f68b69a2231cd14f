package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"shipment-dispatch-service/internal/domain"
)

// Shape is the JSON container kind expected from an oracle reply.
type Shape int

const (
	ShapeArray Shape = iota
	ShapeObject
)

func (s Shape) String() string {
	if s == ShapeObject {
		return "object"
	}
	return "array"
}

// Greedy: first opening bracket through the last closing one, across lines.
var (
	arraySpan  = regexp.MustCompile(`(?s)\[.*\]`)
	objectSpan = regexp.MustCompile(`(?s)\{.*\}`)
)

// Extract recovers a JSON value of the given shape from free-form oracle text.
// Prose or code fences around the value are ignored. Every failure wraps
// domain.ErrMalformedOracleOutput.
func Extract(raw string, shape Shape) (json.RawMessage, error) {
	re := arraySpan
	if shape == ShapeObject {
		re = objectSpan
	}

	span := re.FindString(strings.TrimSpace(raw))
	if span == "" {
		return nil, fmt.Errorf("extract %s: no bracketed span found: %w", shape, domain.ErrMalformedOracleOutput)
	}

	var v any
	if err := json.Unmarshal([]byte(span), &v); err != nil {
		return nil, fmt.Errorf("extract %s: %v: %w", shape, err, domain.ErrMalformedOracleOutput)
	}

	switch v.(type) {
	case []any:
		if shape != ShapeArray {
			return nil, fmt.Errorf("extract %s: got array: %w", shape, domain.ErrMalformedOracleOutput)
		}
	case map[string]any:
		if shape != ShapeObject {
			return nil, fmt.Errorf("extract %s: got object: %w", shape, domain.ErrMalformedOracleOutput)
		}
	default:
		return nil, fmt.Errorf("extract %s: got %T: %w", shape, v, domain.ErrMalformedOracleOutput)
	}

	return json.RawMessage(span), nil
}

// ExtractPlan extracts and decodes a route plan array.
func ExtractPlan(raw string) (domain.Plan, error) {
	msg, err := Extract(raw, ShapeArray)
	if err != nil {
		return nil, err
	}

	var plan domain.Plan
	if err := json.Unmarshal(msg, &plan); err != nil {
		return nil, fmt.Errorf("decode plan: %v: %w", err, domain.ErrMalformedOracleOutput)
	}
	return plan, nil
}

// ExtractVerdict extracts and decodes a validator verdict object.
func ExtractVerdict(raw string) (domain.Verdict, error) {
	msg, err := Extract(raw, ShapeObject)
	if err != nil {
		return domain.Verdict{}, err
	}

	var v domain.Verdict
	if err := json.Unmarshal(msg, &v); err != nil {
		return domain.Verdict{}, fmt.Errorf("decode verdict: %v: %w", err, domain.ErrMalformedOracleOutput)
	}
	return v, nil
}
