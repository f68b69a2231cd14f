package domain

import "fmt"

// Status values the validator reports.
const (
	VerdictValidated        = "validated"
	VerdictCapacityExceeded = "capacity_exceeded"
)

// Judgment of the validator on one proposed plan.
// Any status other than "validated" is treated as a capacity failure.
type Verdict struct {
	Status       string    `json:"status"`
	TruckNumber  string    `json:"truck_number,omitempty"`
	ExceededType Dimension `json:"exceeded_type,omitempty"`
}

func (v Verdict) Validated() bool { return v.Status == VerdictValidated }

// Feedback renders the failure text handed to the next proposal attempt.
func (v Verdict) Feedback() string {
	return CapacityFeedback(v.TruckNumber, string(v.ExceededType))
}

// CapacityFeedback names the exceeded dimension and the truck for the proposer.
func CapacityFeedback(truckNumber, dimension string) string {
	return fmt.Sprintf(
		"Capacity validation failed. Reason: %s on truck %s. Please fix this specific capacity issue in the next plan.",
		dimension, truckNumber,
	)
}
