package domain

import "strings"

// Postal address of a shipment origin or destination.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
}

// Return the address as a single comma separated line for geocoding.
// Empty parts are dropped.
func (a Address) Line() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Street, a.City, a.State, a.Pincode, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
