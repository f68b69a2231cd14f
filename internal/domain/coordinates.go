package domain

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}
