package domain

import "math"

const earthRadiusMeters = 6371008.8

// Represents one drop-off point on a truck route.
// Shipments sharing the same destination coordinates share a stop.
type RouteStop struct {
	City        string
	Location    Coordinates
	ShipmentIDs []string
	LegMeters   float64
}

// Ordered drop-offs for the shipments committed to one truck.
// Unrouted lists committed shipments that have no destination coordinates yet.
type TruckRoute struct {
	TruckNumber string
	Start       *Coordinates
	Stops       []RouteStop
	TotalMeters float64
	Unrouted    []string
}

// Return the great-circle distance between two points in meters.
func HaversineMeters(a, b Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}
