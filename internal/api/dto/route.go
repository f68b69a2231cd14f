package dto

import "shipment-dispatch-service/internal/domain"

type RouteStopResponse struct {
	City        string      `json:"city"`
	Location    Coordinates `json:"location"`
	ShipmentIDs []string    `json:"shipment_ids"`
	LegMeters   float64     `json:"leg_meters"`
}

type TruckRouteResponse struct {
	TruckNumber string              `json:"truck_number"`
	Start       *Coordinates        `json:"start"`
	Stops       []RouteStopResponse `json:"stops"`
	TotalMeters float64             `json:"total_meters"`
	Unrouted    []string            `json:"unrouted_shipment_ids"`
}

func NewTruckRouteResponse(r *domain.TruckRoute) TruckRouteResponse {
	res := TruckRouteResponse{
		TruckNumber: r.TruckNumber,
		Start:       newCoordinates(r.Start),
		Stops:       make([]RouteStopResponse, 0, len(r.Stops)),
		TotalMeters: r.TotalMeters,
		Unrouted:    r.Unrouted,
	}
	for _, s := range r.Stops {
		res.Stops = append(res.Stops, RouteStopResponse{
			City:        s.City,
			Location:    Coordinates{Lon: s.Location.Lon, Lat: s.Location.Lat},
			ShipmentIDs: s.ShipmentIDs,
			LegMeters:   s.LegMeters,
		})
	}
	return res
}
