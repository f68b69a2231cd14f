package dto

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
}

type Coordinates struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type ShipmentRequest struct {
	ShipmentID  string  `json:"shipment_id"`
	Origin      Address `json:"origin"`
	Destination Address `json:"destination"`
	Weight      float64 `json:"weight"`
	Volume      float64 `json:"volume"`
}

type ShipmentResponse struct {
	ShipmentID        string       `json:"shipment_id"`
	Origin            Address      `json:"origin"`
	Destination       Address      `json:"destination"`
	Weight            float64      `json:"weight"`
	Volume            float64      `json:"volume"`
	OriginCoords      *Coordinates `json:"origin_coords"`
	DestinationCoords *Coordinates `json:"destination_coords"`
	AssignedVehicle   *string      `json:"assigned_vehicle"`
}

type ListShipmentsResponse struct {
	Shipments []ShipmentResponse `json:"shipments"`
}
