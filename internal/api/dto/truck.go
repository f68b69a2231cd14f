package dto

type TruckRequest struct {
	TruckID            string  `json:"truck_id"`
	RegistrationNumber string  `json:"registration_number"`
	CapacityKg         float64 `json:"capacity_kg"`
	CapacityVolume     float64 `json:"capacity_volume"`
}

type TruckResponse struct {
	TruckID            string  `json:"truck_id"`
	RegistrationNumber string  `json:"registration_number"`
	CapacityKg         float64 `json:"capacity_kg"`
	CapacityVolume     float64 `json:"capacity_volume"`
}

type ListTrucksResponse struct {
	Trucks []TruckResponse `json:"trucks"`
}
