package dto

// PointRequest coordinates may be null; a null side makes the point unknown.
type PointRequest struct {
	Lat *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng *float64 `json:"lng" validate:"omitempty,gte=-180,lte=180"`
}

type TravelEstimateRequest struct {
	Origin      PointRequest `json:"origin"`
	Destination PointRequest `json:"destination"`
}

type TravelEstimateResponse struct {
	Minutes        int    `json:"minutes"`
	DistanceMeters int    `json:"distance_meters"`
	Source         string `json:"source"`
}
