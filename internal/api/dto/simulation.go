package dto

import "time"

type SimulateRequest struct {
	CrewIDs      []string `json:"crew_ids" validate:"omitempty,max=50,dive,required"`
	ProposedDate string   `json:"proposed_date" validate:"omitempty,datetime=2006-01-02"`
}

type ScoreComponentsResponse struct {
	Travel float64 `json:"travel"`
	Margin float64 `json:"margin"`
	Risk   float64 `json:"risk"`
}

type ExplanationResponse struct {
	TravelSource         string                  `json:"travel_source,omitempty"`
	TravelMinutes        int                     `json:"travel_minutes"`
	TravelDistanceMeters int                     `json:"travel_distance_meters"`
	BurnMinutes          float64                 `json:"burn_minutes"`
	EstTotalCost         float64                 `json:"est_total_cost"`
	RevenueEstimate      *float64                `json:"revenue_estimate"`
	MarginNotes          []string                `json:"margin_notes"`
	RiskFlags            []string                `json:"risk_flags"`
	Components           ScoreComponentsResponse `json:"components"`
	RawScore             float64                 `json:"raw_score"`
}

type SimulationResponse struct {
	ID                 string              `json:"id"`
	JobRequestID       string              `json:"job_request_id"`
	CrewID             string              `json:"crew_id"`
	ProposedDate       string              `json:"proposed_date"`
	TravelMinutesDelta int                 `json:"travel_minutes_delta"`
	MarginScore        int                 `json:"margin_score"`
	RiskScore          int                 `json:"risk_score"`
	TotalScore         float64             `json:"total_score"`
	Explanation        ExplanationResponse `json:"explanation"`
	CreatedAt          time.Time           `json:"created_at"`
}

type ListSimulationsResponse struct {
	Simulations []SimulationResponse `json:"simulations"`
}
