package domain

import "time"

// Simulation is one scored (crew, date) candidate for a job request. Immutable once created.
type Simulation struct {
	ID                 string
	JobRequestID       string
	CrewID             string
	ProposedDate       time.Time
	TravelMinutesDelta int
	MarginScore        int
	RiskScore          int
	TotalScore         float64
	Explanation        Explanation
	CreatedAt          time.Time
}

// Explanation is the audit trail behind a simulation's scores.
type Explanation struct {
	TravelSource         TravelSource    `json:"travel_source,omitempty"`
	TravelMinutes        int             `json:"travel_minutes"`
	TravelDistanceMeters int             `json:"travel_distance_meters"`
	BurnMinutes          float64         `json:"burn_minutes"`
	EstTotalCost         float64         `json:"est_total_cost"`
	RevenueEstimate      *float64        `json:"revenue_estimate"`
	MarginNotes          []string        `json:"margin_notes"`
	RiskFlags            []string        `json:"risk_flags"`
	Components           ScoreComponents `json:"components"`
	RawScore             float64         `json:"raw_score"`
}

// ScoreComponents are the sub-scores blended into the total score.
type ScoreComponents struct {
	Travel float64 `json:"travel"`
	Margin float64 `json:"margin"`
	Risk   float64 `json:"risk"`
}
