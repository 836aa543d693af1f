package dto

import "time"

type CreateDecisionRequest struct {
	SimulationID string `json:"simulation_id" validate:"required"`
}

type RejectDecisionRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type DecisionResponse struct {
	ID                   string     `json:"id"`
	JobRequestID         string     `json:"job_request_id"`
	SelectedSimulationID string     `json:"selected_simulation_id"`
	Status               string     `json:"status"`
	CreatedBy            string     `json:"created_by"`
	ApprovedBy           string     `json:"approved_by,omitempty"`
	RejectedBy           string     `json:"rejected_by,omitempty"`
	RejectReason         string     `json:"reject_reason,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	DecidedAt            *time.Time `json:"decided_at,omitempty"`
}

type ListDecisionsResponse struct {
	Decisions []DecisionResponse `json:"decisions"`
}
