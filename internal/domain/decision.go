package domain

import (
	"fmt"
	"time"
)

// DecisionStatus values mirror the decision_status column.
//
//	draft ──► approved
//	  │
//	  └─────► rejected
//
// approved and rejected are terminal.
type DecisionStatus string

const (
	DecisionDraft    DecisionStatus = "draft"
	DecisionApproved DecisionStatus = "approved"
	DecisionRejected DecisionStatus = "rejected"
)

var decisionTransitions = map[DecisionStatus][]DecisionStatus{
	DecisionDraft: {DecisionApproved, DecisionRejected},
}

// ParseDecisionStatus converts a raw string, rejecting unknown values.
func ParseDecisionStatus(s string) (DecisionStatus, error) {
	st := DecisionStatus(s)
	switch st {
	case DecisionDraft, DecisionApproved, DecisionRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown decision status %q", s)
}

// CanTransition reports whether from -> to is permitted.
func CanTransition(from, to DecisionStatus) bool {
	for _, s := range decisionTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Active reports whether the status still occupies the job request's single decision slot.
func (s DecisionStatus) Active() bool { return s == DecisionDraft || s == DecisionApproved }

// Decision selects one simulation for a job request, pending approval.
type Decision struct {
	ID                   string
	JobRequestID         string
	SelectedSimulationID string
	Status               DecisionStatus
	CreatedBy            string
	ApprovedBy           string
	RejectedBy           string
	RejectReason         string
	CreatedAt            time.Time
	DecidedAt            *time.Time
}
