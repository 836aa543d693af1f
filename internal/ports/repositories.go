package ports

import (
	"context"
	"time"

	"crew-assignment-service/internal/domain"
)

// Port: job requests supplied by the intake collaborator.
type JobRequestRepository interface {
	GetJobRequest(ctx context.Context, id string) (*domain.JobRequest, error)
	// Record the crew and date chosen by an approved decision.
	AssignCrew(ctx context.Context, jobRequestID, crewID string, date time.Time) error
}

// Port: crews supplied by the crew management collaborator.
type CrewRepository interface {
	GetCrew(ctx context.Context, id string) (*domain.Crew, error)
	ListCrews(ctx context.Context) ([]*domain.Crew, error)
}

// Port: persisted simulation batches.
type SimulationRepository interface {
	// Persist a batch atomically.
	CreateSimulations(ctx context.Context, sims []*domain.Simulation) error
	GetSimulation(ctx context.Context, id string) (*domain.Simulation, error)
	ListSimulations(ctx context.Context, jobRequestID string) ([]*domain.Simulation, error)
}

// Port: decision records.
//
// Implementations must reject a new decision while the job request already has an
// active (draft or approved) one, returning ErrConflict.
type DecisionRepository interface {
	CreateDecision(ctx context.Context, d *domain.Decision) error
	GetDecision(ctx context.Context, id string) (*domain.Decision, error)
	ListDecisions(ctx context.Context, jobRequestID string) ([]*domain.Decision, error)
	// Compare-and-set status change; fails with ErrStaleStatus when the current status is not from.
	Transition(ctx context.Context, id string, from domain.DecisionStatus, t DecisionTransition) (*domain.Decision, error)
}

// DecisionTransition describes the write applied by Transition.
type DecisionTransition struct {
	To        domain.DecisionStatus
	ActorID   string
	Reason    string
	DecidedAt time.Time
}
