package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"crew-assignment-service/internal/domain"
	"crew-assignment-service/internal/platform/metrics"
	"crew-assignment-service/internal/platform/obs"
	"crew-assignment-service/internal/ports"
)

// DecisionOrchestrator turns a chosen simulation into a decision and drives it through
// draft -> approved | rejected. Role checks run before any read or write; uniqueness per
// job request and compare-and-set transitions are delegated to the repository.
type DecisionOrchestrator struct {
	decisions   ports.DecisionRepository
	simulations ports.SimulationRepository
	jobs        ports.JobRequestRepository
	approval    ApprovalConfig
	now         func() time.Time
}

func NewDecisionOrchestrator(
	decisions ports.DecisionRepository,
	simulations ports.SimulationRepository,
	jobs ports.JobRequestRepository,
	approval ApprovalConfig,
) *DecisionOrchestrator {
	return &DecisionOrchestrator{
		decisions:   decisions,
		simulations: simulations,
		jobs:        jobs,
		approval:    approval,
		now:         time.Now,
	}
}

// CreateDecision records a draft decision selecting simulationID for jobRequestID.
func (o *DecisionOrchestrator) CreateDecision(
	ctx context.Context,
	actor domain.Actor,
	jobRequestID string,
	simulationID string,
) (_ *domain.Decision, err error) {
	defer obs.Time(ctx, "decisions.Create")(&err)
	defer recordOutcome("create", &err)

	if !CanCreateDecision(actor.Role) {
		return nil, &AuthorizationError{Action: "create decision", Role: actor.Role, Rule: ruleCreate}
	}

	sim, err := o.simulations.GetSimulation(ctx, simulationID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, fmt.Errorf("create decision: simulation %q: %w", simulationID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("create decision: get simulation: %w", err)
	}
	if sim.JobRequestID != jobRequestID {
		return nil, fmt.Errorf(
			"create decision: simulation %q does not belong to job request %q: %w",
			simulationID, jobRequestID, ErrNotFound,
		)
	}

	d := &domain.Decision{
		ID:                   domain.NewDecisionID(),
		JobRequestID:         jobRequestID,
		SelectedSimulationID: simulationID,
		Status:               domain.DecisionDraft,
		CreatedBy:            actor.ID,
		CreatedAt:            o.now().UTC(),
	}

	if err := o.decisions.CreateDecision(ctx, d); err != nil {
		if errors.Is(err, ports.ErrConflict) {
			return nil, fmt.Errorf(
				"create decision: job request %q already has an active decision: %w",
				jobRequestID, ErrConflict,
			)
		}
		return nil, fmt.Errorf("create decision: %w", err)
	}

	return d, nil
}

// ApproveDecision moves a draft decision to approved and writes the selected crew
// and date onto the job request. Approving an already approved decision whose
// assignment write never landed retries that write instead of failing.
func (o *DecisionOrchestrator) ApproveDecision(ctx context.Context, actor domain.Actor, decisionID string) (_ *domain.Decision, err error) {
	defer obs.Time(ctx, "decisions.Approve")(&err)
	defer recordOutcome("approve", &err)

	if !CanApproveDecision(actor.Role, o.approval) {
		return nil, &AuthorizationError{Action: "approve decision", Role: actor.Role, Rule: approveRule(o.approval)}
	}

	current, err := o.decisions.GetDecision(ctx, decisionID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, fmt.Errorf("approve decision: decision %q: %w", decisionID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("approve decision: get decision: %w", err)
	}

	sim, err := o.simulations.GetSimulation(ctx, current.SelectedSimulationID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, fmt.Errorf("approve decision: selected simulation %q: %w", current.SelectedSimulationID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("approve decision: load selected simulation %q: %w", current.SelectedSimulationID, err)
	}

	if current.Status == domain.DecisionApproved {
		return o.completeAssignment(ctx, current, sim)
	}

	d, err := o.transition(ctx, "approve decision", decisionID, domain.DecisionApproved, actor, "")
	if err != nil {
		return nil, err
	}

	if err := o.jobs.AssignCrew(ctx, d.JobRequestID, sim.CrewID, sim.ProposedDate); err != nil {
		log.Printf("req_id=%s decision %s approved but assignment write failed: %v", obs.RequestID(ctx), d.ID, err)
		return nil, fmt.Errorf("approve decision: assign crew: %w", err)
	}

	return d, nil
}

// completeAssignment finishes an approval whose job request write failed earlier.
// A fully applied approval is still an invalid state to approve again.
func (o *DecisionOrchestrator) completeAssignment(ctx context.Context, d *domain.Decision, sim *domain.Simulation) (*domain.Decision, error) {
	job, err := o.jobs.GetJobRequest(ctx, d.JobRequestID)
	if err != nil {
		return nil, fmt.Errorf("approve decision: get job request: %w", err)
	}

	scheduled, ok := job.ScheduledDate.Get()
	if job.AssignedCrewID == sim.CrewID && ok && scheduled.Equal(sim.ProposedDate) {
		return nil, &StateError{Action: "approve decision", DecisionID: d.ID, Status: d.Status}
	}

	if err := o.jobs.AssignCrew(ctx, d.JobRequestID, sim.CrewID, sim.ProposedDate); err != nil {
		return nil, fmt.Errorf("approve decision: assign crew: %w", err)
	}
	log.Printf("req_id=%s decision %s assignment completed on retry", obs.RequestID(ctx), d.ID)

	return d, nil
}

// RejectDecision moves a draft decision to rejected. It needs the same rights as creation.
func (o *DecisionOrchestrator) RejectDecision(
	ctx context.Context,
	actor domain.Actor,
	decisionID string,
	reason string,
) (_ *domain.Decision, err error) {
	defer obs.Time(ctx, "decisions.Reject")(&err)
	defer recordOutcome("reject", &err)

	if !CanCreateDecision(actor.Role) {
		return nil, &AuthorizationError{Action: "reject decision", Role: actor.Role, Rule: ruleCreate}
	}

	return o.transition(ctx, "reject decision", decisionID, domain.DecisionRejected, actor, reason)
}

func (o *DecisionOrchestrator) GetDecision(ctx context.Context, id string) (*domain.Decision, error) {
	d, err := o.decisions.GetDecision(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get decision %q: %w", id, err)
	}
	return d, nil
}

func (o *DecisionOrchestrator) ListDecisions(ctx context.Context, jobRequestID string) ([]*domain.Decision, error) {
	ds, err := o.decisions.ListDecisions(ctx, jobRequestID)
	if err != nil {
		return nil, fmt.Errorf("list decisions for %q: %w", jobRequestID, err)
	}
	return ds, nil
}

func (o *DecisionOrchestrator) transition(
	ctx context.Context,
	action string,
	id string,
	to domain.DecisionStatus,
	actor domain.Actor,
	reason string,
) (*domain.Decision, error) {
	current, err := o.decisions.GetDecision(ctx, id)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, fmt.Errorf("%s: decision %q: %w", action, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: get decision: %w", action, err)
	}

	if !domain.CanTransition(current.Status, to) {
		return nil, &StateError{Action: action, DecisionID: id, Status: current.Status}
	}

	updated, err := o.decisions.Transition(ctx, id, domain.DecisionDraft, ports.DecisionTransition{
		To:        to,
		ActorID:   actor.ID,
		Reason:    reason,
		DecidedAt: o.now().UTC(),
	})
	if errors.Is(err, ports.ErrStaleStatus) {
		// lost a race with another transition; report what won
		status := domain.DecisionStatus("unknown")
		if latest, gerr := o.decisions.GetDecision(ctx, id); gerr == nil {
			status = latest.Status
		}
		return nil, &StateError{Action: action, DecisionID: id, Status: status}
	}
	if errors.Is(err, ports.ErrNotFound) {
		return nil, fmt.Errorf("%s: decision %q: %w", action, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	return updated, nil
}

func recordOutcome(action string, errp *error) {
	result := "ok"
	switch err := *errp; {
	case err == nil:
	case errors.Is(err, ErrNotAuthorized):
		result = "forbidden"
	case errors.Is(err, ErrInvalidState):
		result = "invalid_state"
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case errors.Is(err, ErrConflict):
		result = "conflict"
	default:
		result = "error"
	}
	metrics.DecisionOutcomes.WithLabelValues(action, result).Inc()
}
