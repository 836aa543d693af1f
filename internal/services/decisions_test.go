package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crew-assignment-service/internal/adapters/repositories"
	"crew-assignment-service/internal/domain"
)

var (
	owner    = domain.Actor{ID: "u-owner", Role: domain.RoleOwner}
	crewLead = domain.Actor{ID: "u-lead", Role: domain.RoleCrewLead}
	staff    = domain.Actor{ID: "u-staff", Role: domain.RoleStaff}
)

var proposed = time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC)

func newOrchestrator(t *testing.T, cfg ApprovalConfig) (*DecisionOrchestrator, *repositories.MemoryStore) {
	t.Helper()
	ctx := context.Background()
	store := repositories.NewMemoryStore()

	require.NoError(t, store.UpsertJobRequest(ctx, &domain.JobRequest{ID: "job-1", CrewSizeMin: 1}))
	require.NoError(t, store.UpsertJobRequest(ctx, &domain.JobRequest{ID: "job-2", CrewSizeMin: 1}))
	require.NoError(t, store.CreateSimulations(ctx, []*domain.Simulation{
		{ID: "sim-1", JobRequestID: "job-1", CrewID: "crew-a", ProposedDate: proposed},
		{ID: "sim-2", JobRequestID: "job-1", CrewID: "crew-b", ProposedDate: proposed},
		{ID: "sim-9", JobRequestID: "job-2", CrewID: "crew-a", ProposedDate: proposed},
	}))

	return NewDecisionOrchestrator(store, store, store, cfg), store
}

func TestCreateDecision(t *testing.T) {
	o, _ := newOrchestrator(t, ApprovalConfig{})
	ctx := context.Background()

	d, err := o.CreateDecision(ctx, crewLead, "job-1", "sim-1")
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionDraft, d.Status)
	assert.Equal(t, "u-lead", d.CreatedBy)
	assert.Equal(t, "sim-1", d.SelectedSimulationID)
	assert.Regexp(t, `^dec_`, d.ID)

	got, err := o.GetDecision(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
}

func TestCreateDecision_StaffIsRefused(t *testing.T) {
	o, store := newOrchestrator(t, ApprovalConfig{})

	_, err := o.CreateDecision(context.Background(), staff, "job-1", "sim-1")
	require.ErrorIs(t, err, ErrNotAuthorized)

	var authErr *AuthorizationError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, domain.RoleStaff, authErr.Role)

	ds, err := store.ListDecisions(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Empty(t, ds)
}

func TestCreateDecision_UnknownOrForeignSimulation(t *testing.T) {
	o, _ := newOrchestrator(t, ApprovalConfig{})
	ctx := context.Background()

	_, err := o.CreateDecision(ctx, owner, "job-1", "sim-missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = o.CreateDecision(ctx, owner, "job-1", "sim-9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateDecision_SecondActiveDecisionConflicts(t *testing.T) {
	o, _ := newOrchestrator(t, ApprovalConfig{})
	ctx := context.Background()

	first, err := o.CreateDecision(ctx, owner, "job-1", "sim-1")
	require.NoError(t, err)

	_, err = o.CreateDecision(ctx, owner, "job-1", "sim-2")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = o.ApproveDecision(ctx, owner, first.ID)
	require.NoError(t, err)

	_, err = o.CreateDecision(ctx, owner, "job-1", "sim-2")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestApproveDecision(t *testing.T) {
	o, store := newOrchestrator(t, ApprovalConfig{})
	ctx := context.Background()

	d, err := o.CreateDecision(ctx, crewLead, "job-1", "sim-2")
	require.NoError(t, err)

	approved, err := o.ApproveDecision(ctx, owner, d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionApproved, approved.Status)
	assert.Equal(t, "u-owner", approved.ApprovedBy)
	require.NotNil(t, approved.DecidedAt)

	job, err := store.GetJobRequest(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "crew-b", job.AssignedCrewID)
	assert.True(t, job.ScheduledDate.Or(time.Time{}).Equal(proposed))
}

type flakyJobs struct {
	*repositories.MemoryStore
	fail bool
}

func (j *flakyJobs) AssignCrew(ctx context.Context, jobRequestID, crewID string, date time.Time) error {
	if j.fail {
		return errors.New("db down")
	}
	return j.MemoryStore.AssignCrew(ctx, jobRequestID, crewID, date)
}

func TestApproveDecision_RetryCompletesAssignment(t *testing.T) {
	_, store := newOrchestrator(t, ApprovalConfig{})
	jobs := &flakyJobs{MemoryStore: store, fail: true}
	o := NewDecisionOrchestrator(store, store, jobs, ApprovalConfig{})
	ctx := context.Background()

	d, err := o.CreateDecision(ctx, owner, "job-1", "sim-2")
	require.NoError(t, err)

	_, err = o.ApproveDecision(ctx, owner, d.ID)
	require.Error(t, err)

	stored, err := store.GetDecision(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionApproved, stored.Status)
	job, err := store.GetJobRequest(ctx, "job-1")
	require.NoError(t, err)
	assert.Empty(t, job.AssignedCrewID)

	jobs.fail = false
	approved, err := o.ApproveDecision(ctx, owner, d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionApproved, approved.Status)

	job, err = store.GetJobRequest(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "crew-b", job.AssignedCrewID)
	assert.True(t, job.ScheduledDate.Or(time.Time{}).Equal(proposed))

	// once the assignment is in place a further approve is a state error again
	_, err = o.ApproveDecision(ctx, owner, d.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestApproveDecision_RetryStillNeedsApproveRights(t *testing.T) {
	_, store := newOrchestrator(t, ApprovalConfig{})
	jobs := &flakyJobs{MemoryStore: store, fail: true}
	o := NewDecisionOrchestrator(store, store, jobs, ApprovalConfig{})
	ctx := context.Background()

	d, err := o.CreateDecision(ctx, owner, "job-1", "sim-1")
	require.NoError(t, err)
	_, err = o.ApproveDecision(ctx, owner, d.ID)
	require.Error(t, err)

	jobs.fail = false
	_, err = o.ApproveDecision(ctx, crewLead, d.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	job, err := store.GetJobRequest(ctx, "job-1")
	require.NoError(t, err)
	assert.Empty(t, job.AssignedCrewID)
}

func TestApproveDecision_CrewLeadNeedsOverride(t *testing.T) {
	ctx := context.Background()

	t.Run("default", func(t *testing.T) {
		o, _ := newOrchestrator(t, ApprovalConfig{})
		d, err := o.CreateDecision(ctx, crewLead, "job-1", "sim-1")
		require.NoError(t, err)

		_, err = o.ApproveDecision(ctx, crewLead, d.ID)
		assert.ErrorIs(t, err, ErrNotAuthorized)

		still, err := o.GetDecision(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.DecisionDraft, still.Status)
	})

	t.Run("override", func(t *testing.T) {
		o, _ := newOrchestrator(t, ApprovalConfig{AllowCrewLeadApprove: true})
		d, err := o.CreateDecision(ctx, crewLead, "job-1", "sim-1")
		require.NoError(t, err)

		approved, err := o.ApproveDecision(ctx, crewLead, d.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.DecisionApproved, approved.Status)
	})

	t.Run("override never covers staff", func(t *testing.T) {
		o, _ := newOrchestrator(t, ApprovalConfig{AllowCrewLeadApprove: true})
		d, err := o.CreateDecision(ctx, owner, "job-1", "sim-1")
		require.NoError(t, err)

		_, err = o.ApproveDecision(ctx, staff, d.ID)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})
}

func TestDecisionTransitionsAreTerminal(t *testing.T) {
	o, _ := newOrchestrator(t, ApprovalConfig{})
	ctx := context.Background()

	d, err := o.CreateDecision(ctx, owner, "job-1", "sim-1")
	require.NoError(t, err)
	_, err = o.ApproveDecision(ctx, owner, d.ID)
	require.NoError(t, err)

	_, err = o.ApproveDecision(ctx, owner, d.ID)
	require.ErrorIs(t, err, ErrInvalidState)

	var stateErr *StateError
	require.True(t, errors.As(err, &stateErr))
	assert.Equal(t, domain.DecisionApproved, stateErr.Status)

	_, err = o.RejectDecision(ctx, owner, d.ID, "changed my mind")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRejectDecision(t *testing.T) {
	o, _ := newOrchestrator(t, ApprovalConfig{})
	ctx := context.Background()

	d, err := o.CreateDecision(ctx, crewLead, "job-1", "sim-1")
	require.NoError(t, err)

	_, err = o.RejectDecision(ctx, staff, d.ID, "")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	rejected, err := o.RejectDecision(ctx, crewLead, d.ID, "crew out sick")
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionRejected, rejected.Status)
	assert.Equal(t, "u-lead", rejected.RejectedBy)
	assert.Equal(t, "crew out sick", rejected.RejectReason)

	_, err = o.ApproveDecision(ctx, owner, d.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	// a rejected decision frees the slot
	next, err := o.CreateDecision(ctx, crewLead, "job-1", "sim-2")
	require.NoError(t, err)

	all, err := o.ListDecisions(ctx, "job-1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Contains(t, []string{all[0].ID, all[1].ID}, next.ID)
}

func TestDecisionNotFound(t *testing.T) {
	o, _ := newOrchestrator(t, ApprovalConfig{})
	ctx := context.Background()

	_, err := o.ApproveDecision(ctx, owner, "dec_missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = o.RejectDecision(ctx, owner, "dec_missing", "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = o.GetDecision(ctx, "dec_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
