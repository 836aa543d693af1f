package repositories

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"crew-assignment-service/internal/domain"
	"crew-assignment-service/internal/ports"
)

// MemoryStore implements every repository port in process memory. It is used when
// no DATABASE_URL is configured and by service tests. Returned records are copies.
type MemoryStore struct {
	mu          sync.RWMutex
	jobs        map[string]domain.JobRequest
	crews       map[string]domain.Crew
	simulations map[string]domain.Simulation
	decisions   map[string]domain.Decision
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:        make(map[string]domain.JobRequest),
		crews:       make(map[string]domain.Crew),
		simulations: make(map[string]domain.Simulation),
		decisions:   make(map[string]domain.Decision),
	}
}

func (m *MemoryStore) UpsertJobRequest(_ context.Context, j *domain.JobRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[j.ID] = *j
	return nil
}

func (m *MemoryStore) GetJobRequest(_ context.Context, id string) (*domain.JobRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	j, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("get job request %q: %w", id, ports.ErrNotFound)
	}
	return &j, nil
}

func (m *MemoryStore) AssignCrew(_ context.Context, jobRequestID, crewID string, date time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[jobRequestID]
	if !ok {
		return fmt.Errorf("assign crew: job request %q: %w", jobRequestID, ports.ErrNotFound)
	}
	j.AssignedCrewID = crewID
	j.ScheduledDate = domain.Some(date.UTC())
	m.jobs[jobRequestID] = j
	return nil
}

func (m *MemoryStore) UpsertCrew(_ context.Context, c *domain.Crew) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.crews[c.ID] = *c
	return nil
}

func (m *MemoryStore) GetCrew(_ context.Context, id string) (*domain.Crew, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.crews[id]
	if !ok {
		return nil, fmt.Errorf("get crew %q: %w", id, ports.ErrNotFound)
	}
	return &c, nil
}

func (m *MemoryStore) ListCrews(_ context.Context) ([]*domain.Crew, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Crew, 0, len(m.crews))
	for _, c := range m.crews {
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *domain.Crew) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *MemoryStore) CreateSimulations(_ context.Context, sims []*domain.Simulation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range sims {
		if _, ok := m.simulations[s.ID]; ok {
			return fmt.Errorf("insert simulation %q: %w", s.ID, ports.ErrConflict)
		}
		if _, ok := m.jobs[s.JobRequestID]; !ok {
			return fmt.Errorf("insert simulation %q: job request %q: %w", s.ID, s.JobRequestID, ports.ErrNotFound)
		}
	}
	for _, s := range sims {
		m.simulations[s.ID] = *s
	}
	return nil
}

func (m *MemoryStore) GetSimulation(_ context.Context, id string) (*domain.Simulation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.simulations[id]
	if !ok {
		return nil, fmt.Errorf("get simulation %q: %w", id, ports.ErrNotFound)
	}
	return &s, nil
}

func (m *MemoryStore) ListSimulations(_ context.Context, jobRequestID string) ([]*domain.Simulation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Simulation, 0)
	for _, s := range m.simulations {
		if s.JobRequestID == jobRequestID {
			out = append(out, &s)
		}
	}
	return out, nil
}

// CreateDecision stores d unless the job request already has a draft or approved decision.
func (m *MemoryStore) CreateDecision(_ context.Context, d *domain.Decision) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.simulations[d.SelectedSimulationID]; !ok {
		return fmt.Errorf("insert decision: simulation %q: %w", d.SelectedSimulationID, ports.ErrNotFound)
	}
	for _, existing := range m.decisions {
		if existing.JobRequestID == d.JobRequestID && existing.Status.Active() {
			return fmt.Errorf("insert decision: job request %q has active decision %q: %w",
				d.JobRequestID, existing.ID, ports.ErrConflict)
		}
	}
	m.decisions[d.ID] = *d
	return nil
}

func (m *MemoryStore) GetDecision(_ context.Context, id string) (*domain.Decision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.decisions[id]
	if !ok {
		return nil, fmt.Errorf("get decision %q: %w", id, ports.ErrNotFound)
	}
	return &d, nil
}

// ListDecisions returns decisions for a job request, newest first.
func (m *MemoryStore) ListDecisions(_ context.Context, jobRequestID string) ([]*domain.Decision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Decision, 0)
	for _, d := range m.decisions {
		if d.JobRequestID == jobRequestID {
			out = append(out, &d)
		}
	}
	slices.SortFunc(out, func(a, b *domain.Decision) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (m *MemoryStore) Transition(
	_ context.Context,
	id string,
	from domain.DecisionStatus,
	t ports.DecisionTransition,
) (*domain.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.decisions[id]
	if !ok {
		return nil, fmt.Errorf("transition decision %q: %w", id, ports.ErrNotFound)
	}
	if d.Status != from {
		return nil, fmt.Errorf("transition decision %q from %s: %w", id, from, ports.ErrStaleStatus)
	}

	d.Status = t.To
	switch t.To {
	case domain.DecisionApproved:
		d.ApprovedBy = t.ActorID
	case domain.DecisionRejected:
		d.RejectedBy = t.ActorID
		d.RejectReason = t.Reason
	}
	decided := t.DecidedAt
	d.DecidedAt = &decided
	m.decisions[id] = d

	return &d, nil
}
