package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crew-assignment-service/internal/adapters/cache"
	"crew-assignment-service/internal/adapters/repositories"
	"crew-assignment-service/internal/adapters/routing"
	"crew-assignment-service/internal/domain"
)

var (
	nearYard = domain.NewGeoPoint(39.7700, -89.6800)
	farYard  = domain.NewGeoPoint(40.1164, -88.2434)
)

func newSimulator(t *testing.T) (*Simulator, *repositories.MemoryStore) {
	t.Helper()
	ctx := context.Background()
	store := repositories.NewMemoryStore()

	crews := []*domain.Crew{
		{ID: "crew-near", HomeBase: nearYard, DailyCapacityMinutes: 480, Equipment: []string{"mower", "edger"}},
		{ID: "crew-far", HomeBase: farYard, DailyCapacityMinutes: 120, Equipment: []string{"mower", "edger"}},
		{ID: "crew-bare", HomeBase: nearYard, DailyCapacityMinutes: 480},
		{ID: "crew-nowhere", DailyCapacityMinutes: 480, Equipment: []string{"mower", "edger"}},
	}
	for _, c := range crews {
		require.NoError(t, store.UpsertCrew(ctx, c))
	}

	require.NoError(t, store.UpsertJobRequest(ctx, &domain.JobRequest{
		ID:                "job-1",
		Location:          site,
		LaborLowMinutes:   domain.Some(60),
		LaborHighMinutes:  domain.Some(90),
		CrewSizeMin:       2,
		PriceLowCents:     domain.Some[int64](20000),
		PriceHighCents:    domain.Some[int64](30000),
		RequiredEquipment: []string{"mower", "Edger"},
		RequestedDate:     domain.Some(proposed),
	}))
	require.NoError(t, store.UpsertJobRequest(ctx, &domain.JobRequest{ID: "job-unmapped", CrewSizeMin: 1}))

	est := NewTravelCostEstimator(cache.NewMemoryTravelCache(), routing.NewMockRouteProvider([]routing.MockPair{
		{From: nearYard, To: site, Meters: 1200, Seconds: 300},
	}), time.Second)

	return NewSimulator(store, store, store, est, domain.DefaultCostModel(), 2), store
}

func findSim(t *testing.T, sims []*domain.Simulation, crewID string) *domain.Simulation {
	t.Helper()
	for _, s := range sims {
		if s.CrewID == crewID {
			return s
		}
	}
	t.Fatalf("no simulation for %s", crewID)
	return nil
}

func TestSimulate_RanksAndPersists(t *testing.T) {
	s, store := newSimulator(t)
	ctx := context.Background()

	sims, err := s.Simulate(ctx, SimulateRequest{JobRequestID: "job-1"})
	require.NoError(t, err)
	require.Len(t, sims, 4)

	for i := 1; i < len(sims); i++ {
		assert.GreaterOrEqual(t, sims[i-1].TotalScore, sims[i].TotalScore)
	}
	rank := make(map[string]int, len(sims))
	for i, sim := range sims {
		rank[sim.CrewID] = i
	}
	assert.Less(t, rank["crew-near"], rank["crew-bare"])
	assert.Less(t, rank["crew-bare"], rank["crew-far"])
	assert.Less(t, rank["crew-near"], rank["crew-nowhere"], "a crew that cannot be placed never leads")
	assert.Less(t, rank["crew-bare"], rank["crew-nowhere"])

	near := findSim(t, sims, "crew-near")
	assert.Equal(t, 5, near.TravelMinutesDelta)
	assert.Equal(t, domain.TravelSourceAPI, near.Explanation.TravelSource)
	assert.Empty(t, near.Explanation.RiskFlags)
	assert.Equal(t, 0, near.RiskScore)
	assert.True(t, near.ProposedDate.Equal(proposed))
	assert.Regexp(t, `^sim_`, near.ID)
	require.NotNil(t, near.Explanation.RevenueEstimate)
	assert.Equal(t, 250.0, *near.Explanation.RevenueEstimate)

	stored, err := store.ListSimulations(ctx, "job-1")
	require.NoError(t, err)
	assert.Len(t, stored, 4)

	listed, err := s.ListSimulations(ctx, "job-1")
	require.NoError(t, err)
	require.Len(t, listed, 4)
	for i := range sims {
		assert.Equal(t, sims[i].ID, listed[i].ID)
	}
}

func TestSimulate_RiskFlags(t *testing.T) {
	s, _ := newSimulator(t)

	sims, err := s.Simulate(context.Background(), SimulateRequest{JobRequestID: "job-1"})
	require.NoError(t, err)

	bare := findSim(t, sims, "crew-bare")
	assert.Equal(t, []string{"missing_equipment:mower", "missing_equipment:edger"}, bare.Explanation.RiskFlags)
	assert.Equal(t, 2, bare.RiskScore)

	far := findSim(t, sims, "crew-far")
	assert.Equal(t, domain.TravelSourceHaversine, far.Explanation.TravelSource)
	assert.Contains(t, far.Explanation.RiskFlags, RiskOverCapacity)

	nowhere := findSim(t, sims, "crew-nowhere")
	assert.Equal(t, []string{RiskTravelUnknown}, nowhere.Explanation.RiskFlags)
	assert.Equal(t, 0, nowhere.TravelMinutesDelta)
	assert.Equal(t, 0.0, nowhere.Explanation.Components.Travel)
	assert.Equal(t, "", string(nowhere.Explanation.TravelSource))
}

func TestSimulate_SelectedCrews(t *testing.T) {
	s, _ := newSimulator(t)

	sims, err := s.Simulate(context.Background(), SimulateRequest{
		JobRequestID: "job-1",
		CrewIDs:      []string{"crew-far", "crew-near", "crew-far"},
	})
	require.NoError(t, err)
	require.Len(t, sims, 2)
	assert.Equal(t, "crew-near", sims[0].CrewID)
}

func TestSimulate_NotFound(t *testing.T) {
	s, _ := newSimulator(t)
	ctx := context.Background()

	_, err := s.Simulate(ctx, SimulateRequest{JobRequestID: "job-missing"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Simulate(ctx, SimulateRequest{JobRequestID: "job-1", CrewIDs: []string{"crew-ghost"}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSimulate_ProposedDate(t *testing.T) {
	s, _ := newSimulator(t)
	s.now = func() time.Time { return time.Date(2026, 10, 18, 15, 30, 0, 0, time.UTC) }
	ctx := context.Background()

	t.Run("explicit wins", func(t *testing.T) {
		want := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
		sims, err := s.Simulate(ctx, SimulateRequest{JobRequestID: "job-1", CrewIDs: []string{"crew-near"}, ProposedDate: domain.Some(want)})
		require.NoError(t, err)
		assert.True(t, sims[0].ProposedDate.Equal(want))
	})

	t.Run("defaults to tomorrow", func(t *testing.T) {
		sims, err := s.Simulate(ctx, SimulateRequest{JobRequestID: "job-unmapped", CrewIDs: []string{"crew-near"}})
		require.NoError(t, err)
		assert.True(t, sims[0].ProposedDate.Equal(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)))
		assert.Contains(t, sims[0].Explanation.RiskFlags, RiskLaborDefaulted)
		assert.Contains(t, sims[0].Explanation.RiskFlags, RiskTravelUnknown)
	})
}
