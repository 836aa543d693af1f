package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"crew-assignment-service/internal/domain"
	"crew-assignment-service/internal/platform/metrics"
	"crew-assignment-service/internal/platform/obs"
	"crew-assignment-service/internal/ports"
)

const (
	RiskTravelUnknown     = "travel_unknown"
	RiskMissingEquipment  = "missing_equipment"
	RiskOverCapacity      = "over_capacity"
	RiskLaborDefaulted    = "labor_estimate_defaulted"
	defaultSimConcurrency = 4
)

// Estimator is the travel lookup used while scoring candidates.
type Estimator interface {
	Estimate(ctx context.Context, origin, dest domain.GeoPoint) (domain.TravelEstimate, bool)
}

// SimulateRequest selects the candidates to evaluate. An empty CrewIDs evaluates every crew.
type SimulateRequest struct {
	JobRequestID string
	CrewIDs      []string
	ProposedDate domain.Optional[time.Time]
}

// Simulator scores every candidate crew for a job request, ranks them and persists the batch.
type Simulator struct {
	jobs        ports.JobRequestRepository
	crews       ports.CrewRepository
	sims        ports.SimulationRepository
	estimator   Estimator
	model       domain.CostModel
	concurrency int
	now         func() time.Time
}

func NewSimulator(
	jobs ports.JobRequestRepository,
	crews ports.CrewRepository,
	sims ports.SimulationRepository,
	estimator Estimator,
	model domain.CostModel,
	concurrency int,
) *Simulator {
	if concurrency <= 0 {
		concurrency = defaultSimConcurrency
	}
	return &Simulator{
		jobs:        jobs,
		crews:       crews,
		sims:        sims,
		estimator:   estimator,
		model:       model,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Simulate runs travel, margin and ranking for each candidate and returns the ranked batch.
func (s *Simulator) Simulate(ctx context.Context, req SimulateRequest) (_ []*domain.Simulation, err error) {
	defer obs.Time(ctx, "simulations.Run")(&err)

	job, err := s.jobs.GetJobRequest(ctx, req.JobRequestID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, fmt.Errorf("simulate: job request %q: %w", req.JobRequestID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("simulate: get job request: %w", err)
	}

	crews, err := s.candidates(ctx, req.CrewIDs)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}

	createdAt := s.now().UTC()
	date := s.proposedDate(req.ProposedDate, job, createdAt)

	out := make([]*domain.Simulation, len(crews))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, crew := range crews {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = s.score(gctx, job, crew, date, createdAt)
			return nil
		})
	}
	// every candidate must finish before ranking
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}

	RankSimulations(out)

	if err := s.sims.CreateSimulations(ctx, out); err != nil {
		return nil, fmt.Errorf("simulate: persist: %w", err)
	}
	metrics.SimulationRuns.Inc()

	return out, nil
}

// ListSimulations returns stored simulations for a job request in rank order.
func (s *Simulator) ListSimulations(ctx context.Context, jobRequestID string) ([]*domain.Simulation, error) {
	sims, err := s.sims.ListSimulations(ctx, jobRequestID)
	if err != nil {
		return nil, fmt.Errorf("list simulations for %q: %w", jobRequestID, err)
	}
	RankSimulations(sims)
	return sims, nil
}

func (s *Simulator) candidates(ctx context.Context, ids []string) ([]*domain.Crew, error) {
	if len(ids) == 0 {
		crews, err := s.crews.ListCrews(ctx)
		if err != nil {
			return nil, fmt.Errorf("list crews: %w", err)
		}
		return crews, nil
	}

	seen := make(map[string]bool, len(ids))
	crews := make([]*domain.Crew, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		c, err := s.crews.GetCrew(ctx, id)
		if errors.Is(err, ports.ErrNotFound) {
			return nil, fmt.Errorf("crew %q: %w", id, ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("get crew %q: %w", id, err)
		}
		crews = append(crews, c)
	}
	return crews, nil
}

// proposedDate picks the explicit date, then the job's requested date, then tomorrow (UTC).
func (s *Simulator) proposedDate(explicit domain.Optional[time.Time], job *domain.JobRequest, now time.Time) time.Time {
	if d, ok := domain.FirstOf(explicit, job.RequestedDate).Get(); ok {
		return truncateDay(d)
	}
	return truncateDay(now).AddDate(0, 0, 1)
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Simulator) score(
	ctx context.Context,
	job *domain.JobRequest,
	crew *domain.Crew,
	date time.Time,
	createdAt time.Time,
) *domain.Simulation {
	var flags []string

	travel, ok := s.estimator.Estimate(ctx, crew.HomeBase, job.Location)
	scoredMinutes := float64(travel.Minutes)
	if !ok {
		flags = append(flags, RiskTravelUnknown)
		scoredMinutes = unknownTravelMinutes
	}

	margin := ComputeMarginScore(MarginInput{
		LaborLowMinutes:    job.LaborLowMinutes,
		LaborHighMinutes:   job.LaborHighMinutes,
		TravelMinutesDelta: float64(travel.Minutes),
		CrewSizeMin:        job.CrewSizeMin,
		Equipment:          job.RequiredEquipment,
		PriceLowCents:      job.PriceLowCents,
		PriceHighCents:     job.PriceHighCents,
		LotAreaSqft:        job.LotAreaSqft,
	}, &s.model)

	for _, eq := range job.RequiredEquipment {
		if !crew.HasEquipment(eq) {
			flags = append(flags, RiskMissingEquipment+":"+domain.NormalizeEquipment(eq))
		}
	}
	if crew.DailyCapacityMinutes > 0 && margin.BurnMinutes > float64(crew.DailyCapacityMinutes) {
		flags = append(flags, RiskOverCapacity)
	}
	if margin.LaborDefaulted {
		flags = append(flags, RiskLaborDefaulted)
	}

	risk := len(flags)
	total := CalculateTotalScore(scoredMinutes, margin.MarginScore, risk)

	if flags == nil {
		flags = []string{}
	}
	return &domain.Simulation{
		ID:                 domain.NewSimulationID(),
		JobRequestID:       job.ID,
		CrewID:             crew.ID,
		ProposedDate:       date,
		TravelMinutesDelta: travel.Minutes,
		MarginScore:        margin.MarginScore,
		RiskScore:          risk,
		TotalScore:         total.ClampedScore,
		CreatedAt:          createdAt,
		Explanation: domain.Explanation{
			TravelSource:         travel.Source,
			TravelMinutes:        travel.Minutes,
			TravelDistanceMeters: travel.DistanceMeters,
			BurnMinutes:          margin.BurnMinutes,
			EstTotalCost:         margin.EstTotalCost,
			RevenueEstimate:      margin.RevenueEstimate.Ptr(),
			MarginNotes:          margin.Notes,
			RiskFlags:            flags,
			Components:           total.Components,
			RawScore:             total.RawScore,
		},
	}
}
