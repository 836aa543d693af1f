package services

import (
	"cmp"
	"math"
	"slices"

	"crew-assignment-service/internal/domain"
)

const (
	maxTotalScore = 200
	// Points lost per minute of travel.
	travelPenaltyPerMinute = 2
	// Travel charged when no estimate exists; the travel component bottoms out at 0.
	unknownTravelMinutes = 100 / travelPenaltyPerMinute
	// Points lost per risk flag.
	riskWeight = 10
)

// ScoreBreakdown is the composite ranking score with its parts.
type ScoreBreakdown struct {
	Components   domain.ScoreComponents
	RawScore     float64
	ClampedScore float64
}

// CalculateTotalScore blends travel, margin and risk linearly and clamps to [0, 200].
// Identical inputs always produce identical output.
func CalculateTotalScore(travelMinutesDelta float64, marginScore, riskScore int) ScoreBreakdown {
	c := domain.ScoreComponents{
		Travel: 100 - travelMinutesDelta*travelPenaltyPerMinute,
		Margin: float64(marginScore),
		Risk:   float64(riskScore) * riskWeight,
	}
	raw := c.Travel + c.Margin - c.Risk

	clamped := raw
	switch {
	case math.IsNaN(raw) || raw < 0:
		clamped = 0
	case raw > maxTotalScore:
		clamped = maxTotalScore
	}

	return ScoreBreakdown{Components: c, RawScore: raw, ClampedScore: clamped}
}

// RankSimulations orders sims best first: total score descending, then crew id and
// proposed date ascending so equal scores always rank the same way.
func RankSimulations(sims []*domain.Simulation) {
	slices.SortFunc(sims, func(a, b *domain.Simulation) int {
		if c := cmp.Compare(b.TotalScore, a.TotalScore); c != 0 {
			return c
		}
		if c := cmp.Compare(a.CrewID, b.CrewID); c != 0 {
			return c
		}
		return a.ProposedDate.Compare(b.ProposedDate)
	})
}
