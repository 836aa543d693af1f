package services

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"crew-assignment-service/internal/domain"
)

const (
	defaultLaborMinutes = 60
	// Burn at which the inverse-burn heuristic reaches zero.
	burnCeilingMinutes = 480
	// Breakeven jobs still earn a score of 20.
	marginScoreOffset = 0.2
)

// MarginInput carries the job and candidate signals used for profitability scoring.
type MarginInput struct {
	LaborLowMinutes    domain.Optional[int]
	LaborHighMinutes   domain.Optional[int]
	TravelMinutesDelta float64
	CrewSizeMin        int
	Equipment          []string
	PriceLowCents      domain.Optional[int64]
	PriceHighCents     domain.Optional[int64]
	LotAreaSqft        domain.Optional[float64]
}

// MarginBurnResult is the cost estimate and 0-100 margin score for one candidate.
// Notes record which labor, cost and revenue branches were taken.
type MarginBurnResult struct {
	BurnMinutes      float64
	EstLaborCost     float64
	EstEquipmentCost float64
	EstTotalCost     float64
	MarginScore      int
	LaborDefaulted   bool
	RevenueEstimate  domain.Optional[float64]
	Notes            []string
}

// LaborMinutes resolves the labor estimate: high bound, then low bound, then the default.
func LaborMinutes(in MarginInput) (minutes int, defaulted bool) {
	opt := domain.FirstOf(in.LaborHighMinutes, in.LaborLowMinutes)
	return opt.Or(defaultLaborMinutes), !opt.Valid()
}

// ComputeMarginScore estimates cost and scores profitability. It performs no I/O and
// never fails; out-of-range results are clamped. A nil model uses domain.DefaultCostModel.
func ComputeMarginScore(in MarginInput, model *domain.CostModel) MarginBurnResult {
	m := domain.DefaultCostModel()
	if model != nil {
		m = *model
	}

	var res MarginBurnResult

	labor, defaulted := LaborMinutes(in)
	res.LaborDefaulted = defaulted
	if defaulted {
		res.Notes = append(res.Notes, fmt.Sprintf("No labor estimate on job request; used default of %d minutes", defaultLaborMinutes))
	}
	res.BurnMinutes = float64(labor) + in.TravelMinutesDelta

	crew := max(1, in.CrewSizeMin)
	res.EstLaborCost = roundCents(res.BurnMinutes / 60 * m.LaborCostPerHour * float64(crew))
	res.Notes = append(res.Notes, fmt.Sprintf(
		"Labor cost: %.0f burn minutes x $%.2f/hr x %d crew", res.BurnMinutes, m.LaborCostPerHour, crew,
	))

	var equipment float64
	for _, name := range in.Equipment {
		cost, ok := m.EquipmentCost(name)
		if !ok {
			res.Notes = append(res.Notes, fmt.Sprintf("Equipment %q has no configured cost; counted as $0", name))
			continue
		}
		equipment += cost
	}
	res.EstEquipmentCost = roundCents(equipment)
	res.EstTotalCost = roundCents(res.EstLaborCost + res.EstEquipmentCost)

	revenue, note := revenueEstimate(in, m)
	res.Notes = append(res.Notes, note)

	r, ok := revenue.Get()
	if !ok {
		res.MarginScore = clampScore((1 - res.BurnMinutes/burnCeilingMinutes) * 100)
		return res
	}

	r = roundCents(r)
	res.RevenueEstimate = domain.Some(r)

	profitMargin := 0.0
	if r != 0 {
		profitMargin = (r - res.EstTotalCost) / r
	}
	res.MarginScore = clampScore(math.Round((profitMargin + marginScoreOffset) * 100))

	return res
}

// revenueEstimate applies the revenue signals in strict priority order.
func revenueEstimate(in MarginInput, m domain.CostModel) (domain.Optional[float64], string) {
	low, hasLow := in.PriceLowCents.Get()
	high, hasHigh := in.PriceHighCents.Get()

	switch {
	case hasLow && hasHigh:
		mid := (float64(low) + float64(high)) / 2 / 100
		return domain.Some(mid), fmt.Sprintf(
			"Revenue from midpoint of quoted range $%.2f-$%.2f", float64(low)/100, float64(high)/100,
		)
	case hasHigh:
		return domain.Some(float64(high) / 100), fmt.Sprintf("Revenue from quoted high price $%.2f", float64(high)/100)
	case hasLow:
		return domain.Some(float64(low) / 100), fmt.Sprintf("Revenue from quoted low price $%.2f", float64(low)/100)
	}

	if area, ok := in.LotAreaSqft.Get(); ok && area > 0 {
		return domain.Some(area / 1000 * m.BaseRatePerThousandSqft), fmt.Sprintf(
			"Revenue proxy from lot area: %.0f sqft at $%.2f per 1000 sqft", area, m.BaseRatePerThousandSqft,
		)
	}

	return domain.None[float64](), fmt.Sprintf(
		"No revenue signal; scored by inverse burn against a %d minute ceiling", burnCeilingMinutes,
	)
}

func roundCents(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// clampScore bounds v to [0, 100]; NaN scores 0.
func clampScore(v float64) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 100 {
		return 100
	}
	return int(math.Round(v))
}
