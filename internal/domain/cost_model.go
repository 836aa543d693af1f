package domain

import "strings"

// Pricing inputs for margin scoring. Treated as read-only once built.
type CostModel struct {
	LaborCostPerHour        float64            `yaml:"labor_cost_per_hour"`
	EquipmentCostPerJob     map[string]float64 `yaml:"equipment_cost_per_job"`
	BaseRatePerThousandSqft float64            `yaml:"base_rate_per_thousand_sqft"`
}

// DefaultCostModel returns the process-wide defaults.
func DefaultCostModel() CostModel {
	return CostModel{
		LaborCostPerHour: 35,
		EquipmentCostPerJob: map[string]float64{
			"mower":         12,
			"trimmer":       4,
			"blower":        3,
			"edger":         4,
			"aerator":       30,
			"dethatcher":    25,
			"spreader":      6,
			"sprayer":       8,
			"hedge_trimmer": 5,
		},
		BaseRatePerThousandSqft: 45,
	}
}

// EquipmentCost returns the per-job cost for name; ok is false when none is configured.
func (m CostModel) EquipmentCost(name string) (cost float64, ok bool) {
	cost, ok = m.EquipmentCostPerJob[NormalizeEquipment(name)]
	return cost, ok
}

// NormalizeEquipment lower-cases and joins words with underscores ("Hedge Trimmer" -> "hedge_trimmer").
func NormalizeEquipment(name string) string {
	f := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '\t'
	})
	return strings.Join(f, "_")
}
