package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"crew-assignment-service/internal/domain"
)

// LoadCostModel reads a YAML cost model. Fields left out keep their defaults.
//
//	labor_cost_per_hour: 38.5
//	base_rate_per_thousand_sqft: 50
//	equipment_cost_per_job:
//	  mower: 14
func LoadCostModel(path string) (domain.CostModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.CostModel{}, fmt.Errorf("load cost model: read %q: %w", path, err)
	}
	return ParseCostModel(data)
}

// ParseCostModel decodes YAML over the defaults and validates the result.
func ParseCostModel(data []byte) (domain.CostModel, error) {
	m := domain.DefaultCostModel()
	overrides := map[string]float64{}
	raw := struct {
		LaborCostPerHour        *float64           `yaml:"labor_cost_per_hour"`
		BaseRatePerThousandSqft *float64           `yaml:"base_rate_per_thousand_sqft"`
		EquipmentCostPerJob     map[string]float64 `yaml:"equipment_cost_per_job"`
	}{EquipmentCostPerJob: overrides}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return domain.CostModel{}, fmt.Errorf("parse cost model: %w", err)
	}

	if raw.LaborCostPerHour != nil {
		m.LaborCostPerHour = *raw.LaborCostPerHour
	}
	if raw.BaseRatePerThousandSqft != nil {
		m.BaseRatePerThousandSqft = *raw.BaseRatePerThousandSqft
	}
	for name, cost := range raw.EquipmentCostPerJob {
		key := domain.NormalizeEquipment(name)
		if key == "" {
			return domain.CostModel{}, fmt.Errorf("parse cost model: empty equipment name")
		}
		if cost < 0 {
			return domain.CostModel{}, fmt.Errorf("parse cost model: equipment %q has negative cost", name)
		}
		m.EquipmentCostPerJob[key] = cost
	}

	if m.LaborCostPerHour < 0 {
		return domain.CostModel{}, fmt.Errorf("parse cost model: labor_cost_per_hour must not be negative")
	}
	if m.BaseRatePerThousandSqft < 0 {
		return domain.CostModel{}, fmt.Errorf("parse cost model: base_rate_per_thousand_sqft must not be negative")
	}

	return m, nil
}
