// Package config loads runtime settings from the environment.
// Invalid values fail fast at startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"crew-assignment-service/internal/domain"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port                  string
	DatabaseURL           string
	RedisURL              string
	RoutingAPIKey         string
	RoutingBaseURL        string
	RoutingTimeout        time.Duration
	RoutingRatePerSec     float64
	CostModel             domain.CostModel
	AllowCrewLeadApprove  bool
	SimulationConcurrency int
	SeedPath              string
	CachePurgeSchedule    string
}

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               Get("PORT", "8080"),
		DatabaseURL:        Get("DATABASE_URL", ""),
		RedisURL:           Get("REDIS_URL", ""),
		RoutingAPIKey:      Get("ROUTING_API_KEY", ""),
		RoutingBaseURL:     Get("ROUTING_BASE_URL", "https://maps.googleapis.com"),
		SeedPath:           Get("SEED_PATH", "data/seeds/fixtures.json"),
		CachePurgeSchedule: Get("CACHE_PURGE_SCHEDULE", "@daily"),
	}

	var err error
	if cfg.RoutingTimeout, err = time.ParseDuration(Get("ROUTING_TIMEOUT", "5s")); err != nil {
		return nil, fmt.Errorf("config: ROUTING_TIMEOUT: %w", err)
	}
	if cfg.RoutingTimeout <= 0 {
		return nil, fmt.Errorf("config: ROUTING_TIMEOUT must be positive")
	}

	if cfg.RoutingRatePerSec, err = strconv.ParseFloat(Get("ROUTING_RATE_PER_SEC", "10"), 64); err != nil {
		return nil, fmt.Errorf("config: ROUTING_RATE_PER_SEC: %w", err)
	}
	if cfg.RoutingRatePerSec <= 0 {
		return nil, fmt.Errorf("config: ROUTING_RATE_PER_SEC must be positive")
	}

	if cfg.AllowCrewLeadApprove, err = strconv.ParseBool(Get("ALLOW_CREW_LEAD_APPROVE", "false")); err != nil {
		return nil, fmt.Errorf("config: ALLOW_CREW_LEAD_APPROVE: %w", err)
	}

	if cfg.SimulationConcurrency, err = strconv.Atoi(Get("SIMULATION_CONCURRENCY", "4")); err != nil {
		return nil, fmt.Errorf("config: SIMULATION_CONCURRENCY: %w", err)
	}
	if cfg.SimulationConcurrency < 1 || cfg.SimulationConcurrency > 64 {
		return nil, fmt.Errorf("config: SIMULATION_CONCURRENCY must be between 1 and 64")
	}

	if _, err := cron.ParseStandard(cfg.CachePurgeSchedule); err != nil {
		return nil, fmt.Errorf("config: CACHE_PURGE_SCHEDULE: %w", err)
	}

	cfg.CostModel = domain.DefaultCostModel()
	if path := Get("COST_MODEL_PATH", ""); path != "" {
		if cfg.CostModel, err = LoadCostModel(path); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	return cfg, nil
}
