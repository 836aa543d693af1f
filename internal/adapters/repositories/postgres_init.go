package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the Postgres database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createJobRequestsQuery := `
	CREATE TABLE IF NOT EXISTS job_requests (
		id TEXT PRIMARY KEY,
		address TEXT NOT NULL DEFAULT '',
		lat DOUBLE PRECISION,
		lng DOUBLE PRECISION,
		labor_low_minutes INTEGER,
		labor_high_minutes INTEGER,
		crew_size_min INTEGER NOT NULL DEFAULT 1,
		lot_area_sqft DOUBLE PRECISION,
		price_low_cents BIGINT,
		price_high_cents BIGINT,
		required_equipment TEXT[] NOT NULL DEFAULT '{}',
		requested_date DATE,
		assigned_crew_id TEXT,
		scheduled_date DATE
	);
	`

	createCrewsQuery := `
	CREATE TABLE IF NOT EXISTS crews (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		home_lat DOUBLE PRECISION,
		home_lng DOUBLE PRECISION,
		daily_capacity_minutes INTEGER NOT NULL DEFAULT 0,
		skills TEXT[] NOT NULL DEFAULT '{}',
		equipment TEXT[] NOT NULL DEFAULT '{}'
	);
	`

	createSimulationsQuery := `
	CREATE TABLE IF NOT EXISTS simulations (
		id TEXT PRIMARY KEY,
		job_request_id TEXT NOT NULL REFERENCES job_requests(id),
		crew_id TEXT NOT NULL REFERENCES crews(id),
		proposed_date DATE NOT NULL,
		travel_minutes_delta INTEGER NOT NULL,
		margin_score INTEGER NOT NULL,
		risk_score INTEGER NOT NULL,
		total_score DOUBLE PRECISION NOT NULL,
		explanation JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createSimulationsIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_simulations_job_request
	ON simulations(job_request_id);
	`

	createDecisionsQuery := `
	CREATE TABLE IF NOT EXISTS decisions (
		id TEXT PRIMARY KEY,
		job_request_id TEXT NOT NULL REFERENCES job_requests(id),
		selected_simulation_id TEXT NOT NULL REFERENCES simulations(id),
		status TEXT NOT NULL CHECK (status IN ('draft', 'approved', 'rejected')),
		created_by TEXT NOT NULL,
		approved_by TEXT,
		rejected_by TEXT,
		reject_reason TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		decided_at TIMESTAMPTZ
	);
	`

	// one draft or approved decision per job request
	createActiveDecisionIndexQuery := `
	CREATE UNIQUE INDEX IF NOT EXISTS uq_decisions_active_job_request
	ON decisions(job_request_id)
	WHERE status <> 'rejected';
	`

	createTravelCacheQuery := `
	CREATE TABLE IF NOT EXISTS travel_cache (
		cache_key TEXT PRIMARY KEY,
		travel_minutes INTEGER NOT NULL,
		distance_meters INTEGER NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	);
	`

	createTravelCacheIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_travel_cache_expires_at
	ON travel_cache(expires_at);
	`

	statements := []string{
		createJobRequestsQuery,
		createCrewsQuery,
		createSimulationsQuery,
		createSimulationsIndexQuery,
		createDecisionsQuery,
		createActiveDecisionIndexQuery,
		createTravelCacheQuery,
		createTravelCacheIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
