package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"crew-assignment-service/internal/domain"
	"crew-assignment-service/internal/platform/obs"
)

// Postgres-backed implementation of the SimulationRepository port.
type PostgresSimulationRepository struct{ DB *sql.DB }

func NewPostgresSimulationRepository(db *sql.DB) *PostgresSimulationRepository {
	return &PostgresSimulationRepository{DB: db}
}

const selectSimulationColumns = `
	SELECT
		id, job_request_id, crew_id, proposed_date,
		travel_minutes_delta, margin_score, risk_score, total_score,
		explanation, created_at
	FROM simulations
`

func scanSimulation(row rowScanner) (*domain.Simulation, error) {
	var (
		s   domain.Simulation
		raw []byte
	)
	err := row.Scan(
		&s.ID, &s.JobRequestID, &s.CrewID, &s.ProposedDate,
		&s.TravelMinutesDelta, &s.MarginScore, &s.RiskScore, &s.TotalScore,
		&raw, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &s.Explanation); err != nil {
		return nil, fmt.Errorf("decode explanation for %q: %w", s.ID, err)
	}
	s.ProposedDate = s.ProposedDate.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	return &s, nil
}

// Persist a simulation batch in one transaction.
func (r *PostgresSimulationRepository) CreateSimulations(ctx context.Context, sims []*domain.Simulation) (err error) {
	defer obs.Time(ctx, "simulations.Create")(&err)

	if r.DB == nil {
		return errors.New("postgres simulation repository: DB is nil")
	}
	if len(sims) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert simulations: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO simulations (
		id, job_request_id, crew_id, proposed_date,
		travel_minutes_delta, margin_score, risk_score, total_score,
		explanation, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`)
	if err != nil {
		return fmt.Errorf("insert simulations: db prepare: %w", err)
	}
	defer stmt.Close()

	for _, s := range sims {
		explanation, err := json.Marshal(s.Explanation)
		if err != nil {
			return fmt.Errorf("insert simulations: encode explanation for %q: %w", s.ID, err)
		}

		_, err = stmt.ExecContext(ctx,
			s.ID, s.JobRequestID, s.CrewID, s.ProposedDate,
			s.TravelMinutesDelta, s.MarginScore, s.RiskScore, s.TotalScore,
			explanation, s.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert simulation id=%q: %w", s.ID, mapPgError(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert simulations commit: %w", err)
	}

	return nil
}

func (r *PostgresSimulationRepository) GetSimulation(ctx context.Context, id string) (_ *domain.Simulation, err error) {
	defer obs.Time(ctx, "simulations.Get")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres simulation repository: DB is nil")
	}

	s, err := scanSimulation(r.DB.QueryRowContext(ctx, selectSimulationColumns+`WHERE id = $1;`, id))
	if err != nil {
		return nil, fmt.Errorf("get simulation %q: %w", id, mapPgError(err))
	}

	return s, nil
}

// Return all simulations for a job request, best first.
func (r *PostgresSimulationRepository) ListSimulations(ctx context.Context, jobRequestID string) (_ []*domain.Simulation, err error) {
	defer obs.Time(ctx, "simulations.List")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres simulation repository: DB is nil")
	}

	rows, err := r.DB.QueryContext(ctx,
		selectSimulationColumns+`WHERE job_request_id = $1 ORDER BY total_score DESC, crew_id, proposed_date;`,
		jobRequestID,
	)
	if err != nil {
		return nil, fmt.Errorf("list simulations: query simulations table: %w", err)
	}
	defer rows.Close()

	sims := make([]*domain.Simulation, 0, 16)
	for rows.Next() {
		s, err := scanSimulation(rows)
		if err != nil {
			return nil, fmt.Errorf("list simulations: scan row: %w", err)
		}
		sims = append(sims, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list simulations: row iteration: %w", err)
	}

	return sims, nil
}
