package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"crew-assignment-service/internal/domain"
	"crew-assignment-service/internal/platform/obs"
)

// Postgres-backed implementation of the CrewRepository port.
type PostgresCrewRepository struct{ DB *sql.DB }

func NewPostgresCrewRepository(db *sql.DB) *PostgresCrewRepository {
	return &PostgresCrewRepository{DB: db}
}

const selectCrewColumns = `
	SELECT id, name, home_lat, home_lng, daily_capacity_minutes, skills, equipment
	FROM crews
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCrew(row rowScanner) (*domain.Crew, error) {
	var (
		c        domain.Crew
		lat, lng sql.NullFloat64
		skills   []string
		equip    []string
	)
	if err := row.Scan(&c.ID, &c.Name, &lat, &lng, &c.DailyCapacityMinutes, textArray(&skills), textArray(&equip)); err != nil {
		return nil, err
	}
	c.HomeBase = geoFrom(lat, lng)
	c.Skills = skills
	c.Equipment = equip
	return &c, nil
}

func (r *PostgresCrewRepository) GetCrew(ctx context.Context, id string) (_ *domain.Crew, err error) {
	defer obs.Time(ctx, "crews.Get")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres crew repository: DB is nil")
	}

	c, err := scanCrew(r.DB.QueryRowContext(ctx, selectCrewColumns+`WHERE id = $1;`, id))
	if err != nil {
		return nil, fmt.Errorf("get crew %q: %w", id, mapPgError(err))
	}

	return c, nil
}

// Return all crews ordered by id.
func (r *PostgresCrewRepository) ListCrews(ctx context.Context) (_ []*domain.Crew, err error) {
	defer obs.Time(ctx, "crews.List")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres crew repository: DB is nil")
	}

	rows, err := r.DB.QueryContext(ctx, selectCrewColumns+`ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("list crews: query crews table: %w", err)
	}
	defer rows.Close()

	crews := make([]*domain.Crew, 0, 16)
	for rows.Next() {
		c, err := scanCrew(rows)
		if err != nil {
			return nil, fmt.Errorf("list crews: scan row: %w", err)
		}
		crews = append(crews, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list crews: row iteration: %w", err)
	}

	return crews, nil
}

// Insert or replace a crew. Used by seeding.
func (r *PostgresCrewRepository) UpsertCrew(ctx context.Context, c *domain.Crew) error {
	if r.DB == nil {
		return errors.New("postgres crew repository: DB is nil")
	}

	lat, lng := geoArgs(c.HomeBase)
	_, err := r.DB.ExecContext(ctx, `
	INSERT INTO crews (id, name, home_lat, home_lng, daily_capacity_minutes, skills, equipment)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		home_lat = EXCLUDED.home_lat,
		home_lng = EXCLUDED.home_lng,
		daily_capacity_minutes = EXCLUDED.daily_capacity_minutes,
		skills = EXCLUDED.skills,
		equipment = EXCLUDED.equipment;
	`, c.ID, c.Name, lat, lng, c.DailyCapacityMinutes, nonNil(c.Skills), nonNil(c.Equipment))
	if err != nil {
		return fmt.Errorf("upsert crew %q: %w", c.ID, mapPgError(err))
	}

	return nil
}
