package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"crew-assignment-service/internal/domain"
	"crew-assignment-service/internal/platform/obs"
	"crew-assignment-service/internal/ports"
)

// Postgres-backed implementation of the JobRequestRepository port.
type PostgresJobRequestRepository struct{ DB *sql.DB }

func NewPostgresJobRequestRepository(db *sql.DB) *PostgresJobRequestRepository {
	return &PostgresJobRequestRepository{DB: db}
}

func (r *PostgresJobRequestRepository) GetJobRequest(ctx context.Context, id string) (_ *domain.JobRequest, err error) {
	defer obs.Time(ctx, "jobs.Get")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres job request repository: DB is nil")
	}

	query := `
	SELECT
		id, address, lat, lng,
		labor_low_minutes, labor_high_minutes, crew_size_min, lot_area_sqft,
		price_low_cents, price_high_cents, required_equipment, requested_date,
		assigned_crew_id, scheduled_date
	FROM job_requests
	WHERE id = $1;
	`

	var (
		j                    domain.JobRequest
		lat, lng, area       sql.NullFloat64
		laborLow, laborHigh  sql.NullInt64
		priceLow, priceHigh  sql.NullInt64
		requested, scheduled sql.NullTime
		assigned             sql.NullString
		equipment            []string
	)
	err = r.DB.QueryRowContext(ctx, query, id).Scan(
		&j.ID, &j.Address, &lat, &lng,
		&laborLow, &laborHigh, &j.CrewSizeMin, &area,
		&priceLow, &priceHigh, textArray(&equipment), &requested,
		&assigned, &scheduled,
	)
	if err != nil {
		return nil, fmt.Errorf("get job request %q: %w", id, mapPgError(err))
	}

	j.Location = geoFrom(lat, lng)
	j.LaborLowMinutes = nullInt(laborLow)
	j.LaborHighMinutes = nullInt(laborHigh)
	j.LotAreaSqft = nullFloat(area)
	j.PriceLowCents = nullInt64(priceLow)
	j.PriceHighCents = nullInt64(priceHigh)
	j.RequiredEquipment = equipment
	j.RequestedDate = nullTime(requested)
	j.AssignedCrewID = assigned.String
	j.ScheduledDate = nullTime(scheduled)

	return &j, nil
}

// Record the crew and date chosen by an approved decision.
func (r *PostgresJobRequestRepository) AssignCrew(ctx context.Context, jobRequestID, crewID string, date time.Time) (err error) {
	defer obs.Time(ctx, "jobs.AssignCrew")(&err)

	if r.DB == nil {
		return errors.New("postgres job request repository: DB is nil")
	}

	res, err := r.DB.ExecContext(ctx, `
	UPDATE job_requests
	SET assigned_crew_id = $2, scheduled_date = $3
	WHERE id = $1;
	`, jobRequestID, crewID, date.UTC())
	if err != nil {
		return fmt.Errorf("assign crew: update job_requests: %w", mapPgError(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("assign crew: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("assign crew: job request %q: %w", jobRequestID, ports.ErrNotFound)
	}

	return nil
}

// Insert or replace a job request. Used by seeding.
func (r *PostgresJobRequestRepository) UpsertJobRequest(ctx context.Context, j *domain.JobRequest) error {
	if r.DB == nil {
		return errors.New("postgres job request repository: DB is nil")
	}

	lat, lng := geoArgs(j.Location)
	_, err := r.DB.ExecContext(ctx, `
	INSERT INTO job_requests (
		id, address, lat, lng,
		labor_low_minutes, labor_high_minutes, crew_size_min, lot_area_sqft,
		price_low_cents, price_high_cents, required_equipment, requested_date
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (id) DO UPDATE
	SET address = EXCLUDED.address,
		lat = EXCLUDED.lat,
		lng = EXCLUDED.lng,
		labor_low_minutes = EXCLUDED.labor_low_minutes,
		labor_high_minutes = EXCLUDED.labor_high_minutes,
		crew_size_min = EXCLUDED.crew_size_min,
		lot_area_sqft = EXCLUDED.lot_area_sqft,
		price_low_cents = EXCLUDED.price_low_cents,
		price_high_cents = EXCLUDED.price_high_cents,
		required_equipment = EXCLUDED.required_equipment,
		requested_date = EXCLUDED.requested_date;
	`,
		j.ID, j.Address, lat, lng,
		j.LaborLowMinutes.Ptr(), j.LaborHighMinutes.Ptr(), j.CrewSizeMin, j.LotAreaSqft.Ptr(),
		j.PriceLowCents.Ptr(), j.PriceHighCents.Ptr(), nonNil(j.RequiredEquipment), j.RequestedDate.Ptr(),
	)
	if err != nil {
		return fmt.Errorf("upsert job request %q: %w", j.ID, mapPgError(err))
	}

	return nil
}
