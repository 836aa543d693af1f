package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"crew-assignment-service/internal/domain"
	"crew-assignment-service/internal/platform/obs"
	"crew-assignment-service/internal/ports"
)

// Postgres-backed implementation of the DecisionRepository port. The partial unique
// index on decisions(job_request_id) keeps at most one active decision per job request.
type PostgresDecisionRepository struct{ DB *sql.DB }

func NewPostgresDecisionRepository(db *sql.DB) *PostgresDecisionRepository {
	return &PostgresDecisionRepository{DB: db}
}

const decisionColumns = `
	id, job_request_id, selected_simulation_id, status, created_by,
	approved_by, rejected_by, reject_reason, created_at, decided_at
`

func scanDecision(row rowScanner) (*domain.Decision, error) {
	var (
		d                            domain.Decision
		status                       string
		approvedBy, rejectedBy, note sql.NullString
		decidedAt                    sql.NullTime
	)
	err := row.Scan(
		&d.ID, &d.JobRequestID, &d.SelectedSimulationID, &status, &d.CreatedBy,
		&approvedBy, &rejectedBy, &note, &d.CreatedAt, &decidedAt,
	)
	if err != nil {
		return nil, err
	}

	st, err := domain.ParseDecisionStatus(status)
	if err != nil {
		return nil, fmt.Errorf("decision %q: %w", d.ID, err)
	}
	d.Status = st
	d.ApprovedBy = approvedBy.String
	d.RejectedBy = rejectedBy.String
	d.RejectReason = note.String
	d.CreatedAt = d.CreatedAt.UTC()
	if decidedAt.Valid {
		t := decidedAt.Time.UTC()
		d.DecidedAt = &t
	}
	return &d, nil
}

// CreateDecision inserts d; ErrConflict when the job request already has an active decision.
func (r *PostgresDecisionRepository) CreateDecision(ctx context.Context, d *domain.Decision) (err error) {
	defer obs.Time(ctx, "decisions.Insert")(&err)

	if r.DB == nil {
		return errors.New("postgres decision repository: DB is nil")
	}

	_, err = r.DB.ExecContext(ctx, `
	INSERT INTO decisions (id, job_request_id, selected_simulation_id, status, created_by, created_at)
	VALUES ($1, $2, $3, $4, $5, $6);
	`, d.ID, d.JobRequestID, d.SelectedSimulationID, string(d.Status), d.CreatedBy, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert decision %q: %w", d.ID, mapPgError(err))
	}

	return nil
}

func (r *PostgresDecisionRepository) GetDecision(ctx context.Context, id string) (_ *domain.Decision, err error) {
	defer obs.Time(ctx, "decisions.Get")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres decision repository: DB is nil")
	}

	d, err := scanDecision(r.DB.QueryRowContext(ctx, `SELECT `+decisionColumns+` FROM decisions WHERE id = $1;`, id))
	if err != nil {
		return nil, fmt.Errorf("get decision %q: %w", id, mapPgError(err))
	}

	return d, nil
}

// Return all decisions for a job request, newest first.
func (r *PostgresDecisionRepository) ListDecisions(ctx context.Context, jobRequestID string) (_ []*domain.Decision, err error) {
	defer obs.Time(ctx, "decisions.List")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres decision repository: DB is nil")
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+decisionColumns+` FROM decisions WHERE job_request_id = $1 ORDER BY created_at DESC, id DESC;`,
		jobRequestID,
	)
	if err != nil {
		return nil, fmt.Errorf("list decisions: query decisions table: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Decision, 0, 4)
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("list decisions: scan row: %w", err)
		}
		out = append(out, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list decisions: row iteration: %w", err)
	}

	return out, nil
}

// Transition applies t only while the stored status still equals from.
func (r *PostgresDecisionRepository) Transition(
	ctx context.Context,
	id string,
	from domain.DecisionStatus,
	t ports.DecisionTransition,
) (_ *domain.Decision, err error) {
	defer obs.Time(ctx, "decisions.Transition")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres decision repository: DB is nil")
	}

	var approvedBy, rejectedBy, reason sql.NullString
	switch t.To {
	case domain.DecisionApproved:
		approvedBy = nullString(t.ActorID)
	case domain.DecisionRejected:
		rejectedBy = nullString(t.ActorID)
		reason = nullString(t.Reason)
	}

	row := r.DB.QueryRowContext(ctx, `
	UPDATE decisions
	SET status = $3,
		approved_by = COALESCE($4, approved_by),
		rejected_by = COALESCE($5, rejected_by),
		reject_reason = COALESCE($6, reject_reason),
		decided_at = $7
	WHERE id = $1 AND status = $2
	RETURNING `+decisionColumns+`;
	`, id, string(from), string(t.To), approvedBy, rejectedBy, reason, t.DecidedAt)

	d, err := scanDecision(row)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transition decision %q: %w", id, mapPgError(err))
	}

	// no row updated: either the decision is missing or its status moved on
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM decisions WHERE id = $1);`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("transition decision %q: check existence: %w", id, err)
	}
	if !exists {
		return nil, fmt.Errorf("transition decision %q: %w", id, ports.ErrNotFound)
	}
	return nil, fmt.Errorf("transition decision %q from %s: %w", id, from, ports.ErrStaleStatus)
}
