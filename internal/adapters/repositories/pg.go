package repositories

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"crew-assignment-service/internal/domain"
	"crew-assignment-service/internal/ports"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapPgError translates driver errors into store sentinels, keeping the original in the chain.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return ports.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return errors.Join(ports.ErrConflict, err)
		case pgForeignKeyViolation:
			return errors.Join(ports.ErrNotFound, err)
		}
	}
	return err
}

// textArray scans a Postgres text[] through database/sql. pgtype.Map is not safe
// for concurrent use, so each scan gets its own.
func textArray(dst *[]string) sql.Scanner {
	return pgtype.NewMap().SQLScanner(dst)
}

func nullFloat(n sql.NullFloat64) domain.Optional[float64] {
	if !n.Valid {
		return domain.None[float64]()
	}
	return domain.Some(n.Float64)
}

func nullInt(n sql.NullInt64) domain.Optional[int] {
	if !n.Valid {
		return domain.None[int]()
	}
	return domain.Some(int(n.Int64))
}

func nullInt64(n sql.NullInt64) domain.Optional[int64] {
	if !n.Valid {
		return domain.None[int64]()
	}
	return domain.Some(n.Int64)
}

func nullTime(n sql.NullTime) domain.Optional[time.Time] {
	if !n.Valid {
		return domain.None[time.Time]()
	}
	return domain.Some(n.Time.UTC())
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func geoArgs(p domain.GeoPoint) (lat, lng *float64) {
	if !p.Known() {
		return nil, nil
	}
	return &p.Lat, &p.Lng
}

func geoFrom(lat, lng sql.NullFloat64) domain.GeoPoint {
	return domain.GeoPointFrom(nullFloat(lat), nullFloat(lng))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
