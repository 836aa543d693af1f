package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"crew-assignment-service/internal/domain"
	"crew-assignment-service/internal/platform/obs"
)

// SQLTravelCache is a Postgres-backed travel cache keyed by rounded coordinate pair.
type SQLTravelCache struct {
	DB *sql.DB
}

func NewSQLTravelCache(db *sql.DB) *SQLTravelCache {
	return &SQLTravelCache{DB: db}
}

// Fetch the unexpired entry for key.
func (s *SQLTravelCache) Get(ctx context.Context, key string) (_ domain.DistanceCacheEntry, _ bool, err error) {
	defer obs.Time(ctx, "travel.cache.Get")(&err)

	if s.DB == nil {
		return domain.DistanceCacheEntry{}, false, errors.New("travel cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return domain.DistanceCacheEntry{}, false, errors.New("get travel cache: key must not be empty")
	}

	q := `
	SELECT travel_minutes, distance_meters, expires_at
	FROM travel_cache
	WHERE cache_key = $1
		AND expires_at > now();
	`

	var e domain.DistanceCacheEntry
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&e.TravelMinutes, &e.DistanceMeters, &e.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DistanceCacheEntry{}, false, nil
	}
	if err != nil {
		return domain.DistanceCacheEntry{}, false, fmt.Errorf("get travel cache: query travel_cache table: %w", err)
	}

	return e, true, nil
}

// Store entry under key, replacing any previous value.
func (s *SQLTravelCache) Put(ctx context.Context, key string, e domain.DistanceCacheEntry) (err error) {
	defer obs.Time(ctx, "travel.cache.Put")(&err)

	if s.DB == nil {
		return errors.New("travel cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert travel cache: key must not be empty")
	}

	q := `
	INSERT INTO travel_cache (cache_key, travel_minutes, distance_meters, expires_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (cache_key) DO UPDATE
	SET travel_minutes = EXCLUDED.travel_minutes,
		distance_meters = EXCLUDED.distance_meters,
		expires_at = EXCLUDED.expires_at;
	`
	if _, err := s.DB.ExecContext(ctx, q, key, e.TravelMinutes, e.DistanceMeters, e.ExpiresAt.UTC()); err != nil {
		return fmt.Errorf("insert travel cache key=%q: %w", key, err)
	}

	return nil
}

// Delete entries whose expiry is at or before now.
func (s *SQLTravelCache) PurgeExpired(ctx context.Context, now time.Time) (_ int64, err error) {
	defer obs.Time(ctx, "travel.cache.PurgeExpired")(&err)

	if s.DB == nil {
		return 0, errors.New("travel cache: db is nil")
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM travel_cache WHERE expires_at <= $1;`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge travel cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge travel cache: rows affected: %w", err)
	}

	return n, nil
}
