package ports

import (
	"context"
	"time"

	"crew-assignment-service/internal/domain"
)

// Shared key-value store of travel estimates keyed by rounded coordinate pair.
// Concurrent writers on the same key are harmless; the last write wins.
type TravelCache interface {
	// Return the unexpired entry for key; ok is false on a miss.
	Get(ctx context.Context, key string) (entry domain.DistanceCacheEntry, ok bool, err error)
	// Store entry under key, replacing any previous value.
	Put(ctx context.Context, key string, entry domain.DistanceCacheEntry) error
}

// Optional extension for caches that need explicit expiry sweeps.
type PurgeableTravelCache interface {
	TravelCache
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
