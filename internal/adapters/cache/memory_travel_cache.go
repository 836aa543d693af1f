package cache

import (
	"context"
	"sync"
	"time"

	"crew-assignment-service/internal/domain"
)

// MemoryTravelCache is a process-local travel cache for single-instance runs and tests.
type MemoryTravelCache struct {
	mu      sync.RWMutex
	entries map[string]domain.DistanceCacheEntry
	now     func() time.Time
}

func NewMemoryTravelCache() *MemoryTravelCache {
	return &MemoryTravelCache{
		entries: make(map[string]domain.DistanceCacheEntry),
		now:     time.Now,
	}
}

func (c *MemoryTravelCache) Get(_ context.Context, key string) (domain.DistanceCacheEntry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || e.Expired(c.now()) {
		return domain.DistanceCacheEntry{}, false, nil
	}
	return e, true, nil
}

func (c *MemoryTravelCache) Put(_ context.Context, key string, e domain.DistanceCacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = e
	return nil
}

func (c *MemoryTravelCache) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int64
	for k, e := range c.entries {
		if e.Expired(now) {
			delete(c.entries, k)
			n++
		}
	}
	return n, nil
}

func (c *MemoryTravelCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
