package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crew-assignment-service/internal/domain"
)

func TestMemoryTravelCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	c := NewMemoryTravelCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Put(ctx, "fresh", domain.DistanceCacheEntry{TravelMinutes: 7, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, c.Put(ctx, "stale", domain.DistanceCacheEntry{TravelMinutes: 9, ExpiresAt: now.Add(-time.Hour)}))

	t.Run("hit", func(t *testing.T) {
		e, ok, err := c.Get(ctx, "fresh")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 7, e.TravelMinutes)
	})

	t.Run("expired is a miss", func(t *testing.T) {
		_, ok, err := c.Get(ctx, "stale")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("purge", func(t *testing.T) {
		n, err := c.PurgeExpired(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		assert.Equal(t, 1, c.Len())
	})
}
