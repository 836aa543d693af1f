package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"crew-assignment-service/internal/domain"
	"crew-assignment-service/internal/platform/obs"
)

const redisKeyPrefix = "travel:"

// Stored value; expiry is carried by the key TTL.
type redisTravelValue struct {
	TravelMinutes  int       `json:"travel_minutes"`
	DistanceMeters int       `json:"distance_meters"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// RedisTravelCache keeps travel estimates in Redis and lets Redis expire them.
type RedisTravelCache struct {
	client *redis.Client
	prefix string
}

func NewRedisTravelCache(client *redis.Client) *RedisTravelCache {
	return &RedisTravelCache{client: client, prefix: redisKeyPrefix}
}

func (c *RedisTravelCache) Get(ctx context.Context, key string) (_ domain.DistanceCacheEntry, _ bool, err error) {
	defer obs.Time(ctx, "travel.cache.redis.Get")(&err)

	if c.client == nil {
		return domain.DistanceCacheEntry{}, false, errors.New("travel cache: redis client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return domain.DistanceCacheEntry{}, false, errors.New("get travel cache: key must not be empty")
	}

	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.DistanceCacheEntry{}, false, nil
	}
	if err != nil {
		return domain.DistanceCacheEntry{}, false, fmt.Errorf("get travel cache: redis get: %w", err)
	}

	var v redisTravelValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return domain.DistanceCacheEntry{}, false, fmt.Errorf("get travel cache: decode %q: %w", key, err)
	}

	return domain.DistanceCacheEntry{
		TravelMinutes:  v.TravelMinutes,
		DistanceMeters: v.DistanceMeters,
		ExpiresAt:      v.ExpiresAt,
	}, true, nil
}

// Put stores entry with a TTL matching its expiry. Already-expired entries are skipped.
func (c *RedisTravelCache) Put(ctx context.Context, key string, e domain.DistanceCacheEntry) (err error) {
	defer obs.Time(ctx, "travel.cache.redis.Put")(&err)

	if c.client == nil {
		return errors.New("travel cache: redis client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert travel cache: key must not be empty")
	}

	ttl := time.Until(e.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(redisTravelValue{
		TravelMinutes:  e.TravelMinutes,
		DistanceMeters: e.DistanceMeters,
		ExpiresAt:      e.ExpiresAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("insert travel cache: encode: %w", err)
	}

	if err := c.client.Set(ctx, c.prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("insert travel cache key=%q: %w", key, err)
	}

	return nil
}
