package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"crew-assignment-service/internal/domain"
	"crew-assignment-service/internal/platform/metrics"
	"crew-assignment-service/internal/platform/obs"
	"crew-assignment-service/internal/ports"
)

const (
	// TravelCacheTTL is how long a computed estimate stays reusable.
	TravelCacheTTL = 30 * 24 * time.Hour
	// 4 decimal places is roughly 11m; nearby addresses share a cache entry.
	cacheKeyPrecision = 4

	earthRadiusKm     = 6371.0
	milesPerKm        = 0.621371
	fallbackSpeedMPH  = 30.0
	defaultAPITimeout = 5 * time.Second
)

var missingProviderOnce sync.Once

// TravelCostEstimator resolves travel between two points from, in order:
//   - the shared travel cache
//   - the external routing API
//   - a haversine estimate at a constant average speed
//
// Provider and cache failures degrade to the next tier and are never returned.
// It is safe for concurrent use.
type TravelCostEstimator struct {
	cache       ports.TravelCache
	provider    ports.RouteProvider
	callTimeout time.Duration
	now         func() time.Time
}

// NewTravelCostEstimator builds an estimator. cache and provider may be nil;
// callTimeout bounds each routing API call (<= 0 uses 5s).
func NewTravelCostEstimator(cache ports.TravelCache, provider ports.RouteProvider, callTimeout time.Duration) *TravelCostEstimator {
	if provider == nil {
		missingProviderOnce.Do(func() {
			log.Printf("travel estimator: no routing API key configured; using cache and haversine only")
		})
	}
	if callTimeout <= 0 {
		callTimeout = defaultAPITimeout
	}

	return &TravelCostEstimator{
		cache:       cache,
		provider:    provider,
		callTimeout: callTimeout,
		now:         time.Now,
	}
}

// TravelCacheKey returns the cache key for a pair of known points.
func TravelCacheKey(origin, dest domain.GeoPoint) string {
	o := origin.Rounded(cacheKeyPrecision)
	d := dest.Rounded(cacheKeyPrecision)
	return fmt.Sprintf("%.4f,%.4f|%.4f,%.4f", o.Lat, o.Lng, d.Lat, d.Lng)
}

// Estimate returns the travel estimate from origin to dest. ok is false when either
// point is unknown; that is a valid "cannot compute" result, not an error.
func (e *TravelCostEstimator) Estimate(ctx context.Context, origin, dest domain.GeoPoint) (domain.TravelEstimate, bool) {
	if !origin.Known() || !dest.Known() {
		metrics.TravelEstimates.WithLabelValues("unknown").Inc()
		return domain.TravelEstimate{}, false
	}

	key := TravelCacheKey(origin, dest)

	if est, ok := e.fromCache(ctx, key); ok {
		metrics.TravelEstimates.WithLabelValues(string(est.Source)).Inc()
		return est, true
	}

	est, ok := e.fromProvider(ctx, origin, dest)
	if !ok {
		est = HaversineEstimate(origin, dest)
	}

	e.store(ctx, key, est)

	metrics.TravelEstimates.WithLabelValues(string(est.Source)).Inc()
	return est, true
}

func (e *TravelCostEstimator) fromCache(ctx context.Context, key string) (domain.TravelEstimate, bool) {
	if e.cache == nil {
		return domain.TravelEstimate{}, false
	}

	entry, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		metrics.TravelCacheErrors.WithLabelValues("get").Inc()
		log.Printf("req_id=%s travel cache read failed key=%s: %v", obs.RequestID(ctx), key, err)
		return domain.TravelEstimate{}, false
	}
	if !ok || entry.Expired(e.now()) {
		return domain.TravelEstimate{}, false
	}

	return domain.TravelEstimate{
		Minutes:        entry.TravelMinutes,
		DistanceMeters: entry.DistanceMeters,
		Source:         domain.TravelSourceCache,
	}, true
}

func (e *TravelCostEstimator) fromProvider(ctx context.Context, origin, dest domain.GeoPoint) (domain.TravelEstimate, bool) {
	if e.provider == nil {
		return domain.TravelEstimate{}, false
	}

	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	r, err := e.provider.Route(callCtx, origin, dest)
	if err != nil {
		log.Printf("req_id=%s routing API unavailable %s -> %s: %v", obs.RequestID(ctx), origin, dest, err)
		return domain.TravelEstimate{}, false
	}

	return domain.TravelEstimate{
		Minutes:        int(math.Round(float64(r.DurationSeconds) / 60)),
		DistanceMeters: r.DistanceMeters,
		Source:         domain.TravelSourceAPI,
	}, true
}

// store writes est to the cache; failures are logged and swallowed.
func (e *TravelCostEstimator) store(ctx context.Context, key string, est domain.TravelEstimate) {
	if e.cache == nil {
		return
	}

	entry := domain.DistanceCacheEntry{
		TravelMinutes:  est.Minutes,
		DistanceMeters: est.DistanceMeters,
		ExpiresAt:      e.now().Add(TravelCacheTTL),
	}
	if err := e.cache.Put(ctx, key, entry); err != nil {
		metrics.TravelCacheErrors.WithLabelValues("put").Inc()
		log.Printf("req_id=%s travel cache write failed key=%s: %v", obs.RequestID(ctx), key, err)
	}
}

// HaversineMeters returns the great-circle distance between two known points.
func HaversineMeters(a, b domain.GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c * 1000
}

// HaversineEstimate converts straight-line distance to minutes at 30 mph.
func HaversineEstimate(a, b domain.GeoPoint) domain.TravelEstimate {
	meters := HaversineMeters(a, b)
	miles := meters / 1000 * milesPerKm

	return domain.TravelEstimate{
		Minutes:        int(math.Round(miles / fallbackSpeedMPH * 60)),
		DistanceMeters: int(math.Round(meters)),
		Source:         domain.TravelSourceHaversine,
	}
}
