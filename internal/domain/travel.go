package domain

import "time"

// TravelSource records where a travel estimate came from.
type TravelSource string

const (
	TravelSourceAPI       TravelSource = "api"
	TravelSourceCache     TravelSource = "cache"
	TravelSourceHaversine TravelSource = "haversine"
)

// Travel time and distance between two points. Produced fresh per query and never mutated.
type TravelEstimate struct {
	Minutes        int
	DistanceMeters int
	Source         TravelSource
}

// Cached travel value for a rounded coordinate pair.
type DistanceCacheEntry struct {
	TravelMinutes  int
	DistanceMeters int
	ExpiresAt      time.Time
}

// Expired reports whether the entry is no longer usable at now.
func (e DistanceCacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}
