package ports

import (
	"context"

	"crew-assignment-service/internal/domain"
)

// Driving distance and duration between two points.
type RouteResult struct {
	DistanceMeters  int
	DurationSeconds int
}

// Contract for an external routing API.
type RouteProvider interface {
	// Return driving distance and duration. Any error means the provider is unavailable for this pair.
	Route(ctx context.Context, origin, destination domain.GeoPoint) (RouteResult, error)
}
