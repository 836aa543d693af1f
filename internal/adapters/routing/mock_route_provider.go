package routing

import (
	"context"
	"fmt"
	"sync/atomic"

	"crew-assignment-service/internal/domain"
	"crew-assignment-service/internal/ports"
)

type MockPair struct {
	From, To domain.GeoPoint
	Meters   int
	Seconds  int
}

// MockRouteProvider answers from a fixed table of point pairs; unknown pairs fail.
type MockRouteProvider struct {
	m     map[string]ports.RouteResult
	calls atomic.Int64
}

func NewMockRouteProvider(pairs []MockPair) *MockRouteProvider {
	m := make(map[string]ports.RouteResult, len(pairs))
	for _, p := range pairs {
		m[p.From.String()+"|"+p.To.String()] = ports.RouteResult{DistanceMeters: p.Meters, DurationSeconds: p.Seconds}
	}
	return &MockRouteProvider{m: m}
}

func (p *MockRouteProvider) Route(ctx context.Context, origin, destination domain.GeoPoint) (ports.RouteResult, error) {
	p.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return ports.RouteResult{}, err
	}

	r, ok := p.m[origin.String()+"|"+destination.String()]
	if !ok {
		return ports.RouteResult{}, fmt.Errorf("missing pair %s -> %s", origin, destination)
	}

	return r, nil
}

// Calls reports how many times Route was invoked.
func (p *MockRouteProvider) Calls() int64 { return p.calls.Load() }
