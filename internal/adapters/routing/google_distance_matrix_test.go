package routing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crew-assignment-service/internal/domain"
)

var (
	yard = domain.NewGeoPoint(40.7128, -74.0060)
	site = domain.NewGeoPoint(40.7306, -73.9866)
)

func newTestProvider(t *testing.T, h http.HandlerFunc) *DistanceMatrixProvider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	p, err := NewDistanceMatrixProvider("test-key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()), WithRateLimit(0))
	require.NoError(t, err)
	return p
}

func TestDistanceMatrixProvider_Route(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/distancematrix/json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "driving", q.Get("mode"))
		assert.Equal(t, "imperial", q.Get("units"))
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "40.712800,-74.006000", q.Get("origins"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"rows": [{"elements": [{
				"status": "OK",
				"distance": {"value": 3218, "text": "2.0 mi"},
				"duration": {"value": 540, "text": "9 mins"}
			}]}]
		}`))
	})

	r, err := p.Route(context.Background(), yard, site)
	require.NoError(t, err)
	assert.Equal(t, 3218, r.DistanceMeters)
	assert.Equal(t, 540, r.DurationSeconds)
}

func TestDistanceMatrixProvider_Unavailable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"provider status", http.StatusOK, `{"status":"REQUEST_DENIED","error_message":"bad key"}`},
		{"element status", http.StatusOK, `{"status":"OK","rows":[{"elements":[{"status":"ZERO_RESULTS"}]}]}`},
		{"no rows", http.StatusOK, `{"status":"OK","rows":[]}`},
		{"missing duration", http.StatusOK, `{"status":"OK","rows":[{"elements":[{"status":"OK","distance":{"value":1}}]}]}`},
		{"client error", http.StatusForbidden, `forbidden`},
		{"bad json", http.StatusOK, `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := p.Route(context.Background(), yard, site)
			assert.Error(t, err)
		})
	}
}

func TestDistanceMatrixProvider_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":"OK","rows":[{"elements":[{"status":"OK","distance":{"value":100},"duration":{"value":60}}]}]}`))
	})

	r, err := p.Route(context.Background(), yard, site)
	require.NoError(t, err)
	assert.Equal(t, 60, r.DurationSeconds)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDistanceMatrixProvider_UnknownPoint(t *testing.T) {
	p, err := NewDistanceMatrixProvider("k")
	require.NoError(t, err)

	_, err = p.Route(context.Background(), domain.GeoPoint{}, site)
	assert.Error(t, err)
}

func TestNewDistanceMatrixProvider_RequiresKey(t *testing.T) {
	_, err := NewDistanceMatrixProvider("")
	assert.Error(t, err)
}
