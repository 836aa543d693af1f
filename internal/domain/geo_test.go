package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeoPointKnown(t *testing.T) {
	assert.False(t, (GeoPoint{}).Known(), "zero value must be unknown")
	assert.True(t, NewGeoPoint(33.4484, -112.074).Known())
	assert.False(t, NewGeoPoint(math.NaN(), 1).Known(), "NaN latitude")
	assert.False(t, NewGeoPoint(91, 0).Known(), "out of range latitude")
	assert.False(t, GeoPointFrom(Some(1.0), None[float64]()).Known(), "missing longitude")
}

func TestGeoPointRounded(t *testing.T) {
	a := NewGeoPoint(33.44841, -112.07402).Rounded(4)
	b := NewGeoPoint(33.44839, -112.07398).Rounded(4)
	assert.Equal(t, a, b, "points ~3m apart should collapse")

	neg := NewGeoPoint(-0.00001, 0.00001).Rounded(4)
	assert.False(t, math.Signbit(neg.Lat), "rounded -0 should be normalized, got %v", neg.Lat)
}
