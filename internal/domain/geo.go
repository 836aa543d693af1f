package domain

import (
	"fmt"
	"math"
)

// Immutable geographic point. The zero value is an unknown location.
type GeoPoint struct {
	Lat   float64
	Lng   float64
	known bool
}

// NewGeoPoint returns a known point. Non-finite or out-of-range coordinates yield an unknown point.
func NewGeoPoint(lat, lng float64) GeoPoint {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return GeoPoint{}
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return GeoPoint{}
	}
	return GeoPoint{Lat: lat, Lng: lng, known: true}
}

// GeoPointFrom builds a point from nullable coordinates; either side missing means unknown.
func GeoPointFrom(lat, lng Optional[float64]) GeoPoint {
	la, ok1 := lat.Get()
	ln, ok2 := lng.Get()
	if !ok1 || !ok2 {
		return GeoPoint{}
	}
	return NewGeoPoint(la, ln)
}

// Known reports whether both coordinates are present.
func (p GeoPoint) Known() bool { return p.known }

// Rounded returns the point snapped to the given number of decimal places.
func (p GeoPoint) Rounded(places int) GeoPoint {
	if !p.known {
		return p
	}
	return GeoPoint{Lat: roundTo(p.Lat, places), Lng: roundTo(p.Lng, places), known: true}
}

// Return coordinates as "lat,lng" for external API compatibility.
func (p GeoPoint) String() string {
	if !p.known {
		return "unknown"
	}
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

func roundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	r := math.Round(v*pow) / pow
	if r == 0 {
		// collapse -0 so keys for both signs match
		return 0
	}
	return r
}
