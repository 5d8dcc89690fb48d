package geo

import (
	"math"
	"testing"
)

// degAtEquator converts a distance in meters to degrees of longitude
// on the equator, where haversine reduces to R*dLng exactly.
func degAtEquator(meters float64) float64 {
	return meters / EarthRadiusMeters * 180 / math.Pi
}

func TestDistanceZero(t *testing.T) {
	p := Point{Lat: 52.5200, Lng: 13.4050}
	if d := Distance(p, p); d != 0 {
		t.Errorf("expected 0, got %v", d)
	}
}

func TestDistanceEquatorArc(t *testing.T) {
	// 1000 m along the equator.
	a := Point{Lat: 0, Lng: 0}
	b := Point{Lat: 0, Lng: degAtEquator(1000)}
	d := Distance(a, b)
	if math.Abs(d-1000) > 0.01 {
		t.Errorf("expected ~1000m, got %v", d)
	}
}

func TestDistanceKnownCities(t *testing.T) {
	// Berlin -> Hamburg, roughly 255 km.
	berlin := Point{Lat: 52.5200, Lng: 13.4050}
	hamburg := Point{Lat: 53.5511, Lng: 9.9937}
	d := Distance(berlin, hamburg)
	if d < 250000 || d > 260000 {
		t.Errorf("expected ~255km, got %v", d)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	a := Point{Lat: 48.137, Lng: 11.575}
	b := Point{Lat: 48.208, Lng: 16.373}
	if d1, d2 := Distance(a, b), Distance(b, a); math.Abs(d1-d2) > 1e-9 {
		t.Errorf("distance not symmetric: %v vs %v", d1, d2)
	}
}

func TestWithinBoundaryIsInside(t *testing.T) {
	// A point at exactly radius distance counts as inside.
	center := Point{Lat: 0, Lng: 0}
	onBoundary := Point{Lat: 0, Lng: degAtEquator(45)}

	d := Distance(onBoundary, center)
	if math.Abs(d-45) > 0.001 {
		t.Fatalf("boundary point construction off: distance %v", d)
	}
	// Radius set to the computed distance itself, so the comparison is
	// exact equality regardless of floating-point rounding.
	if !Within(onBoundary, center, d) {
		t.Error("point at exactly radius distance should be within")
	}
	if Within(Point{Lat: 0, Lng: degAtEquator(45.5)}, center, 45) {
		t.Error("point at 45.5m should not be within a 45m radius")
	}
}
