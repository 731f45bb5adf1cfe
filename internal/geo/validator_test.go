package geo

import (
	"math"
	"testing"

	"safar/internal/domain"
)

func pakistanBox() BoundingBox {
	return BoundingBox{MinLat: 23.5, MaxLat: 37.5, MinLon: 60.5, MaxLon: 77.5}
}

func TestValidate_WorldBounds(t *testing.T) {
	t.Parallel()

	v := NewValidator(pakistanBox())

	valid := []domain.Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: -90, Lon: -180},
		{Lat: 90, Lon: 180},
		{Lat: 24.8607, Lon: 67.0011}, // Karachi
	}
	for _, c := range valid {
		if err := v.Validate(c); err != nil {
			t.Errorf("Validate(%v) = %v, want nil", c, err)
		}
	}

	invalid := []domain.Coordinate{
		{Lat: 91, Lon: 0},
		{Lat: -91, Lon: 0},
		{Lat: 0, Lon: 181},
		{Lat: 0, Lon: -181},
		{Lat: math.NaN(), Lon: 0},
		{Lat: 0, Lon: math.Inf(1)},
	}
	for _, c := range invalid {
		if err := v.Validate(c); err != ErrInvalidCoordinates {
			t.Errorf("Validate(%v) = %v, want ErrInvalidCoordinates", c, err)
		}
	}
}

func TestWithinServiceArea(t *testing.T) {
	t.Parallel()

	v := NewValidator(pakistanBox())

	if !v.WithinServiceArea(domain.Coordinate{Lat: 31.5204, Lon: 74.3587}) { // Lahore
		t.Error("expected Lahore to be inside the service area")
	}
	if v.WithinServiceArea(domain.Coordinate{Lat: 51.5072, Lon: -0.1276}) { // London
		t.Error("expected London to be outside the service area")
	}
	if v.WithinServiceArea(domain.Coordinate{Lat: 28.6139, Lon: 77.209 + 1.0}) { // east of the box
		t.Error("expected point east of the box to be outside the service area")
	}
}

func TestHaversineKm(t *testing.T) {
	t.Parallel()

	// One degree of longitude at the equator is 2*pi*R/360.
	a := domain.Coordinate{Lat: 0, Lon: 0}
	b := domain.Coordinate{Lat: 0, Lon: 1}
	want := 2 * math.Pi * earthRadiusKm / 360

	got := HaversineKm(a, b)
	if math.Abs(got-want) > 0.01 {
		t.Errorf("HaversineKm = %f, want %f", got, want)
	}

	// Symmetric.
	if HaversineKm(a, b) != HaversineKm(b, a) {
		t.Error("expected haversine to be symmetric")
	}

	// Zero distance for identical points.
	if d := HaversineKm(a, a); d != 0 {
		t.Errorf("HaversineKm(a, a) = %f, want 0", d)
	}
}
