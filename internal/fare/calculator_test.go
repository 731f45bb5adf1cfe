package fare

import (
	"math"
	"testing"

	"safar/internal/domain"
)

func TestQuote_Arithmetic(t *testing.T) {
	t.Parallel()

	profile := domain.VehicleProfile{
		ID:         "mini",
		BaseFare:   50,
		PerKmRate:  15,
		PerMinRate: 2,
		MinFare:    0,
	}

	b := Quote(5.2, 12, profile, Options{})

	if b.Total != 152 { // 50 + 15*5.2 + 2*12
		t.Errorf("Total = %v, want 152", b.Total)
	}
	if b.Base != 50 {
		t.Errorf("Base = %v, want 50", b.Base)
	}
	if b.DistanceCharge != 78 {
		t.Errorf("DistanceCharge = %v, want 78", b.DistanceCharge)
	}
	if b.TimeCharge != 24 {
		t.Errorf("TimeCharge = %v, want 24", b.TimeCharge)
	}
	if b.IsEstimate {
		t.Error("expected IsEstimate=false for a valid quote")
	}
}

func TestQuote_MinimumFareFloor(t *testing.T) {
	t.Parallel()

	profile := domain.VehicleProfile{ID: "bike", BaseFare: 50, PerKmRate: 15, PerMinRate: 2, MinFare: 500}

	b := Quote(1.0, 3, profile, Options{})
	if b.Total != 500 {
		t.Errorf("Total = %v, want min fare 500", b.Total)
	}
}

func TestQuote_InvalidDistance_PlaceholderNotError(t *testing.T) {
	t.Parallel()

	profile := domain.VehicleProfile{ID: "mini", BaseFare: 50, PerKmRate: 15, MinFare: 100}

	for _, km := range []float64{0, -3, math.NaN(), math.Inf(1)} {
		b := Quote(km, 10, profile, Options{})
		if !b.IsEstimate {
			t.Errorf("Quote(%v): expected IsEstimate=true", km)
		}
		if b.Total != 0 {
			t.Errorf("Quote(%v): Total = %v, want 0", km, b.Total)
		}
		if b.VehicleID != "mini" {
			t.Errorf("Quote(%v): VehicleID = %q, want mini", km, b.VehicleID)
		}
	}
}

func TestQuote_DurationDerivedFromSpeedWhenMissing(t *testing.T) {
	t.Parallel()

	profile := domain.VehicleProfile{ID: "mini", BaseFare: 0, PerKmRate: 0, PerMinRate: 1, MinFare: 0, AvgSpeedKmh: 30}

	// 10km at 30km/h is 20 minutes.
	b := Quote(10, 0, profile, Options{})
	if b.Total != 20 {
		t.Errorf("Total = %v, want 20 (duration derived from avg speed)", b.Total)
	}
}

func TestQuote_SurgeScalesTotal(t *testing.T) {
	t.Parallel()

	profile := domain.VehicleProfile{ID: "mini", BaseFare: 100, PerKmRate: 0, PerMinRate: 0, MinFare: 0}

	b := Quote(2, 5, profile, Options{IncludeSurge: true, SurgeMultiplier: 1.5})
	if b.Total != 150 {
		t.Errorf("Total = %v, want 150 with 1.5x surge", b.Total)
	}

	// Surge off: multiplier ignored.
	b = Quote(2, 5, profile, Options{IncludeSurge: false, SurgeMultiplier: 3})
	if b.Total != 100 {
		t.Errorf("Total = %v, want 100 without surge", b.Total)
	}
}

func TestQuote_RoundsToWholeCurrencyUnit(t *testing.T) {
	t.Parallel()

	profile := domain.VehicleProfile{ID: "mini", BaseFare: 10, PerKmRate: 3, PerMinRate: 0, MinFare: 0}

	// 10 + 3*1.11 = 13.33 -> 13
	b := Quote(1.11, 1, profile, Options{})
	if b.Total != 13 {
		t.Errorf("Total = %v, want 13", b.Total)
	}
}

func TestQuoteAll_CoversEveryProfile(t *testing.T) {
	t.Parallel()

	profiles := domain.DefaultVehicleProfiles()
	quotes := QuoteAll(5.2, 12, profiles, Options{})

	if len(quotes) != len(profiles) {
		t.Fatalf("got %d quotes, want %d", len(quotes), len(profiles))
	}
	for _, p := range profiles {
		b, ok := quotes[p.ID]
		if !ok {
			t.Errorf("missing quote for %s", p.ID)
			continue
		}
		if b.Total < p.MinFare {
			t.Errorf("%s: Total = %v below min fare %v", p.ID, b.Total, p.MinFare)
		}
	}
}
