// Package fare turns a resolved distance/duration into per-vehicle fare
// breakdowns. All functions are pure and safe for unlimited concurrent use.
package fare

import (
	"math"

	"safar/internal/domain"
)

// Options carries the optional surge extension hook. Surge is a final scale
// on the total; the pricing model behind the multiplier is out of scope.
type Options struct {
	IncludeSurge    bool
	SurgeMultiplier float64
}

// Quote computes the fare breakdown for a single vehicle profile.
// total = max(minFare, base + perKm*km + perMin*min), rounded to the whole
// currency unit (PKR has no circulating subunit).
//
// A non-positive or non-finite distance yields a zero-total estimate
// breakdown rather than an error, so one bad input cannot fail a whole
// quote batch.
func Quote(distanceKm float64, durationMin int, profile domain.VehicleProfile, opts Options) domain.FareBreakdown {
	if distanceKm <= 0 || math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) {
		return domain.FareBreakdown{
			VehicleID:  profile.ID,
			IsEstimate: true,
			Total:      0,
		}
	}

	if durationMin <= 0 {
		// Derive duration from the profile's average speed when the caller
		// has no resolved duration.
		speed := profile.AvgSpeedKmh
		if speed <= 0 {
			speed = 25
		}
		durationMin = int(math.Round(distanceKm / speed * 60))
		if durationMin < 1 {
			durationMin = 1
		}
	}

	distanceCharge := profile.PerKmRate * distanceKm
	timeCharge := profile.PerMinRate * float64(durationMin)

	total := profile.BaseFare + distanceCharge + timeCharge
	if total < profile.MinFare {
		total = profile.MinFare
	}
	if opts.IncludeSurge && opts.SurgeMultiplier > 0 {
		total *= opts.SurgeMultiplier
	}

	return domain.FareBreakdown{
		VehicleID:      profile.ID,
		Base:           profile.BaseFare,
		DistanceCharge: round2(distanceCharge),
		TimeCharge:     round2(timeCharge),
		Total:          math.Round(total),
	}
}

// QuoteAll computes breakdowns for every profile, keyed by vehicle id.
func QuoteAll(distanceKm float64, durationMin int, profiles []domain.VehicleProfile, opts Options) map[string]domain.FareBreakdown {
	quotes := make(map[string]domain.FareBreakdown, len(profiles))
	for _, p := range profiles {
		quotes[p.ID] = Quote(distanceKm, durationMin, p, opts)
	}
	return quotes
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
