package domain

// FareBreakdown is a pure derived value produced by the fare calculator.
// It has no identity and no lifecycle.
type FareBreakdown struct {
	VehicleID      string
	Base           float64
	DistanceCharge float64
	TimeCharge     float64
	Total          float64
	IsEstimate     bool
}
