package domain

// VehicleProfile is a named pricing/capacity configuration. Profiles are
// configuration, not runtime state.
type VehicleProfile struct {
	ID                   string
	Name                 string
	BaseFare             float64 // in whole currency units (PKR)
	PerKmRate            float64
	PerMinRate           float64
	MinFare              float64
	Capacity             int
	AvgSpeedKmh          float64
	AllowsRestrictedMode bool
}

// DefaultVehicleProfiles returns the fleet configuration for the Pakistan
// deployment.
func DefaultVehicleProfiles() []VehicleProfile {
	return []VehicleProfile{
		{ID: "bike", Name: "Bike", BaseFare: 50, PerKmRate: 15, PerMinRate: 2, MinFare: 80, Capacity: 1, AvgSpeedKmh: 27, AllowsRestrictedMode: true},
		{ID: "rickshaw", Name: "Rickshaw", BaseFare: 80, PerKmRate: 22, PerMinRate: 3, MinFare: 120, Capacity: 3, AvgSpeedKmh: 22},
		{ID: "mini", Name: "Mini Car", BaseFare: 120, PerKmRate: 32, PerMinRate: 4, MinFare: 200, Capacity: 4, AvgSpeedKmh: 25},
		{ID: "car-ac", Name: "Car AC", BaseFare: 180, PerKmRate: 42, PerMinRate: 5, MinFare: 300, Capacity: 4, AvgSpeedKmh: 25},
	}
}

// VehicleSnapshot freezes the assigned vehicle's details on a ride.
type VehicleSnapshot struct {
	Type     string
	Make     string
	Model    string
	Plate    string
	Capacity int
}
