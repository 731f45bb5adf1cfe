package domain

import "fmt"

// TravelProfile selects the mode of travel for a route query.
type TravelProfile string

const (
	ProfileDriving TravelProfile = "driving"
	ProfileCycling TravelProfile = "cycling"
	ProfileWalking TravelProfile = "walking"
)

// Valid reports whether the profile is one of the supported travel modes.
func (p TravelProfile) Valid() bool {
	switch p {
	case ProfileDriving, ProfileCycling, ProfileWalking:
		return true
	default:
		return false
	}
}

// RouteQuery identifies a route resolution request. It is used only as a
// cache/coalescing key; coordinates are quantized by CacheKey.
type RouteQuery struct {
	Origin      Coordinate
	Destination Coordinate
	Profile     TravelProfile
}

// CacheKey returns the dedup/cache key for the query. Coordinates are
// quantized to 4 decimal places (~11m) so near-duplicate queries share an
// entry.
func (q RouteQuery) CacheKey() string {
	return fmt.Sprintf("%.4f,%.4f|%.4f,%.4f|%s",
		q.Origin.Lat, q.Origin.Lon,
		q.Destination.Lat, q.Destination.Lon,
		q.Profile,
	)
}

// ErrorClass classifies a directions provider failure.
type ErrorClass string

const (
	ErrClassRateLimit ErrorClass = "rate_limit"
	ErrClassNetwork   ErrorClass = "network"
	ErrClassTimeout   ErrorClass = "timeout"
	ErrClassAuth      ErrorClass = "auth"
	ErrClassServer    ErrorClass = "server"
	ErrClassUnknown   ErrorClass = "unknown"
)

// RouteResult is the outcome of a route resolution. It is immutable once
// returned; callers needing different parameters issue a new RouteQuery.
type RouteResult struct {
	DistanceKm  float64
	DurationMin int
	Geometry    string // encoded polyline, empty when the provider omits it
	IsEstimate  bool
	ErrorClass  ErrorClass // set when IsEstimate is true due to provider failure
	Cached      bool       // set on cache hits, never persisted as true
}
