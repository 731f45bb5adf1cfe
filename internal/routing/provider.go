package routing

import (
	"context"
	"errors"
	"fmt"
	"net"

	"safar/internal/domain"
)

var (
	// ErrRouteNotFound is returned when the provider affirmatively reports
	// that no path exists between the endpoints. Terminal for that query.
	ErrRouteNotFound = errors.New("no route found")

	// ErrInvalidRequest is returned for malformed provider requests.
	// Never retried.
	ErrInvalidRequest = errors.New("invalid directions request")

	// ErrServiceAreaRestricted is returned when an endpoint falls outside
	// the configured geo-fence. Fatal, no retry, no provider call.
	ErrServiceAreaRestricted = errors.New("location outside service area")
)

// DirectionsRequest is the provider-facing route request.
type DirectionsRequest struct {
	Origin      domain.Coordinate
	Destination domain.Coordinate
	Profile     domain.TravelProfile
}

// DirectionsResponse is the raw provider result before unit conversion.
type DirectionsResponse struct {
	DistanceMeters  float64
	DurationSeconds float64
	Geometry        string // encoded polyline, optional
}

// DirectionsProvider is the external routing collaborator.
type DirectionsProvider interface {
	Directions(ctx context.Context, req DirectionsRequest) (DirectionsResponse, error)
}

// ProviderError wraps a provider failure with its classification and, when
// available, the HTTP-like status it was derived from.
type ProviderError struct {
	Class      domain.ErrorClass
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("directions provider: %s (status %d): %v", e.Class, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("directions provider: %s: %v", e.Class, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ClassifyStatus maps an HTTP-like provider status code to an error class.
func ClassifyStatus(code int) domain.ErrorClass {
	switch {
	case code == 429:
		return domain.ErrClassRateLimit
	case code == 401 || code == 403:
		return domain.ErrClassAuth
	case code >= 500:
		return domain.ErrClassServer
	default:
		return domain.ErrClassUnknown
	}
}

// Classify derives the error class of a provider failure.
func Classify(err error) domain.ErrorClass {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Class
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrClassTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) {
		if ne.Timeout() {
			return domain.ErrClassTimeout
		}
		return domain.ErrClassNetwork
	}
	return domain.ErrClassUnknown
}
