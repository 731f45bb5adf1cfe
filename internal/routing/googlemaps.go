package routing

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"safar/internal/domain"
)

// GoogleMapsProvider is the production DirectionsProvider backed by the
// Google Maps Directions API.
type GoogleMapsProvider struct {
	client *maps.Client
}

// NewGoogleMapsProvider creates a provider with the given API key.
func NewGoogleMapsProvider(apiKey string) (*GoogleMapsProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleMapsProvider{client: client}, nil
}

// Directions resolves a route via the Directions API.
func (p *GoogleMapsProvider) Directions(ctx context.Context, req DirectionsRequest) (DirectionsResponse, error) {
	r := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", req.Origin.Lat, req.Origin.Lon),
		Destination: fmt.Sprintf("%f,%f", req.Destination.Lat, req.Destination.Lon),
		Mode:        travelMode(req.Profile),
		Units:       maps.UnitsMetric,
		Region:      "PK",
	}

	routes, _, err := p.client.Directions(ctx, r)
	if err != nil {
		return DirectionsResponse{}, classifyMapsError(err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return DirectionsResponse{}, ErrRouteNotFound
	}

	leg := routes[0].Legs[0]
	return DirectionsResponse{
		DistanceMeters:  float64(leg.Distance.Meters),
		DurationSeconds: leg.Duration.Seconds(),
		Geometry:        routes[0].OverviewPolyline.Points,
	}, nil
}

func travelMode(profile domain.TravelProfile) maps.Mode {
	switch profile {
	case domain.ProfileCycling:
		return maps.TravelModeBicycling
	case domain.ProfileWalking:
		return maps.TravelModeWalking
	default:
		return maps.TravelModeDriving
	}
}

// classifyMapsError maps the maps client's status-string errors onto the
// provider error taxonomy.
func classifyMapsError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "ZERO_RESULTS"), strings.Contains(msg, "NOT_FOUND"):
		return ErrRouteNotFound
	case strings.Contains(msg, "INVALID_REQUEST"):
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	case strings.Contains(msg, "OVER_QUERY_LIMIT"), strings.Contains(msg, "OVER_DAILY_LIMIT"):
		return &ProviderError{Class: domain.ErrClassRateLimit, StatusCode: 429, Err: err}
	case strings.Contains(msg, "REQUEST_DENIED"):
		return &ProviderError{Class: domain.ErrClassAuth, StatusCode: 403, Err: err}
	case strings.Contains(msg, "UNKNOWN_ERROR"):
		return &ProviderError{Class: domain.ErrClassServer, StatusCode: 500, Err: err}
	default:
		return &ProviderError{Class: Classify(err), Err: err}
	}
}
