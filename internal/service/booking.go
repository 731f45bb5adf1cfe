package service

import (
	"context"

	"safar/internal/domain"
	"safar/internal/fare"
	"safar/internal/routing"
)

// RouteResolverInterface defines the route resolution contract.
// This interface allows for testing with mock implementations.
type RouteResolverInterface interface {
	Resolve(ctx context.Context, q domain.RouteQuery) (domain.RouteResult, error)
}

// Ensure Resolver implements RouteResolverInterface.
var _ RouteResolverInterface = (*routing.Resolver)(nil)

// BookingService runs the booking flow: route resolution, fare quoting,
// and ride creation with the quote frozen in.
type BookingService struct {
	resolver    RouteResolverInterface
	rideService *RideService
	profiles    []domain.VehicleProfile
}

// NewBookingService creates a new BookingService.
func NewBookingService(resolver RouteResolverInterface, rideService *RideService, profiles []domain.VehicleProfile) *BookingService {
	if len(profiles) == 0 {
		profiles = domain.DefaultVehicleProfiles()
	}
	return &BookingService{
		resolver:    resolver,
		rideService: rideService,
		profiles:    profiles,
	}
}

// QuoteRequest contains the parameters for a fare quote.
type QuoteRequest struct {
	Pickup  domain.Coordinate
	Drop    domain.Coordinate
	Profile domain.TravelProfile
}

// QuoteResponse carries the resolved route and per-vehicle fares.
type QuoteResponse struct {
	Route domain.RouteResult
	Fares map[string]domain.FareBreakdown
}

// Quote resolves the route and prices it for every configured vehicle.
// When the route is itself an estimate, every breakdown is tagged as one so
// the presentation layer can disclose the approximation.
func (s *BookingService) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	route, err := s.resolver.Resolve(ctx, domain.RouteQuery{
		Origin:      req.Pickup,
		Destination: req.Drop,
		Profile:     req.Profile,
	})
	if err != nil {
		return nil, err
	}

	fares := fare.QuoteAll(route.DistanceKm, route.DurationMin, s.profiles, fare.Options{})
	if route.IsEstimate {
		for id, b := range fares {
			b.IsEstimate = true
			fares[id] = b
		}
	}

	return &QuoteResponse{Route: route, Fares: fares}, nil
}

// BookRequest contains the parameters for booking a ride.
type BookRequest struct {
	PassengerID   string
	Pickup        domain.Location
	Drop          domain.Location
	VehicleID     string
	PaymentMethod domain.PaymentMethod
}

// BookResponse contains the created ride with its frozen quote.
type BookResponse struct {
	Ride  *domain.Ride
	Route domain.RouteResult
	Fare  domain.FareBreakdown
}

// Book resolves the route, prices the selected vehicle, and creates the
// ride with fare, distance, and duration frozen at booking time.
func (s *BookingService) Book(ctx context.Context, req BookRequest) (*BookResponse, error) {
	profile, ok := s.profileByID(req.VehicleID)
	if !ok {
		return nil, ErrUnknownVehicle
	}

	route, err := s.resolver.Resolve(ctx, domain.RouteQuery{
		Origin:      req.Pickup.Coordinates,
		Destination: req.Drop.Coordinates,
		Profile:     domain.ProfileDriving,
	})
	if err != nil {
		return nil, err
	}

	breakdown := fare.Quote(route.DistanceKm, route.DurationMin, profile, fare.Options{})
	if route.IsEstimate {
		breakdown.IsEstimate = true
	}

	ride, err := s.rideService.CreateRide(ctx, CreateRideRequest{
		PassengerID:   req.PassengerID,
		Pickup:        req.Pickup,
		Drop:          req.Drop,
		Fare:          breakdown.Total,
		DistanceKm:    route.DistanceKm,
		DurationMin:   route.DurationMin,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return nil, err
	}

	return &BookResponse{Ride: ride, Route: route, Fare: breakdown}, nil
}

func (s *BookingService) profileByID(id string) (domain.VehicleProfile, bool) {
	for _, p := range s.profiles {
		if p.ID == id {
			return p, true
		}
	}
	return domain.VehicleProfile{}, false
}
