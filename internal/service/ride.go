package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"safar/internal/domain"
	"safar/internal/geo"
	"safar/internal/redis"
	"safar/internal/repository"
)

// DefaultCancellationReason is substituted when a cancellation arrives
// without a stated reason. Clients render the field unconditionally.
const DefaultCancellationReason = "no reason provided"

// RideService owns the ride entity and its lifecycle state machine. Every
// status change goes through the transition table; concurrent enactors are
// serialized by an optimistic compare-and-set on the previously read
// status.
type RideService struct {
	rideRepo            repository.RideRepository
	pickupIndex         redis.PickupIndexInterface
	notificationService *NotificationService
	now                 func() time.Time
}

// NewRideService creates a new RideService.
func NewRideService(
	rideRepo repository.RideRepository,
	pickupIndex redis.PickupIndexInterface,
	notificationService *NotificationService,
) *RideService {
	return &RideService{
		rideRepo:            rideRepo,
		pickupIndex:         pickupIndex,
		notificationService: notificationService,
		now:                 time.Now,
	}
}

// CreateRideRequest contains the parameters for creating a ride. Fare,
// distance, and duration come from the booking flow's route resolution and
// fare quote; they are frozen onto the ride.
type CreateRideRequest struct {
	PassengerID   string
	Pickup        domain.Location
	Drop          domain.Location
	Fare          float64
	DistanceKm    float64
	DurationMin   int
	PaymentMethod domain.PaymentMethod
}

// CreateRide creates a new ride in PENDING with no driver.
func (s *RideService) CreateRide(ctx context.Context, req CreateRideRequest) (*domain.Ride, error) {
	if req.PassengerID == "" {
		return nil, ErrInvalidPassengerID
	}
	if err := validateRideData(req); err != nil {
		return nil, err
	}

	now := s.now()
	ride := &domain.Ride{
		ID:            uuid.New().String(),
		PassengerID:   req.PassengerID,
		Pickup:        req.Pickup,
		Drop:          req.Drop,
		Fare:          req.Fare,
		DistanceKm:    req.DistanceKm,
		DurationMin:   req.DurationMin,
		PaymentMethod: req.PaymentMethod,
		Status:        domain.RideStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	// The proximity index is advisory; a ride without an index entry is
	// still bookable, so index failures don't fail the creation.
	if s.pickupIndex != nil {
		if err := s.pickupIndex.Add(ctx, ride.ID, ride.Pickup.Coordinates); err != nil {
			log.Printf("failed to index pending pickup for ride %s: %v", ride.ID, err)
		}
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyRideCreated(ctx, ride)
	}

	return ride, nil
}

func validateRideData(req CreateRideRequest) error {
	if req.Fare < 0 {
		return fmt.Errorf("%w: fare must be non-negative", ErrInvalidRideData)
	}
	if req.DistanceKm <= 0.1 {
		return fmt.Errorf("%w: distance must exceed 0.1 km", ErrInvalidRideData)
	}
	if req.DurationMin < 1 {
		return fmt.Errorf("%w: duration must be at least 1 minute", ErrInvalidRideData)
	}
	if !req.PaymentMethod.Valid() {
		return fmt.Errorf("%w: unsupported payment method %q", ErrInvalidRideData, req.PaymentMethod)
	}
	return nil
}

// AssignDriverRequest contains the parameters for assigning a driver.
type AssignDriverRequest struct {
	RideID   string
	DriverID string
	Vehicle  domain.VehicleSnapshot
}

// AssignDriver records the driver and vehicle snapshot on a pending ride.
// It does not move the ride out of PENDING; acceptance is a separate
// transition applied by the authorized actor.
func (s *RideService) AssignDriver(ctx context.Context, req AssignDriverRequest) (*domain.Ride, error) {
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}
	if req.Vehicle.Type == "" {
		return nil, ErrMissingVehicleInfo
	}

	active, err := s.rideRepo.GetActiveByDriverID(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrDriverHasActiveRide
	}

	if err := s.rideRepo.AssignDriver(ctx, req.RideID, req.DriverID, req.Vehicle); err != nil {
		return nil, err
	}

	ride, err := s.rideRepo.GetByID(ctx, req.RideID)
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyDriverAssigned(ctx, ride)
	}

	return ride, nil
}

// TransitionRequest contains the parameters for a status transition.
type TransitionRequest struct {
	RideID             string
	Target             domain.RideStatus
	CancellationReason string // only read for transitions into CANCELLED
}

// Transition moves a ride to the target status. The previous and next
// status are checked explicitly against the transition table; there are no
// implicit lifecycle hooks. A concurrent enactor winning the race surfaces
// as repository.ErrStatusConflict.
func (s *RideService) Transition(ctx context.Context, req TransitionRequest) (*domain.Ride, error) {
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}
	if !req.Target.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	ride, err := s.rideRepo.GetByID(ctx, req.RideID)
	if err != nil {
		return nil, err
	}

	from := ride.Status
	if !from.CanTransitionTo(req.Target) {
		return nil, &InvalidTransitionError{From: from, To: req.Target}
	}

	now := s.now()
	switch req.Target {
	case domain.RideStatusInProgress:
		// First entry only; never overwritten.
		if ride.StartedAt.IsZero() {
			ride.StartedAt = now
		}
	case domain.RideStatusCompleted:
		if ride.CompletedAt.IsZero() {
			ride.CompletedAt = now
		}
	case domain.RideStatusCancelled:
		reason := strings.TrimSpace(req.CancellationReason)
		if reason == "" {
			reason = DefaultCancellationReason
		}
		if len(reason) > domain.MaxCancellationReasonLen {
			return nil, fmt.Errorf("%w: cancellation reason exceeds %d characters", ErrInvalidRideData, domain.MaxCancellationReasonLen)
		}
		ride.CancellationReason = reason
	}

	ride.Status = req.Target
	ride.UpdatedAt = now

	if err := s.rideRepo.UpdateStatus(ctx, ride, from); err != nil {
		return nil, err
	}

	if from == domain.RideStatusPending && s.pickupIndex != nil {
		if err := s.pickupIndex.Remove(ctx, ride.ID); err != nil {
			log.Printf("failed to deindex pickup for ride %s: %v", ride.ID, err)
		}
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyStatusChanged(ctx, ride, from)
	}

	return ride, nil
}

// SetPassengerRating records the rating given to the passenger. Ratings
// are accepted in any status; there is no completion guard.
func (s *RideService) SetPassengerRating(ctx context.Context, rideID string, rating int) error {
	if rideID == "" {
		return ErrInvalidRideID
	}
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	return s.rideRepo.UpdatePassengerRating(ctx, rideID, rating)
}

// SetDriverRating records the rating given to the driver.
func (s *RideService) SetDriverRating(ctx context.Context, rideID string, rating int) error {
	if rideID == "" {
		return ErrInvalidRideID
	}
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	return s.rideRepo.UpdateDriverRating(ctx, rideID, rating)
}

// GetRide retrieves a ride by ID.
func (s *RideService) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	return s.rideRepo.GetByID(ctx, rideID)
}

// ListPassengerRides retrieves a passenger's rides, optionally filtered by
// status.
func (s *RideService) ListPassengerRides(ctx context.Context, passengerID string, status *domain.RideStatus) ([]*domain.Ride, error) {
	if passengerID == "" {
		return nil, ErrInvalidPassengerID
	}
	return s.rideRepo.ListByPassenger(ctx, passengerID, status)
}

// ListDriverRides retrieves a driver's rides, optionally filtered by status.
func (s *RideService) ListDriverRides(ctx context.Context, driverID string, status *domain.RideStatus) ([]*domain.Ride, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.rideRepo.ListByDriver(ctx, driverID, status)
}

// ActiveRideForDriver returns the driver's ride in ACCEPTED or IN_PROGRESS,
// or nil if there is none.
func (s *RideService) ActiveRideForDriver(ctx context.Context, driverID string) (*domain.Ride, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.rideRepo.GetActiveByDriverID(ctx, driverID)
}

// NearbyPendingRides returns PENDING rides whose pickup lies within
// radiusMeters of the point, ordered nearest-first.
func (s *RideService) NearbyPendingRides(ctx context.Context, c domain.Coordinate, radiusMeters float64) ([]*domain.Ride, error) {
	if !c.Valid() {
		return nil, geo.ErrInvalidCoordinates
	}
	if radiusMeters <= 0 {
		radiusMeters = 5000
	}

	pickups, err := s.pickupIndex.Near(ctx, c, radiusMeters)
	if err != nil {
		return nil, err
	}
	if len(pickups) == 0 {
		return nil, nil
	}

	ids := make([]string, len(pickups))
	for i, p := range pickups {
		ids[i] = p.RideID
	}

	rides, err := s.rideRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// The index lags status changes slightly; drop anything no longer
	// pending.
	pending := rides[:0]
	for _, ride := range rides {
		if ride.Status == domain.RideStatusPending {
			pending = append(pending, ride)
		}
	}
	return pending, nil
}
