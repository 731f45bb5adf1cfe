package tests

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"safar/internal/domain"
	"safar/internal/repository"
	"safar/internal/service"
)

// ──────────────────────────────────────────────
// 1. RIDE CREATION EDGE CASES
// ──────────────────────────────────────────────

func validCreateRequest() service.CreateRideRequest {
	return service.CreateRideRequest{
		PassengerID: "passenger-1",
		Pickup: domain.Location{
			Address:     "Liberty Market",
			City:        "Lahore",
			Coordinates: domain.Coordinate{Lat: 31.5102, Lon: 74.3441},
		},
		Drop: domain.Location{
			Address:     "Allama Iqbal International Airport",
			City:        "Lahore",
			Coordinates: domain.Coordinate{Lat: 31.5216, Lon: 74.4036},
		},
		Fare:          450,
		DistanceKm:    8.4,
		DurationMin:   22,
		PaymentMethod: domain.PaymentMethodCash,
	}
}

func TestRideCreation_ValidInput_Succeeds(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	pickupIndex := NewMockPickupIndex()
	rideService := service.NewRideService(rideRepo, pickupIndex, nil)

	ride, err := rideService.CreateRide(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if ride.ID == "" {
		t.Error("expected ride ID to be set")
	}
	if ride.Status != domain.RideStatusPending {
		t.Errorf("expected status PENDING, got %s", ride.Status)
	}
	if ride.DriverID != "" {
		t.Errorf("expected no driver, got %s", ride.DriverID)
	}
	if !pickupIndex.Has(ride.ID) {
		t.Error("expected pickup to be indexed")
	}
}

func TestRideCreation_InvalidData_Fails(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		mutate func(*service.CreateRideRequest)
	}{
		{
			name:   "negative fare",
			mutate: func(r *service.CreateRideRequest) { r.Fare = -1 },
		},
		{
			name:   "distance at threshold",
			mutate: func(r *service.CreateRideRequest) { r.DistanceKm = 0.1 },
		},
		{
			name:   "zero duration",
			mutate: func(r *service.CreateRideRequest) { r.DurationMin = 0 },
		},
		{
			name:   "unsupported payment method",
			mutate: func(r *service.CreateRideRequest) { r.PaymentMethod = "CHEQUE" },
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rideRepo := NewMockRideRepository()
			rideService := service.NewRideService(rideRepo, NewMockPickupIndex(), nil)

			req := validCreateRequest()
			tc.mutate(&req)

			_, err := rideService.CreateRide(context.Background(), req)
			if !errors.Is(err, service.ErrInvalidRideData) {
				t.Errorf("expected ErrInvalidRideData, got: %v", err)
			}
			if count := atomic.LoadInt32(&rideRepo.CreateCallCount); count != 0 {
				t.Errorf("expected no repository writes, got %d", count)
			}
		})
	}
}

func TestRideCreation_MissingPassengerID_Fails(t *testing.T) {
	t.Parallel()

	rideService := service.NewRideService(NewMockRideRepository(), NewMockPickupIndex(), nil)

	req := validCreateRequest()
	req.PassengerID = ""

	_, err := rideService.CreateRide(context.Background(), req)
	if !errors.Is(err, service.ErrInvalidPassengerID) {
		t.Errorf("expected ErrInvalidPassengerID, got: %v", err)
	}
}

func TestRideCreation_IndexFailureDoesNotFailBooking(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	pickupIndex := NewMockPickupIndex()
	pickupIndex.AddError = errors.New("redis down")
	rideService := service.NewRideService(rideRepo, pickupIndex, nil)

	ride, err := rideService.CreateRide(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if ride.Status != domain.RideStatusPending {
		t.Errorf("expected status PENDING, got %s", ride.Status)
	}
}

// ──────────────────────────────────────────────
// 2. DRIVER ASSIGNMENT
// ──────────────────────────────────────────────

func TestAssignDriver_RecordsDriverAndVehicle(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideService := service.NewRideService(rideRepo, NewMockPickupIndex(), nil)

	ride, err := rideService.CreateRide(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := rideService.AssignDriver(context.Background(), service.AssignDriverRequest{
		RideID:   ride.ID,
		DriverID: "driver-1",
		Vehicle:  domain.VehicleSnapshot{Type: "mini", Make: "Suzuki", Model: "Alto", Plate: "LEB-1234", Capacity: 4},
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	if updated.DriverID != "driver-1" {
		t.Errorf("expected driver-1, got %s", updated.DriverID)
	}
	if updated.Vehicle == nil || updated.Vehicle.Plate != "LEB-1234" {
		t.Errorf("expected vehicle snapshot to be recorded, got %+v", updated.Vehicle)
	}
	if updated.Status != domain.RideStatusPending {
		t.Errorf("assignment must not change status, got %s", updated.Status)
	}
}

func TestAssignDriver_MissingVehicleType_Fails(t *testing.T) {
	t.Parallel()

	rideService := service.NewRideService(NewMockRideRepository(), NewMockPickupIndex(), nil)

	_, err := rideService.AssignDriver(context.Background(), service.AssignDriverRequest{
		RideID:   "ride-1",
		DriverID: "driver-1",
		Vehicle:  domain.VehicleSnapshot{},
	})
	if !errors.Is(err, service.ErrMissingVehicleInfo) {
		t.Errorf("expected ErrMissingVehicleInfo, got: %v", err)
	}
}

func TestAssignDriver_DriverWithActiveRide_Fails(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideService := service.NewRideService(rideRepo, NewMockPickupIndex(), nil)

	active := &domain.Ride{ID: "ride-active", PassengerID: "p-2", DriverID: "driver-1", Status: domain.RideStatusInProgress}
	rideRepo.AddRide(active)

	ride, err := rideService.CreateRide(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = rideService.AssignDriver(context.Background(), service.AssignDriverRequest{
		RideID:   ride.ID,
		DriverID: "driver-1",
		Vehicle:  domain.VehicleSnapshot{Type: "mini"},
	})
	if !errors.Is(err, service.ErrDriverHasActiveRide) {
		t.Errorf("expected ErrDriverHasActiveRide, got: %v", err)
	}
}

// ──────────────────────────────────────────────
// 3. LIFECYCLE TRANSITIONS
// ──────────────────────────────────────────────

func newPendingRide(t *testing.T, rideService *service.RideService) *domain.Ride {
	t.Helper()
	ride, err := rideService.CreateRide(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return ride
}

func TestLifecycle_FullHappyPath(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	pickupIndex := NewMockPickupIndex()
	rideService := service.NewRideService(rideRepo, pickupIndex, nil)

	ride := newPendingRide(t, rideService)
	frozenFare := ride.Fare

	for _, target := range []domain.RideStatus{
		domain.RideStatusAccepted,
		domain.RideStatusInProgress,
		domain.RideStatusCompleted,
	} {
		var err error
		ride, err = rideService.Transition(context.Background(), service.TransitionRequest{
			RideID: ride.ID,
			Target: target,
		})
		if err != nil {
			t.Fatalf("transition to %s: %v", target, err)
		}
	}

	if ride.Status != domain.RideStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", ride.Status)
	}
	if ride.StartedAt.IsZero() {
		t.Error("expected startedAt to be set")
	}
	if ride.CompletedAt.IsZero() {
		t.Error("expected completedAt to be set")
	}
	if ride.CompletedAt.Before(ride.StartedAt) {
		t.Error("completedAt must not precede startedAt")
	}
	if ride.Fare != frozenFare {
		t.Errorf("fare must stay frozen: want %.0f, got %.0f", frozenFare, ride.Fare)
	}
	if pickupIndex.Has(ride.ID) {
		t.Error("pickup must be deindexed after leaving PENDING")
	}
}

func TestLifecycle_ForbiddenTransitions(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		from domain.RideStatus
		to   domain.RideStatus
	}{
		{domain.RideStatusPending, domain.RideStatusInProgress},
		{domain.RideStatusPending, domain.RideStatusCompleted},
		{domain.RideStatusAccepted, domain.RideStatusCompleted},
		{domain.RideStatusCompleted, domain.RideStatusCancelled},
		{domain.RideStatusCancelled, domain.RideStatusAccepted},
		{domain.RideStatusCompleted, domain.RideStatusInProgress},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			t.Parallel()

			rideRepo := NewMockRideRepository()
			rideService := service.NewRideService(rideRepo, NewMockPickupIndex(), nil)

			rideRepo.AddRide(&domain.Ride{ID: "ride-1", PassengerID: "p-1", Status: tc.from})

			_, err := rideService.Transition(context.Background(), service.TransitionRequest{
				RideID: "ride-1",
				Target: tc.to,
			})

			var transitionErr *service.InvalidTransitionError
			if !errors.As(err, &transitionErr) {
				t.Fatalf("expected InvalidTransitionError, got: %v", err)
			}
			if transitionErr.From != tc.from || transitionErr.To != tc.to {
				t.Errorf("error carries %s->%s, want %s->%s", transitionErr.From, transitionErr.To, tc.from, tc.to)
			}
		})
	}
}

func TestLifecycle_CancellationReasonDefaultsToSentinel(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideService := service.NewRideService(rideRepo, NewMockPickupIndex(), nil)

	ride := newPendingRide(t, rideService)

	cancelled, err := rideService.Transition(context.Background(), service.TransitionRequest{
		RideID: ride.ID,
		Target: domain.RideStatusCancelled,
	})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if cancelled.CancellationReason != service.DefaultCancellationReason {
		t.Errorf("expected sentinel reason, got %q", cancelled.CancellationReason)
	}
}

func TestLifecycle_CancellationReasonTooLong_Fails(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideService := service.NewRideService(rideRepo, NewMockPickupIndex(), nil)

	ride := newPendingRide(t, rideService)

	_, err := rideService.Transition(context.Background(), service.TransitionRequest{
		RideID:             ride.ID,
		Target:             domain.RideStatusCancelled,
		CancellationReason: strings.Repeat("x", domain.MaxCancellationReasonLen+1),
	})
	if !errors.Is(err, service.ErrInvalidRideData) {
		t.Errorf("expected ErrInvalidRideData, got: %v", err)
	}
}

func TestLifecycle_ConcurrentTransition_LoserGetsConflict(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideService := service.NewRideService(rideRepo, NewMockPickupIndex(), nil)

	ride := newPendingRide(t, rideService)

	// First enactor wins.
	if _, err := rideService.Transition(context.Background(), service.TransitionRequest{
		RideID: ride.ID,
		Target: domain.RideStatusCancelled,
	}); err != nil {
		t.Fatalf("first transition: %v", err)
	}

	// Second enactor raced on the same PENDING ride; the table already
	// rejects it because the stored status moved.
	_, err := rideService.Transition(context.Background(), service.TransitionRequest{
		RideID: ride.ID,
		Target: domain.RideStatusAccepted,
	})
	var transitionErr *service.InvalidTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected InvalidTransitionError, got: %v", err)
	}
}

func TestLifecycle_StaleRead_SurfacesStatusConflict(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideService := service.NewRideService(rideRepo, NewMockPickupIndex(), nil)

	ride := newPendingRide(t, rideService)

	// Flip the stored status after the service will have read PENDING by
	// injecting a conflict at the CAS.
	rideRepo.UpdateStatusError = repository.ErrStatusConflict

	_, err := rideService.Transition(context.Background(), service.TransitionRequest{
		RideID: ride.ID,
		Target: domain.RideStatusAccepted,
	})
	if !errors.Is(err, repository.ErrStatusConflict) {
		t.Errorf("expected ErrStatusConflict, got: %v", err)
	}
}

// ──────────────────────────────────────────────
// 4. RATINGS
// ──────────────────────────────────────────────

func TestRatings_RecordedWithoutCompletionGuard(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	rideService := service.NewRideService(rideRepo, NewMockPickupIndex(), nil)

	// Still PENDING; ratings are accepted regardless of status.
	ride := newPendingRide(t, rideService)

	if err := rideService.SetPassengerRating(context.Background(), ride.ID, 5); err != nil {
		t.Fatalf("passenger rating: %v", err)
	}
	if err := rideService.SetDriverRating(context.Background(), ride.ID, 3); err != nil {
		t.Fatalf("driver rating: %v", err)
	}

	stored := rideRepo.GetRide(ride.ID)
	if stored.PassengerRating != 5 || stored.DriverRating != 3 {
		t.Errorf("ratings not recorded: %+v", stored)
	}
}

func TestRatings_OutOfRange_Fails(t *testing.T) {
	t.Parallel()

	rideService := service.NewRideService(NewMockRideRepository(), NewMockPickupIndex(), nil)

	for _, rating := range []int{0, 6, -1} {
		if err := rideService.SetPassengerRating(context.Background(), "ride-1", rating); !errors.Is(err, service.ErrInvalidRating) {
			t.Errorf("rating %d: expected ErrInvalidRating, got: %v", rating, err)
		}
	}
}

// ──────────────────────────────────────────────
// 5. PROXIMITY QUERY
// ──────────────────────────────────────────────

func TestNearbyPendingRides_NearestFirstAndPendingOnly(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	pickupIndex := NewMockPickupIndex()
	rideService := service.NewRideService(rideRepo, pickupIndex, nil)

	// Three indexed pickups around Liberty Market, Lahore. The middle one
	// has already been accepted and must be filtered out.
	center := domain.Coordinate{Lat: 31.5102, Lon: 74.3441}
	rides := []struct {
		id     string
		coord  domain.Coordinate
		status domain.RideStatus
	}{
		{"ride-far", domain.Coordinate{Lat: 31.5300, Lon: 74.3441}, domain.RideStatusPending},
		{"ride-accepted", domain.Coordinate{Lat: 31.5110, Lon: 74.3441}, domain.RideStatusAccepted},
		{"ride-near", domain.Coordinate{Lat: 31.5120, Lon: 74.3441}, domain.RideStatusPending},
	}
	for _, r := range rides {
		rideRepo.AddRide(&domain.Ride{ID: r.id, PassengerID: "p", Status: r.status})
		if err := pickupIndex.Add(context.Background(), r.id, r.coord); err != nil {
			t.Fatalf("index: %v", err)
		}
	}

	result, err := rideService.NearbyPendingRides(context.Background(), center, 5000)
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("expected 2 pending rides, got %d", len(result))
	}
	if result[0].ID != "ride-near" || result[1].ID != "ride-far" {
		t.Errorf("expected nearest-first [ride-near ride-far], got [%s %s]", result[0].ID, result[1].ID)
	}
}

func TestNearbyPendingRides_InvalidCoordinate_Fails(t *testing.T) {
	t.Parallel()

	rideService := service.NewRideService(NewMockRideRepository(), NewMockPickupIndex(), nil)

	_, err := rideService.NearbyPendingRides(context.Background(), domain.Coordinate{Lat: 91, Lon: 0}, 1000)
	if err == nil {
		t.Error("expected error for out-of-range latitude")
	}
}
