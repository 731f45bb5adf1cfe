package repository

import (
	"context"

	"safar/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetByIDs retrieves rides for the given IDs, preserving input order.
	// Unknown IDs are skipped.
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Ride, error)

	// UpdateStatus applies the ride's current in-memory state as a
	// compare-and-set against expected: it fails with ErrStatusConflict if
	// the stored status no longer equals expected.
	UpdateStatus(ctx context.Context, ride *domain.Ride, expected domain.RideStatus) error

	// AssignDriver sets the driver and vehicle snapshot on a pending ride.
	// Fails with ErrStatusConflict if the ride is no longer pending.
	AssignDriver(ctx context.Context, rideID, driverID string, vehicle domain.VehicleSnapshot) error

	// UpdatePassengerRating records the passenger's rating for the ride.
	UpdatePassengerRating(ctx context.Context, rideID string, rating int) error

	// UpdateDriverRating records the driver's rating for the ride.
	UpdateDriverRating(ctx context.Context, rideID string, rating int) error

	// ListByPassenger retrieves a passenger's rides, optionally filtered by
	// status, most recent first.
	ListByPassenger(ctx context.Context, passengerID string, status *domain.RideStatus) ([]*domain.Ride, error)

	// ListByDriver retrieves a driver's rides, optionally filtered by
	// status, most recent first.
	ListByDriver(ctx context.Context, driverID string, status *domain.RideStatus) ([]*domain.Ride, error)

	// GetActiveByDriverID returns the driver's ride in ACCEPTED or
	// IN_PROGRESS, or nil if the driver has none.
	GetActiveByDriverID(ctx context.Context, driverID string) (*domain.Ride, error)
}
