package service

import (
	"errors"
	"fmt"

	"safar/internal/domain"
)

var (
	// ErrInvalidPassengerID is returned when the passenger ID is empty.
	ErrInvalidPassengerID = errors.New("invalid passenger id")

	// ErrInvalidRideID is returned when the ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidDriverID is returned when the driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidRideData is returned when ride creation input fails
	// validation (fare, distance, duration, payment method).
	ErrInvalidRideData = errors.New("invalid ride data")

	// ErrMissingVehicleInfo is returned when a driver assignment carries no
	// vehicle type.
	ErrMissingVehicleInfo = errors.New("missing vehicle info")

	// ErrInvalidRating is returned when a rating is outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrUnknownVehicle is returned when a booking names a vehicle profile
	// that is not configured.
	ErrUnknownVehicle = errors.New("unknown vehicle profile")

	// ErrDriverHasActiveRide is returned when a driver with an ACCEPTED or
	// IN_PROGRESS ride is assigned another one.
	ErrDriverHasActiveRide = errors.New("driver already has an active ride")
)

// InvalidTransitionError reports a status change that the transition table
// forbids.
type InvalidTransitionError struct {
	From domain.RideStatus
	To   domain.RideStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}
