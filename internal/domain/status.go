package domain

import (
	"errors"
	"strings"
)

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusPending    RideStatus = "PENDING"
	RideStatusAccepted   RideStatus = "ACCEPTED"
	RideStatusInProgress RideStatus = "IN_PROGRESS"
	RideStatusCompleted  RideStatus = "COMPLETED"
	RideStatusCancelled  RideStatus = "CANCELLED"
)

// ErrInvalidStatus is returned when a status string is not recognised.
var ErrInvalidStatus = errors.New("invalid ride status")

// ParseRideStatus normalizes (uppercases+trims) and validates a status string.
func ParseRideStatus(in string) (RideStatus, error) {
	status := RideStatus(strings.ToUpper(strings.TrimSpace(in)))
	if status.Valid() {
		return status, nil
	}
	return "", ErrInvalidStatus
}

// Valid reports whether the status is one of the allowed ride status constants.
func (s RideStatus) Valid() bool {
	switch s {
	case RideStatusPending, RideStatusAccepted, RideStatusInProgress, RideStatusCompleted, RideStatusCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s RideStatus) String() string {
	return string(s)
}

// rideTransitions is the single source of truth for the ride state machine.
// There are no implicit lifecycle hooks; every status change goes through
// this table.
var rideTransitions = map[RideStatus][]RideStatus{
	RideStatusPending:    {RideStatusAccepted, RideStatusCancelled},
	RideStatusAccepted:   {RideStatusInProgress, RideStatusCancelled},
	RideStatusInProgress: {RideStatusCompleted, RideStatusCancelled},
	RideStatusCompleted:  {},
	RideStatusCancelled:  {},
}

// CanTransitionTo reports whether the status may transition to next.
func (s RideStatus) CanTransitionTo(next RideStatus) bool {
	for _, allowed := range rideTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status has no outgoing transitions.
func (s RideStatus) Terminal() bool {
	return len(rideTransitions[s]) == 0
}
