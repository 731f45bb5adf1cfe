package redis

import (
	"context"

	"safar/internal/domain"
)

// PickupIndexInterface defines the interface for the pending-pickup geo
// index. It allows testing the ride service with a mock implementation.
type PickupIndexInterface interface {
	Add(ctx context.Context, rideID string, c domain.Coordinate) error
	Remove(ctx context.Context, rideID string) error
	Near(ctx context.Context, c domain.Coordinate, radiusMeters float64) ([]PendingPickup, error)
}

// Ensure concrete types implement interfaces.
var _ PickupIndexInterface = (*PickupIndex)(nil)
