package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"safar/internal/domain"
)

const pendingPickupKey = "rides:pending_pickups"

// PendingPickup is a pending ride's pickup position with its distance from
// the query point.
type PendingPickup struct {
	RideID         string
	Coordinates    domain.Coordinate
	DistanceMeters float64
}

// PickupIndex maintains a geo index of pending ride pickups for the
// nearest-first proximity query.
type PickupIndex struct {
	client *redis.Client
}

// NewPickupIndex creates a new PickupIndex.
func NewPickupIndex(client *redis.Client) *PickupIndex {
	return &PickupIndex{client: client}
}

// Add registers a pending ride's pickup using GEOADD.
func (s *PickupIndex) Add(ctx context.Context, rideID string, c domain.Coordinate) error {
	return s.client.GeoAdd(ctx, pendingPickupKey, &redis.GeoLocation{
		Name:      rideID,
		Longitude: c.Lon,
		Latitude:  c.Lat,
	}).Err()
}

// Remove deregisters a ride's pickup once it leaves PENDING.
func (s *PickupIndex) Remove(ctx context.Context, rideID string) error {
	return s.client.ZRem(ctx, pendingPickupKey, rideID).Err()
}

// Near returns pending pickups within radiusMeters of the point, ordered
// nearest-first.
func (s *PickupIndex) Near(ctx context.Context, c domain.Coordinate, radiusMeters float64) ([]PendingPickup, error) {
	results, err := s.client.GeoRadius(ctx, pendingPickupKey, c.Lon, c.Lat, &redis.GeoRadiusQuery{
		Radius:    radiusMeters,
		Unit:      "m",
		WithCoord: true,
		WithDist:  true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	pickups := make([]PendingPickup, 0, len(results))
	for _, r := range results {
		pickups = append(pickups, PendingPickup{
			RideID:         r.Name,
			Coordinates:    domain.Coordinate{Lat: r.Latitude, Lon: r.Longitude},
			DistanceMeters: r.Dist,
		})
	}

	return pickups, nil
}
