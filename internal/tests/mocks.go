package tests

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"safar/internal/domain"
	"safar/internal/geo"
	"safar/internal/redis"
	"safar/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository. Its
// UpdateStatus and AssignDriver honor the same compare-and-set semantics as
// the Postgres implementation.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount       int32
	UpdateStatusCallCount int32
	AssignDriverCallCount int32

	// Error injection
	CreateError       error
	UpdateStatusError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *ride
	m.rides[ride.ID] = &copy
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *ride
	m.rides[ride.ID] = &copy
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Ride, 0, len(ids))
	for _, id := range ids {
		if ride, ok := m.rides[id]; ok {
			copy := *ride
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockRideRepository) UpdateStatus(ctx context.Context, ride *domain.Ride, expected domain.RideStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.rides[ride.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != expected {
		return repository.ErrStatusConflict
	}
	copy := *ride
	m.rides[ride.ID] = &copy
	return nil
}

func (m *MockRideRepository) AssignDriver(ctx context.Context, rideID, driverID string, vehicle domain.VehicleSnapshot) error {
	atomic.AddInt32(&m.AssignDriverCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != domain.RideStatusPending {
		return repository.ErrStatusConflict
	}
	stored.DriverID = driverID
	v := vehicle
	stored.Vehicle = &v
	return nil
}

func (m *MockRideRepository) UpdatePassengerRating(ctx context.Context, rideID string, rating int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.PassengerRating = rating
	return nil
}

func (m *MockRideRepository) UpdateDriverRating(ctx context.Context, rideID string, rating int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.DriverRating = rating
	return nil
}

func (m *MockRideRepository) ListByPassenger(ctx context.Context, passengerID string, status *domain.RideStatus) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Ride
	for _, r := range m.rides {
		if r.PassengerID != passengerID {
			continue
		}
		if status != nil && r.Status != *status {
			continue
		}
		copy := *r
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockRideRepository) ListByDriver(ctx context.Context, driverID string, status *domain.RideStatus) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Ride
	for _, r := range m.rides {
		if r.DriverID != driverID {
			continue
		}
		if status != nil && r.Status != *status {
			continue
		}
		copy := *r
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockRideRepository) GetActiveByDriverID(ctx context.Context, driverID string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rides {
		if r.DriverID != driverID {
			continue
		}
		if r.Status == domain.RideStatusAccepted || r.Status == domain.RideStatusInProgress {
			copy := *r
			return &copy, nil
		}
	}
	return nil, nil
}

// GetRide returns the stored ride for test assertions.
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

// ──────────────────────────────────────────────
// MOCK PICKUP INDEX
// ──────────────────────────────────────────────

// MockPickupIndex is an in-memory implementation of the pending-pickup geo
// index. Near computes real haversine distances so nearest-first ordering
// is exercised.
type MockPickupIndex struct {
	mu      sync.RWMutex
	pickups map[string]domain.Coordinate

	AddCallCount    int32
	RemoveCallCount int32

	AddError error
}

// NewMockPickupIndex creates a new mock pickup index.
func NewMockPickupIndex() *MockPickupIndex {
	return &MockPickupIndex{
		pickups: make(map[string]domain.Coordinate),
	}
}

func (m *MockPickupIndex) Add(ctx context.Context, rideID string, c domain.Coordinate) error {
	atomic.AddInt32(&m.AddCallCount, 1)
	if m.AddError != nil {
		return m.AddError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pickups[rideID] = c
	return nil
}

func (m *MockPickupIndex) Remove(ctx context.Context, rideID string) error {
	atomic.AddInt32(&m.RemoveCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pickups, rideID)
	return nil
}

func (m *MockPickupIndex) Near(ctx context.Context, c domain.Coordinate, radiusMeters float64) ([]redis.PendingPickup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []redis.PendingPickup
	for id, pos := range m.pickups {
		distMeters := geo.HaversineKm(c, pos) * 1000
		if distMeters <= radiusMeters {
			result = append(result, redis.PendingPickup{
				RideID:         id,
				Coordinates:    pos,
				DistanceMeters: distMeters,
			})
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DistanceMeters < result[j].DistanceMeters
	})
	return result, nil
}

// Has reports whether a ride is currently indexed.
func (m *MockPickupIndex) Has(rideID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.pickups[rideID]
	return ok
}

// ──────────────────────────────────────────────
// STUB ROUTE RESOLVER
// ──────────────────────────────────────────────

// StubResolver returns a fixed route result or error.
type StubResolver struct {
	Result domain.RouteResult
	Err    error

	ResolveCallCount int32
}

func (s *StubResolver) Resolve(ctx context.Context, q domain.RouteQuery) (domain.RouteResult, error) {
	atomic.AddInt32(&s.ResolveCallCount, 1)
	if s.Err != nil {
		return domain.RouteResult{}, s.Err
	}
	return s.Result, nil
}
