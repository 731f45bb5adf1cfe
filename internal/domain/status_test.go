package domain

import "testing"

func TestRideStatus_TransitionTable(t *testing.T) {
	t.Parallel()

	allowed := []struct{ from, to RideStatus }{
		{RideStatusPending, RideStatusAccepted},
		{RideStatusPending, RideStatusCancelled},
		{RideStatusAccepted, RideStatusInProgress},
		{RideStatusAccepted, RideStatusCancelled},
		{RideStatusInProgress, RideStatusCompleted},
		{RideStatusInProgress, RideStatusCancelled},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	forbidden := []struct{ from, to RideStatus }{
		{RideStatusPending, RideStatusCompleted},
		{RideStatusPending, RideStatusInProgress},
		{RideStatusAccepted, RideStatusCompleted},
		{RideStatusAccepted, RideStatusPending},
		{RideStatusInProgress, RideStatusAccepted},
		{RideStatusCompleted, RideStatusCancelled},
		{RideStatusCompleted, RideStatusPending},
		{RideStatusCancelled, RideStatusAccepted},
		{RideStatusCancelled, RideStatusCompleted},
	}
	for _, tc := range forbidden {
		if tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s should be forbidden", tc.from, tc.to)
		}
	}
}

func TestRideStatus_Terminal(t *testing.T) {
	t.Parallel()

	for _, s := range []RideStatus{RideStatusCompleted, RideStatusCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []RideStatus{RideStatusPending, RideStatusAccepted, RideStatusInProgress} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestParseRideStatus(t *testing.T) {
	t.Parallel()

	if s, err := ParseRideStatus(" in_progress "); err != nil || s != RideStatusInProgress {
		t.Errorf("ParseRideStatus(in_progress) = %v, %v", s, err)
	}
	if _, err := ParseRideStatus("TELEPORTING"); err != ErrInvalidStatus {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestRouteQuery_CacheKeyQuantization(t *testing.T) {
	t.Parallel()

	q1 := RouteQuery{
		Origin:      Coordinate{Lat: 24.86071, Lon: 67.00112},
		Destination: Coordinate{Lat: 24.94003, Lon: 67.12001},
		Profile:     ProfileDriving,
	}
	q2 := q1
	q2.Origin.Lat += 0.00002 // under ~11m precision

	if q1.CacheKey() != q2.CacheKey() {
		t.Error("near-duplicate queries should share a cache key")
	}

	q3 := q1
	q3.Origin.Lat += 0.001
	if q1.CacheKey() == q3.CacheKey() {
		t.Error("distinct coordinates should produce distinct cache keys")
	}

	q4 := q1
	q4.Profile = ProfileWalking
	if q1.CacheKey() == q4.CacheKey() {
		t.Error("profile must be part of the cache key")
	}
}
