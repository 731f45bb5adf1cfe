package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"safar/internal/domain"
	"safar/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

const rideColumns = `
	id, passenger_id, driver_id,
	vehicle_type, vehicle_make, vehicle_model, vehicle_plate, vehicle_capacity,
	pickup_address, pickup_city, pickup_lat, pickup_lng,
	drop_address, drop_city, drop_lat, drop_lng,
	fare, distance_km, duration_min, payment_method, status,
	started_at, completed_at, cancellation_reason,
	passenger_rating, driver_rating, created_at, updated_at
`

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
	`

	var driverID sql.NullString
	if ride.DriverID != "" {
		driverID = sql.NullString{String: ride.DriverID, Valid: true}
	}

	var vType, vMake, vModel, vPlate sql.NullString
	var vCapacity sql.NullInt64
	if ride.Vehicle != nil {
		vType = sql.NullString{String: ride.Vehicle.Type, Valid: true}
		vMake = sql.NullString{String: ride.Vehicle.Make, Valid: true}
		vModel = sql.NullString{String: ride.Vehicle.Model, Valid: true}
		vPlate = sql.NullString{String: ride.Vehicle.Plate, Valid: true}
		vCapacity = sql.NullInt64{Int64: int64(ride.Vehicle.Capacity), Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.PassengerID,
		driverID,
		vType, vMake, vModel, vPlate, vCapacity,
		ride.Pickup.Address,
		ride.Pickup.City,
		ride.Pickup.Coordinates.Lat,
		ride.Pickup.Coordinates.Lon,
		ride.Drop.Address,
		ride.Drop.City,
		ride.Drop.Coordinates.Lat,
		ride.Drop.Coordinates.Lon,
		ride.Fare,
		ride.DistanceKm,
		ride.DurationMin,
		ride.PaymentMethod,
		ride.Status,
		nullTime(ride.StartedAt),
		nullTime(ride.CompletedAt),
		nullString(ride.CancellationReason),
		nullInt(ride.PassengerRating),
		nullInt(ride.DriverRating),
		ride.CreatedAt,
		ride.UpdatedAt,
	)

	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return ride, nil
}

// GetByIDs retrieves rides for the given IDs, preserving input order.
func (r *RideRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Ride, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = ANY($1)`

	rows, err := r.q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*domain.Ride, len(ids))
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		byID[ride.ID] = ride
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rides := make([]*domain.Ride, 0, len(byID))
	for _, id := range ids {
		if ride, ok := byID[id]; ok {
			rides = append(rides, ride)
		}
	}
	return rides, nil
}

// UpdateStatus applies the ride's state with an optimistic guard on the
// previously read status.
func (r *RideRepository) UpdateStatus(ctx context.Context, ride *domain.Ride, expected domain.RideStatus) error {
	query := `
		UPDATE rides
		SET status = $1, started_at = $2, completed_at = $3, cancellation_reason = $4, updated_at = $5
		WHERE id = $6 AND status = $7
	`

	result, err := r.q.ExecContext(ctx, query,
		ride.Status,
		nullTime(ride.StartedAt),
		nullTime(ride.CompletedAt),
		nullString(ride.CancellationReason),
		ride.UpdatedAt,
		ride.ID,
		expected,
	)
	if err != nil {
		return err
	}

	return requireRow(ctx, r.q, result, ride.ID, repository.ErrStatusConflict)
}

// AssignDriver sets the driver and vehicle snapshot on a pending ride.
func (r *RideRepository) AssignDriver(ctx context.Context, rideID, driverID string, vehicle domain.VehicleSnapshot) error {
	query := `
		UPDATE rides
		SET driver_id = $1, vehicle_type = $2, vehicle_make = $3, vehicle_model = $4, vehicle_plate = $5, vehicle_capacity = $6, updated_at = now()
		WHERE id = $7 AND status = $8
	`

	result, err := r.q.ExecContext(ctx, query,
		driverID,
		vehicle.Type,
		vehicle.Make,
		vehicle.Model,
		vehicle.Plate,
		vehicle.Capacity,
		rideID,
		domain.RideStatusPending,
	)
	if err != nil {
		return err
	}

	return requireRow(ctx, r.q, result, rideID, repository.ErrStatusConflict)
}

// UpdatePassengerRating records the passenger's rating for the ride.
func (r *RideRepository) UpdatePassengerRating(ctx context.Context, rideID string, rating int) error {
	return r.updateRating(ctx, "passenger_rating", rideID, rating)
}

// UpdateDriverRating records the driver's rating for the ride.
func (r *RideRepository) UpdateDriverRating(ctx context.Context, rideID string, rating int) error {
	return r.updateRating(ctx, "driver_rating", rideID, rating)
}

func (r *RideRepository) updateRating(ctx context.Context, column, rideID string, rating int) error {
	// column is one of two literals above, never caller input.
	query := `UPDATE rides SET ` + column + ` = $1, updated_at = now() WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, rating, rideID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByPassenger retrieves a passenger's rides, optionally filtered by status.
func (r *RideRepository) ListByPassenger(ctx context.Context, passengerID string, status *domain.RideStatus) ([]*domain.Ride, error) {
	return r.list(ctx, "passenger_id", passengerID, status)
}

// ListByDriver retrieves a driver's rides, optionally filtered by status.
func (r *RideRepository) ListByDriver(ctx context.Context, driverID string, status *domain.RideStatus) ([]*domain.Ride, error) {
	return r.list(ctx, "driver_id", driverID, status)
}

func (r *RideRepository) list(ctx context.Context, column, id string, status *domain.RideStatus) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE ` + column + ` = $1`
	args := []any{id}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// GetActiveByDriverID returns the driver's ride in ACCEPTED or IN_PROGRESS.
func (r *RideRepository) GetActiveByDriverID(ctx context.Context, driverID string) (*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + `
		FROM rides
		WHERE driver_id = $1 AND status IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1
	`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, driverID, domain.RideStatusAccepted, domain.RideStatusInProgress))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No active ride is not an error.
		}
		return nil, err
	}

	return ride, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRide(s scanner) (*domain.Ride, error) {
	var ride domain.Ride
	var driverID, vType, vMake, vModel, vPlate, cancellationReason sql.NullString
	var vCapacity sql.NullInt64
	var startedAt, completedAt sql.NullTime
	var passengerRating, driverRating sql.NullInt64

	err := s.Scan(
		&ride.ID,
		&ride.PassengerID,
		&driverID,
		&vType, &vMake, &vModel, &vPlate, &vCapacity,
		&ride.Pickup.Address,
		&ride.Pickup.City,
		&ride.Pickup.Coordinates.Lat,
		&ride.Pickup.Coordinates.Lon,
		&ride.Drop.Address,
		&ride.Drop.City,
		&ride.Drop.Coordinates.Lat,
		&ride.Drop.Coordinates.Lon,
		&ride.Fare,
		&ride.DistanceKm,
		&ride.DurationMin,
		&ride.PaymentMethod,
		&ride.Status,
		&startedAt,
		&completedAt,
		&cancellationReason,
		&passengerRating,
		&driverRating,
		&ride.CreatedAt,
		&ride.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if driverID.Valid {
		ride.DriverID = driverID.String
	}
	if vType.Valid {
		ride.Vehicle = &domain.VehicleSnapshot{
			Type:     vType.String,
			Make:     vMake.String,
			Model:    vModel.String,
			Plate:    vPlate.String,
			Capacity: int(vCapacity.Int64),
		}
	}
	if startedAt.Valid {
		ride.StartedAt = startedAt.Time
	}
	if completedAt.Valid {
		ride.CompletedAt = completedAt.Time
	}
	if cancellationReason.Valid {
		ride.CancellationReason = cancellationReason.String
	}
	ride.PassengerRating = int(passengerRating.Int64)
	ride.DriverRating = int(driverRating.Int64)

	return &ride, nil
}

// requireRow distinguishes "ride missing" from "status guard failed" when
// an update matched no rows.
func requireRow(ctx context.Context, q Querier, result sql.Result, rideID string, conflictErr error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	var exists bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM rides WHERE id = $1)`, rideID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return repository.ErrNotFound
	}
	return conflictErr
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(n int) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}
