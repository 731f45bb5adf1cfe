package domain

import "time"

// PaymentMethod represents the payment method for a ride.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodWallet PaymentMethod = "WALLET"
	PaymentMethodCard   PaymentMethod = "CARD"
)

// Valid reports whether the payment method is supported.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodWallet, PaymentMethodCard:
		return true
	default:
		return false
	}
}

// MaxCancellationReasonLen bounds the free-text cancellation reason.
const MaxCancellationReasonLen = 500

// Ride represents a booked ride. Fare, distance, and duration are frozen at
// creation time from the route resolution and fare quote; the record is
// never deleted, only transitioned to a terminal status.
type Ride struct {
	ID                 string
	PassengerID        string
	DriverID           string // empty until a driver is assigned
	Vehicle            *VehicleSnapshot
	Pickup             Location
	Drop               Location
	Fare               float64
	DistanceKm         float64
	DurationMin        int
	PaymentMethod      PaymentMethod
	Status             RideStatus
	StartedAt          time.Time // zero until the ride enters IN_PROGRESS
	CompletedAt        time.Time // zero until the ride completes
	CancellationReason string
	PassengerRating    int // 0 = unrated, otherwise 1..5
	DriverRating       int // 0 = unrated, otherwise 1..5
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
