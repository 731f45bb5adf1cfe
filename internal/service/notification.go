package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"safar/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationRideCreated    NotificationType = "RIDE_CREATED"
	NotificationDriverAssigned NotificationType = "DRIVER_ASSIGNED"
	NotificationRideAccepted   NotificationType = "RIDE_ACCEPTED"
	NotificationRideStarted    NotificationType = "RIDE_STARTED"
	NotificationRideCompleted  NotificationType = "RIDE_COMPLETED"
	NotificationRideCancelled  NotificationType = "RIDE_CANCELLED"
)

// Notification represents a notification to be sent.
type Notification struct {
	ID          string
	Type        NotificationType
	RecipientID string // passenger or driver ID
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// NotificationService handles notification delivery.
type NotificationService struct {
	// In a real system, this would have:
	// - Push notification client (FCM, APNS)
	// - SMS client (Twilio)
	// - WebSocket connections for real-time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyRideCreated announces a newly booked ride.
func (s *NotificationService) NotifyRideCreated(ctx context.Context, ride *domain.Ride) error {
	notification := Notification{
		Type:        NotificationRideCreated,
		RecipientID: ride.PassengerID,
		Title:       "Ride Booked",
		Message:     fmt.Sprintf("Looking for a driver near %s", ride.Pickup.Address),
		Data: map[string]interface{}{
			"ride_id":    ride.ID,
			"pickup_lat": ride.Pickup.Coordinates.Lat,
			"pickup_lon": ride.Pickup.Coordinates.Lon,
			"fare":       ride.Fare,
		},
		CreatedAt: time.Now(),
	}
	return s.send(ctx, notification)
}

// NotifyDriverAssigned notifies the passenger that a driver has been assigned.
func (s *NotificationService) NotifyDriverAssigned(ctx context.Context, ride *domain.Ride) error {
	notification := Notification{
		Type:        NotificationDriverAssigned,
		RecipientID: ride.PassengerID,
		Title:       "Driver Assigned",
		Message:     "A driver has been assigned to your ride",
		Data: map[string]interface{}{
			"ride_id":   ride.ID,
			"driver_id": ride.DriverID,
		},
		CreatedAt: time.Now(),
	}
	if ride.Vehicle != nil {
		notification.Message = fmt.Sprintf("%s %s (%s) is on the way", ride.Vehicle.Make, ride.Vehicle.Model, ride.Vehicle.Plate)
		notification.Data["vehicle_type"] = ride.Vehicle.Type
		notification.Data["vehicle_plate"] = ride.Vehicle.Plate
	}
	return s.send(ctx, notification)
}

// NotifyStatusChanged notifies the parties about a lifecycle transition.
func (s *NotificationService) NotifyStatusChanged(ctx context.Context, ride *domain.Ride, from domain.RideStatus) error {
	var notification Notification

	switch ride.Status {
	case domain.RideStatusAccepted:
		notification = Notification{
			Type:        NotificationRideAccepted,
			RecipientID: ride.PassengerID,
			Title:       "Ride Accepted",
			Message:     "Your driver has accepted the ride",
		}
	case domain.RideStatusInProgress:
		notification = Notification{
			Type:        NotificationRideStarted,
			RecipientID: ride.PassengerID,
			Title:       "Ride Started",
			Message:     "Your ride has started. Enjoy!",
		}
	case domain.RideStatusCompleted:
		notification = Notification{
			Type:        NotificationRideCompleted,
			RecipientID: ride.PassengerID,
			Title:       "Ride Completed",
			Message:     fmt.Sprintf("Your ride has ended. Total fare: Rs %.0f", ride.Fare),
		}
	case domain.RideStatusCancelled:
		// Cancellation from PENDING has no driver to tell.
		recipientID := ride.DriverID
		if recipientID == "" {
			recipientID = ride.PassengerID
		}
		notification = Notification{
			Type:        NotificationRideCancelled,
			RecipientID: recipientID,
			Title:       "Ride Cancelled",
			Message:     ride.CancellationReason,
		}
	default:
		return nil
	}

	notification.Data = map[string]interface{}{
		"ride_id": ride.ID,
		"from":    string(from),
		"to":      string(ride.Status),
	}
	notification.CreatedAt = time.Now()
	return s.send(ctx, notification)
}

// send delivers a notification (mock implementation).
func (s *NotificationService) send(ctx context.Context, notification Notification) error {
	// In a real implementation, this would:
	// 1. Store notification in database
	// 2. Send push notification via FCM/APNS
	// 3. Send SMS if enabled
	// 4. Broadcast via WebSocket for real-time updates

	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Title=%s, Message=%s",
		notification.Type, notification.RecipientID, notification.Title, notification.Message)

	return nil
}
