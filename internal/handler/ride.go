package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"safar/internal/domain"
	"safar/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService *service.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

// LocationPayload is the HTTP representation of a location.
type LocationPayload struct {
	Address string  `json:"address"`
	City    string  `json:"city,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// AssignDriverRequest is the HTTP request body for assigning a driver.
type AssignDriverRequest struct {
	DriverID string `json:"driver_id"`
	Vehicle  struct {
		Type     string `json:"type"`
		Make     string `json:"make,omitempty"`
		Model    string `json:"model,omitempty"`
		Plate    string `json:"plate,omitempty"`
		Capacity int    `json:"capacity,omitempty"`
	} `json:"vehicle"`
}

// TransitionRequest is the HTTP request body for a status transition.
type TransitionRequest struct {
	Status string `json:"status"`
}

// CancelRideRequest is the HTTP request body for cancelling a ride.
type CancelRideRequest struct {
	Reason string `json:"reason,omitempty"`
}

// RatingRequest is the HTTP request body for rating a ride party.
type RatingRequest struct {
	Rating int `json:"rating"`
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID                 string           `json:"id"`
	PassengerID        string           `json:"passenger_id"`
	DriverID           string           `json:"driver_id,omitempty"`
	Vehicle            *VehiclePayload  `json:"vehicle,omitempty"`
	Pickup             LocationPayload  `json:"pickup"`
	Drop               LocationPayload  `json:"drop"`
	Fare               float64          `json:"fare"`
	DistanceKm         float64          `json:"distance_km"`
	DurationMin        int              `json:"duration_min"`
	PaymentMethod      string           `json:"payment_method"`
	Status             string           `json:"status"`
	StartedAt          string           `json:"started_at,omitempty"`
	CompletedAt        string           `json:"completed_at,omitempty"`
	CancellationReason string           `json:"cancellation_reason,omitempty"`
	PassengerRating    int              `json:"passenger_rating,omitempty"`
	DriverRating       int              `json:"driver_rating,omitempty"`
	CreatedAt          string           `json:"created_at"`
}

// VehiclePayload is the HTTP representation of a vehicle snapshot.
type VehiclePayload struct {
	Type     string `json:"type"`
	Make     string `json:"make,omitempty"`
	Model    string `json:"model,omitempty"`
	Plate    string `json:"plate,omitempty"`
	Capacity int    `json:"capacity,omitempty"`
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

func rideToResponse(r *domain.Ride) RideResponse {
	resp := RideResponse{
		ID:          r.ID,
		PassengerID: r.PassengerID,
		DriverID:    r.DriverID,
		Pickup: LocationPayload{
			Address: r.Pickup.Address,
			City:    r.Pickup.City,
			Lat:     r.Pickup.Coordinates.Lat,
			Lon:     r.Pickup.Coordinates.Lon,
		},
		Drop: LocationPayload{
			Address: r.Drop.Address,
			City:    r.Drop.City,
			Lat:     r.Drop.Coordinates.Lat,
			Lon:     r.Drop.Coordinates.Lon,
		},
		Fare:               r.Fare,
		DistanceKm:         r.DistanceKm,
		DurationMin:        r.DurationMin,
		PaymentMethod:      string(r.PaymentMethod),
		Status:             string(r.Status),
		CancellationReason: r.CancellationReason,
		PassengerRating:    r.PassengerRating,
		DriverRating:       r.DriverRating,
		CreatedAt:          r.CreatedAt.Format(timeFormat),
	}
	if r.Vehicle != nil {
		resp.Vehicle = &VehiclePayload{
			Type:     r.Vehicle.Type,
			Make:     r.Vehicle.Make,
			Model:    r.Vehicle.Model,
			Plate:    r.Vehicle.Plate,
			Capacity: r.Vehicle.Capacity,
		}
	}
	if !r.StartedAt.IsZero() {
		resp.StartedAt = r.StartedAt.Format(timeFormat)
	}
	if !r.CompletedAt.IsZero() {
		resp.CompletedAt = r.CompletedAt.Format(timeFormat)
	}
	return resp
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.rideService.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, rideToResponse(ride))
}

// AssignDriver handles POST /v1/rides/:id/assign
func (h *RideHandler) AssignDriver(c *gin.Context) {
	var req AssignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.AssignDriver(c.Request.Context(), service.AssignDriverRequest{
		RideID:   c.Param("id"),
		DriverID: req.DriverID,
		Vehicle: domain.VehicleSnapshot{
			Type:     req.Vehicle.Type,
			Make:     req.Vehicle.Make,
			Model:    req.Vehicle.Model,
			Plate:    req.Vehicle.Plate,
			Capacity: req.Vehicle.Capacity,
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, rideToResponse(ride))
}

// Transition handles POST /v1/rides/:id/transition
func (h *RideHandler) Transition(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	target, err := domain.ParseRideStatus(req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	ride, err := h.rideService.Transition(c.Request.Context(), service.TransitionRequest{
		RideID: c.Param("id"),
		Target: target,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, rideToResponse(ride))
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *RideHandler) CancelRide(c *gin.Context) {
	var req CancelRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.Transition(c.Request.Context(), service.TransitionRequest{
		RideID:             c.Param("id"),
		Target:             domain.RideStatusCancelled,
		CancellationReason: req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, rideToResponse(ride))
}

// RatePassenger handles POST /v1/rides/:id/rating/passenger
func (h *RideHandler) RatePassenger(c *gin.Context) {
	h.rate(c, h.rideService.SetPassengerRating)
}

// RateDriver handles POST /v1/rides/:id/rating/driver
func (h *RideHandler) RateDriver(c *gin.Context) {
	h.rate(c, h.rideService.SetDriverRating)
}

func (h *RideHandler) rate(c *gin.Context, set func(ctx context.Context, rideID string, rating int) error) {
	var req RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := set(c.Request.Context(), c.Param("id"), req.Rating); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"rating": req.Rating})
}

// ListPassengerRides handles GET /v1/passengers/:id/rides
func (h *RideHandler) ListPassengerRides(c *gin.Context) {
	status, err := statusFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	rides, err := h.rideService.ListPassengerRides(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, ridesToResponse(rides))
}

// ListDriverRides handles GET /v1/drivers/:id/rides
func (h *RideHandler) ListDriverRides(c *gin.Context) {
	status, err := statusFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	rides, err := h.rideService.ListDriverRides(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, ridesToResponse(rides))
}

// ActiveRide handles GET /v1/drivers/:id/active-ride
func (h *RideHandler) ActiveRide(c *gin.Context) {
	ride, err := h.rideService.ActiveRideForDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if ride == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no active ride"})
		return
	}
	respondJSON(c, http.StatusOK, rideToResponse(ride))
}

// NearbyRides handles GET /v1/rides/nearby
func (h *RideHandler) NearbyRides(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid lat"})
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid lon"})
		return
	}

	radius := 0.0
	if raw := c.Query("radius_m"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid radius_m"})
			return
		}
	}

	rides, err := h.rideService.NearbyPendingRides(c.Request.Context(), domain.Coordinate{Lat: lat, Lon: lon}, radius)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, ridesToResponse(rides))
}

func ridesToResponse(rides []*domain.Ride) []RideResponse {
	out := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		out = append(out, rideToResponse(r))
	}
	return out
}

func statusFilter(c *gin.Context) (*domain.RideStatus, error) {
	raw := c.Query("status")
	if raw == "" {
		return nil, nil
	}
	status, err := domain.ParseRideStatus(raw)
	if err != nil {
		return nil, err
	}
	return &status, nil
}
