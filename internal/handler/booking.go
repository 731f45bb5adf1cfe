package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"safar/internal/domain"
	"safar/internal/service"
)

// BookingHandler handles HTTP requests for quotes and bookings.
type BookingHandler struct {
	bookingService *service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// QuoteRequest is the HTTP request body for a fare quote.
type QuoteRequest struct {
	PickupLat float64 `json:"pickup_lat"`
	PickupLon float64 `json:"pickup_lon"`
	DropLat   float64 `json:"drop_lat"`
	DropLon   float64 `json:"drop_lon"`
	Profile   string  `json:"profile,omitempty"` // driving, cycling, walking
}

// RoutePayload is the HTTP representation of a resolved route.
type RoutePayload struct {
	DistanceKm  float64 `json:"distance_km"`
	DurationMin int     `json:"duration_min"`
	Geometry    string  `json:"geometry,omitempty"`
	IsEstimate  bool    `json:"is_estimate"`
	Cached      bool    `json:"cached"`
}

// FarePayload is the HTTP representation of a fare breakdown.
type FarePayload struct {
	VehicleID      string  `json:"vehicle_id"`
	Base           float64 `json:"base"`
	DistanceCharge float64 `json:"distance_charge"`
	TimeCharge     float64 `json:"time_charge"`
	Total          float64 `json:"total"`
	IsEstimate     bool    `json:"is_estimate"`
}

// QuoteResponse is the HTTP response for a fare quote.
type QuoteResponse struct {
	Route RoutePayload           `json:"route"`
	Fares map[string]FarePayload `json:"fares"`
}

// BookRequest is the HTTP request body for booking a ride.
type BookRequest struct {
	PassengerID   string          `json:"passenger_id"`
	Pickup        LocationPayload `json:"pickup"`
	Drop          LocationPayload `json:"drop"`
	VehicleID     string          `json:"vehicle_id"`
	PaymentMethod string          `json:"payment_method"` // CASH, WALLET, CARD
}

// BookResponse is the HTTP response for booking a ride.
type BookResponse struct {
	Ride  RideResponse `json:"ride"`
	Route RoutePayload `json:"route"`
	Fare  FarePayload  `json:"fare"`
}

// Quote handles POST /v1/quotes
func (h *BookingHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	profile := domain.TravelProfile(req.Profile)
	if req.Profile == "" {
		profile = domain.ProfileDriving
	}

	result, err := h.bookingService.Quote(c.Request.Context(), service.QuoteRequest{
		Pickup:  domain.Coordinate{Lat: req.PickupLat, Lon: req.PickupLon},
		Drop:    domain.Coordinate{Lat: req.DropLat, Lon: req.DropLon},
		Profile: profile,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	fares := make(map[string]FarePayload, len(result.Fares))
	for id, b := range result.Fares {
		fares[id] = fareToPayload(b)
	}

	respondJSON(c, http.StatusOK, QuoteResponse{
		Route: routeToPayload(result.Route),
		Fares: fares,
	})
}

// Book handles POST /v1/rides
func (h *BookingHandler) Book(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.bookingService.Book(c.Request.Context(), service.BookRequest{
		PassengerID: req.PassengerID,
		Pickup: domain.Location{
			Address:     req.Pickup.Address,
			City:        req.Pickup.City,
			Coordinates: domain.Coordinate{Lat: req.Pickup.Lat, Lon: req.Pickup.Lon},
		},
		Drop: domain.Location{
			Address:     req.Drop.Address,
			City:        req.Drop.City,
			Coordinates: domain.Coordinate{Lat: req.Drop.Lat, Lon: req.Drop.Lon},
		},
		VehicleID:     req.VehicleID,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, BookResponse{
		Ride:  rideToResponse(result.Ride),
		Route: routeToPayload(result.Route),
		Fare:  fareToPayload(result.Fare),
	})
}

func routeToPayload(r domain.RouteResult) RoutePayload {
	return RoutePayload{
		DistanceKm:  r.DistanceKm,
		DurationMin: r.DurationMin,
		Geometry:    r.Geometry,
		IsEstimate:  r.IsEstimate,
		Cached:      r.Cached,
	}
}

func fareToPayload(b domain.FareBreakdown) FarePayload {
	return FarePayload{
		VehicleID:      b.VehicleID,
		Base:           b.Base,
		DistanceCharge: b.DistanceCharge,
		TimeCharge:     b.TimeCharge,
		Total:          b.Total,
		IsEstimate:     b.IsEstimate,
	}
}
