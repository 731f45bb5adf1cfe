package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"safar/internal/domain"
	"safar/internal/geo"
	"safar/internal/repository"
	"safar/internal/routing"
	"safar/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	var transitionErr *service.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		return http.StatusConflict
	}

	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, routing.ErrRouteNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidPassengerID),
		errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidRideData),
		errors.Is(err, service.ErrMissingVehicleInfo),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrUnknownVehicle),
		errors.Is(err, geo.ErrInvalidCoordinates),
		errors.Is(err, routing.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest

	// Outside the service area
	case errors.Is(err, routing.ErrServiceAreaRestricted):
		return http.StatusUnprocessableEntity

	// Conflict errors
	case errors.Is(err, repository.ErrStatusConflict),
		errors.Is(err, service.ErrDriverHasActiveRide):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
