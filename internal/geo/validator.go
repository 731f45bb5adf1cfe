package geo

import (
	"errors"

	"safar/internal/domain"
)

// ErrInvalidCoordinates is returned when a coordinate is malformed or
// outside world bounds.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// BoundingBox is a rectangular geo-fence.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Contains reports whether the coordinate lies inside the box.
func (b BoundingBox) Contains(c domain.Coordinate) bool {
	return c.Lat >= b.MinLat && c.Lat <= b.MaxLat &&
		c.Lon >= b.MinLon && c.Lon <= b.MaxLon
}

// Validator checks coordinate well-formedness and the country-level
// geo-fence. The boundary is configuration, not a literal constant, so the
// same engine serves other regions.
type Validator struct {
	serviceArea BoundingBox
}

// NewValidator creates a Validator with the given service area.
func NewValidator(serviceArea BoundingBox) *Validator {
	return &Validator{serviceArea: serviceArea}
}

// Validate checks that the coordinate is finite and within world bounds.
func (v *Validator) Validate(c domain.Coordinate) error {
	if !c.Valid() {
		return ErrInvalidCoordinates
	}
	return nil
}

// WithinServiceArea reports whether the coordinate falls inside the
// configured geo-fence.
func (v *Validator) WithinServiceArea(c domain.Coordinate) bool {
	return v.serviceArea.Contains(c)
}
