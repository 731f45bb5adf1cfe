package domain

import "math"

// Coordinate is a WGS84 latitude/longitude pair. Immutable once constructed.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Valid reports whether the coordinate is finite and within world bounds.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Location is an addressed point embedded in a ride. Immutable after ride creation.
type Location struct {
	Address     string
	City        string
	Coordinates Coordinate
}
