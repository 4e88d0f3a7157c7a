// Package geo holds the coordinate types shared by the location features and
// the great-circle distance calculation used for proximity alerts.
package geo

import (
	"fmt"

	cerrors "github.com/jrsteele09/go-festival-companion/internal/errors"
)

// Position is a sampled device location. It has no identity and is consumed immediately.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (p Position) Validate() error {
	if p.Latitude < -90 || p.Latitude > 90 {
		return cerrors.Wrapf(cerrors.ErrInvalidLatitude, "latitude must be between -90 and 90, got %v", p.Latitude)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return cerrors.Wrapf(cerrors.ErrInvalidLongitude, "longitude must be between -180 and 180, got %v", p.Longitude)
	}
	return nil
}

func (p Position) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Latitude, p.Longitude)
}

// Coordinates is a GeoJSON style (longitude, latitude) pair as returned by the backend.
type Coordinates struct {
	Longitude float64
	Latitude  float64
}

func (c Coordinates) Position() Position {
	return Position{Latitude: c.Latitude, Longitude: c.Longitude}
}

// Point is a GeoJSON Point: {"type": "Point", "coordinates": [lng, lat]}
type Point struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// ToCoordinates extracts the pair from a GeoJSON point. Returns nil unless the
// point is well formed and within range.
func (p *Point) ToCoordinates() *Coordinates {
	if p == nil || p.Type != "Point" || len(p.Coordinates) != 2 {
		return nil
	}
	c := Coordinates{Longitude: p.Coordinates[0], Latitude: p.Coordinates[1]}
	if c.Position().Validate() != nil {
		return nil
	}
	return &c
}

func NewPoint(c Coordinates) Point {
	return Point{Type: "Point", Coordinates: []float64{c.Longitude, c.Latitude}}
}
