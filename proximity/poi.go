package proximity

import (
	"context"

	"github.com/jrsteele09/go-festival-companion/geo"
)

// PointOfInterest is a candidate for a proximity alert. A nil Coordinates is
// never distance tested.
type PointOfInterest struct {
	ID          string
	DisplayName string
	Coordinates *geo.Coordinates
}

// CandidateSource lists the points of interest within radiusMeters of pos
type CandidateSource interface {
	Nearby(ctx context.Context, pos geo.Position, radiusMeters float64) ([]PointOfInterest, error)
}
