package events

import (
	"context"
	"math"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-festival-companion/geo"
	"github.com/jrsteele09/go-festival-companion/oauthmodel"
	"github.com/jrsteele09/go-festival-companion/proximity"
	"github.com/pkg/errors"
)

// NearbyPath lists events around a point, sorted by distance
const NearbyPath = "events/nearby"

// limits the backend accepts for the nearby query
const (
	minRadiusKM = 0.1
	maxRadiusKM = 500.0
	maxLimit    = 100
)

// Location is where an event takes place
type Location struct {
	Address     string     `json:"address,omitempty"`
	City        string     `json:"city,omitempty"`
	Province    string     `json:"province,omitempty"`
	Coordinates *geo.Point `json:"coordinates,omitempty"`
}

// Event is the part of the platform's event record the companion reads
type Event struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  *Location `json:"location,omitempty"`
	IsVisible *bool     `json:"is_visible,omitempty"`
}

// Visible reports whether the event is published. Records without the flag predate it and are visible.
func (e Event) Visible() bool {
	return e.IsVisible == nil || *e.IsVisible
}

// PointOfInterest maps the event to a proximity candidate. Missing or malformed
// coordinates leave Coordinates nil.
func (e Event) PointOfInterest() proximity.PointOfInterest {
	poi := proximity.PointOfInterest{ID: e.ID, DisplayName: e.Name}
	if e.Location != nil && e.Location.Coordinates != nil {
		poi.Coordinates = e.Location.Coordinates.ToCoordinates()
	}
	return poi
}

// JSONGetter performs an authenticated GET and decodes the response data
type JSONGetter interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
}

// Source fetches proximity candidates from the events API
type Source struct {
	client JSONGetter
	limit  int
}

var _ proximity.CandidateSource = (*Source)(nil)

func NewSource(client JSONGetter, limit int) *Source {
	return &Source{client: client, limit: limit}
}

// Fetch returns the events within radiusMeters of pos
func (s *Source) Fetch(ctx context.Context, pos geo.Position, radiusMeters float64) ([]Event, error) {
	if err := pos.Validate(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(pos.Latitude, 'f', -1, 64))
	query.Set("lng", strconv.FormatFloat(pos.Longitude, 'f', -1, 64))
	query.Set("radius_km", strconv.FormatFloat(radiusKM(radiusMeters), 'f', -1, 64))
	if s.limit > 0 {
		query.Set("limit", strconv.Itoa(min(s.limit, maxLimit)))
	}

	var events []Event
	err := s.client.GetJSON(ctx, NearbyPath, query, &events)
	if errors.Is(err, oauthmodel.ErrEmptyEnvelope) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "Source.Fetch")
	}
	return events, nil
}

func (s *Source) Nearby(ctx context.Context, pos geo.Position, radiusMeters float64) ([]proximity.PointOfInterest, error) {
	events, err := s.Fetch(ctx, pos, radiusMeters)
	if err != nil {
		return nil, err
	}
	pois := make([]proximity.PointOfInterest, 0, len(events))
	for _, e := range events {
		if !e.Visible() {
			continue
		}
		pois = append(pois, e.PointOfInterest())
	}
	return pois, nil
}

func radiusKM(meters float64) float64 {
	return math.Min(math.Max(meters/1000, minRadiusKM), maxRadiusKM)
}
