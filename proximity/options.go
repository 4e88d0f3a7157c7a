package proximity

import (
	"time"

	"github.com/jrsteele09/go-festival-companion/geolocation"
)

const (
	DefaultInterval          = 5 * time.Minute
	DefaultAlertRadiusMeters = 1000.0
)

type Option func(*Engine)

// WithInterval sets the time between scheduled checks
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithAlertRadius sets the distance at or below which a point of interest is alerted on.
// The candidate search radius follows at twice the alert radius unless set explicitly.
func WithAlertRadius(meters float64) Option {
	return func(e *Engine) {
		if meters > 0 {
			e.alertRadius = meters
		}
	}
}

func WithSearchRadius(meters float64) Option {
	return func(e *Engine) {
		if meters > 0 {
			e.searchRadius = meters
		}
	}
}

func WithPositionTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.positionTimeout = d
		}
	}
}

// WithMaxPerTick caps the alerts emitted by one check to the n nearest
// matches. Without it every match is alerted in candidate order.
func WithMaxPerTick(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxPerTick = n
		}
	}
}

func WithNotifiedSet(s *NotifiedSet) Option {
	return func(e *Engine) {
		if s != nil {
			e.notified = s
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func defaults(e *Engine) {
	e.interval = DefaultInterval
	e.alertRadius = DefaultAlertRadiusMeters
	e.positionTimeout = geolocation.DefaultTimeout
	e.notified = NewNotifiedSet()
	e.now = time.Now
}
