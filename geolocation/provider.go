package geolocation

import (
	"context"
	"time"

	"github.com/jrsteele09/go-festival-companion/geo"
)

// DefaultTimeout bounds a single position fetch
const DefaultTimeout = 10 * time.Second

// Provider is the device location capability. Implementations never request
// high accuracy and never surface errors from CurrentPosition: false means the
// position is unavailable for any reason (denied, timed out, no fix).
type Provider interface {
	CurrentPosition(ctx context.Context, timeout time.Duration) (geo.Position, bool)
	// RequestPermission asks for location access. Calling it again after it
	// has been decided has no further effect.
	RequestPermission(ctx context.Context) error
}
