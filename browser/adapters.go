package browser

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jrsteele09/go-festival-companion/geo"
	"github.com/jrsteele09/go-festival-companion/geolocation"
	"github.com/jrsteele09/go-festival-companion/notify"
	"github.com/rs/zerolog/log"
)

// Locator is the browser location provider: the position comes from the
// Geolocation API of a connected page.
type Locator struct {
	hub *Hub
}

var _ geolocation.Provider = (*Locator)(nil)

func (h *Hub) Locator() *Locator {
	return &Locator{hub: h}
}

func (l *Locator) RequestPermission(ctx context.Context) error {
	return l.hub.requestPermission(ctx, PermissionGeolocation)
}

// CurrentPosition asks the connected pages for a low accuracy fix. The first
// valid reply wins; no connected page means the position is unavailable.
func (l *Locator) CurrentPosition(ctx context.Context, timeout time.Duration) (geo.Position, bool) {
	if timeout <= 0 {
		timeout = geolocation.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var pos geo.Position
	req := PositionRequest{EnableHighAccuracy: false, TimeoutMS: timeout.Milliseconds()}
	_, err := l.hub.request(ctx, FramePositionRequest, req, func(f Frame) bool {
		if f.Type != FramePosition {
			return false
		}
		var reply PositionReply
		if err := json.Unmarshal(f.Data, &reply); err != nil || reply.Error != "" {
			return false
		}
		if reply.Latitude == nil || reply.Longitude == nil {
			return false
		}
		candidate := geo.Position{Latitude: *reply.Latitude, Longitude: *reply.Longitude}
		if candidate.Validate() != nil {
			return false
		}
		pos = candidate
		return true
	})
	if err != nil {
		log.Debug().Err(err).Msg("browser position unavailable")
		return geo.Position{}, false
	}
	return pos, true
}

// Notifier is the browser notification sink: connected pages show the
// notification through the Notifications API.
type Notifier struct {
	hub *Hub
}

var _ notify.Sink = (*Notifier)(nil)

func (h *Hub) Notifier() *Notifier {
	return &Notifier{hub: h}
}

func (n *Notifier) RequestPermission(ctx context.Context) error {
	return n.hub.requestPermission(ctx, PermissionNotifications)
}

func (n *Notifier) Notify(ctx context.Context, msg notify.Notification) {
	f, err := newFrame(FrameNotification, "", NotificationFrame{Title: msg.Title, Body: msg.Body, Tag: msg.CorrelationID})
	if err != nil {
		log.Err(err).Str("correlation_id", msg.CorrelationID).Msg("failed to encode notification")
		return
	}
	sent, err := n.hub.broadcast(f)
	if err != nil {
		log.Err(err).Str("correlation_id", msg.CorrelationID).Msg("failed to send notification")
		return
	}
	if sent == 0 {
		log.Warn().Str("correlation_id", msg.CorrelationID).Msg("no browser page connected, notification dropped")
	}
}
