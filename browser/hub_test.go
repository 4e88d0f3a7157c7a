package browser_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jrsteele09/go-festival-companion/browser"
	"github.com/jrsteele09/go-festival-companion/geo"
	cerrors "github.com/jrsteele09/go-festival-companion/internal/errors"
	"github.com/jrsteele09/go-festival-companion/notify"
	"github.com/stretchr/testify/require"
)

const pageOrigin = "http://localhost:5173"

// fakePage is a browser page connected to the bridge. reply decides the answer to each frame.
type fakePage struct {
	conn *websocket.Conn

	mu     sync.Mutex
	frames []browser.Frame
}

func connectPage(t *testing.T, f *testFixture, reply func(browser.Frame) *browser.Frame) *fakePage {
	t.Helper()
	before := f.hub.Connected()

	wsURL := "ws" + strings.TrimPrefix(f.srv.URL, "http") + browser.RouteWebSocket
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": []string{pageOrigin}})
	require.NoError(t, err)

	p := &fakePage{conn: conn}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var frame browser.Frame
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			p.mu.Lock()
			p.frames = append(p.frames, frame)
			p.mu.Unlock()
			if reply == nil {
				continue
			}
			if r := reply(frame); r != nil {
				if err := conn.WriteJSON(r); err != nil {
					return
				}
			}
		}
	}()
	t.Cleanup(func() {
		_ = conn.Close()
		<-done
	})

	require.Eventually(t, func() bool { return f.hub.Connected() == before+1 }, time.Second, time.Millisecond)
	return p
}

func (p *fakePage) received(frameType string) []browser.Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []browser.Frame
	for _, f := range p.frames {
		if f.Type == frameType {
			out = append(out, f)
		}
	}
	return out
}

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func positionReply(t *testing.T, lat, lng float64) func(browser.Frame) *browser.Frame {
	return func(f browser.Frame) *browser.Frame {
		if f.Type != browser.FramePositionRequest {
			return nil
		}
		return &browser.Frame{Type: browser.FramePosition, ID: f.ID, Data: raw(t, browser.PositionReply{Latitude: &lat, Longitude: &lng})}
	}
}

func permissionReply(t *testing.T, state string) func(browser.Frame) *browser.Frame {
	return func(f browser.Frame) *browser.Frame {
		if f.Type != browser.FramePermissionRequest {
			return nil
		}
		var req browser.PermissionRequest
		_ = json.Unmarshal(f.Data, &req)
		return &browser.Frame{Type: browser.FramePermission, ID: f.ID, Data: raw(t, browser.PermissionReply{Kind: req.Kind, State: state})}
	}
}

func TestLocator_CurrentPosition(t *testing.T) {
	ctx := context.Background()

	t.Run("no connected page is unavailable", func(t *testing.T) {
		f := setupTestFixture(t)
		_, ok := f.hub.Locator().CurrentPosition(ctx, time.Second)
		require.False(t, ok)
	})

	t.Run("page answers with a low accuracy fix", func(t *testing.T) {
		f := setupTestFixture(t)
		page := connectPage(t, f, positionReply(t, 43.6532, -79.3832))

		pos, ok := f.hub.Locator().CurrentPosition(ctx, 2*time.Second)
		require.True(t, ok)
		require.Equal(t, geo.Position{Latitude: 43.6532, Longitude: -79.3832}, pos)

		requests := page.received(browser.FramePositionRequest)
		require.Len(t, requests, 1)
		var req browser.PositionRequest
		require.NoError(t, json.Unmarshal(requests[0].Data, &req))
		require.False(t, req.EnableHighAccuracy)
		require.EqualValues(t, 2000, req.TimeoutMS)
	})

	t.Run("first valid reply wins", func(t *testing.T) {
		f := setupTestFixture(t)
		connectPage(t, f, func(fr browser.Frame) *browser.Frame {
			return &browser.Frame{Type: browser.FramePosition, ID: fr.ID, Data: raw(t, browser.PositionReply{Error: "User denied Geolocation"})}
		})
		connectPage(t, f, positionReply(t, 45.5, -73.6))

		pos, ok := f.hub.Locator().CurrentPosition(ctx, 2*time.Second)
		require.True(t, ok)
		require.Equal(t, 45.5, pos.Latitude)
	})

	t.Run("only failed replies is unavailable without waiting for the timeout", func(t *testing.T) {
		f := setupTestFixture(t)
		connectPage(t, f, func(fr browser.Frame) *browser.Frame {
			return &browser.Frame{Type: browser.FramePosition, ID: fr.ID, Data: raw(t, browser.PositionReply{Error: "Position unavailable"})}
		})

		start := time.Now()
		_, ok := f.hub.Locator().CurrentPosition(ctx, 5*time.Second)
		require.False(t, ok)
		require.Less(t, time.Since(start), 4*time.Second)
	})

	t.Run("silent page times out", func(t *testing.T) {
		f := setupTestFixture(t)
		connectPage(t, f, nil)

		_, ok := f.hub.Locator().CurrentPosition(ctx, 50*time.Millisecond)
		require.False(t, ok)
	})
}

func TestHub_RequestPermission(t *testing.T) {
	ctx := context.Background()

	t.Run("granted decision is cached", func(t *testing.T) {
		f := setupTestFixture(t)
		page := connectPage(t, f, permissionReply(t, browser.PermissionGranted))

		require.NoError(t, f.hub.Locator().RequestPermission(ctx))
		require.NoError(t, f.hub.Locator().RequestPermission(ctx))
		require.Len(t, page.received(browser.FramePermissionRequest), 1)

		// notifications are a separate permission
		require.NoError(t, f.hub.Notifier().RequestPermission(ctx))
		require.Len(t, page.received(browser.FramePermissionRequest), 2)
	})

	t.Run("denied decision is cached", func(t *testing.T) {
		f := setupTestFixture(t)
		page := connectPage(t, f, permissionReply(t, browser.PermissionDenied))

		require.ErrorIs(t, f.hub.Notifier().RequestPermission(ctx), cerrors.ErrPermissionDenied)
		require.ErrorIs(t, f.hub.Notifier().RequestPermission(ctx), cerrors.ErrPermissionDenied)
		require.Len(t, page.received(browser.FramePermissionRequest), 1)
	})

	t.Run("no page leaves the permission undecided", func(t *testing.T) {
		f := setupTestFixture(t)
		require.ErrorIs(t, f.hub.Locator().RequestPermission(ctx), cerrors.ErrNoBrowserClient)

		connectPage(t, f, permissionReply(t, browser.PermissionGranted))
		require.NoError(t, f.hub.Locator().RequestPermission(ctx))
	})
}

func TestNotifier_Notify(t *testing.T) {
	f := setupTestFixture(t)
	page := connectPage(t, f, nil)

	f.hub.Notifier().Notify(context.Background(), notify.Notification{Title: "Nearby event", Body: "Jazz Night is 250 m away", CorrelationID: "evt-1"})

	require.Eventually(t, func() bool { return len(page.received(browser.FrameNotification)) == 1 }, time.Second, time.Millisecond)
	var n browser.NotificationFrame
	require.NoError(t, json.Unmarshal(page.received(browser.FrameNotification)[0].Data, &n))
	require.Equal(t, browser.NotificationFrame{Title: "Nearby event", Body: "Jazz Night is 250 m away", Tag: "evt-1"}, n)
}

func TestNotifier_NoPage(t *testing.T) {
	f := setupTestFixture(t)
	require.NotPanics(t, func() {
		f.hub.Notifier().Notify(context.Background(), notify.Notification{Title: "x", Body: "y"})
	})
}

func TestHub_SessionEnded(t *testing.T) {
	f := setupTestFixture(t)
	page := connectPage(t, f, nil)

	f.hub.SessionEnded()
	require.Eventually(t, func() bool { return len(page.received(browser.FrameSessionEnded)) == 1 }, time.Second, time.Millisecond)
}

func TestHub_Disconnect(t *testing.T) {
	f := setupTestFixture(t)
	page := connectPage(t, f, nil)

	require.NoError(t, page.conn.Close())
	require.Eventually(t, func() bool { return f.hub.Connected() == 0 }, time.Second, time.Millisecond)

	_, ok := f.hub.Locator().CurrentPosition(context.Background(), time.Second)
	require.False(t, ok)
}

func TestHub_RejectsUnknownOrigin(t *testing.T) {
	f := setupTestFixture(t)
	wsURL := "ws" + strings.TrimPrefix(f.srv.URL, "http") + browser.RouteWebSocket
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": []string{"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}
