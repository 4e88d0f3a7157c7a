package browser

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	cerrors "github.com/jrsteele09/go-festival-companion/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const permissionTimeout = 30 * time.Second

// OriginChecker decides whether a page from origin may connect
type OriginChecker func(origin string) bool

// pending collects replies for one outstanding request
type pending struct {
	replies chan Frame
}

// Hub bridges the companion to the browser pages connected over websocket. It
// backs both the browser location provider and the browser notification sink.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	pending map[string]*pending

	permMu      sync.Mutex
	permissions map[string]string // kind -> decided state
}

func NewHub(allowOrigin OriginChecker) *Hub {
	h := &Hub{
		clients:     make(map[*client]struct{}),
		pending:     make(map[string]*pending),
		permissions: make(map[string]string),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowOrigin == nil || allowOrigin(origin)
		},
	}
	return h
}

// HandleConnection upgrades the request and serves the page until it disconnects
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Err(err).Str("origin", r.Header.Get("Origin")).Msg("websocket upgrade failed")
		return
	}

	c := &client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	h.register(c)

	go c.writePump()
	c.readPump()
}

// Connected returns the number of connected pages
func (h *Hub) Connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every page
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	log.Info().Str("client_id", c.id).Int("connected", len(h.clients)).Msg("browser page connected")
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.close()
	log.Info().Str("client_id", c.id).Int("connected", len(h.clients)).Msg("browser page disconnected")
}

// broadcast sends f to every page and returns how many pages it reached
func (h *Hub) broadcast(f Frame) (int, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return 0, errors.Wrap(err, "Hub.broadcast Marshal")
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sendAllLocked(data), nil
}

func (h *Hub) sendAllLocked(data []byte) int {
	sent := 0
	for c := range h.clients {
		if c.enqueue(data) {
			sent++
		}
	}
	return sent
}

// request broadcasts a request frame and yields replies until accept returns
// true, every reached page has answered or ctx is done
func (h *Hub) request(ctx context.Context, frameType string, payload any, accept func(Frame) bool) (Frame, error) {
	id := uuid.NewString()
	f, err := newFrame(frameType, id, payload)
	if err != nil {
		return Frame{}, errors.Wrap(err, "Hub.request newFrame")
	}
	data, err := json.Marshal(f)
	if err != nil {
		return Frame{}, errors.Wrap(err, "Hub.request Marshal")
	}

	h.mu.Lock()
	p := &pending{replies: make(chan Frame, len(h.clients))}
	h.pending[id] = p
	sent := h.sendAllLocked(data)
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.pending, id)
		h.mu.Unlock()
	}()

	if sent == 0 {
		return Frame{}, cerrors.ErrNoBrowserClient
	}

	for answered := 0; answered < sent; answered++ {
		select {
		case reply := <-p.replies:
			if accept(reply) {
				return reply, nil
			}
		case <-ctx.Done():
			return Frame{}, ctx.Err()
		}
	}
	return Frame{}, errors.Errorf("no acceptable %s reply from %d page(s)", frameType, sent)
}

// deliver routes a reply frame to the request waiting for it
func (h *Hub) deliver(f Frame) {
	if f.ID == "" {
		log.Debug().Str("type", f.Type).Msg("unsolicited frame from browser page")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	p, ok := h.pending[f.ID]
	if !ok {
		return // late reply
	}
	select {
	case p.replies <- f:
	default:
	}
}

// SessionEnded tells connected pages that the user was logged out
func (h *Hub) SessionEnded() {
	sent, err := h.broadcast(Frame{Type: FrameSessionEnded})
	if err != nil {
		log.Err(err).Msg("failed to broadcast session end")
		return
	}
	log.Debug().Int("pages", sent).Msg("session end broadcast")
}

// requestPermission asks the pages for a permission once a decision has not
// been cached yet. Granted and denied are final; prompt is asked again next time.
func (h *Hub) requestPermission(ctx context.Context, kind string) error {
	h.permMu.Lock()
	defer h.permMu.Unlock()

	state, decided := h.permissions[kind]
	if !decided {
		ctx, cancel := context.WithTimeout(ctx, permissionTimeout)
		defer cancel()
		reply, err := h.request(ctx, FramePermissionRequest, PermissionRequest{Kind: kind}, func(f Frame) bool {
			return f.Type == FramePermission
		})
		if err != nil {
			return errors.Wrapf(err, "Hub.requestPermission %s", kind)
		}
		var pr PermissionReply
		if err := json.Unmarshal(reply.Data, &pr); err != nil {
			return errors.Wrapf(err, "Hub.requestPermission %s Unmarshal", kind)
		}
		state = pr.State
		if state == PermissionGranted || state == PermissionDenied {
			h.permissions[kind] = state
		}
	}

	if state != PermissionGranted {
		return errors.Wrapf(cerrors.ErrPermissionDenied, "%s permission is %s", kind, state)
	}
	return nil
}
