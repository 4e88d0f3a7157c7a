package notifyfakes

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/jrsteele09/go-festival-companion/notify"
)

// FakeSink records every notification it is asked to show
type FakeSink struct {
	mu      sync.RWMutex
	sent    []notify.Notification
	permErr error

	PermissionCalls atomic.Int32
}

var _ notify.Sink = (*FakeSink)(nil)

func NewFakeSink() *FakeSink {
	return &FakeSink{}
}

func (s *FakeSink) SetPermissionError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permErr = err
}

func (s *FakeSink) RequestPermission(ctx context.Context) error {
	s.PermissionCalls.Add(1)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permErr
}

func (s *FakeSink) Notify(ctx context.Context, n notify.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
}

// Sent returns a copy of the notifications shown so far
func (s *FakeSink) Sent() []notify.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]notify.Notification(nil), s.sent...)
}

// IDs returns the correlation ids of the notifications shown so far
func (s *FakeSink) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sent))
	for _, n := range s.sent {
		ids = append(ids, n.CorrelationID)
	}
	return ids
}
