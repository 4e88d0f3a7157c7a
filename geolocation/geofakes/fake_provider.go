package geofakes

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/go-festival-companion/geo"
	"github.com/jrsteele09/go-festival-companion/geolocation"
)

// FakeProvider returns a settable position. A nil position means unavailable.
type FakeProvider struct {
	mu       sync.RWMutex
	position *geo.Position
	delay    time.Duration
	permErr  error

	Calls           atomic.Int32
	PermissionCalls atomic.Int32
}

var _ geolocation.Provider = (*FakeProvider)(nil)

func NewFakeProvider(pos *geo.Position) *FakeProvider {
	return &FakeProvider{position: pos}
}

func (p *FakeProvider) SetPosition(pos *geo.Position) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = pos
}

// SetDelay makes CurrentPosition block for d or until its context is done
func (p *FakeProvider) SetDelay(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delay = d
}

func (p *FakeProvider) SetPermissionError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.permErr = err
}

func (p *FakeProvider) CurrentPosition(ctx context.Context, timeout time.Duration) (geo.Position, bool) {
	p.Calls.Add(1)
	p.mu.RLock()
	delay := p.delay
	pos := p.position
	p.mu.RUnlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return geo.Position{}, false
		}
	}
	if pos == nil {
		return geo.Position{}, false
	}
	return *pos, true
}

func (p *FakeProvider) RequestPermission(ctx context.Context) error {
	p.PermissionCalls.Add(1)
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.permErr
}
