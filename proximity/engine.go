package proximity

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/go-festival-companion/geo"
	"github.com/jrsteele09/go-festival-companion/geolocation"
	"github.com/jrsteele09/go-festival-companion/internal/utils"
	"github.com/jrsteele09/go-festival-companion/notify"
	"github.com/rs/zerolog/log"
)

const NotificationTitle = "Nearby event"

type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	default:
		return "stopped"
	}
}

// Status is a snapshot of the engine for display
type Status struct {
	State        State         `json:"-"`
	Running      bool          `json:"running"`
	LastPosition *geo.Position `json:"last_position,omitempty"`
	LastCheck    *time.Time    `json:"last_check,omitempty"`
	Notified     []string      `json:"notified"`
}

// Engine periodically samples the device position and alerts once per point
// of interest that comes within the alert radius.
type Engine struct {
	locator  geolocation.Provider
	notifier notify.Sink
	source   CandidateSource
	notified *NotifiedSet
	now      func() time.Time

	interval        time.Duration
	alertRadius     float64
	searchRadius    float64
	positionTimeout time.Duration
	maxPerTick      int

	mu           sync.Mutex
	state        State
	cancel       context.CancelFunc
	done         chan struct{}
	lastPosition *geo.Position
	lastCheck    *time.Time

	inFlight atomic.Bool
}

func NewEngine(locator geolocation.Provider, notifier notify.Sink, source CandidateSource, options ...Option) *Engine {
	e := &Engine{
		locator:  locator,
		notifier: notifier,
		source:   source,
	}
	defaults(e)
	for _, opt := range options {
		opt(e)
	}
	if e.searchRadius == 0 {
		e.searchRadius = 2 * e.alertRadius
	}
	return e
}

// Start requests the location and notification permissions, runs a first check
// and schedules the rest. It returns once the first check has completed. Calling
// Start on an engine that is not stopped does nothing. The schedule runs until
// Stop; ctx only bounds how long Start waits.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.state != StateStopped {
		e.mu.Unlock()
		return
	}
	e.state = StateStarting
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	started := make(chan struct{})
	e.cancel = cancel
	e.done = done
	e.mu.Unlock()

	go e.run(runCtx, started, done)

	select {
	case <-started:
	case <-done:
	case <-ctx.Done():
	}
}

// Stop cancels the schedule and waits for the loop to exit. Safe to call repeatedly.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.state == StateStopped {
		e.mu.Unlock()
		return
	}
	e.state = StateStopped
	done := e.done
	e.cancel()
	e.cancel, e.done = nil, nil
	e.mu.Unlock()

	<-done
	log.Info().Msg("proximity engine stopped")
}

func (e *Engine) run(ctx context.Context, started, done chan struct{}) {
	defer close(done)

	e.requestPermissions(ctx)
	e.Check(ctx)

	e.mu.Lock()
	// a Stop followed by a new Start hands the engine to another loop
	if e.state != StateStarting || e.done != done || ctx.Err() != nil {
		e.mu.Unlock()
		return
	}
	e.state = StateRunning
	e.mu.Unlock()
	close(started)

	log.Info().Dur("interval", e.interval).Float64("alert_radius_m", e.alertRadius).Msg("proximity engine running")

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Check(ctx)
		}
	}
}

func (e *Engine) requestPermissions(ctx context.Context) {
	if err := e.locator.RequestPermission(ctx); err != nil {
		log.Warn().Err(err).Msg("location permission not granted")
	}
	if err := e.notifier.RequestPermission(ctx); err != nil {
		log.Warn().Err(err).Msg("notification permission not granted")
	}
}

type match struct {
	poi      PointOfInterest
	distance float64
}

// Check runs one proximity check. It returns false without doing anything when
// the engine is stopped or another check is still in flight.
func (e *Engine) Check(ctx context.Context) bool {
	if e.stopped() {
		return false
	}
	if !e.inFlight.CompareAndSwap(false, true) {
		log.Debug().Msg("proximity check skipped, previous check still running")
		return false
	}
	defer e.inFlight.Store(false)
	defer e.markChecked()

	pos, ok := e.locator.CurrentPosition(ctx, e.positionTimeout)
	if !ok {
		log.Debug().Msg("position unavailable, skipping proximity check")
		return true
	}
	e.mu.Lock()
	e.lastPosition = utils.Ptr(pos)
	e.mu.Unlock()

	candidates, err := e.source.Nearby(ctx, pos, e.searchRadius)
	if err != nil {
		log.Err(err).Str("position", pos.String()).Msg("failed to fetch nearby points of interest")
		return true
	}

	matches := e.matches(pos, candidates)
	for _, m := range matches {
		// late results after Stop are discarded
		if ctx.Err() != nil || e.stopped() {
			return true
		}
		e.notifier.Notify(ctx, notify.Notification{
			Title:         NotificationTitle,
			Body:          fmt.Sprintf("%s is %d m away", m.poi.DisplayName, int(math.Round(m.distance))),
			CorrelationID: m.poi.ID,
		})
		e.notified.Add(m.poi.ID)
		log.Info().Str("poi_id", m.poi.ID).Float64("distance_m", m.distance).Msg("proximity alert")
	}
	return true
}

func (e *Engine) matches(pos geo.Position, candidates []PointOfInterest) []match {
	var matches []match
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if c.ID == "" || c.Coordinates == nil {
			continue
		}
		if _, dup := seen[c.ID]; dup || e.notified.Contains(c.ID) {
			continue
		}
		d := geo.DistanceMeters(pos, c.Coordinates.Position())
		if d <= e.alertRadius {
			seen[c.ID] = struct{}{}
			matches = append(matches, match{poi: c, distance: d})
		}
	}

	if e.maxPerTick > 0 {
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].distance < matches[j].distance
		})
		if len(matches) > e.maxPerTick {
			matches = matches[:e.maxPerTick]
		}
	}
	return matches
}

// StopWhenEnded stops the engine and forgets what was alerted each time ended
// fires, then calls onEnd if set. It returns when ctx is done.
func (e *Engine) StopWhenEnded(ctx context.Context, ended <-chan struct{}, onEnd func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-ended:
			e.Stop()
			e.ClearAll()
			if onEnd != nil {
				onEnd()
			}
			log.Info().Msg("session ended, proximity alerts stopped")
		}
	}
}

// ClearNotification allows id to be alerted on again
func (e *Engine) ClearNotification(id string) {
	e.notified.Remove(id)
}

// ClearAll allows every point of interest to be alerted on again
func (e *Engine) ClearAll() {
	e.notified.Clear()
}

func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Status{
		State:    e.state,
		Running:  e.state == StateRunning,
		Notified: e.notified.IDs(),
	}
	if e.lastPosition != nil {
		s.LastPosition = utils.Ptr(*e.lastPosition)
	}
	if e.lastCheck != nil {
		s.LastCheck = utils.Ptr(*e.lastCheck)
	}
	return s
}

func (e *Engine) stopped() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == StateStopped
}

func (e *Engine) markChecked() {
	now := e.now()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastCheck = &now
}
