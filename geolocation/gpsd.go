package geolocation

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/jrsteele09/go-festival-companion/geo"
	cerrors "github.com/jrsteele09/go-festival-companion/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	watchCommand = `?WATCH={"enable":true,"json":true};` + "\n"
	probeTimeout = 2 * time.Second

	// gpsd fix modes: 0 unknown, 1 no fix, 2 2D, 3 3D
	minFixMode = 2
)

// report is the subset of a gpsd JSON report the provider reads
type report struct {
	Class string   `json:"class"`
	Mode  int      `json:"mode"`
	Lat   *float64 `json:"lat"`
	Lon   *float64 `json:"lon"`
}

// GPSD reads the device position from a gpsd daemon over its JSON protocol
type GPSD struct {
	addr string

	mu          sync.Mutex
	permDecided bool
	permErr     error
}

var _ Provider = (*GPSD)(nil)

func NewGPSD(addr string) *GPSD {
	return &GPSD{addr: addr}
}

// RequestPermission treats a reachable daemon as granted access. The outcome is cached.
func (g *GPSD) RequestPermission(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.permDecided {
		return g.permErr
	}

	if !Reachable(ctx, g.addr, probeTimeout) {
		g.permErr = errors.Wrapf(cerrors.ErrPermissionDenied, "gpsd not reachable at %s", g.addr)
	}
	g.permDecided = true
	return g.permErr
}

// CurrentPosition opens a watch on the daemon and returns the first fix of at least 2D quality
func (g *GPSD) CurrentPosition(ctx context.Context, timeout time.Duration) (geo.Position, bool) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pos, err := g.watch(ctx)
	if err != nil {
		log.Debug().Err(err).Str("addr", g.addr).Msg("gpsd position unavailable")
		return geo.Position{}, false
	}
	return pos, true
}

func (g *GPSD) watch(ctx context.Context) (geo.Position, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", g.addr)
	if err != nil {
		return geo.Position{}, errors.Wrap(err, "GPSD.watch Dial")
	}
	defer conn.Close()

	// unblock the scanner when the deadline passes or the caller cancels
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if _, err := conn.Write([]byte(watchCommand)); err != nil {
		return geo.Position{}, errors.Wrap(err, "GPSD.watch Write")
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var r report
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			continue
		}
		if r.Class != "TPV" || r.Mode < minFixMode || r.Lat == nil || r.Lon == nil {
			continue
		}
		pos := geo.Position{Latitude: *r.Lat, Longitude: *r.Lon}
		if err := pos.Validate(); err != nil {
			continue
		}
		return pos, nil
	}

	if ctx.Err() != nil {
		return geo.Position{}, errors.Wrap(cerrors.ErrPositionUnavailable, ctx.Err().Error())
	}
	if err := scanner.Err(); err != nil {
		return geo.Position{}, errors.Wrap(err, "GPSD.watch Scan")
	}
	return geo.Position{}, errors.Wrap(cerrors.ErrPositionUnavailable, "gpsd closed the connection")
}

// Reachable reports whether a gpsd daemon accepts connections at addr
func Reachable(ctx context.Context, addr string, timeout time.Duration) bool {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
