package geolocation_test

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-festival-companion/geo"
	"github.com/jrsteele09/go-festival-companion/geolocation"
	cerrors "github.com/jrsteele09/go-festival-companion/internal/errors"
	"github.com/stretchr/testify/require"
)

// fakeGPSD answers a WATCH command with the given report lines
type fakeGPSD struct {
	listener net.Listener
	reports  []string
	hold     bool // keep the connection open after the reports

	mu       sync.Mutex
	commands []string
}

func startFakeGPSD(t *testing.T, hold bool, reports ...string) *fakeGPSD {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	f := &fakeGPSD{listener: l, reports: reports, hold: hold}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			go f.serve(conn)
		}
	}()
	t.Cleanup(func() {
		_ = l.Close()
		<-done
	})
	return f
}

func (f *fakeGPSD) serve(conn net.Conn) {
	defer conn.Close()
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return
	}
	f.mu.Lock()
	f.commands = append(f.commands, strings.TrimSpace(line))
	f.mu.Unlock()

	_, _ = conn.Write([]byte(`{"class":"VERSION","release":"3.25","proto_major":3,"proto_minor":15}` + "\n"))
	for _, r := range f.reports {
		_, _ = conn.Write([]byte(r + "\n"))
	}
	if f.hold {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, _ = conn.Read(make([]byte, 1))
	}
}

func (f *fakeGPSD) addr() string {
	return f.listener.Addr().String()
}

func (f *fakeGPSD) received() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands...)
}

func TestGPSD_CurrentPosition(t *testing.T) {
	ctx := context.Background()

	t.Run("first 2D fix wins", func(t *testing.T) {
		daemon := startFakeGPSD(t, false,
			`{"class":"DEVICES","devices":[]}`,
			`{"class":"TPV","mode":1}`,
			`not json`,
			`{"class":"TPV","mode":2,"lat":43.6532,"lon":-79.3832}`,
			`{"class":"TPV","mode":3,"lat":1,"lon":1}`,
		)

		pos, ok := geolocation.NewGPSD(daemon.addr()).CurrentPosition(ctx, time.Second)
		require.True(t, ok)
		require.Equal(t, geo.Position{Latitude: 43.6532, Longitude: -79.3832}, pos)
		require.Equal(t, []string{`?WATCH={"enable":true,"json":true};`}, daemon.received())
	})

	t.Run("out of range fix is ignored", func(t *testing.T) {
		daemon := startFakeGPSD(t, false,
			`{"class":"TPV","mode":3,"lat":123,"lon":0}`,
			`{"class":"TPV","mode":3,"lat":45.5,"lon":-73.6}`,
		)

		pos, ok := geolocation.NewGPSD(daemon.addr()).CurrentPosition(ctx, time.Second)
		require.True(t, ok)
		require.Equal(t, 45.5, pos.Latitude)
	})

	t.Run("no fix before the timeout", func(t *testing.T) {
		daemon := startFakeGPSD(t, true, `{"class":"TPV","mode":1}`)

		start := time.Now()
		_, ok := geolocation.NewGPSD(daemon.addr()).CurrentPosition(ctx, 100*time.Millisecond)
		require.False(t, ok)
		require.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("daemon closes without a fix", func(t *testing.T) {
		daemon := startFakeGPSD(t, false, `{"class":"TPV","mode":0}`)

		_, ok := geolocation.NewGPSD(daemon.addr()).CurrentPosition(ctx, time.Second)
		require.False(t, ok)
	})

	t.Run("daemon not running", func(t *testing.T) {
		_, ok := geolocation.NewGPSD(closedAddr(t)).CurrentPosition(ctx, time.Second)
		require.False(t, ok)
	})
}

func TestGPSD_RequestPermission(t *testing.T) {
	ctx := context.Background()

	t.Run("reachable daemon grants access", func(t *testing.T) {
		daemon := startFakeGPSD(t, false)
		g := geolocation.NewGPSD(daemon.addr())
		require.NoError(t, g.RequestPermission(ctx))
		require.NoError(t, g.RequestPermission(ctx))
	})

	t.Run("decision is cached", func(t *testing.T) {
		g := geolocation.NewGPSD(closedAddr(t))
		err := g.RequestPermission(ctx)
		require.ErrorIs(t, err, cerrors.ErrPermissionDenied)
		require.ErrorIs(t, g.RequestPermission(ctx), cerrors.ErrPermissionDenied)
	})
}

func TestReachable(t *testing.T) {
	daemon := startFakeGPSD(t, false)
	require.True(t, geolocation.Reachable(context.Background(), daemon.addr(), time.Second))
	require.False(t, geolocation.Reachable(context.Background(), closedAddr(t), time.Second))
}

// closedAddr returns an address nothing listens on
func closedAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}
