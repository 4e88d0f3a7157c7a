// Package platform picks the device capabilities the companion runs with.
// The choice is made once at startup; the rest of the program only sees the
// geolocation and notification interfaces.
package platform

import (
	"context"
	"time"

	"github.com/jrsteele09/go-festival-companion/browser"
	"github.com/jrsteele09/go-festival-companion/geolocation"
	"github.com/jrsteele09/go-festival-companion/internal/config"
	"github.com/jrsteele09/go-festival-companion/notify"
	"github.com/rs/zerolog/log"
)

const detectTimeout = time.Second

// Runtime is the selected capability pair
type Runtime struct {
	Name     string
	Locator  geolocation.Provider
	Notifier notify.Sink
}

type Config interface {
	config.EnvConfig
	config.DeviceConfig
}

// Detect honours an explicit RUNTIME setting; otherwise the native runtime is
// used when a gpsd daemon answers and the browser bridge when it does not.
func Detect(ctx context.Context, c Config, hub *browser.Hub) Runtime {
	name := c.GetRuntime()
	if name == config.RuntimeAuto {
		name = config.RuntimeBrowser
		if geolocation.Reachable(ctx, c.GetGPSDAddr(), detectTimeout) {
			name = config.RuntimeNative
		}
	}

	var rt Runtime
	switch name {
	case config.RuntimeNative:
		rt = Native(c)
	default:
		rt = Browser(hub)
	}
	log.Info().Str("runtime", rt.Name).Str("requested", c.GetRuntime()).Msg("runtime selected")
	return rt
}

// Native reads the position from gpsd and shows desktop notifications
func Native(c Config) Runtime {
	return Runtime{
		Name:     config.RuntimeNative,
		Locator:  geolocation.NewGPSD(c.GetGPSDAddr()),
		Notifier: notify.NewDesktop(c.GetNotifyCommand(), c.GetAppName()),
	}
}

// Browser delegates both capabilities to the pages connected to hub
func Browser(hub *browser.Hub) Runtime {
	return Runtime{
		Name:     config.RuntimeBrowser,
		Locator:  hub.Locator(),
		Notifier: hub.Notifier(),
	}
}
