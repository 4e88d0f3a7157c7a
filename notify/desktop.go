package notify

import (
	"context"
	"os/exec"
	"sync"
	"time"

	cerrors "github.com/jrsteele09/go-festival-companion/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const commandTimeout = 5 * time.Second

// Desktop shows freedesktop notifications through a notify-send compatible command
type Desktop struct {
	command string
	appName string

	mu          sync.Mutex
	permDecided bool
	permErr     error
}

var _ Sink = (*Desktop)(nil)

func NewDesktop(command, appName string) *Desktop {
	return &Desktop{command: command, appName: appName}
}

// RequestPermission grants access when the notification command is installed
func (d *Desktop) RequestPermission(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.permDecided {
		return d.permErr
	}

	if _, err := exec.LookPath(d.command); err != nil {
		d.permErr = errors.Wrapf(cerrors.ErrPermissionDenied, "notification command %q: %v", d.command, err)
	}
	d.permDecided = true
	return d.permErr
}

func (d *Desktop) Notify(ctx context.Context, n Notification) {
	if err := d.RequestPermission(ctx); err != nil {
		log.Warn().Err(err).Str("correlation_id", n.CorrelationID).Msg("notification dropped")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	args := []string{"--app-name", d.appName}
	if n.CorrelationID != "" {
		// notification daemons replace a previous alert carrying the same stack tag
		args = append(args, "--hint", "string:x-dunst-stack-tag:"+n.CorrelationID)
	}
	// display names may start with a dash
	args = append(args, "--", n.Title, n.Body)

	if out, err := exec.CommandContext(ctx, d.command, args...).CombinedOutput(); err != nil {
		log.Err(err).Str("command", d.command).Str("output", string(out)).Str("correlation_id", n.CorrelationID).Msg("failed to show notification")
	}
}
