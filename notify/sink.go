package notify

import "context"

// Notification is a local user-facing alert. CorrelationID lets the platform
// replace or group alerts about the same subject.
type Notification struct {
	Title         string
	Body          string
	CorrelationID string
}

// Sink delivers local notifications. Notify never reports failure to the
// caller; implementations log delivery problems.
type Sink interface {
	// RequestPermission asks to show notifications. Once decided, further calls
	// return the same outcome without asking again.
	RequestPermission(ctx context.Context) error
	Notify(ctx context.Context, n Notification)
}
