package sessions

import "context"

// Keys the session persists its tokens under
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// Repo is the persistent key-value store tokens are written to.
// Get returns errors.ErrNotFound for a missing key; a missing key is a valid
// logged-out state, not a failure.
type Repo interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
