package sessions

import (
	"context"
	"net/http"
	"sync"
	"time"

	cerrors "github.com/jrsteele09/go-festival-companion/internal/errors"
	"github.com/jrsteele09/go-festival-companion/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Session owns the tokens of the signed in user for the lifetime of the process.
// All token reads and writes go through the mutex so a refresh replaces the
// tokens atomically relative to subsequent calls.
type Session struct {
	mu    sync.RWMutex
	repo  Repo
	token *oauth2.Token // nil when logged out

	subMu       sync.Mutex
	subscribers map[int]chan struct{}
	nextSubID   int
}

// New creates a logged-out session backed by repo
func New(repo Repo) *Session {
	return &Session{
		repo:        repo,
		subscribers: make(map[int]chan struct{}),
	}
}

// Load restores tokens from the repo. Missing keys leave the session logged out.
func (s *Session) Load(ctx context.Context) error {
	access, err := s.repo.Get(ctx, AccessTokenKey)
	if err != nil && !cerrors.Is(err, cerrors.ErrNotFound) {
		return errors.Wrap(err, "Session.Load access token")
	}
	refreshToken, err := s.repo.Get(ctx, RefreshTokenKey)
	if err != nil && !cerrors.Is(err, cerrors.ErrNotFound) {
		return errors.Wrap(err, "Session.Load refresh token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = newToken(access, refreshToken)
	return nil
}

// Begin starts a session after login, replacing any existing tokens
func (s *Session) Begin(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" {
		return cerrors.ErrNoAccessToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = newToken(accessToken, refreshToken)
	return s.persist(ctx)
}

// Update installs a refreshed access token. An empty refreshToken keeps the current one.
func (s *Session) Update(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" {
		return cerrors.ErrNoAccessToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if refreshToken == "" && s.token != nil {
		refreshToken = s.token.RefreshToken
	}
	s.token = newToken(accessToken, refreshToken)
	return s.persist(ctx)
}

// End clears both tokens and notifies subscribers that the session ended.
// Safe to call when already logged out; subscribers are notified every time.
func (s *Session) End(ctx context.Context) {
	s.mu.Lock()
	s.token = nil
	for _, key := range []string{AccessTokenKey, RefreshTokenKey} {
		if err := s.repo.Delete(ctx, key); err != nil && !cerrors.Is(err, cerrors.ErrNotFound) {
			log.Err(err).Str("key", key).Msg("Session.End: failed to delete token")
		}
	}
	s.mu.Unlock()

	s.broadcastEnded()
}

// AccessToken returns the current access token or "" when absent
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return ""
	}
	return s.token.AccessToken
}

// RefreshToken returns the current refresh token or "" when absent
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return ""
	}
	return s.token.RefreshToken
}

// Token returns a copy of the current token, nil when logged out
func (s *Session) Token() *oauth2.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return nil
	}
	t := *s.token
	return &t
}

// Active reports whether an access token is present
func (s *Session) Active() bool {
	return s.AccessToken() != ""
}

// Authorize attaches the bearer credential to req. Without an access token the
// request is left unattributed. Returns the access token that was attached.
func (s *Session) Authorize(req *http.Request) string {
	t := s.Token()
	if t == nil || t.AccessToken == "" {
		return ""
	}
	t.SetAuthHeader(req)
	return t.AccessToken
}

// Subscribe registers for the logout signal. The channel receives a value each
// time the session ends; the returned func unsubscribes.
func (s *Session) Subscribe() (<-chan struct{}, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan struct{}, 1)
	s.subscribers[id] = ch

	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Session) broadcastEnded() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default: // a pending signal is already queued
		}
	}
}

func (s *Session) persist(ctx context.Context) error {
	if err := s.repo.Set(ctx, AccessTokenKey, s.token.AccessToken); err != nil {
		return errors.Wrap(err, "Session.persist access token")
	}
	if s.token.RefreshToken == "" {
		if err := s.repo.Delete(ctx, RefreshTokenKey); err != nil && !cerrors.Is(err, cerrors.ErrNotFound) {
			return errors.Wrap(err, "Session.persist delete refresh token")
		}
		return nil
	}
	if err := s.repo.Set(ctx, RefreshTokenKey, s.token.RefreshToken); err != nil {
		return errors.Wrap(err, "Session.persist refresh token")
	}
	return nil
}

func newToken(accessToken, refreshToken string) *oauth2.Token {
	if accessToken == "" && refreshToken == "" {
		return nil
	}
	t := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}
	if claims, err := token.ParseClaims(accessToken); err == nil {
		t.Expiry = claims.Expiry
	}
	return t
}

// Expiry returns the access token expiry hint, zero when unknown
func (s *Session) Expiry() time.Time {
	t := s.Token()
	if t == nil {
		return time.Time{}
	}
	return t.Expiry
}
