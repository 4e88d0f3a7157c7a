package sessions_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-festival-companion/sessions"
	fakesessionrepo "github.com/jrsteele09/go-festival-companion/sessions/repofakes"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	repo    *fakesessionrepo.FakeTokenRepo
	session *sessions.Session
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	repo := fakesessionrepo.NewFakeTokenRepo()
	return &testFixture{repo: repo, session: sessions.New(repo)}
}

func TestSession_BeginAndAuthorize(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.Empty(t, f.session.Authorize(req))
	require.Empty(t, req.Header.Get("Authorization"))

	require.NoError(t, f.session.Begin(ctx, "access-1", "refresh-1"))
	require.True(t, f.session.Active())

	attached := f.session.Authorize(req)
	require.Equal(t, "access-1", attached)
	require.Equal(t, "Bearer access-1", req.Header.Get("Authorization"))

	stored, err := f.repo.Get(ctx, sessions.AccessTokenKey)
	require.NoError(t, err)
	require.Equal(t, "access-1", stored)
	stored, err = f.repo.Get(ctx, sessions.RefreshTokenKey)
	require.NoError(t, err)
	require.Equal(t, "refresh-1", stored)
}

func TestSession_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps refresh token when none is returned", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.session.Begin(ctx, "access-1", "refresh-1"))
		require.NoError(t, f.session.Update(ctx, "access-2", ""))
		require.Equal(t, "access-2", f.session.AccessToken())
		require.Equal(t, "refresh-1", f.session.RefreshToken())
	})

	t.Run("rotates refresh token", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.session.Begin(ctx, "access-1", "refresh-1"))
		require.NoError(t, f.session.Update(ctx, "access-2", "refresh-2"))
		require.Equal(t, "refresh-2", f.session.RefreshToken())

		stored, err := f.repo.Get(ctx, sessions.RefreshTokenKey)
		require.NoError(t, err)
		require.Equal(t, "refresh-2", stored)
	})

	t.Run("empty access token is rejected", func(t *testing.T) {
		f := setupTestFixture(t)
		require.Error(t, f.session.Update(ctx, "", "refresh-2"))
		require.Error(t, f.session.Begin(ctx, "", "refresh-2"))
	})
}

func TestSession_EndClearsAndSignals(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	require.NoError(t, f.session.Begin(ctx, "access-1", "refresh-1"))

	ended, unsubscribe := f.session.Subscribe()
	defer unsubscribe()
	other, unsubscribeOther := f.session.Subscribe()

	f.session.End(ctx)

	require.False(t, f.session.Active())
	require.Empty(t, f.session.RefreshToken())
	require.Nil(t, f.session.Token())
	require.Equal(t, 0, f.repo.Len())

	select {
	case <-ended:
	case <-time.After(time.Second):
		t.Fatal("logout signal not received")
	}
	select {
	case <-other:
	case <-time.After(time.Second):
		t.Fatal("logout signal not received by second subscriber")
	}

	unsubscribeOther()
	f.session.End(ctx) // already logged out, still signals
	select {
	case <-ended:
	case <-time.After(time.Second):
		t.Fatal("logout signal not received on second end")
	}
	select {
	case <-other:
		t.Fatal("unsubscribed channel signalled")
	default:
	}
}

func TestSession_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("empty repo is logged out", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.session.Load(ctx))
		require.False(t, f.session.Active())
		require.Nil(t, f.session.Token())
	})

	t.Run("restores stored tokens with expiry", func(t *testing.T) {
		f := setupTestFixture(t)
		exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
		access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1", "exp": exp.Unix()}).SignedString([]byte("secret"))
		require.NoError(t, err)
		require.NoError(t, f.repo.Set(ctx, sessions.AccessTokenKey, access))
		require.NoError(t, f.repo.Set(ctx, sessions.RefreshTokenKey, "refresh-1"))

		require.NoError(t, f.session.Load(ctx))
		require.Equal(t, access, f.session.AccessToken())
		require.Equal(t, "refresh-1", f.session.RefreshToken())
		require.True(t, exp.Equal(f.session.Expiry()))
	})

	t.Run("refresh token only is not attributed", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.repo.Set(ctx, sessions.RefreshTokenKey, "refresh-1"))
		require.NoError(t, f.session.Load(ctx))
		require.False(t, f.session.Active())
		require.Equal(t, "refresh-1", f.session.RefreshToken())

		req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
		require.Empty(t, f.session.Authorize(req))
		require.Empty(t, req.Header.Get("Authorization"))
	})
}
