package filerepo_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	cerrors "github.com/jrsteele09/go-festival-companion/internal/errors"
	"github.com/jrsteele09/go-festival-companion/sessions"
	"github.com/jrsteele09/go-festival-companion/sessions/filerepo"
	"github.com/stretchr/testify/require"
)

func TestRepo_PlainFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")
	r := filerepo.New(path, "")

	_, err := r.Get(ctx, sessions.AccessTokenKey)
	require.ErrorIs(t, err, cerrors.ErrNotFound)

	require.NoError(t, r.Set(ctx, sessions.AccessTokenKey, "access-1"))
	require.NoError(t, r.Set(ctx, sessions.RefreshTokenKey, "refresh-1"))

	// a second repo on the same path sees the persisted values
	v, err := filerepo.New(path, "").Get(ctx, sessions.AccessTokenKey)
	require.NoError(t, err)
	require.Equal(t, "access-1", v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, r.Delete(ctx, sessions.AccessTokenKey))
	require.ErrorIs(t, r.Delete(ctx, sessions.AccessTokenKey), cerrors.ErrNotFound)
	_, err = r.Get(ctx, sessions.AccessTokenKey)
	require.ErrorIs(t, err, cerrors.ErrNotFound)
}

func TestRepo_SealedFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tokens.json")
	r := filerepo.New(path, "correct horse")

	require.NoError(t, r.Set(ctx, sessions.RefreshTokenKey, "refresh-secret"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "refresh-secret")

	v, err := filerepo.New(path, "correct horse").Get(ctx, sessions.RefreshTokenKey)
	require.NoError(t, err)
	require.Equal(t, "refresh-secret", v)

	_, err = filerepo.New(path, "wrong").Get(ctx, sessions.RefreshTokenKey)
	require.ErrorIs(t, err, filerepo.ErrSealedFile)
}
