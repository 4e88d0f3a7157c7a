package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	cerrors "github.com/jrsteele09/go-festival-companion/internal/errors"
	"github.com/jrsteele09/go-festival-companion/token"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("platform-secret"))
	require.NoError(t, err)
	return raw
}

func TestParseClaims(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	t.Run("reads platform claims", func(t *testing.T) {
		raw := signedToken(t, jwt.MapClaims{
			"sub":       "user-1",
			"email":     "lan@example.com",
			"typ":       "Bearer",
			"auth_time": float64(now.Unix()),
			"exp":       float64(now.Add(15 * time.Minute).Unix()),
		})

		c, err := token.ParseClaims(raw)
		require.NoError(t, err)
		require.Equal(t, "user-1", c.Subject)
		require.Equal(t, "lan@example.com", c.Email)
		require.Equal(t, "Bearer", c.Type)
		require.Equal(t, now.Unix(), c.AuthTime.Unix())
		require.Equal(t, now.Add(15*time.Minute).Unix(), c.Expiry.Unix())
		require.False(t, c.Expired(now))
		require.True(t, c.Expired(now.Add(16*time.Minute)))
	})

	t.Run("expired tokens still parse", func(t *testing.T) {
		raw := signedToken(t, jwt.MapClaims{"sub": "user-1", "exp": float64(now.Add(-time.Hour).Unix())})
		c, err := token.ParseClaims(raw)
		require.NoError(t, err)
		require.True(t, c.Expired(now))
	})

	t.Run("no exp never expires", func(t *testing.T) {
		c, err := token.ParseClaims(signedToken(t, jwt.MapClaims{"sub": "user-1"}))
		require.NoError(t, err)
		require.True(t, c.Expiry.IsZero())
		require.False(t, c.Expired(now))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := token.ParseClaims("not-a-jwt")
		require.ErrorIs(t, err, cerrors.ErrInvalidToken)

		_, err = token.ParseClaims("  ")
		require.ErrorIs(t, err, cerrors.ErrInvalidToken)
	})
}
