package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	cerrors "github.com/jrsteele09/go-festival-companion/internal/errors"
	"github.com/pkg/errors"
)

// Claims is the client-side view of an access token. The client cannot verify
// the signature (the platform signs with a shared secret), so these values are
// used for diagnostics and expiry hints only, never for authorization.
type Claims struct {
	Subject  string    // User ID
	Email    string    // User email
	Type     string    // Token type, "Bearer" for access tokens
	AuthTime time.Time // When the user authenticated
	Expiry   time.Time // Zero when the token has no exp claim
}

// ParseClaims reads the claims of a JWT without verifying its signature.
func ParseClaims(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, cerrors.ErrInvalidToken
	}

	unverifiedToken, _, err := jwt.NewParser().ParseUnverified(rawToken, jwt.MapClaims{})
	if err != nil {
		return nil, errors.Wrap(cerrors.ErrInvalidToken, err.Error())
	}

	claims, ok := unverifiedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.Wrap(cerrors.ErrInvalidToken, "error extracting claims")
	}

	c := &Claims{}
	c.Subject, _ = claims["sub"].(string)
	c.Email, _ = claims["email"].(string)
	c.Type, _ = claims["typ"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		c.Expiry = exp.Time
	}
	if authTime, ok := claims["auth_time"].(float64); ok {
		c.AuthTime = time.Unix(int64(authTime), 0)
	}
	return c, nil
}

// Expired reports whether the token carries an exp claim that is before now
func (c *Claims) Expired(now time.Time) bool {
	return !c.Expiry.IsZero() && now.After(c.Expiry)
}
