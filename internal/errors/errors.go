package errors

import (
	"errors"
	"fmt"
)

// Common error types for the companion client
var (
	// Session errors
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNoAccessToken   = errors.New("no access token")
	ErrNoRefreshToken  = errors.New("no refresh token")
	ErrRefreshRejected = errors.New("refresh token rejected")
	ErrInvalidToken    = errors.New("invalid token")

	// Device errors
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrNoBrowserClient     = errors.New("no browser client connected")

	// Geo errors
	ErrInvalidLatitude  = errors.New("invalid latitude")
	ErrInvalidLongitude = errors.New("invalid longitude")

	// General errors
	ErrNotFound = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}
