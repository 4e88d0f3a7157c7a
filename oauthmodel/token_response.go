package oauthmodel

import (
	"encoding/json"

	"github.com/jrsteele09/go-festival-companion/users"
)

// TokenResponse is returned by both the login and the refresh endpoints.
type TokenResponse struct {
	// AccessToken is the JWT sent as "Authorization: Bearer <access_token>".
	// Lifespan: short-lived (15 minutes on the platform)
	AccessToken string `json:"access_token"`

	// RefreshToken is used to obtain new access tokens.
	// The platform currently echoes the same refresh token on refresh, but may rotate it.
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresIn is the lifetime in seconds of the access token.
	ExpiresIn float64 `json:"expires_in,omitempty"`

	// RefreshExpiresIn is the lifetime in seconds of the refresh token.
	RefreshExpiresIn float64 `json:"refresh_expires_in,omitempty"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type,omitempty"`

	// User is only populated on login
	User *users.User `json:"user,omitempty"`
}

// Metadata is the paging block some list endpoints attach to the envelope
type Metadata struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// DataResponse is the envelope every platform endpoint responds with.
type DataResponse struct {
	HTTPCode int             `json:"http_code,omitempty"`
	Success  *bool           `json:"success,omitempty"`
	Message  string          `json:"message,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
	Metadata *Metadata       `json:"metadata,omitempty"`
}

// Failed reports an explicit success=false in the envelope
func (d DataResponse) Failed() bool {
	return d.Success != nil && !*d.Success
}
