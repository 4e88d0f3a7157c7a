package oauthmodel

import "errors"

var (
	ErrEmptyAccessToken = errors.New("token response has no access token")
	ErrEnvelopeFailed   = errors.New("response envelope reported failure")
	ErrEmptyEnvelope    = errors.New("response envelope has no data")
)

// ErrorResponse is the error body the platform returns for non 2xx responses
type ErrorResponse struct {
	HTTPCode int    `json:"http_code,omitempty"`
	Message  string `json:"message,omitempty"`
	Detail   any    `json:"detail,omitempty"`
}
