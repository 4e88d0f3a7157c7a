package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	cerrors "github.com/jrsteele09/go-festival-companion/internal/errors"
	"github.com/jrsteele09/go-festival-companion/oauthmodel"
)

// IdentityCheckPath is the endpoint used to validate a session. Authentication
// failures on it never trigger a refresh.
const IdentityCheckPath = "auth/me"

// Request describes one outbound call. Path is relative to the API base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any // JSON encoded when non-nil
	Header http.Header

	retried bool // a refresh-and-replay has already been attempted for this call
}

func (r *Request) isIdentityCheck() bool {
	return strings.Trim(r.Path, "/") == IdentityCheckPath
}

func (r *Request) replay() *Request {
	clone := *r
	clone.retried = true
	return &clone
}

// Response is a fully read HTTP response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unwraps the platform envelope into out
func (r *Response) Decode(out any) error {
	return oauthmodel.DecodeData(r.Body, out)
}

// StatusError is returned for every non 2xx response. A 401 matches
// errors.ErrUnauthorized.
type StatusError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case cerrors.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case cerrors.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

func newStatusError(req *Request, resp *Response) *StatusError {
	e := &StatusError{StatusCode: resp.StatusCode, Method: req.Method, Path: req.Path}
	var body oauthmodel.ErrorResponse
	if err := json.Unmarshal(resp.Body, &body); err == nil {
		e.Message = body.Message
	}
	return e
}
