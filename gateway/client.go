package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-festival-companion/oauthmodel"
	"github.com/jrsteele09/go-festival-companion/sessions"
	"github.com/jrsteele09/go-festival-companion/token/refresh"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Refresher exchanges a refresh token for new tokens
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauthmodel.TokenResponse, error)
}

// Client is the authenticated gateway every remote call goes through. It attaches
// the session's bearer token, repairs an expired session once per call and
// ends the session when it cannot be repaired.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *sessions.Session
	refresher  Refresher
}

type Option func(*Client)

func WithRefresher(r Refresher) Option {
	return func(c *Client) {
		c.refresher = r
	}
}

func New(baseURL string, httpClient *http.Client, session *sessions.Session, options ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		session:    session,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.refresher == nil {
		c.refresher = refresh.NewManager(httpClient, c.baseURL)
	}
	return c
}

// Session returns the session the client authenticates with
func (c *Client) Session() *sessions.Session {
	return c.session
}

// Send dispatches req. Responses other than 401 are returned unchanged; non 2xx
// statuses also return a *StatusError. A 401 triggers at most one refresh and
// replay; when that is not possible the session is ended and the original 401
// is returned.
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	resp, attached, err := c.dispatch(ctx, req, true)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized {
		if resp.StatusCode >= http.StatusBadRequest {
			return resp, newStatusError(req, resp)
		}
		return resp, nil
	}

	authErr := newStatusError(req, resp)
	if req.retried {
		return resp, authErr
	}

	if !req.isIdentityCheck() {
		if replay, ok := c.repair(ctx, req, attached); ok {
			return c.Send(ctx, replay)
		}
		// the caller gave up while refreshing; the session itself was not rejected
		if ctx.Err() != nil {
			return nil, errors.Wrapf(ctx.Err(), "%s %s refresh abandoned", req.Method, req.Path)
		}
	}

	log.Info().Str("path", req.Path).Msg("session could not be repaired, logging out")
	c.session.End(ctx)
	return resp, authErr
}

// repair refreshes the session and returns the replay of req
func (c *Client) repair(ctx context.Context, req *Request, attached string) (*Request, bool) {
	current := c.session.Token()
	if current == nil || current.RefreshToken == "" {
		return nil, false
	}
	// another call already refreshed while this one was in flight
	if current.AccessToken != "" && current.AccessToken != attached {
		return req.replay(), true
	}

	tr, err := c.refresher.Refresh(ctx, current.RefreshToken)
	if err != nil {
		log.Err(err).Str("path", req.Path).Msg("token refresh failed")
		return nil, false
	}
	if err := c.session.Update(ctx, tr.AccessToken, tr.RefreshToken); err != nil {
		// the in-memory session already holds the new tokens
		log.Err(err).Msg("failed to persist refreshed tokens")
	}
	return req.replay(), true
}

// dispatch performs a single HTTP exchange and returns the access token it attached
func (c *Client) dispatch(ctx context.Context, req *Request, authorize bool) (*Response, string, error) {
	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", errors.Wrap(err, "Client.dispatch Marshal")
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.url(req), body)
	if err != nil {
		return nil, "", errors.Wrap(err, "Client.dispatch NewRequest")
	}
	for k, v := range req.Header {
		httpReq.Header[k] = v
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", requestID)

	var attached string
	if authorize {
		attached = c.session.Authorize(httpReq)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Err(err).Str("request_id", requestID).Str("method", req.Method).Str("path", req.Path).Msg("request failed")
		return nil, attached, errors.Wrapf(err, "%s %s", req.Method, req.Path)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, attached, errors.Wrapf(err, "%s %s read body", req.Method, req.Path)
	}

	log.Debug().
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", httpResp.StatusCode).
		Bool("retried", req.retried).
		Msg("request completed")

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
	}, attached, nil
}

func (c *Client) url(req *Request) string {
	u := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	return u
}
