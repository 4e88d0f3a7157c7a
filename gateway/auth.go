package gateway

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-festival-companion/oauthmodel"
	"github.com/jrsteele09/go-festival-companion/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const LoginPath = "auth/login"

// Login exchanges credentials for tokens and begins the session. Login failures
// never go through the refresh machinery.
func (c *Client) Login(ctx context.Context, username, password string) (*users.User, error) {
	req := &Request{
		Method: http.MethodPost,
		Path:   LoginPath,
		Body:   oauthmodel.LoginRequest{Username: username, Password: password},
	}
	resp, _, err := c.dispatch(ctx, req, false)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, newStatusError(req, resp)
	}

	var tr oauthmodel.TokenResponse
	if err := resp.Decode(&tr); err != nil {
		return nil, errors.Wrap(err, "Client.Login Decode")
	}
	if tr.AccessToken == "" {
		return nil, oauthmodel.ErrEmptyAccessToken
	}
	if err := c.session.Begin(ctx, tr.AccessToken, tr.RefreshToken); err != nil {
		return nil, errors.Wrap(err, "Client.Login Begin")
	}

	if tr.User != nil {
		log.Info().Str("user_id", tr.User.ID).Msg("logged in")
	}
	return tr.User, nil
}

// Logout ends the session explicitly; subscribers receive the logout signal
func (c *Client) Logout(ctx context.Context) {
	c.session.End(ctx)
}

// Me performs the identity check. A 401 here ends the session without a refresh attempt.
func (c *Client) Me(ctx context.Context) (*users.User, error) {
	var u users.User
	if err := c.GetJSON(ctx, IdentityCheckPath, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
