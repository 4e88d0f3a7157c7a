package refresh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	cerrors "github.com/jrsteele09/go-festival-companion/internal/errors"
	"github.com/jrsteele09/go-festival-companion/oauthmodel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Path of the refresh endpoint relative to the API base URL
const Path = "auth/refresh"

// Doer is the subset of *http.Client the manager needs
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Manager exchanges a refresh token for a new access token.
// Concurrent refreshes for the same refresh token share a single request.
type Manager struct {
	client   Doer
	endpoint string
	group    singleflight.Group
}

// NewManager creates a refresh manager posting to <baseURL>/auth/refresh
func NewManager(client Doer, baseURL string) *Manager {
	return &Manager{
		client:   client,
		endpoint: strings.TrimRight(baseURL, "/") + "/" + Path,
	}
}

// Refresh performs the refresh protocol. Any failure, whether a rejection or a
// transport error, is reported as an error wrapping ErrRefreshRejected.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (*oauthmodel.TokenResponse, error) {
	if refreshToken == "" {
		return nil, cerrors.ErrNoRefreshToken
	}

	// the shared exchange outlives any one caller; each caller only waits as long as its ctx allows
	detached := context.WithoutCancel(ctx)
	ch := m.group.DoChan(refreshToken, func() (any, error) {
		return m.exchange(detached, refreshToken)
	})

	select {
	case <-ctx.Done():
		return nil, errors.Wrap(cerrors.ErrRefreshRejected, ctx.Err().Error())
	case res := <-ch:
		if res.Shared {
			log.Debug().Msg("refresh shared with concurrent caller")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		resp := *res.Val.(*oauthmodel.TokenResponse)
		return &resp, nil
	}
}

func (m *Manager) exchange(ctx context.Context, refreshToken string) (*oauthmodel.TokenResponse, error) {
	body, err := json.Marshal(oauthmodel.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, errors.Wrap(err, "Manager.exchange Marshal")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "Manager.exchange NewRequest")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(cerrors.ErrRefreshRejected, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(cerrors.ErrRefreshRejected, err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrap(cerrors.ErrRefreshRejected, fmt.Sprintf("status %d", resp.StatusCode))
	}

	var tr oauthmodel.TokenResponse
	if err := oauthmodel.DecodeData(respBody, &tr); err != nil {
		return nil, errors.Wrap(cerrors.ErrRefreshRejected, err.Error())
	}
	if tr.AccessToken == "" {
		return nil, errors.Wrap(cerrors.ErrRefreshRejected, oauthmodel.ErrEmptyAccessToken.Error())
	}
	return &tr, nil
}
