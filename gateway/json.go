package gateway

import (
	"context"
	"net/http"
	"net/url"
)

// GetJSON sends an authenticated GET and decodes the envelope's data into out
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.Send(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// PostJSON sends an authenticated POST with a JSON body and decodes the envelope's data into out
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	resp, err := c.Send(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}
