package api

import (
	"context"
	"errors"
	"net/url"
)

// RefreshFunc exchanges the stored refresh token for a new access token.
type RefreshFunc func(ctx context.Context) (string, error)

// LegacyClient wraps a [Client] with the older recovery behavior: on a 401
// it attempts one token refresh and retries the request before giving up
// and tearing the session down. The primary client never refreshes.
type LegacyClient struct {
	client  *Client
	refresh RefreshFunc
}

// NewLegacyClient creates a [LegacyClient]. refresh is required; without it
// the wrapper would be indistinguishable from the primary client.
func NewLegacyClient(client *Client, refresh RefreshFunc) (*LegacyClient, error) {
	if client == nil {
		return nil, errors.New("api: legacy client requires a primary client")
	}
	if refresh == nil {
		return nil, errors.New("api: legacy client requires a refresh func")
	}
	return &LegacyClient{client: client, refresh: refresh}, nil
}

// Get issues a GET with refresh-once 401 recovery.
func (l *LegacyClient) Get(ctx context.Context, path string, query url.Values, out any) error {
	return l.do(ctx, func(opts doOptions) error {
		_, err := l.client.do(ctx, "GET", path, query, nil, out, opts)
		return err
	})
}

// Post issues a POST with refresh-once 401 recovery.
func (l *LegacyClient) Post(ctx context.Context, path string, body, out any) error {
	return l.do(ctx, func(opts doOptions) error {
		_, err := l.client.do(ctx, "POST", path, nil, body, out, opts)
		return err
	})
}

func (l *LegacyClient) do(ctx context.Context, call func(doOptions) error) error {
	err := call(doOptions{skipUnauthorizedHook: true})
	if err == nil || !errors.Is(err, ErrUnauthenticated) {
		return err
	}

	token, refreshErr := l.refresh(ctx)
	if refreshErr != nil || token == "" {
		// Refresh failed: fall back to the primary behavior and let the
		// unauthorized hook clear the session.
		if l.client.unauthorized != nil {
			l.client.unauthorized(ctx)
		}
		return err
	}

	return call(doOptions{overrideToken: token})
}
