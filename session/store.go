package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoSession is returned by [Store.Load] when durable storage holds no
// access token.
var ErrNoSession = errors.New("no persisted session")

// Keys names the fixed durable-storage keys the client persists under. The
// names are part of the on-disk / on-Redis contract: changing them orphans
// sessions written by earlier builds.
type Keys struct {
	AccessToken  string
	RefreshToken string
	CurrentUser  string
	LoginTheme   string
	ExpiresAt    string
}

// DefaultKeys returns the key set the production client uses.
func DefaultKeys() Keys {
	return Keys{
		AccessToken:  "cr_access_token",
		RefreshToken: "cr_refresh_token",
		CurrentUser:  "cr_current_user",
		LoginTheme:   "cr_login_theme",
		ExpiresAt:    "cr_token_expires_at",
	}
}

func (k Keys) validate() error {
	for _, key := range []string{k.AccessToken, k.RefreshToken, k.CurrentUser, k.LoginTheme, k.ExpiresAt} {
		if strings.TrimSpace(key) == "" {
			return errors.New("session: storage key names must be non-empty")
		}
	}
	return nil
}

// Backend is the key-value surface a storage implementation must provide.
// Get reports presence explicitly so an empty stored value is distinct from
// an absent key.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Store persists one [Session] plus the login theme preference under the
// fixed [Keys] of a [Backend].
//
// Store instances are intended to be configured during initialization and
// then treated as immutable; they are safe for concurrent use when the
// backend is.
type Store struct {
	backend Backend
	keys    Keys
}

// NewStore creates a [Store] over the given backend. Zero-value Keys select
// [DefaultKeys].
func NewStore(backend Backend, keys Keys) (*Store, error) {
	if backend == nil {
		return nil, errors.New("session: backend is required")
	}
	if keys == (Keys{}) {
		keys = DefaultKeys()
	}
	if err := keys.validate(); err != nil {
		return nil, err
	}
	return &Store{backend: backend, keys: keys}, nil
}

// Save writes every session field to durable storage. Partial failure leaves
// previously written keys in place; callers treat Save as all-or-retry.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.AccessToken == "" {
		return errors.New("session: refusing to persist an empty session")
	}

	userBlob, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("session: encode user: %w", err)
	}

	if err := s.backend.Set(ctx, s.keys.AccessToken, sess.AccessToken); err != nil {
		return fmt.Errorf("session: persist access token: %w", err)
	}
	if sess.RefreshToken != "" {
		if err := s.backend.Set(ctx, s.keys.RefreshToken, sess.RefreshToken); err != nil {
			return fmt.Errorf("session: persist refresh token: %w", err)
		}
	} else if err := s.backend.Delete(ctx, s.keys.RefreshToken); err != nil {
		return fmt.Errorf("session: clear refresh token: %w", err)
	}
	if err := s.backend.Set(ctx, s.keys.CurrentUser, string(userBlob)); err != nil {
		return fmt.Errorf("session: persist user: %w", err)
	}

	expires := ""
	if !sess.ExpiresAt.IsZero() {
		expires = sess.ExpiresAt.UTC().Format(time.RFC3339Nano)
	}
	if expires == "" {
		if err := s.backend.Delete(ctx, s.keys.ExpiresAt); err != nil {
			return fmt.Errorf("session: clear expiry: %w", err)
		}
		return nil
	}
	if err := s.backend.Set(ctx, s.keys.ExpiresAt, expires); err != nil {
		return fmt.Errorf("session: persist expiry: %w", err)
	}
	return nil
}

// Load reconstructs the persisted session. Token expiry is re-derived from
// the JWT exp claim when the stored token parses as one, so a stale stored
// expiry cannot outlive the token itself.
func (s *Store) Load(ctx context.Context) (*Session, error) {
	token, ok, err := s.backend.Get(ctx, s.keys.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("session: read access token: %w", err)
	}
	if !ok || token == "" {
		return nil, ErrNoSession
	}

	sess := &Session{AccessToken: token}

	if refresh, ok, err := s.backend.Get(ctx, s.keys.RefreshToken); err != nil {
		return nil, fmt.Errorf("session: read refresh token: %w", err)
	} else if ok {
		sess.RefreshToken = refresh
	}

	if blob, ok, err := s.backend.Get(ctx, s.keys.CurrentUser); err != nil {
		return nil, fmt.Errorf("session: read user: %w", err)
	} else if ok && blob != "" {
		if err := json.Unmarshal([]byte(blob), &sess.User); err != nil {
			return nil, fmt.Errorf("session: decode user: %w", err)
		}
	}

	// A JWT without an exp claim parses to a zero expiry; fall through to
	// the stored value then, same as for an opaque token.
	if exp, err := TokenExpiry(token); err == nil && !exp.IsZero() {
		sess.ExpiresAt = exp
	} else if raw, ok, err := s.backend.Get(ctx, s.keys.ExpiresAt); err != nil {
		return nil, fmt.Errorf("session: read expiry: %w", err)
	} else if ok && raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("session: decode expiry: %w", err)
		}
		sess.ExpiresAt = parsed
	}

	return sess, nil
}

// Clear removes every session key. Deleting an absent key is not an error;
// Clear is idempotent.
func (s *Store) Clear(ctx context.Context) error {
	for _, key := range []string{s.keys.AccessToken, s.keys.RefreshToken, s.keys.CurrentUser, s.keys.ExpiresAt} {
		if err := s.backend.Delete(ctx, key); err != nil {
			return fmt.Errorf("session: clear %s: %w", key, err)
		}
	}
	return nil
}

// Theme returns the persisted login theme preference, or "" when none is
// stored. The theme survives [Store.Clear]: it is a device preference, not
// session state.
func (s *Store) Theme(ctx context.Context) (string, error) {
	theme, ok, err := s.backend.Get(ctx, s.keys.LoginTheme)
	if err != nil {
		return "", fmt.Errorf("session: read theme: %w", err)
	}
	if !ok {
		return "", nil
	}
	return theme, nil
}

// SetTheme persists the login theme preference.
func (s *Store) SetTheme(ctx context.Context, theme string) error {
	if theme == "" {
		return s.backend.Delete(ctx, s.keys.LoginTheme)
	}
	return s.backend.Set(ctx, s.keys.LoginTheme, theme)
}
