package codereview

import "errors"

var (
	// ErrNotAuthenticated is returned by operations that need a valid
	// session when none is present.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSessionExpired is returned when the persisted session's token has
	// passed its expiry.
	ErrSessionExpired = errors.New("session expired")
	// ErrNoRefreshToken is returned by [App.Refresh] when the session
	// carries no refresh token.
	ErrNoRefreshToken = errors.New("no refresh token")
	// ErrMenuUnavailable is returned by [App.LoadMenu] when the menu fetch
	// fails; the authorizer keeps running in fallback mode.
	ErrMenuUnavailable = errors.New("menu unavailable")
	// ErrClosed is returned by operations on a closed [App].
	ErrClosed = errors.New("app closed")
)
