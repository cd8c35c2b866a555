package session

import "time"

// User is the current-user object delivered by the backend after login.
//
// User instances are decoded from the login / current-user envelopes and then
// treated as immutable; a changed user is represented by a replaced Session.
type User struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Name     string   `json:"name,omitempty"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// Session is the client's view of one authenticated browser-equivalent
// session: the bearer tokens, the user they belong to, and the permission
// codes the backend granted.
//
// Session instances are intended to be configured during initialization and
// then treated as immutable; mutation happens by replacing the whole value.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
	Permissions  []string  `json:"permissions,omitempty"`
}

// Valid reports whether the session can still authenticate requests at the
// given instant: a token is present and its expiry, when known, has not
// passed. A zero ExpiresAt means the backend issued no expiry and the token
// is trusted until the server rejects it.
func (s *Session) Valid(now time.Time) bool {
	if s == nil || s.AccessToken == "" {
		return false
	}
	if s.ExpiresAt.IsZero() {
		return true
	}
	return now.Before(s.ExpiresAt)
}

// HasPermission reports whether the backend granted the named permission
// code to this session. Used only by the legacy requirement path of the
// route authorizer; menu-driven authorization never consults it.
func (s *Session) HasPermission(code string) bool {
	if s == nil || code == "" {
		return false
	}
	for _, p := range s.Permissions {
		if p == code {
			return true
		}
	}
	return false
}

// HasRole reports whether the session's user carries the named role.
func (s *Session) HasRole(role string) bool {
	if s == nil || role == "" {
		return false
	}
	for _, r := range s.User.Roles {
		if r == role {
			return true
		}
	}
	return false
}
