package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenUnreadable is returned by [TokenExpiry] when the access token is
// not a parseable JWT.
var ErrTokenUnreadable = errors.New("access token not a readable jwt")

// tokenClaims mirrors the claims the backend puts in its access tokens. The
// client never verifies the signature — it holds no key — so these values are
// advisory: they drive local expiry checks, not authorization.
type tokenClaims struct {
	UID int64 `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// TokenExpiry extracts the expiry instant from a backend-issued access token
// without verifying its signature. Returns [ErrTokenUnreadable] for opaque
// tokens and a zero time for JWTs that carry no exp claim.
func TokenExpiry(token string) (time.Time, error) {
	if token == "" {
		return time.Time{}, ErrTokenUnreadable
	}

	var claims tokenClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, ErrTokenUnreadable
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}

// TokenUserID extracts the uid claim from an access token, or 0 when the
// token is opaque or carries no uid.
func TokenUserID(token string) int64 {
	var claims tokenClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return 0
	}
	return claims.UID
}
