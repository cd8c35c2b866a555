package session

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newFileStore(t *testing.T) *Store {
	t.Helper()
	backend, err := NewFileBackend(filepath.Join(t.TempDir(), "state", "session.json"))
	if err != nil {
		t.Fatalf("NewFileBackend failed: %v", err)
	}
	store, err := NewStore(backend, Keys{})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func signedToken(t *testing.T, uid int64, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"uid": uid}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	return token
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	store := newFileStore(t)
	ctx := context.Background()

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	in := &Session{
		AccessToken:  signedToken(t, 42, exp),
		RefreshToken: "refresh-abc",
		ExpiresAt:    exp,
		User: User{
			ID:       42,
			Username: "alice",
			Name:     "Alice",
			Email:    "alice@example.com",
			Roles:    []string{"reviewer"},
		},
		Permissions: []string{"project:view"},
	}

	if err := store.Save(ctx, in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	out, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if out.AccessToken != in.AccessToken {
		t.Fatalf("access token mismatch: got %q", out.AccessToken)
	}
	if out.RefreshToken != in.RefreshToken {
		t.Fatalf("refresh token mismatch: got %q", out.RefreshToken)
	}
	if out.User.ID != 42 || out.User.Username != "alice" || out.User.Email != "alice@example.com" {
		t.Fatalf("user mismatch: %+v", out.User)
	}
	if !out.ExpiresAt.Equal(exp) {
		t.Fatalf("expiry mismatch: got %v want %v", out.ExpiresAt, exp)
	}

	// A second save/load with the loaded session must be stable.
	if err := store.Save(ctx, out); err != nil {
		t.Fatalf("re-Save failed: %v", err)
	}
	again, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("re-Load failed: %v", err)
	}
	if again.AccessToken != out.AccessToken || !reflect.DeepEqual(again.User, out.User) {
		t.Fatalf("round trip not idempotent: %+v vs %+v", again, out)
	}
}

func TestStoreLoadOpaqueTokenUsesStoredExpiry(t *testing.T) {
	store := newFileStore(t)
	ctx := context.Background()

	exp := time.Now().Add(30 * time.Minute).UTC().Truncate(time.Millisecond)
	for name, token := range map[string]string{
		"opaque":     "opaque-token",
		"jwt-no-exp": signedToken(t, 42, time.Time{}),
	} {
		in := &Session{AccessToken: token, ExpiresAt: exp}
		if err := store.Save(ctx, in); err != nil {
			t.Fatalf("%s: Save failed: %v", name, err)
		}

		out, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("%s: Load failed: %v", name, err)
		}
		if !out.ExpiresAt.Equal(exp) {
			t.Fatalf("%s: expected stored expiry %v, got %v", name, exp, out.ExpiresAt)
		}
	}
}

func TestStoreLoadMissingSession(t *testing.T) {
	store := newFileStore(t)

	if _, err := store.Load(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestStoreClearIsIdempotentAndKeepsTheme(t *testing.T) {
	store := newFileStore(t)
	ctx := context.Background()

	if err := store.SetTheme(ctx, "dark"); err != nil {
		t.Fatalf("SetTheme failed: %v", err)
	}
	if err := store.Save(ctx, &Session{AccessToken: "tok"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second Clear failed: %v", err)
	}

	if _, err := store.Load(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after clear, got %v", err)
	}
	theme, err := store.Theme(ctx)
	if err != nil {
		t.Fatalf("Theme failed: %v", err)
	}
	if theme != "dark" {
		t.Fatalf("expected theme to survive clear, got %q", theme)
	}
}

func TestSessionValidity(t *testing.T) {
	now := time.Now()

	var nilSession *Session
	if nilSession.Valid(now) {
		t.Fatal("nil session must be invalid")
	}
	if (&Session{}).Valid(now) {
		t.Fatal("empty token must be invalid")
	}
	if !(&Session{AccessToken: "tok"}).Valid(now) {
		t.Fatal("token without expiry must be valid")
	}
	if (&Session{AccessToken: "tok", ExpiresAt: now.Add(-time.Minute)}).Valid(now) {
		t.Fatal("expired token must be invalid")
	}
	if !(&Session{AccessToken: "tok", ExpiresAt: now.Add(time.Minute)}).Valid(now) {
		t.Fatal("unexpired token must be valid")
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, 7, exp)

	got, err := TokenExpiry(token)
	if err != nil {
		t.Fatalf("TokenExpiry failed: %v", err)
	}
	if !got.Equal(exp) {
		t.Fatalf("expected %v, got %v", exp, got)
	}
	if uid := TokenUserID(token); uid != 7 {
		t.Fatalf("expected uid 7, got %d", uid)
	}

	if _, err := TokenExpiry("not-a-jwt"); !errors.Is(err, ErrTokenUnreadable) {
		t.Fatalf("expected ErrTokenUnreadable, got %v", err)
	}

	noExp := signedToken(t, 7, time.Time{})
	got, err = TokenExpiry(noExp)
	if err != nil {
		t.Fatalf("TokenExpiry without exp failed: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("expected zero time for missing exp, got %v", got)
	}
}
