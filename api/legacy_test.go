package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestLegacyClientRefreshesOnceAndRetries(t *testing.T) {
	var attempts int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if !strings.HasSuffix(r.Header.Get("Authorization"), "fresh-token") {
			writeEnvelope(w, http.StatusUnauthorized, Envelope{Code: 401, Message: "expired"})
			return
		}
		writeEnvelope(w, http.StatusOK, Envelope{
			Code: 0,
			Data: json.RawMessage(`{"id": 1}`),
		})
	})

	var hookFired bool
	client, _ := newTestClient(t, handler,
		WithTokenSource(staticTokens{token: "stale-token"}),
		WithUnauthorizedHook(func(context.Context) { hookFired = true }),
	)

	var refreshCalls int
	legacy, err := NewLegacyClient(client, func(context.Context) (string, error) {
		refreshCalls++
		return "fresh-token", nil
	})
	if err != nil {
		t.Fatalf("NewLegacyClient failed: %v", err)
	}

	var out struct {
		ID int64 `json:"id"`
	}
	if err := legacy.Get(context.Background(), "/api/v1/projects/1", nil, &out); err != nil {
		t.Fatalf("legacy Get failed: %v", err)
	}
	if out.ID != 1 {
		t.Fatalf("bad payload: %+v", out)
	}
	if attempts != 2 || refreshCalls != 1 {
		t.Fatalf("expected 2 attempts and 1 refresh, got %d/%d", attempts, refreshCalls)
	}
	if hookFired {
		t.Fatal("hook must not fire when refresh recovers the session")
	}
}

func TestLegacyClientGivesUpWhenRefreshFails(t *testing.T) {
	var attempts int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		writeEnvelope(w, http.StatusUnauthorized, Envelope{Code: 401, Message: "expired"})
	})

	var hookFired bool
	client, _ := newTestClient(t, handler,
		WithUnauthorizedHook(func(context.Context) { hookFired = true }),
	)

	legacy, err := NewLegacyClient(client, func(context.Context) (string, error) {
		return "", errors.New("refresh endpoint down")
	})
	if err != nil {
		t.Fatalf("NewLegacyClient failed: %v", err)
	}

	err = legacy.Get(context.Background(), "/api/v1/projects/1", nil, nil)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("failed refresh must not retry, got %d attempts", attempts)
	}
	if !hookFired {
		t.Fatal("hook must fire after refresh failure")
	}
}

func TestLegacyClientPassesThroughNon401(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, Envelope{Code: 500, Message: "boom"})
	})

	client, _ := newTestClient(t, handler)
	var refreshCalls int
	legacy, err := NewLegacyClient(client, func(context.Context) (string, error) {
		refreshCalls++
		return "unused", nil
	})
	if err != nil {
		t.Fatalf("NewLegacyClient failed: %v", err)
	}

	err = legacy.Post(context.Background(), "/x", nil, nil)
	if apiErr, ok := AsError(err); !ok || apiErr.Code != 500 {
		t.Fatalf("expected envelope error, got %v", err)
	}
	if refreshCalls != 0 {
		t.Fatal("non-401 must not trigger refresh")
	}
}
