package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func TestProjectListDecodesPageMeta(t *testing.T) {
	total := int64(42)
	page := 2
	pageSize := 20

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/projects" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("page") != "2" || r.URL.Query().Get("keyword") != "gateway" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		writeEnvelope(w, http.StatusOK, Envelope{
			Code:     0,
			Data:     json.RawMessage(`[{"id": 1, "name": "gateway"}, {"id": 2, "name": "billing"}]`),
			Total:    &total,
			Page:     &page,
			PageSize: &pageSize,
		})
	})

	client, _ := newTestClient(t, handler)
	projects := NewProjectService(client)

	items, meta, err := projects.List(context.Background(), ListOptions{Page: 2, PageSize: 20, Keyword: "gateway"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 2 || items[0].Name != "gateway" {
		t.Fatalf("bad items: %+v", items)
	}
	if meta.Total != 42 || meta.Page != 2 || meta.PageSize != 20 {
		t.Fatalf("bad meta: %+v", meta)
	}
}

func TestAuthServiceMenuValidatesTree(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, Envelope{
			Code: 0,
			Data: json.RawMessage(`[
				{"id": 1, "title": "Projects", "path": "/projects"},
				{"id": 2, "title": "Dup", "path": "/projects"}
			]`),
		})
	})

	client, _ := newTestClient(t, handler)
	auth := NewAuthService(client)

	if _, err := auth.Menu(context.Background()); err == nil {
		t.Fatal("expected duplicate-path validation error")
	}
}

func TestAuthServiceLoginRequiresToken(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, Envelope{
			Code: 0,
			Data: json.RawMessage(`{"user": {"id": 1, "username": "alice"}}`),
		})
	})

	client, _ := newTestClient(t, handler)
	auth := NewAuthService(client)

	if _, err := auth.Login(context.Background(), Credentials{Username: "alice", Password: "pw"}); err == nil {
		t.Fatal("expected error for tokenless login envelope")
	}
}
