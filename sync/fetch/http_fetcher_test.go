package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"LSProject/tools/errs"
)

func TestFetchPageDecodesMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/chats/c1/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("auth header = %q", got)
		}
		if r.URL.Query().Get("cursor") != "" {
			t.Errorf("first page must not carry cursor")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"code": 0,
			"data": {"messages": [
				{"id":"m1","sender_id":"u1","content":"hi","created_at":"2026-01-10T10:00:00Z"},
				{"id":"m2","sender_id":"u2","content":"yo","created_at":"2026-01-10T10:01:00Z"}
			], "has_more": false}
		}`))
	}))
	defer srv.Close()

	f := &HTTPFetcher{BaseURL: srv.URL + "/api/v1", Token: "tok"}
	items, err := f.FetchPage(context.Background(), "conv.c1", "")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].ID != "m1" || items[0].SenderID != "u1" || items[0].CreatedAt != "2026-01-10T10:00:00Z" {
		t.Fatalf("first item wrong: %+v", items[0])
	}
}

func TestFetchPageSendsCursor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("cursor"); got != "2026-01-10T10:00:00Z" {
			t.Errorf("cursor = %q", got)
		}
		_, _ = w.Write([]byte(`{"code":0,"data":{"messages":[]}}`))
	}))
	defer srv.Close()

	f := &HTTPFetcher{BaseURL: srv.URL}
	items, err := f.FetchPage(context.Background(), "conv.c1", "2026-01-10T10:00:00Z")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("items = %d, want 0", len(items))
	}
}

func TestFetchPageFailureShapes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chats/unauth/messages":
			w.WriteHeader(http.StatusUnauthorized)
		case "/chats/boom/messages":
			w.WriteHeader(http.StatusInternalServerError)
		case "/chats/garbled/messages":
			_, _ = w.Write([]byte(`{not json`))
		case "/chats/noid/messages":
			_, _ = w.Write([]byte(`{"code":0,"data":{"messages":[{"content":"orphan"}]}}`))
		}
	}))
	defer srv.Close()

	f := &HTTPFetcher{BaseURL: srv.URL}

	if _, err := f.FetchPage(context.Background(), "conv.unauth", ""); !errs.ErrAuthRequired.Is(err) {
		t.Fatalf("401 must map to AuthRequired, got %v", err)
	}
	if _, err := f.FetchPage(context.Background(), "conv.boom", ""); !errs.ErrFetchFailed.Is(err) {
		t.Fatalf("500 must map to FetchFailed, got %v", err)
	}
	if _, err := f.FetchPage(context.Background(), "conv.garbled", ""); !errs.ErrDecode.Is(err) {
		t.Fatalf("bad body must map to DecodeError, got %v", err)
	}
	if _, err := f.FetchPage(context.Background(), "conv.noid", ""); !errs.ErrDecode.Is(err) {
		t.Fatalf("row without id must map to DecodeError, got %v", err)
	}
	if _, err := f.FetchPage(context.Background(), "mystery", ""); !errs.ErrArgs.Is(err) {
		t.Fatalf("unknown resource must map to ArgsError, got %v", err)
	}
}

func TestRouteMapping(t *testing.T) {
	f := &HTTPFetcher{BaseURL: "http://api/"}
	cases := []struct {
		resource string
		endpoint string
		listKey  string
	}{
		{"conv.42", "http://api/chats/42/messages", "messages"},
		{"feed", "http://api/feed", "posts"},
		{"post.p9", "http://api/posts/p9/comments", "comments"},
		{"notify.u1", "http://api/notifications", "notifications"},
	}
	for _, tc := range cases {
		endpoint, listKey, err := f.route(tc.resource)
		if err != nil {
			t.Fatalf("%s: %v", tc.resource, err)
		}
		if endpoint != tc.endpoint || listKey != tc.listKey {
			t.Fatalf("%s -> (%s, %s), want (%s, %s)", tc.resource, endpoint, listKey, tc.endpoint, tc.listKey)
		}
	}
}
