package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestHttpClient_PostForm(t *testing.T) {
	var gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":1}`))
	}))
	defer srv.Close()

	c := NewHttpClient(time.Second)
	resp, err := c.PostForm(context.Background(), srv.URL, url.Values{"command": {"x"}}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("unexpected content type %q", gotContentType)
	}
	if gotBody != "command=x" {
		t.Errorf("unexpected body %q", gotBody)
	}
	if !resp.IsSuccess() {
		t.Errorf("expected success, got %d", resp.StatusCode)
	}
}

func TestHttpClient_PostJSONHeaders(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("authkey")
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewHttpClient(time.Second)
	resp, err := c.PostJSON(context.Background(), srv.URL, map[string]string{"a": "b"}, map[string]string{"authkey": "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "secret" {
		t.Errorf("expected authkey header to be forwarded")
	}
	if resp.IsSuccess() {
		t.Errorf("expected non-success status")
	}
}

func TestHttpClient_TimeoutIsBounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewHttpClient(50 * time.Millisecond)
	if _, err := c.PostJSON(context.Background(), srv.URL, nil, nil); err == nil {
		t.Fatalf("expected timeout error")
	}
}
