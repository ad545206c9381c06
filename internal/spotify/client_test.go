package spotify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/folio/internal/apperr"
)

func TestRecentlyPlayed_Verbatim(t *testing.T) {
	const payload = `{"items":[{"track":{"name":"Song"}}],"limit":5}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me/player/recently-played" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization = %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("limit = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	got, err := c.RecentlyPlayed(context.Background(), "tok", 5)
	if err != nil {
		t.Fatalf("RecentlyPlayed: %v", err)
	}
	if string(got) != payload {
		t.Errorf("body = %s", got)
	}
}

func TestRecentlyPlayed_LimitClamped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "50" {
			t.Errorf("limit = %q, want 50", got)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, nil).RecentlyPlayed(context.Background(), "t", 500); err != nil {
		t.Fatal(err)
	}
}

func TestRecentlyPlayed_UpstreamStatusPassedThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"status":429}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).RecentlyPlayed(context.Background(), "t", 1)
	var up *apperr.UpstreamError
	if !errors.As(err, &up) {
		t.Fatalf("err = %v, want UpstreamError", err)
	}
	if up.Status != http.StatusTooManyRequests {
		t.Errorf("status = %d", up.Status)
	}
}

func TestRecentlyPlayed_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := NewClient(srv.URL, nil).RecentlyPlayed(context.Background(), "t", 1)
	if err == nil {
		t.Fatal("expected error")
	}
	var up *apperr.UpstreamError
	if errors.As(err, &up) {
		t.Error("transport failures are not upstream statuses")
	}
}

func TestEndpointDefaults(t *testing.T) {
	ep := Endpoint("", "")
	if ep.AuthURL != AuthURL || ep.TokenURL != TokenURL {
		t.Errorf("endpoint = %+v", ep)
	}
}
