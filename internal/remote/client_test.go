package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danmuck/amfiles/internal/testutil/testlog"
)

func TestNewClientRequiresBaseURL(t *testing.T) {
	testlog.Start(t)

	if _, err := NewClient(Config{}, nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := NewClient(Config{BaseURL: "ftp://example.org"}, nil); err == nil {
		t.Fatalf("expected scheme error")
	}
}

func TestClientURLJoinsRefAndCleansPath(t *testing.T) {
	testlog.Start(t)

	c, err := NewClient(Config{BaseURL: "https://raw.githubusercontent.com/XAMS-nikhef/amstrax_files", Ref: "/main/"}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	got := c.URL("../corrections/elife/elife_v0.json")
	want := "https://raw.githubusercontent.com/XAMS-nikhef/amstrax_files/main/corrections/elife/elife_v0.json"
	if got != want {
		t.Fatalf("unexpected url: %s", got)
	}
}

func TestFetchStatusMapping(t *testing.T) {
	testlog.Start(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/master/ok.json":
			_, _ = w.Write([]byte(`{"000000-*": 1}`))
		case "/master/broken.json":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL}, srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	body, err := c.Fetch(context.Background(), "ok.json")
	if err != nil {
		t.Fatalf("fetch ok: %v", err)
	}
	if string(body) != `{"000000-*": 1}` {
		t.Fatalf("unexpected body: %q", body)
	}
	if _, err := c.Fetch(context.Background(), "missing.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := c.Fetch(context.Background(), "broken.json"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestFetchEnforcesSizeLimit(t *testing.T) {
	testlog.Start(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, MaxBytes: 4}, srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := c.Fetch(context.Background(), "big.bin"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected size failure, got %v", err)
	}
}
