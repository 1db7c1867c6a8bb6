package collyfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Stalin-143/monitor/internal/monitor"
)

func TestFetcherReturnsBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "test-agent" {
			t.Errorf("expected user agent test-agent, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><title>ok</title></html>"))
	}))
	defer srv.Close()

	f := New(Config{UserAgent: "test-agent"}, nil)
	res, err := f.Fetch(context.Background(), srv.URL, monitor.FetchConfig{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
	if !strings.Contains(string(res.Body), "<title>ok</title>") {
		t.Fatalf("unexpected body %q", res.Body)
	}
	if res.Duration <= 0 {
		t.Fatalf("expected positive duration, got %v", res.Duration)
	}
}

func TestFetcherRevisitsSameURL(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("page"))
	}))
	defer srv.Close()

	f := New(Config{}, nil)
	for i := 0; i < 3; i++ {
		if _, err := f.Fetch(context.Background(), srv.URL, monitor.FetchConfig{}); err != nil {
			t.Fatalf("Fetch() #%d error = %v", i, err)
		}
	}
	if got := hits.Load(); got != 3 {
		t.Fatalf("expected 3 hits, got %d", got)
	}
}

func TestFetcherNonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(Config{}, nil)
	_, err := f.Fetch(context.Background(), srv.URL, monitor.FetchConfig{})
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestFetcherConnectionRefused(t *testing.T) {
	t.Parallel()

	f := New(Config{}, nil)
	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1", monitor.FetchConfig{Timeout: time.Second})
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}
}

func TestFetcherProxyRequiresAddress(t *testing.T) {
	t.Parallel()

	f := New(Config{}, nil)
	_, err := f.Fetch(context.Background(), "http://example.com", monitor.FetchConfig{UseProxy: true})
	if err == nil || !strings.Contains(err.Error(), "proxy") {
		t.Fatalf("expected proxy configuration error, got %v", err)
	}
}

func TestFetcherInvalidURL(t *testing.T) {
	t.Parallel()

	f := New(Config{}, nil)
	_, err := f.Fetch(context.Background(), "::not-a-url", monitor.FetchConfig{})
	if err == nil {
		t.Fatal("expected error for malformed URL")
	}
}
