package supabase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxRetries:        2,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestRequestRetriesTransientStatus(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, `{"message":"overloaded"}`, http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL, ServiceKey: "k"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.retry = fastRetry()

	if _, err := client.request(context.Background(), http.MethodGet, "layout_skeletons", nil, ""); err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRequestDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, `{"message":"bad filter"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL, ServiceKey: "k"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.retry = fastRetry()

	if _, err := client.request(context.Background(), http.MethodGet, "layout_skeletons", nil, ""); err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("client errors must not be retried, got %d attempts", attempts)
	}
}

func TestRequestRetriesExhaust(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, `{"message":"down"}`, http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL, ServiceKey: "k"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.retry = fastRetry()

	if _, err := client.request(context.Background(), http.MethodGet, "layout_skeletons", nil, ""); err == nil {
		t.Fatal("expected exhausted retries to fail")
	}
	if attempts != 3 { // initial + 2 retries
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestNewClientRequiresSettings(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_SERVICE_KEY", "")
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error without URL and key")
	}
	if _, err := NewClient(Config{URL: "https://example.supabase.co"}); err == nil {
		t.Fatal("expected error without service key")
	}
}
