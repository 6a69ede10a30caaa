package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/makersimpulse/layoutengine/internal/layout"
)

func TestApplicationEndToEnd(t *testing.T) {
	application := New(Stores{}, Options{}, nil)
	application.Seed(context.Background())
	srv := httptest.NewServer(application.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/layouts/active?type=topnav&scope=site")
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected seeded topnav, got %d", resp.StatusCode)
	}

	var skel layout.Skeleton
	if err := json.NewDecoder(resp.Body).Decode(&skel); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if skel.Type != layout.KindTopNav || !skel.IsActive {
		t.Fatalf("unexpected active record: %+v", skel)
	}
}

func TestApplicationAuth(t *testing.T) {
	application := New(Stores{}, Options{
		AuthTokens: map[string]string{"token-1": "ci"},
	}, nil)
	srv := httptest.NewServer(application.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/layouts")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	// Health stays open for probes.
	resp, err = http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on /healthz, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/layouts", nil)
	req.Header.Set("Authorization", "Bearer token-1")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("authed get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", resp.StatusCode)
	}
}
