// Package supabase implements the layout store over the Supabase PostgREST
// API.
package supabase

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Client wraps the Supabase REST API.
type Client struct {
	url        string
	serviceKey string
	httpClient *http.Client
	retry      RetryConfig
}

// Config holds connection settings. Empty fields fall back to the
// SUPABASE_URL and SUPABASE_SERVICE_KEY environment variables.
type Config struct {
	URL        string
	ServiceKey string
}

const (
	maxResponseBytes  = 8 << 20  // 8 MiB
	maxErrorBodyBytes = 32 << 10 // 32 KiB
)

// NewClient creates a new Supabase client.
func NewClient(cfg Config) (*Client, error) {
	url := cfg.URL
	if url == "" {
		url = os.Getenv("SUPABASE_URL")
	}
	key := cfg.ServiceKey
	if key == "" {
		key = os.Getenv("SUPABASE_SERVICE_KEY")
	}
	if url == "" {
		return nil, fmt.Errorf("SUPABASE_URL is required")
	}
	if key == "" {
		return nil, fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}

	transport := http.DefaultTransport
	if base, ok := http.DefaultTransport.(*http.Transport); ok {
		cloned := base.Clone()
		if cloned.TLSClientConfig == nil {
			cloned.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		} else if cloned.TLSClientConfig.MinVersion < tls.VersionTLS12 {
			cloned.TLSClientConfig = cloned.TLSClientConfig.Clone()
			cloned.TLSClientConfig.MinVersion = tls.VersionTLS12
		}
		transport = cloned
	}

	return &Client{
		url:        strings.TrimRight(url, "/"),
		serviceKey: key,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		retry: DefaultRetryConfig(),
	}, nil
}

// request makes an HTTP request to the Supabase REST API and returns the raw
// response body. Transient failures (429, 5xx) are retried with exponential
// backoff; network errors are retried for GET only, since a write may have
// been applied before the connection dropped.
func (c *Client) request(ctx context.Context, method, table string, body interface{}, query string) ([]byte, error) {
	var jsonBody []byte
	if body != nil {
		var err error
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, c.retry.backoff(attempt-1)); err != nil {
				return nil, err
			}
		}

		data, status, err := c.do(ctx, method, table, jsonBody, query)
		switch {
		case err == nil && status < 400:
			return data, nil
		case err != nil:
			lastErr = err
			if method != http.MethodGet {
				return nil, lastErr
			}
		default:
			lastErr = fmt.Errorf("supabase API error %d: %s", status, strings.TrimSpace(string(data)))
			if !retryableStatus(status) {
				return nil, lastErr
			}
		}
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, method, table string, jsonBody []byte, query string) ([]byte, int, error) {
	url := fmt.Sprintf("%s/rest/v1/%s", c.url, table)
	if query != "" {
		url += "?" + query
	}

	var reqBody io.Reader
	if jsonBody != nil {
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, err := readLimited(resp.Body, maxErrorBodyBytes)
		if err != nil {
			return nil, resp.StatusCode, fmt.Errorf("read error response: %w", err)
		}
		return msg, resp.StatusCode, nil
	}

	data, err := readLimited(resp.Body, maxResponseBytes)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return data, resp.StatusCode, nil
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return nil, err
	}
	return data, nil
}
