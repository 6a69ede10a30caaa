// Package middleware provides the HTTP middleware chain of the layout
// engine: bearer auth, per-client rate limiting, CORS and request tracing.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/makersimpulse/layoutengine/pkg/logger"
)

type contextKey string

const clientKey contextKey = "client"

// ClientFromContext returns the identifier of the authenticated client, if
// any.
func ClientFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(clientKey).(string); ok {
		return v
	}
	return ""
}

// BearerAuth authenticates requests against a static token allow-list.
// Authorization policy (who gets a token, what it may do) lives outside this
// service; the middleware only gates the editing surface.
type BearerAuth struct {
	tokens    map[string]string // token -> client name
	log       *logger.Logger
	skipPaths map[string]bool
}

// NewBearerAuth builds the middleware. tokens maps bearer tokens to client
// names; skipPaths lists paths served without authentication.
func NewBearerAuth(tokens map[string]string, skipPaths []string, log *logger.Logger) *BearerAuth {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}
	return &BearerAuth{tokens: tokens, log: log, skipPaths: skip}
}

// Handler returns the middleware handler. With an empty allow-list every
// request passes, so a locally run server needs no token setup.
func (a *BearerAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(a.tokens) == 0 || a.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(w, "missing or malformed Authorization header")
			return
		}

		client, ok := a.tokens[parts[1]]
		if !ok {
			a.log.WithField("path", r.URL.Path).Warnf("rejected unknown bearer token")
			unauthorized(w, "unknown token")
			return
		}

		ctx := context.WithValue(r.Context(), clientKey, client)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error": "` + msg + `"}`))
}
