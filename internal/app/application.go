// Package app composes stores, services and the HTTP surface into a running
// layout engine.
package app

import (
	"context"
	"net/http"

	"github.com/makersimpulse/layoutengine/internal/httpapi"
	"github.com/makersimpulse/layoutengine/internal/metrics"
	"github.com/makersimpulse/layoutengine/internal/middleware"
	"github.com/makersimpulse/layoutengine/internal/render"
	"github.com/makersimpulse/layoutengine/internal/services/layouts"
	"github.com/makersimpulse/layoutengine/internal/storage"
	"github.com/makersimpulse/layoutengine/pkg/logger"
)

// Stores encapsulates persistence dependencies. A nil store defaults to the
// in-memory implementation.
type Stores struct {
	Layouts storage.LayoutStore
}

// Options tune the HTTP middleware chain.
type Options struct {
	AuthTokens        map[string]string
	AllowedOrigins    []string
	RequestsPerSecond int
	Burst             int
}

// Application ties the layout services together.
type Application struct {
	log  *logger.Logger
	opts Options

	Layouts  *layouts.Service
	Seeder   *layouts.Seeder
	Registry *render.FuncRegistry
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, opts Options, log *logger.Logger) *Application {
	if log == nil {
		log = logger.NewDefault("layoutengine")
	}
	if stores.Layouts == nil {
		stores.Layouts = storage.NewMemory()
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 25
	}
	if opts.Burst <= 0 {
		opts.Burst = opts.RequestsPerSecond * 2
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	return &Application{
		log:      log,
		opts:     opts,
		Layouts:  layouts.New(stores.Layouts, log),
		Seeder:   layouts.NewSeeder(stores.Layouts, log),
		Registry: render.Builtins(),
	}
}

// Seed ensures the core slots have active layouts. Failures are logged by
// the seeder and never abort startup.
func (a *Application) Seed(ctx context.Context) {
	created := a.Seeder.EnsureDefaults(ctx)
	metrics.RecordSeededLayouts(created)
}

// Handler returns the full HTTP stack: tracing, CORS, auth, rate limiting
// and metrics around the REST API.
func (a *Application) Handler() http.Handler {
	api := httpapi.NewHandler(a.Layouts, a.Registry, a.log)

	rl := middleware.NewRateLimiter(a.opts.RequestsPerSecond, a.opts.Burst, a.log)
	auth := middleware.NewBearerAuth(a.opts.AuthTokens, []string{"/healthz", "/metrics"}, a.log)
	cors := middleware.NewCORS(a.opts.AllowedOrigins)
	tracing := middleware.NewTracing(a.log)

	var h http.Handler = api
	h = metrics.InstrumentHandler(h)
	h = rl.Handler(h)
	h = auth.Handler(h)
	h = cors.Handler(h)
	h = tracing.Handler(h)
	return h
}
