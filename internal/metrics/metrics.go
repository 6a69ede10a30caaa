// Package metrics exposes the Prometheus collectors of the layout engine on
// a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "layoutengine",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "layoutengine",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "layoutengine",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	renderNodes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "layoutengine",
			Subsystem: "render",
			Name:      "nodes_total",
			Help:      "Total number of component nodes rendered.",
		},
	)

	renderFaults = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "layoutengine",
			Subsystem: "render",
			Name:      "node_faults_total",
			Help:      "Total number of component nodes whose render was contained after a fault.",
		},
	)

	seededLayouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "layoutengine",
			Subsystem: "seeder",
			Name:      "layouts_created_total",
			Help:      "Total number of default layouts created by the seeder.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		renderNodes,
		renderFaults,
		seededLayouts,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RenderRecorder implements the renderer's Recorder interface.
type RenderRecorder struct{}

// NodeRendered counts one successfully rendered node.
func (RenderRecorder) NodeRendered() { renderNodes.Inc() }

// NodeFaulted counts one contained node fault.
func (RenderRecorder) NodeFaulted() { renderFaults.Inc() }

// RecordSeededLayouts counts layouts created by a seeder run.
func RecordSeededLayouts(n int) {
	if n <= 0 {
		return
	}
	seededLayouts.Add(float64(n))
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// canonicalPath collapses record ids so the path label stays low-cardinality.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if parts[0] != "layouts" {
		return "/" + parts[0]
	}
	switch len(parts) {
	case 1:
		return "/layouts"
	case 2:
		if parts[1] == "active" {
			return "/layouts/active"
		}
		return "/layouts/:id"
	default:
		return "/layouts/:id/" + parts[2]
	}
}
