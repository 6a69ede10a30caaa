// Package httpapi exposes the layout engine's REST surface.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/makersimpulse/layoutengine/internal/layout"
	"github.com/makersimpulse/layoutengine/internal/metrics"
	"github.com/makersimpulse/layoutengine/internal/render"
	"github.com/makersimpulse/layoutengine/internal/services/layouts"
	"github.com/makersimpulse/layoutengine/pkg/logger"
)

// handler bundles the HTTP endpoints over the layout service.
type handler struct {
	layouts  *layouts.Service
	registry render.Registry
	log      *logger.Logger
}

// NewHandler returns a mux exposing the layout REST API. The registry backs
// the render endpoint; pass render.Builtins() unless the host registers its
// own widgets.
func NewHandler(svc *layouts.Service, registry render.Registry, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &handler{layouts: svc, registry: registry, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.health)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/layouts", h.collection)
	mux.HandleFunc("/layouts/", h.resource)
	return mux
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		all, err := h.layouts.List(r.Context())
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		if all == nil {
			all = []layout.Skeleton{}
		}
		writeJSON(w, http.StatusOK, all)

	case http.MethodPost:
		var payload struct {
			Name        string                 `json:"name"`
			Type        layout.Kind            `json:"type"`
			Scope       layout.Scope           `json:"scope"`
			Description string                 `json:"description"`
			Components  []layout.ComponentNode `json:"components"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		created, err := h.layouts.Create(r.Context(), layout.Layout{
			Name:        payload.Name,
			Type:        payload.Type,
			Scope:       payload.Scope,
			Description: payload.Description,
			Components:  payload.Components,
		})
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) resource(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/layouts"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if parts[0] == "active" && len(parts) == 1 {
		h.active(w, r)
		return
	}

	id := parts[0]
	if len(parts) == 1 {
		h.byID(w, r, id)
		return
	}

	switch parts[1] {
	case "activate":
		h.activate(w, r, id)
	case "components":
		h.components(w, r, id)
	case "render":
		h.renderLayout(w, r, id)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *handler) byID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		skel, err := h.layouts.Get(r.Context(), id)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, skel)

	case http.MethodPut:
		var payload struct {
			Name        *string                 `json:"name"`
			Description *string                 `json:"description"`
			Type        *layout.Kind            `json:"type"`
			Scope       *layout.Scope           `json:"scope"`
			Components  *[]layout.ComponentNode `json:"components"`
			Version     int                     `json:"version"`
			IsLocked    *bool                   `json:"is_locked"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		patch := layouts.Patch{
			Name:        payload.Name,
			Description: payload.Description,
			Type:        payload.Type,
			Scope:       payload.Scope,
			Version:     payload.Version,
			IsLocked:    payload.IsLocked,
		}
		if payload.Components != nil {
			patch.Components = *payload.Components
			patch.HasTree = true
		}
		updated, err := h.layouts.Update(r.Context(), id, patch)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := h.layouts.Delete(r.Context(), id); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) active(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	kind := layout.Kind(r.URL.Query().Get("type"))
	scope := layout.Scope(r.URL.Query().Get("scope"))
	if kind == "" || scope == "" {
		writeError(w, http.StatusBadRequest, errors.New("type and scope query parameters are required"))
		return
	}
	skel, err := h.layouts.GetActive(r.Context(), kind, scope)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, skel)
}

func (h *handler) activate(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	skel, err := h.layouts.SetActive(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, skel)
}

func (h *handler) components(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var op layouts.StructuralOp
	if err := decodeJSON(r.Body, &op); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	updated, err := h.layouts.ApplyStructural(r.Context(), id, op)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// renderLayout serves the server-side rendering of a stored layout. The
// viewer's capabilities arrive in X-Capabilities as a comma-separated list;
// edit=true turns on diagnostic chrome.
func (h *handler) renderLayout(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	skel, err := h.layouts.Get(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	oracle := newCapabilitySet(r.Header.Get("X-Capabilities"))
	renderer := render.NewRenderer(h.registry, oracle, h.log).
		WithRecorder(metrics.RenderRecorder{})

	l := layout.FromSkeleton(skel)
	html := renderer.Render(render.Input{Layout: &l}, render.Options{
		EditMode: r.URL.Query().Get("edit") == "true",
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

// capabilityHeader is a PermissionOracle over a comma-separated header value.
type capabilityHeader map[string]bool

func (c capabilityHeader) HasCapability(cap string) bool { return c[cap] }

func newCapabilitySet(raw string) capabilityHeader {
	set := make(capabilityHeader)
	for _, cap := range strings.Split(raw, ",") {
		if cap = strings.TrimSpace(cap); cap != "" {
			set[cap] = true
		}
	}
	return set
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, layouts.ErrNotFound), errors.Is(err, layouts.ErrNoActiveLayout):
		return http.StatusNotFound
	case errors.Is(err, layouts.ErrVersionConflict), errors.Is(err, layouts.ErrLayoutLocked):
		return http.StatusConflict
	case errors.Is(err, layouts.ErrInvalidTree):
		return http.StatusUnprocessableEntity
	case errors.Is(err, layouts.ErrUnknownOp):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
