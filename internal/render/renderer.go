package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/makersimpulse/layoutengine/internal/layout"
	"github.com/makersimpulse/layoutengine/pkg/logger"
)

// Recorder receives render observations. A nil Recorder disables recording.
type Recorder interface {
	NodeRendered()
	NodeFaulted()
}

// Input is everything a render call depends on.
type Input struct {
	Layout   *layout.Layout
	Loading  bool
	Err      error
	Fallback string
}

// Options tune a render call. EditMode adds diagnostic chrome (type labels,
// missing-permission and unknown-type badges) and has no semantic effect
// otherwise.
type Options struct {
	EditMode bool
}

// Renderer composes component trees into HTML. It holds no process-wide
// state: the registry and permission oracle are injected per renderer.
type Renderer struct {
	registry Registry
	oracle   PermissionOracle
	log      *logger.Logger
	recorder Recorder
}

// NewRenderer builds a renderer. The oracle may be nil, in which case every
// permission-gated node is treated as visible.
func NewRenderer(registry Registry, oracle PermissionOracle, log *logger.Logger) *Renderer {
	if log == nil {
		log = logger.NewDefault("render")
	}
	return &Renderer{registry: registry, oracle: oracle, log: log}
}

// WithRecorder attaches a metrics recorder.
func (r *Renderer) WithRecorder(rec Recorder) *Renderer {
	r.recorder = rec
	return r
}

// Render produces HTML for the given input. Loading takes precedence over an
// error, which takes precedence over content; an absent or empty layout
// yields the fallback.
func (r *Renderer) Render(in Input, opts Options) string {
	switch {
	case in.Loading:
		return `<div class="layout-loading">Loading layout...</div>`
	case in.Err != nil:
		return fmt.Sprintf(`<div class="layout-error">Failed to load layout: %s</div>`,
			html.EscapeString(in.Err.Error()))
	case in.Layout == nil || len(in.Layout.Components) == 0:
		return in.Fallback
	}

	var b strings.Builder
	for _, node := range in.Layout.Components {
		b.WriteString(r.renderNode(node, opts))
	}
	return b.String()
}

func (r *Renderer) renderNode(node layout.ComponentNode, opts Options) string {
	if !r.permitted(node, opts) {
		if opts.EditMode {
			return fmt.Sprintf(`<div class="layout-badge layout-badge-denied" data-node="%s">Missing permissions: %s</div>`,
				html.EscapeString(node.ID), html.EscapeString(strings.Join(node.Permissions, ", ")))
		}
		return ""
	}

	fn, ok := r.registry.Resolve(node.Type)
	if !ok {
		if opts.EditMode {
			return fmt.Sprintf(`<div class="layout-badge layout-badge-unknown" data-node="%s">Component not found: %s</div>`,
				html.EscapeString(node.ID), html.EscapeString(node.Type))
		}
		// Anchor so host-side hydration can still locate the slot.
		return fmt.Sprintf(`<span data-component="%s" data-node="%s"></span>`,
			html.EscapeString(node.Type), html.EscapeString(node.ID))
	}

	children := make([]string, 0, len(node.Children))
	for _, child := range node.Children {
		children = append(children, r.renderNode(child, opts))
	}

	out := r.renderIsolated(node, fn, children)
	if opts.EditMode {
		out = fmt.Sprintf(`<div class="layout-edit-node" data-node-type="%s">%s</div>`,
			html.EscapeString(node.Type), out)
	}
	return out
}

// renderIsolated contains any panic from a render function to the node that
// raised it; siblings and ancestors render normally.
func (r *Renderer) renderIsolated(node layout.ComponentNode, fn RenderFunc, children []string) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.WithField("node_id", node.ID).Errorf("component %q panicked: %v", node.Type, rec)
			if r.recorder != nil {
				r.recorder.NodeFaulted()
			}
			out = fmt.Sprintf(`<div class="layout-node-error" data-node="%s">Component failed to render</div>`,
				html.EscapeString(node.ID))
		}
	}()

	out = fn(node, children)
	if r.recorder != nil {
		r.recorder.NodeRendered()
	}
	return out
}

// permitted applies OR semantics over the node's permissions. Nodes with no
// permissions are visible to everyone. A panicking oracle fails open in view
// mode and closed in edit mode, so editors see the broken gate instead of
// silently publishing it.
func (r *Renderer) permitted(node layout.ComponentNode, opts Options) (ok bool) {
	if len(node.Permissions) == 0 || r.oracle == nil {
		return true
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.log.WithField("node_id", node.ID).Warnf("permission oracle panicked: %v", rec)
			if r.recorder != nil {
				r.recorder.NodeFaulted()
			}
			ok = !opts.EditMode
		}
	}()

	for _, cap := range node.Permissions {
		if r.oracle.HasCapability(cap) {
			return true
		}
	}
	return false
}
