// Package render turns component trees into HTML through a capability
// registry, with per-node permission gating and fault isolation.
package render

import (
	"sync"

	"github.com/makersimpulse/layoutengine/internal/layout"
)

// RenderFunc produces the HTML for one node. The renderer resolves and
// renders children first and hands them over already serialized, so a
// RenderFunc only decides how to wrap them.
type RenderFunc func(node layout.ComponentNode, children []string) string

// Registry resolves component types to render functions.
type Registry interface {
	Resolve(componentType string) (RenderFunc, bool)
}

// PermissionOracle answers capability checks for the viewer a render runs
// for. Implementations are allowed to panic on malformed capability data; the
// renderer contains such panics per node.
type PermissionOracle interface {
	HasCapability(capability string) bool
}

// FuncRegistry is a Registry backed by a map. Registration is typically done
// at startup but is safe at any time.
type FuncRegistry struct {
	mu    sync.RWMutex
	funcs map[string]RenderFunc
}

// NewFuncRegistry creates an empty registry.
func NewFuncRegistry() *FuncRegistry {
	return &FuncRegistry{funcs: make(map[string]RenderFunc)}
}

// Register binds a component type to its render function, replacing any
// previous binding.
func (r *FuncRegistry) Register(componentType string, fn RenderFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[componentType] = fn
}

// Resolve looks up the render function for a component type.
func (r *FuncRegistry) Resolve(componentType string) (RenderFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[componentType]
	return fn, ok
}

// Types returns the registered component types, for diagnostics.
func (r *FuncRegistry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.funcs))
	for t := range r.funcs {
		out = append(out, t)
	}
	return out
}
