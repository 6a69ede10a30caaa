package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/makersimpulse/layoutengine/internal/layout"
)

type capSet map[string]bool

func (c capSet) HasCapability(cap string) bool { return c[cap] }

type panicOracle struct{}

func (panicOracle) HasCapability(string) bool { panic("malformed capability data") }

type countRecorder struct {
	rendered int
	faulted  int
}

func (c *countRecorder) NodeRendered() { c.rendered++ }
func (c *countRecorder) NodeFaulted()  { c.faulted++ }

func pageLayout(nodes ...layout.ComponentNode) *layout.Layout {
	return &layout.Layout{Name: "page", Type: layout.KindPage, Scope: layout.ScopeSite, Components: nodes}
}

func TestRenderStatePrecedence(t *testing.T) {
	r := NewRenderer(Builtins(), nil, nil)

	out := r.Render(Input{Loading: true, Err: errors.New("x"), Fallback: "fb"}, Options{})
	if !strings.Contains(out, "Loading layout") {
		t.Errorf("loading must win over error and fallback, got %q", out)
	}

	out = r.Render(Input{Err: errors.New("store <down>")}, Options{})
	if !strings.Contains(out, "Failed to load layout") {
		t.Errorf("expected error panel, got %q", out)
	}
	if strings.Contains(out, "<down>") {
		t.Error("error text must be HTML-escaped")
	}

	out = r.Render(Input{Fallback: "<p>static nav</p>"}, Options{})
	if out != "<p>static nav</p>" {
		t.Errorf("expected fallback for nil layout, got %q", out)
	}

	out = r.Render(Input{Layout: pageLayout()}, Options{})
	if out != "" {
		t.Errorf("empty layout with no fallback renders nothing, got %q", out)
	}
}

func TestRenderComposition(t *testing.T) {
	r := NewRenderer(Builtins(), nil, nil)
	l := pageLayout(layout.ComponentNode{
		ID:   "root",
		Type: "container",
		Children: []layout.ComponentNode{
			{ID: "h", Type: "heading", Props: map[string]interface{}{"level": 1, "content": "Hello"}},
			{ID: "t", Type: "text", Props: map[string]interface{}{"content": "a & b"}},
		},
	})

	out := r.Render(Input{Layout: l}, Options{})
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "Hello") {
		t.Errorf("heading missing: %q", out)
	}
	if !strings.Contains(out, "a &amp; b") {
		t.Errorf("text content must be escaped: %q", out)
	}
	if strings.Index(out, "<h1") > strings.Index(out, "<p") {
		t.Error("children must render in tree order")
	}
}

func TestPermissionGateORSemantics(t *testing.T) {
	r := NewRenderer(Builtins(), capSet{"admin:metrics:view": true}, nil)
	l := pageLayout(
		layout.ComponentNode{ID: "open", Type: "text", Props: map[string]interface{}{"content": "open"}},
		layout.ComponentNode{
			ID: "gated", Type: "text",
			Props:       map[string]interface{}{"content": "gated"},
			Permissions: []string{"admin:users:view", "admin:metrics:view"},
		},
		layout.ComponentNode{
			ID: "denied", Type: "text",
			Props:       map[string]interface{}{"content": "denied"},
			Permissions: []string{"admin:users:view"},
		},
	)

	out := r.Render(Input{Layout: l}, Options{})
	if !strings.Contains(out, "open") {
		t.Error("ungated node must always render")
	}
	if !strings.Contains(out, "gated") {
		t.Error("one matching capability suffices")
	}
	if strings.Contains(out, "denied") {
		t.Error("node without any matching capability must be dropped in view mode")
	}

	edit := r.Render(Input{Layout: l}, Options{EditMode: true})
	if !strings.Contains(edit, "Missing permissions: admin:users:view") {
		t.Errorf("edit mode must badge denied nodes, got %q", edit)
	}
}

func TestPermissionOraclePanic(t *testing.T) {
	l := pageLayout(layout.ComponentNode{
		ID: "gated", Type: "text",
		Props:       map[string]interface{}{"content": "secret-ish"},
		Permissions: []string{"admin:users:view"},
	})
	r := NewRenderer(Builtins(), panicOracle{}, nil)

	if out := r.Render(Input{Layout: l}, Options{}); !strings.Contains(out, "secret-ish") {
		t.Error("view mode fails open on oracle panic")
	}
	if out := r.Render(Input{Layout: l}, Options{EditMode: true}); strings.Contains(out, "secret-ish") {
		t.Error("edit mode fails closed on oracle panic")
	}
}

func TestUnknownComponentType(t *testing.T) {
	r := NewRenderer(Builtins(), nil, nil)
	l := pageLayout(layout.ComponentNode{ID: "w", Type: "StatsCards"})

	out := r.Render(Input{Layout: l}, Options{})
	if out != `<span data-component="StatsCards" data-node="w"></span>` {
		t.Errorf("view mode renders an empty anchor, got %q", out)
	}

	edit := r.Render(Input{Layout: l}, Options{EditMode: true})
	if !strings.Contains(edit, "Component not found: StatsCards") {
		t.Errorf("edit mode renders a diagnostic, got %q", edit)
	}
}

func TestNodeFaultIsolation(t *testing.T) {
	reg := Builtins()
	reg.Register("boom", func(layout.ComponentNode, []string) string {
		panic("broken widget")
	})
	rec := &countRecorder{}
	r := NewRenderer(reg, nil, nil).WithRecorder(rec)

	l := pageLayout(layout.ComponentNode{
		ID:   "root",
		Type: "container",
		Children: []layout.ComponentNode{
			{ID: "before", Type: "text", Props: map[string]interface{}{"content": "before"}},
			{ID: "bad", Type: "boom"},
			{ID: "after", Type: "text", Props: map[string]interface{}{"content": "after"}},
		},
	})

	out := r.Render(Input{Layout: l}, Options{})
	if !strings.Contains(out, "before") || !strings.Contains(out, "after") {
		t.Errorf("siblings of a faulting node must render: %q", out)
	}
	if !strings.Contains(out, `data-node="bad"`) || !strings.Contains(out, "Component failed to render") {
		t.Errorf("faulting node must leave an inline marker: %q", out)
	}
	if rec.faulted != 1 {
		t.Errorf("expected 1 fault recorded, got %d", rec.faulted)
	}
	if rec.rendered != 3 { // before, after, root
		t.Errorf("expected 3 rendered nodes, got %d", rec.rendered)
	}
}

func TestEditModeChrome(t *testing.T) {
	r := NewRenderer(Builtins(), nil, nil)
	l := pageLayout(layout.ComponentNode{ID: "t", Type: "text", Props: map[string]interface{}{"content": "x"}})

	view := r.Render(Input{Layout: l}, Options{})
	edit := r.Render(Input{Layout: l}, Options{EditMode: true})
	if strings.Contains(view, "layout-edit-node") {
		t.Error("view mode must not carry edit chrome")
	}
	if !strings.Contains(edit, `data-node-type="text"`) {
		t.Errorf("edit mode labels node types: %q", edit)
	}
	if !strings.Contains(edit, view) {
		t.Error("edit chrome wraps the view-mode output without changing it")
	}
}

func TestDefaultLayoutsRenderEndToEnd(t *testing.T) {
	r := NewRenderer(Builtins(), capSet{}, nil)
	for _, slot := range layout.CoreSlots() {
		def, ok := layout.DefaultForSlot(slot)
		if !ok {
			t.Fatalf("no default for %s/%s", slot.Type, slot.Scope)
		}
		out := r.Render(Input{Layout: &def}, Options{})
		if out == "" {
			t.Errorf("default %s/%s rendered empty", slot.Type, slot.Scope)
		}
	}
}
