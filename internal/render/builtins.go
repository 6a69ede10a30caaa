package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/makersimpulse/layoutengine/internal/layout"
)

// Builtins returns a registry preloaded with the structural component set
// the default layouts are built from. Widget leaves (Logo, UserMenu, ...)
// belong to the host application and are not registered here.
func Builtins() *FuncRegistry {
	r := NewFuncRegistry()
	r.Register("container", renderContainer)
	r.Register("nav", wrapTag("nav"))
	r.Register("footer", wrapTag("footer"))
	r.Register("grid", renderGrid)
	r.Register("card", renderCard)
	r.Register("heading", renderHeading)
	r.Register("text", renderText)
	r.Register("link", renderLink)
	r.Register("list", renderList)
	r.Register("image", renderImage)
	return r
}

func stringProp(node layout.ComponentNode, key string) string {
	if node.Props == nil {
		return ""
	}
	if v, ok := node.Props[key].(string); ok {
		return v
	}
	return ""
}

func intProp(node layout.ComponentNode, key string, def int) int {
	if node.Props == nil {
		return def
	}
	switch v := node.Props[key].(type) {
	case int:
		return v
	case float64:
		// JSON numbers decode as float64.
		return int(v)
	}
	return def
}

func wrapTag(tag string) RenderFunc {
	return func(node layout.ComponentNode, children []string) string {
		return fmt.Sprintf(`<%s data-node="%s">%s</%s>`,
			tag, html.EscapeString(node.ID), strings.Join(children, ""), tag)
	}
}

func renderContainer(node layout.ComponentNode, children []string) string {
	class := "layout-container"
	if stringProp(node, "direction") == "row" {
		class += " layout-row"
	}
	return fmt.Sprintf(`<div class="%s" data-node="%s">%s</div>`,
		class, html.EscapeString(node.ID), strings.Join(children, ""))
}

func renderGrid(node layout.ComponentNode, children []string) string {
	cols := intProp(node, "cols", 1)
	return fmt.Sprintf(`<div class="layout-grid" data-cols="%d" data-node="%s">%s</div>`,
		cols, html.EscapeString(node.ID), strings.Join(children, ""))
}

func renderCard(node layout.ComponentNode, children []string) string {
	return fmt.Sprintf(`<div class="layout-card" data-node="%s">%s</div>`,
		html.EscapeString(node.ID), strings.Join(children, ""))
}

func renderHeading(node layout.ComponentNode, children []string) string {
	level := intProp(node, "level", 2)
	if level < 1 || level > 6 {
		level = 2
	}
	return fmt.Sprintf(`<h%d data-node="%s">%s</h%d>`,
		level, html.EscapeString(node.ID), html.EscapeString(stringProp(node, "content")), level)
}

func renderText(node layout.ComponentNode, children []string) string {
	return fmt.Sprintf(`<p data-node="%s">%s</p>`,
		html.EscapeString(node.ID), html.EscapeString(stringProp(node, "content")))
}

func renderLink(node layout.ComponentNode, children []string) string {
	return fmt.Sprintf(`<a href="%s" data-node="%s">%s</a>`,
		html.EscapeString(stringProp(node, "href")),
		html.EscapeString(node.ID),
		html.EscapeString(stringProp(node, "content")))
}

func renderList(node layout.ComponentNode, children []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<ul data-node="%s">`, html.EscapeString(node.ID))
	for _, child := range children {
		b.WriteString("<li>")
		b.WriteString(child)
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

func renderImage(node layout.ComponentNode, children []string) string {
	return fmt.Sprintf(`<img src="%s" alt="%s" data-node="%s"/>`,
		html.EscapeString(stringProp(node, "src")),
		html.EscapeString(stringProp(node, "alt")),
		html.EscapeString(node.ID))
}
