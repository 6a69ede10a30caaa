// Package layout defines the component tree model for composable page
// regions and the pure structural operations over it.
package layout

import "time"

// Kind discriminates the slot a layout fills.
type Kind string

const (
	KindDashboard Kind = "dashboard"
	KindTopNav    Kind = "topnav"
	KindFooter    Kind = "footer"
	KindSidebar   Kind = "sidebar"
	KindUserMenu  Kind = "usermenu"
	KindPage      Kind = "page"
	KindSection   Kind = "section"
	KindWidget    Kind = "widget"
	KindModal     Kind = "modal"
)

// Scope discriminates visibility and ownership of a layout.
type Scope string

const (
	ScopeAdmin  Scope = "admin"
	ScopeUser   Scope = "user"
	ScopePublic Scope = "public"
	ScopeSystem Scope = "system"
	ScopeSite   Scope = "site"
)

// ComponentNode is one element of a layout tree. Children order is
// semantically significant: it is the render order and the axis the sibling
// reorder operations act on.
type ComponentNode struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Props       map[string]interface{} `json:"props,omitempty"`
	Permissions []string               `json:"permissions,omitempty"`
	Children    []ComponentNode        `json:"children,omitempty"`
}

// Layout is the working, edit-time representation of one layout.
type Layout struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        Kind            `json:"type"`
	Scope       Scope           `json:"scope"`
	Description string          `json:"description,omitempty"`
	Components  []ComponentNode `json:"components"`
	Version     int             `json:"version"`
}

// TreePayload is the serialized tree stored in a skeleton's layout_json
// column.
type TreePayload struct {
	Components []ComponentNode `json:"components"`
	Version    int             `json:"version"`
}

// Skeleton is the persisted, versioned record wrapping a serialized
// component tree plus activation and lock flags.
type Skeleton struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        Kind        `json:"type"`
	Scope       Scope       `json:"scope"`
	Description string      `json:"description,omitempty"`
	LayoutJSON  TreePayload `json:"layout_json"`
	IsActive    bool        `json:"is_active"`
	IsLocked    bool        `json:"is_locked"`
	Version     int         `json:"version"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Slot identifies one named layout region, e.g. topnav for the site scope.
type Slot struct {
	Type  Kind
	Scope Scope
}

// Defaults applied when a skeleton is created without the corresponding
// fields set.
const (
	DefaultName    = "New Layout"
	DefaultKind    = KindPage
	DefaultScope   = ScopeSite
	DefaultVersion = 1
)
