// Package storage defines the persistence boundary for layout skeletons and
// an in-memory implementation of it.
package storage

import (
	"context"
	"errors"

	"github.com/makersimpulse/layoutengine/internal/layout"
)

// ErrNotFound is returned when a skeleton id does not exist.
var ErrNotFound = errors.New("layout not found")

// ErrNoActiveLayout is returned by GetActiveLayout when the slot has no
// active record. It is deliberately distinct from transport failures: the
// seeder treats it as "need to create", other callers as "no default
// available".
var ErrNoActiveLayout = errors.New("no active layout found")

// LayoutStore persists layout skeletons.
//
// Implementations own id assignment (when empty) and the created_at /
// updated_at timestamps. ActivateLayout must leave at most one active record
// per (type, scope) slot; backends with transactional support perform the
// deactivate-then-activate sequence atomically.
type LayoutStore interface {
	CreateLayout(ctx context.Context, s layout.Skeleton) (layout.Skeleton, error)
	UpdateLayout(ctx context.Context, s layout.Skeleton) (layout.Skeleton, error)
	GetLayout(ctx context.Context, id string) (layout.Skeleton, error)
	ListLayouts(ctx context.Context) ([]layout.Skeleton, error)
	DeleteLayout(ctx context.Context, id string) error

	// GetActiveLayout returns the most recently created active skeleton for
	// the slot, or ErrNoActiveLayout.
	GetActiveLayout(ctx context.Context, kind layout.Kind, scope layout.Scope) (layout.Skeleton, error)

	// ActivateLayout deactivates every record sharing the target's slot and
	// activates the target.
	ActivateLayout(ctx context.Context, id string) (layout.Skeleton, error)

	// EnsureLayout creates the skeleton unless an active record already
	// occupies its slot. The boolean reports whether a row was inserted.
	EnsureLayout(ctx context.Context, s layout.Skeleton) (layout.Skeleton, bool, error)
}
