// Package layouts exposes persistence operations for layout skeletons on top
// of a storage.LayoutStore.
package layouts

import (
	"context"
	"errors"
	"fmt"

	"github.com/makersimpulse/layoutengine/internal/layout"
	"github.com/makersimpulse/layoutengine/internal/storage"
	"github.com/makersimpulse/layoutengine/pkg/logger"
)

// Failure categories. Callers branch with errors.Is; anything else is a
// wrapped transport error.
var (
	ErrNotFound        = storage.ErrNotFound
	ErrNoActiveLayout  = storage.ErrNoActiveLayout
	ErrVersionConflict = errors.New("layout version conflict")
	ErrLayoutLocked    = errors.New("layout is locked")
	ErrInvalidTree     = errors.New("invalid component tree")
	ErrUnknownOp       = errors.New("unknown structural operation")
)

// Service manages layout skeletons.
type Service struct {
	store storage.LayoutStore
	log   *logger.Logger
}

// New constructs a layout service.
func New(store storage.LayoutStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("layouts")
	}
	return &Service{store: store, log: log}
}

// List returns all skeletons ordered by creation time.
func (s *Service) List(ctx context.Context) ([]layout.Skeleton, error) {
	return s.store.ListLayouts(ctx)
}

// Get retrieves a skeleton by id.
func (s *Service) Get(ctx context.Context, id string) (layout.Skeleton, error) {
	return s.store.GetLayout(ctx, id)
}

// Create persists a new skeleton from a layout. Missing fields receive the
// editor defaults; the tree is validated before anything is written.
func (s *Service) Create(ctx context.Context, l layout.Layout) (layout.Skeleton, error) {
	if l.Name == "" {
		l.Name = layout.DefaultName
	}
	if l.Type == "" {
		l.Type = layout.DefaultKind
	}
	if l.Scope == "" {
		l.Scope = layout.DefaultScope
	}
	if l.Version == 0 {
		l.Version = layout.DefaultVersion
	}
	if err := layout.ValidateTree(l.Components); err != nil {
		return layout.Skeleton{}, fmt.Errorf("%w: %v", ErrInvalidTree, err)
	}

	// Insert inactive, then take over the slot through ActivateLayout so the
	// one-active-per-slot invariant holds even under the partial unique index.
	skel := layout.ToSkeleton(l)
	skel.IsActive = false
	skel.IsLocked = false

	created, err := s.store.CreateLayout(ctx, skel)
	if err != nil {
		return layout.Skeleton{}, err
	}
	activated, err := s.store.ActivateLayout(ctx, created.ID)
	if err != nil {
		return layout.Skeleton{}, err
	}
	s.log.WithField("layout_id", activated.ID).Infof("layout created (%s/%s)", activated.Type, activated.Scope)
	return activated, nil
}

// Patch carries a sparse update. Nil fields are left untouched. Components
// replaces the whole tree and requires Version to match the record read by
// the caller; the service bumps the stored version on success.
type Patch struct {
	Name        *string
	Description *string
	Type        *layout.Kind
	Scope       *layout.Scope
	Components  []layout.ComponentNode
	HasTree     bool
	Version     int
	IsLocked    *bool
}

// Update applies a sparse patch to a skeleton. Locked records reject every
// change except unlocking.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (layout.Skeleton, error) {
	existing, err := s.store.GetLayout(ctx, id)
	if err != nil {
		return layout.Skeleton{}, err
	}
	if existing.IsLocked && !unlockOnly(patch) {
		return layout.Skeleton{}, fmt.Errorf("%w: %s", ErrLayoutLocked, id)
	}

	if patch.Name != nil {
		existing.Name = *patch.Name
	}
	if patch.Description != nil {
		existing.Description = *patch.Description
	}
	if patch.Type != nil {
		existing.Type = *patch.Type
	}
	if patch.Scope != nil {
		existing.Scope = *patch.Scope
	}
	if patch.IsLocked != nil {
		existing.IsLocked = *patch.IsLocked
	}
	if patch.HasTree {
		if err := layout.ValidateTree(patch.Components); err != nil {
			return layout.Skeleton{}, fmt.Errorf("%w: %v", ErrInvalidTree, err)
		}
		if patch.Version != existing.Version {
			return layout.Skeleton{}, fmt.Errorf("%w: have %d, got %d",
				ErrVersionConflict, existing.Version, patch.Version)
		}
		existing.Version++
		existing.LayoutJSON = layout.TreePayload{
			Components: patch.Components,
			Version:    existing.Version,
		}
	}

	updated, err := s.store.UpdateLayout(ctx, existing)
	if err != nil {
		return layout.Skeleton{}, err
	}
	s.log.WithField("layout_id", id).Debugf("layout updated to version %d", updated.Version)
	return updated, nil
}

// unlockOnly reports whether the patch does nothing except clear the lock.
func unlockOnly(p Patch) bool {
	return p.IsLocked != nil && !*p.IsLocked &&
		p.Name == nil && p.Description == nil && p.Type == nil && p.Scope == nil && !p.HasTree
}

// Delete removes a skeleton. Locked records are refused.
func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.store.GetLayout(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsLocked {
		return fmt.Errorf("%w: %s", ErrLayoutLocked, id)
	}
	if err := s.store.DeleteLayout(ctx, id); err != nil {
		return err
	}
	s.log.WithField("layout_id", id).Infof("layout deleted")
	return nil
}

// GetActive returns the active skeleton for a slot, or ErrNoActiveLayout.
func (s *Service) GetActive(ctx context.Context, kind layout.Kind, scope layout.Scope) (layout.Skeleton, error) {
	return s.store.GetActiveLayout(ctx, kind, scope)
}

// SetActive activates a skeleton, deactivating every other record in its
// (type, scope) slot.
func (s *Service) SetActive(ctx context.Context, id string) (layout.Skeleton, error) {
	skel, err := s.store.ActivateLayout(ctx, id)
	if err != nil {
		return layout.Skeleton{}, err
	}
	s.log.WithField("layout_id", id).Infof("layout activated for %s/%s", skel.Type, skel.Scope)
	return skel, nil
}

// Structural operation kinds accepted by ApplyStructural.
const (
	OpInsert   = "insert"
	OpRemove   = "remove"
	OpMoveUp   = "move_up"
	OpMoveDown = "move_down"
)

// StructuralOp is one tree edit applied server side.
type StructuralOp struct {
	Op       string                `json:"op"`
	NodeID   string                `json:"node_id,omitempty"`
	ParentID string                `json:"parent_id,omitempty"`
	Node     *layout.ComponentNode `json:"node,omitempty"`
}

// ApplyStructural reads the skeleton, applies one tree primitive and writes
// the result back through Update, so version bumping and lock checks apply.
func (s *Service) ApplyStructural(ctx context.Context, id string, op StructuralOp) (layout.Skeleton, error) {
	existing, err := s.store.GetLayout(ctx, id)
	if err != nil {
		return layout.Skeleton{}, err
	}

	tree := existing.LayoutJSON.Components
	switch op.Op {
	case OpInsert:
		if op.Node == nil {
			return layout.Skeleton{}, fmt.Errorf("%w: insert requires a node", ErrInvalidTree)
		}
		if op.ParentID == "" {
			tree = append(append([]layout.ComponentNode{}, tree...), *op.Node)
		} else {
			tree = layout.InsertChild(tree, op.ParentID, *op.Node)
		}
	case OpRemove:
		tree = layout.RemoveByID(tree, op.NodeID)
	case OpMoveUp:
		tree = layout.MoveUp(tree, op.NodeID)
	case OpMoveDown:
		tree = layout.MoveDown(tree, op.NodeID)
	default:
		return layout.Skeleton{}, fmt.Errorf("%w: %q", ErrUnknownOp, op.Op)
	}

	return s.Update(ctx, id, Patch{
		Components: tree,
		HasTree:    true,
		Version:    existing.Version,
	})
}
