// Package editor holds the single-operator editing session for one layout:
// a structured tree and its JSON text, kept in sync, plus save semantics.
package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/makersimpulse/layoutengine/internal/layout"
	"github.com/makersimpulse/layoutengine/internal/render"
	"github.com/makersimpulse/layoutengine/internal/services/layouts"
	"github.com/makersimpulse/layoutengine/pkg/logger"
)

var (
	// ErrReadOnly is returned by every mutation on a read-only session.
	ErrReadOnly = errors.New("editor is read-only")
	// ErrTextInvalid blocks Save while the JSON pane does not parse.
	ErrTextInvalid = errors.New("layout text is not valid JSON")
)

// Service is the slice of the layout service the editor needs.
type Service interface {
	Create(ctx context.Context, l layout.Layout) (layout.Skeleton, error)
	Update(ctx context.Context, id string, patch layouts.Patch) (layout.Skeleton, error)
}

// Editor maintains the dual representation of one layout under edit. It is a
// session object for a single operator and is not safe for concurrent use.
type Editor struct {
	svc      Service
	renderer *render.Renderer
	log      *logger.Logger

	current  layout.Layout
	text     string
	textErr  error
	version  int // version last read from the store
	readOnly bool
	editMode bool
	onSave   func(layout.Skeleton)
}

// New builds an editor session. The renderer may be nil if Preview is never
// used.
func New(svc Service, renderer *render.Renderer, log *logger.Logger) *Editor {
	if log == nil {
		log = logger.NewDefault("editor")
	}
	return &Editor{svc: svc, renderer: renderer, log: log}
}

// SetReadOnly toggles read-only mode. Representation switching stays allowed;
// every mutation fails with ErrReadOnly.
func (e *Editor) SetReadOnly(ro bool) { e.readOnly = ro }

// SetEditMode toggles diagnostic chrome in Preview output.
func (e *Editor) SetEditMode(on bool) { e.editMode = on }

// OnSave registers a callback invoked after every successful save.
func (e *Editor) OnSave(fn func(layout.Skeleton)) { e.onSave = fn }

// SetLayout loads a layout into the session, discarding any pending edits
// and re-deriving the JSON text. The layout's version becomes the version
// forwarded on the next save.
func (e *Editor) SetLayout(l layout.Layout) {
	e.current = l
	e.version = l.Version
	e.textErr = nil
	e.text = marshalTree(l.Components)
}

// Layout returns the session's working copy.
func (e *Editor) Layout() layout.Layout { return e.current }

// Text returns the JSON representation of the component tree.
func (e *Editor) Text() string { return e.text }

// TextError reports the parse error of the last SetText, if any.
func (e *Editor) TextError() error { return e.textErr }

// SetText replaces the JSON pane content, parsing on every change. On parse
// failure the previous tree is kept, the error is retained and Save is
// blocked until the text parses again.
func (e *Editor) SetText(text string) error {
	if e.readOnly {
		return ErrReadOnly
	}
	e.text = text

	var tree []layout.ComponentNode
	if err := json.Unmarshal([]byte(text), &tree); err != nil {
		e.textErr = fmt.Errorf("%w: %v", ErrTextInvalid, err)
		return e.textErr
	}
	e.textErr = nil
	e.current.Components = tree
	return nil
}

// SetName updates the layout name locally.
func (e *Editor) SetName(name string) error {
	if e.readOnly {
		return ErrReadOnly
	}
	e.current.Name = name
	return nil
}

// SetDescription updates the description locally.
func (e *Editor) SetDescription(desc string) error {
	if e.readOnly {
		return ErrReadOnly
	}
	e.current.Description = desc
	return nil
}

// SetKind updates the layout type locally.
func (e *Editor) SetKind(kind layout.Kind) error {
	if e.readOnly {
		return ErrReadOnly
	}
	e.current.Type = kind
	return nil
}

// SetScope updates the layout scope locally.
func (e *Editor) SetScope(scope layout.Scope) error {
	if e.readOnly {
		return ErrReadOnly
	}
	e.current.Scope = scope
	return nil
}

// AddComponent appends a node under parentID (or at the root level when
// parentID is empty) and re-derives the text.
func (e *Editor) AddComponent(parentID string, node layout.ComponentNode) error {
	if e.readOnly {
		return ErrReadOnly
	}
	if parentID == "" {
		e.current.Components = append(append([]layout.ComponentNode{}, e.current.Components...), node)
	} else {
		e.current.Components = layout.InsertChild(e.current.Components, parentID, node)
	}
	e.syncText()
	return nil
}

// RemoveComponent removes the node with the given id and its subtree.
func (e *Editor) RemoveComponent(id string) error {
	if e.readOnly {
		return ErrReadOnly
	}
	e.current.Components = layout.RemoveByID(e.current.Components, id)
	e.syncText()
	return nil
}

// MoveComponentUp swaps the node with its preceding sibling.
func (e *Editor) MoveComponentUp(id string) error {
	if e.readOnly {
		return ErrReadOnly
	}
	e.current.Components = layout.MoveUp(e.current.Components, id)
	e.syncText()
	return nil
}

// MoveComponentDown swaps the node with its following sibling.
func (e *Editor) MoveComponentDown(id string) error {
	if e.readOnly {
		return ErrReadOnly
	}
	e.current.Components = layout.MoveDown(e.current.Components, id)
	e.syncText()
	return nil
}

// Save validates and persists the session. New layouts (empty id) go through
// Create, existing ones through a full sparse update forwarding the version
// last read. On failure the session keeps its edits so nothing is lost; a
// stale version surfaces as layouts.ErrVersionConflict.
func (e *Editor) Save(ctx context.Context) (layout.Skeleton, error) {
	if e.readOnly {
		return layout.Skeleton{}, ErrReadOnly
	}
	if e.textErr != nil {
		return layout.Skeleton{}, e.textErr
	}
	if err := layout.ValidateTree(e.current.Components); err != nil {
		return layout.Skeleton{}, fmt.Errorf("%w: %v", layouts.ErrInvalidTree, err)
	}

	var (
		saved layout.Skeleton
		err   error
	)
	if e.current.ID == "" {
		saved, err = e.svc.Create(ctx, e.current)
	} else {
		saved, err = e.svc.Update(ctx, e.current.ID, layouts.Patch{
			Name:        &e.current.Name,
			Description: &e.current.Description,
			Type:        &e.current.Type,
			Scope:       &e.current.Scope,
			Components:  e.current.Components,
			HasTree:     true,
			Version:     e.version,
		})
	}
	if err != nil {
		return layout.Skeleton{}, err
	}

	e.SetLayout(layout.FromSkeleton(saved))
	if e.onSave != nil {
		e.onSave(saved)
	}
	e.log.WithField("layout_id", saved.ID).Debugf("layout saved at version %d", saved.Version)
	return saved, nil
}

// Preview renders the working copy, honoring the session's edit-mode flag.
func (e *Editor) Preview(fallback string) string {
	if e.renderer == nil {
		return fallback
	}
	l := e.current
	return e.renderer.Render(render.Input{Layout: &l, Fallback: fallback},
		render.Options{EditMode: e.editMode})
}

func (e *Editor) syncText() {
	e.textErr = nil
	e.text = marshalTree(e.current.Components)
}

func marshalTree(tree []layout.ComponentNode) string {
	if tree == nil {
		tree = []layout.ComponentNode{}
	}
	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		// Component trees are plain data; marshaling cannot fail in practice.
		return "[]"
	}
	return string(data)
}
