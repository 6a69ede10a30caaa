package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/makersimpulse/layoutengine/internal/layout"
)

// Memory is a thread-safe in-memory LayoutStore intended for tests and
// prototyping. All activation work for one slot happens under a single lock,
// so slot exclusivity holds without backend support.
type Memory struct {
	mu      sync.RWMutex
	layouts map[string]layout.Skeleton
}

var _ LayoutStore = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{layouts: make(map[string]layout.Skeleton)}
}

func (m *Memory) CreateLayout(_ context.Context, s layout.Skeleton) (layout.Skeleton, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.ID == "" {
		s.ID = uuid.NewString()
	} else if _, exists := m.layouts[s.ID]; exists {
		return layout.Skeleton{}, fmt.Errorf("layout %s already exists", s.ID)
	}

	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	m.layouts[s.ID] = cloneSkeleton(s)
	return s, nil
}

func (m *Memory) UpdateLayout(_ context.Context, s layout.Skeleton) (layout.Skeleton, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	original, ok := m.layouts[s.ID]
	if !ok {
		return layout.Skeleton{}, fmt.Errorf("%w: %s", ErrNotFound, s.ID)
	}

	s.CreatedAt = original.CreatedAt
	s.UpdatedAt = time.Now().UTC()
	m.layouts[s.ID] = cloneSkeleton(s)
	return s, nil
}

func (m *Memory) GetLayout(_ context.Context, id string) (layout.Skeleton, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.layouts[id]
	if !ok {
		return layout.Skeleton{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return cloneSkeleton(s), nil
}

func (m *Memory) ListLayouts(_ context.Context) ([]layout.Skeleton, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]layout.Skeleton, 0, len(m.layouts))
	for _, s := range m.layouts {
		result = append(result, cloneSkeleton(s))
	}
	sortByCreatedAt(result)
	return result, nil
}

func (m *Memory) DeleteLayout(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.layouts[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.layouts, id)
	return nil
}

func (m *Memory) GetActiveLayout(_ context.Context, kind layout.Kind, scope layout.Scope) (layout.Skeleton, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var (
		best  layout.Skeleton
		found bool
	)
	for _, s := range m.layouts {
		if s.Type != kind || s.Scope != scope || !s.IsActive {
			continue
		}
		if !found || s.CreatedAt.After(best.CreatedAt) {
			best = s
			found = true
		}
	}
	if !found {
		return layout.Skeleton{}, fmt.Errorf("%w: %s/%s", ErrNoActiveLayout, kind, scope)
	}
	return cloneSkeleton(best), nil
}

func (m *Memory) ActivateLayout(_ context.Context, id string) (layout.Skeleton, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	target, ok := m.layouts[id]
	if !ok {
		return layout.Skeleton{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	now := time.Now().UTC()
	for otherID, other := range m.layouts {
		if otherID == id || other.Type != target.Type || other.Scope != target.Scope || !other.IsActive {
			continue
		}
		other.IsActive = false
		other.UpdatedAt = now
		m.layouts[otherID] = other
	}

	target.IsActive = true
	target.UpdatedAt = now
	m.layouts[id] = target
	return cloneSkeleton(target), nil
}

func (m *Memory) EnsureLayout(_ context.Context, s layout.Skeleton) (layout.Skeleton, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.layouts {
		if existing.Type == s.Type && existing.Scope == s.Scope && existing.IsActive {
			return cloneSkeleton(existing), false, nil
		}
	}

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	m.layouts[s.ID] = cloneSkeleton(s)
	return s, true, nil
}

func sortByCreatedAt(layouts []layout.Skeleton) {
	sort.Slice(layouts, func(i, j int) bool {
		return layouts[i].CreatedAt.Before(layouts[j].CreatedAt)
	})
}

func cloneSkeleton(s layout.Skeleton) layout.Skeleton {
	s.LayoutJSON.Components = cloneNodes(s.LayoutJSON.Components)
	return s
}

func cloneNodes(nodes []layout.ComponentNode) []layout.ComponentNode {
	if nodes == nil {
		return nil
	}
	out := make([]layout.ComponentNode, len(nodes))
	for i, n := range nodes {
		if n.Props != nil {
			props := make(map[string]interface{}, len(n.Props))
			for k, v := range n.Props {
				props[k] = v
			}
			n.Props = props
		}
		if n.Permissions != nil {
			n.Permissions = append([]string(nil), n.Permissions...)
		}
		n.Children = cloneNodes(n.Children)
		out[i] = n
	}
	return out
}
