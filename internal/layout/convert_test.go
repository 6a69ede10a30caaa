package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkeletonRoundTrip(t *testing.T) {
	l := Layout{
		ID:          "layout-1",
		Name:        "Main TopNav",
		Type:        KindTopNav,
		Scope:       ScopeSite,
		Description: "site navigation",
		Components:  sampleTree(),
		Version:     3,
	}

	got := FromSkeleton(ToSkeleton(l))
	assert.Equal(t, l, got)
}

func TestDecodeTreePayload(t *testing.T) {
	t.Run("well formed", func(t *testing.T) {
		raw := []byte(`{"components":[{"id":"root","type":"container"}],"version":2}`)
		payload, err := DecodeTreePayload(raw)
		require.NoError(t, err)
		assert.Equal(t, 2, payload.Version)
		require.Len(t, payload.Components, 1)
		assert.Equal(t, "root", payload.Components[0].ID)
	})

	t.Run("empty defaults", func(t *testing.T) {
		payload, err := DecodeTreePayload(nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultVersion, payload.Version)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := DecodeTreePayload([]byte(`{"components":`))
		require.ErrorIs(t, err, ErrMalformedPayload)
	})

	t.Run("missing components", func(t *testing.T) {
		_, err := DecodeTreePayload([]byte(`{"version":1}`))
		require.ErrorIs(t, err, ErrMalformedPayload)
	})

	t.Run("wrong shape", func(t *testing.T) {
		_, err := DecodeTreePayload([]byte(`{"components":"nope","version":1}`))
		require.ErrorIs(t, err, ErrMalformedPayload)
	})

	t.Run("zero version defaults", func(t *testing.T) {
		payload, err := DecodeTreePayload([]byte(`{"components":[]}`))
		require.NoError(t, err)
		assert.Equal(t, DefaultVersion, payload.Version)
	})
}

func TestValidateTree(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateTree(sampleTree()))
	})

	t.Run("duplicate id", func(t *testing.T) {
		tree := sampleTree()
		tree = InsertChild(tree, "aside", ComponentNode{ID: "b2", Type: "text"})
		assert.ErrorIs(t, ValidateTree(tree), ErrDuplicateID)
	})

	t.Run("empty id", func(t *testing.T) {
		tree := []ComponentNode{{Type: "container"}}
		assert.ErrorIs(t, ValidateTree(tree), ErrEmptyID)
	})

	t.Run("empty type", func(t *testing.T) {
		tree := []ComponentNode{{ID: "x"}}
		assert.ErrorIs(t, ValidateTree(tree), ErrEmptyType)
	})

	t.Run("too deep", func(t *testing.T) {
		node := ComponentNode{ID: "leaf", Type: "text"}
		for i := 0; i < MaxTreeDepth+1; i++ {
			node = ComponentNode{ID: nodeID(i), Type: "container", Children: []ComponentNode{node}}
		}
		assert.ErrorIs(t, ValidateTree([]ComponentNode{node}), ErrTreeTooDeep)
	})
}

func nodeID(i int) string {
	return "n" + string(rune('a'+i%26)) + string(rune('0'+i%10))
}

func TestDefaultLayoutsAreValid(t *testing.T) {
	for _, slot := range CoreSlots() {
		l, ok := DefaultForSlot(slot)
		require.True(t, ok, "missing default for slot %v", slot)
		assert.Equal(t, slot.Type, l.Type)
		assert.Equal(t, slot.Scope, l.Scope)
		assert.NoError(t, ValidateTree(l.Components), "slot %v", slot)
		assert.NotEmpty(t, l.Name)
	}
}
