package layout

import (
	"errors"
	"fmt"
)

// Validation failures for component trees.
var (
	ErrEmptyID      = errors.New("component id is empty")
	ErrEmptyType    = errors.New("component type is empty")
	ErrDuplicateID  = errors.New("duplicate component id")
	ErrTreeTooDeep  = errors.New("component tree exceeds maximum depth")
)

// MaxTreeDepth bounds recursion during validation and rendering. Trees this
// deep indicate corrupted or adversarial input, not a real page.
const MaxTreeDepth = 64

// ValidateTree checks the structural invariants a tree must satisfy before
// it may be persisted: every node has an id and a type, ids are unique
// within the tree, and nesting stays within MaxTreeDepth.
func ValidateTree(tree []ComponentNode) error {
	seen := make(map[string]struct{})
	return validateLevel(tree, seen, 1)
}

func validateLevel(tree []ComponentNode, seen map[string]struct{}, depth int) error {
	if depth > MaxTreeDepth {
		return ErrTreeTooDeep
	}
	for _, node := range tree {
		if node.ID == "" {
			return ErrEmptyID
		}
		if node.Type == "" {
			return fmt.Errorf("%w: node %q", ErrEmptyType, node.ID)
		}
		if _, dup := seen[node.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateID, node.ID)
		}
		seen[node.ID] = struct{}{}
		if err := validateLevel(node.Children, seen, depth+1); err != nil {
			return err
		}
	}
	return nil
}
