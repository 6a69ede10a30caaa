package layout

// Structural operations over component trees. Each function returns a new
// slice and leaves its input untouched; subtrees the operation does not reach
// come back value-equal to the originals. A target id that does not exist
// anywhere in the tree is a silent no-op, not an error: callers that need to
// know whether anything changed must compare trees themselves.

// FindByID returns the first node with the given id in pre-order,
// depth-first traversal. Ids are assumed unique within a tree; under
// duplicates the first match wins.
func FindByID(tree []ComponentNode, id string) (ComponentNode, bool) {
	for _, node := range tree {
		if node.ID == id {
			return node, true
		}
		if found, ok := FindByID(node.Children, id); ok {
			return found, true
		}
	}
	return ComponentNode{}, false
}

// UpdateByID replaces the node with the given id by update(node), rebuilding
// only the ancestor path needed to splice in the new subtree.
func UpdateByID(tree []ComponentNode, id string, update func(ComponentNode) ComponentNode) []ComponentNode {
	if len(tree) == 0 {
		return tree
	}
	out := make([]ComponentNode, len(tree))
	for i, node := range tree {
		if node.ID == id {
			out[i] = update(node)
			continue
		}
		node.Children = UpdateByID(node.Children, id, update)
		out[i] = node
	}
	return out
}

// InsertChild appends child to the end of the children of the node with
// parentID. If parentID is absent the tree is returned unchanged.
func InsertChild(tree []ComponentNode, parentID string, child ComponentNode) []ComponentNode {
	if len(tree) == 0 {
		return tree
	}
	out := make([]ComponentNode, len(tree))
	for i, node := range tree {
		if node.ID == parentID {
			children := make([]ComponentNode, len(node.Children), len(node.Children)+1)
			copy(children, node.Children)
			node.Children = append(children, child)
		} else {
			node.Children = InsertChild(node.Children, parentID, child)
		}
		out[i] = node
	}
	return out
}

// RemoveByID removes every node with the given id, discarding its entire
// subtree, at any depth.
func RemoveByID(tree []ComponentNode, id string) []ComponentNode {
	if len(tree) == 0 {
		return tree
	}
	out := make([]ComponentNode, 0, len(tree))
	for _, node := range tree {
		if node.ID == id {
			continue
		}
		node.Children = RemoveByID(node.Children, id)
		out = append(out, node)
	}
	return out
}

// MoveUp swaps the node with its immediately preceding sibling. No-op when
// the node is already first among its siblings or absent.
func MoveUp(tree []ComponentNode, id string) []ComponentNode {
	return moveSibling(tree, id, -1)
}

// MoveDown swaps the node with its immediately following sibling. No-op when
// the node is already last among its siblings or absent.
func MoveDown(tree []ComponentNode, id string) []ComponentNode {
	return moveSibling(tree, id, +1)
}

func moveSibling(tree []ComponentNode, id string, delta int) []ComponentNode {
	if len(tree) == 0 {
		return tree
	}
	for i, node := range tree {
		if node.ID != id {
			continue
		}
		j := i + delta
		if j < 0 || j >= len(tree) {
			return tree
		}
		out := make([]ComponentNode, len(tree))
		copy(out, tree)
		out[i], out[j] = out[j], out[i]
		return out
	}
	// Not at this level; recurse into children.
	out := make([]ComponentNode, len(tree))
	for i, node := range tree {
		node.Children = moveSibling(node.Children, id, delta)
		out[i] = node
	}
	return out
}

// CollectIDs returns every node id in pre-order.
func CollectIDs(tree []ComponentNode) []string {
	var ids []string
	walk(tree, func(node ComponentNode) {
		ids = append(ids, node.ID)
	})
	return ids
}

func walk(tree []ComponentNode, visit func(ComponentNode)) {
	for _, node := range tree {
		visit(node)
		walk(node.Children, visit)
	}
}

// FlatNode is one entry of the flattened representation of a tree: the node
// without its children, plus a parent pointer. The root level uses an empty
// ParentID.
type FlatNode struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Props       map[string]interface{} `json:"props,omitempty"`
	Permissions []string               `json:"permissions,omitempty"`
	ParentID    string                 `json:"parent_id,omitempty"`
}

// TreeToFlat converts a nested tree to a flat parent-pointer list in
// pre-order.
func TreeToFlat(tree []ComponentNode) []FlatNode {
	return flatten(tree, "")
}

func flatten(tree []ComponentNode, parentID string) []FlatNode {
	var out []FlatNode
	for _, node := range tree {
		out = append(out, FlatNode{
			ID:          node.ID,
			Type:        node.Type,
			Props:       node.Props,
			Permissions: node.Permissions,
			ParentID:    parentID,
		})
		out = append(out, flatten(node.Children, node.ID)...)
	}
	return out
}

// FlatToTree rebuilds a nested tree from a flat parent-pointer list,
// preserving the list order among siblings.
func FlatToTree(flat []FlatNode) []ComponentNode {
	return buildSubtree(flat, "")
}

func buildSubtree(flat []FlatNode, parentID string) []ComponentNode {
	var out []ComponentNode
	for _, fn := range flat {
		if fn.ParentID != parentID {
			continue
		}
		out = append(out, ComponentNode{
			ID:          fn.ID,
			Type:        fn.Type,
			Props:       fn.Props,
			Permissions: fn.Permissions,
			Children:    buildSubtree(flat, fn.ID),
		})
	}
	return out
}
