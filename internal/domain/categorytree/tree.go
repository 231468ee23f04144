package categorytree

import (
	"storefront/internal/domain/catalog"
)

// Node is a category together with its ordered children.
type Node struct {
	catalog.Category
	Children []*Node `json:"children"`
}

// Build turns a flat category list into an ordered forest.
//
// Every category appears exactly once. A category becomes a child when its
// parent id resolves within the set, otherwise it is a root. Siblings and
// roots keep input order. Duplicate ids keep the first occurrence. Parent
// links forming a cycle are broken by promoting the first member of the cycle
// (in input order) to root.
//
// Build is pure: it never mutates its input and returns fresh nodes.
func Build(categories []catalog.Category) []*Node {
	nodes := make(map[string]*Node, len(categories))
	order := make([]*Node, 0, len(categories))
	for _, c := range categories {
		if _, dup := nodes[c.ID]; dup {
			continue
		}
		n := &Node{Category: copyCategory(c), Children: []*Node{}}
		nodes[c.ID] = n
		order = append(order, n)
	}

	parent := make(map[string]string, len(order))
	for _, n := range order {
		if !n.HasParent() {
			continue
		}
		pid := *n.ParentID
		if _, ok := nodes[pid]; ok {
			parent[n.ID] = pid
		}
	}

	for _, n := range order {
		if inCycle(n.ID, parent) {
			delete(parent, n.ID)
		}
	}

	roots := make([]*Node, 0)
	for _, n := range order {
		if pid, ok := parent[n.ID]; ok {
			nodes[pid].Children = append(nodes[pid].Children, n)
			continue
		}
		roots = append(roots, n)
	}
	return roots
}

// inCycle reports whether following parent links from id leads back to id.
func inCycle(id string, parent map[string]string) bool {
	seen := make(map[string]bool)
	for cur, ok := parent[id]; ok; cur, ok = parent[cur] {
		if cur == id {
			return true
		}
		if seen[cur] {
			// a cycle further up that id is not part of
			return false
		}
		seen[cur] = true
	}
	return false
}

func copyCategory(c catalog.Category) catalog.Category {
	if c.ParentID != nil {
		pid := *c.ParentID
		c.ParentID = &pid
	}
	return c
}

// Find returns the node with the given id, searching depth first.
func Find(roots []*Node, id string) *Node {
	for _, n := range roots {
		if n.ID == id {
			return n
		}
		if found := Find(n.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// Path returns the chain of nodes from a root down to id, or nil.
func Path(roots []*Node, id string) []*Node {
	for _, n := range roots {
		if n.ID == id {
			return []*Node{n}
		}
		if sub := Path(n.Children, id); sub != nil {
			return append([]*Node{n}, sub...)
		}
	}
	return nil
}

// DescendantIDs lists n and all of its descendants in pre-order.
func DescendantIDs(n *Node) []string {
	if n == nil {
		return nil
	}
	ids := []string{n.ID}
	for _, c := range n.Children {
		ids = append(ids, DescendantIDs(c)...)
	}
	return ids
}

// Count returns the number of nodes in the forest.
func Count(roots []*Node) int {
	total := 0
	for _, n := range roots {
		total += 1 + Count(n.Children)
	}
	return total
}
