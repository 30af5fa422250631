package node

import "fmt"

// Invariant identifies one of the structural tree invariants.
type Invariant int

const (
	InvariantSingleRoot Invariant = iota + 1
	InvariantParentLink
	InvariantUniqueID
	InvariantAcyclic
	InvariantNoGaps
)

// String returns a human-readable invariant name.
func (i Invariant) String() string {
	switch i {
	case InvariantSingleRoot:
		return "single root"
	case InvariantParentLink:
		return "parent link"
	case InvariantUniqueID:
		return "unique id"
	case InvariantAcyclic:
		return "acyclic"
	case InvariantNoGaps:
		return "no gaps"
	default:
		return "unknown"
	}
}

// InvariantError reports a tree that violates a structural invariant.
type InvariantError struct {
	Invariant Invariant
	NodeID    string
	Detail    string
}

func (e *InvariantError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("invariant %q violated at node %s: %s", e.Invariant, e.NodeID, e.Detail)
	}
	return fmt.Sprintf("invariant %q violated: %s", e.Invariant, e.Detail)
}

// Validate checks the structural invariants of the tree rooted at root.
// Parent links are checked as they are, so callers normally run
// RecomputeParentLinks first.
func Validate(root *Node) error {
	if root == nil {
		return &InvariantError{Invariant: InvariantSingleRoot, Detail: "tree is empty"}
	}
	if !root.Root {
		return &InvariantError{Invariant: InvariantSingleRoot, NodeID: root.ID, Detail: "entry node is not marked root"}
	}
	if root.Parent != nil {
		return &InvariantError{Invariant: InvariantSingleRoot, NodeID: root.ID, Detail: "root has a parent"}
	}

	seenIDs := make(map[string]bool)
	onPath := make(map[*Node]bool)
	visited := make(map[*Node]bool)

	var check func(n *Node) error
	check = func(n *Node) error {
		if onPath[n] {
			return &InvariantError{Invariant: InvariantAcyclic, NodeID: n.ID, Detail: "node is its own ancestor"}
		}
		if visited[n] {
			return &InvariantError{Invariant: InvariantParentLink, NodeID: n.ID, Detail: "node appears under more than one parent"}
		}
		visited[n] = true
		if n.ID == "" {
			return &InvariantError{Invariant: InvariantUniqueID, Detail: "node without id"}
		}
		if seenIDs[n.ID] {
			return &InvariantError{Invariant: InvariantUniqueID, NodeID: n.ID, Detail: "duplicate id"}
		}
		seenIDs[n.ID] = true
		if n != root && n.Root {
			return &InvariantError{Invariant: InvariantSingleRoot, NodeID: n.ID, Detail: "second root"}
		}

		onPath[n] = true
		for i, c := range n.Children {
			if c == nil {
				return &InvariantError{Invariant: InvariantNoGaps, NodeID: n.ID, Detail: fmt.Sprintf("nil child at index %d", i)}
			}
			if c.Parent != n {
				return &InvariantError{Invariant: InvariantParentLink, NodeID: c.ID, Detail: "parent link does not point at owner"}
			}
			if err := check(c); err != nil {
				return err
			}
		}
		delete(onPath, n)
		return nil
	}
	return check(root)
}
