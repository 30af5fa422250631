package node

import (
	"maps"
	"reflect"
	"slices"
)

// RecomputeParentLinks rebuilds every Parent reference below root.
// The root's Parent is cleared. Input must be a tree: a node reachable
// twice is a precondition violation.
func RecomputeParentLinks(root *Node) {
	if root == nil {
		return
	}
	root.Parent = nil
	var fill func(p *Node)
	fill = func(p *Node) {
		for _, c := range p.Children {
			c.Parent = p
			fill(c)
		}
	}
	fill(root)
}

// WalkFunc is called for every visited node. Returning false stops the walk.
type WalkFunc func(n *Node) bool

// Walk visits root and its descendants in pre-order, including collapsed
// subtrees. It returns false if fn stopped the walk.
func Walk(root *Node, fn WalkFunc) bool {
	if root == nil {
		return true
	}
	if !fn(root) {
		return false
	}
	for _, c := range root.Children {
		if !Walk(c, fn) {
			return false
		}
	}
	return true
}

// Find returns the node with the given id, or nil.
func Find(root *Node, id string) *Node {
	var found *Node
	Walk(root, func(n *Node) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// IDs returns every id in pre-order.
func IDs(root *Node) []string {
	var ids []string
	Walk(root, func(n *Node) bool {
		ids = append(ids, n.ID)
		return true
	})
	return ids
}

// Count returns the number of nodes in the subtree.
func Count(root *Node) int {
	count := 0
	Walk(root, func(*Node) bool {
		count++
		return true
	})
	return count
}

// IsAncestor reports whether a is a proper ancestor of b. It follows Parent
// links, so they must be current.
func IsAncestor(a, b *Node) bool {
	if a == nil || b == nil {
		return false
	}
	for p := b.Parent; p != nil; p = p.Parent {
		if p == a {
			return true
		}
	}
	return false
}

// Dedupe drops every node that is a descendant of another node in the
// list, as well as repeats, keeping the original order.
func Dedupe(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for i, n := range nodes {
		if n == nil || slices.Contains(nodes[:i], n) {
			continue
		}
		covered := false
		for _, other := range nodes {
			if other != n && IsAncestor(other, n) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, n)
		}
	}
	return out
}

// Clone returns a deep copy of the subtree, ids included. Parent links in
// the copy are rebuilt relative to the copy; the copy's own Parent is nil.
func Clone(n *Node) *Node {
	if n == nil {
		return nil
	}
	c := shallowCopy(n)
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = Clone(child)
			c.Children[i].Parent = c
		}
	}
	return c
}

// CloneFresh deep-copies the subtree and assigns new ids to every node in
// the copy. The copy is never a root.
func CloneFresh(n *Node) *Node {
	c := Clone(n)
	if c == nil {
		return nil
	}
	c.Root = false
	Walk(c, func(x *Node) bool {
		x.ID = NewID()
		return true
	})
	return c
}

// CopyAttributes copies the decorative attributes of src onto dst without
// touching identity or structure.
func CopyAttributes(dst, src *Node) {
	s := shallowCopy(src)
	dst.Style = s.Style
	dst.Tags = s.Tags
	dst.Icons = s.Icons
	dst.HyperLink = s.HyperLink
	dst.Image = s.Image
	dst.File = s.File
	dst.AIAnswer = s.AIAnswer
	dst.Extra = s.Extra
}

// shallowCopy copies every field of n except Children and Parent, deep
// enough that the copy shares no mutable state with n.
func shallowCopy(n *Node) *Node {
	c := &Node{
		ID:        n.ID,
		Label:     n.Label,
		Root:      n.Root,
		Side:      n.Side,
		HyperLink: n.HyperLink,
		AIAnswer:  n.AIAnswer,
		Tags:      slices.Clone(n.Tags),
		Icons:     slices.Clone(n.Icons),
		Extra:     maps.Clone(n.Extra),
	}
	if n.Expanded != nil {
		c.SetExpanded(*n.Expanded)
	}
	if n.Style != nil {
		s := *n.Style
		c.Style = &s
	}
	if n.Image != nil {
		img := *n.Image
		c.Image = &img
	}
	if n.File != nil {
		f := *n.File
		c.File = &f
	}
	return c
}

// Equal reports whether two subtrees have the same shape and content.
// With ignoreIDs set, ids are not compared. Parent links are ignored.
func Equal(a, b *Node, ignoreIDs bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !ignoreIDs && a.ID != b.ID {
		return false
	}
	if a.Label != b.Label || a.Root != b.Root || a.Side != b.Side ||
		a.IsExpanded() != b.IsExpanded() || a.HyperLink != b.HyperLink ||
		a.AIAnswer != b.AIAnswer {
		return false
	}
	if !equalStyle(a.Style, b.Style) ||
		!slices.Equal(a.Tags, b.Tags) || !slices.Equal(a.Icons, b.Icons) {
		return false
	}
	if !equalPtr(a.Image, b.Image) || !equalPtr(a.File, b.File) {
		return false
	}
	if len(a.Extra) != len(b.Extra) || (len(a.Extra) > 0 && !reflect.DeepEqual(a.Extra, b.Extra)) {
		return false
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i], ignoreIDs) {
			return false
		}
	}
	return true
}

func equalStyle(a, b *Style) bool {
	if a.IsZero() || b.IsZero() {
		return a.IsZero() == b.IsZero()
	}
	return *a == *b
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// CloneShallow copies n without its children. The copy is detached.
func CloneShallow(n *Node) *Node {
	if n == nil {
		return nil
	}
	return shallowCopy(n)
}
