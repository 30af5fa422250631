package engine

import (
	"fmt"
	"slices"

	"github.com/dshills/mindstorm/internal/engine/layout"
	"github.com/dshills/mindstorm/internal/engine/mutate"
	"github.com/dshills/mindstorm/internal/engine/node"
	"github.com/dshills/mindstorm/internal/event"
)

// SelectionChange is the payload of selection.changed events.
type SelectionChange struct {
	CurrentID   string
	SelectedIDs []string
}

// Root returns the live root. Nodes returned by the engine belong to it
// and must be treated as read-only.
func (e *Engine) Root() *node.Node {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mut.Root()
}

// Find returns the live node with the given id, or nil.
func (e *Engine) Find(id string) *node.Node {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return node.Find(e.mut.Root(), id)
}

// NodeCount returns the number of nodes in the tree.
func (e *Engine) NodeCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return node.Count(e.mut.Root())
}

// Current returns the current node, or nil when nothing is selected.
func (e *Engine) Current() *node.Node {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.current == "" {
		return nil
	}
	return node.Find(e.mut.Root(), e.current)
}

// Selection returns the selected nodes in selection order.
func (e *Engine) Selection() []*node.Node {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.selectedLocked()
}

func (e *Engine) selectedLocked() []*node.Node {
	root := e.mut.Root()
	out := make([]*node.Node, 0, len(e.selection))
	for _, id := range e.selection {
		if n := node.Find(root, id); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Select replaces the selection. The first id becomes current. Calling it
// with no ids clears the selection.
func (e *Engine) Select(ids ...string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	root := e.mut.Root()
	for _, id := range ids {
		if node.Find(root, id) == nil {
			return fmt.Errorf("%w: %s", mutate.ErrNodeNotFound, id)
		}
	}
	current := ""
	if len(ids) > 0 {
		current = ids[0]
	}
	e.setSelection(current, slices.Clone(ids))
	return nil
}

func (e *Engine) selectLocked(id string) {
	e.setSelection(id, []string{id})
}

func (e *Engine) setSelection(current string, ids []string) {
	if current == e.current && slices.Equal(ids, e.selection) {
		return
	}
	e.current = current
	e.selection = ids
	e.publish(event.TopicSelectionChanged, SelectionChange{
		CurrentID:   current,
		SelectedIDs: slices.Clone(ids),
	})
}

// ============================================================================
// Navigation
// ============================================================================

// navigate moves the selection to pick(current) when it returns a node.
func (e *Engine) navigate(pick func(cur *node.Node) *node.Node) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	cur := node.Find(e.mut.Root(), e.current)
	if cur == nil {
		return false
	}
	next := pick(cur)
	if next == nil {
		return false
	}
	e.selectLocked(next.ID)
	return true
}

// SelectParent selects the current node's parent.
func (e *Engine) SelectParent() bool {
	return e.navigate(func(cur *node.Node) *node.Node {
		return cur.Parent
	})
}

// SelectFirstChild selects the first visible child.
func (e *Engine) SelectFirstChild() bool {
	return e.navigate(func(cur *node.Node) *node.Node {
		if children := cur.VisibleChildren(); len(children) > 0 {
			return children[0]
		}
		return nil
	})
}

// SelectNextSibling selects the following sibling.
func (e *Engine) SelectNextSibling() bool {
	return e.navigate(func(cur *node.Node) *node.Node {
		return cur.NextSibling()
	})
}

// SelectPrevSibling selects the preceding sibling.
func (e *Engine) SelectPrevSibling() bool {
	return e.navigate(func(cur *node.Node) *node.Node {
		return cur.PrevSibling()
	})
}

// SelectRoot selects the root.
func (e *Engine) SelectRoot() bool {
	return e.navigate(func(*node.Node) *node.Node {
		return e.mut.Root()
	})
}

// SelectRootSide selects the middle branch drawn on side: for n branches
// the one at index ceil(n/2)-1.
func (e *Engine) SelectRootSide(side node.Side) bool {
	return e.navigate(func(*node.Node) *node.Node {
		return e.middleBranch(side)
	})
}

func (e *Engine) middleBranch(side node.Side) *node.Node {
	left, right := layout.Sides(e.viewRoot(), e.viewDir())
	branches := right
	if side == node.SideLeft {
		branches = left
	}
	if len(branches) == 0 {
		return nil
	}
	return branches[(len(branches)+1)/2-1]
}

// SelectToward moves the selection one step toward side, the way arrow
// keys walk a map: from the root into that side's middle branch, outward
// into children on the node's own side, and back toward the root on the
// other side.
func (e *Engine) SelectToward(side node.Side) bool {
	return e.navigate(func(cur *node.Node) *node.Node {
		root := e.viewRoot()
		if cur == root {
			return e.middleBranch(side)
		}
		if e.sideOf(cur) == side {
			if children := cur.VisibleChildren(); len(children) > 0 {
				return children[0]
			}
			return nil
		}
		return cur.Parent
	})
}

// sideOf reports which side of the view root n is drawn on.
func (e *Engine) sideOf(n *node.Node) node.Side {
	root := e.viewRoot()
	branch := layout.BranchOf(root, n)
	if branch == nil {
		return node.SideNone
	}
	left, _ := layout.Sides(root, e.viewDir())
	if slices.Contains(left, branch) {
		return node.SideLeft
	}
	return node.SideRight
}

// ============================================================================
// Clipboard
// ============================================================================

// CopySelection puts the selected ids on the clipboard and returns how
// many were copied. Nodes are copied when pasted, not now.
func (e *Engine) CopySelection() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clipboard = slices.Clone(e.selection)
	return len(e.clipboard)
}

// Paste copies the clipboard nodes that still exist under the target.
func (e *Engine) Paste(toID string) (mutate.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	root := e.mut.Root()
	var ids []string
	for _, id := range e.clipboard {
		if node.Find(root, id) != nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return mutate.Result{}, ErrClipboardEmpty
	}
	return e.copyLocked(ids, toID)
}
