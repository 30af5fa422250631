package engine

import (
	"fmt"
	"time"

	"github.com/dshills/mindstorm/internal/engine/layout"
	"github.com/dshills/mindstorm/internal/engine/mutate"
	"github.com/dshills/mindstorm/internal/engine/node"
	"github.com/dshills/mindstorm/internal/event"
	"github.com/dshills/mindstorm/internal/export"
	"github.com/dshills/mindstorm/internal/snapshot"
)

// Direction returns the direction policy.
func (e *Engine) Direction() layout.Direction {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dir
}

// SetDirection changes the direction policy and publishes
// layout.direction when it changed.
func (e *Engine) SetDirection(dir layout.Direction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if dir == e.dir {
		return
	}
	e.dir = dir
	e.stale = true
	e.logger.Debug("direction %s", dir)
	e.publish(event.TopicDirectionChanged, dir)
}

// Focus lays out the subtree under id on its own, growing to the right,
// until CancelFocus. Mutations still apply to the whole map.
func (e *Engine) Focus(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, err := e.lookup(id)
	if err != nil {
		return err
	}
	if n.ID == e.focusID {
		return nil
	}
	e.focusID = n.ID
	e.stale = true
	e.publish(event.TopicFocusChanged, n.ID)
	return nil
}

// CancelFocus returns to laying out the whole map.
func (e *Engine) CancelFocus() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelFocusLocked()
}

func (e *Engine) cancelFocusLocked() {
	if e.focusID == "" {
		return
	}
	e.focusID = ""
	e.stale = true
	e.publish(event.TopicFocusChanged, "")
}

// FocusID returns the focused node id, or "" outside focus mode.
func (e *Engine) FocusID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.focusID
}

// viewRoot is the node laid out as root.
func (e *Engine) viewRoot() *node.Node {
	if e.focusID != "" {
		if n := node.Find(e.mut.Root(), e.focusID); n != nil {
			return n
		}
	}
	return e.mut.Root()
}

func (e *Engine) viewDir() layout.Direction {
	if e.focusID != "" {
		return layout.Right
	}
	return e.dir
}

// ============================================================================
// Layout
// ============================================================================

// touch records which nodes op changed so the next layout can re-measure
// only their branch.
func (e *Engine) touch(op mutate.Operation) {
	switch p := op.Payload.(type) {
	case *mutate.RemovePayload:
		e.touched = append(e.touched, p.ParentID)
	case *mutate.RemoveNodesPayload:
		for _, r := range p.Removed {
			e.touched = append(e.touched, r.ParentID)
		}
	case *mutate.MovePayload:
		for _, m := range p.Moves {
			e.touched = append(e.touched, m.NodeID, m.FromParentID)
		}
	case *mutate.SwapPayload:
		e.touched = append(e.touched, p.ParentID)
	case *mutate.CopyPayload:
		e.touched = append(e.touched, p.ParentID)
	default:
		e.touched = append(e.touched, op.SubjectID)
	}
}

// dirtyBranch returns the single branch of root holding every touched
// node, or nil when the changes span branches or reach the root.
func (e *Engine) dirtyBranch(root *node.Node) *node.Node {
	var branch *node.Node
	for _, id := range e.touched {
		b := layout.BranchOf(root, node.Find(root, id))
		if b == nil || (branch != nil && b != branch) {
			return nil
		}
		branch = b
	}
	return branch
}

// Layout returns the current layout. It is computed lazily: after
// mutations confined to one branch only that branch is measured again.
// The result is shared and must not be modified.
func (e *Engine) Layout() *layout.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.layoutLocked()
}

func (e *Engine) layoutLocked() *layout.Result {
	if e.focusID != "" && node.Find(e.mut.Root(), e.focusID) == nil {
		e.cancelFocusLocked()
	}
	if e.cache != nil && !e.stale && len(e.touched) == 0 {
		return e.cache
	}

	root, dir := e.viewRoot(), e.viewDir()
	start := time.Now()
	var res *layout.Result
	if branch := e.dirtyBranch(root); e.cache != nil && !e.stale && branch != nil {
		res = layout.Relayout(e.cache, root, dir, e.layoutCfg, branch.ID)
	} else {
		res = layout.Compute(root, dir, e.layoutCfg)
	}
	elapsed := time.Since(start)

	e.cache = res
	e.touched = nil
	e.stale = false
	for _, obs := range e.observers {
		obs(res, elapsed)
	}
	return res
}

// ============================================================================
// Snapshot & export
// ============================================================================

// Snapshot returns a deep copy of the map.
func (e *Engine) Snapshot() *snapshot.Data {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return &snapshot.Data{
		NodeData:  node.Clone(e.mut.Root()),
		Direction: e.dir,
	}
}

// Refresh replaces the whole map with a copy of data. The undo log is
// cleared, focus ends and the root becomes current.
func (e *Engine) Refresh(data *snapshot.Data) error {
	if data == nil || data.NodeData == nil {
		return ErrNoData
	}
	root := node.Clone(data.NodeData)
	node.RecomputeParentLinks(root)
	if err := node.Validate(root); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.mut.SetRoot(root)
	e.dir = data.Direction
	if e.log != nil {
		e.log.Clear()
	}
	e.focusID = ""
	e.clipboard = nil
	e.cache = nil
	e.touched = nil
	e.stale = true
	e.logger.Info("map refreshed with %d nodes", node.Count(root))
	e.publish(event.TopicTreeRefreshed, root.ID)
	e.selectLocked(root.ID)
	return nil
}

// Markdown renders the whole map as Markdown.
func (e *Engine) Markdown() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return export.Markdown(e.mut.Root())
}

// SelectionMarkdown renders each selected subtree as its own document.
func (e *Engine) SelectionMarkdown() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return export.MarkdownNodes(e.selectedLocked())
}
