package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/mindstorm/internal/engine/history"
	"github.com/dshills/mindstorm/internal/engine/layout"
	"github.com/dshills/mindstorm/internal/engine/mutate"
	"github.com/dshills/mindstorm/internal/engine/node"
	"github.com/dshills/mindstorm/internal/event"
	"github.com/dshills/mindstorm/internal/event/topic"
	"github.com/dshills/mindstorm/internal/logging"
	"github.com/dshills/mindstorm/internal/snapshot"
)

// Re-export commonly used types for convenience.
type (
	// Node is a mind map node.
	Node = node.Node

	// Operation is the record emitted for every successful mutation.
	Operation = mutate.Operation

	// Result reports the outcome of a mutation.
	Result = mutate.Result

	// Mode places a node into, before or after a target.
	Mode = mutate.Mode

	// Patch lists attributes to change with Reshape.
	Patch = mutate.Patch

	// Direction is the layout direction policy.
	Direction = layout.Direction
)

// Re-export constants.
const (
	ModeInto   = mutate.ModeInto
	ModeBefore = mutate.ModeBefore
	ModeAfter  = mutate.ModeAfter

	Left  = layout.Left
	Right = layout.Right
	Both  = layout.Both
)

// Engine is the facade over one mind map. It owns the tree and wires the
// mutator, the undo log, the layout cache and the event bus together, and
// keeps the session state: current node, selection, clipboard and focus.
//
// All methods are safe for concurrent use. Bus handlers run synchronously
// while the engine lock is held and must not call back into the Engine.
type Engine struct {
	mu sync.RWMutex

	// Core components
	mut    *mutate.Mutator
	log    *history.Log
	logSub *event.Subscription
	bus    event.Bus
	logger *logging.Logger
	source string

	// Configuration
	dir       layout.Direction
	dirSet    bool
	layoutCfg layout.Config
	newTopic  string
	allowUndo bool
	maxUndo   int
	before    mutate.BeforeFunc
	observers []LayoutObserver

	// Session
	current   string
	selection []string
	clipboard []string
	focusID   string

	// Layout cache
	cache   *layout.Result
	touched []string
	stale   bool
}

// New creates an engine over a copy of data. The tree must satisfy the
// node invariants.
func New(data *snapshot.Data, opts ...Option) (*Engine, error) {
	if data == nil || data.NodeData == nil {
		return nil, ErrNoData
	}
	e := &Engine{
		dir:       layout.Both,
		layoutCfg: layout.DefaultConfig(),
		newTopic:  mutate.DefaultNewTopicName,
		allowUndo: true,
		maxUndo:   DefaultMaxUndoEntries,
		logger:    logging.Null(),
		source:    "engine/" + uuid.NewString()[:8],
	}
	for _, opt := range opts {
		opt(e)
	}
	if !e.dirSet {
		e.dir = data.Direction
	}
	if e.bus == nil {
		e.bus = event.NewBus()
	}
	e.logger = e.logger.WithComponent("engine")

	root := node.Clone(data.NodeData)
	node.RecomputeParentLinks(root)
	if err := node.Validate(root); err != nil {
		return nil, err
	}

	mopts := []mutate.Option{
		mutate.WithEmitter(e.emit),
		mutate.WithNewTopicName(e.newTopic),
		mutate.WithSideBalancing(func() bool { return e.dir == layout.Both }),
	}
	if e.before != nil {
		mopts = append(mopts, mutate.WithBeforeHook(e.before))
	}
	e.mut = mutate.New(root, mopts...)

	if e.allowUndo {
		e.log = history.NewLog(history.WithMaxEntries(e.maxUndo))
		sub, err := e.bus.SubscribeFunc(event.TopicOperations, e.record,
			event.WithPriority(event.PriorityCritical),
			event.WithFilter(e.ownEvent))
		if err != nil {
			return nil, fmt.Errorf("subscribe undo log: %w", err)
		}
		e.logSub = sub
	}

	e.current = root.ID
	e.selection = []string{root.ID}
	e.stale = true
	e.logger.Debug("loaded map %s with %d nodes", root.ID, node.Count(root))
	return e, nil
}

// NewBlank creates an engine over a map holding only a root.
func NewBlank(label string, opts ...Option) *Engine {
	e, err := New(snapshot.New(label), opts...)
	if err != nil {
		// A fresh single-node map always validates.
		panic(err)
	}
	return e
}

// Close detaches the undo log from the bus.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.logSub == nil {
		return nil
	}
	err := e.bus.Unsubscribe(e.logSub)
	e.logSub = nil
	return err
}

// Bus returns the bus operations are published on.
func (e *Engine) Bus() event.Bus {
	return e.bus
}

// Source is the event source name this engine publishes under.
func (e *Engine) Source() string {
	return e.source
}

// ============================================================================
// Event wiring
// ============================================================================

// emit is the mutator's emitter. It runs with the engine lock held.
func (e *Engine) emit(op mutate.Operation) {
	e.touch(op)
	ev := event.NewEvent(event.TopicOperation.Child(op.Kind.String()), op, e.source)
	if err := e.bus.Publish(context.Background(), ev); err != nil {
		e.logger.Warn("deliver %s: %v", op, err)
	}
}

func (e *Engine) record(_ context.Context, ev any) error {
	if op, ok := event.PayloadOf[mutate.Operation](ev); ok {
		e.log.Record(op)
	}
	return nil
}

func (e *Engine) ownEvent(ev any) bool {
	if oe, ok := ev.(event.Event[mutate.Operation]); ok {
		return oe.Metadata.Source == e.source
	}
	return false
}

func (e *Engine) publish(t topic.Topic, payload any) {
	if err := e.bus.Publish(context.Background(), event.NewEvent(t, payload, e.source)); err != nil {
		e.logger.Warn("deliver %s: %v", t, err)
	}
}

// ============================================================================
// Mutations
// ============================================================================

// lookup resolves id, with the empty id meaning the current node.
func (e *Engine) lookup(id string) (*node.Node, error) {
	if id == "" {
		if e.current == "" {
			return nil, ErrNoSelection
		}
		id = e.current
	}
	n := node.Find(e.mut.Root(), id)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", mutate.ErrNodeNotFound, id)
	}
	return n, nil
}

func (e *Engine) lookupAll(ids []string) ([]*node.Node, error) {
	if len(ids) == 0 {
		ids = e.selection
	}
	if len(ids) == 0 {
		return nil, ErrNoSelection
	}
	out := make([]*node.Node, 0, len(ids))
	for _, id := range ids {
		n, err := e.lookup(id)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// apply runs a mutation, logs the outcome and moves the selection.
func (e *Engine) apply(kind mutate.Kind, res mutate.Result, err error) (mutate.Result, error) {
	if err != nil {
		e.logger.Warn("%s rejected: %v", kind, err)
		return res, err
	}
	if res.Op != nil {
		e.logger.Debug("applied %s", res.Op)
	}
	if res.Selection != nil {
		e.selectLocked(res.Selection.ID)
	}
	return res, nil
}

// InsertSibling inserts n before or after the target. A nil n creates a
// node with the default label. An empty targetID means the current node.
func (e *Engine) InsertSibling(mode mutate.Mode, targetID string, n *node.Node) (mutate.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	target, err := e.lookup(targetID)
	if err != nil {
		return mutate.Result{}, err
	}
	res, err := e.mut.InsertSibling(mode, target, n)
	return e.apply(mutate.KindInsertSibling, res, err)
}

// InsertParent inserts n between the target and its parent.
func (e *Engine) InsertParent(targetID string, n *node.Node) (mutate.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	target, err := e.lookup(targetID)
	if err != nil {
		return mutate.Result{}, err
	}
	res, err := e.mut.InsertParent(target, n)
	return e.apply(mutate.KindInsertParent, res, err)
}

// AddChild appends n as the target's last child.
func (e *Engine) AddChild(targetID string, n *node.Node) (mutate.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	target, err := e.lookup(targetID)
	if err != nil {
		return mutate.Result{}, err
	}
	res, err := e.mut.AddChild(target, n)
	return e.apply(mutate.KindAddChild, res, err)
}

// PasteText adds children built from text under the target. The children
// undo as one step.
func (e *Engine) PasteText(targetID, text string, multiline bool) (mutate.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	target, err := e.lookup(targetID)
	if err != nil {
		return mutate.Result{}, err
	}
	var res mutate.Result
	paste := func() error {
		res, err = e.mut.PasteText(target, text, multiline)
		return err
	}
	if e.log != nil {
		err = e.log.Transaction("paste text", paste)
	} else {
		err = paste()
	}
	return e.apply(mutate.KindAddChild, res, err)
}

// RemoveNode removes a subtree.
func (e *Engine) RemoveNode(id string) (mutate.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	target, err := e.lookup(id)
	if err != nil {
		return mutate.Result{}, err
	}
	res, err := e.mut.RemoveNode(target)
	return e.apply(mutate.KindRemoveNode, res, err)
}

// RemoveNodes removes several subtrees as one operation. With no ids the
// selection is removed.
func (e *Engine) RemoveNodes(ids ...string) (mutate.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	targets, err := e.lookupAll(ids)
	if err != nil {
		return mutate.Result{}, err
	}
	res, err := e.mut.RemoveNodes(targets)
	return e.apply(mutate.KindRemoveNodes, res, err)
}

// MoveNodes moves the nodes into, before or after the target. With no ids
// the selection is moved.
func (e *Engine) MoveNodes(ids []string, toID string, mode mutate.Mode) (mutate.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sources, err := e.lookupAll(ids)
	if err != nil {
		return mutate.Result{}, err
	}
	to, err := e.lookup(toID)
	if err != nil {
		return mutate.Result{}, err
	}
	res, err := e.mut.MoveNodes(sources, to, mode)
	return e.apply(mutate.KindMoveNode, res, err)
}

// MoveInto appends the nodes to the target's children.
func (e *Engine) MoveInto(toID string, ids ...string) (mutate.Result, error) {
	return e.MoveNodes(ids, toID, mutate.ModeInto)
}

// MoveBefore places the nodes before the target.
func (e *Engine) MoveBefore(toID string, ids ...string) (mutate.Result, error) {
	return e.MoveNodes(ids, toID, mutate.ModeBefore)
}

// MoveAfter places the nodes after the target.
func (e *Engine) MoveAfter(toID string, ids ...string) (mutate.Result, error) {
	return e.MoveNodes(ids, toID, mutate.ModeAfter)
}

// MoveUp swaps a node with its previous sibling.
func (e *Engine) MoveUp(id string) (mutate.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	target, err := e.lookup(id)
	if err != nil {
		return mutate.Result{}, err
	}
	res, err := e.mut.MoveUp(target)
	return e.apply(mutate.KindMoveUp, res, err)
}

// MoveDown swaps a node with its next sibling.
func (e *Engine) MoveDown(id string) (mutate.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	target, err := e.lookup(id)
	if err != nil {
		return mutate.Result{}, err
	}
	res, err := e.mut.MoveDown(target)
	return e.apply(mutate.KindMoveDown, res, err)
}

// CopyNode appends a fresh-id copy of a subtree to the target.
func (e *Engine) CopyNode(id, toID string) (mutate.Result, error) {
	return e.CopyNodes([]string{id}, toID)
}

// CopyNodes appends fresh-id copies of several subtrees to the target.
func (e *Engine) CopyNodes(ids []string, toID string) (mutate.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.copyLocked(ids, toID)
}

func (e *Engine) copyLocked(ids []string, toID string) (mutate.Result, error) {
	srcs, err := e.lookupAll(ids)
	if err != nil {
		return mutate.Result{}, err
	}
	to, err := e.lookup(toID)
	if err != nil {
		return mutate.Result{}, err
	}
	if len(srcs) == 1 {
		res, err := e.mut.CopyNode(srcs[0], to)
		return e.apply(mutate.KindCopyNode, res, err)
	}
	res, err := e.mut.CopyNodes(srcs, to)
	return e.apply(mutate.KindCopyNodes, res, err)
}

// Reshape applies a patch of decorative attributes.
func (e *Engine) Reshape(id string, patch mutate.Patch) (mutate.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	target, err := e.lookup(id)
	if err != nil {
		return mutate.Result{}, err
	}
	res, err := e.mut.Reshape(target, patch)
	return e.apply(mutate.KindReshapeNode, res, err)
}

// SetLabel finishes a label edit. Blank or unchanged text is a no-op.
func (e *Engine) SetLabel(id, text string) (mutate.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	target, err := e.lookup(id)
	if err != nil {
		return mutate.Result{}, err
	}
	res, err := e.mut.SetLabel(target, text)
	return e.apply(mutate.KindFinishEdit, res, err)
}

// SetStyle replaces the style. A nil style clears it.
func (e *Engine) SetStyle(id string, style *node.Style) (mutate.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	target, err := e.lookup(id)
	if err != nil {
		return mutate.Result{}, err
	}
	res, err := e.mut.SetStyle(target, style)
	return e.apply(mutate.KindEditStyle, res, err)
}

// SetTags replaces the tags.
func (e *Engine) SetTags(id string, tags ...string) (mutate.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	target, err := e.lookup(id)
	if err != nil {
		return mutate.Result{}, err
	}
	res, err := e.mut.SetTags(target, tags)
	return e.apply(mutate.KindEditTags, res, err)
}

// SetIcons replaces the icons.
func (e *Engine) SetIcons(id string, icons ...string) (mutate.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	target, err := e.lookup(id)
	if err != nil {
		return mutate.Result{}, err
	}
	res, err := e.mut.SetIcons(target, icons)
	return e.apply(mutate.KindEditIcons, res, err)
}

// SetExpanded expands or collapses a node.
func (e *Engine) SetExpanded(id string, expanded bool) (mutate.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	target, err := e.lookup(id)
	if err != nil {
		return mutate.Result{}, err
	}
	res, err := e.mut.SetExpanded(target, expanded)
	return e.apply(mutate.KindExpandNode, res, err)
}

// ToggleExpanded flips a node between expanded and collapsed.
func (e *Engine) ToggleExpanded(id string) (mutate.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	target, err := e.lookup(id)
	if err != nil {
		return mutate.Result{}, err
	}
	res, err := e.mut.ToggleExpanded(target)
	return e.apply(mutate.KindExpandNode, res, err)
}

// ============================================================================
// Undo
// ============================================================================

// Undo reverts the most recent recorded operation or group and returns it.
// With nothing recorded it does nothing and returns the zero Operation.
func (e *Engine) Undo() (mutate.Operation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.log == nil {
		return mutate.Operation{}, ErrUndoDisabled
	}
	op, err := e.log.Undo(e.mut)
	if errors.Is(err, history.ErrNothingToUndo) {
		e.logger.Debug("undo: nothing to undo")
		return mutate.Operation{}, nil
	}
	if err != nil {
		e.logger.Warn("undo: %v", err)
		return op, err
	}
	e.logger.Debug("undid %s", op)
	e.reselect(op)
	e.publish(event.TopicUndo, op)
	return op, nil
}

// CanUndo reports whether Undo has anything to revert.
func (e *Engine) CanUndo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.log != nil && e.log.CanUndo()
}

// UndoEntries lists the undo log, oldest first.
func (e *Engine) UndoEntries() []history.Info {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.log == nil {
		return nil
	}
	return e.log.Entries()
}

// reselect picks a sensible current node after op was undone: the subject
// if it is back in the tree, else the node it was attached to.
func (e *Engine) reselect(op mutate.Operation) {
	candidates := []string{op.SubjectID}
	switch p := op.Payload.(type) {
	case *mutate.InsertPayload:
		candidates = append(candidates, p.ParentID)
	case *mutate.InsertParentPayload:
		candidates = append(candidates, p.TargetID)
	case *mutate.CopyPayload:
		candidates = append(candidates, p.ParentID)
	case *mutate.RemoveNodesPayload:
		for _, r := range p.Removed {
			candidates = append(candidates, r.Node.ID)
		}
	}
	root := e.mut.Root()
	for _, id := range candidates {
		if id != "" && node.Find(root, id) != nil {
			e.selectLocked(id)
			return
		}
	}
	e.selectLocked(root.ID)
}
