package mutate

import (
	"fmt"
	"time"

	"github.com/dshills/mindstorm/internal/engine/node"
)

// DefaultNewTopicName is the label given to nodes created without one.
const DefaultNewTopicName = "new node"

// Mode selects where a node goes relative to a target.
type Mode int

const (
	// ModeInto makes the node the target's last child.
	ModeInto Mode = iota
	// ModeBefore places the node just before the target.
	ModeBefore
	// ModeAfter places the node just after the target.
	ModeAfter
)

func (m Mode) String() string {
	switch m {
	case ModeInto:
		return "into"
	case ModeBefore:
		return "before"
	case ModeAfter:
		return "after"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// BeforeFunc is consulted before a user-facing operation runs. Returning
// false vetoes the operation.
type BeforeFunc func(kind Kind, target *node.Node) bool

// Result reports the outcome of a mutation.
type Result struct {
	// Node is the primary node created or changed.
	Node *node.Node

	// Nodes lists every node created or moved by a batch call.
	Nodes []*node.Node

	// Selection is the node that should become current afterwards.
	Selection *node.Node

	// Op is the emitted operation; nil for a no-op.
	Op *Operation
}

// Mutator applies structural edits to a tree.
type Mutator struct {
	root     *node.Node
	emit     func(Operation)
	before   BeforeFunc
	newTopic string
	balanced func() bool
	now      func() time.Time
}

// Option configures a Mutator.
type Option func(*Mutator)

// WithEmitter sets the callback receiving every emitted operation.
func WithEmitter(fn func(Operation)) Option {
	return func(m *Mutator) {
		m.emit = fn
	}
}

// WithBeforeHook sets a hook able to veto user-facing operations.
func WithBeforeHook(fn BeforeFunc) Option {
	return func(m *Mutator) {
		m.before = fn
	}
}

// WithNewTopicName sets the default label of created nodes.
func WithNewTopicName(name string) Option {
	return func(m *Mutator) {
		if name != "" {
			m.newTopic = name
		}
	}
}

// WithSideBalancing enables side assignment for new top-level branches
// whenever fn reports true. The engine passes a func that checks whether
// the current direction lays out both sides.
func WithSideBalancing(fn func() bool) Option {
	return func(m *Mutator) {
		m.balanced = fn
	}
}

// WithClock overrides the time source used to stamp operations.
func WithClock(fn func() time.Time) Option {
	return func(m *Mutator) {
		if fn != nil {
			m.now = fn
		}
	}
}

// New creates a mutator over root and rebuilds its parent links.
func New(root *node.Node, opts ...Option) *Mutator {
	m := &Mutator{
		root:     root,
		newTopic: DefaultNewTopicName,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	node.RecomputeParentLinks(root)
	return m
}

// Root returns the tree root.
func (m *Mutator) Root() *node.Node {
	return m.root
}

// SetRoot replaces the whole tree. Nothing is emitted.
func (m *Mutator) SetRoot(root *node.Node) {
	m.root = root
	node.RecomputeParentLinks(root)
}

// NewTopicName returns the default label of created nodes.
func (m *Mutator) NewTopicName() string {
	return m.newTopic
}

// SetNewTopicName changes the default label of created nodes.
func (m *Mutator) SetNewTopicName(name string) {
	if name != "" {
		m.newTopic = name
	}
}

// owns reports whether n is attached to this mutator's tree.
func (m *Mutator) owns(n *node.Node) bool {
	if n == nil || m.root == nil {
		return false
	}
	top := n
	for top.Parent != nil {
		top = top.Parent
	}
	return top == m.root
}

// check runs the common preconditions of a user-facing operation.
func (m *Mutator) check(kind Kind, target *node.Node) error {
	if !m.owns(target) {
		return fail(kind, target, ErrNodeNotFound)
	}
	if m.before != nil && !m.before(kind, target) {
		return fail(kind, target, ErrVetoed)
	}
	return nil
}

// prepare returns the node to insert: a fresh default node when n is nil,
// otherwise n after checking it can join the tree.
func (m *Mutator) prepare(kind Kind, n *node.Node) (*node.Node, error) {
	if n == nil {
		return node.New(m.newTopic), nil
	}
	if n.Root || n.Parent != nil || m.owns(n) {
		return nil, fail(kind, n, ErrInvalidNode)
	}
	seen := make(map[string]struct{})
	var dup *node.Node
	node.Walk(n, func(x *node.Node) bool {
		if x == nil || x.ID == "" {
			dup = x
			return false
		}
		if _, ok := seen[x.ID]; ok || node.Find(m.root, x.ID) != nil {
			dup = x
			return false
		}
		seen[x.ID] = struct{}{}
		return true
	})
	if dup != nil {
		return nil, fail(kind, dup, ErrDuplicateID)
	}
	return n, nil
}

// commit rebuilds parent links and emits the operation.
func (m *Mutator) commit(kind Kind, subject *node.Node, p Payload) *Operation {
	node.RecomputeParentLinks(m.root)
	op := Operation{Kind: kind, Payload: p, Time: m.now()}
	if subject != nil {
		op.SubjectID = subject.ID
	}
	if m.emit != nil {
		m.emit(op)
	}
	return &op
}

func (m *Mutator) balancing() bool {
	return m.balanced != nil && m.balanced()
}

// attach appends child under parent, expanding a collapsed parent and
// assigning a side to new top-level branches. It reports whether the
// parent was expanded.
func (m *Mutator) attach(parent, child *node.Node) bool {
	expanded := false
	if !parent.IsExpanded() {
		parent.SetExpanded(true)
		expanded = true
	}
	if parent.Root && child.Side == node.SideNone && m.balancing() {
		child.Side = node.NextSide(parent)
	}
	parent.Children = append(parent.Children, child)
	child.Parent = parent
	return expanded
}

// splice inserts child into parent's children at index.
func splice(parent *node.Node, index int, child *node.Node) {
	if index < 0 || index > len(parent.Children) {
		index = len(parent.Children)
	}
	parent.Children = append(parent.Children, nil)
	copy(parent.Children[index+1:], parent.Children[index:])
	parent.Children[index] = child
	child.Parent = parent
}

// detach removes n from its parent and returns the former parent and index.
func detach(n *node.Node) (*node.Node, int) {
	parent := n.Parent
	if parent == nil {
		return nil, -1
	}
	i := n.Index()
	if i < 0 {
		return parent, -1
	}
	parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
	if len(parent.Children) == 0 {
		parent.Children = nil
	}
	n.Parent = nil
	return parent, i
}
