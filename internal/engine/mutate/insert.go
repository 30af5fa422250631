package mutate

import (
	"strings"

	"github.com/dshills/mindstorm/internal/engine/node"
)

// InsertSibling inserts newNode next to target. A nil newNode creates a
// node with the default label.
//
// A root target, or a target that is the only branch of the root, gets
// the new node as a child instead, exactly as AddChild would.
func (m *Mutator) InsertSibling(mode Mode, target, newNode *node.Node) (Result, error) {
	if mode != ModeBefore && mode != ModeAfter {
		return Result{}, fail(KindInsertSibling, target, ErrInvalidMove)
	}
	if target != nil && target.Root {
		return m.AddChild(target, newNode)
	}
	if target != nil && target.Parent != nil && target.Parent.Root && len(target.Parent.Children) == 1 {
		return m.AddChild(target.Parent, newNode)
	}
	if err := m.check(KindInsertSibling, target); err != nil {
		return Result{}, err
	}
	if target.Parent == nil {
		return Result{}, fail(KindInsertSibling, target, ErrNoParent)
	}
	n, err := m.prepare(KindInsertSibling, newNode)
	if err != nil {
		return Result{}, err
	}

	parent := target.Parent
	index := target.Index()
	if mode == ModeAfter {
		index++
	}
	if parent.Root && n.Side == node.SideNone && m.balancing() {
		n.Side = target.Side
	}
	splice(parent, index, n)

	op := m.commit(KindInsertSibling, n, &InsertPayload{
		Node:     node.Clone(n),
		ParentID: parent.ID,
		Index:    index,
	})
	return Result{Node: n, Selection: n, Op: op}, nil
}

// InsertParent splices newNode between target and its parent, so target
// becomes newNode's only child. On the root it does nothing.
func (m *Mutator) InsertParent(target, newNode *node.Node) (Result, error) {
	if err := m.check(KindInsertParent, target); err != nil {
		return Result{}, err
	}
	if target.Root || target.Parent == nil {
		return Result{}, nil
	}
	n, err := m.prepare(KindInsertParent, newNode)
	if err != nil {
		return Result{}, err
	}
	if len(n.Children) > 0 {
		return Result{}, fail(KindInsertParent, n, ErrInvalidNode)
	}

	parent := target.Parent
	index := target.Index()
	if parent.Root && n.Side == node.SideNone {
		n.Side = target.Side
	}
	parent.Children[index] = n
	n.Parent = parent
	n.Children = []*node.Node{target}
	target.Parent = n

	op := m.commit(KindInsertParent, n, &InsertParentPayload{
		Node:     node.CloneShallow(n),
		TargetID: target.ID,
		ParentID: parent.ID,
		Index:    index,
	})
	return Result{Node: n, Selection: n, Op: op}, nil
}

// AddChild appends newNode as target's last child, expanding target first
// when it is collapsed.
func (m *Mutator) AddChild(target, newNode *node.Node) (Result, error) {
	if err := m.check(KindAddChild, target); err != nil {
		return Result{}, err
	}
	n, err := m.prepare(KindAddChild, newNode)
	if err != nil {
		return Result{}, err
	}
	expanded := m.attach(target, n)
	op := m.commit(KindAddChild, n, &InsertPayload{
		Node:     node.Clone(n),
		ParentID: target.ID,
		Index:    len(target.Children) - 1,
		Expanded: expanded,
	})
	return Result{Node: n, Selection: n, Op: op}, nil
}

// PasteText adds children under target built from plain text. With
// multiline set every non-blank line becomes its own child; otherwise the
// trimmed text becomes a single child. Each child is emitted as a separate
// addChild operation. Blank text adds nothing.
func (m *Mutator) PasteText(target *node.Node, text string, multiline bool) (Result, error) {
	var labels []string
	if multiline {
		for _, line := range strings.Split(text, "\n") {
			if l := strings.TrimSpace(line); l != "" {
				labels = append(labels, l)
			}
		}
	} else if l := strings.TrimSpace(text); l != "" {
		labels = append(labels, l)
	}
	if len(labels) == 0 {
		return Result{}, nil
	}
	if err := m.check(KindAddChild, target); err != nil {
		return Result{}, err
	}

	var res Result
	for _, label := range labels {
		r, err := m.AddChild(target, node.New(label))
		if err != nil {
			return res, err
		}
		res.Nodes = append(res.Nodes, r.Node)
		res.Op = r.Op
	}
	res.Node = res.Nodes[len(res.Nodes)-1]
	res.Selection = res.Node
	return res, nil
}

// InsertAt places n under parent at index and emits addChild. It is the
// inverse of a removal and does not consult the before-hook.
func (m *Mutator) InsertAt(parent *node.Node, index int, n *node.Node) (Result, error) {
	if !m.owns(parent) {
		return Result{}, fail(KindAddChild, parent, ErrNodeNotFound)
	}
	n, err := m.prepare(KindAddChild, n)
	if err != nil {
		return Result{}, err
	}
	if index < 0 || index > len(parent.Children) {
		index = len(parent.Children)
	}
	splice(parent, index, n)
	op := m.commit(KindAddChild, n, &InsertPayload{
		Node:     node.Clone(n),
		ParentID: parent.ID,
		Index:    index,
	})
	return Result{Node: n, Selection: n, Op: op}, nil
}
