package mutate

import (
	"slices"

	"github.com/dshills/mindstorm/internal/engine/node"
)

func moveKind(mode Mode) Kind {
	switch mode {
	case ModeBefore:
		return KindMoveNodeBefore
	case ModeAfter:
		return KindMoveNodeAfter
	default:
		return KindMoveNode
	}
}

// MoveNodes relocates sources relative to to. ModeInto appends them to
// to's children, expanding it when collapsed. ModeBefore and ModeAfter
// place them next to to, keeping their relative order.
//
// Sources nested inside other sources move with their ancestor. Moving the
// root, moving a node onto itself or into its own subtree is rejected and
// leaves the tree unchanged.
func (m *Mutator) MoveNodes(sources []*node.Node, to *node.Node, mode Mode) (Result, error) {
	kind := moveKind(mode)
	if err := m.check(kind, to); err != nil {
		return Result{}, err
	}
	if len(sources) == 0 {
		return Result{}, nil
	}
	if mode != ModeInto && (to.Root || to.Parent == nil) {
		return Result{}, fail(kind, to, ErrInvalidMove)
	}
	for _, s := range sources {
		switch {
		case !m.owns(s):
			return Result{}, fail(kind, s, ErrNodeNotFound)
		case s.Root:
			return Result{}, fail(kind, s, ErrRootImmutable)
		case s == to:
			return Result{}, fail(kind, s, ErrInvalidMove)
		case node.IsAncestor(s, to):
			return Result{}, fail(kind, s, ErrCycle)
		}
	}

	list := node.Dedupe(sources)
	p := &MovePayload{Mode: mode, TargetID: to.ID}
	if mode == ModeInto && !to.IsExpanded() {
		to.SetExpanded(true)
		p.Expanded = true
	}
	order := list
	if mode == ModeAfter {
		order = slices.Clone(list)
		slices.Reverse(order)
	}

	for _, s := range order {
		mv := record(s)
		detach(s)
		switch mode {
		case ModeInto:
			to.Children = append(to.Children, s)
			s.Parent = to
		case ModeBefore:
			splice(to.Parent, to.Index(), s)
		case ModeAfter:
			splice(to.Parent, to.Index()+1, s)
		}
		if mode != ModeInto && s.Parent.Root && m.balancing() {
			s.Side = to.Side
		}
		mv.ToParentID = s.Parent.ID
		mv.ToIndex = s.Index()
		mv.ToSide = s.Side
		p.Moves = append(p.Moves, mv)
	}

	op := m.commit(kind, list[0], p)
	return Result{Node: list[0], Nodes: list, Selection: list[0], Op: op}, nil
}

// MoveUp swaps target with its preceding sibling. A first child or the
// root is left in place.
func (m *Mutator) MoveUp(target *node.Node) (Result, error) {
	return m.swap(KindMoveUp, target, -1)
}

// MoveDown swaps target with its following sibling. A last child or the
// root is left in place.
func (m *Mutator) MoveDown(target *node.Node) (Result, error) {
	return m.swap(KindMoveDown, target, 1)
}

func (m *Mutator) swap(kind Kind, target *node.Node, delta int) (Result, error) {
	if err := m.check(kind, target); err != nil {
		return Result{}, err
	}
	if target.Parent == nil {
		return Result{}, nil
	}
	siblings := target.Parent.Children
	from := target.Index()
	to := from + delta
	if to < 0 || to >= len(siblings) {
		return Result{}, nil
	}
	siblings[from], siblings[to] = siblings[to], siblings[from]
	op := m.commit(kind, target, &SwapPayload{ParentID: target.Parent.ID, From: from, To: to})
	return Result{Node: target, Selection: target, Op: op}, nil
}

// MoveTo places n under parent, just before the child before, or last when
// before is nil, and sets its side. It is the inverse of a move and does
// not consult the before-hook. It emits moveNode.
func (m *Mutator) MoveTo(n, parent, before *node.Node, side node.Side) (Result, error) {
	switch {
	case !m.owns(n):
		return Result{}, fail(KindMoveNode, n, ErrNodeNotFound)
	case !m.owns(parent):
		return Result{}, fail(KindMoveNode, parent, ErrNodeNotFound)
	case n.Root:
		return Result{}, fail(KindMoveNode, n, ErrRootImmutable)
	case n == parent || n == before:
		return Result{}, fail(KindMoveNode, n, ErrInvalidMove)
	case node.IsAncestor(n, parent):
		return Result{}, fail(KindMoveNode, n, ErrCycle)
	case before != nil && before.Parent != parent:
		return Result{}, fail(KindMoveNode, before, ErrInvalidMove)
	}

	mv := record(n)
	detach(n)
	if before != nil {
		splice(parent, before.Index(), n)
	} else {
		parent.Children = append(parent.Children, n)
		n.Parent = parent
	}
	n.Side = side
	mv.ToParentID = parent.ID
	mv.ToIndex = n.Index()
	mv.ToSide = side

	op := m.commit(KindMoveNode, n, &MovePayload{Mode: ModeInto, TargetID: parent.ID, Moves: []Move{mv}})
	return Result{Node: n, Nodes: []*node.Node{n}, Selection: n, Op: op}, nil
}

// record captures where n currently sits.
func record(n *node.Node) Move {
	mv := Move{
		NodeID:       n.ID,
		FromParentID: n.Parent.ID,
		FromIndex:    n.Index(),
		FromSide:     n.Side,
	}
	if next := n.NextSibling(); next != nil {
		mv.FromNextID = next.ID
	}
	return mv
}
