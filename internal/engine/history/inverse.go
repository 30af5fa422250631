package history

import (
	"fmt"
	"slices"

	"github.com/dshills/mindstorm/internal/engine/mutate"
	"github.com/dshills/mindstorm/internal/engine/node"
)

// Applier performs the primitive edits used to reverse operations.
// *mutate.Mutator implements it.
type Applier interface {
	Root() *node.Node
	InsertAt(parent *node.Node, index int, n *node.Node) (mutate.Result, error)
	Unlink(n *node.Node) (mutate.Result, error)
	MoveTo(n, parent, before *node.Node, side node.Side) (mutate.Result, error)
	RestoreAttributes(target, origin *node.Node) (mutate.Result, error)
	SetExpanded(target *node.Node, expanded bool) (mutate.Result, error)
}

var _ Applier = (*mutate.Mutator)(nil)

// invert applies the inverse of op.
func invert(a Applier, op mutate.Operation) error {
	inv := inverter{a: a, root: a.Root()}

	switch op.Kind {
	case mutate.KindInsertSibling, mutate.KindAddChild:
		p, ok := op.Payload.(*mutate.InsertPayload)
		if !ok {
			return badPayload(op)
		}
		return inv.unlink([]string{p.Node.ID}, p.ParentID, p.Expanded)

	case mutate.KindCopyNode, mutate.KindCopyNodes:
		p, ok := op.Payload.(*mutate.CopyPayload)
		if !ok {
			return badPayload(op)
		}
		ids := make([]string, len(p.Nodes))
		for i, n := range p.Nodes {
			ids[i] = n.ID
		}
		return inv.unlink(ids, p.ParentID, p.Expanded)

	case mutate.KindInsertParent:
		p, ok := op.Payload.(*mutate.InsertParentPayload)
		if !ok {
			return badPayload(op)
		}
		return inv.insertParent(p)

	case mutate.KindRemoveNode:
		p, ok := op.Payload.(*mutate.RemovePayload)
		if !ok {
			return badPayload(op)
		}
		return inv.restore(p)

	case mutate.KindRemoveNodes:
		p, ok := op.Payload.(*mutate.RemoveNodesPayload)
		if !ok {
			return badPayload(op)
		}
		for i := len(p.Removed) - 1; i >= 0; i-- {
			if err := inv.restore(&p.Removed[i]); err != nil {
				return err
			}
		}
		return nil

	case mutate.KindMoveNode, mutate.KindMoveNodeBefore, mutate.KindMoveNodeAfter:
		p, ok := op.Payload.(*mutate.MovePayload)
		if !ok {
			return badPayload(op)
		}
		return inv.move(p)

	case mutate.KindMoveUp, mutate.KindMoveDown:
		p, ok := op.Payload.(*mutate.SwapPayload)
		if !ok {
			return badPayload(op)
		}
		return inv.swap(op.SubjectID, p)

	case mutate.KindReshapeNode:
		p, ok := op.Payload.(*mutate.ReshapePayload)
		if !ok {
			return badPayload(op)
		}
		return inv.attributes(op.SubjectID, func(origin *node.Node) {
			origin.Label = p.Origin.Label
			node.CopyAttributes(origin, p.Origin)
		})

	case mutate.KindFinishEdit:
		p, ok := op.Payload.(*mutate.LabelPayload)
		if !ok {
			return badPayload(op)
		}
		return inv.attributes(op.SubjectID, func(origin *node.Node) {
			origin.Label = p.Origin
		})

	case mutate.KindEditStyle:
		p, ok := op.Payload.(*mutate.StylePayload)
		if !ok {
			return badPayload(op)
		}
		return inv.attributes(op.SubjectID, func(origin *node.Node) {
			origin.Style = nil
			if p.Origin != nil {
				s := *p.Origin
				origin.Style = &s
			}
		})

	case mutate.KindEditTags, mutate.KindEditIcons:
		p, ok := op.Payload.(*mutate.ListPayload)
		if !ok {
			return badPayload(op)
		}
		return inv.attributes(op.SubjectID, func(origin *node.Node) {
			if op.Kind == mutate.KindEditTags {
				origin.Tags = slices.Clone(p.Origin)
			} else {
				origin.Icons = slices.Clone(p.Origin)
			}
		})

	case mutate.KindExpandNode, mutate.KindUnknown:
		return ErrNotUndoable

	default:
		return fmt.Errorf("%w: %s", ErrNotUndoable, op.Kind)
	}
}

func badPayload(op mutate.Operation) error {
	return fmt.Errorf("%s: unexpected payload %T", op.Kind, op.Payload)
}

type inverter struct {
	a    Applier
	root *node.Node
}

func (inv inverter) find(id string) (*node.Node, error) {
	n := node.Find(inv.root, id)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrStaleEntry, id)
	}
	return n, nil
}

// unlink removes added nodes, newest first, and collapses the parent again
// when the insertion had expanded it.
func (inv inverter) unlink(ids []string, parentID string, expanded bool) error {
	for i := len(ids) - 1; i >= 0; i-- {
		n, err := inv.find(ids[i])
		if err != nil {
			return err
		}
		if _, err := inv.a.Unlink(n); err != nil {
			return err
		}
	}
	if !expanded {
		return nil
	}
	parent, err := inv.find(parentID)
	if err != nil {
		return err
	}
	_, err = inv.a.SetExpanded(parent, false)
	return err
}

// restore puts a removed subtree back before its former next sibling, or
// last under its former parent.
func (inv inverter) restore(p *mutate.RemovePayload) error {
	parent, err := inv.find(p.ParentID)
	if err != nil {
		return err
	}
	index := len(parent.Children)
	if p.NextSiblingID != "" {
		if next := node.Find(inv.root, p.NextSiblingID); next != nil && next.Parent == parent {
			index = next.Index()
		}
	}
	_, err = inv.a.InsertAt(parent, index, node.Clone(p.Node))
	return err
}

// move sends every moved node back, last moved first.
func (inv inverter) move(p *mutate.MovePayload) error {
	for i := len(p.Moves) - 1; i >= 0; i-- {
		mv := p.Moves[i]
		n, err := inv.find(mv.NodeID)
		if err != nil {
			return err
		}
		parent, err := inv.find(mv.FromParentID)
		if err != nil {
			return err
		}
		var before *node.Node
		if mv.FromNextID != "" {
			if next := node.Find(inv.root, mv.FromNextID); next != nil && next.Parent == parent {
				before = next
			}
		}
		if _, err := inv.a.MoveTo(n, parent, before, mv.FromSide); err != nil {
			return err
		}
	}
	if !p.Expanded {
		return nil
	}
	target, err := inv.find(p.TargetID)
	if err != nil {
		return err
	}
	_, err = inv.a.SetExpanded(target, false)
	return err
}

// swap moves a node back to the index it held before moveUp or moveDown.
func (inv inverter) swap(id string, p *mutate.SwapPayload) error {
	n, err := inv.find(id)
	if err != nil {
		return err
	}
	parent, err := inv.find(p.ParentID)
	if err != nil {
		return err
	}
	others := slices.DeleteFunc(slices.Clone(parent.Children), func(c *node.Node) bool { return c == n })
	var before *node.Node
	if p.From < len(others) {
		before = others[p.From]
	}
	_, err = inv.a.MoveTo(n, parent, before, n.Side)
	return err
}

// insertParent moves the target back to the grandparent and removes the
// inserted parent.
func (inv inverter) insertParent(p *mutate.InsertParentPayload) error {
	inserted, err := inv.find(p.Node.ID)
	if err != nil {
		return err
	}
	target, err := inv.find(p.TargetID)
	if err != nil {
		return err
	}
	grandparent, err := inv.find(p.ParentID)
	if err != nil {
		return err
	}
	if _, err := inv.a.MoveTo(target, grandparent, inserted, target.Side); err != nil {
		return err
	}
	_, err = inv.a.Unlink(inserted)
	return err
}

// attributes restores label and decorative attributes. edit receives a
// copy of the current attributes to modify into the origin state.
func (inv inverter) attributes(id string, edit func(origin *node.Node)) error {
	n, err := inv.find(id)
	if err != nil {
		return err
	}
	origin := node.CloneShallow(n)
	edit(origin)
	_, err = inv.a.RestoreAttributes(n, origin)
	return err
}
