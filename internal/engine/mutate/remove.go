package mutate

import "github.com/dshills/mindstorm/internal/engine/node"

// RemoveNode detaches target and its subtree. The root cannot be removed.
//
// The result's Selection is the preceding sibling, else the following
// sibling, else the former parent.
func (m *Mutator) RemoveNode(target *node.Node) (Result, error) {
	if err := m.check(KindRemoveNode, target); err != nil {
		return Result{}, err
	}
	if target.Root || target.Parent == nil {
		return Result{}, fail(KindRemoveNode, target, ErrRootImmutable)
	}

	rec := m.remove(target)
	op := m.commit(KindRemoveNode, target, rec)
	return Result{Node: target, Selection: node.Find(m.root, rec.SelectionID), Op: op}, nil
}

// RemoveNodes detaches every target in one operation. Descendants of other
// targets and the root are skipped. Removing nothing is a no-op.
func (m *Mutator) RemoveNodes(targets []*node.Node) (Result, error) {
	var candidates []*node.Node
	for _, t := range targets {
		if !m.owns(t) {
			return Result{}, fail(KindRemoveNodes, t, ErrNodeNotFound)
		}
		if !t.Root {
			candidates = append(candidates, t)
		}
	}
	var list []*node.Node
	for _, t := range node.Dedupe(candidates) {
		if m.before != nil && !m.before(KindRemoveNodes, t) {
			return Result{}, fail(KindRemoveNodes, t, ErrVetoed)
		}
		list = append(list, t)
	}
	if len(list) == 0 {
		return Result{}, nil
	}

	p := &RemoveNodesPayload{}
	for _, t := range list {
		rec := m.remove(t)
		p.Removed = append(p.Removed, *rec)
	}
	p.SelectionID = p.Removed[len(p.Removed)-1].SelectionID
	op := m.commit(KindRemoveNodes, list[0], p)
	return Result{Node: list[0], Nodes: list, Selection: node.Find(m.root, p.SelectionID), Op: op}, nil
}

// remove detaches n and records where it was.
func (m *Mutator) remove(n *node.Node) *RemovePayload {
	parent := n.Parent
	rec := &RemovePayload{
		Node:     node.Clone(n),
		ParentID: parent.ID,
		Index:    n.Index(),
	}
	if next := n.NextSibling(); next != nil {
		rec.NextSiblingID = next.ID
	}

	detach(n)
	switch {
	case rec.Index > 0:
		rec.SelectionID = parent.Children[rec.Index-1].ID
	case len(parent.Children) > 0:
		rec.SelectionID = parent.Children[0].ID
	default:
		rec.SelectionID = parent.ID
	}
	return rec
}
