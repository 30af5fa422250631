package mutate

import "github.com/dshills/mindstorm/internal/engine/node"

// CopyNode adds a copy of src's subtree under to. Every node in the copy
// gets a new id.
func (m *Mutator) CopyNode(src, to *node.Node) (Result, error) {
	return m.CopyNodes([]*node.Node{src}, to)
}

// CopyNodes adds copies of srcs under to, skipping sources nested inside
// other sources. A single source emits copyNode; several emit copyNodes.
func (m *Mutator) CopyNodes(srcs []*node.Node, to *node.Node) (Result, error) {
	kind := KindCopyNodes
	if len(srcs) == 1 {
		kind = KindCopyNode
	}
	if err := m.check(kind, to); err != nil {
		return Result{}, err
	}
	for _, s := range srcs {
		if !m.owns(s) {
			return Result{}, fail(kind, s, ErrNodeNotFound)
		}
	}
	list := node.Dedupe(srcs)
	if len(list) == 0 {
		return Result{}, nil
	}

	// Clone everything first so copying a node into itself copies the
	// subtree as it was.
	copies := make([]*node.Node, len(list))
	for i, s := range list {
		copies[i] = node.CloneFresh(s)
	}
	p := &CopyPayload{ParentID: to.ID}
	for i, c := range copies {
		if m.attach(to, c) {
			p.Expanded = true
		}
		p.SourceIDs = append(p.SourceIDs, list[i].ID)
		p.Nodes = append(p.Nodes, node.Clone(c))
	}

	op := m.commit(kind, copies[0], p)
	return Result{Node: copies[0], Nodes: copies, Selection: copies[len(copies)-1], Op: op}, nil
}
