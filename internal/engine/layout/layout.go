package layout

import "github.com/dshills/mindstorm/internal/engine/node"

// Config holds spacing and measurement settings.
type Config struct {
	HGap    int // cells between a parent and its children
	VGap    int // cells between sibling subtrees
	Measure Measurer
}

// DefaultConfig returns the terminal defaults: bordered single-line boxes
// with one blank row between siblings.
func DefaultConfig() Config {
	return Config{
		HGap:    4,
		VGap:    1,
		Measure: TextMeasurer{PaddingX: 2, PaddingY: 1},
	}
}

func (c Config) normalized() Config {
	if c.Measure == nil {
		c.Measure = DefaultConfig().Measure
	}
	c.HGap = max(c.HGap, 0)
	c.VGap = max(c.VGap, 0)
	return c
}

// Compute lays out the whole tree under root.
func Compute(root *node.Node, dir Direction, cfg Config) *Result {
	return newBuilder(cfg, nil, nil).run(root, dir)
}

// Relayout lays out the tree again after a change at changedID, measuring
// only the branch that contains it and reusing prev for every other
// branch. Positions are always recomputed. The result equals Compute.
//
// Changes to the root itself, an unknown id, or a prev computed for a
// different root, direction or spacing fall back to Compute.
func Relayout(prev *Result, root *node.Node, dir Direction, cfg Config, changedID string) *Result {
	cfg = cfg.normalized()
	if prev == nil || root == nil || prev.RootID != root.ID || prev.Direction != dir ||
		prev.HGap != cfg.HGap || prev.VGap != cfg.VGap {
		return Compute(root, dir, cfg)
	}
	branch := BranchOf(root, node.Find(root, changedID))
	if branch == nil {
		return Compute(root, dir, cfg)
	}
	return newBuilder(cfg, prev, branch).run(root, dir)
}

// BranchOf returns the child of root that contains n, or nil when n is
// root or outside the tree.
func BranchOf(root, n *node.Node) *node.Node {
	if n == nil || n == root {
		return nil
	}
	for n.Parent != nil {
		if n.Parent == root {
			return n
		}
		n = n.Parent
	}
	return nil
}

type builder struct {
	cfg   Config
	boxes map[string]Box
	prev  *Result
	dirty *node.Node
}

func newBuilder(cfg Config, prev *Result, dirty *node.Node) *builder {
	return &builder{
		cfg:   cfg.normalized(),
		boxes: make(map[string]Box),
		prev:  prev,
		dirty: dirty,
	}
}

func (b *builder) run(root *node.Node, dir Direction) *Result {
	res := &Result{
		Direction: dir,
		HGap:      b.cfg.HGap,
		VGap:      b.cfg.VGap,
		Boxes:     b.boxes,
	}
	if root == nil {
		return res
	}
	res.RootID = root.ID

	left, right := Sides(root, dir)
	rb := b.newBox(root, node.SideNone, 1)
	lw, lh := b.sizeGroup(left, node.SideLeft, 2)
	rw, rh := b.sizeGroup(right, node.SideRight, 2)
	rb.SubtreeH = max(rb.H, lh, rh)
	rb.SubtreeW = rb.W
	if len(left) > 0 {
		rb.SubtreeW += b.cfg.HGap + lw
	}
	if len(right) > 0 {
		rb.SubtreeW += b.cfg.HGap + rw
	}
	rb.X = 0
	rb.CenterY = 0
	rb.Y = -rb.H / 2
	b.boxes[root.ID] = rb

	b.place(rb, left, node.SideLeft)
	b.place(rb, right, node.SideRight)
	return res
}

func (b *builder) newBox(n *node.Node, side node.Side, depth int) Box {
	w, h := b.cfg.Measure.Measure(n.Label)
	return Box{
		ID:        n.ID,
		W:         w,
		H:         h,
		Side:      side,
		Depth:     depth,
		Collapsed: n.HasChildren() && !n.IsExpanded(),
	}
}

// sizeGroup measures a run of siblings and returns the widest subtree and
// the total span including gaps.
func (b *builder) sizeGroup(children []*node.Node, side node.Side, depth int) (width, span int) {
	for i, c := range children {
		cb := b.size(c, side, depth)
		width = max(width, cb.SubtreeW)
		span += cb.SubtreeH
		if i > 0 {
			span += b.cfg.VGap
		}
	}
	return width, span
}

// size is the post-order pass.
func (b *builder) size(n *node.Node, side node.Side, depth int) Box {
	if depth == 2 && b.prev != nil && n != b.dirty {
		if box, ok := b.reuse(n, side); ok {
			return box
		}
	}
	box := b.newBox(n, side, depth)
	children := n.VisibleChildren()
	if len(children) == 0 {
		box.SubtreeW = box.W
		box.SubtreeH = box.H
	} else {
		width, span := b.sizeGroup(children, side, depth+1)
		box.SubtreeW = box.W + b.cfg.HGap + width
		// A box taller than its children's span keeps its own height.
		box.SubtreeH = max(box.H, span)
	}
	b.boxes[n.ID] = box
	return box
}

// reuse copies the sizes of an unchanged branch from the previous result.
// It fails when any visible node of the branch is missing there.
func (b *builder) reuse(branch *node.Node, side node.Side) (Box, bool) {
	copied := make(map[string]Box)
	ok := true
	var visit func(n *node.Node)
	visit = func(n *node.Node) {
		pb, found := b.prev.Boxes[n.ID]
		if !found || !ok {
			ok = false
			return
		}
		pb.Side = side
		copied[n.ID] = pb
		for _, c := range n.VisibleChildren() {
			visit(c)
		}
	}
	visit(branch)
	if !ok {
		return Box{}, false
	}
	for id, box := range copied {
		b.boxes[id] = box
	}
	return copied[branch.ID], true
}

// place is the pre-order pass: it centres children on parent and recurses.
func (b *builder) place(parent Box, children []*node.Node, side node.Side) {
	if len(children) == 0 {
		return
	}
	span := 0
	for i, c := range children {
		span += b.boxes[c.ID].SubtreeH
		if i > 0 {
			span += b.cfg.VGap
		}
	}

	top := parent.CenterY - span/2
	for _, c := range children {
		cb := b.boxes[c.ID]
		cb.CenterY = top + cb.SubtreeH/2
		cb.Y = cb.CenterY - cb.H/2
		if side == node.SideLeft {
			cb.X = parent.X - b.cfg.HGap - cb.W
		} else {
			cb.X = parent.X + parent.W + b.cfg.HGap
		}
		b.boxes[c.ID] = cb
		top += cb.SubtreeH + b.cfg.VGap
		b.place(cb, c.VisibleChildren(), side)
	}
}
