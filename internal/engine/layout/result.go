package layout

import "github.com/dshills/mindstorm/internal/engine/node"

// Box is the placed rectangle of one node.
type Box struct {
	ID      string
	X, Y    int // top-left corner
	W, H    int
	CenterY int

	// Extent of the node together with its visible descendants.
	SubtreeW int
	SubtreeH int

	Side      node.Side // branch side; SideNone for the root
	Depth     int       // root is 1
	Collapsed bool      // has children that are hidden
}

// Right returns the x coordinate just past the box.
func (b Box) Right() int { return b.X + b.W }

// Bottom returns the y coordinate just past the box.
func (b Box) Bottom() int { return b.Y + b.H }

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Result is a computed layout.
type Result struct {
	RootID    string
	Direction Direction
	HGap      int
	VGap      int
	Boxes     map[string]Box
}

// Box returns the box of a node; ok is false for hidden or unknown nodes.
func (r *Result) Box(id string) (Box, bool) {
	if r == nil {
		return Box{}, false
	}
	b, ok := r.Boxes[id]
	return b, ok
}

// Len returns the number of placed boxes.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Boxes)
}

// Bounds returns the smallest rectangle enclosing every box.
func (r *Result) Bounds() Rect {
	if r.Len() == 0 {
		return Rect{}
	}
	first := true
	var minX, minY, maxX, maxY int
	for _, b := range r.Boxes {
		if first {
			minX, minY, maxX, maxY = b.X, b.Y, b.Right(), b.Bottom()
			first = false
			continue
		}
		minX = min(minX, b.X)
		minY = min(minY, b.Y)
		maxX = max(maxX, b.Right())
		maxY = max(maxY, b.Bottom())
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// At returns the id of the box containing the point, if any.
func (r *Result) At(x, y int) (string, bool) {
	if r == nil {
		return "", false
	}
	for id, b := range r.Boxes {
		if (Rect{X: b.X, Y: b.Y, W: b.W, H: b.H}).Contains(x, y) {
			return id, true
		}
	}
	return "", false
}
