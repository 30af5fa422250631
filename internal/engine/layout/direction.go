package layout

import (
	"fmt"
	"strings"

	"github.com/dshills/mindstorm/internal/engine/node"
)

// Direction controls which side of the root branches are placed on.
type Direction int

const (
	// Left places every branch left of the root.
	Left Direction = iota
	// Right places every branch right of the root.
	Right
	// Both splits branches between the two sides.
	Both
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection parses "left", "right" or "both". "side" is accepted as
// an alias for both.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	case "both", "side":
		return Both, nil
	default:
		return Both, fmt.Errorf("unknown direction %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	v, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Partition splits the root's visible children into left and right
// branches for Both. See node.SplitSides for the assignment rule.
func Partition(root *node.Node) (left, right []*node.Node) {
	if root == nil || !root.IsExpanded() {
		return nil, nil
	}
	return node.SplitSides(root)
}

// Sides returns the visible branches drawn on each side for dir.
func Sides(root *node.Node, dir Direction) (left, right []*node.Node) {
	switch dir {
	case Left:
		return root.VisibleChildren(), nil
	case Right:
		return nil, root.VisibleChildren()
	default:
		return Partition(root)
	}
}
