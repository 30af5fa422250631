package export

import (
	"strings"

	"github.com/dshills/mindstorm/internal/engine/node"
)

// OutlineOptions controls Outline.
type OutlineOptions struct {
	// Indent is repeated once per depth level. Defaults to two spaces.
	Indent string
	// Visible skips the children of collapsed nodes.
	Visible bool
	// Markers appends "[+]" to collapsed nodes with children.
	Markers bool
}

// Outline renders the tree as an indented plain-text list, one node per
// line, with the root unindented.
func Outline(root *node.Node, opts OutlineOptions) string {
	if root == nil {
		return ""
	}
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	var b strings.Builder
	var walk func(n *node.Node, depth int)
	walk = func(n *node.Node, depth int) {
		b.WriteString(strings.Repeat(opts.Indent, depth))
		b.WriteString(oneLine(n.Label))
		if opts.Markers && !n.IsExpanded() && n.HasChildren() {
			b.WriteString(" [+]")
		}
		b.WriteByte('\n')
		if opts.Visible && !n.IsExpanded() {
			return
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(root, 0)
	return b.String()
}
