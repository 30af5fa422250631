// Package export renders mind maps as text.
package export

import (
	"strings"

	"github.com/dshills/mindstorm/internal/engine/node"
)

// maxHeading is the deepest level written as a heading. Deeper nodes
// become bullets.
const maxHeading = 6

// Markdown renders the tree as Markdown. The root becomes a level-one
// heading, its descendants headings one level deeper per generation. Nodes
// below level six are written as bullets, indented with one tab per level
// past seven. Labels are folded onto one line.
func Markdown(root *node.Node) string {
	if root == nil {
		return ""
	}
	var b strings.Builder
	writeNode(&b, root, 1)
	return b.String()
}

// MarkdownNodes renders each node as its own document, in order, with a
// blank line after each. Every level is a heading, however deep.
func MarkdownNodes(nodes []*node.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		if n != nil {
			writeHeadings(&b, n, 1)
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func writeHeadings(b *strings.Builder, n *node.Node, depth int) {
	b.WriteString(strings.Repeat("#", depth))
	b.WriteByte(' ')
	b.WriteString(oneLine(n.Label))
	b.WriteString("\n\n")
	for _, c := range n.Children {
		writeHeadings(b, c, depth+1)
	}
}

func writeNode(b *strings.Builder, n *node.Node, depth int) {
	if depth <= maxHeading {
		b.WriteString(strings.Repeat("#", depth))
		b.WriteByte(' ')
		b.WriteString(oneLine(n.Label))
		b.WriteString("\n\n")
	} else {
		b.WriteString(strings.Repeat("\t", depth-maxHeading-1))
		b.WriteString("- ")
		b.WriteString(oneLine(n.Label))
		b.WriteByte('\n')
	}
	for _, c := range n.Children {
		writeNode(b, c, depth+1)
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
