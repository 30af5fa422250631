package export

import (
	"testing"

	"github.com/dshills/mindstorm/internal/engine/node"
)

func sampleTree() *node.Node {
	root := node.New("Root", node.AsRoot(), node.WithChildren(
		node.New("A", node.Collapsed(), node.WithChildren(
			node.New("A1"),
			node.New("A2"),
		)),
		node.New("B"),
	))
	node.RecomputeParentLinks(root)
	return root
}

func TestMarkdown(t *testing.T) {
	want := "# Root\n\n## A\n\n### A1\n\n### A2\n\n## B\n\n"
	if got := Markdown(sampleTree()); got != want {
		t.Errorf("Markdown =\n%q\nwant\n%q", got, want)
	}
}

func TestMarkdownDeepNodes(t *testing.T) {
	root := node.New("L1", node.AsRoot())
	n := root
	for _, label := range []string{"L2", "L3", "L4", "L5", "L6", "L7", "L8"} {
		c := node.New(label)
		n.Children = []*node.Node{c}
		n = c
	}
	want := "# L1\n\n## L2\n\n### L3\n\n#### L4\n\n##### L5\n\n###### L6\n\n- L7\n\t- L8\n"
	if got := Markdown(root); got != want {
		t.Errorf("Markdown =\n%q\nwant\n%q", got, want)
	}
}

func TestMarkdownFlattensLabels(t *testing.T) {
	root := node.New("first line\nsecond   line", node.AsRoot())
	if got, want := Markdown(root), "# first line second line\n\n"; got != want {
		t.Errorf("Markdown = %q, want %q", got, want)
	}
}

func TestMarkdownNodes(t *testing.T) {
	root := sampleTree()
	got := MarkdownNodes([]*node.Node{root.Children[1], root.Children[0]})
	want := "# B\n\n\n\n# A\n\n## A1\n\n## A2\n\n\n\n"
	if got != want {
		t.Errorf("MarkdownNodes =\n%q\nwant\n%q", got, want)
	}
	if MarkdownNodes(nil) != "" || Markdown(nil) != "" {
		t.Error("empty input produced output")
	}
}

func TestMarkdownNodesHeadingsAtEveryDepth(t *testing.T) {
	root := node.New("L1", node.AsRoot())
	n := root
	for _, label := range []string{"L2", "L3", "L4", "L5", "L6", "L7", "L8"} {
		c := node.New(label)
		n.Children = []*node.Node{c}
		n = c
	}
	want := "# L1\n\n## L2\n\n### L3\n\n#### L4\n\n##### L5\n\n###### L6\n\n" +
		"####### L7\n\n######## L8\n\n\n\n"
	if got := MarkdownNodes([]*node.Node{root}); got != want {
		t.Errorf("MarkdownNodes =\n%q\nwant\n%q", got, want)
	}
}

func TestOutline(t *testing.T) {
	tests := []struct {
		name string
		opts OutlineOptions
		want string
	}{
		{"full", OutlineOptions{}, "Root\n  A\n    A1\n    A2\n  B\n"},
		{"visible", OutlineOptions{Visible: true, Markers: true}, "Root\n  A [+]\n  B\n"},
		{"indent", OutlineOptions{Indent: "\t"}, "Root\n\tA\n\t\tA1\n\t\tA2\n\tB\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Outline(sampleTree(), tt.opts); got != tt.want {
				t.Errorf("Outline =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}
