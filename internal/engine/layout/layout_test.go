package layout

import (
	"reflect"
	"strings"
	"testing"

	"github.com/dshills/mindstorm/internal/engine/node"
)

// fixedConfig measures every label as len+2 wide and 3 tall.
func fixedConfig() Config {
	return Config{
		HGap: 2,
		VGap: 1,
		Measure: MeasureFunc(func(label string) (int, int) {
			return len(label) + 2, 3
		}),
	}
}

func n(id string, children ...*node.Node) *node.Node {
	return node.New(id, node.WithID(id), node.WithChildren(children...))
}

func tree(children ...*node.Node) *node.Node {
	root := node.New("R", node.AsRoot(), node.WithID("R"), node.WithChildren(children...))
	node.RecomputeParentLinks(root)
	return root
}

func TestComputePositions(t *testing.T) {
	root := tree(n("A", n("A1"), n("A2")), n("B"))
	res := Compute(root, Right, fixedConfig())

	tests := []struct {
		id       string
		x, y     int
		centerY  int
		subtreeW int
		subtreeH int
	}{
		{"R", 0, -1, 0, 14, 11},
		{"A", 5, -3, -2, 9, 7},
		{"B", 5, 3, 4, 3, 3},
		{"A1", 10, -5, -4, 4, 3},
		{"A2", 10, -1, 0, 4, 3},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			b, ok := res.Box(tt.id)
			if !ok {
				t.Fatalf("no box for %s", tt.id)
			}
			if b.X != tt.x || b.Y != tt.y || b.CenterY != tt.centerY {
				t.Errorf("position = (%d,%d) centre %d, want (%d,%d) centre %d",
					b.X, b.Y, b.CenterY, tt.x, tt.y, tt.centerY)
			}
			if b.SubtreeW != tt.subtreeW || b.SubtreeH != tt.subtreeH {
				t.Errorf("subtree = %dx%d, want %dx%d", b.SubtreeW, b.SubtreeH, tt.subtreeW, tt.subtreeH)
			}
		})
	}
	if res.Len() != 5 {
		t.Errorf("Len = %d, want 5", res.Len())
	}
}

func TestRootAnchoredAtOrigin(t *testing.T) {
	for _, dir := range []Direction{Left, Right, Both} {
		res := Compute(tree(n("A"), n("B"), n("C")), dir, fixedConfig())
		rb, _ := res.Box("R")
		if rb.X != 0 || rb.CenterY != 0 {
			t.Errorf("%v: root at x=%d centre=%d, want 0,0", dir, rb.X, rb.CenterY)
		}
	}
}

func TestSubtreeAdditivity(t *testing.T) {
	root := tree(
		n("A", n("A1", n("A11"), n("A12"), n("A13")), n("A2")),
		n("B", n("B1")),
		n("C"),
	)
	cfg := fixedConfig()
	res := Compute(root, Right, cfg)

	node.Walk(root, func(x *node.Node) bool {
		if x == root || len(x.VisibleChildren()) == 0 {
			return true
		}
		sum := 0
		for _, c := range x.VisibleChildren() {
			sum += res.Boxes[c.ID].SubtreeH
		}
		want := sum + (len(x.VisibleChildren())-1)*cfg.VGap
		if got := res.Boxes[x.ID].SubtreeH; got != want {
			t.Errorf("%s SubtreeH = %d, want %d", x.ID, got, want)
		}
		return true
	})
}

func TestTallParentKeepsItsHeight(t *testing.T) {
	tall := node.New("A\nA\nA\nA", node.WithID("A"), node.WithChildren(n("A1")))
	root := tree(tall, n("B"))
	cfg := Config{
		HGap: 2,
		VGap: 1,
		Measure: MeasureFunc(func(label string) (int, int) {
			return 6, strings.Count(label, "\n") + 3
		}),
	}
	res := Compute(root, Right, cfg)
	a, b := res.Boxes["A"], res.Boxes["B"]
	if a.H != 6 || a.SubtreeH != 6 {
		t.Fatalf("A H = %d, SubtreeH = %d, want 6 and 6", a.H, a.SubtreeH)
	}
	if a.Bottom()+cfg.VGap > b.Y {
		t.Errorf("A bottom %d leaves no gap above B at %d", a.Bottom(), b.Y)
	}
	a1 := res.Boxes["A1"]
	if a1.CenterY != a.CenterY {
		t.Errorf("A1 CenterY = %d, want centred on A at %d", a1.CenterY, a.CenterY)
	}
	if got := Relayout(res, root, Right, cfg, "A"); !reflect.DeepEqual(got, res) {
		t.Error("Relayout differs from Compute")
	}
}

func TestComputeDeterministic(t *testing.T) {
	build := func() *node.Node {
		return tree(n("A", n("A1"), n("A2")), n("B", n("B1")), n("C"), n("D"))
	}
	for _, dir := range []Direction{Left, Right, Both} {
		a := Compute(build(), dir, DefaultConfig())
		b := Compute(build(), dir, DefaultConfig())
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%v: layouts differ", dir)
		}
	}
}

func TestCollapsedUsesOwnBox(t *testing.T) {
	root := tree(n("A", n("A1"), n("A2")), n("B"))
	node.Find(root, "A").SetExpanded(false)
	res := Compute(root, Right, fixedConfig())

	a := res.Boxes["A"]
	if a.SubtreeH != a.H || a.SubtreeW != a.W {
		t.Errorf("collapsed subtree = %dx%d, want own %dx%d", a.SubtreeW, a.SubtreeH, a.W, a.H)
	}
	if !a.Collapsed {
		t.Error("box not flagged collapsed")
	}
	if _, ok := res.Box("A1"); ok {
		t.Error("hidden child was placed")
	}
}

func TestDirections(t *testing.T) {
	root := tree(n("A", n("A1")), n("B"), n("C"))
	cfg := fixedConfig()

	right := Compute(root, Right, cfg)
	rb := right.Boxes["R"]
	for id, b := range right.Boxes {
		if id != "R" && b.X < rb.Right()+cfg.HGap {
			t.Errorf("right: %s at x=%d left of root", id, b.X)
		}
	}

	left := Compute(root, Left, cfg)
	for id, b := range left.Boxes {
		if id != "R" && b.Right() > -cfg.HGap {
			t.Errorf("left: %s ends at x=%d right of root", id, b.Right())
		}
	}

	both := Compute(root, Both, cfg)
	// A and C go left, B goes right.
	if both.Boxes["A"].Side != node.SideLeft || both.Boxes["B"].Side != node.SideRight ||
		both.Boxes["C"].Side != node.SideLeft || both.Boxes["A1"].Side != node.SideLeft {
		t.Errorf("sides = A:%v B:%v C:%v A1:%v", both.Boxes["A"].Side, both.Boxes["B"].Side,
			both.Boxes["C"].Side, both.Boxes["A1"].Side)
	}
	if both.Boxes["B"].X <= 0 || both.Boxes["A"].X >= 0 {
		t.Error("both: branches on the wrong side")
	}
}

func TestBothHonoursAssignedSides(t *testing.T) {
	root := tree(n("A"), n("B"), n("C"))
	for _, c := range root.Children {
		c.Side = node.SideRight
	}
	left, right := Partition(root)
	if len(left) != 0 || len(right) != 3 {
		t.Errorf("partition = %d left, %d right", len(left), len(right))
	}
	res := Compute(root, Both, fixedConfig())
	if rb := res.Boxes["R"]; rb.SubtreeH != 11 {
		t.Errorf("root SubtreeH = %d, want 11", rb.SubtreeH)
	}
}

func TestSiblingsDoNotOverlap(t *testing.T) {
	root := tree(
		n("A", n("A1", n("A11"), n("A12")), n("A2")),
		n("B", n("B1"), n("B2"), n("B3")),
	)
	res := Compute(root, Right, DefaultConfig())
	node.Walk(root, func(x *node.Node) bool {
		kids := x.VisibleChildren()
		for i := 1; i < len(kids); i++ {
			prev, cur := res.Boxes[kids[i-1].ID], res.Boxes[kids[i].ID]
			if prev.Bottom() > cur.Y {
				t.Errorf("%s overlaps %s", prev.ID, cur.ID)
			}
		}
		return true
	})
}

func TestRelayoutMatchesCompute(t *testing.T) {
	cfg := fixedConfig()
	tests := []struct {
		name   string
		dir    Direction
		change func(root *node.Node) string
	}{
		{
			name: "add child in branch",
			dir:  Right,
			change: func(root *node.Node) string {
				a1 := node.Find(root, "A1")
				a1.Children = append(a1.Children, n("A1x"), n("A1y"))
				return "A1"
			},
		},
		{
			name: "relabel",
			dir:  Both,
			change: func(root *node.Node) string {
				node.Find(root, "B1").Label = "a much longer label"
				return "B1"
			},
		},
		{
			name: "collapse",
			dir:  Left,
			change: func(root *node.Node) string {
				node.Find(root, "A").SetExpanded(false)
				return "A"
			},
		},
		{
			name: "root level insert falls back",
			dir:  Both,
			change: func(root *node.Node) string {
				root.Children = append(root.Children, n("D"))
				return "R"
			},
		},
		{
			name: "unknown id falls back",
			dir:  Right,
			change: func(root *node.Node) string {
				node.Find(root, "C").Children = nil
				return "missing"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := tree(n("A", n("A1"), n("A2")), n("B", n("B1")), n("C", n("C1")))
			prev := Compute(root, tt.dir, cfg)

			id := tt.change(root)
			node.RecomputeParentLinks(root)

			got := Relayout(prev, root, tt.dir, cfg, id)
			want := Compute(root, tt.dir, cfg)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Relayout differs from Compute\n got: %+v\nwant: %+v", got.Boxes, want.Boxes)
			}
		})
	}
}

func TestRelayoutDirectionChangeFallsBack(t *testing.T) {
	root := tree(n("A"), n("B"))
	prev := Compute(root, Right, fixedConfig())
	got := Relayout(prev, root, Left, fixedConfig(), "A")
	if !reflect.DeepEqual(got, Compute(root, Left, fixedConfig())) {
		t.Error("Relayout with a new direction differs from Compute")
	}
}

func TestBounds(t *testing.T) {
	res := Compute(tree(n("A", n("A1"), n("A2")), n("B")), Right, fixedConfig())
	got := res.Bounds()
	want := Rect{X: 0, Y: -5, W: 14, H: 11}
	if got != want {
		t.Errorf("Bounds = %+v, want %+v", got, want)
	}
	if id, ok := res.At(11, -4); !ok || id != "A1" {
		t.Errorf("At = %q, %v; want A1", id, ok)
	}
	if _, ok := res.At(100, 100); ok {
		t.Error("At found a box outside the layout")
	}
}

func TestTextMeasurer(t *testing.T) {
	m := TextMeasurer{PaddingX: 1, PaddingY: 1}
	tests := []struct {
		label string
		w, h  int
	}{
		{"abc", 5, 3},
		{"日本", 6, 3},
		{"one\nlonger", 8, 4},
		{"", 2, 3},
	}
	for _, tt := range tests {
		w, h := m.Measure(tt.label)
		if w != tt.w || h != tt.h {
			t.Errorf("Measure(%q) = %d,%d, want %d,%d", tt.label, w, h, tt.w, tt.h)
		}
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"left", Left, false},
		{"RIGHT", Right, false},
		{"both", Both, false},
		{"side", Both, false},
		{"up", Both, true},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if (err != nil) != tt.wantErr || (!tt.wantErr && got != tt.want) {
			t.Errorf("ParseDirection(%q) = %v, %v", tt.in, got, err)
		}
	}
}
