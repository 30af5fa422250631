package node

import "testing"

func TestSplitSides(t *testing.T) {
	tests := []struct {
		name      string
		sides     []Side
		wantLeft  []string
		wantRight []string
	}{
		{name: "empty"},
		{
			name:     "unassigned alternate starting left",
			sides:    []Side{SideNone, SideNone, SideNone, SideNone},
			wantLeft: []string{"c0", "c2"}, wantRight: []string{"c1", "c3"},
		},
		{
			name:     "assigned honoured",
			sides:    []Side{SideRight, SideRight, SideRight},
			wantLeft: nil, wantRight: []string{"c0", "c1", "c2"},
		},
		{
			name:     "unassigned fill the smaller side",
			sides:    []Side{SideRight, SideRight, SideNone, SideNone},
			wantLeft: []string{"c2", "c3"}, wantRight: []string{"c0", "c1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := New("root", AsRoot())
			for i, s := range tt.sides {
				root.Children = append(root.Children, New("c", WithID("c"+string(rune('0'+i))), WithSide(s)))
			}
			left, right := SplitSides(root)
			if !sameIDs(left, tt.wantLeft) {
				t.Errorf("left = %v, want %v", ids(left), tt.wantLeft)
			}
			if !sameIDs(right, tt.wantRight) {
				t.Errorf("right = %v, want %v", ids(right), tt.wantRight)
			}
		})
	}
}

func TestNextSide(t *testing.T) {
	root := New("root", AsRoot())
	if got := NextSide(root); got != SideLeft {
		t.Errorf("empty root NextSide = %v, want left", got)
	}
	root.Children = append(root.Children, New("a", WithSide(SideLeft)))
	if got := NextSide(root); got != SideRight {
		t.Errorf("NextSide = %v, want right", got)
	}
}

func ids(nodes []*Node) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func sameIDs(nodes []*Node, want []string) bool {
	got := ids(nodes)
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
