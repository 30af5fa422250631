package engine

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dshills/mindstorm/internal/engine/layout"
	"github.com/dshills/mindstorm/internal/engine/mutate"
	"github.com/dshills/mindstorm/internal/engine/node"
	"github.com/dshills/mindstorm/internal/event"
	"github.com/dshills/mindstorm/internal/logging"
	"github.com/dshills/mindstorm/internal/snapshot"
)

// sampleData is Root{A{A1,A2},B,C}, laid out to the right.
func sampleData() *snapshot.Data {
	root := node.New("Root", node.AsRoot(), node.WithID("root"), node.WithChildren(
		node.New("A", node.WithID("a"), node.WithChildren(
			node.New("A1", node.WithID("a1")),
			node.New("A2", node.WithID("a2")),
		)),
		node.New("B", node.WithID("b")),
		node.New("C", node.WithID("c")),
	))
	return &snapshot.Data{NodeData: root, Direction: layout.Right}
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(sampleData(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func currentID(e *Engine) string {
	if cur := e.Current(); cur != nil {
		return cur.ID
	}
	return ""
}

// ============================================================================
// Construction
// ============================================================================

func TestNew(t *testing.T) {
	e := newTestEngine(t)
	if e.NodeCount() != 6 {
		t.Errorf("NodeCount = %d, want 6", e.NodeCount())
	}
	if e.Direction() != layout.Right {
		t.Errorf("Direction = %v, want right", e.Direction())
	}
	if currentID(e) != "root" {
		t.Errorf("current = %q, want root", currentID(e))
	}
	if e.CanUndo() {
		t.Error("fresh engine can undo")
	}
}

func TestNewRejects(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNoData) {
		t.Errorf("New(nil) err = %v, want ErrNoData", err)
	}

	data := sampleData()
	data.NodeData.Children[1].ID = "a"
	_, err := New(data)
	var inv *node.InvariantError
	if !errors.As(err, &inv) {
		t.Errorf("err = %v, want invariant error", err)
	}
}

func TestNewCopiesData(t *testing.T) {
	data := sampleData()
	e, err := New(data, WithDirection(layout.Left))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.RemoveNode("b"); err != nil {
		t.Fatal(err)
	}
	if len(data.NodeData.Children) != 3 {
		t.Error("engine mutated caller data")
	}
	if e.Direction() != layout.Left {
		t.Errorf("WithDirection ignored: %v", e.Direction())
	}
}

func TestNewBlank(t *testing.T) {
	e := NewBlank("Idea", WithNewTopicName("topic"))
	res, err := e.AddChild("", nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Node.Label != "topic" {
		t.Errorf("label = %q, want topic", res.Node.Label)
	}
	if e.Root().Label != "Idea" {
		t.Errorf("root label = %q", e.Root().Label)
	}
}

// ============================================================================
// Mutations and events
// ============================================================================

func TestOperationsPublished(t *testing.T) {
	bus := event.NewBus()
	var kinds []string
	_, err := bus.SubscribeFunc(event.TopicOperations, func(_ context.Context, ev any) error {
		op, ok := event.PayloadOf[mutate.Operation](ev)
		if !ok {
			t.Errorf("unexpected payload %T", ev)
		}
		kinds = append(kinds, op.Kind.String())
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	e := newTestEngine(t, WithBus(bus))

	if _, err := e.AddChild("b", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := e.MoveUp("c"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.SetLabel("a", "Alpha"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.SetLabel("a", "Alpha"); err != nil {
		t.Fatal(err)
	}

	want := []string{"addChild", "moveUp", "finishEdit"}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("kinds = %v, want %v", kinds, want)
	}
}

func TestRejectedOperationLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf})
	e := newTestEngine(t, WithLogger(logger))

	_, err := e.RemoveNode("root")
	if !errors.Is(err, mutate.ErrRootImmutable) {
		t.Fatalf("err = %v, want ErrRootImmutable", err)
	}
	out := buf.String()
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "removeNode rejected") ||
		!strings.Contains(out, "component=engine") {
		t.Errorf("log output:\n%s", out)
	}
}

func TestUnknownID(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.AddChild("nope", nil); !errors.Is(err, mutate.ErrNodeNotFound) {
		t.Errorf("err = %v, want ErrNodeNotFound", err)
	}
	if err := e.Select("nope"); !errors.Is(err, mutate.ErrNodeNotFound) {
		t.Errorf("Select err = %v, want ErrNodeNotFound", err)
	}
	if err := e.Select(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.AddChild("", nil); !errors.Is(err, ErrNoSelection) {
		t.Errorf("err = %v, want ErrNoSelection", err)
	}
}

func TestBeforeHookVeto(t *testing.T) {
	e := newTestEngine(t, WithBeforeHook(func(kind mutate.Kind, _ *node.Node) bool {
		return kind != mutate.KindRemoveNode
	}))
	if _, err := e.RemoveNode("b"); !errors.Is(err, mutate.ErrVetoed) {
		t.Errorf("err = %v, want ErrVetoed", err)
	}
	if e.Find("b") == nil {
		t.Error("vetoed removal changed the tree")
	}
	if e.CanUndo() {
		t.Error("vetoed operation recorded")
	}
}

func TestSideBalancingFollowsDirection(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.AddChild("root", nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Node.Side != node.SideNone {
		t.Errorf("side assigned under right direction: %v", res.Node.Side)
	}

	e.SetDirection(layout.Both)
	res, err = e.AddChild("root", nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Node.Side == node.SideNone {
		t.Error("no side assigned under both direction")
	}
}

// ============================================================================
// Undo
// ============================================================================

func TestUndo(t *testing.T) {
	e := newTestEngine(t)
	before := e.Snapshot()

	res, err := e.AddChild("b", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.SetLabel(res.Node.ID, "B1"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.MoveInto("c", "a1"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.RemoveNodes("a", "c"); err != nil {
		t.Fatal(err)
	}

	for e.CanUndo() {
		if _, err := e.Undo(); err != nil {
			t.Fatalf("Undo: %v", err)
		}
	}
	if !node.Equal(e.Root(), before.NodeData, false) {
		t.Error("tree not restored after undoing everything")
	}
	op, err := e.Undo()
	if err != nil || op.Kind != mutate.KindUnknown {
		t.Errorf("Undo on empty log = %v, %v; want a no-op", op.Kind, err)
	}
	if !node.Equal(e.Root(), before.NodeData, false) {
		t.Error("empty undo changed the tree")
	}
}

func TestUndoUnboundedByDefault(t *testing.T) {
	e := NewBlank("R")
	const n = 1500
	for i := 0; i < n; i++ {
		if _, err := e.AddChild(e.Root().ID, nil); err != nil {
			t.Fatal(err)
		}
	}
	undone := 0
	for e.CanUndo() {
		if _, err := e.Undo(); err != nil {
			t.Fatalf("Undo: %v", err)
		}
		undone++
	}
	if undone != n {
		t.Errorf("undid %d of %d operations", undone, n)
	}
	if e.Root().HasChildren() {
		t.Errorf("%d children left after undoing everything", len(e.Root().Children))
	}
}

func TestUndoBoundWhenConfigured(t *testing.T) {
	e := NewBlank("R", WithMaxUndoEntries(3))
	for i := 0; i < 5; i++ {
		if _, err := e.AddChild(e.Root().ID, nil); err != nil {
			t.Fatal(err)
		}
	}
	if got := len(e.UndoEntries()); got != 3 {
		t.Errorf("UndoEntries = %d, want 3", got)
	}
}

func TestUndoReselects(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.AddChild("b", nil); err != nil {
		t.Fatal(err)
	}
	op, err := e.Undo()
	if err != nil {
		t.Fatal(err)
	}
	if op.Kind != mutate.KindAddChild {
		t.Errorf("undid %v, want addChild", op.Kind)
	}
	if currentID(e) != "b" {
		t.Errorf("current = %q, want b", currentID(e))
	}

	if _, err := e.RemoveNode("a2"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	if currentID(e) != "a2" {
		t.Errorf("current = %q, want a2", currentID(e))
	}
}

func TestPasteTextUndoesAsOne(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.PasteText("c", "x\n  y\n\nz", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Nodes) != 3 || e.Find("c").Children[2].Label != "z" {
		t.Fatalf("pasted %d nodes", len(res.Nodes))
	}
	if entries := e.UndoEntries(); len(entries) != 1 || entries[0].Operations != 3 {
		t.Fatalf("entries = %+v, want one group of 3", entries)
	}
	if _, err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	if e.Find("c").HasChildren() {
		t.Error("pasted children survived undo")
	}
}

func TestUndoDisabled(t *testing.T) {
	e := newTestEngine(t, WithAllowUndo(false))
	if _, err := e.AddChild("b", nil); err != nil {
		t.Fatal(err)
	}
	if e.CanUndo() {
		t.Error("CanUndo with undo disabled")
	}
	if _, err := e.Undo(); !errors.Is(err, ErrUndoDisabled) {
		t.Errorf("err = %v, want ErrUndoDisabled", err)
	}
	if _, err := e.PasteText("b", "one\ntwo", true); err != nil {
		t.Fatal(err)
	}
}

func TestSharedBusKeepsLogsApart(t *testing.T) {
	bus := event.NewBus()
	e1 := newTestEngine(t, WithBus(bus))
	e2 := newTestEngine(t, WithBus(bus))

	if _, err := e1.AddChild("a", nil); err != nil {
		t.Fatal(err)
	}
	if !e1.CanUndo() || e2.CanUndo() {
		t.Errorf("CanUndo = %v, %v; want true, false", e1.CanUndo(), e2.CanUndo())
	}

	if err := e1.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := e1.AddChild("a", nil); err != nil {
		t.Fatal(err)
	}
	if got := len(e1.UndoEntries()); got != 1 {
		t.Errorf("closed engine recorded: %d entries", got)
	}
}

// ============================================================================
// Session
// ============================================================================

func TestSelectionFollowsMutations(t *testing.T) {
	e := newTestEngine(t)
	var changes []SelectionChange
	_, err := e.Bus().SubscribeFunc(event.TopicSelectionChanged, func(_ context.Context, ev any) error {
		if c, ok := event.PayloadOf[SelectionChange](ev); ok {
			changes = append(changes, c)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	res, err := e.AddChild("b", nil)
	if err != nil {
		t.Fatal(err)
	}
	if currentID(e) != res.Node.ID {
		t.Errorf("current = %q, want new node", currentID(e))
	}
	if _, err := e.RemoveNode("a2"); err != nil {
		t.Fatal(err)
	}
	if currentID(e) != "a1" {
		t.Errorf("current = %q, want previous sibling a1", currentID(e))
	}
	if _, err := e.RemoveNode("a1"); err != nil {
		t.Fatal(err)
	}
	if currentID(e) != "a" {
		t.Errorf("current = %q, want parent a", currentID(e))
	}

	if len(changes) != 3 || changes[0].CurrentID != res.Node.ID || changes[2].CurrentID != "a" {
		t.Errorf("changes = %+v", changes)
	}
}

func TestSelectMany(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Select("b", "a1"); err != nil {
		t.Fatal(err)
	}
	if currentID(e) != "b" {
		t.Errorf("current = %q, want b", currentID(e))
	}
	sel := e.Selection()
	if len(sel) != 2 || sel[1].ID != "a1" {
		t.Errorf("selection = %v", sel)
	}

	if _, err := e.RemoveNodes(); err != nil {
		t.Fatal(err)
	}
	if e.Find("b") != nil || e.Find("a1") != nil {
		t.Error("selection not removed")
	}
}

func TestNavigation(t *testing.T) {
	e := newTestEngine(t)

	steps := []struct {
		name string
		move func() bool
		ok   bool
		want string
	}{
		{"right from root", func() bool { return e.SelectToward(node.SideRight) }, true, "b"},
		{"left from root side branch", func() bool { return e.SelectToward(node.SideLeft) }, true, "root"},
		{"left from root", func() bool { return e.SelectToward(node.SideLeft) }, false, "root"},
		{"first child", e.SelectFirstChild, true, "a"},
		{"outward", func() bool { return e.SelectToward(node.SideRight) }, true, "a1"},
		{"next sibling", e.SelectNextSibling, true, "a2"},
		{"no next sibling", e.SelectNextSibling, false, "a2"},
		{"prev sibling", e.SelectPrevSibling, true, "a1"},
		{"parent", e.SelectParent, true, "a"},
		{"root", e.SelectRoot, true, "root"},
		{"root has no parent", e.SelectParent, false, "root"},
	}
	for _, s := range steps {
		if ok := s.move(); ok != s.ok {
			t.Errorf("%s: moved = %v, want %v", s.name, ok, s.ok)
		}
		if got := currentID(e); got != s.want {
			t.Fatalf("%s: current = %q, want %q", s.name, got, s.want)
		}
	}
}

func TestSelectRootSide(t *testing.T) {
	data := sampleData()
	data.NodeData.Children = append(data.NodeData.Children, node.New("D", node.WithID("d")))
	data.Direction = layout.Both
	e, err := New(data)
	if err != nil {
		t.Fatal(err)
	}

	// Unassigned branches alternate left, right: left = [a c], right = [b d].
	if !e.SelectRootSide(node.SideLeft) || currentID(e) != "a" {
		t.Errorf("left middle = %q, want a", currentID(e))
	}
	if !e.SelectRootSide(node.SideRight) || currentID(e) != "b" {
		t.Errorf("right middle = %q, want b", currentID(e))
	}
	if !e.SelectToward(node.SideLeft) || currentID(e) != "root" {
		t.Errorf("left from right branch = %q, want root", currentID(e))
	}

	e.SetDirection(layout.Left)
	if e.SelectRootSide(node.SideRight) {
		t.Error("selected a right branch with every branch on the left")
	}
}

func TestClipboard(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.Paste("c"); !errors.Is(err, ErrClipboardEmpty) {
		t.Errorf("err = %v, want ErrClipboardEmpty", err)
	}

	if err := e.Select("a"); err != nil {
		t.Fatal(err)
	}
	if n := e.CopySelection(); n != 1 {
		t.Fatalf("copied %d", n)
	}
	res, err := e.Paste("c")
	if err != nil {
		t.Fatal(err)
	}
	if res.Op.Kind != mutate.KindCopyNode || res.Node.ID == "a" || res.Node.Label != "A" {
		t.Errorf("paste result = %+v", res.Node)
	}
	if got := len(e.Find("c").Children[0].Children); got != 2 {
		t.Errorf("copied subtree has %d children, want 2", got)
	}

	if _, err := e.RemoveNode("a"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Paste("c"); !errors.Is(err, ErrClipboardEmpty) {
		t.Errorf("err = %v, want ErrClipboardEmpty after source removal", err)
	}
}

// ============================================================================
// Layout
// ============================================================================

func TestLayoutTracksMutations(t *testing.T) {
	var calls int
	e := newTestEngine(t, WithLayoutObserver(func(res *layout.Result, elapsed time.Duration) {
		calls++
		if res == nil || elapsed < 0 {
			t.Error("bad observer arguments")
		}
	}))
	cfg := layout.DefaultConfig()

	first := e.Layout()
	if e.Layout() != first {
		t.Error("unchanged map laid out again")
	}

	edits := []func() error{
		func() error { _, err := e.SetLabel("a1", "a much longer label"); return err },
		func() error { _, err := e.AddChild("b", nil); return err },
		func() error { _, err := e.MoveInto("c", "a2"); return err },
		func() error { _, err := e.ToggleExpanded("a"); return err },
		func() error { _, err := e.InsertSibling(mutate.ModeAfter, "c", nil); return err },
		func() error { _, err := e.Undo(); return err },
		func() error { _, err := e.RemoveNode("b"); return err },
	}
	for i, edit := range edits {
		if err := edit(); err != nil {
			t.Fatalf("edit %d: %v", i, err)
		}
		got := e.Layout()
		want := layout.Compute(e.Root(), layout.Right, cfg)
		if !reflect.DeepEqual(got.Boxes, want.Boxes) {
			t.Fatalf("edit %d: cached layout differs from a full layout", i)
		}
	}
	if calls != len(edits)+1 {
		t.Errorf("observer calls = %d, want %d", calls, len(edits)+1)
	}
}

func TestSetDirection(t *testing.T) {
	e := newTestEngine(t)
	var got []layout.Direction
	_, err := e.Bus().SubscribeFunc(event.TopicDirectionChanged, func(_ context.Context, ev any) error {
		d, _ := event.PayloadOf[layout.Direction](ev)
		got = append(got, d)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	e.SetDirection(layout.Left)
	e.SetDirection(layout.Left)
	if !reflect.DeepEqual(got, []layout.Direction{layout.Left}) {
		t.Errorf("events = %v", got)
	}
	res := e.Layout()
	if box, _ := res.Box("a"); res.Direction != layout.Left || box.Side != node.SideLeft {
		t.Errorf("layout not redone for new direction")
	}
}

func TestFocus(t *testing.T) {
	e := newTestEngine(t, WithDirection(layout.Left))
	if err := e.Focus("a"); err != nil {
		t.Fatal(err)
	}
	res := e.Layout()
	if res.RootID != "a" || res.Direction != layout.Right || res.Len() != 3 {
		t.Errorf("focus layout root=%s dir=%v len=%d", res.RootID, res.Direction, res.Len())
	}
	if box, ok := res.Box("a"); !ok || box.X != 0 {
		t.Errorf("focused node not anchored: %+v", box)
	}

	// Mutations still reach the whole map.
	if _, err := e.AddChild("b", nil); err != nil {
		t.Fatal(err)
	}

	e.CancelFocus()
	if e.FocusID() != "" || e.Layout().RootID != "root" {
		t.Error("focus not cancelled")
	}

	if err := e.Focus("a"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.RemoveNode("a"); err != nil {
		t.Fatal(err)
	}
	if e.Layout().RootID != "root" || e.FocusID() != "" {
		t.Error("focus survived removal of the focused node")
	}
}

// ============================================================================
// Snapshot and export
// ============================================================================

func TestSnapshotAndRefresh(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.AddChild("b", node.New("B1", node.WithID("b1"))); err != nil {
		t.Fatal(err)
	}
	snap := e.Snapshot()
	if node.Find(snap.NodeData, "b1") == nil || snap.Direction != layout.Right {
		t.Fatal("snapshot missing change")
	}
	snap.NodeData.Label = "changed"
	if e.Root().Label == "changed" {
		t.Error("snapshot aliases the live tree")
	}

	fresh := snapshot.New("Other")
	fresh.Direction = layout.Left
	if err := e.Refresh(fresh); err != nil {
		t.Fatal(err)
	}
	if e.Root().Label != "Other" || e.Direction() != layout.Left || e.CanUndo() {
		t.Error("refresh did not replace the map and clear undo")
	}
	if currentID(e) != fresh.NodeData.ID {
		t.Errorf("current = %q, want new root", currentID(e))
	}

	bad := sampleData()
	bad.NodeData.Children[0].Root = true
	if err := e.Refresh(bad); err == nil {
		t.Error("refresh accepted a second root")
	}
}

func TestMarkdown(t *testing.T) {
	e := newTestEngine(t)
	want := "# Root\n\n## A\n\n### A1\n\n### A2\n\n## B\n\n## C\n\n"
	if got := e.Markdown(); got != want {
		t.Errorf("Markdown =\n%q\nwant\n%q", got, want)
	}

	if err := e.Select("c", "a"); err != nil {
		t.Fatal(err)
	}
	want = "# C\n\n\n\n# A\n\n## A1\n\n## A2\n\n\n\n"
	if got := e.SelectionMarkdown(); got != want {
		t.Errorf("SelectionMarkdown =\n%q\nwant\n%q", got, want)
	}
}

// ============================================================================
// Concurrency
// ============================================================================

func TestConcurrentAccess(t *testing.T) {
	e := newTestEngine(t)
	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				if _, err := e.AddChild("b", nil); err != nil {
					t.Error(err)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_ = e.Layout()
				_ = e.Markdown()
			}
		}()
	}
	wg.Wait()

	if got := len(e.Find("b").Children); got != 100 {
		t.Errorf("b has %d children, want 100", got)
	}
	if err := node.Validate(e.Root()); err != nil {
		t.Error(err)
	}
}
