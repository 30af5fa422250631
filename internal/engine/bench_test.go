package engine

import (
	"fmt"
	"testing"

	"github.com/dshills/mindstorm/internal/engine/node"
	"github.com/dshills/mindstorm/internal/snapshot"
)

// ============================================================================
// Setup Helpers
// ============================================================================

// setupLargeEngine builds a map with branches top-level branches, each
// holding perBranch leaves.
func setupLargeEngine(b *testing.B, branches, perBranch int) *Engine {
	b.Helper()
	root := node.New("root", node.AsRoot(), node.WithID("root"))
	for i := range branches {
		br := node.New(fmt.Sprintf("branch %d", i), node.WithID(fmt.Sprintf("b%d", i)))
		for j := range perBranch {
			br.Children = append(br.Children, node.New(fmt.Sprintf("leaf %d.%d", i, j), node.WithID(fmt.Sprintf("b%d.%d", i, j))))
		}
		root.Children = append(root.Children, br)
	}
	e, err := New(&snapshot.Data{NodeData: root, Direction: Both})
	if err != nil {
		b.Fatal(err)
	}
	e.Layout()
	return e
}

// ============================================================================
// Layout Benchmarks
// ============================================================================

func BenchmarkLayoutFull(b *testing.B) {
	e := setupLargeEngine(b, 50, 40)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		e.mu.Lock()
		e.stale = true
		e.mu.Unlock()
		_ = e.Layout()
	}
}

func BenchmarkLayoutAfterEdit(b *testing.B) {
	e := setupLargeEngine(b, 50, 40)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := e.SetLabel("b7.3", fmt.Sprintf("edit %d", i)); err != nil {
			b.Fatal(err)
		}
		_ = e.Layout()
	}
}

// ============================================================================
// Mutation Benchmarks
// ============================================================================

func BenchmarkAddChildUndo(b *testing.B) {
	e := setupLargeEngine(b, 50, 40)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := e.AddChild("b3", nil); err != nil {
			b.Fatal(err)
		}
		if _, err := e.Undo(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMoveAcrossBranches(b *testing.B) {
	e := setupLargeEngine(b, 50, 40)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := e.MoveInto("b2", "b1.0"); err != nil {
			b.Fatal(err)
		}
		if _, err := e.Undo(); err != nil {
			b.Fatal(err)
		}
	}
}
