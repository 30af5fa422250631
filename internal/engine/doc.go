// Package engine provides the mind map engine behind mindstorm.
//
// The engine package is the facade combining the node tree, structural
// mutations, undo, layout and session state into one thread-safe API that
// front ends (the terminal viewer, Lua scripts, the CLI) drive by node id.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - node: the tree, its invariants and side assignment
//   - mutate: atomic structural edits, each emitting one Operation
//   - history: the undo log that inverts recorded operations
//   - layout: integer-cell box layout with per-branch re-measurement
//
// Every operation is published on an event bus under the topic
// "operation.<kind>". The undo log is an ordinary subscriber at critical
// priority, so other subscribers see the same stream.
//
// # Basic Usage
//
//	e := engine.NewBlank("Plan")
//
//	// Add a branch under the root and a sibling after it
//	res, _ := e.AddChild("", nil)
//	e.SetLabel(res.Node.ID, "Goals")
//	e.InsertSibling(engine.ModeAfter, "", nil)
//
//	// Undo the sibling
//	e.Undo()
//
//	// Boxes for drawing
//	for id, box := range e.Layout().Boxes {
//		fmt.Println(id, box.X, box.Y, box.W, box.H)
//	}
//
// # Session State
//
// The engine keeps a current node, a selection and a clipboard. An empty
// id passed to a mutation means the current node; successful mutations
// move the current node the way an editor would, for example onto a newly
// inserted node or onto a removed node's neighbour. Selection changes are
// published as "selection.changed".
//
// # Thread Safety
//
// All Engine methods are safe for concurrent use. Bus handlers run on the
// mutating goroutine with the engine lock held; they may read the
// operation payload but must not call back into the Engine.
package engine
