// Package mutate implements the structural edits of a mind-map tree.
//
// A Mutator owns a tree root. Every successful call changes the tree,
// rebuilds parent links, and emits exactly one Operation describing the
// change. Operations carry deep copies of whatever state an inverse needs,
// so an undo log can reverse them without consulting the tree's history.
//
// # Atomicity
//
// All preconditions are checked before the first splice. A call that
// returns an error leaves the tree untouched and emits nothing.
//
// # No-ops
//
// Some calls are defined as no-ops in certain positions: InsertParent on
// the root, MoveUp on a first child, SetLabel with an unchanged or blank
// label. These return a zero Result with a nil error and emit nothing.
//
// # Inverses
//
// InsertAt, MoveTo and RestoreAttributes are the primitives the undo log
// uses. They skip the before-hook and the routing rules of the user-facing
// calls, but still emit operations like any other edit.
//
// Mutator is not safe for concurrent use.
package mutate
