// Package event provides the synchronous event bus of mindstorm.
//
// The bus decouples the engine from everything that reacts to its changes:
// the undo log, the terminal viewer, scripts and metrics subscribe to
// topics instead of being called directly.
//
// # Event Topics
//
// Events use hierarchical topics with dot notation:
//
//	operation.addChild   - a mutation completed; payload is mutate.Operation
//	selection.changed    - the current node or selection changed
//	layout.direction     - the direction policy changed
//	tree.refreshed       - the whole tree was replaced
//
// # Wildcard Patterns
//
//	operation.*    - every operation kind
//	**             - everything
//
// # Delivery
//
// Publish runs every matching handler on the caller's goroutine, lowest
// Priority first, subscriptions of equal priority in the order they were
// made. A handler panic is recovered and reported as a *PanicError; it
// does not stop delivery to the remaining handlers.
package event
