// Package history provides undo for mind-map mutations.
//
// The Log records operations emitted by a mutate.Mutator and reverses them
// on demand. Only structural and content edits are recorded; view changes
// such as expanding a node are not. See Undoable.
//
// # Recording
//
// Record is meant to be called for every emitted operation, typically from
// an event bus subscription:
//
//	log := history.NewLog()
//	m := mutate.New(root, mutate.WithEmitter(func(op mutate.Operation) {
//	    log.Record(op)
//	}))
//
// # Undo
//
// Undo pops the newest entry and applies its inverse through an Applier,
// which the Mutator implements. While an inverse runs the log is in the
// Undoing state and ignores the operations the inverse itself emits, so
// undoing never records new entries. If an inverse fails the entry is put
// back.
//
// # Grouping
//
// Several operations can be undone as one unit:
//
//	log.Transaction("paste", func() error {
//	    // ... several mutations ...
//	    return nil
//	})
package history
