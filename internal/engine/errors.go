package engine

import "errors"

// Errors returned by engine operations.
var (
	// ErrNoSelection indicates an operation needed a current node.
	ErrNoSelection = errors.New("no node selected")

	// ErrClipboardEmpty indicates Paste found nothing to copy.
	ErrClipboardEmpty = errors.New("clipboard is empty")

	// ErrUndoDisabled indicates the engine was built without an undo log.
	ErrUndoDisabled = errors.New("undo is disabled")

	// ErrNoData indicates New was given no snapshot.
	ErrNoData = errors.New("no map data")
)
