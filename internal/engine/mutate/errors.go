package mutate

import (
	"errors"
	"fmt"

	"github.com/dshills/mindstorm/internal/engine/node"
)

// Errors returned by mutations.
var (
	// ErrNodeNotFound indicates the target does not belong to the tree.
	ErrNodeNotFound = errors.New("node not found")

	// ErrRootImmutable indicates an edit that would remove or move the root.
	ErrRootImmutable = errors.New("root cannot be removed or moved")

	// ErrCycle indicates a move of a node into its own subtree.
	ErrCycle = errors.New("node cannot be moved into its own subtree")

	// ErrDuplicateID indicates an inserted node reuses an id already present.
	ErrDuplicateID = errors.New("duplicate node id")

	// ErrNoParent indicates the target has no parent where one is required.
	ErrNoParent = errors.New("node has no parent")

	// ErrInvalidMove indicates a move that has no meaningful destination.
	ErrInvalidMove = errors.New("invalid move")

	// ErrInvalidNode indicates a supplied node cannot be inserted as given.
	ErrInvalidNode = errors.New("invalid node")

	// ErrVetoed indicates a before-hook rejected the operation.
	ErrVetoed = errors.New("operation vetoed")
)

// OperationError describes a rejected mutation.
type OperationError struct {
	Op     Kind   // Operation that was rejected
	NodeID string // Target node, when known
	Err    error  // Underlying error
}

func fail(op Kind, n *node.Node, err error) error {
	e := &OperationError{Op: op, Err: err}
	if n != nil {
		e.NodeID = n.ID
	}
	return e
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	if e.NodeID != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.NodeID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
