package mutate

import (
	"fmt"
	"time"

	"github.com/dshills/mindstorm/internal/engine/node"
)

// Kind identifies the type of an Operation.
type Kind int

// Operation kinds.
const (
	KindUnknown Kind = iota
	KindInsertSibling
	KindInsertParent
	KindAddChild
	KindRemoveNode
	KindRemoveNodes
	KindMoveNode
	KindMoveNodeBefore
	KindMoveNodeAfter
	KindMoveUp
	KindMoveDown
	KindCopyNode
	KindCopyNodes
	KindReshapeNode
	KindFinishEdit
	KindEditStyle
	KindEditTags
	KindEditIcons
	KindExpandNode
)

var kindNames = [...]string{
	KindUnknown:        "unknown",
	KindInsertSibling:  "insertSibling",
	KindInsertParent:   "insertParent",
	KindAddChild:       "addChild",
	KindRemoveNode:     "removeNode",
	KindRemoveNodes:    "removeNodes",
	KindMoveNode:       "moveNode",
	KindMoveNodeBefore: "moveNodeBefore",
	KindMoveNodeAfter:  "moveNodeAfter",
	KindMoveUp:         "moveUp",
	KindMoveDown:       "moveDown",
	KindCopyNode:       "copyNode",
	KindCopyNodes:      "copyNodes",
	KindReshapeNode:    "reshapeNode",
	KindFinishEdit:     "finishEdit",
	KindEditStyle:      "editStyle",
	KindEditTags:       "editTags",
	KindEditIcons:      "editIcons",
	KindExpandNode:     "expandNode",
}

// String returns the operation name used in event topics and logs.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds returns every known kind except KindUnknown.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames)-1)
	for k := KindInsertSibling; int(k) < len(kindNames); k++ {
		out = append(out, k)
	}
	return out
}

// ParseKind parses an operation name.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if k != int(KindUnknown) && name == s {
			return Kind(k), nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown operation kind %q", s)
}

// Operation describes one completed mutation.
type Operation struct {
	Kind      Kind
	SubjectID string
	Payload   Payload
	Time      time.Time
}

// String returns a short description for logs and history listings.
func (op Operation) String() string {
	if op.SubjectID == "" {
		return op.Kind.String()
	}
	return op.Kind.String() + " " + op.SubjectID
}

// Payload holds the kind-specific data of an Operation.
// The set of payload types is closed.
type Payload interface {
	payload()
}

// InsertPayload records a node added by insertSibling or addChild.
type InsertPayload struct {
	Node     *node.Node // deep copy of the inserted subtree
	ParentID string
	Index    int
	Expanded bool // parent was collapsed and got expanded
}

// InsertParentPayload records a node spliced in above Target.
type InsertParentPayload struct {
	Node     *node.Node // the new parent, without children
	TargetID string
	ParentID string // former parent of the target
	Index    int    // former index of the target
}

// RemovePayload records a removed subtree and where it was.
type RemovePayload struct {
	Node          *node.Node // deep copy of the removed subtree
	ParentID      string
	Index         int
	NextSiblingID string // empty when the node was the last child
	SelectionID   string // node that should become current
}

// RemoveNodesPayload records a batch removal in removal order.
type RemoveNodesPayload struct {
	Removed     []RemovePayload
	SelectionID string
}

// Move records one node's relocation.
type Move struct {
	NodeID       string
	FromParentID string
	FromIndex    int
	FromNextID   string
	FromSide     node.Side
	ToParentID   string
	ToIndex      int
	ToSide       node.Side
}

// MovePayload records a batch move in processing order.
type MovePayload struct {
	Mode     Mode
	TargetID string
	Moves    []Move
	Expanded bool // target was collapsed and got expanded
}

// SwapPayload records a move up or down among siblings.
type SwapPayload struct {
	ParentID string
	From     int
	To       int
}

// CopyPayload records copies added under a parent.
type CopyPayload struct {
	SourceIDs []string
	Nodes     []*node.Node // deep copies of the added subtrees
	ParentID  string
	Expanded  bool
}

// ReshapePayload records attributes before and after a reshape.
// Both nodes are childless copies.
type ReshapePayload struct {
	Origin *node.Node
	Result *node.Node
}

// LabelPayload records a label change.
type LabelPayload struct {
	Origin string
	Label  string
}

// StylePayload records a style change.
type StylePayload struct {
	Origin *node.Style
	Style  *node.Style
}

// ListPayload records a tags or icons change.
type ListPayload struct {
	Origin []string
	Values []string
}

// ExpandPayload records an expand or collapse.
type ExpandPayload struct {
	Expanded bool
}

func (*InsertPayload) payload()       {}
func (*InsertParentPayload) payload() {}
func (*RemovePayload) payload()       {}
func (*RemoveNodesPayload) payload()  {}
func (*MovePayload) payload()         {}
func (*SwapPayload) payload()         {}
func (*CopyPayload) payload()         {}
func (*ReshapePayload) payload()      {}
func (*LabelPayload) payload()        {}
func (*StylePayload) payload()        {}
func (*ListPayload) payload()         {}
func (*ExpandPayload) payload()       {}
