package history

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dshills/mindstorm/internal/engine/mutate"
)

// Common errors for history operations.
var (
	ErrNothingToUndo  = errors.New("nothing to undo")
	ErrUndoInProgress = errors.New("undo already in progress")
	ErrNotUndoable    = errors.New("operation is not undoable")
	ErrStaleEntry     = errors.New("undo entry refers to a missing node")
)

// State is the re-entrancy state of a Log.
type State int

const (
	// Idle records qualifying operations.
	Idle State = iota
	// Undoing ignores every operation until the running inverse finishes.
	Undoing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Undoing:
		return "undoing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Undoable reports whether operations of kind are recorded.
func Undoable(kind mutate.Kind) bool {
	switch kind {
	case mutate.KindInsertSibling,
		mutate.KindInsertParent,
		mutate.KindAddChild,
		mutate.KindCopyNode,
		mutate.KindCopyNodes,
		mutate.KindRemoveNode,
		mutate.KindRemoveNodes,
		mutate.KindMoveNode,
		mutate.KindMoveNodeBefore,
		mutate.KindMoveNodeAfter,
		mutate.KindMoveUp,
		mutate.KindMoveDown,
		mutate.KindReshapeNode,
		mutate.KindFinishEdit,
		mutate.KindEditStyle,
		mutate.KindEditTags,
		mutate.KindEditIcons:
		return true
	default:
		return false
	}
}

// entry is one undo unit. Grouped entries hold several operations in the
// order they were applied.
type entry struct {
	name      string
	ops       []mutate.Operation
	timestamp time.Time
}

func (e *entry) description() string {
	if e.name != "" {
		return e.name
	}
	return e.ops[len(e.ops)-1].String()
}

// Info describes an undo entry for display.
type Info struct {
	Description string
	Kind        mutate.Kind // kind of the newest operation in the entry
	Operations  int
	Timestamp   time.Time
}

// Log is a stack of undoable operations.
type Log struct {
	mu sync.Mutex

	entries []*entry
	state   State

	// Grouping state
	grouping  bool
	groupName string
	groupOps  []mutate.Operation

	// Zero means unbounded.
	maxEntries int
}

// Option configures a Log.
type Option func(*Log)

// WithMaxEntries caps the number of entries; the oldest are dropped first.
// Zero means unbounded.
func WithMaxEntries(n int) Option {
	return func(l *Log) {
		l.maxEntries = max(n, 0)
	}
}

// NewLog creates an empty log.
func NewLog(opts ...Option) *Log {
	l := &Log{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record pushes op if its kind is undoable and no undo is running. It
// reports whether op was recorded.
func (l *Log) Record(op mutate.Operation) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == Undoing || !Undoable(op.Kind) {
		return false
	}
	if l.grouping {
		l.groupOps = append(l.groupOps, op)
		return true
	}
	l.pushLocked(&entry{ops: []mutate.Operation{op}, timestamp: op.Time})
	return true
}

// pushLocked adds an entry without acquiring the lock.
func (l *Log) pushLocked(e *entry) {
	if e.timestamp.IsZero() {
		e.timestamp = time.Now()
	}
	l.entries = append(l.entries, e)

	if l.maxEntries > 0 && len(l.entries) > l.maxEntries {
		excess := len(l.entries) - l.maxEntries
		l.entries = l.entries[excess:]
	}
}

// Undo reverses the newest entry through a. It returns the newest
// operation of the reversed entry.
//
// An empty log returns ErrNothingToUndo without touching the tree. When an
// inverse fails the entry is restored and the error returned. Operations
// that have no inverse are skipped, so such an entry is dropped rather than
// left on top of the log.
func (l *Log) Undo(a Applier) (mutate.Operation, error) {
	l.mu.Lock()
	if l.state == Undoing {
		l.mu.Unlock()
		return mutate.Operation{}, ErrUndoInProgress
	}
	if len(l.entries) == 0 {
		l.mu.Unlock()
		return mutate.Operation{}, ErrNothingToUndo
	}
	e := l.entries[len(l.entries)-1]
	l.entries = l.entries[:len(l.entries)-1]
	l.state = Undoing
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.state = Idle
		l.mu.Unlock()
	}()

	for i := len(e.ops) - 1; i >= 0; i-- {
		err := invert(a, e.ops[i])
		if errors.Is(err, ErrNotUndoable) {
			continue
		}
		if err != nil {
			l.mu.Lock()
			l.entries = append(l.entries, e)
			l.mu.Unlock()
			return e.ops[i], fmt.Errorf("undo %s: %w", e.ops[i].Kind, err)
		}
	}
	return e.ops[len(e.ops)-1], nil
}

// State returns the current re-entrancy state.
func (l *Log) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// CanUndo returns true if undo is available.
func (l *Log) CanUndo() bool {
	return l.Len() > 0
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Peek returns info about the next undo entry without removing it.
func (l *Log) Peek() (Info, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == 0 {
		return Info{}, false
	}
	return info(l.entries[len(l.entries)-1]), true
}

// Entries returns info about every entry, oldest first.
func (l *Log) Entries() []Info {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make([]Info, len(l.entries))
	for i, e := range l.entries {
		result[i] = info(e)
	}
	return result
}

func info(e *entry) Info {
	return Info{
		Description: e.description(),
		Kind:        e.ops[len(e.ops)-1].Kind,
		Operations:  len(e.ops),
		Timestamp:   e.timestamp,
	}
}

// Clear removes every entry and any open group.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = nil
	l.grouping = false
	l.groupOps = nil
}

// SetMaxEntries changes the cap. If the current stack is larger, oldest
// entries are removed. Zero means unbounded.
func (l *Log) SetMaxEntries(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.maxEntries = max(n, 0)
	if l.maxEntries > 0 && len(l.entries) > l.maxEntries {
		excess := len(l.entries) - l.maxEntries
		l.entries = l.entries[excess:]
	}
}

// MaxEntries returns the cap, zero when unbounded.
func (l *Log) MaxEntries() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.maxEntries
}
