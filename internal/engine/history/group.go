package history

// BeginGroup starts a group. Operations recorded while grouping are undone
// together as one entry.
func (l *Log) BeginGroup(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.grouping {
		// Already grouping, ignore nested calls
		return
	}
	l.grouping = true
	l.groupName = name
	l.groupOps = nil
}

// EndGroup closes the group and pushes its operations as one entry. An
// empty group pushes nothing.
func (l *Log) EndGroup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.grouping {
		return
	}
	l.grouping = false
	if len(l.groupOps) > 0 {
		l.pushLocked(&entry{
			name:      l.groupName,
			ops:       l.groupOps,
			timestamp: l.groupOps[0].Time,
		})
	}
	l.groupOps = nil
}

// IsGrouping returns true if a group is open.
func (l *Log) IsGrouping() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.grouping
}

// Transaction runs fn inside a group. The group is recorded even when fn
// fails part way, so whatever it applied can still be undone.
func (l *Log) Transaction(name string, fn func() error) error {
	l.BeginGroup(name)
	defer l.EndGroup()
	return fn()
}

// Checkpoint represents a point in history that can be returned to.
type Checkpoint struct {
	depth int
}

// Checkpoint marks the current position.
func (l *Log) Checkpoint() Checkpoint {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Checkpoint{depth: len(l.entries)}
}

// UndoTo undoes every entry recorded since cp.
func (l *Log) UndoTo(cp Checkpoint, a Applier) error {
	for l.Len() > cp.depth {
		if _, err := l.Undo(a); err != nil {
			return err
		}
	}
	return nil
}
