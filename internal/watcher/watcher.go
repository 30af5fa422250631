// Package watcher reports changes to individual files.
//
// Files are watched through their parent directory so that editors which
// save by writing a temporary file and renaming it over the original are
// still seen. Bursts of changes to one file are coalesced into a single
// Event after a debounce delay.
package watcher

import (
	"errors"
	"strings"
	"time"
)

// Common errors returned by watcher operations.
var (
	ErrWatcherClosed   = errors.New("watcher is closed")
	ErrAlreadyWatching = errors.New("path is already being watched")
	ErrNotWatching     = errors.New("path is not being watched")
	ErrPathNotExist    = errors.New("path does not exist")
	ErrIsDirectory     = errors.New("path is a directory")
)

// Op is a set of file operations.
type Op uint32

const (
	// OpCreate indicates the file was created, or renamed into place.
	OpCreate Op = 1 << iota
	// OpWrite indicates the file was written to.
	OpWrite
	// OpRemove indicates the file was removed.
	OpRemove
	// OpRename indicates the file was renamed away.
	OpRename
	// OpChmod indicates the file permissions changed.
	OpChmod
)

var opNames = []struct {
	op   Op
	name string
}{
	{OpCreate, "CREATE"},
	{OpWrite, "WRITE"},
	{OpRemove, "REMOVE"},
	{OpRename, "RENAME"},
	{OpChmod, "CHMOD"},
}

// String lists the operations in op, joined by "|".
func (op Op) String() string {
	var names []string
	for _, n := range opNames {
		if op.Has(n.op) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(names, "|")
}

// Has returns true if op includes every operation in o.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Exists reports whether the file is expected to be present after op.
// A create after a remove within one debounce window counts as present.
func (op Op) Exists() bool {
	return op.Has(OpCreate) || !(op.Has(OpRemove) || op.Has(OpRename))
}

// Event is a debounced change to a watched file.
type Event struct {
	// Path is the absolute path of the watched file.
	Path string

	// Op combines every operation seen during the debounce window.
	Op Op

	// Timestamp is when the last operation was seen.
	Timestamp time.Time
}

// Stats provides watcher status information.
type Stats struct {
	WatchedPaths  int
	PendingEvents int
	TotalEvents   int64
	Dropped       int64
	Errors        int64
	LastError     error
	StartTime     time.Time
}

// Handler handles a delivered event.
type Handler func(Event)

type config struct {
	debounce   time.Duration
	bufferSize int
}

func defaultConfig() config {
	return config{
		debounce:   100 * time.Millisecond,
		bufferSize: 64,
	}
}

// Option configures a Watcher.
type Option func(*config)

// WithDebounce sets how long a file must stay quiet before its event is
// delivered. Zero delivers every operation immediately.
func WithDebounce(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.debounce = d
		}
	}
}

// WithBufferSize sets the capacity of the event and error channels.
func WithBufferSize(size int) Option {
	return func(c *config) {
		if size > 0 {
			c.bufferSize = size
		}
	}
}
