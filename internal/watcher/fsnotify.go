package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches individual files using fsnotify.
type Watcher struct {
	mu sync.RWMutex

	fsw      *fsnotify.Watcher
	config   config
	debounce *debouncer

	// dirs counts watched files per directory handed to fsnotify.
	dirs  map[string]int
	files map[string]bool

	events chan Event
	errors chan error

	startTime   time.Time
	totalEvents atomic.Int64
	dropped     atomic.Int64
	totalErrors atomic.Int64
	lastError   error

	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// New creates a watcher. Close it to release the underlying descriptors.
func New(opts ...Option) (*Watcher, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		fsw:       fsw,
		config:    cfg,
		dirs:      make(map[string]int),
		files:     make(map[string]bool),
		events:    make(chan Event, cfg.bufferSize),
		errors:    make(chan error, cfg.bufferSize),
		startTime: time.Now(),
		closeCh:   make(chan struct{}),
	}
	w.debounce = newDebouncer(cfg.debounce, w.sendEvent)

	w.closedWg.Add(1)
	go w.processLoop()

	return w, nil
}

// Add starts watching the file at path.
func (w *Watcher) Add(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrPathNotExist, path)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}
	if w.files[absPath] {
		return ErrAlreadyWatching
	}

	dir := filepath.Dir(absPath)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[absPath] = true
	return nil
}

// Remove stops watching the file at path.
func (w *Watcher) Remove(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}
	if !w.files[absPath] {
		return ErrNotWatching
	}

	delete(w.files, absPath)
	dir := filepath.Dir(absPath)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		if err := w.fsw.Remove(dir); err != nil {
			return fmt.Errorf("unwatch %s: %w", dir, err)
		}
	}
	return nil
}

// Events returns the channel of debounced events. It is closed by Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel of watcher errors. It is closed by Close.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Flush delivers pending events without waiting for the debounce delay.
func (w *Watcher) Flush() {
	w.debounce.flush()
}

// Close stops the watcher. Pending events are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.debounce.stop()
	w.closedWg.Wait()

	close(w.events)
	close(w.errors)
	return w.fsw.Close()
}

// Stats returns watcher statistics.
func (w *Watcher) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return Stats{
		WatchedPaths:  len(w.files),
		PendingEvents: w.debounce.pendingCount(),
		TotalEvents:   w.totalEvents.Load(),
		Dropped:       w.dropped.Load(),
		Errors:        w.totalErrors.Load(),
		LastError:     w.lastError,
		StartTime:     w.startTime,
	}
}

// WatchedPaths returns the watched files, sorted.
func (w *Watcher) WatchedPaths() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	paths := make([]string, 0, len(w.files))
	for p := range w.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case fsEvent, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(fsEvent)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.recordError(err)
			w.sendError(err)
		}
	}
}

// handleFSEvent drops events for files in a watched directory that are
// not watched themselves.
func (w *Watcher) handleFSEvent(fsEvent fsnotify.Event) {
	path := filepath.Clean(fsEvent.Name)
	w.mu.RLock()
	watched := w.files[path]
	w.mu.RUnlock()
	if !watched {
		return
	}

	op := convertOp(fsEvent.Op)
	if op == 0 {
		return
	}
	w.debounce.add(Event{Path: path, Op: op, Timestamp: time.Now()})
}

func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	if fsOp.Has(fsnotify.Chmod) {
		op |= OpChmod
	}
	return op
}

// sendEvent never blocks; a full channel drops the event.
func (w *Watcher) sendEvent(ev Event) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	select {
	case w.events <- ev:
		w.totalEvents.Add(1)
	default:
		w.dropped.Add(1)
	}
}

func (w *Watcher) sendError(err error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	select {
	case w.errors <- err:
	default:
	}
}

func (w *Watcher) recordError(err error) {
	w.totalErrors.Add(1)
	w.mu.Lock()
	w.lastError = err
	w.mu.Unlock()
}

// Watch calls fn for every change to the file at path until ctx is done.
// It returns nil on cancellation and the first watcher error otherwise.
func Watch(ctx context.Context, path string, fn Handler, opts ...Option) error {
	w, err := New(opts...)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			fn(ev)
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}
}
