package engine

import (
	"time"

	"github.com/dshills/mindstorm/internal/engine/layout"
	"github.com/dshills/mindstorm/internal/engine/mutate"
	"github.com/dshills/mindstorm/internal/event"
	"github.com/dshills/mindstorm/internal/logging"
)

// DefaultMaxUndoEntries is the default undo log bound: zero, unbounded.
const DefaultMaxUndoEntries = 0

// LayoutObserver is told about every layout the engine computes.
type LayoutObserver func(res *layout.Result, elapsed time.Duration)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithDirection overrides the direction stored in the snapshot.
func WithDirection(dir layout.Direction) Option {
	return func(e *Engine) {
		e.dir = dir
		e.dirSet = true
	}
}

// WithLayoutConfig sets spacing and measurement.
func WithLayoutConfig(cfg layout.Config) Option {
	return func(e *Engine) {
		e.layoutCfg = cfg
	}
}

// WithNewTopicName sets the label of nodes created without one.
func WithNewTopicName(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.newTopic = name
		}
	}
}

// WithAllowUndo enables or disables the undo log. Undo is on by default.
func WithAllowUndo(allow bool) Option {
	return func(e *Engine) {
		e.allowUndo = allow
	}
}

// WithMaxUndoEntries bounds the undo log. Zero means unbounded.
func WithMaxUndoEntries(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxUndo = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithBus publishes operations on an existing bus instead of a private one.
func WithBus(b event.Bus) Option {
	return func(e *Engine) {
		if b != nil {
			e.bus = b
		}
	}
}

// WithBeforeHook installs a veto hook consulted before user operations.
func WithBeforeHook(fn mutate.BeforeFunc) Option {
	return func(e *Engine) {
		e.before = fn
	}
}

// WithLayoutObserver registers a callback run after each computed layout.
func WithLayoutObserver(fn LayoutObserver) Option {
	return func(e *Engine) {
		if fn != nil {
			e.observers = append(e.observers, fn)
		}
	}
}
