package script

import (
	"context"

	"github.com/dshills/mindstorm/internal/engine"
)

// New creates a sandboxed state with the mm module bound to eng.
func New(eng *engine.Engine, opts ...StateOption) *State {
	s := NewState(opts...)
	NewModule(eng).Register(s.L)
	return s
}

// Run executes code against eng in a fresh state.
func Run(ctx context.Context, eng *engine.Engine, name, code string, opts ...StateOption) error {
	s := New(eng, opts...)
	defer s.Close()
	return s.DoString(ctx, name, code)
}

// RunFile executes the Lua file at path against eng in a fresh state.
func RunFile(ctx context.Context, eng *engine.Engine, path string, opts ...StateOption) error {
	s := New(eng, opts...)
	defer s.Close()
	return s.DoFile(ctx, path)
}
