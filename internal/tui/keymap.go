package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Action is a viewer command bound to a key.
type Action string

// Viewer actions.
const (
	ActionAddSibling       Action = "add-sibling"
	ActionAddSiblingBefore Action = "add-sibling-before"
	ActionInsertParent     Action = "insert-parent"
	ActionAddChild         Action = "add-child"
	ActionRemove           Action = "remove"
	ActionNavLeft          Action = "nav-left"
	ActionNavRight         Action = "nav-right"
	ActionNavUp            Action = "nav-up"
	ActionNavDown          Action = "nav-down"
	ActionNavRoot          Action = "nav-root"
	ActionMoveUp           Action = "move-up"
	ActionMoveDown         Action = "move-down"
	ActionEdit             Action = "edit"
	ActionToggle           Action = "toggle"
	ActionCopy             Action = "copy"
	ActionPaste            Action = "paste"
	ActionUndo             Action = "undo"
	ActionDirLeft          Action = "dir-left"
	ActionDirRight         Action = "dir-right"
	ActionDirBoth          Action = "dir-both"
	ActionFocus            Action = "focus"
	ActionCancelFocus      Action = "cancel-focus"
	ActionSave             Action = "save"
	ActionQuit             Action = "quit"
	ActionNone             Action = "none"
)

var actions = map[Action]bool{
	ActionAddSibling: true, ActionAddSiblingBefore: true, ActionInsertParent: true,
	ActionAddChild: true, ActionRemove: true, ActionNavLeft: true, ActionNavRight: true,
	ActionNavUp: true, ActionNavDown: true, ActionNavRoot: true, ActionMoveUp: true,
	ActionMoveDown: true, ActionEdit: true, ActionToggle: true, ActionCopy: true,
	ActionPaste: true, ActionUndo: true, ActionDirLeft: true, ActionDirRight: true,
	ActionDirBoth: true, ActionFocus: true, ActionCancelFocus: true, ActionSave: true,
	ActionQuit: true, ActionNone: true,
}

// Keymap binds key names, as produced by KeyName, to actions.
type Keymap map[string]Action

// DefaultKeymap returns the built-in bindings.
func DefaultKeymap() Keymap {
	return Keymap{
		"enter":      ActionAddSibling,
		"O":          ActionAddSiblingBefore,
		"ctrl+enter": ActionInsertParent,
		"P":          ActionInsertParent,
		"tab":        ActionAddChild,
		"delete":     ActionRemove,
		"backspace":  ActionRemove,
		"left":       ActionNavLeft,
		"right":      ActionNavRight,
		"up":         ActionNavUp,
		"down":       ActionNavDown,
		"home":       ActionNavRoot,
		"alt+up":     ActionMoveUp,
		"alt+down":   ActionMoveDown,
		"pgup":       ActionMoveUp,
		"pgdn":       ActionMoveDown,
		"f2":         ActionEdit,
		"e":          ActionEdit,
		"space":      ActionToggle,
		"ctrl+c":     ActionCopy,
		"ctrl+v":     ActionPaste,
		"u":          ActionUndo,
		"ctrl+z":     ActionUndo,
		"l":          ActionDirLeft,
		"r":          ActionDirRight,
		"b":          ActionDirBoth,
		"f":          ActionFocus,
		"F":          ActionCancelFocus,
		"s":          ActionSave,
		"ctrl+s":     ActionSave,
		"q":          ActionQuit,
	}
}

// Apply merges overrides into the keymap. Binding a key to "none"
// removes it.
func (k Keymap) Apply(overrides map[string]string) error {
	for key, name := range overrides {
		a := Action(name)
		if !actions[a] {
			return fmt.Errorf("keymap: unknown action %q for key %q", name, key)
		}
		key = normalizeKey(key)
		if a == ActionNone {
			delete(k, key)
			continue
		}
		k[key] = a
	}
	return nil
}

// Lookup returns the action bound to the key event.
func (k Keymap) Lookup(ev *tcell.EventKey) (Action, bool) {
	a, ok := k[KeyName(ev)]
	return a, ok
}

// Bindings returns "key=action" pairs sorted by key.
func (k Keymap) Bindings() []string {
	out := make([]string, 0, len(k))
	for key, a := range k {
		out = append(out, key+"="+string(a))
	}
	sort.Strings(out)
	return out
}

// normalizeKey lowercases modifiers and named keys but keeps the case of
// single-character keys, so "Ctrl+S" and "ctrl+s" match while "F" and "f"
// stay distinct.
func normalizeKey(key string) string {
	parts := strings.Split(key, "+")
	for i, p := range parts {
		if len([]rune(p)) > 1 || i < len(parts)-1 {
			parts[i] = strings.ToLower(p)
		}
	}
	return strings.Join(parts, "+")
}

var keyNames = map[tcell.Key]string{
	tcell.KeyEnter:      "enter",
	tcell.KeyTab:        "tab",
	tcell.KeyBacktab:    "backtab",
	tcell.KeyEscape:     "esc",
	tcell.KeyBackspace:  "backspace",
	tcell.KeyBackspace2: "backspace",
	tcell.KeyDelete:     "delete",
	tcell.KeyInsert:     "insert",
	tcell.KeyHome:       "home",
	tcell.KeyEnd:        "end",
	tcell.KeyPgUp:       "pgup",
	tcell.KeyPgDn:       "pgdn",
	tcell.KeyUp:         "up",
	tcell.KeyDown:       "down",
	tcell.KeyLeft:       "left",
	tcell.KeyRight:      "right",
	tcell.KeyF1:         "f1",
	tcell.KeyF2:         "f2",
	tcell.KeyF3:         "f3",
	tcell.KeyF4:         "f4",
	tcell.KeyF5:         "f5",
	tcell.KeyF6:         "f6",
	tcell.KeyF7:         "f7",
	tcell.KeyF8:         "f8",
	tcell.KeyF9:         "f9",
	tcell.KeyF10:        "f10",
	tcell.KeyF11:        "f11",
	tcell.KeyF12:        "f12",
}

// KeyName names a key event: "a", "A", "space", "enter", "ctrl+s",
// "alt+up". Shift is folded into the rune for printable keys.
func KeyName(ev *tcell.EventKey) string {
	mod := ev.Modifiers()
	var name string
	switch k := ev.Key(); {
	case k == tcell.KeyRune:
		if ev.Rune() == ' ' {
			name = "space"
		} else {
			name = string(ev.Rune())
		}
		mod &^= tcell.ModShift
	case keyNames[k] != "":
		name = keyNames[k]
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		name = string(rune('a' + k - tcell.KeyCtrlA))
		mod |= tcell.ModCtrl
	default:
		name = strings.ToLower(ev.Name())
	}

	prefix := ""
	if mod&tcell.ModCtrl != 0 {
		prefix += "ctrl+"
	}
	if mod&tcell.ModAlt != 0 {
		prefix += "alt+"
	}
	if mod&tcell.ModShift != 0 {
		prefix += "shift+"
	}
	return prefix + name
}
