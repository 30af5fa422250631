package tui

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestKeyName(t *testing.T) {
	tests := []struct {
		key  tcell.Key
		r    rune
		mod  tcell.ModMask
		want string
	}{
		{tcell.KeyRune, 'a', tcell.ModNone, "a"},
		{tcell.KeyRune, 'F', tcell.ModShift, "F"},
		{tcell.KeyRune, ' ', tcell.ModNone, "space"},
		{tcell.KeyRune, 'x', tcell.ModAlt, "alt+x"},
		{tcell.KeyEnter, 0, tcell.ModNone, "enter"},
		{tcell.KeyEnter, 0, tcell.ModCtrl, "ctrl+enter"},
		{tcell.KeyTab, 0, tcell.ModNone, "tab"},
		{tcell.KeyUp, 0, tcell.ModAlt, "alt+up"},
		{tcell.KeyCtrlS, 0, tcell.ModCtrl, "ctrl+s"},
		{tcell.KeyF2, 0, tcell.ModNone, "f2"},
		{tcell.KeyDelete, 0, tcell.ModNone, "delete"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := KeyName(tcell.NewEventKey(tt.key, tt.r, tt.mod))
			if got != tt.want {
				t.Errorf("KeyName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		"Ctrl+S":   "ctrl+s",
		"F":        "F",
		"f":        "f",
		"ALT+Up":   "alt+up",
		"Enter":    "enter",
		"shift+F2": "shift+f2",
	}
	for in, want := range tests {
		if got := normalizeKey(in); got != want {
			t.Errorf("normalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestKeymapApply(t *testing.T) {
	k := DefaultKeymap()
	err := k.Apply(map[string]string{
		"Ctrl+N": "add-child",
		"q":      "none",
		"x":      "remove",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if k["ctrl+n"] != ActionAddChild {
		t.Errorf("ctrl+n = %q, want add-child", k["ctrl+n"])
	}
	if _, ok := k["q"]; ok {
		t.Error("q still bound after none")
	}
	if a, ok := k.Lookup(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)); !ok || a != ActionRemove {
		t.Errorf("Lookup(x) = %q, %v", a, ok)
	}
	if k["tab"] != ActionAddChild {
		t.Error("untouched default binding lost")
	}
}

func TestKeymapApplyUnknownAction(t *testing.T) {
	k := DefaultKeymap()
	if err := k.Apply(map[string]string{"z": "explode"}); err == nil {
		t.Fatal("Apply accepted an unknown action")
	}
}

func TestKeymapBindingsSorted(t *testing.T) {
	k := Keymap{"b": ActionDirBoth, "a": ActionAddChild}
	got := k.Bindings()
	if len(got) != 2 || got[0] != "a=add-child" || got[1] != "b=dir-both" {
		t.Errorf("Bindings = %v", got)
	}
}
