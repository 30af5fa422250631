package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/mindstorm/internal/engine/node"
)

// nodeToTable converts n to a Lua table, or nil when n is nil. Children
// are not included; use mm.children.
func nodeToTable(L *lua.LState, n *node.Node) lua.LValue {
	if n == nil {
		return lua.LNil
	}
	t := L.NewTable()
	t.RawSetString("id", lua.LString(n.ID))
	t.RawSetString("label", lua.LString(n.Label))
	t.RawSetString("root", lua.LBool(n.Root))
	t.RawSetString("expanded", lua.LBool(n.IsExpanded()))
	t.RawSetString("side", lua.LString(n.Side.String()))
	t.RawSetString("depth", lua.LNumber(n.Depth()))
	t.RawSetString("child_count", lua.LNumber(len(n.Children)))
	if n.Parent != nil {
		t.RawSetString("parent", lua.LString(n.Parent.ID))
	}
	if n.HyperLink != "" {
		t.RawSetString("hyperlink", lua.LString(n.HyperLink))
	}
	t.RawSetString("tags", stringsToTable(L, n.Tags))
	t.RawSetString("icons", stringsToTable(L, n.Icons))
	if !n.Style.IsZero() {
		st := L.NewTable()
		setIf(st, "background", n.Style.Background)
		setIf(st, "color", n.Style.Color)
		setIf(st, "fontSize", n.Style.FontSize)
		setIf(st, "fontWeight", n.Style.FontWeight)
		t.RawSetString("style", st)
	}
	return t
}

func setIf(t *lua.LTable, key, value string) {
	if value != "" {
		t.RawSetString(key, lua.LString(value))
	}
}

func stringsToTable(L *lua.LState, values []string) *lua.LTable {
	t := L.CreateTable(len(values), 0)
	for _, v := range values {
		t.Append(lua.LString(v))
	}
	return t
}

// labelArg returns a new node labelled by the optional argument at n, or
// nil so the engine creates one with the default label.
func labelArg(L *lua.LState, n int) *node.Node {
	if label := L.OptString(n, ""); label != "" {
		return node.New(label)
	}
	return nil
}

// idsArg reads one id or a list of ids. Nil yields no ids.
func idsArg(L *lua.LState, n int) []string {
	switch v := L.Get(n).(type) {
	case *lua.LNilType:
		return nil
	case lua.LString:
		return []string{string(v)}
	case *lua.LTable:
		return stringsArg(L, n)
	default:
		L.ArgError(n, "expected an id or a list of ids")
		return nil
	}
}

// stringsArg reads a list of strings.
func stringsArg(L *lua.LState, n int) []string {
	t := L.CheckTable(n)
	out := make([]string, 0, t.Len())
	for i := 1; i <= t.Len(); i++ {
		s, ok := t.RawGetInt(i).(lua.LString)
		if !ok {
			L.ArgError(n, "expected a list of strings")
		}
		out = append(out, string(s))
	}
	return out
}

func styleArg(L *lua.LState, n int) *node.Style {
	t := L.CheckTable(n)
	field := func(key string) string {
		if s, ok := t.RawGetString(key).(lua.LString); ok {
			return string(s)
		}
		return ""
	}
	return &node.Style{
		Background: field("background"),
		Color:      field("color"),
		FontSize:   field("fontSize"),
		FontWeight: field("fontWeight"),
	}
}
