package script

import (
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/mindstorm/internal/engine"
	"github.com/dshills/mindstorm/internal/engine/layout"
	"github.com/dshills/mindstorm/internal/engine/mutate"
	"github.com/dshills/mindstorm/internal/engine/node"
)

// ModuleName is the global the map API is installed under.
const ModuleName = "mm"

// Module exposes an engine to Lua. Functions taking an id treat nil or ""
// as the current node; functions taking ids accept one id or a list, and
// nil means the selection. Mutations return the id of the node they
// produced.
type Module struct {
	eng *engine.Engine
}

// NewModule creates the mm module for eng.
func NewModule(eng *engine.Engine) *Module {
	return &Module{eng: eng}
}

// Register installs the module as a global table.
func (m *Module) Register(L *lua.LState) {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"root":           m.root,
		"node":           m.node,
		"children":       m.children,
		"find":           m.find,
		"current":        m.current,
		"selection":      m.selection,
		"select":         m.selectNodes,
		"add_child":      m.addChild,
		"insert_sibling": m.insertSibling,
		"insert_parent":  m.insertParent,
		"paste_text":     m.pasteText,
		"remove":         m.remove,
		"move":           m.move,
		"move_up":        m.moveUp,
		"move_down":      m.moveDown,
		"copy":           m.copy,
		"set_label":      m.setLabel,
		"set_tags":       m.setTags,
		"set_icons":      m.setIcons,
		"style":          m.style,
		"toggle":         m.toggle,
		"undo":           m.undo,
		"direction":      m.direction,
		"markdown":       m.markdown,
	})
	L.SetGlobal(ModuleName, mod)
}

// ============================================================================
// Queries
// ============================================================================

// root() -> node
func (m *Module) root(L *lua.LState) int {
	L.Push(nodeToTable(L, m.eng.Root()))
	return 1
}

// node(id) -> node|nil
func (m *Module) node(L *lua.LState) int {
	L.Push(nodeToTable(L, m.eng.Find(L.CheckString(1))))
	return 1
}

// children(id?) -> {node...}
func (m *Module) children(L *lua.LState) int {
	n := m.target(L, 1)
	t := L.NewTable()
	for i, c := range n.Children {
		t.RawSetInt(i+1, nodeToTable(L, c))
	}
	L.Push(t)
	return 1
}

// find(text) -> {node...}
// Returns the nodes whose label contains text, in depth-first order.
func (m *Module) find(L *lua.LState) int {
	text := L.CheckString(1)
	t := L.NewTable()
	node.Walk(m.eng.Root(), func(n *node.Node) bool {
		if strings.Contains(n.Label, text) {
			t.Append(nodeToTable(L, n))
		}
		return true
	})
	L.Push(t)
	return 1
}

// current() -> node|nil
func (m *Module) current(L *lua.LState) int {
	L.Push(nodeToTable(L, m.eng.Current()))
	return 1
}

// selection() -> {id...}
func (m *Module) selection(L *lua.LState) int {
	t := L.NewTable()
	for _, n := range m.eng.Selection() {
		t.Append(lua.LString(n.ID))
	}
	L.Push(t)
	return 1
}

// select(ids)
func (m *Module) selectNodes(L *lua.LState) int {
	check(L, m.eng.Select(idsArg(L, 1)...))
	return 0
}

// target resolves the optional id argument at n.
func (m *Module) target(L *lua.LState, n int) *node.Node {
	id := L.OptString(n, "")
	var found *node.Node
	if id == "" {
		found = m.eng.Current()
	} else {
		found = m.eng.Find(id)
	}
	if found == nil {
		L.ArgError(n, "no such node")
	}
	return found
}

// ============================================================================
// Mutations
// ============================================================================

// add_child(id?, label?) -> id
func (m *Module) addChild(L *lua.LState) int {
	res, err := m.eng.AddChild(L.OptString(1, ""), labelArg(L, 2))
	return pushResult(L, res, err)
}

// insert_sibling(id?, label?, "after"|"before") -> id
func (m *Module) insertSibling(L *lua.LState) int {
	mode := engine.ModeAfter
	switch where := L.OptString(3, "after"); where {
	case "after":
	case "before":
		mode = engine.ModeBefore
	default:
		L.ArgError(3, "expected \"after\" or \"before\"")
	}
	res, err := m.eng.InsertSibling(mode, L.OptString(1, ""), labelArg(L, 2))
	return pushResult(L, res, err)
}

// insert_parent(id?, label?) -> id
func (m *Module) insertParent(L *lua.LState) int {
	res, err := m.eng.InsertParent(L.OptString(1, ""), labelArg(L, 2))
	return pushResult(L, res, err)
}

// paste_text(id?, text, multiline?) -> id
func (m *Module) pasteText(L *lua.LState) int {
	res, err := m.eng.PasteText(L.OptString(1, ""), L.CheckString(2), L.OptBool(3, true))
	return pushResult(L, res, err)
}

// remove(ids?) -> id of the new selection
func (m *Module) remove(L *lua.LState) int {
	ids := idsArg(L, 1)
	if len(ids) == 1 {
		res, err := m.eng.RemoveNode(ids[0])
		return pushResult(L, res, err)
	}
	res, err := m.eng.RemoveNodes(ids...)
	return pushResult(L, res, err)
}

// move(ids?, to, "into"|"before"|"after") -> id
func (m *Module) move(L *lua.LState) int {
	ids := idsArg(L, 1)
	to := L.CheckString(2)
	mode := engine.ModeInto
	switch where := L.OptString(3, "into"); where {
	case "into":
	case "before":
		mode = engine.ModeBefore
	case "after":
		mode = engine.ModeAfter
	default:
		L.ArgError(3, "expected \"into\", \"before\" or \"after\"")
	}
	res, err := m.eng.MoveNodes(ids, to, mode)
	return pushResult(L, res, err)
}

// move_up(id?) -> id
func (m *Module) moveUp(L *lua.LState) int {
	res, err := m.eng.MoveUp(L.OptString(1, ""))
	return pushResult(L, res, err)
}

// move_down(id?) -> id
func (m *Module) moveDown(L *lua.LState) int {
	res, err := m.eng.MoveDown(L.OptString(1, ""))
	return pushResult(L, res, err)
}

// copy(ids?, to) -> id of the first copy
func (m *Module) copy(L *lua.LState) int {
	res, err := m.eng.CopyNodes(idsArg(L, 1), L.CheckString(2))
	return pushResult(L, res, err)
}

// set_label(id?, text) -> id
func (m *Module) setLabel(L *lua.LState) int {
	res, err := m.eng.SetLabel(L.OptString(1, ""), L.CheckString(2))
	return pushResult(L, res, err)
}

// set_tags(id?, {tag...}) -> id
func (m *Module) setTags(L *lua.LState) int {
	res, err := m.eng.SetTags(L.OptString(1, ""), stringsArg(L, 2)...)
	return pushResult(L, res, err)
}

// set_icons(id?, {icon...}) -> id
func (m *Module) setIcons(L *lua.LState) int {
	res, err := m.eng.SetIcons(L.OptString(1, ""), stringsArg(L, 2)...)
	return pushResult(L, res, err)
}

// style(id?, {background=, color=, fontSize=, fontWeight=}) -> id
// Fields left out keep their value.
func (m *Module) style(L *lua.LState) int {
	n := m.target(L, 1)
	res, err := m.eng.SetStyle(n.ID, n.Style.Merge(styleArg(L, 2)))
	return pushResult(L, res, err)
}

// toggle(id?) -> expanded
func (m *Module) toggle(L *lua.LState) int {
	n := m.target(L, 1)
	_, err := m.eng.ToggleExpanded(n.ID)
	check(L, err)
	L.Push(lua.LBool(n.IsExpanded()))
	return 1
}

// undo() -> bool
// Returns false when there is nothing to undo.
func (m *Module) undo(L *lua.LState) int {
	if !m.eng.CanUndo() {
		L.Push(lua.LFalse)
		return 1
	}
	_, err := m.eng.Undo()
	check(L, err)
	L.Push(lua.LTrue)
	return 1
}

// direction("left"|"right"|"both"?) -> direction
func (m *Module) direction(L *lua.LState) int {
	if L.GetTop() >= 1 && L.Get(1) != lua.LNil {
		dir, err := layout.ParseDirection(L.CheckString(1))
		if err != nil {
			L.ArgError(1, err.Error())
		}
		m.eng.SetDirection(dir)
	}
	L.Push(lua.LString(m.eng.Direction().String()))
	return 1
}

// markdown(selection?) -> string
func (m *Module) markdown(L *lua.LState) int {
	if L.OptBool(1, false) {
		L.Push(lua.LString(m.eng.SelectionMarkdown()))
	} else {
		L.Push(lua.LString(m.eng.Markdown()))
	}
	return 1
}

func check(L *lua.LState, err error) {
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
}

func pushResult(L *lua.LState, res mutate.Result, err error) int {
	check(L, err)
	switch {
	case res.Node != nil:
		L.Push(lua.LString(res.Node.ID))
	case res.Selection != nil:
		L.Push(lua.LString(res.Selection.ID))
	default:
		L.Push(lua.LNil)
	}
	return 1
}
