// Package tui is the interactive terminal viewer for a mind map.
//
// A Viewer draws the engine's layout into a tcell.Screen and turns key
// presses into engine calls. It keeps the current node on screen,
// re-centring the viewport when the selection leaves it.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/mindstorm/internal/engine"
	"github.com/dshills/mindstorm/internal/engine/layout"
	"github.com/dshills/mindstorm/internal/engine/mutate"
	"github.com/dshills/mindstorm/internal/engine/node"
	"github.com/dshills/mindstorm/internal/logging"
	"github.com/dshills/mindstorm/internal/snapshot"
)

// Saver persists a snapshot of the map.
type Saver func(*snapshot.Data) error

type quitSignal struct{}

// Viewer is the interactive map view. Its methods must be called from the
// goroutine running the event loop; Reload is the exception.
type Viewer struct {
	screen tcell.Screen
	eng    *engine.Engine
	keymap Keymap
	theme  Theme
	save   Saver
	logger *logging.Logger

	offX, offY int
	placed     bool
	status     string
	edit       *editState
	quit       bool
}

type editState struct {
	id    string
	text  []rune
	fresh bool // the first key replaces the text
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithKeymap replaces the default key bindings.
func WithKeymap(k Keymap) Option {
	return func(v *Viewer) {
		v.keymap = k
	}
}

// WithTheme replaces the default styles.
func WithTheme(t Theme) Option {
	return func(v *Viewer) {
		v.theme = t
	}
}

// WithSaver enables the save action.
func WithSaver(s Saver) Option {
	return func(v *Viewer) {
		v.save = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(v *Viewer) {
		if l != nil {
			v.logger = l
		}
	}
}

// New creates a viewer for eng drawing into screen. The screen must
// already be initialised.
func New(screen tcell.Screen, eng *engine.Engine, opts ...Option) *Viewer {
	v := &Viewer{
		screen: screen,
		eng:    eng,
		keymap: DefaultKeymap(),
		theme:  DefaultTheme(),
		logger: logging.Null(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.WithComponent("tui")
	return v
}

// Run draws and handles events until the quit action or until ctx is
// done.
func (v *Viewer) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = v.screen.PostEvent(tcell.NewEventInterrupt(quitSignal{}))
	})
	defer stop()

	v.Draw()
	for !v.quit {
		ev := v.screen.PollEvent()
		if ev == nil {
			return nil
		}
		v.HandleEvent(ev)
		if !v.quit {
			v.Draw()
		}
	}
	return nil
}

// Reload asks the event loop to replace the map with data. It may be
// called from any goroutine.
func (v *Viewer) Reload(data *snapshot.Data) error {
	return v.screen.PostEvent(tcell.NewEventInterrupt(data))
}

// Quitting reports whether the quit action ran.
func (v *Viewer) Quitting() bool { return v.quit }

// Status returns the status line message.
func (v *Viewer) Status() string { return v.status }

// Editing reports whether a label is being edited.
func (v *Viewer) Editing() bool { return v.edit != nil }

// HandleEvent processes one terminal event.
func (v *Viewer) HandleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
	case *tcell.EventKey:
		if v.edit != nil {
			v.handleEditKey(ev)
			return
		}
		if a, ok := v.keymap.Lookup(ev); ok {
			v.Perform(a)
		}
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 == 0 {
			return
		}
		x, y := ev.Position()
		if id, ok := v.eng.Layout().At(x+v.offX, y+v.offY); ok {
			v.report(v.eng.Select(id))
		}
	case *tcell.EventInterrupt:
		switch data := ev.Data().(type) {
		case quitSignal:
			v.quit = true
		case *snapshot.Data:
			if err := v.eng.Refresh(data); err != nil {
				v.setStatus("reload failed: %v", err)
				return
			}
			v.edit = nil
			v.setStatus("reloaded")
		}
	}
}

// Perform runs an action as if its key had been pressed.
func (v *Viewer) Perform(a Action) {
	v.status = ""
	e := v.eng
	switch a {
	case ActionAddSibling:
		v.insert(func() (mutate.Result, error) {
			if cur := e.Current(); cur != nil && cur.Root {
				return e.AddChild("", nil)
			}
			return e.InsertSibling(engine.ModeAfter, "", nil)
		})
	case ActionAddSiblingBefore:
		v.insert(func() (mutate.Result, error) { return e.InsertSibling(engine.ModeBefore, "", nil) })
	case ActionInsertParent:
		v.insert(func() (mutate.Result, error) { return e.InsertParent("", nil) })
	case ActionAddChild:
		v.insert(func() (mutate.Result, error) { return e.AddChild("", nil) })
	case ActionRemove:
		_, err := e.RemoveNodes()
		v.report(err)
	case ActionNavLeft:
		e.SelectToward(node.SideLeft)
	case ActionNavRight:
		e.SelectToward(node.SideRight)
	case ActionNavUp:
		e.SelectPrevSibling()
	case ActionNavDown:
		e.SelectNextSibling()
	case ActionNavRoot:
		e.SelectRoot()
	case ActionMoveUp:
		_, err := e.MoveUp("")
		v.report(err)
	case ActionMoveDown:
		_, err := e.MoveDown("")
		v.report(err)
	case ActionEdit:
		if cur := e.Current(); cur != nil {
			v.startEdit(cur, false)
		}
	case ActionToggle:
		_, err := e.ToggleExpanded("")
		v.report(err)
	case ActionCopy:
		v.setStatus("copied %d", e.CopySelection())
	case ActionPaste:
		_, err := e.Paste("")
		v.report(err)
	case ActionUndo:
		if !e.CanUndo() {
			v.setStatus("nothing to undo")
			return
		}
		_, err := e.Undo()
		v.report(err)
	case ActionDirLeft:
		e.SetDirection(layout.Left)
	case ActionDirRight:
		e.SetDirection(layout.Right)
	case ActionDirBoth:
		e.SetDirection(layout.Both)
	case ActionFocus:
		v.report(e.Focus(""))
	case ActionCancelFocus:
		e.CancelFocus()
	case ActionSave:
		if v.save == nil {
			v.setStatus("no file to save to")
			return
		}
		if err := v.save(e.Snapshot()); err != nil {
			v.report(err)
			return
		}
		v.setStatus("saved")
	case ActionQuit:
		v.quit = true
	}
}

// insert runs fn and starts editing the node it created.
func (v *Viewer) insert(fn func() (mutate.Result, error)) {
	res, err := fn()
	if err != nil {
		v.report(err)
		return
	}
	if res.Node != nil {
		v.startEdit(res.Node, true)
	}
}

func (v *Viewer) startEdit(n *node.Node, fresh bool) {
	v.edit = &editState{id: n.ID, text: []rune(n.Label), fresh: fresh}
}

func (v *Viewer) handleEditKey(ev *tcell.EventKey) {
	ed := v.edit
	switch ev.Key() {
	case tcell.KeyEnter:
		v.edit = nil
		label := strings.TrimSpace(string(ed.text))
		if n := v.eng.Find(ed.id); n != nil && label != "" && label != n.Label {
			_, err := v.eng.SetLabel(ed.id, label)
			v.report(err)
		}
	case tcell.KeyEscape:
		v.edit = nil
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if ed.fresh {
			ed.text = nil
		} else if len(ed.text) > 0 {
			ed.text = ed.text[:len(ed.text)-1]
		}
		ed.fresh = false
	case tcell.KeyRune:
		if ed.fresh {
			ed.text = nil
		}
		ed.text = append(ed.text, ev.Rune())
		ed.fresh = false
	}
}

func (v *Viewer) report(err error) {
	if err != nil {
		v.logger.Debug("%v", err)
		v.status = err.Error()
	}
}

func (v *Viewer) setStatus(format string, args ...any) {
	v.status = fmt.Sprintf(format, args...)
}

// ============================================================================
// Drawing
// ============================================================================

// Draw renders the map and the status line.
func (v *Viewer) Draw() {
	v.screen.Clear()
	w, h := v.screen.Size()
	if w <= 0 || h <= 0 {
		return
	}
	mapH := max(h-1, 0)

	res := v.eng.Layout()
	v.follow(res, w, mapH)
	c := canvas{screen: v.screen, offX: v.offX, offY: v.offY, w: w, h: mapH}

	root := v.eng.Find(res.RootID)
	node.Walk(root, func(n *node.Node) bool {
		pb, ok := res.Box(n.ID)
		if !ok || !n.IsExpanded() {
			return true
		}
		var left, right []layout.Box
		for _, ch := range n.Children {
			b, ok := res.Box(ch.ID)
			if !ok {
				continue
			}
			if b.Side == node.SideLeft {
				left = append(left, b)
			} else {
				right = append(right, b)
			}
		}
		c.drawConnectors(pb, left, node.SideLeft, res.HGap, v.theme.Connector)
		c.drawConnectors(pb, right, node.SideRight, res.HGap, v.theme.Connector)
		return true
	})

	selected := make(map[string]bool)
	for _, n := range v.eng.Selection() {
		selected[n.ID] = true
	}
	currentID := ""
	if cur := v.eng.Current(); cur != nil {
		currentID = cur.ID
	}
	for id, b := range res.Boxes {
		n := v.eng.Find(id)
		if n == nil {
			continue
		}
		style := v.theme.Box
		switch {
		case id == currentID:
			style = v.theme.Current
		case selected[id]:
			style = v.theme.Selected
		case id == res.RootID:
			style = v.theme.Root
		}
		label := n.Label
		if v.edit != nil && v.edit.id == id {
			label = string(v.edit.text) + "_"
		}
		c.drawBox(b, label, style)
		if b.Collapsed {
			c.drawMarker(b, v.theme.Marker)
		}
	}

	v.drawStatus(w, h-1)
	v.screen.Show()
}

// follow moves the viewport so the current node is visible, centring it
// when it was off screen.
func (v *Viewer) follow(res *layout.Result, w, h int) {
	id := res.RootID
	if cur := v.eng.Current(); cur != nil {
		if _, ok := res.Box(cur.ID); ok {
			id = cur.ID
		}
	}
	b, ok := res.Box(id)
	if !ok {
		return
	}
	visible := b.X >= v.offX && b.Right() <= v.offX+w &&
		b.Y >= v.offY && b.Bottom() <= v.offY+h
	if v.placed && visible {
		return
	}
	v.offX = b.X + b.W/2 - w/2
	v.offY = b.CenterY - h/2
	v.placed = true
}

func (v *Viewer) drawStatus(w, y int) {
	if y < 0 {
		return
	}
	for x := 0; x < w; x++ {
		v.screen.SetContent(x, y, ' ', nil, v.theme.Status)
	}
	c := canvas{screen: v.screen, w: w, h: y + 1}
	c.text(0, y, v.statusText(), v.theme.Status)
}

func (v *Viewer) statusText() string {
	if v.edit != nil {
		return " edit: " + string(v.edit.text) + "_  (enter to keep, esc to cancel)"
	}
	parts := []string{}
	if cur := v.eng.Current(); cur != nil {
		parts = append(parts, strings.ReplaceAll(cur.Label, "\n", " "))
	}
	parts = append(parts, v.eng.Direction().String(), fmt.Sprintf("%d nodes", v.eng.NodeCount()))
	if v.eng.FocusID() != "" {
		parts = append(parts, "focus")
	}
	if v.status != "" {
		parts = append(parts, v.status)
	}
	return " " + strings.Join(parts, " | ")
}
