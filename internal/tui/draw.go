package tui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/mindstorm/internal/engine/layout"
	"github.com/dshills/mindstorm/internal/engine/node"
)

// Theme holds the styles used for drawing.
type Theme struct {
	Box       tcell.Style
	Root      tcell.Style
	Current   tcell.Style
	Selected  tcell.Style
	Connector tcell.Style
	Marker    tcell.Style
	Status    tcell.Style
}

// DefaultTheme returns the built-in styles.
func DefaultTheme() Theme {
	return Theme{
		Box:       tcell.StyleDefault,
		Root:      tcell.StyleDefault.Bold(true),
		Current:   tcell.StyleDefault.Reverse(true).Bold(true),
		Selected:  tcell.StyleDefault.Reverse(true),
		Connector: tcell.StyleDefault.Foreground(tcell.ColorGray),
		Marker:    tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true),
		Status:    tcell.StyleDefault.Reverse(true),
	}
}

// canvas draws layout coordinates onto a screen region.
type canvas struct {
	screen tcell.Screen
	offX   int
	offY   int
	w, h   int
}

func (c canvas) set(x, y int, r rune, style tcell.Style) {
	sx, sy := x-c.offX, y-c.offY
	if sx < 0 || sy < 0 || sx >= c.w || sy >= c.h {
		return
	}
	c.screen.SetContent(sx, sy, r, nil, style)
}

// text draws s from (x, y), one grapheme cluster per cell group, and
// returns the x just past it.
func (c canvas) text(x, y int, s string, style tcell.Style) int {
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		runes := g.Runes()
		sx, sy := x-c.offX, y-c.offY
		if sx >= 0 && sy >= 0 && sx < c.w && sy < c.h {
			c.screen.SetContent(sx, sy, runes[0], runes[1:], style)
		}
		x += max(g.Width(), 1)
	}
	return x
}

// drawBox draws a bordered box with the label centred inside.
func (c canvas) drawBox(b layout.Box, label string, style tcell.Style) {
	if b.W < 2 || b.H < 2 {
		return
	}
	right, bottom := b.Right()-1, b.Bottom()-1
	for x := b.X; x <= right; x++ {
		for y := b.Y; y <= bottom; y++ {
			c.set(x, y, ' ', style)
		}
	}
	for x := b.X + 1; x < right; x++ {
		c.set(x, b.Y, '─', style)
		c.set(x, bottom, '─', style)
	}
	for y := b.Y + 1; y < bottom; y++ {
		c.set(b.X, y, '│', style)
		c.set(right, y, '│', style)
	}
	c.set(b.X, b.Y, '┌', style)
	c.set(right, b.Y, '┐', style)
	c.set(b.X, bottom, '└', style)
	c.set(right, bottom, '┘', style)

	lines := strings.Split(label, "\n")
	top := b.Y + (b.H-len(lines))/2
	for i, line := range lines {
		x := b.X + (b.W-uniseg.StringWidth(line))/2
		c.text(x, top+i, line, style)
	}
}

// drawMarker marks a collapsed node on the edge facing its hidden
// children.
func (c canvas) drawMarker(b layout.Box, style tcell.Style) {
	if b.Side == node.SideLeft {
		c.set(b.X-1, b.CenterY, '+', style)
		return
	}
	c.set(b.Right(), b.CenterY, '+', style)
}

// drawConnectors joins parent to the children placed on one side with an
// elbow at the middle of the horizontal gap.
func (c canvas) drawConnectors(parent layout.Box, children []layout.Box, side node.Side, hgap int, style tcell.Style) {
	if len(children) == 0 {
		return
	}
	left := side == node.SideLeft
	startX, mid := parent.Right(), parent.Right()+hgap/2
	if left {
		startX, mid = parent.X-1, parent.X-1-hgap/2
	}
	py := parent.CenterY

	minY, maxY := py, py
	for _, ch := range children {
		minY = min(minY, ch.CenterY)
		maxY = max(maxY, ch.CenterY)
	}

	c.hline(startX, mid, py, style)
	for y := minY; y <= maxY; y++ {
		c.set(mid, y, '│', style)
	}
	c.set(mid, py, parentJunction(py, minY, maxY, left), style)
	for _, ch := range children {
		end := ch.X - 1
		if left {
			end = ch.Right()
		}
		c.hline(mid, end, ch.CenterY, style)
		c.set(mid, ch.CenterY, childJunction(ch.CenterY, minY, maxY, py, left), style)
	}
}

func (c canvas) hline(from, to, y int, style tcell.Style) {
	if from > to {
		from, to = to, from
	}
	for x := from; x <= to; x++ {
		c.set(x, y, '─', style)
	}
}

func childJunction(y, minY, maxY, py int, left bool) rune {
	switch {
	case y == py:
		return straightJunction(py, minY, maxY)
	case y == minY:
		return pick(left, '┐', '┌')
	case y == maxY:
		return pick(left, '┘', '└')
	default:
		return pick(left, '┤', '├')
	}
}

// straightJunction joins a child drawn level with its parent.
func straightJunction(py, minY, maxY int) rune {
	switch {
	case minY == maxY:
		return '─'
	case minY < py && maxY > py:
		return '┼'
	case maxY > py:
		return '┬'
	default:
		return '┴'
	}
}

func parentJunction(py, minY, maxY int, left bool) rune {
	switch {
	case minY == py && maxY == py:
		return '─'
	case minY < py && maxY > py:
		return pick(left, '├', '┤')
	case maxY > py:
		return pick(left, '┌', '┐')
	default:
		return pick(left, '└', '┘')
	}
}

func pick(left bool, l, r rune) rune {
	if left {
		return l
	}
	return r
}
