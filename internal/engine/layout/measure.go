package layout

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Measurer reports the box size of a label.
type Measurer interface {
	Measure(label string) (w, h int)
}

// MeasureFunc adapts a function to Measurer.
type MeasureFunc func(label string) (w, h int)

// Measure calls f.
func (f MeasureFunc) Measure(label string) (int, int) {
	return f(label)
}

// TextMeasurer sizes labels in terminal cells. Each line is measured by
// grapheme cluster width, so wide characters count as two cells.
type TextMeasurer struct {
	PaddingX int
	PaddingY int
}

// Measure returns the widest line plus horizontal padding, and the line
// count plus vertical padding.
func (m TextMeasurer) Measure(label string) (int, int) {
	lines := strings.Split(label, "\n")
	w := 0
	for _, line := range lines {
		w = max(w, uniseg.StringWidth(line))
	}
	return w + 2*m.PaddingX, len(lines) + 2*m.PaddingY
}
