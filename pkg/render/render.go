// Package render renders calculator states as plain text.
package render

import (
	"fmt"
	"strings"

	"golang.org/x/text/width"
	"src.devlab.sh/pkg/boxes"
	"src.devlab.sh/pkg/calc"
)

// Renderer renders states.
type Renderer struct {
	Reducer *calc.Reducer
	// If not nil, used to show how long until the next tick of playing boxes.
	Remaining func(box string) (seconds float64, ok bool)
	// If positive, lines are truncated to this many columns.
	Width int
}

// Render renders all boxes of the registry, in display order, separated by
// blank lines.
func (r *Renderer) Render(st calc.State) string {
	var sb strings.Builder
	for i, def := range r.Reducer.Registry().All() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for _, line := range r.Box(st, def) {
			sb.WriteString(Truncate(line, r.Width))
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Box renders one box as a list of lines.
func (r *Renderer) Box(st calc.State, def *boxes.Def) []string {
	lines := []string{
		fmt.Sprintf("%s [%s]", def.Title, def.ID),
		fmt.Sprintf("  %s %s %s",
			Input(r.Reducer, st, def, boxes.Left), def.MidWord,
			Input(r.Reducer, st, def, boxes.Right)),
		"  " + r.Reducer.Format(st, def.ID),
	}
	if def.Target != nil {
		line := "  -> " + def.Target.String()
		if st.IsBound(*def.Target) {
			line += " (bound)"
		}
		lines = append(lines, line)
	}
	if def.CanPlay {
		b, _ := st.Box(def.ID)
		switch {
		case !b.Playing():
			lines = append(lines, "  stopped")
		case r.Remaining != nil:
			if secs, ok := r.Remaining(def.ID); ok {
				lines = append(lines, fmt.Sprintf("  playing, next tick in %.1fs", secs))
				break
			}
			fallthrough
		default:
			lines = append(lines, "  playing")
		}
	}
	return lines
}

// Input renders an input of a box. A literal is shown as is, or as the input's
// name in angle brackets when empty. A binding is shown as the current value
// followed by the id of the source box.
func Input(rd *calc.Reducer, st calc.State, def *boxes.Def, side boxes.Side) string {
	b, _ := st.Box(def.ID)
	slot := b.Slot(side)
	if slot.IsBound() {
		v, _ := rd.SlotValue(st, boxes.Ref{BoxID: def.ID, Side: side})
		return boxes.FormatNumber(v) + " @" + slot.Ref
	}
	if slot.Text == "" {
		name := def.LeftName
		if side == boxes.Right {
			name = def.RightName
		}
		return "<" + name + ">"
	}
	return slot.Text
}

// Truncate truncates s to at most w columns, counting East Asian wide and
// fullwidth characters as two columns. A non-positive w means no limit.
func Truncate(s string, w int) string {
	if w <= 0 {
		return s
	}
	used := 0
	for i, r := range s {
		rw := runeWidth(r)
		if used+rw > w {
			return s[:i]
		}
		used += rw
	}
	return s
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}
