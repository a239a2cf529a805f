package tui

import (
	"fmt"
	"slices"
	"strings"

	"qsim/internal/circuit"
	"qsim/internal/gates"
)

// padCenter centres a string within the given width, counting runes.
func padCenter(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	total := width - len(r)
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// cellInfo describes what occupies a single cell in the circuit grid.
type cellInfo struct {
	gate        *circuit.Gate
	glyph       string // wire symbol for multi-qubit gates, "" for boxed gates
	vertAbove   bool
	vertBelow   bool
	passThrough bool
}

// cellAt returns rendering information for the cell at (col, qubit).
func cellAt(s *circuit.Schedule, col, qubit int) cellInfo {
	var info cellInfo
	if g, ok := s.At(col, qubit); ok {
		info.gate = &g
		spec, _ := gates.Lookup(g.Kind)
		if pos := slices.Index(g.Targets, qubit); pos >= 0 && pos < len(spec.Glyphs) {
			info.glyph = spec.Glyphs[pos]
		}
		if len(g.Targets) > 1 {
			lo, hi := g.Span()
			info.vertAbove = qubit > lo
			info.vertBelow = qubit < hi
		}
		return info
	}
	if _, ok := s.Crossing(col, qubit); ok {
		info.passThrough = true
		info.vertAbove = true
		info.vertBelow = true
	}
	return info
}

// boxLabel is the text drawn inside a single-qubit gate box.
func boxLabel(g *circuit.Gate) string {
	spec, _ := gates.Lookup(g.Kind)
	return spec.Label()
}

// center places s, whose visual width is w, in the middle of a field of
// width total padded with fill.
func center(s string, w, total int, fill string) string {
	left := (total - w) / 2
	return strings.Repeat(fill, left) + s + strings.Repeat(fill, total-w-left)
}

// renderCell returns the three text rows of one grid cell, each exactly
// cellW columns wide. A highlighted cell is framed in double lines.
func renderCell(info cellInfo, highlight bool) (top, mid, bot string) {
	inner := cellW
	if highlight {
		inner = cellW - 2
	}

	switch {
	case info.gate != nil && info.glyph != "":
		mid = center(gateStyle.Render(info.glyph), 1, inner, "─")
	case info.gate != nil:
		label := "┤" + padCenter(boxLabel(info.gate), gateNameW) + "├"
		mid = center(gateStyle.Render(label), gateBoxW, inner, "─")
	case info.passThrough:
		mid = center("┼", 1, inner, "─")
	default:
		mid = strings.Repeat("─", inner)
	}

	if highlight {
		edge := strings.Repeat("═", inner)
		side := cursorBoxStyle.Render("║")
		return cursorBoxStyle.Render("╔" + edge + "╗"), side + mid + side, cursorBoxStyle.Render("╚" + edge + "╝")
	}

	if info.gate != nil && info.glyph == "" {
		lid := strings.Repeat("─", gateNameW)
		top = center(gateStyle.Render("┌"+lid+"┐"), gateBoxW, cellW, " ")
		bot = center(gateStyle.Render("└"+lid+"┘"), gateBoxW, cellW, " ")
		return top, mid, bot
	}

	top, bot = strings.Repeat(" ", cellW), strings.Repeat(" ", cellW)
	if info.vertAbove {
		top = center("│", 1, cellW, " ")
	}
	if info.vertBelow {
		bot = center("│", 1, cellW, " ")
	}
	return top, mid, bot
}

// gridView is the slice of a schedule drawn in one frame.
type gridView struct {
	sched *circuit.Schedule
	cols  []int // occupied columns in order; one grid step each

	// cursor is the highlighted step index, -1 for none.
	cursor int
	// qubit is the highlighted wire, -1 for none.
	qubit int
}

// render draws the grid fitting in width characters. When the cursor is
// off screen the window scrolls to keep it visible.
func (v gridView) render(width int) string {
	var sb strings.Builder

	maxSteps := max((width-labelVisualW)/cellW, 1)
	start := 0
	if v.cursor >= maxSteps {
		start = v.cursor - maxSteps + 1
	}
	end := min(start+maxSteps, len(v.cols))

	if start > 0 {
		fmt.Fprintf(&sb, "  ◀ showing steps %d–%d\n", start, end-1)
	}

	header := strings.Repeat(" ", labelVisualW)
	for step := start; step < end; step++ {
		header += dimStyle.Render(padCenter(fmt.Sprintf("%d", step), cellW))
	}
	sb.WriteString(header + "\n")

	for qubit := range v.sched.NumQubits() {
		topLine := strings.Repeat(" ", labelVisualW)
		label := fmt.Sprintf("%-5s", fmt.Sprintf("q[%d]", qubit))
		if qubit == v.qubit {
			label = selectedQubitStyle.Render(label)
		} else {
			label = qubitLabelStyle.Render(label)
		}
		midLine := label + "──"
		botLine := strings.Repeat(" ", labelVisualW)

		for step := start; step < end; step++ {
			info := cellAt(v.sched, v.cols[step], qubit)
			top, mid, bot := renderCell(info, step == v.cursor && qubit == v.qubit)
			topLine += top
			midLine += mid
			botLine += bot
		}
		if end == start {
			midLine += strings.Repeat("─", cellW)
		}

		sb.WriteString(topLine + "\n")
		sb.WriteString(midLine + "\n")
		sb.WriteString(botLine + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
