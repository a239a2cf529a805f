package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"qsim/internal/circuit"
	"qsim/internal/measure"
	"qsim/internal/simulator"
)

// RenderReport formats a finished run for the terminal: the circuit, the
// probability histogram, sampled counts and, when requested, per-qubit
// diagnostics. width bounds the circuit diagram.
func RenderReport(s *circuit.Schedule, res *simulator.Result, width int) string {
	var sb strings.Builder

	title := "Simulation"
	if res.Name != "" {
		title += " · " + res.Name
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(fmt.Sprintf("%d qubits, %d gates, depth %d, %s", res.NumQubits, res.GateCount, res.Depth, res.Duration)))
	sb.WriteString("\n\n")

	if s.Len() > 0 {
		sb.WriteString(gridView{sched: s, cols: s.Columns(), cursor: -1, qubit: -1}.render(width))
		sb.WriteString("\n\n")
	}

	sb.WriteString(titleStyle.Render("Probabilities"))
	sb.WriteString("\n")
	sb.WriteString(renderHistogram(res.Probabilities, maxOutcomes))
	sb.WriteString("\n")

	if res.Shots > 0 && res.Seed != nil {
		sb.WriteString("\n")
		sb.WriteString(titleStyle.Render(fmt.Sprintf("Samples (%d shots, seed %d)", res.Shots, *res.Seed)))
		sb.WriteString("\n")
		sb.WriteString(renderCounts(res.Samples, maxOutcomes))
		sb.WriteString("\n")
	}

	if len(res.Bloch) > 0 {
		sb.WriteString("\n")
		sb.WriteString(titleStyle.Render("Qubits"))
		sb.WriteString("\n")
		rows := make([]string, len(res.Bloch))
		for q, b := range res.Bloch {
			m := res.Marginals[q]
			rows[q] = fmt.Sprintf("  %s  P(1)=%s  bloch=(%+.3f, %+.3f, %+.3f)",
				qubitLabelStyle.Render(fmt.Sprintf("q[%d]", q)),
				valueStyle.Render(fmt.Sprintf("%.3f", m.Prob1)),
				b.X, b.Y, b.Z)
		}
		sb.WriteString(lipgloss.JoinVertical(lipgloss.Left, rows...))
		sb.WriteString("\n")
	}

	if len(res.State) > 0 {
		sb.WriteString("\n")
		sb.WriteString(titleStyle.Render("State vector"))
		sb.WriteString("\n")
		for i, a := range res.State {
			if a.Real == 0 && a.Imaginary == 0 {
				continue
			}
			fmt.Fprintf(&sb, "  |%s⟩  %+.6f%+.6fi\n", measure.Bitstring(i, res.NumQubits), a.Real, a.Imaginary)
		}
	}
	return sb.String()
}
