package tui

import (
	"fmt"
	"math"
	"math/cmplx"
	"slices"
	"strings"

	"qsim/internal/measure"
	"qsim/internal/statevec"
)

// renderHistogram draws one bar per outcome in basis order. Past limit only
// the most likely outcomes are drawn and the remainder is summarised.
func renderHistogram(d measure.Distribution, limit int) string {
	outcomes := d.Sorted()
	if len(outcomes) == 0 {
		return dimStyle.Render("  (no outcomes)")
	}

	var sb strings.Builder
	shown := outcomes
	if limit > 0 && len(shown) > limit {
		shown = d.Top(limit)
		slices.SortFunc(shown, func(a, b measure.Outcome) int { return strings.Compare(a.Bitstring, b.Bitstring) })
	}
	for _, o := range shown {
		n := int(math.Round(o.Probability * barW))
		bar := barStyle.Render(strings.Repeat("█", n)) + dimStyle.Render(strings.Repeat("░", barW-n))
		fmt.Fprintf(&sb, "  %s %s %s\n", qubitLabelStyle.Render("|"+o.Bitstring+"⟩"), bar, valueStyle.Render(fmt.Sprintf("%6.2f%%", o.Probability*100)))
	}
	if rest := len(outcomes) - len(shown); rest > 0 {
		p := d.Total()
		for _, o := range shown {
			p -= o.Probability
		}
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  … %d more outcomes, %.2f%% total", rest, p*100)))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// renderCounts draws sampled counts as bars scaled to the total.
func renderCounts(tallies []measure.Tally, limit int) string {
	total := 0
	for _, t := range tallies {
		total += t.Count
	}
	if total == 0 {
		return dimStyle.Render("  (no samples)")
	}

	var sb strings.Builder
	shown := tallies
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, t := range shown {
		n := int(math.Round(float64(t.Count) / float64(total) * barW))
		bar := barStyle.Render(strings.Repeat("█", n)) + dimStyle.Render(strings.Repeat("░", barW-n))
		fmt.Fprintf(&sb, "  %s %s %s\n", qubitLabelStyle.Render(t.Bitstring), bar, valueStyle.Render(fmt.Sprintf("%6d", t.Count)))
	}
	if rest := len(tallies) - len(shown); rest > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  … %d more outcomes", rest)))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// renderQubit shows the marginal probabilities and Bloch vector of one qubit.
func renderQubit(st *statevec.State, q int) string {
	marg := st.Marginals()[q]
	b := st.Bloch(q)

	var sb strings.Builder
	fmt.Fprintf(&sb, "  %s  P(0)=%s  P(1)=%s\n",
		selectedQubitStyle.Render(fmt.Sprintf("q[%d]", q)),
		valueStyle.Render(fmt.Sprintf("%.3f", marg.Prob0)),
		valueStyle.Render(fmt.Sprintf("%.3f", marg.Prob1)))
	fmt.Fprintf(&sb, "  Bloch  x=%s  y=%s  z=%s  |r|=%s",
		valueStyle.Render(fmt.Sprintf("%+.3f", b.X)),
		valueStyle.Render(fmt.Sprintf("%+.3f", b.Y)),
		valueStyle.Render(fmt.Sprintf("%+.3f", b.Z)),
		valueStyle.Render(fmt.Sprintf("%.3f", b.Length())))
	if b.Length() < 0.999 {
		sb.WriteString(dimStyle.Render("  (entangled)"))
	}
	return sb.String()
}

// renderAmplitudes lists the basis states with non-negligible weight, with
// magnitude and phase, in index order.
func renderAmplitudes(st *statevec.State, limit int) string {
	var sb strings.Builder
	shown := 0
	for i, a := range st.Amplitudes() {
		p := real(a)*real(a) + imag(a)*imag(a)
		if p <= measure.Epsilon {
			continue
		}
		if limit > 0 && shown == limit {
			sb.WriteString(dimStyle.Render("  …"))
			sb.WriteString("\n")
			break
		}
		shown++
		phase := cmplx.Phase(a) / math.Pi
		if math.Abs(phase) < 1e-9 {
			phase = 0
		}
		fmt.Fprintf(&sb, "  %s  %s  %s\n",
			qubitLabelStyle.Render("|"+measure.Bitstring(i, st.NumQubits())+"⟩"),
			valueStyle.Render(fmt.Sprintf("%+.3f%+.3fi", real(a), imag(a))),
			dimStyle.Render(fmt.Sprintf("phase %+.2fπ", phase)))
	}
	return strings.TrimRight(sb.String(), "\n")
}
