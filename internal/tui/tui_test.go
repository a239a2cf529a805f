package tui

import (
	"context"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qsim/internal/circuit"
	"qsim/internal/gates"
	"qsim/internal/measure"
	"qsim/internal/simulator"
)

func bell(t *testing.T) *circuit.Schedule {
	t.Helper()
	s, err := circuit.Circuit{Name: "bell", NumQubits: 2, Gates: []circuit.Gate{
		circuit.New(gates.H, 0, 0),
		circuit.New(gates.CNOT, 1, 0, 1),
	}}.Schedule(12)
	require.NoError(t, err)
	return s
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPadCenter(t *testing.T) {
	assert.Equal(t, "  H  ", padCenter("H", 5))
	assert.Equal(t, " S†  ", padCenter("S†", 5))
	assert.Equal(t, "ABCDE", padCenter("ABCDEFG", 5))
}

func TestCellAt(t *testing.T) {
	s, err := circuit.Circuit{NumQubits: 4, Gates: []circuit.Gate{
		circuit.New(gates.CNOT, 0, 0, 2),
		circuit.New(gates.RX, 0, 3).WithAngle(math.Pi),
	}}.Schedule(12)
	require.NoError(t, err)

	ctrl := cellAt(s, 0, 0)
	require.NotNil(t, ctrl.gate)
	assert.Equal(t, "●", ctrl.glyph)
	assert.False(t, ctrl.vertAbove)
	assert.True(t, ctrl.vertBelow)

	mid := cellAt(s, 0, 1)
	assert.Nil(t, mid.gate)
	assert.True(t, mid.passThrough)

	tgt := cellAt(s, 0, 2)
	assert.Equal(t, "⊕", tgt.glyph)
	assert.True(t, tgt.vertAbove)
	assert.False(t, tgt.vertBelow)

	rx := cellAt(s, 0, 3)
	require.NotNil(t, rx.gate)
	assert.Empty(t, rx.glyph)
	assert.False(t, rx.vertAbove)

	assert.Equal(t, cellInfo{}, cellAt(s, 5, 0))
}

func TestRenderCellWidth(t *testing.T) {
	s := bell(t)
	cells := []cellInfo{
		{},
		cellAt(s, 0, 0),
		cellAt(s, 1, 0),
		cellAt(s, 1, 1),
		{passThrough: true, vertAbove: true, vertBelow: true},
	}
	for _, info := range cells {
		for _, hl := range []bool{false, true} {
			top, mid, bot := renderCell(info, hl)
			assert.Equal(t, cellW, lipgloss.Width(top))
			assert.Equal(t, cellW, lipgloss.Width(mid))
			assert.Equal(t, cellW, lipgloss.Width(bot))
		}
	}
}

func TestGridRender(t *testing.T) {
	out := gridView{sched: bell(t), cols: []int{0, 1}, cursor: -1, qubit: -1}.render(80)
	assert.Contains(t, out, "q[0]")
	assert.Contains(t, out, "q[1]")
	assert.Contains(t, out, "┤  H  ├")
	assert.Contains(t, out, "●")
	assert.Contains(t, out, "⊕")
	assert.Equal(t, 1+3*2, len(strings.Split(out, "\n")))
}

func TestGridScrollsToCursor(t *testing.T) {
	c := circuit.Circuit{NumQubits: 1}
	for i := range 20 {
		c.Gates = append(c.Gates, circuit.New(gates.X, i, 0))
	}
	s, err := c.Schedule(12)
	require.NoError(t, err)

	out := gridView{sched: s, cols: s.Columns(), cursor: 19, qubit: 0}.render(labelVisualW + 3*cellW)
	assert.Contains(t, out, "showing steps 17–19")
	assert.Contains(t, out, "╔")
}

func TestModelStartsOnFinalState(t *testing.T) {
	m := New(bell(t))
	assert.Equal(t, 1, m.step)
	require.NoError(t, m.err)
	p := measure.Probabilities(m.state)
	assert.InDelta(t, 0.5, p["00"], 1e-12)
	assert.InDelta(t, 0.5, p["11"], 1e-12)
}

func TestModelStepping(t *testing.T) {
	m := New(bell(t))

	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 0, m.step)
	p := measure.Probabilities(m.state)
	assert.InDelta(t, 0.5, p["00"], 1e-12)
	assert.InDelta(t, 0.5, p["10"], 1e-12)

	m = press(t, m, runes("h"), runes("h"))
	assert.Equal(t, -1, m.step, "stops at the initial state")
	assert.Equal(t, measure.Distribution{"00": 1}, measure.Probabilities(m.state))

	m = press(t, m, runes("G"))
	assert.Equal(t, 1, m.step)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, m.step, "stops at the final state")
	m = press(t, m, runes("g"))
	assert.Equal(t, -1, m.step)
}

func TestModelQubitSelection(t *testing.T) {
	m := New(bell(t))
	m = press(t, m, runes("k"))
	assert.Equal(t, 0, m.qubit)
	m = press(t, m, runes("j"), runes("j"), runes("j"))
	assert.Equal(t, 1, m.qubit)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.qubit)
}

func TestModelQuit(t *testing.T) {
	_, cmd := New(bell(t)).Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = New(bell(t)).Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelView(t *testing.T) {
	m := New(bell(t))
	assert.Equal(t, "Loading...", m.View())

	m = press(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	view := m.View()
	assert.Contains(t, view, "Quantum Circuit · bell")
	assert.Contains(t, view, "Measurement Probabilities")
	assert.Contains(t, view, "|00⟩")
	assert.Contains(t, view, "Step 2 of 2")
	assert.Contains(t, view, "Controlled NOT on q[0], q[1]")
	assert.Contains(t, view, "(entangled)")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Contains(t, m.View(), "phase")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Contains(t, m.View(), "OPENQASM 2.0;")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, runes("g"))
	view = m.View()
	assert.Contains(t, view, "Measurement Probabilities")
	assert.Contains(t, view, "Initial state |00⟩")
}

func TestModelEmptyCircuit(t *testing.T) {
	s, err := circuit.Circuit{NumQubits: 2}.Schedule(12)
	require.NoError(t, err)
	m := press(t, New(s), tea.WindowSizeMsg{Width: 120, Height: 30}, runes("l"))
	assert.Equal(t, -1, m.step)
	assert.Contains(t, m.View(), "Initial state |00⟩")
}

func TestRenderHistogramTruncates(t *testing.T) {
	d := measure.Distribution{}
	for i := range 20 {
		d[measure.Bitstring(i, 5)] = 1.0 / 20
	}
	out := renderHistogram(d, 4)
	assert.Contains(t, out, "… 16 more outcomes, 80.00% total")
	assert.Contains(t, renderHistogram(nil, 4), "no outcomes")
}

func TestRenderHistogramKeepsMostLikely(t *testing.T) {
	d := measure.Distribution{"000": 0.1, "001": 0.1, "010": 0.1, "110": 0.3, "111": 0.4}
	out := renderHistogram(d, 2)
	assert.Contains(t, out, "|110⟩")
	assert.Contains(t, out, "|111⟩")
	assert.NotContains(t, out, "|000⟩")
	assert.Contains(t, out, "… 3 more outcomes, 30.00% total")
	assert.Less(t, strings.Index(out, "|110⟩"), strings.Index(out, "|111⟩"))
}

func TestRenderReport(t *testing.T) {
	s := bell(t)
	seed := int64(3)
	res, err := simulator.New().Run(context.Background(), simulator.Request{
		Circuit:      s.Circuit(),
		Shots:        100,
		Seed:         &seed,
		IncludeState: true,
		IncludeBloch: true,
	})
	require.NoError(t, err)

	out := RenderReport(s, res, 100)
	assert.Contains(t, out, "Simulation · bell")
	assert.Contains(t, out, "2 qubits, 2 gates, depth 2")
	assert.Contains(t, out, "|00⟩")
	assert.Contains(t, out, "50.00%")
	assert.Contains(t, out, "Samples (100 shots, seed 3)")
	assert.Contains(t, out, "q[1]  P(1)=0.500")
	assert.Contains(t, out, "|11⟩  +0.707107+0.000000i")
	assert.NotContains(t, out, "|01⟩")
}
