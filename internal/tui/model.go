// Package tui renders circuits and simulation results in the terminal: a
// read-only step-through viewer and the report printed by `qsim run`.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"qsim/internal/circuit"
	"qsim/internal/gates"
	"qsim/internal/measure"
	"qsim/internal/statevec"
)

// panel selects what the right-hand side shows.
type panel int

const (
	panelState panel = iota
	panelAmplitudes
	panelQASM
)

func (p panel) title() string {
	switch p {
	case panelAmplitudes:
		return "Amplitudes"
	case panelQASM:
		return "OpenQASM"
	default:
		return "Measurement Probabilities"
	}
}

// keyMap defines the viewer's key bindings.
type keyMap struct {
	Prev  key.Binding
	Next  key.Binding
	Up    key.Binding
	Down  key.Binding
	First key.Binding
	Last  key.Binding
	Panel key.Binding
	Help  key.Binding
	Quit  key.Binding
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Up, k.Down, k.Panel, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.First, k.Last},
		{k.Up, k.Down},
		{k.Panel, k.Help, k.Quit},
	}
}

var defaultKeys = keyMap{
	Prev:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "step back")),
	Next:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "step forward")),
	Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "qubit up")),
	Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "qubit down")),
	First: key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "initial state")),
	Last:  key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "final state")),
	Panel: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch panel")),
	Help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

// Model is the step-through viewer. Step -1 is the initial |0…0⟩ state;
// step i shows the state after every gate up to the i-th occupied column.
type Model struct {
	sched *circuit.Schedule
	cols  []int
	qasm  string

	step  int
	qubit int
	state *statevec.State
	err   error

	panel  panel
	keys   keyMap
	help   help.Model
	width  int
	height int
}

// New returns a viewer positioned on the final state.
func New(s *circuit.Schedule) Model {
	m := Model{
		sched: s,
		cols:  s.Columns(),
		qasm:  s.QASM(),
		keys:  defaultKeys,
		help:  help.New(),
	}
	m.step = len(m.cols) - 1
	m.evolve()
	return m
}

// Run starts the viewer and blocks until the user quits.
func Run(s *circuit.Schedule, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	_, err := tea.NewProgram(New(s), opts...).Run()
	return err
}

// evolve recomputes the state for the current step.
func (m *Model) evolve() {
	col := -1
	if m.step >= 0 {
		col = m.cols[m.step]
	}
	m.state, m.err = statevec.EvolveThrough(m.sched, col)
}

func (m *Model) setStep(step int) {
	step = max(min(step, len(m.cols)-1), -1)
	if step == m.step && m.state != nil {
		return
	}
	m.step = step
	m.evolve()
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Prev):
			m.setStep(m.step - 1)
		case key.Matches(msg, m.keys.Next):
			m.setStep(m.step + 1)
		case key.Matches(msg, m.keys.First):
			m.setStep(-1)
		case key.Matches(msg, m.keys.Last):
			m.setStep(len(m.cols) - 1)
		case key.Matches(msg, m.keys.Up):
			if m.qubit > 0 {
				m.qubit--
			}
		case key.Matches(msg, m.keys.Down):
			if m.qubit < m.sched.NumQubits()-1 {
				m.qubit++
			}
		case key.Matches(msg, m.keys.Panel):
			m.panel = (m.panel + 1) % 3
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}
	return m, nil
}

// ──────────────────────────── View ────────────────────────────

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sideW := max(m.width/3, 44)
	circuitW := max(m.width-sideW-4, cellW+labelVisualW)
	helpView := m.help.View(m.keys)
	controlsH := lipgloss.Height(helpView)
	bodyH := max(m.height-controlsH-4, 6)

	circuitPanel := circuitStyle.Width(circuitW).Height(bodyH).Render(m.renderCircuit(circuitW - 4))
	sidePanel := statePanelStyle.Width(sideW).Height(bodyH).Render(m.renderSide())
	controls := controlsStyle.Width(m.width - 4).Render(helpView)

	top := lipgloss.JoinHorizontal(lipgloss.Top, circuitPanel, sidePanel)
	return lipgloss.JoinVertical(lipgloss.Left, top, controls)
}

func (m Model) renderCircuit(width int) string {
	var sb strings.Builder

	title := "Quantum Circuit"
	if name := m.sched.Name(); name != "" {
		title += " · " + name
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")

	sb.WriteString(gridView{sched: m.sched, cols: m.cols, cursor: m.step, qubit: m.qubit}.render(width))
	sb.WriteString("\n\n")

	if m.step < 0 {
		sb.WriteString(activeGateStyle.Render("  Initial state |" + strings.Repeat("0", m.sched.NumQubits()) + "⟩"))
	} else {
		fmt.Fprintf(&sb, "  Step %d of %d (column %d)", m.step+1, len(m.cols), m.cols[m.step])
		if g, ok := m.sched.At(m.cols[m.step], m.qubit); ok {
			sb.WriteString("  │  " + activeGateStyle.Render(describeGate(g)))
		}
	}
	fmt.Fprintf(&sb, "\n  %d qubits, %d gates, depth %d", m.sched.NumQubits(), m.sched.Len(), m.sched.Depth())
	return sb.String()
}

func (m Model) renderSide() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.panel.title()))
	sb.WriteString(dimStyle.Render("  (tab)"))
	sb.WriteString("\n\n")

	if m.err != nil {
		sb.WriteString(errorStyle.Render(m.err.Error()))
		return sb.String()
	}

	switch m.panel {
	case panelState:
		sb.WriteString(renderHistogram(measure.Probabilities(m.state), maxOutcomes))
		sb.WriteString("\n\n")
		sb.WriteString(renderQubit(m.state, m.qubit))
	case panelAmplitudes:
		sb.WriteString(renderAmplitudes(m.state, maxOutcomes))
	case panelQASM:
		sb.WriteString(valueStyle.Render(m.qasm))
	}
	return sb.String()
}

// describeGate is the status-line text for a placed gate.
func describeGate(g circuit.Gate) string {
	spec, _ := gates.Lookup(g.Kind)
	qs := make([]string, len(g.Targets))
	for i, q := range g.Targets {
		qs[i] = fmt.Sprintf("q[%d]", q)
	}
	s := spec.Name + " on " + strings.Join(qs, ", ")
	if spec.Parametric {
		s += " θ=" + circuit.FormatAngle(g.Angle())
	}
	return s
}
