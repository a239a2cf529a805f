package tui

import "github.com/charmbracelet/lipgloss"

// Grid geometry, in terminal columns.
const (
	cellW        = 11            // one circuit step
	labelVisualW = 7             // "q[n]" label plus lead-in wire
	gateNameW    = 5             // text inside a gate box
	gateBoxW     = gateNameW + 2 // box including ┤ and ├

	barW        = 30 // histogram bar at probability 1
	maxOutcomes = 16 // histogram rows before the "… more" line
)

// Palette (Tokyo Night).
const (
	colorBlue    = lipgloss.Color("#7aa2f7")
	colorPurple  = lipgloss.Color("#bb9af7")
	colorGreen   = lipgloss.Color("#9ece6a")
	colorOrange  = lipgloss.Color("#ff9e64")
	colorYellow  = lipgloss.Color("#e0af68")
	colorCyan    = lipgloss.Color("#7dcfff")
	colorTeal    = lipgloss.Color("#73daca")
	colorComment = lipgloss.Color("#565f89")
	colorFg      = lipgloss.Color("#c0caf5")
	colorRed     = lipgloss.Color("#f7768e")
)

func boxed(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border)
}

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

var (
	circuitStyle    = boxed(colorBlue).Padding(1)
	statePanelStyle = boxed(colorPurple).Padding(1)
	controlsStyle   = boxed(colorGreen).Padding(0, 1)

	titleStyle         = fg(colorOrange).Bold(true)
	cursorBoxStyle     = fg(colorOrange).Bold(true)
	selectedQubitStyle = fg(colorOrange).Bold(true)
	activeGateStyle    = fg(colorYellow)
	qubitLabelStyle    = fg(colorCyan)
	gateStyle          = fg(colorTeal).Bold(true)
	dimStyle           = fg(colorComment)
	barStyle           = fg(colorGreen)
	valueStyle         = fg(colorFg)
	errorStyle         = fg(colorRed).Bold(true)
)
