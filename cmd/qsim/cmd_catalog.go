package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"qsim/internal/circuit"
	"qsim/internal/examples"
	"qsim/internal/gates"
)

type gateEntry struct {
	Type        gates.Kind     `json:"type"`
	Name        string         `json:"name"`
	Category    gates.Category `json:"category"`
	Qubits      int            `json:"qubits"`
	Parametric  bool           `json:"parametric"`
	QASM        string         `json:"qasm"`
	Description string         `json:"description"`
}

func newGatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gates",
		Short: "List the supported gates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			if jsonOut {
				specs := gates.All()
				entries := make([]gateEntry, len(specs))
				for i, s := range specs {
					entries[i] = gateEntry{
						Type:        s.Kind,
						Name:        s.Name,
						Category:    s.Category,
						Qubits:      s.Arity,
						Parametric:  s.Parametric,
						QASM:        circuit.QASMName(s.Kind),
						Description: s.Description,
					}
				}
				return writeJSON(out, entries)
			}

			t := listTable("TYPE", "NAME", "CATEGORY", "QUBITS", "DESCRIPTION")
			for _, c := range gates.Categories() {
				for _, s := range gates.ByCategory(c) {
					name := s.Name
					if s.Parametric {
						name += " (θ)"
					}
					t.Row(string(s.Kind), name, string(c), strconv.Itoa(s.Arity), s.Description)
				}
			}
			_, err := fmt.Fprintln(out, t.String())
			return err
		},
	}
}

type exampleEntry struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Difficulty  examples.Difficulty `json:"difficulty"`
	NumQubits   int                 `json:"numQubits"`
	GateCount   int                 `json:"gateCount"`
	Description string              `json:"description"`
}

func newExamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "examples [ID]",
		Short: "List built-in example circuits, or show one",
		Long: `List the built-in example circuits. With an ID, print that example's
circuit as YAML (or JSON with --json), ready to edit and pass to 'qsim run'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				p, ok := examples.Get(args[0])
				if !ok {
					return fmt.Errorf("unknown example %q (available: %v)", args[0], examples.IDs())
				}
				format := circuit.FormatYAML
				if jsonOut {
					format = circuit.FormatJSON
				}
				data, err := circuit.Encode(p.Circuit, format)
				if err != nil {
					return fmt.Errorf("encoding example: %w", err)
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}

			presets := examples.List()
			if jsonOut {
				entries := make([]exampleEntry, len(presets))
				for i, p := range presets {
					entries[i] = exampleEntry{
						ID:          p.ID,
						Name:        p.Name,
						Difficulty:  p.Difficulty,
						NumQubits:   p.Circuit.NumQubits,
						GateCount:   len(p.Circuit.Gates),
						Description: p.Description,
					}
				}
				return writeJSON(out, entries)
			}

			t := listTable("ID", "NAME", "LEVEL", "QUBITS", "DESCRIPTION")
			for _, p := range presets {
				t.Row(p.ID, p.Name, string(p.Difficulty), strconv.Itoa(p.Circuit.NumQubits), p.Description)
			}
			_, err := fmt.Fprintln(out, t.String())
			return err
		},
	}
}

// listTable is the borderless column layout used by the listing commands.
func listTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderHeader(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().PaddingRight(2)
		}).
		Headers(headers...)
}
