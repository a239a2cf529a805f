package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"qsim/internal/circuit"
	"qsim/internal/codegen"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [FILE]",
		Short: "Export a circuit as source code for another framework",
		Long: `Export a circuit as OpenQASM 2.0, Qiskit, PennyLane, Cirq, Braket or Q#
source, or re-encode it as JSON or YAML.

Examples:
  qsim export bell.json --to qiskit
  qsim export --example ghz-state --to qasm -o ghz.qasm
  qsim export circuit.qasm --to yaml
  qsim export sparse.json --compact --to cirq -o sparse   # writes sparse.py`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			example, _ := cmd.Flags().GetString("example")
			to, _ := cmd.Flags().GetString("to")
			output, _ := cmd.Flags().GetString("output")
			compact, _ := cmd.Flags().GetBool("compact")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			sched, err := loadSchedule(args, example, cfg.Simulator.MaxQubits)
			if err != nil {
				return err
			}
			if compact {
				if sched, err = circuit.Compact(sched.Circuit()).Schedule(cfg.Simulator.MaxQubits); err != nil {
					return err
				}
			}

			var src, ext string
			switch f := circuit.Format(strings.ToLower(to)); f {
			case circuit.FormatJSON, circuit.FormatYAML:
				data, err := circuit.Encode(sched.Circuit(), f)
				if err != nil {
					return fmt.Errorf("encoding circuit: %w", err)
				}
				src, ext = string(data), "."+string(f)
			default:
				framework, err := codegen.ParseFramework(to)
				if err != nil {
					return err
				}
				if src, err = codegen.Generate(sched, framework); err != nil {
					return err
				}
				ext = framework.Extension()
			}

			if output == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), src)
				return err
			}
			if filepath.Ext(output) == "" {
				output += ext
			}
			if err := os.WriteFile(output, []byte(src), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().String("example", "", "Export a built-in example instead of a file")
	cmd.Flags().String("to", string(codegen.QASM), "Target: qasm, qiskit, pennylane, cirq, braket, qsharp, json, yaml")
	cmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout (extension added when missing)")
	cmd.Flags().Bool("compact", false, "Move every gate to its earliest column before exporting")

	return cmd
}
