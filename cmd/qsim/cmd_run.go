package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"qsim/internal/circuit"
	"qsim/internal/simulator"
	"qsim/internal/tui"
)

// reportWidth bounds the circuit diagram in `qsim run` output.
const reportWidth = 100

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [FILE...]",
		Short: "Simulate circuits and print their outcomes",
		Long: `Simulate one or more circuits and print the outcome probabilities and
sampled counts.

Files are read as JSON, YAML or OpenQASM 2.0 by extension. Several files
run in parallel within the configured concurrency limit.

Examples:
  qsim run bell.json
  qsim run --example ghz-state --shots 500 --seed 7
  qsim run a.qasm b.yaml --json
  qsim run --example rotation --state --bloch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			example, _ := cmd.Flags().GetString("example")
			includeState, _ := cmd.Flags().GetBool("state")
			includeBloch, _ := cmd.Flags().GetBool("bloch")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			circuits, err := loadCircuits(args, example)
			if err != nil {
				return err
			}

			shots := cfg.Simulator.DefaultShots
			if cmd.Flags().Changed("shots") {
				shots, _ = cmd.Flags().GetInt("shots")
			}
			var seed *int64
			if cmd.Flags().Changed("seed") {
				v, _ := cmd.Flags().GetInt64("seed")
				seed = &v
			}

			reqs := make([]simulator.Request, len(circuits))
			for i, c := range circuits {
				reqs[i] = simulator.Request{
					Circuit:      c,
					Shots:        shots,
					IncludeState: includeState,
					IncludeBloch: includeBloch,
					Seed:         seed,
				}
			}

			sim, _ := newSimulator(cfg, cfg.NewLogger(cmd.ErrOrStderr()))

			var results []*simulator.Result
			if len(reqs) == 1 {
				res, err := sim.Run(cmd.Context(), reqs[0])
				if err != nil {
					return fmt.Errorf("simulating %s: %w", displayName(circuits[0]), err)
				}
				results = []*simulator.Result{res}
			} else {
				results, err = sim.RunBatch(cmd.Context(), reqs)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				if len(results) == 1 {
					return writeJSON(out, results[0])
				}
				return writeJSON(out, results)
			}

			for i, res := range results {
				// Run has already validated the circuit.
				sched, err := circuits[i].Schedule(sim.MaxQubits())
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprint(out, tui.RenderReport(sched, res, reportWidth))
			}
			return nil
		},
	}

	cmd.Flags().String("example", "", "Run a built-in example instead of a file")
	cmd.Flags().Int("shots", 0, "Number of measurement samples (default from config; 0 skips sampling)")
	cmd.Flags().Int64("seed", 0, "Seed for reproducible sampling (default random)")
	cmd.Flags().Bool("state", false, "Include the state vector amplitudes")
	cmd.Flags().Bool("bloch", false, "Include per-qubit Bloch vectors and marginals")

	return cmd
}

func displayName(c circuit.Circuit) string {
	if c.Name == "" {
		return "circuit"
	}
	return c.Name
}
