package main

import (
	"github.com/spf13/cobra"

	"qsim/internal/tui"
)

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [FILE]",
		Short: "Step through a circuit in the terminal",
		Long: `Open a read-only terminal viewer for a circuit.

Step through the circuit column by column and watch the state evolve:
probabilities, amplitudes, and the Bloch vector of the selected qubit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			example, _ := cmd.Flags().GetString("example")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			sched, err := loadSchedule(args, example, cfg.Simulator.MaxQubits)
			if err != nil {
				return err
			}
			return tui.Run(sched)
		},
	}

	cmd.Flags().String("example", "", "View a built-in example instead of a file")

	return cmd
}
