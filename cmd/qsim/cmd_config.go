package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration qsim would run with: defaults, overlaid by the
config file (~/.qsim/config.yaml or --config) and QSIM_* environment
variables.

Environment variables:
  QSIM_MAX_QUBITS, QSIM_MAX_SHOTS, QSIM_DEFAULT_SHOTS, QSIM_MAX_CONCURRENT,
  QSIM_MEMORY_LIMIT_BYTES, QSIM_ADDR, QSIM_ALLOWED_ORIGINS, QSIM_RATE_LIMIT,
  QSIM_BURST, QSIM_REQUEST_TIMEOUT, QSIM_LOG_LEVEL, QSIM_LOG_FORMAT`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, cfg)
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = out.Write(data)
			return err
		},
	}
}
