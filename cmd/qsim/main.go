package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"qsim/internal/circuit"
	"qsim/internal/config"
	"qsim/internal/examples"
	"qsim/internal/resource"
	"qsim/internal/simulator"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "qsim",
		Short: "Quantum circuit state-vector simulator",
		Long: `qsim simulates small quantum circuits exactly.

Circuits are read from JSON, YAML or OpenQASM 2.0 files, or taken from the
built-in examples. qsim prints outcome probabilities and sampled counts,
steps through a circuit in the terminal, exports it to other frameworks,
and serves the simulator over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.qsim/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: error, warn, info, debug, trace")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newServeCmd(),
		newViewCmd(),
		newExportCmd(),
		newGatesCmd(),
		newExamplesCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

// loadConfig resolves the effective config for a command, applying the
// --log-level override on top of file and environment settings.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newSimulator builds a simulator and its resource budget from cfg.
func newSimulator(cfg *config.Config, logger *slog.Logger) (*simulator.Simulator, *resource.Controller) {
	rc := resource.NewController(resource.Config{
		MemoryLimitBytes: cfg.Simulator.MemoryLimitBytes,
		MaxConcurrent:    cfg.Simulator.MaxConcurrent,
	})
	sim := simulator.New(
		simulator.WithMaxQubits(cfg.Simulator.MaxQubits),
		simulator.WithMaxShots(cfg.Simulator.MaxShots),
		simulator.WithResources(rc),
		simulator.WithLogger(logger),
	)
	return sim, rc
}

// loadCircuits reads circuit files, or the named example when example is
// set. Exactly one of the two sources must be given.
func loadCircuits(paths []string, example string) ([]circuit.Circuit, error) {
	switch {
	case example != "" && len(paths) > 0:
		return nil, fmt.Errorf("use either circuit files or --example, not both")
	case example != "":
		p, ok := examples.Get(example)
		if !ok {
			return nil, fmt.Errorf("unknown example %q (see 'qsim examples')", example)
		}
		return []circuit.Circuit{p.Circuit}, nil
	case len(paths) == 0:
		return nil, fmt.Errorf("no circuit given: pass a file or --example ID")
	}

	circuits := make([]circuit.Circuit, 0, len(paths))
	for _, path := range paths {
		c, err := circuit.Load(path)
		if err != nil {
			return nil, err
		}
		circuits = append(circuits, c)
	}
	return circuits, nil
}

// loadSchedule loads a single circuit and validates it against maxQubits.
func loadSchedule(paths []string, example string, maxQubits int) (*circuit.Schedule, error) {
	if len(paths) > 1 {
		return nil, fmt.Errorf("expected one circuit file, got %d", len(paths))
	}
	circuits, err := loadCircuits(paths, example)
	if err != nil {
		return nil, err
	}
	return circuits[0].Schedule(maxQubits)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
