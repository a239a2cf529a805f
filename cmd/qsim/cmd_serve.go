package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"qsim/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulator over HTTP",
		Long: `Start the HTTP API.

Endpoints:
  GET  /, /health      liveness
  POST /simulate       run a circuit
  GET  /gates          gate catalog
  GET  /examples       built-in examples (and /examples/{id})
  GET  /metrics        Prometheus metrics

The server shuts down gracefully on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Server.Addr = addr
			}

			logger := cfg.NewLogger(cmd.ErrOrStderr())
			sim, rc := newSimulator(cfg, logger)
			srv := server.New(sim, cfg.Server,
				server.WithLogger(logger),
				server.WithDefaultShots(cfg.Simulator.DefaultShots),
				server.WithResources(rc),
				server.WithVersion(version),
			)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			notifySignals(sigCh)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case sig := <-sigCh:
					logger.Info("received signal", "signal", sig.String())
					cancel()
				case <-ctx.Done():
				}
			}()

			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (overrides config, e.g. :8000)")

	return cmd
}
