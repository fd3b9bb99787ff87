package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/skirmish/internal/game/sim"
	"github.com/cory-johannsen/skirmish/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the encounter in real time until interrupted",
	Long: `Populates every encounter group and steps the world once per tick on
the wall clock, logging a status line every serve.report_interval. Stops on
SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		h, err := newHost(cfg)
		if err != nil {
			return err
		}
		defer h.Close()

		h.world.Populate()
		runner := sim.NewRunner(h.world, cfg.Simulation.Step(), cfg.Serve.ReportInterval, h.logger)

		lifecycle := server.NewLifecycle(h.logger)
		lifecycle.Add("simulation", &server.ContextService{Run: runner.Run})
		return lifecycle.Run(context.Background())
	},
}

func init() {
	serveCmd.Flags().Uint64("seed", 0, "deterministic dice seed (0 draws from crypto/rand)")
	rootCmd.AddCommand(serveCmd)
}
