package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/clock"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/sim"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// host is everything a subcommand needs to drive a world.
type host struct {
	cfg     config.Config
	logger  *zap.Logger
	world   *sim.World
	scripts *scripting.Manager
}

func (h *host) Close() {
	h.scripts.Close()
	_ = h.logger.Sync()
}

// loadConfig reads --config when given, else defaults plus environment.
// A --seed flag on cmd overrides simulation.seed.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	var (
		cfg config.Config
		err error
	)
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromViper(config.Defaults())
	}
	if err != nil {
		return config.Config{}, err
	}
	if f := cmd.Flags().Lookup("seed"); f != nil && f.Changed {
		seed, _ := cmd.Flags().GetUint64("seed")
		cfg.Simulation.Seed = seed
	}
	return cfg, nil
}

// newHost builds the logger, dice, scripts, content and world described by
// cfg, in that order.
func newHost(cfg config.Config) (*host, error) {
	base, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	clk := clock.NewManual(0)
	logger := observability.WithSimTime(base, clk)

	var src dice.Source = dice.NewCryptoSource()
	if cfg.Simulation.Seed != 0 {
		src = dice.NewSeededSource(cfg.Simulation.Seed)
	}
	roller := dice.NewLoggedRoller(src, logger)

	content, err := sim.LoadContent(cfg.Content)
	if err != nil {
		return nil, err
	}
	scripts := scripting.NewManager(roller, logger)
	if err := scripts.Load(cfg.Content.Scripts, cfg.Scripting.InstructionLimit); err != nil {
		return nil, fmt.Errorf("loading scripts: %w", err)
	}
	world, err := sim.NewWorld(sim.Options{
		Config:   cfg.Simulation,
		Damage:   cfg.Damage,
		Combo:    cfg.Combo,
		HitReact: cfg.HitReaction,
		Content:  content,
		Roller:   roller,
		Scripts:  scripts,
		Clock:    clk,
		Logger:   logger,
	})
	if err != nil {
		scripts.Close()
		return nil, err
	}
	logger.Info("content loaded",
		zap.Int("templates", len(content.Templates)),
		zap.Int("ai_profiles", content.Profiles.Len()),
		zap.Int("spawn_points", len(content.Spawns)),
		zap.Bool("authoritative", cfg.Simulation.Authoritative),
		zap.Uint64("seed", cfg.Simulation.Seed),
	)
	return &host{cfg: cfg, logger: logger, world: world, scripts: scripts}, nil
}
