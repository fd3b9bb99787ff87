package sim

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Runner steps a World in real time from a single goroutine. Wrap Run in a
// server.ContextService to manage it with a server.Lifecycle.
//
// Invariant: the World is only touched by the goroutine inside Run.
type Runner struct {
	world    *World
	interval time.Duration
	report   time.Duration
	logger   *zap.Logger
}

// NewRunner returns a Runner that steps world once per interval and logs a
// status line every report (0 disables reporting).
//
// Precondition: world and logger must be non-nil; interval must be > 0.
func NewRunner(world *World, interval, report time.Duration, logger *zap.Logger) *Runner {
	if world == nil || logger == nil {
		panic("sim.NewRunner: world and logger must not be nil")
	}
	if interval <= 0 {
		panic("sim.NewRunner: interval must be > 0")
	}
	return &Runner{world: world, interval: interval, report: report, logger: logger}
}

// Run steps the world on a ticker until ctx is cancelled.
//
// Postcondition: returns nil once ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	var sinceReport time.Duration
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.world.Step(r.interval)
			sinceReport += r.interval
			if r.report > 0 && sinceReport >= r.report {
				sinceReport = 0
				r.logStatus()
			}
		}
	}
}

func (r *Runner) logStatus() {
	t := r.world.Tally()
	alive := 0
	for _, e := range r.world.Entities() {
		if !e.IsDead() {
			alive++
		}
	}
	r.logger.Info("simulation status",
		zap.Duration("sim_time", r.world.Now()),
		zap.Int("alive", alive),
		zap.Int("hits", t.Hits),
		zap.Int("deaths", t.Deaths),
		zap.Int("pending_respawns", r.world.Respawns().Pending()),
	)
}
