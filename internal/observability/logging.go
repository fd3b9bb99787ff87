// Package observability provides logging utilities for the simulator.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/clock"
)

// SimTimeKey is the field every entry carries under WithSimTime.
const SimTimeKey = "sim_time"

// NewLogger creates a structured logger from the given logging configuration.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
		// Hit and roll logs arrive in bursts every tick.
		zapCfg.Sampling = nil
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// WithSimTime returns a logger that stamps every entry with clk's current
// simulation time under SimTimeKey.
//
// Precondition: logger and clk must be non-nil.
func WithSimTime(logger *zap.Logger, clk clock.Clock) *zap.Logger {
	if logger == nil || clk == nil {
		panic("observability.WithSimTime: logger and clock must not be nil")
	}
	return logger.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return &simTimeCore{Core: c, clk: clk}
	}))
}

type simTimeCore struct {
	zapcore.Core
	clk clock.Clock
}

func (c *simTimeCore) With(fields []zapcore.Field) zapcore.Core {
	return &simTimeCore{Core: c.Core.With(fields), clk: c.clk}
}

func (c *simTimeCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *simTimeCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	stamped := make([]zapcore.Field, 0, len(fields)+1)
	stamped = append(stamped, zap.Duration(SimTimeKey, c.clk.Now()))
	return c.Core.Write(ent, append(stamped, fields...))
}
