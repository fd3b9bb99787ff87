package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/ability"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/hitreact"
	"github.com/cory-johannsen/skirmish/internal/game/sim"
)

func validConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Simulation:  sim.DefaultConfig(),
		Damage:      combat.DefaultTuning(),
		Combo:       ability.DefaultTuning(),
		HitReaction: hitreact.DefaultTuning(),
		Content:     sim.DefaultContentDirs("content"),
		Scripting:   ScriptingConfig{InstructionLimit: 100_000},
		Serve:       ServeConfig{ReportInterval: 10 * time.Second},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestDefaultsMatchPackageDefaults(t *testing.T) {
	cfg, err := LoadFromViper(Defaults())
	require.NoError(t, err)
	assert.Equal(t, validConfig(), cfg)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
logging:
  level: debug
  format: console
simulation:
  tick_rate: 60
  seed: 7
  ai:
    aggro: 100ms
  arena:
    width: 2000
    height: 1500
    obstacles:
      - {x: 900, y: 600, width: 200, height: 300}
damage:
  guard_multiplier: 0.25
combo:
  windup_min: 100ms
  windup_max: 200ms
hit_reaction:
  knockback_impulse: 500
content:
  clips: /srv/skirmish/clips
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 60, cfg.Simulation.TickRate)
	assert.Equal(t, uint64(7), cfg.Simulation.Seed)
	assert.Equal(t, 100*time.Millisecond, cfg.Simulation.AI.Aggro)
	assert.Equal(t, 750*time.Millisecond, cfg.Simulation.AI.Tactical, "unset keys keep their defaults")
	assert.Equal(t, 2000.0, cfg.Simulation.Arena.Width)
	require.Len(t, cfg.Simulation.Arena.Obstacles, 1)
	assert.Equal(t, 300.0, cfg.Simulation.Arena.Obstacles[0].Height)
	assert.Equal(t, 0.25, cfg.Damage.GuardMultiplier)
	assert.Equal(t, 200*time.Millisecond, cfg.Combo.WindupMax)
	assert.Equal(t, 500.0, cfg.HitReaction.KnockbackImpulse)
	assert.Equal(t, "/srv/skirmish/clips", cfg.Content.Clips)
	assert.Equal(t, filepath.Join("content", "npcs"), cfg.Content.NPCs)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: info\n"), 0644))
	t.Setenv("SKIRMISH_SIMULATION_TICK_RATE", "20")
	t.Setenv("SKIRMISH_LOGGING_FORMAT", "console")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Simulation.TickRate)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  tick_rate: 0\n"), 0644))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tick_rate")
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := validConfig()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.Validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateAggregatesEveryViolation(t *testing.T) {
	cfg := validConfig()
	cfg.Simulation.TickRate = 0
	cfg.Damage.DefenseConstant = 0
	cfg.Combo.WindupMax = time.Millisecond
	cfg.HitReaction.HitStopDilation = 0
	cfg.Content.Scripts = ""
	cfg.Scripting.InstructionLimit = -1

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"tick_rate", "defense_constant", "windup_min", "hit_stop_dilation", "content.scripts", "instruction_limit"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateServeReportInterval(t *testing.T) {
	cfg := validConfig()
	cfg.Serve.ReportInterval = 0
	assert.NoError(t, cfg.Validate(), "zero disables reporting")
	cfg.Serve.ReportInterval = -time.Second
	assert.Error(t, cfg.Validate())
}

// Property-based tests

func TestPropertyValidTickRate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rate := rapid.IntRange(1, 1000).Draw(t, "tick_rate")
		cfg := validConfig()
		cfg.Simulation.TickRate = rate
		if err := cfg.Validate(); err != nil {
			t.Fatalf("valid tick rate %d rejected: %v", rate, err)
		}
	})
}

func TestPropertyInvalidTickRate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rate := rapid.OneOf(
			rapid.IntRange(-1000, 0),
			rapid.IntRange(1001, 100000),
		).Draw(t, "tick_rate")
		cfg := validConfig()
		cfg.Simulation.TickRate = rate
		if err := cfg.Validate(); err == nil {
			t.Fatalf("invalid tick rate %d accepted", rate)
		}
	})
}

func TestPropertyWindupOrdering(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lo := time.Duration(rapid.Int64Range(0, int64(time.Second)).Draw(t, "windup_min"))
		hi := time.Duration(rapid.Int64Range(0, int64(time.Second)).Draw(t, "windup_max"))
		cfg := validConfig()
		cfg.Combo.WindupMin, cfg.Combo.WindupMax = lo, hi
		err := cfg.Validate()
		if (hi >= lo) != (err == nil) {
			t.Fatalf("windup [%s, %s] validation = %v", lo, hi, err)
		}
	})
}

func TestLoadDevConfig(t *testing.T) {
	cfg, err := Load("../../configs/dev.yaml")
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, uint64(1337), cfg.Simulation.Seed)
	assert.Equal(t, sim.DefaultConfig().Arena, cfg.Simulation.Arena)
	assert.Equal(t, "react_knockdown", cfg.HitReaction.KnockdownClip, "unset keys keep their defaults")
}
