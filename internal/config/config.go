// Package config provides Viper-based configuration loading for the skirmish
// simulator.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/skirmish/internal/game/ability"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/hitreact"
	"github.com/cory-johannsen/skirmish/internal/game/sim"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ScriptingConfig holds Lua sandbox settings.
type ScriptingConfig struct {
	// InstructionLimit caps the VM instructions of one hook call.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// ServeConfig holds settings for the real-time host.
type ServeConfig struct {
	// ReportInterval is how often a status line is logged; 0 disables it.
	ReportInterval time.Duration `mapstructure:"report_interval"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging     LoggingConfig   `mapstructure:"logging"`
	Simulation  sim.Config      `mapstructure:"simulation"`
	Damage      combat.Tuning   `mapstructure:"damage"`
	Combo       ability.Tuning  `mapstructure:"combo"`
	HitReaction hitreact.Tuning `mapstructure:"hit_reaction"`
	Content     sim.ContentDirs `mapstructure:"content"`
	Scripting   ScriptingConfig `mapstructure:"scripting"`
	Serve       ServeConfig     `mapstructure:"serve"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.Simulation.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.Damage.Validate(); err != nil {
		errs = append(errs, "damage: "+err.Error())
	}
	if err := c.Combo.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.HitReaction.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}
	if c.Serve.ReportInterval < 0 {
		errs = append(errs, "serve.report_interval must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateContent(d sim.ContentDirs) error {
	var errs []string
	for key, dir := range map[string]string{
		"conditions": d.Conditions,
		"clips":      d.Clips,
		"abilities":  d.Abilities,
		"npcs":       d.NPCs,
		"ai":         d.AI,
		"scripts":    d.Scripts,
		"encounters": d.Encounters,
	} {
		if dir == "" {
			errs = append(errs, fmt.Sprintf("content.%s must not be empty", key))
		}
	}
	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with SKIRMISH_ prefix
	v.SetEnvPrefix("SKIRMISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// Defaults returns a Viper instance holding only the built-in defaults and
// the SKIRMISH_ environment overrides, for running without a config file.
func Defaults() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("SKIRMISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	s := sim.DefaultConfig()
	v.SetDefault("simulation.tick_rate", s.TickRate)
	v.SetDefault("simulation.authoritative", s.Authoritative)
	v.SetDefault("simulation.seed", s.Seed)
	v.SetDefault("simulation.corpse_linger", s.CorpseLinger)
	v.SetDefault("simulation.ai.aggro", s.AI.Aggro)
	v.SetDefault("simulation.ai.tactical", s.AI.Tactical)
	v.SetDefault("simulation.arena.width", s.Arena.Width)
	v.SetDefault("simulation.arena.height", s.Arena.Height)
	v.SetDefault("simulation.arena.cell_size", s.Arena.CellSize)
	v.SetDefault("simulation.arena.agent_radius", s.Arena.AgentRadius)
	obstacles := make([]map[string]any, 0, len(s.Arena.Obstacles))
	for _, o := range s.Arena.Obstacles {
		obstacles = append(obstacles, map[string]any{"x": o.X, "y": o.Y, "width": o.Width, "height": o.Height})
	}
	v.SetDefault("simulation.arena.obstacles", obstacles)
	v.SetDefault("simulation.movement.backpedal_scale", s.Movement.BackpedalScale)
	v.SetDefault("simulation.movement.strafe_scale", s.Movement.StrafeScale)
	v.SetDefault("simulation.movement.guard_scale", s.Movement.GuardScale)
	v.SetDefault("simulation.movement.attack_scale", s.Movement.AttackScale)
	v.SetDefault("simulation.movement.impulse_decay", s.Movement.ImpulseDecay)

	d := combat.DefaultTuning()
	v.SetDefault("damage.attack_spread", d.AttackSpread)
	v.SetDefault("damage.defense_constant", d.DefenseConstant)
	v.SetDefault("damage.min_damage_ratio", d.MinDamageRatio)
	v.SetDefault("damage.guard_multiplier", d.GuardMultiplier)

	c := ability.DefaultTuning()
	v.SetDefault("combo.blend_out", c.BlendOut)
	v.SetDefault("combo.cancel_blend_out", c.CancelBlendOut)
	v.SetDefault("combo.attack_cooldown", c.AttackCooldown)
	v.SetDefault("combo.windup_min", c.WindupMin)
	v.SetDefault("combo.windup_max", c.WindupMax)

	h := hitreact.DefaultTuning()
	v.SetDefault("hit_reaction.hit_stop_duration", h.HitStopDuration)
	v.SetDefault("hit_reaction.hit_stop_dilation", h.HitStopDilation)
	v.SetDefault("hit_reaction.cooldown", h.Cooldown)
	v.SetDefault("hit_reaction.movement_pause", h.MovementPause)
	v.SetDefault("hit_reaction.attack_block", h.AttackBlock)
	v.SetDefault("hit_reaction.knockback_impulse", h.KnockbackImpulse)
	v.SetDefault("hit_reaction.knockdown_recovery", h.KnockdownRecovery)
	v.SetDefault("hit_reaction.clip_prefix", h.ClipPrefix)
	v.SetDefault("hit_reaction.knockdown_clip", h.KnockdownClip)

	dirs := sim.DefaultContentDirs("content")
	v.SetDefault("content.conditions", dirs.Conditions)
	v.SetDefault("content.clips", dirs.Clips)
	v.SetDefault("content.abilities", dirs.Abilities)
	v.SetDefault("content.npcs", dirs.NPCs)
	v.SetDefault("content.ai", dirs.AI)
	v.SetDefault("content.scripts", dirs.Scripts)
	v.SetDefault("content.encounters", dirs.Encounters)

	v.SetDefault("scripting.instruction_limit", scripting.DefaultInstructionLimit)

	v.SetDefault("serve.report_interval", "10s")
}
