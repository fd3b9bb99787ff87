package sim

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/nav"
)

// Movement scales an entity's template move speed by stance and heading.
type Movement struct {
	// BackpedalScale applies when moving against the facing.
	BackpedalScale float64 `mapstructure:"backpedal_scale"`
	// StrafeScale applies when moving across the facing.
	StrafeScale float64 `mapstructure:"strafe_scale"`
	GuardScale  float64 `mapstructure:"guard_scale"`
	AttackScale float64 `mapstructure:"attack_scale"`
	// ImpulseDecay is the exponential knockback decay rate per second.
	ImpulseDecay float64 `mapstructure:"impulse_decay"`
}

// Config holds the simulation host settings.
type Config struct {
	// TickRate is the fixed step frequency in Hz.
	TickRate      int  `mapstructure:"tick_rate"`
	Authoritative bool `mapstructure:"authoritative"`
	// Seed selects a deterministic dice source; 0 uses the crypto source.
	Seed uint64 `mapstructure:"seed"`
	// CorpseLinger is how long a dead combatant stays in the world.
	CorpseLinger time.Duration `mapstructure:"corpse_linger"`
	AI           ai.Cadence    `mapstructure:"ai"`
	Arena        nav.Config    `mapstructure:"arena"`
	Movement     Movement      `mapstructure:"movement"`
}

// DefaultConfig returns a 30 Hz authoritative host on the default arena.
func DefaultConfig() Config {
	return Config{
		TickRate:      30,
		Authoritative: true,
		CorpseLinger:  3 * time.Second,
		AI:            ai.DefaultCadence(),
		Arena:         nav.DefaultConfig(),
		Movement: Movement{
			BackpedalScale: 0.6,
			StrafeScale:    0.8,
			GuardScale:     0.5,
			AttackScale:    0.25,
			ImpulseDecay:   8,
		},
	}
}

// Step returns the fixed step duration.
//
// Precondition: TickRate > 0.
func (c Config) Step() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// Validate checks the host settings and aggregates every problem.
func (c Config) Validate() error {
	var errs []string
	if c.TickRate < 1 || c.TickRate > 1000 {
		errs = append(errs, fmt.Sprintf("simulation.tick_rate must be 1-1000, got %d", c.TickRate))
	}
	if c.CorpseLinger < 0 {
		errs = append(errs, "simulation.corpse_linger must be >= 0")
	}
	if err := c.AI.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.Arena.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	m := c.Movement
	for name, v := range map[string]float64{
		"backpedal_scale": m.BackpedalScale,
		"strafe_scale":    m.StrafeScale,
		"guard_scale":     m.GuardScale,
		"attack_scale":    m.AttackScale,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Sprintf("simulation.movement.%s must be in [0, 1], got %v", name, v))
		}
	}
	if m.ImpulseDecay < 0 {
		errs = append(errs, "simulation.movement.impulse_decay must be >= 0")
	}
	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
