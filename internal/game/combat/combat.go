// Package combat implements the damage-resolution pipeline: raw stat roll,
// critical check, defense mitigation, and guard mitigation.
package combat

import (
	"errors"
	"fmt"
	"strings"
)

// Kind selects which offensive and defensive stats a hit uses.
type Kind int

const (
	Physical Kind = iota
	Magical
)

// String returns a human-readable damage kind label.
func (k Kind) String() string {
	switch k {
	case Physical:
		return "physical"
	case Magical:
		return "magical"
	default:
		return "unknown"
	}
}

// ParseKind maps "physical" or "magical" to a Kind. The empty string is physical.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "", "physical":
		return Physical, nil
	case "magical", "magic":
		return Magical, nil
	default:
		return Physical, fmt.Errorf("combat: unknown damage kind %q", s)
	}
}

// Tuning holds the resolver's balance constants.
type Tuning struct {
	// AttackSpread is the ± fraction around base power sampled on each hit.
	AttackSpread float64 `mapstructure:"attack_spread"`
	// DefenseConstant is K in factor = K / (K + defense).
	DefenseConstant float64 `mapstructure:"defense_constant"`
	// MinDamageRatio floors mitigated damage at raw × ratio.
	MinDamageRatio float64 `mapstructure:"min_damage_ratio"`
	// GuardMultiplier scales damage blocked by a frontal guard.
	GuardMultiplier float64 `mapstructure:"guard_multiplier"`
}

// DefaultTuning returns the stock balance constants.
func DefaultTuning() Tuning {
	return Tuning{
		AttackSpread:    0.2,
		DefenseConstant: 100,
		MinDamageRatio:  0.1,
		GuardMultiplier: 0.5,
	}
}

// Validate checks every tuning constant is in range.
//
// Postcondition: Returns nil iff all constants are usable, else one error naming each violation.
func (t Tuning) Validate() error {
	var errs []string
	if t.AttackSpread < 0 || t.AttackSpread >= 1 {
		errs = append(errs, fmt.Sprintf("attack_spread must be in [0, 1), got %v", t.AttackSpread))
	}
	if t.DefenseConstant <= 0 {
		errs = append(errs, fmt.Sprintf("defense_constant must be > 0, got %v", t.DefenseConstant))
	}
	if t.MinDamageRatio < 0 || t.MinDamageRatio > 1 {
		errs = append(errs, fmt.Sprintf("min_damage_ratio must be in [0, 1], got %v", t.MinDamageRatio))
	}
	if t.GuardMultiplier < 0 || t.GuardMultiplier > 1 {
		errs = append(errs, fmt.Sprintf("guard_multiplier must be in [0, 1], got %v", t.GuardMultiplier))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
