// Package ai implements the enemy decision layer: a periodic aggro sensor
// with radius hysteresis and hold timers, and a periodic tactical actuator
// that picks backstep, strafe, hold, chase or wander destinations.
//
// Routines write into a per-entity Blackboard; navigation consumes it.
package ai

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Style selects how an enemy acquires targets.
type Style int

const (
	// Opportunistic acquires any hostile entering the enter radius.
	Opportunistic Style = iota
	// ReactiveOnly acquires only while a hit-aggro flag is live.
	ReactiveOnly
)

// String returns the content name of the style.
func (s Style) String() string {
	switch s {
	case Opportunistic:
		return "opportunistic"
	case ReactiveOnly:
		return "reactive_only"
	default:
		return "unknown"
	}
}

// ParseStyle maps a content name to a Style.
func ParseStyle(name string) (Style, error) {
	switch name {
	case "opportunistic", "":
		return Opportunistic, nil
	case "reactive_only":
		return ReactiveOnly, nil
	default:
		return Opportunistic, fmt.Errorf("unknown aggro style %q", name)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Style) UnmarshalYAML(n *yaml.Node) error {
	var name string
	if err := n.Decode(&name); err != nil {
		return err
	}
	v, err := ParseStyle(name)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// AggroParams tune the target acquisition sensor.
type AggroParams struct {
	EnterRadius    float64       `yaml:"enter_radius"`
	ExitRadius     float64       `yaml:"exit_radius"`
	MinHoldOnEnter time.Duration `yaml:"min_hold_on_enter"`
	MinHoldOnExit  time.Duration `yaml:"min_hold_on_exit"`
	HitAggroHold   time.Duration `yaml:"hit_aggro_hold"`
	LeashRadius    float64       `yaml:"leash_radius"`
}

// TacticalParams tune positioning around a live target. Angles are degrees.
type TacticalParams struct {
	TooClose         float64 `yaml:"too_close"`
	BackstepDistance float64 `yaml:"backstep_distance"`
	MaxRange         float64 `yaml:"max_range"`
	StrafeChance     float64 `yaml:"strafe_chance"`
	StrafeMinAngle   float64 `yaml:"strafe_min_angle"`
	StrafeMaxAngle   float64 `yaml:"strafe_max_angle"`
	ProjectExtent    float64 `yaml:"project_extent"`
}

// WanderParams tune idle wandering.
type WanderParams struct {
	Radius            float64       `yaml:"radius"`
	Jitter            float64       `yaml:"jitter"`
	MaxAttempts       int           `yaml:"max_attempts"`
	KeepThreshold     float64       `yaml:"keep_threshold"`
	MinUpdateInterval time.Duration `yaml:"min_update_interval"`
	// UseMemory centres wandering on the blackboard memory vector when set.
	UseMemory bool `yaml:"use_memory"`
}

// Profile is one named AI behaviour loaded from content.
type Profile struct {
	ID          string  `yaml:"id"`
	Description string  `yaml:"description"`
	Style       Style   `yaml:"style"`
	AttackRange float64 `yaml:"attack_range"`
	// SkillChance is the probability an attack opening is spent on a ready
	// skill instead of the combo.
	SkillChance float64        `yaml:"skill_chance"`
	Aggro       AggroParams    `yaml:"aggro"`
	Tactical    TacticalParams `yaml:"tactical"`
	Wander      WanderParams   `yaml:"wander"`
}

// DefaultProfile returns the stock opportunistic melee profile.
func DefaultProfile() *Profile {
	return &Profile{
		ID:          "default",
		Style:       Opportunistic,
		AttackRange: 200,
		SkillChance: 0.35,
		Aggro: AggroParams{
			EnterRadius:    1000,
			ExitRadius:     1400,
			MinHoldOnEnter: 500 * time.Millisecond,
			MinHoldOnExit:  time.Second,
			HitAggroHold:   5 * time.Second,
			LeashRadius:    3000,
		},
		Tactical: TacticalParams{
			TooClose:         150,
			BackstepDistance: 200,
			MaxRange:         450,
			StrafeChance:     0.4,
			StrafeMinAngle:   30,
			StrafeMaxAngle:   60,
			ProjectExtent:    100,
		},
		Wander: WanderParams{
			Radius:            600,
			Jitter:            200,
			MaxAttempts:       8,
			KeepThreshold:     100,
			MinUpdateInterval: 3 * time.Second,
		},
	}
}

// Validate checks the profile and aggregates every problem into one error.
//
// Postcondition: nil return guarantees ExitRadius > EnterRadius > 0 and
// LeashRadius > 0, a non-empty ID, and sane tactical and wander bands.
func (p *Profile) Validate() error {
	var errs []string
	if p.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if p.AttackRange <= 0 {
		errs = append(errs, "attack_range must be > 0")
	}
	if p.SkillChance < 0 || p.SkillChance > 1 {
		errs = append(errs, "skill_chance must be in [0, 1]")
	}
	a := p.Aggro
	if a.EnterRadius <= 0 {
		errs = append(errs, "aggro.enter_radius must be > 0")
	}
	if a.ExitRadius <= a.EnterRadius {
		errs = append(errs, fmt.Sprintf("aggro.exit_radius (%v) must exceed enter_radius (%v)", a.ExitRadius, a.EnterRadius))
	}
	if a.LeashRadius <= 0 {
		errs = append(errs, "aggro.leash_radius must be > 0")
	}
	if a.MinHoldOnEnter < 0 || a.MinHoldOnExit < 0 || a.HitAggroHold < 0 {
		errs = append(errs, "aggro hold durations must be >= 0")
	}
	if p.Style == ReactiveOnly && a.HitAggroHold == 0 {
		errs = append(errs, "aggro.hit_aggro_hold must be > 0 for reactive_only")
	}
	t := p.Tactical
	if t.TooClose < 0 || t.BackstepDistance < 0 || t.MaxRange < t.TooClose {
		errs = append(errs, "tactical: need 0 <= too_close <= max_range and backstep_distance >= 0")
	}
	if t.StrafeChance < 0 || t.StrafeChance > 1 {
		errs = append(errs, "tactical.strafe_chance must be in [0, 1]")
	}
	if t.StrafeMinAngle < 0 || t.StrafeMaxAngle < t.StrafeMinAngle || t.StrafeMaxAngle > 180 {
		errs = append(errs, "tactical: need 0 <= strafe_min_angle <= strafe_max_angle <= 180")
	}
	if t.ProjectExtent <= 0 {
		errs = append(errs, "tactical.project_extent must be > 0")
	}
	w := p.Wander
	if w.Radius <= 0 || w.Jitter < 0 || w.Jitter > w.Radius {
		errs = append(errs, "wander: need radius > 0 and 0 <= jitter <= radius")
	}
	if w.MaxAttempts < 1 {
		errs = append(errs, "wander.max_attempts must be >= 1")
	}
	if len(errs) > 0 {
		return fmt.Errorf("ai profile %q: %s", p.ID, strings.Join(errs, "; "))
	}
	return nil
}

// profileFile wraps the YAML top-level key.
type profileFile struct {
	Profile *Profile `yaml:"profile"`
}

// LoadProfiles reads all *.yaml files from dir and returns parsed Profiles.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns error if any YAML file fails to parse or validate.
func LoadProfiles(dir string) ([]*Profile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ai.LoadProfiles: reading %q: %w", dir, err)
	}
	var profiles []*Profile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("ai.LoadProfiles: reading %s: %w", e.Name(), err)
		}
		var f profileFile
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("ai.LoadProfiles: parsing %s: %w", e.Name(), err)
		}
		if f.Profile == nil {
			return nil, fmt.Errorf("ai.LoadProfiles: %s missing top-level 'profile' key", e.Name())
		}
		if err := f.Profile.Validate(); err != nil {
			return nil, err
		}
		profiles = append(profiles, f.Profile)
	}
	return profiles, nil
}
