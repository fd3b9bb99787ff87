// Package hitreact resolves how a defender reacts to a landed hit: impact
// quadrant, knockback heading, hit-stop, reaction clip, and the movement and
// attack locks that gate the ability state machine.
package hitreact

import (
	"fmt"
	"math"
	"time"

	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

// Reaction tags carried by strikes.
const (
	TagNormal    = "hit.normal"
	TagKnockdown = "hit.knockdown"
)

// Quadrant is the side of the defender an impact arrived from.
type Quadrant int

const (
	Front Quadrant = iota
	Back
	Left
	Right
)

// String returns the quadrant label, also used as the reaction clip suffix.
func (q Quadrant) String() string {
	switch q {
	case Front:
		return "front"
	case Back:
		return "back"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// ComputeQuadrant classifies impactPoint relative to the defender. When the
// forward and side components are equal the impact counts as Front or Back.
// Positive cross (Z up) is Left. A degenerate direction is Front.
func ComputeQuadrant(selfLocation, selfForward, impactPoint geom.Vec3) Quadrant {
	dir := impactPoint.Sub(selfLocation).Normal2D()
	if dir.IsNearlyZero() {
		return Front
	}
	fwd := selfForward.Normal2D()
	if fwd.IsNearlyZero() {
		fwd = geom.Forward
	}
	dot := fwd.Dot(dir)
	cross := fwd.X*dir.Y - fwd.Y*dir.X
	if math.Abs(dot) >= math.Abs(cross) {
		if dot >= 0 {
			return Front
		}
		return Back
	}
	if cross > 0 {
		return Left
	}
	return Right
}

// Instigator is the attacker geometry known to the defender.
type Instigator struct {
	ID       string
	Location geom.Vec3
	Forward  geom.Vec3
}

// ComputeKnockbackDirection returns the unit ground-plane push direction.
// Candidates in order: impact → self, instigator → self, instigator reverse
// forward, self reverse forward; each is used only when the previous one is
// near zero. inst may be nil.
//
// Postcondition: The result is a unit vector.
func ComputeKnockbackDirection(selfLocation, selfForward, impactPoint geom.Vec3, inst *Instigator) geom.Vec3 {
	candidates := []geom.Vec3{selfLocation.Sub(impactPoint)}
	if inst != nil {
		candidates = append(candidates, selfLocation.Sub(inst.Location), inst.Forward.Neg())
	}
	candidates = append(candidates, selfForward.Neg())
	for _, c := range candidates {
		if n := c.Normal2D(); !n.IsNearlyZero() {
			return n
		}
	}
	return geom.Forward.Neg()
}

// Tuning holds reaction timings and strengths.
type Tuning struct {
	HitStopDuration   time.Duration `mapstructure:"hit_stop_duration"`
	HitStopDilation   float64       `mapstructure:"hit_stop_dilation"`
	Cooldown          time.Duration `mapstructure:"cooldown"`
	MovementPause     time.Duration `mapstructure:"movement_pause"`
	AttackBlock       time.Duration `mapstructure:"attack_block"`
	KnockbackImpulse  float64       `mapstructure:"knockback_impulse"`
	KnockdownRecovery time.Duration `mapstructure:"knockdown_recovery"`
	ClipPrefix        string        `mapstructure:"clip_prefix"`
	KnockdownClip     string        `mapstructure:"knockdown_clip"`
}

// DefaultTuning returns the stock reaction constants.
func DefaultTuning() Tuning {
	return Tuning{
		HitStopDuration:   80 * time.Millisecond,
		HitStopDilation:   0.05,
		Cooldown:          400 * time.Millisecond,
		MovementPause:     250 * time.Millisecond,
		AttackBlock:       350 * time.Millisecond,
		KnockbackImpulse:  350,
		KnockdownRecovery: 500 * time.Millisecond,
		ClipPrefix:        "react_",
		KnockdownClip:     "react_knockdown",
	}
}

// Validate checks the reaction constants.
func (t Tuning) Validate() error {
	if t.HitStopDilation <= 0 || t.HitStopDilation > 1 {
		return fmt.Errorf("hit_reaction: hit_stop_dilation must be in (0, 1], got %v", t.HitStopDilation)
	}
	if t.HitStopDuration < 0 || t.Cooldown < 0 || t.MovementPause < 0 || t.AttackBlock < 0 || t.KnockdownRecovery < 0 {
		return fmt.Errorf("hit_reaction: durations must be >= 0")
	}
	if t.KnockbackImpulse < 0 {
		return fmt.Errorf("hit_reaction: knockback_impulse must be >= 0")
	}
	if t.KnockdownClip == "" {
		return fmt.Errorf("hit_reaction: knockdown_clip must not be empty")
	}
	return nil
}
