package combat

import (
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/stats"
)

// GuardStance is the defender geometry the guard check needs.
type GuardStance struct {
	Guarding bool
	Location geom.Vec3
	Forward  geom.Vec3
}

// Request bundles everything needed to resolve one hit.
// A nil Attacker or Defender stands for a missing stat block.
type Request struct {
	Attacker         *stats.Block
	AttackerLocation geom.Vec3
	Defender         *stats.Block
	Stance           GuardStance
	PowerScale       float64
	Kind             Kind
}

// Result holds every stage of a resolved hit.
//
// Postcondition: Final <= AfterDefense <= Raw, all >= 0.
type Result struct {
	Raw          float64
	Critical     bool
	AfterDefense float64
	Guarded      bool
	Final        float64
}

// Resolver computes damage. It never mutates stat blocks; callers apply
// Result.Final through the effect collaborator.
type Resolver struct {
	tuning Tuning
	roller *dice.Roller
	logger *zap.Logger
}

// NewResolver constructs a Resolver.
//
// Precondition: tuning must pass Validate; roller and logger must be non-nil.
func NewResolver(tuning Tuning, roller *dice.Roller, logger *zap.Logger) *Resolver {
	if roller == nil || logger == nil {
		panic("combat.NewResolver: roller and logger must not be nil")
	}
	return &Resolver{tuning: tuning, roller: roller, logger: logger}
}

// Tuning returns the constants this resolver was built with.
func (r *Resolver) Tuning() Tuning { return r.tuning }

// ComputeRaw rolls the attacker's pre-mitigation damage.
//
// Postcondition: Returns (0, false) if attacker is nil or powerScale <= 0.
// Otherwise damage ∈ [min×ps, max×ps] × (CriticalDamage if critical else 1)
// when the power range is valid, or base×ps(×CriticalDamage) when it is not.
func (r *Resolver) ComputeRaw(attacker *stats.Block, powerScale float64, kind Kind) (float64, bool) {
	if attacker == nil || powerScale <= 0 {
		return 0, false
	}
	var base float64
	var band stats.Range
	switch kind {
	case Magical:
		base, band = attacker.Get(stats.AttrMagicPower), attacker.MagicRange()
	default:
		base, band = attacker.Get(stats.AttrAttackPower), attacker.AttackRange()
	}
	raw := base
	if band.Valid() {
		raw = r.roller.Uniform("damage."+kind.String(), band.Min, band.Max)
	}
	damage := raw * powerScale
	critical := r.roller.Chance("critical", attacker.Get(stats.AttrCriticalRate))
	if critical {
		damage *= attacker.Get(stats.AttrCriticalDamage)
	}
	return damage, critical
}

// ApplyDefense mitigates raw damage by the defender's defense or magic
// resist using diminishing returns.
//
// Postcondition: result <= raw; result >= raw × MinDamageRatio; result is
// monotonically non-increasing in defense. Returns raw unchanged when the
// defender is nil or its rating is <= 0.
func (r *Resolver) ApplyDefense(defender *stats.Block, raw float64, kind Kind) float64 {
	if defender == nil || raw <= 0 {
		return math.Max(raw, 0)
	}
	rating := defender.Get(stats.AttrDefense)
	if kind == Magical {
		rating = defender.Get(stats.AttrMagicResist)
	}
	if rating <= 0 {
		return raw
	}
	k := r.tuning.DefenseConstant
	mitigated := raw * k / (k + rating)
	return math.Max(mitigated, raw*r.tuning.MinDamageRatio)
}

// ApplyGuardMitigation scales damage by GuardMultiplier when the defender is
// guarding and the attacker stands in the defender's forward half-plane
// (dot >= 0). Rear attacks are never blocked. An attacker exactly on the
// defender counts as frontal.
func (r *Resolver) ApplyGuardMitigation(stance GuardStance, damage float64, attackerLocation geom.Vec3) float64 {
	if !IsGuardBlocked(stance, attackerLocation) {
		return damage
	}
	return damage * r.tuning.GuardMultiplier
}

// IsGuardBlocked reports whether a guard in stance covers an attack from
// attackerLocation.
func IsGuardBlocked(stance GuardStance, attackerLocation geom.Vec3) bool {
	if !stance.Guarding {
		return false
	}
	toAttacker := attackerLocation.Sub(stance.Location).Normal2D()
	return stance.Forward.Normal2D().Dot(toAttacker) >= 0
}

// Resolve runs the full pipeline for one hit.
//
// Postcondition: Returns a zero Result if the attacker is missing or the
// power scale is not positive.
func (r *Resolver) Resolve(req Request) Result {
	raw, crit := r.ComputeRaw(req.Attacker, req.PowerScale, req.Kind)
	if raw <= 0 {
		return Result{}
	}
	afterDefense := r.ApplyDefense(req.Defender, raw, req.Kind)
	guarded := IsGuardBlocked(req.Stance, req.AttackerLocation)
	final := afterDefense
	if guarded {
		final = afterDefense * r.tuning.GuardMultiplier
	}
	res := Result{
		Raw:          raw,
		Critical:     crit,
		AfterDefense: afterDefense,
		Guarded:      guarded,
		Final:        final,
	}
	r.logger.Debug("damage resolved",
		zap.String("kind", req.Kind.String()),
		zap.Float64("power_scale", req.PowerScale),
		zap.Float64("raw", res.Raw),
		zap.Bool("critical", res.Critical),
		zap.Float64("after_defense", res.AfterDefense),
		zap.Bool("guarded", res.Guarded),
		zap.Float64("final", res.Final),
	)
	return res
}
