package hitreact

import (
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/ability"
	"github.com/cory-johannsen/skirmish/internal/game/anim"
	"github.com/cory-johannsen/skirmish/internal/game/clock"
	"github.com/cory-johannsen/skirmish/internal/game/condition"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

// Target is the defender side of a hit reaction. The defender performs every
// mutation on itself through these methods.
type Target interface {
	ID() string
	Location() geom.Vec3
	Forward() geom.Vec3
	IsDead() bool
	// Abilities returns nil when the entity has no ability component.
	Abilities() *ability.Component
	Animator() anim.Player
	Flags() *condition.Set
	SetTimeDilation(factor float64, until time.Duration)
	LockMovement(until time.Duration)
	ApplyImpulse(v geom.Vec3)
}

// Hit is one landed strike as the defender sees it.
type Hit struct {
	Damage      float64
	Instigator  *Instigator
	ImpactPoint geom.Vec3
	Tag         string
}

// Reaction reports what OnGotHit did.
type Reaction struct {
	Played              bool
	Knockdown           bool
	Quadrant            Quadrant
	Clip                string
	Knockback           geom.Vec3
	MovementLockedUntil time.Duration
	AttacksBlockedUntil time.Duration
}

// Resolver applies hit reactions.
type Resolver struct {
	tuning Tuning
	clock  clock.Clock
	logger *zap.Logger
}

// NewResolver creates a Resolver.
//
// Precondition: clk and logger must be non-nil.
func NewResolver(tuning Tuning, clk clock.Clock, logger *zap.Logger) *Resolver {
	if clk == nil || logger == nil {
		panic("hitreact.NewResolver: clock and logger must not be nil")
	}
	return &Resolver{tuning: tuning, clock: clk, logger: logger}
}

// OnGotHit reacts target to hit.
//
// Postcondition: Returns a zero Reaction and mutates nothing if target is
// dead, damage <= 0, the reaction cooldown is active, reactions are
// suppressed, or the target has no ability component.
func (r *Resolver) OnGotHit(target Target, hit Hit) Reaction {
	if target == nil || target.IsDead() || hit.Damage <= 0 {
		return Reaction{}
	}
	comp := target.Abilities()
	if comp == nil {
		return Reaction{}
	}
	now := r.clock.Now()
	st := comp.State()
	if !st.HitReactReady(now) || !st.CanHitReact() {
		r.logger.Debug("hit reaction suppressed",
			zap.String("entity", target.ID()),
			zap.Duration("cooldown_end", st.HitReactCooldownEnd()),
			zap.Bool("can_hit_react", st.CanHitReact()),
		)
		return Reaction{}
	}

	target.SetTimeDilation(r.tuning.HitStopDilation, now+r.tuning.HitStopDuration)

	var re Reaction
	re.Played = true
	re.Quadrant = ComputeQuadrant(target.Location(), target.Forward(), hit.ImpactPoint)
	player := target.Animator()
	if hit.Tag == TagKnockdown {
		re.Knockdown = true
		re.Clip = r.tuning.KnockdownClip
		d := r.play(player, re.Clip)
		re.MovementLockedUntil = now + d
		re.AttacksBlockedUntil = now + d + r.tuning.KnockdownRecovery
	} else {
		re.Clip = r.tuning.ClipPrefix + re.Quadrant.String()
		r.play(player, re.Clip)
		if r.tuning.KnockbackImpulse > 0 {
			dir := ComputeKnockbackDirection(target.Location(), target.Forward(), hit.ImpactPoint, hit.Instigator)
			re.Knockback = dir.Scale(r.tuning.KnockbackImpulse)
			target.ApplyImpulse(re.Knockback)
		}
		re.MovementLockedUntil = now + r.tuning.MovementPause
		re.AttacksBlockedUntil = now + r.tuning.AttackBlock
	}
	target.LockMovement(re.MovementLockedUntil)
	st.BlockAttacksUntil(re.AttacksBlockedUntil)
	if re.MovementLockedUntil > now {
		_ = target.Flags().AddUntil(condition.HitReact, re.MovementLockedUntil)
	}
	st.SetHitReactCooldown(now + r.tuning.Cooldown)

	r.logger.Debug("hit reaction",
		zap.String("entity", target.ID()),
		zap.Stringer("quadrant", re.Quadrant),
		zap.Bool("knockdown", re.Knockdown),
		zap.String("clip", re.Clip),
		zap.Duration("movement_locked_until", re.MovementLockedUntil),
		zap.Duration("attacks_blocked_until", re.AttacksBlockedUntil),
	)
	return re
}

// play starts clip and returns its duration, or 0 when it cannot play.
func (r *Resolver) play(player anim.Player, clip string) time.Duration {
	if player == nil {
		return 0
	}
	d, ok := player.Play(clip, nil)
	if !ok {
		r.logger.Debug("reaction clip unavailable", zap.String("clip", clip))
		return 0
	}
	return d
}
