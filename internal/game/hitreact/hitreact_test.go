package hitreact_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/ability"
	"github.com/cory-johannsen/skirmish/internal/game/anim"
	"github.com/cory-johannsen/skirmish/internal/game/clock"
	"github.com/cory-johannsen/skirmish/internal/game/condition"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/hitreact"
	"github.com/cory-johannsen/skirmish/internal/game/stats"
	"github.com/cory-johannsen/skirmish/internal/testutil"
)

type dummy struct {
	loc, fwd    geom.Vec3
	dead        bool
	comp        *ability.Component
	tl          *anim.Timeline
	flags       *condition.Set
	dilation    float64
	dilateUntil time.Duration
	lockedUntil time.Duration
	impulses    []geom.Vec3
}

func (d *dummy) ID() string                         { return "dummy" }
func (d *dummy) Location() geom.Vec3                { return d.loc }
func (d *dummy) Forward() geom.Vec3                 { return d.fwd }
func (d *dummy) IsDead() bool                       { return d.dead }
func (d *dummy) Abilities() *ability.Component      { return d.comp }
func (d *dummy) Animator() anim.Player              { return d.tl }
func (d *dummy) Flags() *condition.Set              { return d.flags }
func (d *dummy) Stats() *stats.Block                { return stats.NewBlock(stats.Base{MaxHP: 10}, 0) }
func (d *dummy) Motion() ability.Motion             { return ability.Motion{Forward: d.fwd} }
func (d *dummy) SetOrientation(ability.Orientation) {}
func (d *dummy) SetTimeDilation(f float64, until time.Duration) {
	d.dilation, d.dilateUntil = f, until
}
func (d *dummy) LockMovement(until time.Duration) { d.lockedUntil = until }
func (d *dummy) ApplyImpulse(v geom.Vec3)         { d.impulses = append(d.impulses, v) }

func setup(t *testing.T) (*hitreact.Resolver, *dummy, *clock.Manual) {
	clk := clock.NewManual(10 * time.Second)
	lib := anim.NewLibrary()
	for id, d := range map[string]time.Duration{
		"react_front": 400 * time.Millisecond, "react_back": 400 * time.Millisecond,
		"react_left": 400 * time.Millisecond, "react_right": 400 * time.Millisecond,
		"react_knockdown": 1500 * time.Millisecond,
	} {
		require.NoError(t, lib.Register(&anim.Clip{ID: id, Duration: d}))
	}
	d := &dummy{fwd: geom.V(1, 0), tl: anim.NewTimeline(lib, zap.NewNop()), flags: condition.NewSet(nil)}
	comp, err := ability.NewComponent(d, ability.NewCatalog(), nil, ability.Deps{
		Clock:  clk,
		Roller: dice.NewLoggedRoller(&testutil.FixedSource{}, zap.NewNop()),
		Tuning: ability.DefaultTuning(),
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)
	d.comp = comp
	return hitreact.NewResolver(hitreact.DefaultTuning(), clk, zap.NewNop()), d, clk
}

func TestComputeQuadrant(t *testing.T) {
	self, fwd := geom.V(0, 0), geom.V(1, 0)
	assert.Equal(t, hitreact.Front, hitreact.ComputeQuadrant(self, fwd, geom.V(10, 0)))
	assert.Equal(t, hitreact.Back, hitreact.ComputeQuadrant(self, fwd, geom.V(-10, 1)))
	assert.Equal(t, hitreact.Left, hitreact.ComputeQuadrant(self, fwd, geom.V(1, 10)))
	assert.Equal(t, hitreact.Right, hitreact.ComputeQuadrant(self, fwd, geom.V(1, -10)))
	assert.Equal(t, hitreact.Front, hitreact.ComputeQuadrant(self, fwd, geom.V(5, 5)), "diagonal ties go to front/back")
	assert.Equal(t, hitreact.Front, hitreact.ComputeQuadrant(self, fwd, self), "degenerate")
	assert.Equal(t, "left", hitreact.Left.String())
}

func TestComputeKnockbackDirection_Fallbacks(t *testing.T) {
	self := geom.V(0, 0)
	fwd := geom.V(1, 0)
	inst := &hitreact.Instigator{Location: geom.V(0, 5), Forward: geom.V(0, -1)}

	assert.Equal(t, geom.V(-1, 0), hitreact.ComputeKnockbackDirection(self, fwd, geom.V(3, 0), inst), "impact → self")
	assert.Equal(t, geom.V(0, -1), hitreact.ComputeKnockbackDirection(self, fwd, self, inst), "instigator → self")
	inst.Location = self
	assert.Equal(t, geom.V(0, 1), hitreact.ComputeKnockbackDirection(self, fwd, self, inst), "instigator reverse forward")
	inst.Forward = geom.Vec3{}
	assert.Equal(t, geom.V(-1, 0), hitreact.ComputeKnockbackDirection(self, fwd, self, inst), "self reverse forward")
	assert.Equal(t, geom.V(-1, 0), hitreact.ComputeKnockbackDirection(self, fwd, self, nil))
	assert.Equal(t, geom.Forward.Neg(), hitreact.ComputeKnockbackDirection(self, geom.Vec3{}, self, nil))
}

func TestOnGotHit_NormalReaction(t *testing.T) {
	r, d, clk := setup(t)
	now := clk.Now()
	tn := hitreact.DefaultTuning()
	re := r.OnGotHit(d, hitreact.Hit{
		Damage:      20,
		Instigator:  &hitreact.Instigator{Location: geom.V(0, 100)},
		ImpactPoint: geom.V(0, 50),
		Tag:         hitreact.TagNormal,
	})
	require.True(t, re.Played)
	assert.Equal(t, hitreact.Left, re.Quadrant)
	assert.Equal(t, "react_left", re.Clip)
	assert.Equal(t, "react_left", d.tl.Current())
	assert.Equal(t, tn.HitStopDilation, d.dilation)
	assert.Equal(t, now+tn.HitStopDuration, d.dilateUntil)
	require.Len(t, d.impulses, 1)
	assert.True(t, d.impulses[0].Equal(geom.V(0, -tn.KnockbackImpulse), 1e-9))
	assert.Equal(t, now+tn.MovementPause, d.lockedUntil)
	assert.Equal(t, now+tn.AttackBlock, d.comp.State().NextAttackAllowed())
	assert.True(t, d.flags.Has(condition.HitReact))
	assert.Equal(t, now+tn.Cooldown, d.comp.State().HitReactCooldownEnd())
}

func TestOnGotHit_Knockdown(t *testing.T) {
	r, d, clk := setup(t)
	now := clk.Now()
	re := r.OnGotHit(d, hitreact.Hit{Damage: 5, ImpactPoint: geom.V(10, 0), Tag: hitreact.TagKnockdown})
	require.True(t, re.Knockdown)
	assert.Equal(t, "react_knockdown", d.tl.Current())
	assert.Equal(t, now+1500*time.Millisecond, d.lockedUntil)
	assert.Equal(t, now+1500*time.Millisecond+hitreact.DefaultTuning().KnockdownRecovery, d.comp.State().NextAttackAllowed())
	assert.Empty(t, d.impulses, "knockdown has no impulse")
	at, ok := d.flags.ExpiresAt(condition.HitReact)
	require.True(t, ok)
	assert.Equal(t, now+1500*time.Millisecond, at)
}

func TestOnGotHit_NoOps(t *testing.T) {
	t.Run("zero damage", func(t *testing.T) {
		r, d, _ := setup(t)
		assert.False(t, r.OnGotHit(d, hitreact.Hit{Damage: 0}).Played)
		assert.Empty(t, d.tl.Current())
	})
	t.Run("dead", func(t *testing.T) {
		r, d, _ := setup(t)
		d.dead = true
		assert.False(t, r.OnGotHit(d, hitreact.Hit{Damage: 10}).Played)
	})
	t.Run("cooldown", func(t *testing.T) {
		r, d, clk := setup(t)
		require.True(t, r.OnGotHit(d, hitreact.Hit{Damage: 10}).Played)
		clk.Advance(100 * time.Millisecond)
		assert.False(t, r.OnGotHit(d, hitreact.Hit{Damage: 10}).Played)
		clk.Advance(hitreact.DefaultTuning().Cooldown)
		assert.True(t, r.OnGotHit(d, hitreact.Hit{Damage: 10}).Played)
	})
	t.Run("suppressed", func(t *testing.T) {
		r, d, _ := setup(t)
		d.comp.State().SetCanHitReact(false)
		assert.False(t, r.OnGotHit(d, hitreact.Hit{Damage: 10}).Played)
		assert.Zero(t, d.dilation, "no hit-stop when suppressed")
	})
	t.Run("no ability component", func(t *testing.T) {
		r, d, _ := setup(t)
		d.comp = nil
		assert.False(t, r.OnGotHit(d, hitreact.Hit{Damage: 10}).Played)
	})
}

func TestPropertyKnockbackDirection_AlwaysUnit(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		coord := rapid.Float64Range(-50, 50)
		self := geom.V(coord.Draw(rt, "sx"), coord.Draw(rt, "sy"))
		fwd := geom.V(coord.Draw(rt, "fx"), coord.Draw(rt, "fy"))
		impact := geom.V(coord.Draw(rt, "ix"), coord.Draw(rt, "iy"))
		var inst *hitreact.Instigator
		if rapid.Bool().Draw(rt, "has_inst") {
			inst = &hitreact.Instigator{
				Location: geom.V(coord.Draw(rt, "lx"), coord.Draw(rt, "ly")),
				Forward:  geom.V(coord.Draw(rt, "ffx"), coord.Draw(rt, "ffy")),
			}
		}
		dir := hitreact.ComputeKnockbackDirection(self, fwd, impact, inst)
		assert.InDelta(rt, 1.0, dir.Size(), 1e-9)
		assert.Zero(rt, dir.Z)
	})
}
