package ability_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/ability"
	"github.com/cory-johannsen/skirmish/internal/game/condition"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/stats"
)

func TestBucket_EightSectors(t *testing.T) {
	fwd := geom.V(1, 0)
	cases := []struct {
		dir  geom.Vec3
		want ability.Direction
	}{
		{geom.V(1, 0), ability.DirForward},
		{geom.V(1, -1), ability.DirForwardRight},
		{geom.V(0, -1), ability.DirRight},
		{geom.V(-1, -1), ability.DirBackRight},
		{geom.V(-1, 0), ability.DirBack},
		{geom.V(-1, 1), ability.DirBackLeft},
		{geom.V(0, 1), ability.DirLeft},
		{geom.V(1, 1), ability.DirForwardLeft},
		{geom.V(1, 0.3), ability.DirForward},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ability.Bucket(fwd, tc.dir), "dir %+v", tc.dir)
	}
	assert.Equal(t, "bl", ability.DirBackLeft.String())
}

func TestDodgeVector_Fallbacks(t *testing.T) {
	assert.Equal(t, geom.V(0, 1), ability.DodgeVector(ability.Motion{Input: geom.V(0, 3), LastInput: geom.V(1, 0)}))
	assert.Equal(t, geom.V(-1, 0), ability.DodgeVector(ability.Motion{LastInput: geom.V(-2, 0), Velocity: geom.V(0, 1)}))
	assert.Equal(t, geom.V(0, -1), ability.DodgeVector(ability.Motion{Velocity: geom.V(0, -5)}))
	assert.Equal(t, geom.V(1, 0), ability.DodgeVector(ability.Motion{Forward: geom.V(4, 0)}))
	assert.Equal(t, geom.Forward, ability.DodgeVector(ability.Motion{}))
}

func TestDodge_PlaysDirectionalClipWithIFrames(t *testing.T) {
	e := newEnv(t, []string{"roll"})
	e.owner.motion = ability.Motion{Input: geom.V(0, 1), Forward: geom.V(1, 0)}
	d := e.comp.Dodge()

	require.True(t, d.Activate())
	assert.Equal(t, "dodge_l", e.tl.Current())
	assert.Equal(t, ability.DirLeft, d.LastDirection())
	assert.True(t, e.owner.flags.Has(condition.Dodging))
	assert.Equal(t, 85.0, e.owner.stats.SP())
	assert.False(t, e.comp.State().CanHitReact(), "full-body dodge suppresses hit reactions")
	assert.False(t, d.Activate(), "already dodging")

	e.advance(50 * time.Millisecond)
	assert.False(t, e.comp.State().IFrameActive())
	e.advance(60 * time.Millisecond)
	assert.True(t, e.comp.State().IFrameActive())
	assert.True(t, e.owner.flags.Has(condition.Invulnerable))
	e.advance(200 * time.Millisecond)
	assert.False(t, e.comp.State().IFrameActive(), "window closes after iframe_duration")

	e.advance(200 * time.Millisecond)
	assert.False(t, d.Active())
	assert.False(t, e.owner.flags.Has(condition.Dodging))
	assert.True(t, e.comp.State().CanHitReact())
	requireNoTags(t, e)
}

func TestDodge_CancelsAttackAndClearsIFramesWhenInterrupted(t *testing.T) {
	e := newEnv(t, []string{"combo", "roll"})
	require.True(t, e.comp.Combo().Input())
	require.True(t, e.comp.Dodge().Activate())
	assert.False(t, e.comp.Combo().Active())
	assert.Equal(t, "dodge_f", e.tl.Current())

	e.advance(150 * time.Millisecond)
	require.True(t, e.owner.flags.Has(condition.Invulnerable))
	e.comp.Dodge().Cancel()
	assert.False(t, e.owner.flags.Has(condition.Invulnerable))
	assert.False(t, e.owner.flags.Has(condition.Dodging))
	_, blend := e.tl.LastStop()
	assert.Equal(t, testTuning().CancelBlendOut, blend)
}

func TestDodge_RefusedWhenUnaffordable(t *testing.T) {
	e := newEnv(t, []string{"roll"})
	e.owner.stats.Add(stats.AttrSP, -90)
	assert.False(t, e.comp.Dodge().Activate())
	assert.Equal(t, 10.0, e.owner.stats.SP())
	assert.False(t, e.owner.flags.Has(condition.Dodging))
}

func TestPropertyBucket_MatchesNearestSector(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		facing := rapid.Float64Range(-180, 180).Draw(rt, "facing")
		sector := rapid.IntRange(0, 7).Draw(rt, "sector")
		jitter := rapid.Float64Range(-20, 20).Draw(rt, "jitter")
		// sectors run clockwise, so heading decreases with sector index
		dir := geom.FromYaw(facing - float64(sector)*45 + jitter)
		assert.Equal(rt, ability.Direction(sector), ability.Bucket(geom.FromYaw(facing), dir))
	})
}
