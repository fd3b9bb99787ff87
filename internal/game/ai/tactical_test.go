package ai_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

func tacticalParams() ai.TacticalParams {
	return ai.DefaultProfile().Tactical
}

func wanderParams() ai.WanderParams {
	return ai.DefaultProfile().Wander
}

func TestTactical_BackstepWhenTooClose(t *testing.T) {
	p := ai.NewPositioner(tacticalParams(), wanderParams(), roller(nil, nil), zap.NewNop())
	w, nav, bb := newWorld(), newNav(), ai.NewBlackboard()
	me := ai.Self{ID: "e", Location: geom.V(100, 0), Forward: geom.V(-1, 0)}

	d := p.Tactical(me, geom.V(0, 0), w, nav, bb, time.Second)
	require.Equal(t, ai.DecisionBackstep, d)
	assert.True(t, bb.Destination.Equal(geom.V(300, 0), 1e-9))
	assert.Equal(t, time.Second, bb.DestinationAt)
	assert.Equal(t, bb.Destination, nav.dest["e"])
}

func TestTactical_BackstepDegenerateFallsBackToFacing(t *testing.T) {
	p := ai.NewPositioner(tacticalParams(), wanderParams(), roller(nil, nil), zap.NewNop())
	w, nav, bb := newWorld(), newNav(), ai.NewBlackboard()
	me := ai.Self{ID: "e", Location: geom.V(0, 0), Forward: geom.V(0, 1)}

	require.Equal(t, ai.DecisionBackstep, p.Tactical(me, geom.V(0, 0), w, nav, bb, 0))
	assert.True(t, bb.Destination.Equal(geom.V(0, -200), 1e-9))
}

func TestTactical_UnreachablePointLeavesDestination(t *testing.T) {
	p := ai.NewPositioner(tacticalParams(), wanderParams(), roller(nil, nil), zap.NewNop())
	w, nav, bb := newWorld(), newNav(), ai.NewBlackboard()
	bb.SetDestination(geom.V(7, 7), 0)
	me := ai.Self{ID: "e", Location: geom.V(100, 0)}

	nav.unreachable = true
	assert.Equal(t, ai.DecisionNone, p.Tactical(me, geom.V(0, 0), w, nav, bb, time.Second))
	assert.Equal(t, geom.V(7, 7), bb.Destination)

	nav.unreachable, nav.pathLen = false, 1
	assert.Equal(t, ai.DecisionNone, p.Tactical(me, geom.V(0, 0), w, nav, bb, time.Second), "single-point path")

	nav.pathLen = 2
	w.walkable = func(geom.Vec3) bool { return false }
	assert.Equal(t, ai.DecisionNone, p.Tactical(me, geom.V(0, 0), w, nav, bb, time.Second), "not projectable")
	assert.Empty(t, nav.dest)
}

func TestTactical_HoldOrStrafeInBand(t *testing.T) {
	target := geom.V(0, 0)
	me := ai.Self{ID: "e", Location: geom.V(300, 0)}

	// 0.9 ≥ strafe chance 0.4 → hold.
	p := ai.NewPositioner(tacticalParams(), wanderParams(), roller([]float64{0.9}, nil), zap.NewNop())
	bb := ai.NewBlackboard()
	assert.Equal(t, ai.DecisionHold, p.Tactical(me, target, newWorld(), newNav(), bb, 0))
	assert.Equal(t, me.Location, bb.Destination)

	// 0.1 < 0.4 → strafe; angle 30 + 0.5×30 = 45°, sign +1 (Intn 1).
	p = ai.NewPositioner(tacticalParams(), wanderParams(), roller([]float64{0.1, 0.5}, []int{1}), zap.NewNop())
	bb = ai.NewBlackboard()
	require.Equal(t, ai.DecisionStrafe, p.Tactical(me, target, newWorld(), newNav(), bb, 0))
	assert.True(t, bb.Destination.Equal(geom.FromYaw(45).Scale(300), 1e-9))
	assert.InDelta(t, 300, bb.Destination.Dist2D(target), 1e-9, "strafe keeps distance")
}

func TestTactical_ChaseBeyondMaxRange(t *testing.T) {
	p := ai.NewPositioner(tacticalParams(), wanderParams(), roller(nil, nil), zap.NewNop())
	nav, bb := newNav(), ai.NewBlackboard()
	nav.unreachable = true
	me := ai.Self{ID: "e", Location: geom.V(0, 0)}
	require.Equal(t, ai.DecisionChase, p.Tactical(me, geom.V(900, 0), newWorld(), nav, bb, 0))
	assert.Equal(t, geom.V(900, 0), bb.Destination)
}

func TestPropertyTactical_StrafeAngleWithinBand(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tp := tacticalParams()
		f := rapid.Float64Range(0, 0.999).Draw(rt, "angle")
		side := rapid.IntRange(0, 1).Draw(rt, "side")
		p := ai.NewPositioner(tp, wanderParams(), roller([]float64{0, f}, []int{side}), zap.NewNop())
		bb := ai.NewBlackboard()
		dist := rapid.Float64Range(tp.TooClose, tp.MaxRange).Draw(rt, "dist")
		me := ai.Self{ID: "e", Location: geom.V(dist, 0)}
		if p.Tactical(me, geom.Vec3{}, newWorld(), newNav(), bb, 0) != ai.DecisionStrafe {
			rt.Fatal("expected strafe")
		}
		angle := geom.SignedAngle(me.Location, bb.Destination)
		if a := abs(angle); a < tp.StrafeMinAngle-1e-6 || a > tp.StrafeMaxAngle+1e-6 {
			rt.Fatalf("angle %v outside band", angle)
		}
	})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestWander_SamplesInsideAnnulus(t *testing.T) {
	wp := wanderParams()
	p := ai.NewPositioner(tacticalParams(), wp, roller([]float64{0.5, 0.25}, nil), zap.NewNop())
	bb := ai.NewBlackboard()
	me := ai.Self{ID: "e", Home: geom.V(1000, 1000)}
	require.Equal(t, ai.DecisionWander, p.Wander(me, newWorld(), newNav(), bb, 0))
	d := bb.Destination.Dist2D(me.Home)
	assert.InDelta(t, wp.Radius-wp.Jitter/2, d, 1e-9)
}

func TestWander_UsesMemoryWhenConfigured(t *testing.T) {
	wp := wanderParams()
	wp.UseMemory = true
	p := ai.NewPositioner(tacticalParams(), wp, roller([]float64{1 - 1e-12, 0}, nil), zap.NewNop())
	bb := ai.NewBlackboard()
	bb.Memory, bb.HasMemory = geom.V(-5000, 0), true
	require.Equal(t, ai.DecisionWander, p.Wander(ai.Self{ID: "e"}, newWorld(), newNav(), bb, 0))
	assert.InDelta(t, wp.Radius, bb.Destination.Dist2D(bb.Memory), 1e-6)
}

func TestWander_KeepsRecentFarDestination(t *testing.T) {
	wp := wanderParams()
	p := ai.NewPositioner(tacticalParams(), wp, roller([]float64{0.5}, nil), zap.NewNop())
	bb := ai.NewBlackboard()
	nav := newNav()
	me := ai.Self{ID: "e"}
	require.Equal(t, ai.DecisionWander, p.Wander(me, newWorld(), nav, bb, 0))
	first := bb.Destination

	p.Wander(me, newWorld(), nav, bb, wp.MinUpdateInterval-time.Millisecond)
	assert.Equal(t, first, bb.Destination, "recent and far: kept")
	assert.Equal(t, time.Duration(0), bb.DestinationAt)

	p.Wander(me, newWorld(), nav, bb, wp.MinUpdateInterval)
	assert.Equal(t, wp.MinUpdateInterval, bb.DestinationAt, "stale: resampled")

	me.Location = bb.Destination
	p.Wander(me, newWorld(), nav, bb, wp.MinUpdateInterval+time.Millisecond)
	assert.Equal(t, wp.MinUpdateInterval+time.Millisecond, bb.DestinationAt, "arrived: resampled")
}

func TestWander_GivesUpAfterMaxAttempts(t *testing.T) {
	p := ai.NewPositioner(tacticalParams(), wanderParams(), roller([]float64{0.3}, nil), zap.NewNop())
	w := newWorld()
	calls := 0
	w.walkable = func(geom.Vec3) bool { calls++; return false }
	bb := ai.NewBlackboard()
	assert.Equal(t, ai.DecisionNone, p.Wander(ai.Self{ID: "e"}, w, newNav(), bb, 0))
	assert.Equal(t, wanderParams().MaxAttempts, calls)
	assert.False(t, bb.HasDestination)
}
