package ai

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

// Navigator moves an entity toward a destination.
type Navigator interface {
	SetDestination(id string, p geom.Vec3)
	IsReachable(from, to geom.Vec3) bool
	// FindPath returns the waypoints from..to; fewer than two points means
	// no usable path.
	FindPath(from, to geom.Vec3) []geom.Vec3
}

// Decision is what the last tactical tick chose.
type Decision int

const (
	DecisionNone Decision = iota
	DecisionBackstep
	DecisionStrafe
	DecisionHold
	DecisionChase
	DecisionWander
)

// String returns the decision label used in logs.
func (d Decision) String() string {
	switch d {
	case DecisionBackstep:
		return "backstep"
	case DecisionStrafe:
		return "strafe"
	case DecisionHold:
		return "hold"
	case DecisionChase:
		return "chase"
	case DecisionWander:
		return "wander"
	default:
		return "none"
	}
}

// Positioner runs the tactical and wander routines.
type Positioner struct {
	tactical TacticalParams
	wander   WanderParams
	roller   *dice.Roller
	logger   *zap.Logger
}

// NewPositioner creates a Positioner.
//
// Precondition: roller and logger must be non-nil.
func NewPositioner(tactical TacticalParams, wander WanderParams, roller *dice.Roller, logger *zap.Logger) *Positioner {
	if roller == nil || logger == nil {
		panic("ai.NewPositioner: roller and logger must not be nil")
	}
	return &Positioner{tactical: tactical, wander: wander, roller: roller, logger: logger}
}

// Tactical picks a destination around a live target at target.
//
// Postcondition: Backstep and strafe points are written to bb and nav only
// when reachable with a path of at least two points; otherwise the
// destination is left unchanged and DecisionNone is returned.
func (p *Positioner) Tactical(self Self, target geom.Vec3, world Perception, nav Navigator, bb *Blackboard, now time.Duration) Decision {
	if world == nil || nav == nil {
		p.logger.Debug("tactical skipped: missing collaborator", zap.String("entity", self.ID))
		return DecisionNone
	}
	t := p.tactical
	dist := self.Location.Dist2D(target)
	var d Decision
	var point geom.Vec3
	switch {
	case dist < t.TooClose:
		d = DecisionBackstep
		away := self.Location.Sub(target).Normal2D()
		if away.IsNearlyZero() {
			away = self.Forward.Normal2D().Neg()
		}
		if away.IsNearlyZero() {
			away = geom.Forward.Neg()
		}
		point = self.Location.Add(away.Scale(t.BackstepDistance))
	case dist <= t.MaxRange:
		if !p.roller.Probability("strafe", t.StrafeChance) {
			d = DecisionHold
			point = self.Location
			break
		}
		d = DecisionStrafe
		axis := self.Location.Sub(target).Flat()
		if axis.IsNearlyZero() {
			axis = self.Forward.Normal2D().Neg().Scale(math.Max(dist, t.TooClose))
		}
		angle := p.roller.Uniform("strafe_angle", t.StrafeMinAngle, t.StrafeMaxAngle) * p.roller.Sign("strafe_side")
		point = target.Add(axis.RotateZ(angle))
	default:
		d = DecisionChase
		point = target
	}

	if d == DecisionBackstep || d == DecisionStrafe {
		projected, ok := world.ProjectToWalkable(point, t.ProjectExtent)
		if !ok || !committable(nav, self.Location, projected) {
			p.logger.Debug("tactical point rejected",
				zap.String("entity", self.ID),
				zap.Stringer("decision", d),
			)
			return DecisionNone
		}
		point = projected
	}
	bb.SetDestination(point, now)
	bb.Decision = d
	nav.SetDestination(self.ID, point)
	p.logger.Debug("tactical decision",
		zap.String("entity", self.ID),
		zap.Stringer("decision", d),
		zap.Float64("distance", dist),
	)
	return d
}

func committable(nav Navigator, from, to geom.Vec3) bool {
	return nav.IsReachable(from, to) && len(nav.FindPath(from, to)) >= 2
}

// Wander picks an idle destination around the home anchor, or the
// blackboard memory vector when the profile asks for it.
//
// Postcondition: Keeps the previous destination when it is still farther
// than KeepThreshold and was set within MinUpdateInterval. Returns
// DecisionNone when no sample projects onto walkable ground.
func (p *Positioner) Wander(self Self, world Perception, nav Navigator, bb *Blackboard, now time.Duration) Decision {
	if world == nil || nav == nil {
		p.logger.Debug("wander skipped: missing collaborator", zap.String("entity", self.ID))
		return DecisionNone
	}
	w := p.wander
	if bb.HasDestination && bb.Decision == DecisionWander &&
		self.Location.Dist2D(bb.Destination) > w.KeepThreshold &&
		now-bb.DestinationAt < w.MinUpdateInterval {
		return DecisionWander
	}
	center := self.Home
	if w.UseMemory && bb.HasMemory {
		center = bb.Memory
	}
	for i := 0; i < w.MaxAttempts; i++ {
		r := p.roller.Uniform("wander_radius", w.Radius-w.Jitter, w.Radius)
		sample := center.Add(geom.FromYaw(p.roller.Uniform("wander_yaw", 0, 360)).Scale(r))
		point, ok := world.ProjectToWalkable(sample, p.tactical.ProjectExtent)
		if !ok {
			continue
		}
		bb.SetDestination(point, now)
		bb.Decision = DecisionWander
		nav.SetDestination(self.ID, point)
		p.logger.Debug("wander destination",
			zap.String("entity", self.ID),
			zap.Int("attempt", i+1),
		)
		return DecisionWander
	}
	p.logger.Debug("wander failed: no walkable sample", zap.String("entity", self.ID))
	return DecisionNone
}
