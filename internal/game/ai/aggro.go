package ai

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/clock"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

// Perception is the world query surface the decision routines read.
type Perception interface {
	// ProjectToWalkable returns the closest walkable point to p within
	// extent, or false when none exists.
	ProjectToWalkable(p geom.Vec3, extent float64) (geom.Vec3, bool)
	// Location returns the entity's position, or false when it is gone.
	Location(id string) (geom.Vec3, bool)
	IsAlive(id string) bool
	// Hostiles returns the ids of entities hostile to self.
	Hostiles(self string) []string
}

// Record is one enemy's aggro state.
//
// Invariant: for ReactiveOnly, Target is non-empty only while the hit flag
// is live.
type Record struct {
	Style      Style
	Target     string
	LastSwitch time.Duration
	HitFlag    bool
	LastHit    time.Duration
	// Instigator is the last entity that hit this one.
	Instigator string
}

// NewRecord returns an empty record that has never switched.
func NewRecord(style Style) *Record {
	return &Record{Style: style, LastSwitch: clock.Never, LastHit: clock.Never}
}

// HasTarget reports whether a target is held.
func (r *Record) HasTarget() bool { return r.Target != "" }

// NotifyHit raises the hit-aggro flag for instigator.
func (r *Record) NotifyHit(instigator string, now time.Duration) {
	r.HitFlag = true
	r.LastHit = now
	r.Instigator = instigator
}

// HitAggroLive reports whether the hit flag is raised and within hold.
func (r *Record) HitAggroLive(now, hold time.Duration) bool {
	return r.HitFlag && r.LastHit != clock.Never && now-r.LastHit <= hold
}

// Clear drops the target and the hit flag without touching LastSwitch.
func (r *Record) Clear() {
	r.Target = ""
	r.HitFlag = false
	r.Instigator = ""
}

// held reports whether at least hold has passed since the last switch. A
// record that never switched satisfies any hold.
func (r *Record) held(now, hold time.Duration) bool {
	return r.LastSwitch == clock.Never || now-r.LastSwitch >= hold
}

// Self is the sensing entity's own geometry.
type Self struct {
	ID       string
	Location geom.Vec3
	Forward  geom.Vec3
	Home     geom.Vec3
}

// Sensor runs the NoTarget ⇄ HasTarget machine.
type Sensor struct {
	params AggroParams
	logger *zap.Logger
}

// NewSensor creates a Sensor.
//
// Precondition: logger must be non-nil.
func NewSensor(params AggroParams, logger *zap.Logger) *Sensor {
	if logger == nil {
		panic("ai.NewSensor: logger must not be nil")
	}
	return &Sensor{params: params, logger: logger}
}

// Tick evaluates one aggro decision for rec.
//
// Postcondition: Returns true when the target changed; every change sets
// rec.LastSwitch to now.
func (s *Sensor) Tick(rec *Record, self Self, world Perception, now time.Duration) bool {
	if world == nil {
		s.logger.Debug("aggro skipped: no perception", zap.String("entity", self.ID))
		return false
	}
	p := s.params
	if rec.HitFlag && !rec.HitAggroLive(now, p.HitAggroHold) {
		rec.HitFlag = false
	}
	leashed := self.Location.Dist2D(self.Home) > p.LeashRadius

	if rec.HasTarget() {
		reason := s.dropReason(rec, self, world, now, leashed)
		if reason == "" {
			return false
		}
		s.logger.Debug("aggro dropped",
			zap.String("entity", self.ID),
			zap.String("target", rec.Target),
			zap.String("reason", reason),
		)
		rec.Target = ""
		rec.LastSwitch = now
		return true
	}

	if leashed {
		return false
	}
	if rec.Style == ReactiveOnly && !rec.HitFlag {
		return false
	}
	if !rec.held(now, p.MinHoldOnEnter) {
		return false
	}
	id, dist, ok := s.candidate(rec, self, world)
	if !ok || dist >= p.EnterRadius {
		return false
	}
	rec.Target = id
	rec.LastSwitch = now
	s.logger.Debug("aggro acquired",
		zap.String("entity", self.ID),
		zap.String("target", id),
		zap.Float64("distance", dist),
		zap.Bool("by_hit", id == rec.Instigator && rec.HitFlag),
	)
	return true
}

func (s *Sensor) dropReason(rec *Record, self Self, world Perception, now time.Duration, leashed bool) string {
	p := s.params
	if !world.IsAlive(rec.Target) {
		return "target gone"
	}
	loc, ok := world.Location(rec.Target)
	if !ok {
		return "target gone"
	}
	if leashed {
		return "leash"
	}
	if rec.Style == ReactiveOnly && !rec.HitFlag {
		return "hit aggro expired"
	}
	if self.Location.Dist2D(loc) > p.ExitRadius && rec.held(now, p.MinHoldOnExit) {
		return "out of range"
	}
	return ""
}

// candidate prefers a live instigator, else the closest living hostile.
func (s *Sensor) candidate(rec *Record, self Self, world Perception) (string, float64, bool) {
	if rec.HitFlag && rec.Instigator != "" && world.IsAlive(rec.Instigator) {
		if loc, ok := world.Location(rec.Instigator); ok {
			return rec.Instigator, self.Location.Dist2D(loc), true
		}
	}
	best, bestDist := "", math.Inf(1)
	for _, id := range world.Hostiles(self.ID) {
		if !world.IsAlive(id) {
			continue
		}
		loc, ok := world.Location(id)
		if !ok {
			continue
		}
		if d := self.Location.Dist2D(loc); d < bestDist {
			best, bestDist = id, d
		}
	}
	return best, bestDist, best != ""
}
