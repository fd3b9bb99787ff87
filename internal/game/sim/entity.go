package sim

import (
	"math"
	"time"

	"github.com/cory-johannsen/skirmish/internal/game/ability"
	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/anim"
	"github.com/cory-johannsen/skirmish/internal/game/condition"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/npc"
	"github.com/cory-johannsen/skirmish/internal/game/stats"
)

// impulseFloor is the knockback speed below which the impulse is dropped.
const impulseFloor = 1.0

// Entity is one live combatant. It owns its stat block, status flags,
// clip timeline and ability component; the World only routes between
// entities.
type Entity struct {
	world *World
	id    string
	seq   int
	tmpl  *npc.Template
	group string
	home  geom.Vec3

	loc      geom.Vec3
	fwd      geom.Vec3
	vel      geom.Vec3
	input    geom.Vec3
	lastMove geom.Vec3
	impulse  geom.Vec3
	orient   ability.Orientation

	stats    *stats.Block
	flags    *condition.Set
	timeline *anim.Timeline
	comp     *ability.Component
	brain    *ai.Controller

	dilation    float64
	dilateUntil time.Duration
	lockedUntil time.Duration
	dead        bool
	diedAt      time.Duration
}

func (e *Entity) ID() string                       { return e.id }
func (e *Entity) Name() string                     { return e.tmpl.Name }
func (e *Entity) Team() string                     { return e.tmpl.Team }
func (e *Entity) Template() *npc.Template          { return e.tmpl }
func (e *Entity) Group() string                    { return e.group }
func (e *Entity) Location() geom.Vec3              { return e.loc }
func (e *Entity) Forward() geom.Vec3               { return e.fwd }
func (e *Entity) Velocity() geom.Vec3              { return e.vel }
func (e *Entity) Home() geom.Vec3                  { return e.home }
func (e *Entity) IsDead() bool                     { return e.dead }
func (e *Entity) Abilities() *ability.Component    { return e.comp }
func (e *Entity) Animator() anim.Player            { return e.timeline }
func (e *Entity) Flags() *condition.Set            { return e.flags }
func (e *Entity) Stats() *stats.Block              { return e.stats }
func (e *Entity) Orientation() ability.Orientation { return e.orient }

// Controller returns the AI controller, or nil for an undriven entity.
func (e *Entity) Controller() *ai.Controller { return e.brain }

// Motion implements ability.Owner.
func (e *Entity) Motion() ability.Motion {
	return ability.Motion{
		Input:     e.input,
		LastInput: e.lastMove,
		Velocity:  e.vel,
		Forward:   e.fwd,
	}
}

// SetOrientation implements ability.Owner.
func (e *Entity) SetOrientation(o ability.Orientation) { e.orient = o }

// SetTimeDilation implements hitreact.Target.
func (e *Entity) SetTimeDilation(factor float64, until time.Duration) {
	e.dilation, e.dilateUntil = factor, until
}

// LockMovement implements hitreact.Target. A lock never shortens an
// existing one.
func (e *Entity) LockMovement(until time.Duration) {
	if until > e.lockedUntil {
		e.lockedUntil = until
	}
}

// MovementLockedUntil returns the end of the current movement lock.
func (e *Entity) MovementLockedUntil() time.Duration { return e.lockedUntil }

// ApplyImpulse implements hitreact.Target.
func (e *Entity) ApplyImpulse(v geom.Vec3) { e.impulse = e.impulse.Add(v.Flat()) }

// Impulse returns the knockback velocity still being applied.
func (e *Entity) Impulse() geom.Vec3 { return e.impulse }

// focus returns the direction to the AI target, or zero without one.
func (e *Entity) focus() (geom.Vec3, float64) {
	if e.brain == nil || !e.brain.Record().HasTarget() {
		return geom.Vec3{}, 0
	}
	t, ok := e.world.entity(e.brain.Record().Target)
	if !ok {
		return geom.Vec3{}, 0
	}
	d := t.loc.Sub(e.loc)
	return d.Normal2D(), d.Size2D()
}

// engageRange is the distance inside which the entity faces its target
// instead of its heading.
func (e *Entity) engageRange() float64 {
	if e.brain == nil {
		return 0
	}
	p := e.brain.Profile()
	return math.Max(p.Tactical.MaxRange, p.AttackRange)
}

// tick runs one entity frame in order: orientation, directional speed,
// guard direction, ability gating, then the clip timeline.
func (e *Entity) tick(now, dt time.Duration) {
	if e.dead {
		e.comp.Tick()
		e.timeline.Advance(dt)
		return
	}
	mv := e.world.cfg.Movement

	e.input = geom.Vec3{}
	if now >= e.lockedUntil && !condition.IsMovementRestricted(e.flags) {
		if dir, ok := e.world.agents.Steer(e.id, e.loc); ok {
			e.input = dir
		}
	}
	if !e.input.IsNearlyZero() {
		e.lastMove = e.input
	}

	aim, dist := e.focus()
	switch {
	case e.orient == ability.OrientToCamera && !aim.IsNearlyZero():
		e.fwd = aim
	case !aim.IsNearlyZero() && dist <= e.engageRange():
		e.fwd = aim
	case !e.input.IsNearlyZero():
		e.fwd = e.input
	}

	speed := e.tmpl.MoveSpeed
	if !e.input.IsNearlyZero() {
		switch d := e.input.Dot(e.fwd); {
		case d <= -math.Sqrt2/2:
			speed *= mv.BackpedalScale
		case d < math.Sqrt2/2:
			speed *= mv.StrafeScale
		}
	}
	st := e.comp.State()
	if st.Guarding() {
		speed *= mv.GuardScale
	}
	if e.flags.Has(condition.Attacking) {
		speed *= mv.AttackScale
	}
	e.vel = e.input.Scale(speed)

	if st.Guarding() && !aim.IsNearlyZero() {
		e.fwd = aim
	}

	e.comp.Tick()
	e.timeline.Advance(e.dilate(now, dt))
}

// dilate scales dt by an active hit-stop.
func (e *Entity) dilate(now, dt time.Duration) time.Duration {
	if now < e.dilateUntil && e.dilation > 0 {
		return time.Duration(float64(dt) * e.dilation)
	}
	return dt
}

// move integrates velocity and knockback, sliding along blocked axes.
func (e *Entity) move(now, dt time.Duration) {
	if e.dead {
		return
	}
	secs := e.dilate(now, dt).Seconds()
	delta := e.vel.Add(e.impulse).Scale(secs)
	if !delta.IsNearlyZero() {
		arena := e.world.agents
		for _, step := range []geom.Vec3{delta, {X: delta.X}, {Y: delta.Y}} {
			if next := e.loc.Add(step); arena.Walkable(next) {
				e.loc = next
				break
			}
		}
	}
	if decay := e.world.cfg.Movement.ImpulseDecay; decay > 0 {
		e.impulse = e.impulse.Scale(math.Exp(-decay * dt.Seconds()))
	}
	if e.impulse.Size2D() < impulseFloor {
		e.impulse = geom.Vec3{}
	}
}

// View is a read-only snapshot of an entity for reporting.
type View struct {
	ID       string
	Name     string
	Team     string
	Group    string
	Location geom.Vec3
	HP       float64
	MaxHP    float64
	SP       float64
	Dead     bool
	Target   string
	Decision string
	Flags    []string
}

// View returns a snapshot of e.
func (e *Entity) View() View {
	v := View{
		ID:       e.id,
		Name:     e.tmpl.Name,
		Team:     e.tmpl.Team,
		Group:    e.group,
		Location: e.loc,
		HP:       e.stats.HP(),
		MaxHP:    e.stats.MaxHP(),
		SP:       e.stats.SP(),
		Dead:     e.dead,
		Flags:    e.flags.All(),
	}
	if e.brain != nil {
		v.Target = e.brain.Record().Target
		v.Decision = e.brain.Blackboard().Decision.String()
	}
	return v
}
