package ai

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/ability"
	"github.com/cory-johannsen/skirmish/internal/game/clock"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

// Body is the controlled entity as the decision layer sees it.
type Body interface {
	ID() string
	Location() geom.Vec3
	Forward() geom.Vec3
	Home() geom.Vec3
	IsDead() bool
	// Abilities returns nil when the entity cannot attack.
	Abilities() *ability.Component
}

// Cadence sets how often each routine runs.
type Cadence struct {
	Aggro    time.Duration `mapstructure:"aggro"`
	Tactical time.Duration `mapstructure:"tactical"`
}

// DefaultCadence returns 5 Hz aggro and roughly 1.3 Hz tactical ticks.
func DefaultCadence() Cadence {
	return Cadence{Aggro: 200 * time.Millisecond, Tactical: 750 * time.Millisecond}
}

// Validate checks both intervals are positive.
func (c Cadence) Validate() error {
	if c.Aggro <= 0 || c.Tactical <= 0 {
		return fmt.Errorf("ai cadence: aggro and tactical intervals must be > 0")
	}
	return nil
}

// Deps are the collaborators a Controller reads. World and Nav may be nil,
// in which case the matching routine is skipped.
type Deps struct {
	Clock   clock.Clock
	Roller  *dice.Roller
	World   Perception
	Nav     Navigator
	Cadence Cadence
	Logger  *zap.Logger
}

// Controller owns one enemy's Aggro Record and Blackboard and runs the
// aggro and tactical routines at their cadences.
type Controller struct {
	body       Body
	profile    *Profile
	deps       Deps
	sensor     *Sensor
	positioner *Positioner
	record     *Record
	board      *Blackboard

	nextAggro    time.Duration
	nextTactical time.Duration
}

// NewController creates a Controller for body.
//
// Precondition: body, profile, deps.Clock, deps.Roller and deps.Logger must
// be non-nil.
func NewController(body Body, profile *Profile, deps Deps) *Controller {
	if body == nil || profile == nil || deps.Clock == nil || deps.Roller == nil || deps.Logger == nil {
		panic("ai.NewController: body, profile, clock, roller and logger must not be nil")
	}
	now := deps.Clock.Now()
	return &Controller{
		body:         body,
		profile:      profile,
		deps:         deps,
		sensor:       NewSensor(profile.Aggro, deps.Logger),
		positioner:   NewPositioner(profile.Tactical, profile.Wander, deps.Roller, deps.Logger),
		record:       NewRecord(profile.Style),
		board:        NewBlackboard(),
		nextAggro:    now,
		nextTactical: now,
	}
}

// Profile returns the behaviour profile.
func (c *Controller) Profile() *Profile { return c.profile }

// Record returns the aggro record.
func (c *Controller) Record() *Record { return c.record }

// Blackboard returns the decision scratch space.
func (c *Controller) Blackboard() *Blackboard { return c.board }

// NotifyHit raises hit aggro toward instigator.
func (c *Controller) NotifyHit(instigator string) {
	c.record.NotifyHit(instigator, c.deps.Clock.Now())
}

// Reset clears aggro and destination, as on death or respawn.
func (c *Controller) Reset() {
	now := c.deps.Clock.Now()
	if c.record.HasTarget() {
		c.record.LastSwitch = now
	}
	c.record.Clear()
	c.board.Target = ""
	c.board.Decision = DecisionNone
	c.board.ClearDestination()
	c.nextAggro = now
	c.nextTactical = now
}

// Tick runs whichever routines are due. Dead bodies do nothing.
func (c *Controller) Tick() {
	if c.body.IsDead() {
		return
	}
	now := c.deps.Clock.Now()
	self := Self{
		ID:       c.body.ID(),
		Location: c.body.Location(),
		Forward:  c.body.Forward(),
		Home:     c.body.Home(),
	}
	if now >= c.nextAggro {
		c.nextAggro = now + c.deps.Cadence.Aggro
		c.sensor.Tick(c.record, self, c.deps.World, now)
		c.board.Target = c.record.Target
		c.driveAttack(self)
	}
	if now >= c.nextTactical {
		c.nextTactical = now + c.deps.Cadence.Tactical
		if loc, ok := c.targetLocation(); ok {
			c.positioner.Tactical(self, loc, c.deps.World, c.deps.Nav, c.board, now)
		} else {
			c.positioner.Wander(self, c.deps.World, c.deps.Nav, c.board, now)
		}
	}
}

func (c *Controller) targetLocation() (geom.Vec3, bool) {
	if !c.record.HasTarget() || c.deps.World == nil {
		return geom.Vec3{}, false
	}
	return c.deps.World.Location(c.record.Target)
}

// driveAttack feeds the range fact to the windup gate and presses attack
// when the gate allows or a combo window can take a buffered press. An
// opening may instead go to a ready skill.
func (c *Controller) driveAttack(self Self) {
	comp := c.body.Abilities()
	if comp == nil {
		return
	}
	inRange := false
	if loc, ok := c.targetLocation(); ok {
		inRange = self.Location.Dist2D(loc) <= c.profile.AttackRange
	}
	comp.UpdateRange(inRange)
	if !inRange {
		return
	}
	combo := comp.Combo()
	if combo != nil && combo.Active() {
		if comp.State().ComboWindowOpen() {
			combo.Input()
		}
		return
	}
	if comp.Tags().Has(ability.TagAttack) || !comp.AttackReady() {
		return
	}
	if c.useSkill(comp, self) {
		return
	}
	if combo != nil && combo.Input() {
		c.deps.Logger.Debug("ai attack",
			zap.String("entity", self.ID),
			zap.String("target", c.record.Target),
		)
	}
}

// useSkill activates the first ready skill when the skill roll succeeds.
func (c *Controller) useSkill(comp *ability.Component, self Self) bool {
	ids := comp.SkillIDs()
	if len(ids) == 0 || !c.deps.Roller.Probability("skill", c.profile.SkillChance) {
		return false
	}
	now := c.deps.Clock.Now()
	for _, id := range ids {
		s, _ := comp.Skill(id)
		if now < s.ReadyAt() {
			continue
		}
		if s.Activate() {
			c.deps.Logger.Debug("ai skill",
				zap.String("entity", self.ID),
				zap.String("skill", id),
				zap.String("target", c.record.Target),
			)
			return true
		}
	}
	return false
}
