// Package ability implements the per-entity ability state machine: combo
// chains with input buffering, held guard, 8-way dodge with i-frames, and
// scripted skills, behind a capability registry resolved at construction.
package ability

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/anim"
	"github.com/cory-johannsen/skirmish/internal/game/clock"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/condition"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/effect"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/stats"
)

// Orientation selects how the owner turns while an ability runs.
type Orientation int

const (
	// OrientToMovement faces the direction of travel.
	OrientToMovement Orientation = iota
	// OrientToCamera locks facing to the camera (control) yaw.
	OrientToCamera
)

// Motion is the owner's movement snapshot used to pick dodge directions.
type Motion struct {
	Input     geom.Vec3
	LastInput geom.Vec3
	Velocity  geom.Vec3
	Forward   geom.Vec3
}

// Owner is the entity an ability Component acts for.
type Owner interface {
	ID() string
	// Stats returns nil when the entity has no stat block.
	Stats() *stats.Block
	Flags() *condition.Set
	// Animator returns nil when the entity has no animation collaborator.
	Animator() anim.Player
	Motion() Motion
	SetOrientation(Orientation)
}

// Strike is delivered to the host when a timeline `hit` event fires.
type Strike struct {
	Attacker   string
	Ability    string
	Tag        string
	PowerScale float64
	Kind       combat.Kind
	Reach      float64
	Arc        float64
	Reaction   string
}

// StrikeSink routes strikes to their victims.
type StrikeSink interface {
	Strike(Strike)
}

// Snapshot is the resource view handed to skill precondition hooks.
type Snapshot struct {
	Owner string
	HP    float64
	MaxHP float64
	SP    float64
	MaxSP float64
	Flags []string
}

// Preconditions evaluates a named precondition hook.
type Preconditions interface {
	Check(hook string, snap Snapshot) bool
}

// PreconditionFunc adapts a function to Preconditions.
type PreconditionFunc func(hook string, snap Snapshot) bool

func (f PreconditionFunc) Check(hook string, snap Snapshot) bool { return f(hook, snap) }

// Tuning holds the state machine's timing constants.
type Tuning struct {
	BlendOut       time.Duration `mapstructure:"blend_out"`
	CancelBlendOut time.Duration `mapstructure:"cancel_blend_out"`
	AttackCooldown time.Duration `mapstructure:"attack_cooldown"`
	WindupMin      time.Duration `mapstructure:"windup_min"`
	WindupMax      time.Duration `mapstructure:"windup_max"`
}

// DefaultTuning returns the stock timing constants.
func DefaultTuning() Tuning {
	return Tuning{
		BlendOut:       250 * time.Millisecond,
		CancelBlendOut: 50 * time.Millisecond,
		AttackCooldown: 800 * time.Millisecond,
		WindupMin:      300 * time.Millisecond,
		WindupMax:      600 * time.Millisecond,
	}
}

// Validate checks the timing constants.
func (t Tuning) Validate() error {
	if t.BlendOut < 0 || t.CancelBlendOut < 0 || t.AttackCooldown < 0 {
		return fmt.Errorf("combo: blend_out, cancel_blend_out and attack_cooldown must be >= 0")
	}
	if t.WindupMin < 0 || t.WindupMax < t.WindupMin {
		return fmt.Errorf("combo: need 0 <= windup_min <= windup_max, got %s and %s", t.WindupMin, t.WindupMax)
	}
	return nil
}

// Deps are the collaborators shared by every ability of a Component.
// Effects, Strikes and Scripts may be nil.
type Deps struct {
	Clock   clock.Clock
	Roller  *dice.Roller
	Effects effect.Applier
	Strikes StrikeSink
	Scripts Preconditions
	Tuning  Tuning
	Logger  *zap.Logger
}

// Ability is the behaviour every capability shares.
type Ability interface {
	ID() string
	Kind() Kind
	// Active reports whether an instance is in flight.
	Active() bool
	// Cancel forces any in-flight instance to end with the fast blend-out.
	Cancel()
	Def() *Def
}

// Component owns one entity's ability state, tag set and abilities.
// It is not safe for concurrent use.
type Component struct {
	owner Owner
	deps  Deps
	state *State
	tags  *condition.Tags

	combo  *Combo
	guard  *Guard
	dodge  *Dodge
	skills map[string]*Skill
	all    []Ability
}

// NewComponent resolves loadout against catalog once and builds the
// abilities.
//
// Precondition: owner, deps.Clock, deps.Roller and deps.Logger must be non-nil.
// Postcondition: Returns an error if an id is unknown or a singleton kind
// (combo, guard, dodge) appears twice.
func NewComponent(owner Owner, catalog *Catalog, loadout []string, deps Deps) (*Component, error) {
	if owner == nil || deps.Clock == nil || deps.Roller == nil || deps.Logger == nil {
		panic("ability.NewComponent: owner, clock, roller and logger must not be nil")
	}
	c := &Component{
		owner:  owner,
		deps:   deps,
		state:  NewState(),
		tags:   condition.NewTags(),
		skills: make(map[string]*Skill),
	}
	for _, id := range loadout {
		def, ok := catalog.Get(id)
		if !ok {
			return nil, fmt.Errorf("ability %q: not in catalog", id)
		}
		var a Ability
		switch def.Kind {
		case KindCombo:
			if c.combo != nil {
				return nil, fmt.Errorf("ability %q: entity already has combo %q", id, c.combo.def.ID)
			}
			c.combo = &Combo{base: base{c: c, def: def}}
			a = c.combo
		case KindGuard:
			if c.guard != nil {
				return nil, fmt.Errorf("ability %q: entity already has guard %q", id, c.guard.def.ID)
			}
			c.guard = &Guard{base: base{c: c, def: def}}
			a = c.guard
		case KindDodge:
			if c.dodge != nil {
				return nil, fmt.Errorf("ability %q: entity already has dodge %q", id, c.dodge.def.ID)
			}
			c.dodge = &Dodge{base: base{c: c, def: def}}
			a = c.dodge
		case KindSkill:
			s := &Skill{base: base{c: c, def: def}}
			c.skills[id] = s
			a = s
		}
		c.all = append(c.all, a)
	}
	return c, nil
}

// Combo returns the combo ability, or nil.
func (c *Component) Combo() *Combo { return c.combo }

// Guard returns the guard ability, or nil.
func (c *Component) Guard() *Guard { return c.guard }

// Dodge returns the dodge ability, or nil.
func (c *Component) Dodge() *Dodge { return c.dodge }

// Skill returns the skill with id.
func (c *Component) Skill(id string) (*Skill, bool) {
	s, ok := c.skills[id]
	return s, ok
}

// SkillIDs returns the ids of every skill in the loadout, sorted.
func (c *Component) SkillIDs() []string {
	out := make([]string, 0, len(c.skills))
	for id := range c.skills {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// All returns every ability in loadout order.
func (c *Component) All() []Ability { return c.all }

// State returns the entity's ability state.
func (c *Component) State() *State { return c.state }

// Tags returns the counted in-flight tag set.
func (c *Component) Tags() *condition.Tags { return c.tags }

// SetArmed draws or sheathes the weapon.
func (c *Component) SetArmed(armed bool) {
	c.state.armed = armed
	if armed {
		_ = c.owner.Flags().Add(condition.Armed)
		return
	}
	c.owner.Flags().Remove(condition.Armed)
}

// UpdateRange feeds this tick's in-attack-range fact to the windup gate.
func (c *Component) UpdateRange(inRange bool) {
	t := c.deps.Tuning
	c.state.UpdateRange(inRange, c.now(), c.deps.Roller, t.WindupMin, t.WindupMax)
}

// AttackReady reports whether the cooldown and windup gates both pass.
func (c *Component) AttackReady() bool {
	return c.state.AttackReady(c.now())
}

// CancelTagged cancels every in-flight ability carrying tag.
func (c *Component) CancelTagged(tag string) {
	for _, a := range c.all {
		if a.Active() && c.carries(a, tag) {
			a.Cancel()
		}
	}
}

// CancelAll cancels every in-flight ability.
func (c *Component) CancelAll() {
	for _, a := range c.all {
		if a.Active() {
			a.Cancel()
		}
	}
}

// Reset cancels everything and returns state to spawn values. Armed is kept.
func (c *Component) Reset() {
	c.CancelAll()
	armed := c.state.armed
	c.state.Reset()
	c.state.armed = armed
	c.tags.Clear()
}

// Tick runs ability gating for this frame: flag expiry first, then
// per-ability timers.
func (c *Component) Tick() {
	now := c.now()
	flags := c.owner.Flags()
	flags.Expire(now)
	if c.dodge != nil {
		c.dodge.tick(now)
	}
	c.state.iFrameActive = flags.Has(condition.Invulnerable)
}

func (c *Component) carries(a Ability, tag string) bool {
	if a.Def().HasTag(tag) {
		return true
	}
	if cb, ok := a.(*Combo); ok && cb.cur != nil {
		return cb.cur.step.Tag == tag
	}
	return false
}

func (c *Component) now() time.Duration { return c.deps.Clock.Now() }

func (c *Component) blendOut(cancelled bool) time.Duration {
	if cancelled {
		return c.deps.Tuning.CancelBlendOut
	}
	return c.deps.Tuning.BlendOut
}

// base carries what every ability shares.
type base struct {
	c   *Component
	def *Def
}

func (b *base) ID() string { return b.def.ID }
func (b *base) Kind() Kind { return b.def.Kind }
func (b *base) Def() *Def  { return b.def }

// gate runs the Idle → Activating checks shared by every ability.
// It reports whether activation may proceed; nothing is mutated.
func (b *base) gate(cost float64) bool {
	c := b.c
	log := c.deps.Logger.With(zap.String("entity", c.owner.ID()), zap.String("ability", b.def.ID))
	st := c.owner.Stats()
	if st == nil {
		log.Debug("ability refused: no stat block")
		return false
	}
	flags := c.owner.Flags()
	if id, blocked := flags.FirstPresent(b.def.BlockedBy); blocked {
		log.Debug("ability refused: blocked", zap.String("flag", id))
		return false
	}
	if b.def.Action != "" && condition.IsActionRestricted(flags, b.def.Action) {
		log.Debug("ability refused: action restricted", zap.String("action", b.def.Action))
		return false
	}
	if b.def.RequiresArmed && !c.state.armed {
		log.Debug("ability refused: unarmed")
		return false
	}
	if !st.CanAfford(cost) {
		log.Debug("ability refused: cannot afford", zap.Float64("cost", cost), zap.Float64("sp", st.SP()))
		return false
	}
	return true
}

// commit deducts cost exactly once.
func (b *base) commit(cost float64) {
	if cost <= 0 {
		return
	}
	c := b.c
	effect.Apply(c.deps.Effects, c.owner.ID(), c.owner.Stats(), stats.AttrSP, -cost)
}

// enter registers tags and the attacking flag for an activation. It fails,
// leaving nothing registered, if the attacking flag is refused.
func (b *base) enter(extra ...string) bool {
	c := b.c
	if b.def.HasTag(TagAttack) {
		if err := c.owner.Flags().Add(condition.Attacking); err != nil {
			c.deps.Logger.Debug("ability refused",
				zap.String("entity", c.owner.ID()),
				zap.String("ability", b.def.ID),
				zap.Error(err),
			)
			return false
		}
	}
	c.tags.Add(b.def.Tags...)
	c.tags.Add(extra...)
	if b.def.FullBody {
		c.state.pushFullBody()
	}
	return true
}

// exit releases what enter registered.
func (b *base) exit(extra ...string) {
	c := b.c
	c.tags.Remove(b.def.Tags...)
	c.tags.Remove(extra...)
	if b.def.FullBody {
		c.state.popFullBody()
	}
	if !c.tags.Has(TagAttack) {
		c.owner.Flags().Remove(condition.Attacking)
	}
}

func (b *base) cancelOthers() {
	for _, tag := range b.def.Cancels {
		b.c.CancelTagged(tag)
	}
}

func (b *base) strike(h HitSpec, tag string) {
	c := b.c
	s := Strike{
		Attacker:   c.owner.ID(),
		Ability:    b.def.ID,
		Tag:        tag,
		PowerScale: h.PowerScale,
		Kind:       h.Kind(),
		Reach:      h.Reach,
		Arc:        h.Arc,
		Reaction:   h.Reaction,
	}
	if c.deps.Strikes == nil {
		c.deps.Logger.Debug("strike dropped: no sink", zap.String("entity", s.Attacker), zap.String("ability", s.Ability))
		return
	}
	c.deps.Strikes.Strike(s)
}
