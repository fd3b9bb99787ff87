// Package sim is the in-process simulation host. It owns entities, a
// monotonic simulation clock, the arena navigator and the AI controllers,
// and advances them with a fixed step. Strikes are routed through the World,
// which asks each defender to apply its own mutation.
package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/ability"
	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/anim"
	"github.com/cory-johannsen/skirmish/internal/game/clock"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/condition"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/effect"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/hitreact"
	"github.com/cory-johannsen/skirmish/internal/game/nav"
	"github.com/cory-johannsen/skirmish/internal/game/npc"
	"github.com/cory-johannsen/skirmish/internal/game/stats"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// numbersCapacity bounds the undrained floating-number queue.
const numbersCapacity = 256

// Options configures a World.
type Options struct {
	Config   Config
	Damage   combat.Tuning
	Combo    ability.Tuning
	HitReact hitreact.Tuning
	Content  *Content
	Roller   *dice.Roller
	// Scripts may be nil; skills with a precondition are then refused.
	Scripts *scripting.Manager
	// Clock, when set, becomes the simulation clock so callers can share it
	// before the world exists. It must not be advanced by anyone else.
	Clock  *clock.Manual
	Logger *zap.Logger
}

// Tally counts what happened over a world's lifetime.
type Tally struct {
	Spawns    int
	Deaths    int
	Hits      int
	Criticals int
	Guarded   int
	Evaded    int
	Damage    float64
}

// World is the simulation host. It is not safe for concurrent use; one
// goroutine owns it.
type World struct {
	cfg       Config
	content   *Content
	clock     *clock.Manual
	roller    *dice.Roller
	logger    *zap.Logger
	agents    *nav.Agents
	resolver  *combat.Resolver
	reactor   *hitreact.Resolver
	gate      *effect.AuthorityGate
	numbers   *effect.Numbers
	scripts   ability.Preconditions
	respawns  *npc.RespawnManager
	comboTune ability.Tuning

	order []*Entity
	byID  map[string]*Entity
	seq   int
	tally Tally
}

// NewWorld builds an empty world at simulation time zero.
//
// Precondition: opts.Content, opts.Roller and opts.Logger must be non-nil.
// Postcondition: Returns an error if any configuration section is invalid or
// the content references clips missing under opts.HitReact.
func NewWorld(opts Options) (*World, error) {
	if opts.Content == nil || opts.Roller == nil || opts.Logger == nil {
		panic("sim.NewWorld: content, roller and logger must not be nil")
	}
	for _, v := range []interface{ Validate() error }{opts.Config, opts.Damage, opts.Combo, opts.HitReact} {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("sim: %w", err)
		}
	}
	if err := opts.Content.Validate(opts.HitReact); err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	arena, err := nav.NewArena(opts.Config.Arena)
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.NewManual(0)
	}
	w := &World{
		cfg:       opts.Config,
		content:   opts.Content,
		clock:     clk,
		roller:    opts.Roller,
		logger:    opts.Logger,
		agents:    nav.NewAgents(arena),
		resolver:  combat.NewResolver(opts.Damage, opts.Roller, opts.Logger),
		reactor:   hitreact.NewResolver(opts.HitReact, clk, opts.Logger),
		numbers:   effect.NewNumbers(numbersCapacity),
		respawns:  npc.NewRespawnManager(opts.Content.Spawns, opts.Content.Templates),
		comboTune: opts.Combo,
		byID:      make(map[string]*Entity),
	}
	applier := effect.NewStatApplier(w, opts.Logger, w.numbers)
	w.gate = effect.NewAuthorityGate(applier, opts.Config.Authoritative, w.numbers)
	if opts.Scripts != nil {
		opts.Scripts.GetEntity = w.entityInfo
		w.scripts = &scriptHost{scripts: opts.Scripts, world: w}
	}
	return w, nil
}

// Now returns the simulation time.
func (w *World) Now() time.Duration { return w.clock.Now() }

// Clock returns the simulation clock.
func (w *World) Clock() clock.Clock { return w.clock }

// Authoritative reports whether this world mutates stats and aggro.
func (w *World) Authoritative() bool { return w.gate.Authoritative() }

// Tally returns the running counters.
func (w *World) Tally() Tally { return w.tally }

// Numbers returns the floating-number feed of applied and predicted changes.
func (w *World) Numbers() *effect.Numbers { return w.numbers }

// Respawns returns the respawn scheduler.
func (w *World) Respawns() *npc.RespawnManager { return w.respawns }

// Navigator returns the arena navigator.
func (w *World) Navigator() *nav.Agents { return w.agents }

// Entities returns live and dead entities in spawn order.
func (w *World) Entities() []*Entity {
	return append([]*Entity(nil), w.order...)
}

// Entity returns the entity with id.
func (w *World) Entity(id string) (*Entity, bool) { return w.entity(id) }

func (w *World) entity(id string) (*Entity, bool) {
	e, ok := w.byID[id]
	return e, ok
}

// Populate fills every encounter group up to its caps.
func (w *World) Populate() {
	for _, g := range w.respawns.Groups() {
		w.respawns.Populate(g, w)
	}
}

// Spawn implements npc.Population. The entity is placed at a random point
// within sp.Scatter of sp.Home, projected onto walkable ground.
func (w *World) Spawn(tmpl *npc.Template, sp npc.SpawnPoint) error {
	loc := sp.Home
	if sp.Scatter > 0 {
		yaw := w.roller.Uniform("spawn_yaw", 0, 360)
		r := w.roller.Uniform("spawn_radius", 0, sp.Scatter)
		loc = loc.Add(geom.FromYaw(yaw).Scale(r))
	}
	extent := math.Max(sp.Scatter, w.cfg.Arena.CellSize)
	loc, ok := w.agents.ProjectToWalkable(loc, extent)
	if !ok {
		return fmt.Errorf("spawn %s/%s: no walkable ground near %v", sp.Group, tmpl.ID, sp.Home)
	}

	w.seq++
	e := &Entity{
		world:    w,
		id:       uuid.NewString(),
		seq:      w.seq,
		tmpl:     tmpl,
		group:    sp.Group,
		home:     sp.Home,
		loc:      loc,
		fwd:      geom.Forward,
		stats:    stats.NewBlock(tmpl.Stats, w.resolver.Tuning().AttackSpread),
		flags:    condition.NewSet(w.content.Conditions),
		timeline: anim.NewTimeline(w.content.Clips, w.logger),
	}
	comp, err := ability.NewComponent(e, w.content.Abilities, tmpl.Abilities, ability.Deps{
		Clock:   w.clock,
		Roller:  w.roller,
		Effects: w.gate,
		Strikes: w,
		Scripts: w.scripts,
		Tuning:  w.comboTune,
		Logger:  w.logger,
	})
	if err != nil {
		return fmt.Errorf("spawn %s/%s: %w", sp.Group, tmpl.ID, err)
	}
	comp.SetArmed(tmpl.Armed)
	e.comp = comp
	if tmpl.AIProfile != "" {
		profile, ok := w.content.Profiles.Profile(tmpl.AIProfile)
		if !ok {
			return fmt.Errorf("spawn %s/%s: unknown ai profile %q", sp.Group, tmpl.ID, tmpl.AIProfile)
		}
		e.brain = ai.NewController(e, profile, ai.Deps{
			Clock:   w.clock,
			Roller:  w.roller,
			World:   w,
			Nav:     w.agents,
			Cadence: w.cfg.AI,
			Logger:  w.logger,
		})
	}
	w.order = append(w.order, e)
	w.byID[e.id] = e
	w.tally.Spawns++
	w.logger.Info("combatant spawned",
		zap.String("entity", e.id),
		zap.String("template", tmpl.ID),
		zap.String("group", sp.Group),
		zap.Float64("x", loc.X),
		zap.Float64("y", loc.Y),
	)
	return nil
}

// Count implements npc.Population; only living entities count.
func (w *World) Count(group, templateID string) int {
	n := 0
	for _, e := range w.order {
		if !e.dead && e.group == group && e.tmpl.ID == templateID {
			n++
		}
	}
	return n
}

// Step advances the world by dt: every entity frame, then AI decisions,
// then movement, then corpse cleanup and respawns.
//
// Precondition: dt > 0.
func (w *World) Step(dt time.Duration) {
	w.clock.Advance(dt)
	now := w.clock.Now()
	for _, e := range w.order {
		e.tick(now, dt)
	}
	if w.Authoritative() {
		for _, e := range w.order {
			if e.brain != nil {
				e.brain.Tick()
			}
		}
	}
	for _, e := range w.order {
		e.move(now, dt)
	}
	w.sweep(now)
	w.respawns.Tick(now, w)
}

// RunFor steps the world until d has elapsed.
func (w *World) RunFor(d time.Duration) {
	step := w.cfg.Step()
	for end := w.Now() + d; w.Now() < end; {
		w.Step(step)
	}
}

// sweep removes corpses older than the linger time.
func (w *World) sweep(now time.Duration) {
	kept := w.order[:0]
	for _, e := range w.order {
		if e.dead && now-e.diedAt >= w.cfg.CorpseLinger {
			delete(w.byID, e.id)
			w.agents.Clear(e.id)
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(w.order); i++ {
		w.order[i] = nil
	}
	w.order = kept
}

// Stats implements effect.StatSource.
func (w *World) Stats(id string) (*stats.Block, bool) {
	e, ok := w.byID[id]
	if !ok {
		return nil, false
	}
	return e.stats, true
}

// ProjectToWalkable implements ai.Perception.
func (w *World) ProjectToWalkable(p geom.Vec3, extent float64) (geom.Vec3, bool) {
	return w.agents.ProjectToWalkable(p, extent)
}

// Location implements ai.Perception.
func (w *World) Location(id string) (geom.Vec3, bool) {
	e, ok := w.byID[id]
	if !ok {
		return geom.Vec3{}, false
	}
	return e.loc, true
}

// IsAlive implements ai.Perception.
func (w *World) IsAlive(id string) bool {
	e, ok := w.byID[id]
	return ok && !e.dead
}

// Hostiles implements ai.Perception: every living entity on another team,
// in spawn order.
func (w *World) Hostiles(self string) []string {
	me, ok := w.byID[self]
	if !ok {
		return nil
	}
	var out []string
	for _, e := range w.order {
		if !e.dead && e.tmpl.Team != me.tmpl.Team {
			out = append(out, e.id)
		}
	}
	return out
}
