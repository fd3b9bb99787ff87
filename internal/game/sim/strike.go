package sim

import (
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/ability"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/condition"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
	"github.com/cory-johannsen/skirmish/internal/game/hitreact"
	"github.com/cory-johannsen/skirmish/internal/game/stats"
)

// Strike implements ability.StrikeSink. Every living hostile inside the
// strike's reach and arc is resolved independently.
func (w *World) Strike(s ability.Strike) {
	att, ok := w.byID[s.Attacker]
	if !ok || att.dead {
		return
	}
	victims := 0
	for _, v := range append([]*Entity(nil), w.order...) {
		if v == att || v.dead || v.tmpl.Team == att.tmpl.Team {
			continue
		}
		if !w.inStrikeArea(att, v, s) {
			continue
		}
		victims++
		if v.flags.Has(condition.Invulnerable) {
			w.tally.Evaded++
			w.logger.Debug("strike evaded",
				zap.String("attacker", att.id),
				zap.String("defender", v.id),
				zap.String("ability", s.Ability),
			)
			continue
		}
		w.resolveHit(att, v, s)
	}
	if victims == 0 {
		w.logger.Debug("strike whiffed", zap.String("attacker", att.id), zap.String("ability", s.Ability))
	}
}

// inStrikeArea reports whether v's body overlaps the strike cone.
func (w *World) inStrikeArea(att, v *Entity, s ability.Strike) bool {
	to := v.loc.Sub(att.loc)
	dist := to.Size2D()
	if dist > s.Reach+w.cfg.Arena.AgentRadius {
		return false
	}
	if dist < geom.NearlyZero || s.Arc >= 360 {
		return true
	}
	return math.Abs(geom.SignedAngle(att.fwd, to)) <= s.Arc/2
}

// resolveHit runs the damage pipeline for one defender, applies the HP delta
// through the authority gate, and then either kills the defender or asks it
// to react.
func (w *World) resolveHit(att, v *Entity, s ability.Strike) {
	res := w.resolver.Resolve(combat.Request{
		Attacker:         att.stats,
		AttackerLocation: att.loc,
		Defender:         v.stats,
		Stance: combat.GuardStance{
			Guarding: v.comp.State().Guarding(),
			Location: v.loc,
			Forward:  v.fwd,
		},
		PowerScale: s.PowerScale,
		Kind:       s.Kind,
	})
	if res.Final <= 0 {
		return
	}
	w.tally.Hits++
	if res.Critical {
		w.tally.Criticals++
	}
	if res.Guarded {
		w.tally.Guarded++
	}
	applied, _ := w.gate.Apply(v.id, stats.AttrHP, -res.Final)
	w.tally.Damage -= applied
	w.logger.Debug("hit resolved",
		zap.String("attacker", att.id),
		zap.String("defender", v.id),
		zap.String("ability", s.Ability),
		zap.String("tag", s.Tag),
		zap.Float64("raw", res.Raw),
		zap.Bool("critical", res.Critical),
		zap.Float64("after_defense", res.AfterDefense),
		zap.Bool("guarded", res.Guarded),
		zap.Float64("final", res.Final),
		zap.Float64("hp", v.stats.HP()),
	)
	if v.stats.IsDepleted() {
		w.kill(v, att)
		return
	}

	impact := v.loc
	if dir := att.loc.Sub(v.loc).Normal2D(); !dir.IsNearlyZero() {
		impact = v.loc.Add(dir.Scale(w.cfg.Arena.AgentRadius))
	}
	w.reactor.OnGotHit(v, hitreact.Hit{
		Damage: res.Final,
		Instigator: &hitreact.Instigator{
			ID:       att.id,
			Location: att.loc,
			Forward:  att.fwd,
		},
		ImpactPoint: impact,
		Tag:         s.Reaction,
	})
	if v.brain != nil && w.Authoritative() {
		v.brain.NotifyHit(att.id)
	}
}

// kill handles death: abilities cancelled and state reset, every flag but
// dead cleared, aggro dropped, and a respawn scheduled.
func (w *World) kill(v, killer *Entity) {
	now := w.clock.Now()
	v.dead = true
	v.diedAt = now
	v.comp.Reset()
	v.flags.Clear()
	_ = v.flags.Add(condition.Dead)
	if v.brain != nil {
		v.brain.Reset()
	}
	w.agents.Clear(v.id)
	v.vel, v.impulse, v.input = geom.Vec3{}, geom.Vec3{}, geom.Vec3{}
	delay := w.respawns.ResolvedDelay(v.tmpl.ID, v.group)
	w.respawns.Schedule(v.tmpl.ID, v.group, now, delay)
	w.tally.Deaths++
	w.logger.Info("combatant died",
		zap.String("entity", v.id),
		zap.String("template", v.tmpl.ID),
		zap.String("killer", killer.id),
		zap.Duration("respawn_in", delay),
	)
}
