package ability

import (
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/anim"
)

// Skill is a one-shot ability with its own cooldown and an optional
// scripted precondition.
type Skill struct {
	base
	active     bool
	gen        int
	readyAt    time.Duration
	superArmor bool
}

// Active implements Ability.
func (s *Skill) Active() bool { return s.active }

// ReadyAt returns when the skill comes off cooldown.
func (s *Skill) ReadyAt() time.Duration { return s.readyAt }

// Activate fires the skill.
//
// Postcondition: Returns false with no mutation while on cooldown, when
// refused by flags or resources, or when the precondition hook fails or no
// script host is available for it.
func (s *Skill) Activate() bool {
	c := s.c
	now := c.now()
	if s.active || now < s.readyAt || !s.gate(s.def.Cost) {
		return false
	}
	player := c.owner.Animator()
	if player == nil {
		c.deps.Logger.Debug("skill refused: no animator", zap.String("entity", c.owner.ID()))
		return false
	}
	if !s.precondition() {
		return false
	}
	s.cancelOthers()
	if !s.enter() {
		return false
	}
	s.commit(s.def.Cost)
	s.gen++
	gen := s.gen
	s.active = true
	if s.def.SuperArmor && c.state.canHitReact {
		s.superArmor = true
		c.state.canHitReact = false
	}
	if _, ok := player.Play(s.def.Clip, anim.HandlerFuncs{
		Notify: func(event string) {
			if event == anim.EventHit && s.active && s.gen == gen {
				s.strike(s.def.Hit, s.def.ID)
			}
		},
		Ended: func(interrupted bool) {
			if s.active && s.gen == gen {
				s.finish(interrupted)
			}
		},
	}); !ok {
		s.finish(true)
		return false
	}
	s.readyAt = now + s.def.Cooldown
	c.deps.Logger.Debug("skill started", zap.String("entity", c.owner.ID()), zap.String("skill", s.def.ID))
	return true
}

func (s *Skill) precondition() bool {
	hook := s.def.Precondition
	if hook == "" {
		return true
	}
	c := s.c
	if c.deps.Scripts == nil {
		c.deps.Logger.Debug("skill refused: no script host", zap.String("skill", s.def.ID))
		return false
	}
	st := c.owner.Stats()
	snap := Snapshot{
		Owner: c.owner.ID(),
		HP:    st.HP(),
		MaxHP: st.MaxHP(),
		SP:    st.SP(),
		MaxSP: st.MaxSP(),
		Flags: c.owner.Flags().All(),
	}
	if !c.deps.Scripts.Check(hook, snap) {
		c.deps.Logger.Debug("skill refused: precondition", zap.String("skill", s.def.ID), zap.String("hook", hook))
		return false
	}
	return true
}

// Cancel implements Ability.
func (s *Skill) Cancel() {
	if !s.active {
		return
	}
	s.finish(true)
	if p := s.c.owner.Animator(); p != nil && p.Current() == s.def.Clip {
		p.Stop(s.def.Clip, s.c.blendOut(true))
	}
}

func (s *Skill) finish(interrupted bool) {
	c := s.c
	s.active = false
	if s.superArmor {
		s.superArmor = false
		c.state.canHitReact = true
	}
	s.exit()
	c.deps.Logger.Debug("skill ended",
		zap.String("entity", c.owner.ID()),
		zap.String("skill", s.def.ID),
		zap.Bool("interrupted", interrupted),
	)
}
