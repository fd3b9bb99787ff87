package ability

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/anim"
)

// Phase is the lifecycle position of one combo step instance.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseActivating
	PhaseCommitted
	PhasePlaying
	PhaseWindowOpen
	PhaseChaining
	PhaseEnding
)

var phaseNames = [...]string{"idle", "activating", "committed", "playing", "window_open", "chaining", "ending"}

// String returns a human-readable phase label.
func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// stepInstance is one running combo step.
type stepInstance struct {
	index        int
	step         Step
	phase        Phase
	windowClosed bool
}

// Combo chains its steps in order. At most one step instance is live; a
// chained step starts before its predecessor releases its tags.
type Combo struct {
	base
	cur *stepInstance
}

// Active implements Ability.
func (cb *Combo) Active() bool { return cb.cur != nil }

// Phase returns the live step's phase, or PhaseIdle.
func (cb *Combo) Phase() Phase {
	if cb.cur == nil {
		return PhaseIdle
	}
	return cb.cur.phase
}

// Step returns the live step index, or -1.
func (cb *Combo) Step() int {
	if cb.cur == nil {
		return -1
	}
	return cb.cur.index
}

// Input handles one attack press. With no live step it starts step 0 when
// the attack cooldown allows; with a live step it buffers the press if the
// combo window is open and a next step exists. Presses outside the window
// are dropped.
func (cb *Combo) Input() bool {
	c := cb.c
	if cb.cur == nil {
		now := c.now()
		if !c.state.CooldownReady(now) {
			c.deps.Logger.Debug("combo refused: attack cooldown",
				zap.String("entity", c.owner.ID()),
				zap.Duration("next_allowed", c.state.nextAttackAllowed),
			)
			return false
		}
		if !cb.activate(0) {
			return false
		}
		c.state.OnAttack(now, c.deps.Tuning.AttackCooldown)
		return true
	}
	if cb.cur.index+1 >= len(cb.def.Steps) {
		return false
	}
	return c.state.buffer()
}

// Cancel implements Ability.
func (cb *Combo) Cancel() {
	if cb.cur != nil {
		cb.finish(cb.cur, true)
	}
}

// activate runs Idle → Activating → Committed → Playing for step i.
func (cb *Combo) activate(i int) bool {
	c := cb.c
	step := cb.def.Steps[i]
	inst := &stepInstance{index: i, step: step, phase: PhaseActivating}
	cost := cb.def.Cost + step.Cost
	if !cb.gate(cost) {
		return false
	}
	player := c.owner.Animator()
	if player == nil {
		c.deps.Logger.Debug("combo refused: no animator", zap.String("entity", c.owner.ID()))
		return false
	}
	if i == 0 {
		cb.cancelOthers()
	}
	if !cb.enter(step.Tag) {
		return false
	}
	inst.phase = PhaseCommitted
	cb.commit(cost)

	prev := cb.cur
	cb.cur = inst
	if _, ok := player.Play(step.Clip, cb.handler(inst)); !ok {
		cb.cur = prev
		inst.phase = PhaseIdle
		cb.exit(step.Tag)
		c.deps.Logger.Debug("combo aborted: clip unavailable",
			zap.String("entity", c.owner.ID()),
			zap.String("clip", step.Clip),
		)
		return false
	}
	inst.phase = PhasePlaying
	c.deps.Logger.Debug("combo step started",
		zap.String("entity", c.owner.ID()),
		zap.String("tag", step.Tag),
		zap.Int("step", i),
	)
	return true
}

func (cb *Combo) handler(inst *stepInstance) anim.Handler {
	return anim.HandlerFuncs{
		Notify: func(event string) { cb.onNotify(inst, event) },
		Ended:  func(interrupted bool) { cb.onEnded(inst, interrupted) },
	}
}

func (cb *Combo) onNotify(inst *stepInstance, event string) {
	st := cb.c.state
	switch event {
	case anim.EventWindowOpen:
		if inst.phase == PhasePlaying && !inst.windowClosed {
			inst.phase = PhaseWindowOpen
			st.openWindow()
		}
	case anim.EventWindowClose:
		if inst.phase != PhaseWindowOpen {
			return
		}
		inst.windowClosed = true
		if st.bufferedInput {
			cb.chain(inst)
			return
		}
		inst.phase = PhasePlaying
		st.closeWindow()
	case anim.EventHit:
		if inst.phase == PhasePlaying || inst.phase == PhaseWindowOpen {
			cb.strike(inst.step.Hit, inst.step.Tag)
		}
	}
}

func (cb *Combo) onEnded(inst *stepInstance, interrupted bool) {
	switch inst.phase {
	case PhaseChaining, PhaseEnding, PhaseIdle:
		return
	}
	if !interrupted && cb.c.state.bufferedInput && !inst.windowClosed {
		cb.chain(inst)
		return
	}
	cb.finish(inst, interrupted)
}

// chain consumes the buffer, starts the next step, and ends inst.
func (cb *Combo) chain(inst *stepInstance) {
	st := cb.c.state
	inst.phase = PhaseChaining
	st.consumeBuffer()
	st.closeWindow()
	if inst.index+1 < len(cb.def.Steps) {
		cb.activate(inst.index + 1)
	}
	cb.finish(inst, false)
}

// finish runs Ending → Idle for inst.
func (cb *Combo) finish(inst *stepInstance, cancelled bool) {
	c := cb.c
	inst.phase = PhaseEnding
	cb.exit(inst.step.Tag)
	if cb.cur == inst {
		cb.cur = nil
		c.state.clearCombo()
	}
	if p := c.owner.Animator(); p != nil && p.Current() == inst.step.Clip && cb.cur == nil {
		p.Stop(inst.step.Clip, c.blendOut(cancelled))
	}
	inst.phase = PhaseIdle
	c.deps.Logger.Debug("combo step ended",
		zap.String("entity", c.owner.ID()),
		zap.String("tag", inst.step.Tag),
		zap.Bool("cancelled", cancelled),
	)
}
