package ability

import (
	"time"

	"github.com/cory-johannsen/skirmish/internal/game/clock"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// State is the per-entity ability flag set and timer block. All timers are
// absolute simulation timestamps.
//
// Invariant: comboWindowOpen is false whenever no combo step is active.
// Invariant: bufferedInput implies comboWindowOpen was true when it was set.
type State struct {
	armed              bool
	guarding           bool
	comboWindowOpen    bool
	bufferedInput      bool
	iFrameActive       bool
	canHitReact        bool
	forceFullBodyCount int

	nextAttackAllowed   time.Duration
	enterRangeTime      time.Duration
	currentWindup       time.Duration
	hitReactCooldownEnd time.Duration
}

// NewState returns a State for a freshly spawned entity.
func NewState() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset returns every flag and timer to its spawn value.
func (s *State) Reset() {
	*s = State{
		canHitReact:    true,
		enterRangeTime: clock.Never,
	}
}

// Flag and timer accessors. CanHitReact is also false while any ability
// forces a full-body animation.

func (s *State) Armed() bool                        { return s.armed }
func (s *State) Guarding() bool                     { return s.guarding }
func (s *State) ComboWindowOpen() bool              { return s.comboWindowOpen }
func (s *State) BufferedInput() bool                { return s.bufferedInput }
func (s *State) IFrameActive() bool                 { return s.iFrameActive }
func (s *State) CanHitReact() bool                  { return s.canHitReact && s.forceFullBodyCount == 0 }
func (s *State) ForceFullBodyCount() int            { return s.forceFullBodyCount }
func (s *State) NextAttackAllowed() time.Duration   { return s.nextAttackAllowed }
func (s *State) EnterRangeTime() time.Duration      { return s.enterRangeTime }
func (s *State) CurrentWindup() time.Duration       { return s.currentWindup }
func (s *State) HitReactCooldownEnd() time.Duration { return s.hitReactCooldownEnd }

// SetCanHitReact toggles whether hit reactions may play.
func (s *State) SetCanHitReact(v bool) { s.canHitReact = v }

// SetHitReactCooldown records when the next hit reaction may play.
func (s *State) SetHitReactCooldown(end time.Duration) { s.hitReactCooldownEnd = end }

// HitReactReady reports whether the post-reaction cooldown has elapsed.
func (s *State) HitReactReady(now time.Duration) bool { return now >= s.hitReactCooldownEnd }

func (s *State) pushFullBody() { s.forceFullBodyCount++ }

func (s *State) popFullBody() {
	if s.forceFullBodyCount > 0 {
		s.forceFullBodyCount--
	}
}

func (s *State) openWindow() { s.comboWindowOpen = true }

func (s *State) closeWindow() { s.comboWindowOpen = false }

// buffer records a combo input. It fails unless the window is open.
func (s *State) buffer() bool {
	if !s.comboWindowOpen {
		return false
	}
	s.bufferedInput = true
	return true
}

// consumeBuffer clears the buffered input and reports whether one was set.
func (s *State) consumeBuffer() bool {
	had := s.bufferedInput
	s.bufferedInput = false
	return had
}

func (s *State) clearCombo() {
	s.comboWindowOpen = false
	s.bufferedInput = false
}

// CooldownReady reports whether a new attack may start at now.
func (s *State) CooldownReady(now time.Duration) bool {
	return now >= s.nextAttackAllowed
}

// BlockAttacksUntil pushes nextAttackAllowed out to t. It never shortens an
// existing block.
func (s *State) BlockAttacksUntil(t time.Duration) {
	if t > s.nextAttackAllowed {
		s.nextAttackAllowed = t
	}
}

// OnAttack records a started attack.
//
// Postcondition: NextAttackAllowed() == now + cooldown.
func (s *State) OnAttack(now, cooldown time.Duration) {
	s.nextAttackAllowed = now + cooldown
}

// UpdateRange feeds the attack-range fact for this tick. The first tick in
// range records the entry time and samples a windup in [min, max]; leaving
// range unsets the entry time so the next entry resamples.
func (s *State) UpdateRange(inRange bool, now time.Duration, roller *dice.Roller, min, max time.Duration) {
	if !inRange {
		s.enterRangeTime = clock.Never
		return
	}
	if s.enterRangeTime != clock.Never {
		return
	}
	s.enterRangeTime = now
	s.currentWindup = time.Duration(roller.Uniform("windup", float64(min), float64(max)))
}

// WindupElapsed reports whether the entity has been in range for at least
// the sampled windup.
func (s *State) WindupElapsed(now time.Duration) bool {
	if s.enterRangeTime == clock.Never {
		return false
	}
	return now-s.enterRangeTime >= s.currentWindup
}

// AttackReady combines the cooldown and windup gates used by AI attackers.
func (s *State) AttackReady(now time.Duration) bool {
	return s.CooldownReady(now) && s.WindupElapsed(now)
}
