package ability

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/anim"
	"github.com/cory-johannsen/skirmish/internal/game/condition"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

// Direction is one of the eight 45° dodge sectors, clockwise from forward.
type Direction int

const (
	DirForward Direction = iota
	DirForwardRight
	DirRight
	DirBackRight
	DirBack
	DirBackLeft
	DirLeft
	DirForwardLeft
)

var directionSuffixes = [...]string{"f", "fr", "r", "br", "b", "bl", "l", "fl"}

// String returns the clip suffix for d.
func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionSuffixes) {
		return "unknown"
	}
	return directionSuffixes[d]
}

// DodgeVector picks the dodge heading: movement input, else the last
// non-zero input, else velocity, else facing. The result is never zero.
func DodgeVector(m Motion) geom.Vec3 {
	for _, v := range []geom.Vec3{m.Input, m.LastInput, m.Velocity, m.Forward} {
		if n := v.Normal2D(); !n.IsNearlyZero() {
			return n
		}
	}
	return geom.Forward
}

// Bucket maps dir to a sector relative to forward. Sectors are 45° wide and
// centred on their heading, so ±22.5° around forward is DirForward.
func Bucket(forward, dir geom.Vec3) Direction {
	angle := geom.SignedAngle(forward, dir)
	idx := int(math.Round(-angle / 45))
	return Direction(((idx % 8) + 8) % 8)
}

// Dodge is a one-shot roll with an invulnerability window.
type Dodge struct {
	base
	active      bool
	gen         int
	clip        string
	dir         Direction
	iframeStart time.Duration
	iframeEnd   time.Duration
	iframeOpen  bool
}

// Active implements Ability.
func (d *Dodge) Active() bool { return d.active }

// LastDirection returns the sector of the most recent dodge.
func (d *Dodge) LastDirection() Direction { return d.dir }

// Activate starts a dodge toward the owner's current movement heading.
//
// Postcondition: On success the dodging flag is set, the cost is deducted
// once, and the i-frame window is scheduled at iframe_offset.
func (d *Dodge) Activate() bool {
	if d.active || !d.gate(d.def.Cost) {
		return false
	}
	c := d.c
	player := c.owner.Animator()
	if player == nil {
		c.deps.Logger.Debug("dodge refused: no animator", zap.String("entity", c.owner.ID()))
		return false
	}
	m := c.owner.Motion()
	dir := Bucket(m.Forward, DodgeVector(m))
	clip := d.def.ClipPrefix + dir.String()
	if _, ok := player.Duration(clip); !ok {
		c.deps.Logger.Debug("dodge refused: clip unavailable", zap.String("clip", clip))
		return false
	}
	d.cancelOthers()
	if !d.enter() {
		return false
	}
	flags := c.owner.Flags()
	_ = flags.Add(condition.Dodging)
	d.commit(d.def.Cost)

	now := c.now()
	d.gen++
	gen := d.gen
	d.active = true
	d.clip, d.dir = clip, dir
	d.iframeStart = now + d.def.IFrameOffset
	d.iframeEnd = d.iframeStart + d.def.IFrameDuration
	d.iframeOpen = false
	if _, ok := player.Play(clip, anim.HandlerFuncs{
		Ended: func(interrupted bool) {
			if d.active && d.gen == gen {
				d.finish(interrupted)
			}
		},
	}); !ok {
		d.active = false
		flags.Remove(condition.Dodging)
		d.exit()
		return false
	}
	d.tick(now)
	c.deps.Logger.Debug("dodge started",
		zap.String("entity", c.owner.ID()),
		zap.Stringer("direction", dir),
	)
	return true
}

func (d *Dodge) tick(now time.Duration) {
	if !d.active || d.iframeOpen || d.def.IFrameDuration <= 0 || now < d.iframeStart {
		return
	}
	d.iframeOpen = true
	_ = d.c.owner.Flags().AddUntil(condition.Invulnerable, d.iframeEnd)
}

// Cancel implements Ability.
func (d *Dodge) Cancel() {
	if !d.active {
		return
	}
	d.finish(true)
	if p := d.c.owner.Animator(); p != nil && p.Current() == d.clip {
		p.Stop(d.clip, d.c.blendOut(true))
	}
}

func (d *Dodge) finish(interrupted bool) {
	c := d.c
	d.active = false
	flags := c.owner.Flags()
	flags.Remove(condition.Dodging)
	if interrupted && d.iframeOpen && c.now() < d.iframeEnd {
		flags.Remove(condition.Invulnerable)
	}
	d.exit()
	c.deps.Logger.Debug("dodge ended", zap.String("entity", c.owner.ID()), zap.Bool("interrupted", interrupted))
}
