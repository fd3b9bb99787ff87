package anim

import (
	"time"

	"go.uber.org/zap"
)

// Handler receives the events of one clip playback. OnEnded is delivered
// exactly once per successful Play.
type Handler interface {
	OnNotify(event string)
	OnEnded(interrupted bool)
}

// HandlerFuncs adapts plain functions to Handler. Nil fields are skipped.
type HandlerFuncs struct {
	Notify func(event string)
	Ended  func(interrupted bool)
}

func (h HandlerFuncs) OnNotify(event string) {
	if h.Notify != nil {
		h.Notify(event)
	}
}

func (h HandlerFuncs) OnEnded(interrupted bool) {
	if h.Ended != nil {
		h.Ended(interrupted)
	}
}

// Player is the animation-playback collaborator consumed by the combat core.
type Player interface {
	// Play starts clip, interrupting whatever is playing. It returns the clip
	// duration, or false if the clip is unknown.
	Play(clip string, h Handler) (time.Duration, bool)
	// Stop ends clip as interrupted with the given blend-out. Stopping a clip
	// that is not current is a no-op.
	Stop(clip string, blendOut time.Duration)
	// Duration reports the length of clip.
	Duration(clip string) (time.Duration, bool)
	// Current returns the id of the playing clip, or "".
	Current() string
}

type playback struct {
	clip    *Clip
	handler Handler
	pos     time.Duration
	next    int
}

// Timeline plays clips for one entity. Time only moves through Advance, so
// callers apply any time dilation to dt before passing it in.
// Timeline is not safe for concurrent use.
type Timeline struct {
	lib    *Library
	logger *zap.Logger
	cur    *playback

	lastStopped  string
	lastBlendOut time.Duration
}

// NewTimeline creates an idle Timeline over lib.
//
// Precondition: lib and logger must be non-nil.
func NewTimeline(lib *Library, logger *zap.Logger) *Timeline {
	if lib == nil || logger == nil {
		panic("anim.NewTimeline: lib and logger must not be nil")
	}
	return &Timeline{lib: lib, logger: logger}
}

// Play implements Player.
func (t *Timeline) Play(clip string, h Handler) (time.Duration, bool) {
	c, ok := t.lib.Get(clip)
	if !ok {
		t.logger.Debug("clip not found", zap.String("clip", clip))
		return 0, false
	}
	if h == nil {
		h = HandlerFuncs{}
	}
	prev := t.cur
	t.cur = &playback{clip: c, handler: h}
	t.logger.Debug("clip play", zap.String("clip", clip), zap.Duration("duration", c.Duration))
	if prev != nil {
		prev.handler.OnEnded(true)
	}
	return c.Duration, true
}

// Stop implements Player.
func (t *Timeline) Stop(clip string, blendOut time.Duration) {
	p := t.cur
	if p == nil || p.clip.ID != clip {
		return
	}
	t.cur = nil
	t.lastStopped, t.lastBlendOut = clip, blendOut
	t.logger.Debug("clip stop", zap.String("clip", clip), zap.Duration("blend_out", blendOut))
	p.handler.OnEnded(true)
}

// Duration implements Player.
func (t *Timeline) Duration(clip string) (time.Duration, bool) {
	c, ok := t.lib.Get(clip)
	if !ok {
		return 0, false
	}
	return c.Duration, true
}

// Current implements Player.
func (t *Timeline) Current() string {
	if t.cur == nil {
		return ""
	}
	return t.cur.clip.ID
}

// Position returns how far into the current clip playback is.
func (t *Timeline) Position() time.Duration {
	if t.cur == nil {
		return 0
	}
	return t.cur.pos
}

// LastStop returns the clip most recently ended by Stop and its blend-out.
func (t *Timeline) LastStop() (string, time.Duration) {
	return t.lastStopped, t.lastBlendOut
}

// Advance moves the current clip forward by dt, delivering every event whose
// offset has been reached, then the end event if the clip finished.
// A handler that starts or stops a clip from inside a callback ends delivery
// for the old playback.
//
// Precondition: dt >= 0.
func (t *Timeline) Advance(dt time.Duration) {
	p := t.cur
	if p == nil {
		return
	}
	p.pos += dt
	for p.next < len(p.clip.Events) && p.clip.Events[p.next].At <= p.pos {
		ev := p.clip.Events[p.next]
		p.next++
		p.handler.OnNotify(ev.Name)
		if t.cur != p {
			return
		}
	}
	if p.pos >= p.clip.Duration {
		t.cur = nil
		t.logger.Debug("clip ended", zap.String("clip", p.clip.ID))
		p.handler.OnEnded(false)
	}
}
