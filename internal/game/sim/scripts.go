package sim

import (
	"github.com/cory-johannsen/skirmish/internal/game/ability"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// scriptHost adapts the Lua manager to ability.Preconditions.
type scriptHost struct {
	scripts *scripting.Manager
	world   *World
}

// Check implements ability.Preconditions.
func (h *scriptHost) Check(hook string, snap ability.Snapshot) bool {
	info := &scripting.EntityInfo{
		ID:    snap.Owner,
		HP:    snap.HP,
		MaxHP: snap.MaxHP,
		SP:    snap.SP,
		MaxSP: snap.MaxSP,
		Flags: snap.Flags,
	}
	if e, ok := h.world.entity(snap.Owner); ok {
		info.Team = e.tmpl.Team
	}
	return h.scripts.Check(hook, info)
}

// entityInfo backs engine.entity.get.
func (w *World) entityInfo(id string) *scripting.EntityInfo {
	e, ok := w.byID[id]
	if !ok {
		return nil
	}
	return &scripting.EntityInfo{
		ID:    e.id,
		Team:  e.tmpl.Team,
		HP:    e.stats.HP(),
		MaxHP: e.stats.MaxHP(),
		SP:    e.stats.SP(),
		MaxSP: e.stats.MaxSP(),
		Flags: e.flags.All(),
	}
}
