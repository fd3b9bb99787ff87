package ability

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/condition"
)

// Guard is a held ability: active from Start until Stop.
type Guard struct {
	base
	active bool
}

// Active implements Ability.
func (g *Guard) Active() bool { return g.active }

// Start raises the guard. In-flight attack abilities are cancelled first,
// the guarding flag is set, and the owner turns to face the camera yaw.
//
// Postcondition: Returns false and changes nothing if the guard is already up
// or activation is refused.
func (g *Guard) Start() bool {
	if g.active || !g.gate(g.def.Cost) {
		return false
	}
	c := g.c
	c.CancelTagged(TagAttack)
	g.cancelOthers()
	if err := c.owner.Flags().Add(condition.Guarding); err != nil {
		c.deps.Logger.Debug("guard refused", zap.String("entity", c.owner.ID()), zap.Error(err))
		return false
	}
	if !g.enter() {
		c.owner.Flags().Remove(condition.Guarding)
		return false
	}
	g.commit(g.def.Cost)
	g.active = true
	c.state.guarding = true
	c.owner.SetOrientation(OrientToCamera)
	c.deps.Logger.Debug("guard up", zap.String("entity", c.owner.ID()))
	return true
}

// Stop lowers the guard and restores movement-facing orientation. Stopping
// a lowered guard is a no-op.
func (g *Guard) Stop() {
	if !g.active {
		return
	}
	c := g.c
	g.active = false
	c.state.guarding = false
	c.owner.Flags().Remove(condition.Guarding)
	g.exit()
	c.owner.SetOrientation(OrientToMovement)
	c.deps.Logger.Debug("guard down", zap.String("entity", c.owner.ID()))
}

// Cancel implements Ability.
func (g *Guard) Cancel() { g.Stop() }
