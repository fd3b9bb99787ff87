package ai

import (
	"time"

	"github.com/cory-johannsen/skirmish/internal/game/clock"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

// Blackboard is the per-entity scratch space decision routines write and
// navigation reads.
type Blackboard struct {
	Target         string
	Destination    geom.Vec3
	HasDestination bool
	DestinationAt  time.Duration
	// Memory is an optional wander centre set by content or scripts.
	Memory    geom.Vec3
	HasMemory bool
	Decision  Decision
}

// NewBlackboard returns an empty blackboard.
func NewBlackboard() *Blackboard {
	return &Blackboard{DestinationAt: clock.Never}
}

// SetDestination overwrites the destination and stamps it with now.
func (b *Blackboard) SetDestination(p geom.Vec3, now time.Duration) {
	b.Destination = p
	b.HasDestination = true
	b.DestinationAt = now
}

// ClearDestination drops the destination.
func (b *Blackboard) ClearDestination() {
	b.HasDestination = false
	b.DestinationAt = clock.Never
}
