// Package effect is the stat-mutation collaborator. The combat core hands it
// (target, attribute, delta) and never writes stat fields itself while one
// is present.
package effect

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/stats"
)

// Change describes one mutation request and its outcome.
type Change struct {
	Target    string
	Attribute stats.Attribute
	Requested float64
	// Applied is the delta actually stored after clamping; 0 when Predicted.
	Applied float64
	// Value is the attribute value after the change.
	Value float64
	// Predicted marks a change observed on a non-authoritative host that
	// was not applied.
	Predicted bool
}

// Observer is notified of every change, applied or predicted.
type Observer interface {
	OnChange(Change)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Change)

func (f ObserverFunc) OnChange(c Change) { f(c) }

// Applier applies a delta to one attribute of one entity.
//
// Postcondition: ok is false and nothing is mutated if the target is unknown
// or mutation is not permitted.
type Applier interface {
	Apply(target string, attr stats.Attribute, delta float64) (applied float64, ok bool)
}

// StatSource resolves entity ids to their stat blocks.
type StatSource interface {
	Stats(id string) (*stats.Block, bool)
}

// StatApplier mutates stat blocks looked up through a StatSource.
type StatApplier struct {
	src       StatSource
	logger    *zap.Logger
	observers []Observer
}

// NewStatApplier creates a StatApplier.
//
// Precondition: src and logger must be non-nil.
func NewStatApplier(src StatSource, logger *zap.Logger, observers ...Observer) *StatApplier {
	if src == nil || logger == nil {
		panic("effect.NewStatApplier: src and logger must not be nil")
	}
	return &StatApplier{src: src, logger: logger, observers: observers}
}

// Apply implements Applier. Values are clamped by the stat block.
func (a *StatApplier) Apply(target string, attr stats.Attribute, delta float64) (float64, bool) {
	block, ok := a.src.Stats(target)
	if !ok {
		a.logger.Debug("effect target not found", zap.String("target", target))
		return 0, false
	}
	applied := block.Add(attr, delta)
	c := Change{
		Target:    target,
		Attribute: attr,
		Requested: delta,
		Applied:   applied,
		Value:     block.Get(attr),
	}
	a.logger.Debug("effect applied",
		zap.String("target", target),
		zap.Stringer("attribute", attr),
		zap.Float64("requested", delta),
		zap.Float64("applied", applied),
		zap.Float64("value", c.Value),
	)
	notify(a.observers, c)
	return applied, true
}

// AuthorityGate wraps an Applier so only an authoritative host mutates
// state. A non-authoritative gate reports each request to its observers as
// a predicted change and refuses it.
type AuthorityGate struct {
	inner         Applier
	authoritative bool
	observers     []Observer
}

// NewAuthorityGate wraps inner.
//
// Precondition: inner must be non-nil.
func NewAuthorityGate(inner Applier, authoritative bool, observers ...Observer) *AuthorityGate {
	if inner == nil {
		panic("effect.NewAuthorityGate: inner must not be nil")
	}
	return &AuthorityGate{inner: inner, authoritative: authoritative, observers: observers}
}

// Authoritative reports whether this gate lets mutations through.
func (g *AuthorityGate) Authoritative() bool { return g.authoritative }

// Apply implements Applier.
func (g *AuthorityGate) Apply(target string, attr stats.Attribute, delta float64) (float64, bool) {
	if g.authoritative {
		return g.inner.Apply(target, attr, delta)
	}
	notify(g.observers, Change{Target: target, Attribute: attr, Requested: delta, Predicted: true})
	return 0, false
}

// Apply routes delta through a when it is non-nil, and otherwise mutates
// block directly. It returns the applied delta.
func Apply(a Applier, target string, block *stats.Block, attr stats.Attribute, delta float64) float64 {
	if a != nil {
		applied, _ := a.Apply(target, attr, delta)
		return applied
	}
	if block == nil {
		return 0
	}
	return block.Add(attr, delta)
}

func notify(observers []Observer, c Change) {
	for _, o := range observers {
		o.OnChange(c)
	}
}
