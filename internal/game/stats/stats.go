// Package stats holds the per-entity Stat Block: current and maximum
// resources, offensive and defensive ratings, and the derived attack ranges.
package stats

import (
	"fmt"
	"math"
)

// Attribute identifies one field of a Block. It is the attribute id handed
// to the effect collaborator.
type Attribute int

const (
	AttrUnknown Attribute = iota // zero value; intentionally invalid
	AttrHP
	AttrMaxHP
	AttrSP
	AttrMaxSP
	AttrAttackPower
	AttrMagicPower
	AttrDefense
	AttrMagicResist
	AttrCriticalRate
	AttrCriticalDamage
)

var attrNames = map[Attribute]string{
	AttrHP:             "hp",
	AttrMaxHP:          "max_hp",
	AttrSP:             "sp",
	AttrMaxSP:          "max_sp",
	AttrAttackPower:    "attack_power",
	AttrMagicPower:     "magic_power",
	AttrDefense:        "defense",
	AttrMagicResist:    "magic_resist",
	AttrCriticalRate:   "critical_rate",
	AttrCriticalDamage: "critical_damage",
}

// String returns the snake_case attribute name, or "unknown".
func (a Attribute) String() string {
	if n, ok := attrNames[a]; ok {
		return n
	}
	return "unknown"
}

// ParseAttribute maps a snake_case name back to its Attribute.
func ParseAttribute(name string) (Attribute, error) {
	for a, n := range attrNames {
		if n == name {
			return a, nil
		}
	}
	return AttrUnknown, fmt.Errorf("stats: unknown attribute %q", name)
}

// Base is the spawn-time stat line for an entity, typically loaded from a
// template.
type Base struct {
	MaxHP          float64 `yaml:"max_hp"`
	MaxSP          float64 `yaml:"max_sp"`
	AttackPower    float64 `yaml:"attack_power"`
	MagicPower     float64 `yaml:"magic_power"`
	Defense        float64 `yaml:"defense"`
	MagicResist    float64 `yaml:"magic_resist"`
	CriticalRate   float64 `yaml:"critical_rate"`   // percent, 0-100
	CriticalDamage float64 `yaml:"critical_damage"` // multiplier, >= 1
}

// Validate checks the base line is spawnable.
func (b Base) Validate() error {
	if b.MaxHP <= 0 {
		return fmt.Errorf("stats: max_hp must be > 0, got %v", b.MaxHP)
	}
	if b.MaxSP < 0 {
		return fmt.Errorf("stats: max_sp must be >= 0, got %v", b.MaxSP)
	}
	if b.CriticalRate < 0 || b.CriticalRate > 100 {
		return fmt.Errorf("stats: critical_rate must be in [0, 100], got %v", b.CriticalRate)
	}
	return nil
}

// Range is a derived [Min, Max] band around a base power value.
type Range struct {
	Min float64
	Max float64
}

// Valid reports whether the range can be sampled.
func (r Range) Valid() bool {
	return r.Min > 0 && r.Min <= r.Max
}

// Block is one entity's live stat block.
//
// Invariant: 0 <= HP <= MaxHP and 0 <= SP <= MaxSP at all times.
// Invariant: AttackRange and MagicRange equal base × (1 ± spread) for the
// current attack and magic power.
// Block is not safe for concurrent use; its owning entity serialises access.
type Block struct {
	values map[Attribute]float64
	spread float64
	attack Range
	magic  Range
}

// NewBlock creates a Block at full health and stamina from base.
//
// Precondition: spread in [0, 1).
// Postcondition: HP == MaxHP, SP == MaxSP, ranges derived from base.
func NewBlock(base Base, spread float64) *Block {
	if spread < 0 || spread >= 1 {
		panic(fmt.Sprintf("stats.NewBlock: spread must be in [0, 1), got %v", spread))
	}
	b := &Block{values: make(map[Attribute]float64, len(attrNames)), spread: spread}
	b.Set(AttrMaxHP, base.MaxHP)
	b.Set(AttrMaxSP, base.MaxSP)
	b.Set(AttrHP, base.MaxHP)
	b.Set(AttrSP, base.MaxSP)
	b.Set(AttrDefense, base.Defense)
	b.Set(AttrMagicResist, base.MagicResist)
	b.Set(AttrCriticalRate, base.CriticalRate)
	b.Set(AttrCriticalDamage, base.CriticalDamage)
	b.Set(AttrAttackPower, base.AttackPower)
	b.Set(AttrMagicPower, base.MagicPower)
	return b
}

// Get returns the current value of attr (0 for unknown attributes).
func (b *Block) Get(attr Attribute) float64 {
	return b.values[attr]
}

// Set writes attr, clamping it into its legal range and re-deriving any
// dependent values. It returns the value actually stored.
//
// Postcondition: all Block invariants hold.
func (b *Block) Set(attr Attribute, v float64) float64 {
	if math.IsNaN(v) {
		v = 0
	}
	switch attr {
	case AttrHP:
		v = clamp(v, 0, b.values[AttrMaxHP])
	case AttrSP:
		v = clamp(v, 0, b.values[AttrMaxSP])
	case AttrMaxHP:
		v = math.Max(v, 0)
		b.values[AttrHP] = clamp(b.values[AttrHP], 0, v)
	case AttrMaxSP:
		v = math.Max(v, 0)
		b.values[AttrSP] = clamp(b.values[AttrSP], 0, v)
	case AttrCriticalRate:
		v = clamp(v, 0, 100)
	case AttrCriticalDamage:
		v = math.Max(v, 1)
	case AttrDefense, AttrMagicResist, AttrAttackPower, AttrMagicPower:
		v = math.Max(v, 0)
	default:
		return 0
	}
	b.values[attr] = v
	switch attr {
	case AttrAttackPower:
		b.attack = b.derive(v)
	case AttrMagicPower:
		b.magic = b.derive(v)
	}
	return v
}

// Add applies delta to attr with the same clamping as Set and returns the
// delta actually applied.
func (b *Block) Add(attr Attribute, delta float64) float64 {
	before := b.values[attr]
	return b.Set(attr, before+delta) - before
}

func (b *Block) derive(base float64) Range {
	return Range{Min: base * (1 - b.spread), Max: base * (1 + b.spread)}
}

// Spread returns the attack range spread this block was built with.
func (b *Block) Spread() float64 { return b.spread }

// AttackRange returns the derived physical power band.
func (b *Block) AttackRange() Range { return b.attack }

// MagicRange returns the derived magical power band.
func (b *Block) MagicRange() Range { return b.magic }

// HP returns current health.
func (b *Block) HP() float64 { return b.values[AttrHP] }

// MaxHP returns maximum health.
func (b *Block) MaxHP() float64 { return b.values[AttrMaxHP] }

// SP returns current stamina.
func (b *Block) SP() float64 { return b.values[AttrSP] }

// MaxSP returns maximum stamina.
func (b *Block) MaxSP() float64 { return b.values[AttrMaxSP] }

// IsDepleted reports whether health has reached zero.
func (b *Block) IsDepleted() bool { return b.values[AttrHP] <= 0 }

// CanAfford reports whether stamina covers cost.
func (b *Block) CanAfford(cost float64) bool {
	return cost <= 0 || b.values[AttrSP] >= cost
}

// HPPercent returns current HP as a percentage of MaxHP; 0 if MaxHP == 0.
func (b *Block) HPPercent() float64 {
	if b.MaxHP() <= 0 {
		return 0
	}
	return b.HP() / b.MaxHP() * 100
}

// Restore returns HP and SP to their maximums, used on respawn.
func (b *Block) Restore() {
	b.values[AttrHP] = b.values[AttrMaxHP]
	b.values[AttrSP] = b.values[AttrMaxSP]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
