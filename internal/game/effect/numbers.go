package effect

import "github.com/cory-johannsen/skirmish/internal/game/stats"

// FloatingNumber is one damage or heal number for display.
type FloatingNumber struct {
	Target    string
	Amount    float64
	Predicted bool
}

// Numbers collects health changes as floating numbers, keeping the most
// recent Capacity entries.
type Numbers struct {
	Capacity int
	entries  []FloatingNumber
}

// NewNumbers creates a collector holding up to capacity entries.
//
// Precondition: capacity > 0.
func NewNumbers(capacity int) *Numbers {
	if capacity <= 0 {
		panic("effect.NewNumbers: capacity must be > 0")
	}
	return &Numbers{Capacity: capacity}
}

// OnChange implements Observer. Only HP changes produce numbers; predicted
// changes show the requested delta.
func (n *Numbers) OnChange(c Change) {
	if c.Attribute != stats.AttrHP {
		return
	}
	amount := c.Applied
	if c.Predicted {
		amount = c.Requested
	}
	if amount == 0 {
		return
	}
	n.entries = append(n.entries, FloatingNumber{Target: c.Target, Amount: amount, Predicted: c.Predicted})
	if over := len(n.entries) - n.Capacity; over > 0 {
		n.entries = append(n.entries[:0], n.entries[over:]...)
	}
}

// Drain returns and clears the collected numbers, oldest first.
func (n *Numbers) Drain() []FloatingNumber {
	out := n.entries
	n.entries = nil
	return out
}
