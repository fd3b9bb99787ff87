// Package dice provides the randomness abstraction and logged roll helpers
// shared by damage resolution, windup sampling, and AI decision routines.
package dice

import "fmt"

// Source is the randomness provider for every roll in the combat core.
//
// Implementations need not be safe for concurrent use; the simulation
// is single-threaded per world.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0.0, 1.0).
	Float64() float64
}

// Roll records a single labelled roll for audit logging.
//
// Postcondition: Min <= Value <= Max when Min <= Max.
type Roll struct {
	Label string
	Min   float64
	Max   float64
	Value float64
}

// String returns a human-readable audit string in the format:
//
//	"crit [0.00, 100.00) → 42.17"
//
// Precondition: r.Label is non-empty.
func (r Roll) String() string {
	if r.Label == "" {
		panic("dice: Roll.String() precondition violated: Label must be non-empty")
	}
	return fmt.Sprintf("%s [%.2f, %.2f) → %.2f", r.Label, r.Min, r.Max, r.Value)
}
