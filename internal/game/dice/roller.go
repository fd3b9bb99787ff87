package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged range and chance rolls.
// All rolls are logged at debug level with label, bounds, and value.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if src == nil {
		panic("dice.NewLoggedRoller: src must not be nil")
	}
	if logger == nil {
		panic("dice.NewLoggedRoller: logger must not be nil")
	}
	return &Roller{src: src, logger: logger}
}

// Uniform returns a value drawn uniformly from [min, max). Bounds given in
// the wrong order are swapped; equal bounds return min without consuming
// randomness.
//
// Postcondition: min <= result <= max (after swapping).
func (r *Roller) Uniform(label string, min, max float64) float64 {
	if max < min {
		min, max = max, min
	}
	if min == max {
		return min
	}
	v := min + r.src.Float64()*(max-min)
	r.log(Roll{Label: label, Min: min, Max: max, Value: v})
	return v
}

// Chance reports whether a roll of uniform(0, 100) falls below percent.
//
// Postcondition: percent <= 0 always returns false; percent >= 100 always returns true.
func (r *Roller) Chance(label string, percent float64) bool {
	v := r.src.Float64() * 100
	r.log(Roll{Label: label, Min: 0, Max: 100, Value: v})
	return v < percent
}

// Probability reports whether a roll of uniform(0, 1) falls below p.
func (r *Roller) Probability(label string, p float64) bool {
	return r.Chance(label, p*100)
}

// Sign returns -1 or +1 with equal probability.
func (r *Roller) Sign(label string) float64 {
	if r.src.Intn(2) == 0 {
		r.log(Roll{Label: label, Min: -1, Max: 1, Value: -1})
		return -1
	}
	r.log(Roll{Label: label, Min: -1, Max: 1, Value: 1})
	return 1
}

func (r *Roller) log(roll Roll) {
	if ce := r.logger.Check(zap.DebugLevel, "dice roll"); ce != nil {
		ce.Write(
			zap.String("label", roll.Label),
			zap.Float64("min", roll.Min),
			zap.Float64("max", roll.Max),
			zap.Float64("value", roll.Value),
		)
	}
}
