// Package testutil provides deterministic collaborators shared by package tests.
package testutil

// FixedSource is a dice.Source that replays scripted values in order,
// cycling when exhausted. A nil or empty slice yields zero values.
type FixedSource struct {
	Floats []float64
	Ints   []int

	fi int
	ii int
}

// Intn returns the next scripted int reduced modulo n.
//
// Precondition: n > 0.
func (f *FixedSource) Intn(n int) int {
	if n <= 0 {
		panic("testutil: Intn called with n <= 0")
	}
	if len(f.Ints) == 0 {
		return 0
	}
	v := f.Ints[f.ii%len(f.Ints)]
	f.ii++
	if v < 0 {
		v = -v
	}
	return v % n
}

// Float64 returns the next scripted float.
func (f *FixedSource) Float64() float64 {
	if len(f.Floats) == 0 {
		return 0
	}
	v := f.Floats[f.fi%len(f.Floats)]
	f.fi++
	return v
}
