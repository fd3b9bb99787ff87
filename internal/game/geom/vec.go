// Package geom provides the small float64 vector toolkit used by combat
// direction checks, knockback, and tactical point selection. Z is up.
package geom

import "math"

// NearlyZero is the length below which a direction is treated as degenerate.
const NearlyZero = 1e-4

// Vec3 is a float64 3D vector.
type Vec3 struct {
	X, Y, Z float64
}

// Forward is the unit +X vector, the facing of a zero-yaw entity.
var Forward = Vec3{X: 1}

// V returns a vector on the ground plane.
func V(x, y float64) Vec3 { return Vec3{X: x, Y: y} }

func (v Vec3) Add(o Vec3) Vec3       { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3       { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3  { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float64    { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) SizeSquared() float64  { return v.Dot(v) }
func (v Vec3) Size() float64         { return math.Sqrt(v.SizeSquared()) }
func (v Vec3) Size2D() float64       { return math.Hypot(v.X, v.Y) }
func (v Vec3) Flat() Vec3            { return Vec3{X: v.X, Y: v.Y} }
func (v Vec3) Neg() Vec3             { return Vec3{-v.X, -v.Y, -v.Z} }
func (v Vec3) Dist(o Vec3) float64   { return v.Sub(o).Size() }
func (v Vec3) Dist2D(o Vec3) float64 { return v.Sub(o).Size2D() }
func (v Vec3) IsNearlyZero() bool    { return v.SizeSquared() < NearlyZero*NearlyZero }
func (v Vec3) Equal(o Vec3, tol float64) bool {
	return math.Abs(v.X-o.X) <= tol && math.Abs(v.Y-o.Y) <= tol && math.Abs(v.Z-o.Z) <= tol
}

// Cross returns the 3D cross product v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Normal returns the unit vector in v's direction, or the zero vector when v
// is degenerate.
func (v Vec3) Normal() Vec3 {
	if v.IsNearlyZero() {
		return Vec3{}
	}
	return v.Scale(1 / v.Size())
}

// Normal2D returns the unit ground-plane direction of v, or zero.
func (v Vec3) Normal2D() Vec3 {
	return v.Flat().Normal()
}

// RotateZ rotates v around the up axis by deg degrees (counter-clockwise).
func (v Vec3) RotateZ(deg float64) Vec3 {
	s, c := math.Sincos(deg * math.Pi / 180)
	return Vec3{X: v.X*c - v.Y*s, Y: v.X*s + v.Y*c, Z: v.Z}
}

// Yaw returns the heading of v on the ground plane in degrees, in (-180, 180].
func (v Vec3) Yaw() float64 {
	return math.Atan2(v.Y, v.X) * 180 / math.Pi
}

// FromYaw returns the unit ground-plane vector for a heading in degrees.
func FromYaw(deg float64) Vec3 {
	s, c := math.Sincos(deg * math.Pi / 180)
	return Vec3{X: c, Y: s}
}

// SignedAngle returns the signed ground-plane angle in degrees from `from`
// to `to`, in (-180, 180]. Positive is counter-clockwise (to the left).
// Degenerate inputs yield 0.
func SignedAngle(from, to Vec3) float64 {
	a, b := from.Normal2D(), to.Normal2D()
	if a.IsNearlyZero() || b.IsNearlyZero() {
		return 0
	}
	return math.Atan2(a.X*b.Y-a.Y*b.X, a.X*b.X+a.Y*b.Y) * 180 / math.Pi
}

// Lerp returns the point t of the way from a to b.
func Lerp(a, b Vec3, t float64) Vec3 {
	return a.Add(b.Sub(a).Scale(t))
}
