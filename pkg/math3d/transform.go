package math3d

import "math"

// Transform places an object in the world. Rotation holds Euler angles in
// degrees, applied X then Y then Z.
type Transform struct {
	Position Vec3
	Rotation Vec3
	Scale    Vec3
}

// NewTransform returns a transform at the origin with unit scale.
func NewTransform() Transform {
	return Transform{Scale: V3(1, 1, 1)}
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Matrix composes T * Rx * Ry * Rz * S.
func (t Transform) Matrix() Mat4 {
	return Translate(t.Position).
		Mul(RotateX(Radians(t.Rotation.X))).
		Mul(RotateY(Radians(t.Rotation.Y))).
		Mul(RotateZ(Radians(t.Rotation.Z))).
		Mul(Scale(t.Scale))
}

// MaxScale returns the largest absolute axis scale factor. A sphere of radius
// r in local space is bounded by a sphere of radius r*MaxScale in world space.
func (t Transform) MaxScale() float64 {
	return t.Scale.Abs().MaxComponent()
}

// IsFinite reports whether every component of the transform is finite.
func (t Transform) IsFinite() bool {
	return t.Position.IsFinite() && t.Rotation.IsFinite() && t.Scale.IsFinite()
}
