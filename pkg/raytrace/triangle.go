package raytrace

import (
	"math"

	"github.com/taigrr/umbra/pkg/math3d"
)

// Thresholds used by the kernels and the shadow pass. Each guards a different
// comparison.
const (
	// ParallelEpsilon rejects rays nearly parallel to a triangle's plane and
	// is the minimum accepted distance for a primary hit.
	ParallelEpsilon = 1e-7

	// ShadowEpsilon is the minimum distance at which a shadow ray may be
	// blocked, so a surface does not shadow itself at its own hit point.
	ShadowEpsilon = 1e-3

	// NearEpsilon is the minimum sphere entry distance counted as in front
	// of a shadow ray's origin.
	NearEpsilon = 1e-3
)

// Triangle holds three world-space vertices.
type Triangle struct {
	V0, V1, V2 math3d.Vec3
}

// Normal returns the unnormalized geometric normal (V1-V0) x (V2-V0).
func (tri Triangle) Normal() math3d.Vec3 {
	return tri.V1.Sub(tri.V0).Cross(tri.V2.Sub(tri.V0))
}

// IsFinite reports whether all three vertices are finite.
func (tri Triangle) IsFinite() bool {
	return tri.V0.IsFinite() && tri.V1.IsFinite() && tri.V2.IsFinite()
}

// Intersect runs the Möller–Trumbore test. Both windings are hit. The
// returned distance is only meaningful when ok is true.
func (tri Triangle) Intersect(r Ray) (t float64, ok bool) {
	e1 := tri.V1.Sub(tri.V0)
	e2 := tri.V2.Sub(tri.V0)

	h := r.Direction.Cross(e2)
	a := e1.Dot(h)
	if math.Abs(a) < ParallelEpsilon {
		return 0, false
	}

	f := 1 / a
	s := r.Origin.Sub(tri.V0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(e1)
	v := f * r.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t = f * e2.Dot(q)
	if t > ParallelEpsilon {
		return t, true
	}
	return 0, false
}

// IntersectSphere returns the near root of the ray/sphere quadratic. A
// negative near root counts as a miss, including when the origin is inside.
func IntersectSphere(r Ray, center math3d.Vec3, radius float64) (t float64, ok bool) {
	oc := r.Origin.Sub(center)
	a := r.Direction.Dot(r.Direction)
	b := 2 * oc.Dot(r.Direction)
	c := oc.Dot(oc) - radius*radius

	disc := b*b - 4*a*c
	if disc < 0 || a == 0 {
		return 0, false
	}

	t = (-b - math.Sqrt(disc)) / (2 * a)
	if t >= 0 {
		return t, true
	}
	return 0, false
}
