package render

import (
	"github.com/taigrr/umbra/pkg/math3d"
)

// Plane is Ax + By + Cz + D = 0 with (A, B, C) stored as Normal.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize rescales the plane so the normal has unit length.
func (p *Plane) Normalize() {
	n := p.Normal.Len()
	if n == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1.0 / n)
	p.D /= n
}

// DistanceToPoint is positive on the normal side.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum holds the six view planes with inward-facing normals, in pairs
// along x, y and z: left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

// NewFrustumFromMatrix extracts frustum planes from a view-projection matrix
// (Gribb/Hartmann). Row i, column j of the column-major m is m[i+j*4].
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	row := func(i int) (math3d.Vec3, float64) {
		return math3d.V3(m[i], m[i+4], m[i+8]), m[i+12]
	}
	w, wd := row(3)

	var f Frustum
	for axis := range 3 {
		n, d := row(axis)
		f.Planes[axis*2] = Plane{Normal: w.Add(n), D: wd + d}
		f.Planes[axis*2+1] = Plane{Normal: w.Sub(n), D: wd - d}
	}
	for i := range f.Planes {
		f.Planes[i].Normalize()
	}
	return f
}

// AABB is an axis-aligned box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// Transform returns the AABB bounding all 8 corners of b after m.
func (b AABB) Transform(m math3d.Mat4) AABB {
	out := AABB{Min: m.MulVec3(b.Min)}
	out.Max = out.Min
	for i := 1; i < 8; i++ {
		corner := math3d.V3(
			selectComponent(i&1 != 0, b.Max.X, b.Min.X),
			selectComponent(i&2 != 0, b.Max.Y, b.Min.Y),
			selectComponent(i&4 != 0, b.Max.Z, b.Min.Z),
		)
		p := m.MulVec3(corner)
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// IntersectAABB reports whether any part of box may be inside the frustum.
// Only the corner furthest along each plane normal is tested.
func (f Frustum) IntersectAABB(box AABB) bool {
	for _, plane := range f.Planes {
		pVertex := math3d.V3(
			selectComponent(plane.Normal.X >= 0, box.Max.X, box.Min.X),
			selectComponent(plane.Normal.Y >= 0, box.Max.Y, box.Min.Y),
			selectComponent(plane.Normal.Z >= 0, box.Max.Z, box.Min.Z),
		)
		if plane.DistanceToPoint(pVertex) < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere is conservative near frustum corners.
func (f Frustum) IntersectsSphere(center math3d.Vec3, radius float64) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(center) < -radius {
			return false
		}
	}
	return true
}

func selectComponent(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
