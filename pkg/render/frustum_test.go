package render

import (
	"math"
	"testing"

	"github.com/taigrr/umbra/pkg/math3d"
)

func box(minX, minY, minZ, maxX, maxY, maxZ float64) AABB {
	return AABB{Min: math3d.V3(minX, minY, minZ), Max: math3d.V3(maxX, maxY, maxZ)}
}

// lookDownZ is a frustum for a camera at the origin looking down -Z.
func lookDownZ(near, far float64) Frustum {
	return NewFrustumFromMatrix(math3d.Perspective(math.Pi/3, 16.0/9.0, near, far))
}

func TestPlaneNormalize(t *testing.T) {
	p := Plane{Normal: math3d.V3(0, 3, 4), D: 10}
	p.Normalize()

	if got := p.Normal; math.Abs(got.Y-0.6) > 1e-12 || math.Abs(got.Z-0.8) > 1e-12 {
		t.Errorf("normal = %v, want (0, 0.6, 0.8)", got)
	}
	if math.Abs(p.D-2) > 1e-12 {
		t.Errorf("D = %v, want 2", p.D)
	}
	if d := p.DistanceToPoint(math3d.V3(7, 0, 5)); math.Abs(d-6) > 1e-12 {
		t.Errorf("distance = %v, want 6", d)
	}

	zero := Plane{D: 3}
	zero.Normalize()
	if zero.D != 3 {
		t.Errorf("zero normal plane changed: %+v", zero)
	}
}

func TestFrustumPlanesAreNormalized(t *testing.T) {
	f := NewFrustumFromMatrix(math3d.Perspective(math.Pi/3, 1, 0.1, 100).
		Mul(math3d.LookAt(math3d.V3(0, 10, 20), math3d.Zero3(), math3d.Up())))
	for i, p := range f.Planes {
		if l := p.Normal.Len(); math.Abs(l-1) > 1e-9 {
			t.Errorf("plane %d normal length = %v", i, l)
		}
	}
}

func TestAABBTransform(t *testing.T) {
	unit := box(-1, -1, -1, 1, 1, 1)

	tests := []struct {
		name     string
		m        math3d.Mat4
		min, max math3d.Vec3
	}{
		{"translate", math3d.Translate(math3d.V3(10, 20, 30)), math3d.V3(9, 19, 29), math3d.V3(11, 21, 31)},
		{"scale", math3d.Scale(math3d.V3(2, 1, 3)), math3d.V3(-2, -1, -3), math3d.V3(2, 1, 3)},
		{"rotate 45", math3d.RotateY(math.Pi / 4), math3d.V3(-math.Sqrt2, -1, -math.Sqrt2), math3d.V3(math.Sqrt2, 1, math.Sqrt2)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := unit.Transform(tc.m)
			if got.Min.Sub(tc.min).Len() > 1e-9 || got.Max.Sub(tc.max).Len() > 1e-9 {
				t.Errorf("got %v..%v, want %v..%v", got.Min, got.Max, tc.min, tc.max)
			}
		})
	}
}

func TestFrustumIntersectAABB(t *testing.T) {
	f := lookDownZ(1, 100)

	tests := []struct {
		name string
		box  AABB
		want bool
	}{
		{"inside", box(-1, -1, -10, 1, 1, -5), true},
		{"straddles near plane", box(-1, -1, -2, 1, 1, 2), true},
		{"behind camera", box(-1, -1, 5, 1, 1, 10), false},
		{"beyond far plane", box(-1, -1, -150, 1, 1, -120), false},
		{"off to the right", box(100, -1, -10, 110, 1, -5), false},
		{"encloses frustum", box(-200, -200, -200, 200, 200, 200), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.IntersectAABB(tc.box); got != tc.want {
				t.Errorf("IntersectAABB = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFrustumIntersectsSphere(t *testing.T) {
	f := lookDownZ(1, 100)

	tests := []struct {
		name   string
		center math3d.Vec3
		radius float64
		want   bool
	}{
		{"inside", math3d.V3(0, 0, -10), 1, true},
		{"touching near plane", math3d.V3(0, 0, -0.5), 1, true},
		{"behind", math3d.V3(0, 0, 5), 1, false},
		{"past far plane", math3d.V3(0, 0, -103), 2, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.IntersectsSphere(tc.center, tc.radius); got != tc.want {
				t.Errorf("IntersectsSphere = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCameraFrustumMatchesViewProjection(t *testing.T) {
	cam := NewCamera()
	cam.SetAspectRatio(1)
	cam.Orbit(math3d.Zero3(), 0.4, 0.3, 8)
	r := NewRasterizer(cam, NewFramebuffer(16, 16))

	if !r.SphereVisible(math3d.Zero3(), 0.5) {
		t.Error("orbit target should be visible")
	}
	behind := cam.Position.Add(cam.Position.Sub(math3d.Zero3()))
	if r.SphereVisible(behind, 0.5) {
		t.Error("point behind the camera should be culled")
	}
	if !r.IsVisibleTransformed(box(-1, -1, -1, 1, 1, 1), math3d.Identity()) {
		t.Error("unit box at the target should be visible")
	}
	if r.IsVisibleTransformed(box(-1, -1, -1, 1, 1, 1), math3d.Translate(behind)) {
		t.Error("box behind the camera should be culled")
	}
}

func BenchmarkFrustumIntersectAABB(b *testing.B) {
	f := lookDownZ(0.1, 1000)
	bb := box(-1, -1, -10, 1, 1, -5)
	for b.Loop() {
		_ = f.IntersectAABB(bb)
	}
}
