package models

import (
	"math"
	"testing"

	"github.com/taigrr/umbra/pkg/math3d"
)

// faceNormal returns the outward normal of a stored (clockwise) face.
func faceNormal(m *Mesh, i int) (math3d.Vec3, math3d.Vec3) {
	f := m.GetFace(i)
	v0, _ := m.GetVertex(f[0])
	v1, _ := m.GetVertex(f[1])
	v2, _ := m.GetVertex(f[2])
	centroid := v0.Add(v1).Add(v2).Scale(1.0 / 3)
	return v2.Sub(v0).Cross(v1.Sub(v0)), centroid
}

func TestNewUVSphere(t *testing.T) {
	tests := []struct {
		sectors, stacks int
	}{
		{3, 2},
		{8, 6},
		{36, 18},
	}
	for _, tc := range tests {
		m := NewUVSphere(2, tc.sectors, tc.stacks)

		if got, want := m.VertexCount(), (tc.stacks+1)*(tc.sectors+1); got != want {
			t.Errorf("%dx%d: VertexCount = %d, want %d", tc.sectors, tc.stacks, got, want)
		}
		if got, want := m.TriangleCount(), tc.sectors*(2*tc.stacks-2); got != want {
			t.Errorf("%dx%d: TriangleCount = %d, want %d", tc.sectors, tc.stacks, got, want)
		}
		if got := m.BoundingRadius(); math.Abs(got-2) > 1e-9 {
			t.Errorf("%dx%d: BoundingRadius = %v, want 2", tc.sectors, tc.stacks, got)
		}
		for i := range m.TriangleCount() {
			n, c := faceNormal(m, i)
			if n.Dot(c) <= 0 {
				t.Fatalf("%dx%d: face %d faces inward", tc.sectors, tc.stacks, i)
			}
		}
	}
}

func TestNewCube(t *testing.T) {
	m := NewCube(2)

	if m.VertexCount() != 24 || m.TriangleCount() != 12 {
		t.Fatalf("got %d vertices, %d triangles; want 24, 12", m.VertexCount(), m.TriangleCount())
	}
	if m.BoundsMin != math3d.V3(-1, -1, -1) || m.BoundsMax != math3d.V3(1, 1, 1) {
		t.Errorf("bounds = %v..%v, want (-1,-1,-1)..(1,1,1)", m.BoundsMin, m.BoundsMax)
	}
	if got := m.BoundingRadius(); math.Abs(got-math.Sqrt(3)) > 1e-12 {
		t.Errorf("BoundingRadius = %v, want sqrt(3)", got)
	}

	for i := range m.TriangleCount() {
		n, c := faceNormal(m, i)
		if n.Dot(c) <= 0 {
			t.Errorf("face %d faces inward", i)
		}
		_, vn := m.GetVertex(m.GetFace(i)[0])
		if n.Normalize().Distance(vn) > 1e-12 {
			t.Errorf("face %d: vertex normal %v disagrees with winding %v", i, vn, n.Normalize())
		}
	}
}

func TestNewPlane(t *testing.T) {
	m := NewPlane(4)

	if m.TriangleCount() != 2 {
		t.Fatalf("TriangleCount = %d, want 2", m.TriangleCount())
	}
	for i := range m.TriangleCount() {
		n, _ := faceNormal(m, i)
		if n.Normalize().Distance(math3d.Up()) > 1e-12 {
			t.Errorf("face %d normal = %v, want +Y", i, n)
		}
	}
	if size := m.Size(); size != math3d.V3(4, 0, 4) {
		t.Errorf("Size = %v, want (4,0,4)", size)
	}
}

func TestPositionsAndIndicesAreCopies(t *testing.T) {
	m := NewPlane(2)

	pos := m.Positions()
	idx := m.Indices()
	if len(pos) != m.VertexCount() || len(idx) != m.TriangleCount() {
		t.Fatalf("lengths %d, %d do not match mesh", len(pos), len(idx))
	}

	pos[0] = math3d.V3(100, 100, 100)
	idx[0] = [3]int{9, 9, 9}
	if p, _ := m.GetVertex(0); p == pos[0] {
		t.Error("Positions shares memory with the mesh")
	}
	if m.GetFace(0) == idx[0] {
		t.Error("Indices shares memory with the mesh")
	}
}

func TestCalculateSmoothNormals(t *testing.T) {
	m := NewCube(2)
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}
	m.CalculateSmoothNormals()

	for i, v := range m.Vertices {
		if v.Normal.Dot(v.Position) <= 0 {
			t.Errorf("vertex %d normal %v points inward", i, v.Normal)
		}
	}
}

func TestEmptyMesh(t *testing.T) {
	m := NewMesh("empty")
	m.CalculateBounds()

	if m.BoundingRadius() != 0 {
		t.Errorf("BoundingRadius = %v, want 0", m.BoundingRadius())
	}
	if _, ok := m.BaseColor(); ok {
		t.Error("BaseColor reported a material on an empty mesh")
	}
	if m.GetMaterial(0) != nil || m.GetMaterial(-1) != nil {
		t.Error("GetMaterial should return nil when out of range")
	}
}
