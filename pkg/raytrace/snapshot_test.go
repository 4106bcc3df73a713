package raytrace

import (
	"math"
	"testing"

	"github.com/taigrr/umbra/pkg/math3d"
)

func TestNewSnapshotTransformsToWorld(t *testing.T) {
	snap := NewSnapshot([]ObjectSpec{square(1, 1, at(math3d.V3(0, 0, 5)))})

	if snap.Len() != 1 || snap.TriangleCount() != 2 {
		t.Fatalf("Len = %d, TriangleCount = %d, want 1, 2", snap.Len(), snap.TriangleCount())
	}
	for _, tri := range snap.Objects()[0].Triangles {
		for _, v := range []math3d.Vec3{tri.V0, tri.V1, tri.V2} {
			if v.Z != 5 {
				t.Errorf("vertex %v not translated to z=5", v)
			}
		}
	}
}

func TestNewSnapshotFiltersNonFinite(t *testing.T) {
	spec := square(1, 1, at(math3d.Zero3()))
	spec.Vertices[1] = math3d.V3(math.NaN(), 0, 0)

	bad := square(2, 1, at(math3d.V3(math.Inf(1), 0, 0)))

	snap := NewSnapshot([]ObjectSpec{spec, bad})
	if snap.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (object with infinite position dropped)", snap.Len())
	}
	if got := snap.TriangleCount(); got != 1 {
		t.Errorf("TriangleCount = %d, want 1", got)
	}
	if got := snap.Dropped(); got != 3 {
		t.Errorf("Dropped = %d, want 3", got)
	}
}

func TestNewSnapshotBadIndex(t *testing.T) {
	spec := square(1, 1, at(math3d.Zero3()))
	spec.Indices = append(spec.Indices, [3]int{0, 1, 9}, [3]int{-1, 0, 1})

	snap := NewSnapshot([]ObjectSpec{spec})
	if snap.TriangleCount() != 2 || snap.Dropped() != 2 {
		t.Errorf("TriangleCount = %d, Dropped = %d, want 2, 2", snap.TriangleCount(), snap.Dropped())
	}
}

func TestNewSnapshotRadiusScales(t *testing.T) {
	tests := []struct {
		scale math3d.Vec3
		want  float64
	}{
		{math3d.V3(1, 1, 1), 1},
		{math3d.V3(1, 3, 2), 3},
		{math3d.V3(-4, 1, 1), 4},
	}
	for _, tc := range tests {
		tr := at(math3d.Zero3())
		tr.Scale = tc.scale
		spec := ObjectSpec{ID: 1, Transform: tr, LocalRadius: 1}
		snap := NewSnapshot([]ObjectSpec{spec})
		if got := snap.Objects()[0].Radius; got != tc.want {
			t.Errorf("scale %v: Radius = %v, want %v", tc.scale, got, tc.want)
		}
	}
}

func TestNilSnapshot(t *testing.T) {
	var snap *Snapshot
	if snap.Len() != 0 || snap.TriangleCount() != 0 || snap.Objects() != nil {
		t.Error("nil snapshot should be empty")
	}
	if snap.Nearest(mustRay(math3d.Zero3(), math3d.V3(0, 0, 1))).Hit() {
		t.Error("nil snapshot should not report hits")
	}
}

func TestNearest(t *testing.T) {
	snap := NewSnapshot([]ObjectSpec{
		square(1, 1, at(math3d.V3(0, 0, 0))),
		square(2, 1, at(math3d.V3(0, 0, -2))),
	})

	tests := []struct {
		name     string
		origin   math3d.Vec3
		dir      math3d.Vec3
		wantID   ObjectID
		wantDist float64
	}{
		{"from front", math3d.V3(0.3, -0.2, 5), math3d.V3(0, 0, -1), 1, 5},
		{"from behind", math3d.V3(0.3, -0.2, -5), math3d.V3(0, 0, 1), 2, 3},
		{"between", math3d.V3(0.3, -0.2, -1), math3d.V3(0, 0, -1), 2, 1},
		{"miss", math3d.V3(5, 5, 5), math3d.V3(0, 0, -1), NoObject, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			hit := snap.Nearest(mustRay(tc.origin, tc.dir))
			if hit.Object != tc.wantID {
				t.Fatalf("Object = %d, want %d", hit.Object, tc.wantID)
			}
			if !hit.Hit() {
				return
			}
			if math.Abs(hit.Distance-tc.wantDist) > 1e-9 {
				t.Errorf("Distance = %v, want %v", hit.Distance, tc.wantDist)
			}
			want := tc.origin.Add(tc.dir.Scale(tc.wantDist))
			if hit.Point.Distance(want) > 1e-9 {
				t.Errorf("Point = %v, want %v", hit.Point, want)
			}
		})
	}
}
