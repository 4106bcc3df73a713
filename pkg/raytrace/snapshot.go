package raytrace

import (
	"math"

	"github.com/taigrr/umbra/pkg/math3d"
)

// ObjectSpec is the read view of one scene object handed to NewSnapshot.
// Vertices and Indices are in local space and are not retained.
type ObjectSpec struct {
	ID           ObjectID
	Transform    math3d.Transform
	Vertices     []math3d.Vec3
	Indices      [][3]int
	LocalRadius  float64
	CastsShadows bool
}

// Object is the world-space form of an object inside a Snapshot.
type Object struct {
	ID           ObjectID
	Position     math3d.Vec3
	Radius       float64
	Triangles    []Triangle
	CastsShadows bool
}

// Snapshot is an immutable world-space copy of the scene for one frame.
// It is safe for concurrent use by any number of readers.
type Snapshot struct {
	objects   []Object
	triangles int
	dropped   int
}

// NewSnapshot transforms every object into world space. Triangles with a
// non-finite vertex or an out-of-range index are discarded, as are objects
// whose position is not finite. The bounding radius is LocalRadius scaled by
// the largest axis scale, which bounds the object under any rotation.
func NewSnapshot(specs []ObjectSpec) *Snapshot {
	s := &Snapshot{objects: make([]Object, 0, len(specs))}

	for _, spec := range specs {
		if spec.ID == NoObject || !spec.Transform.Position.IsFinite() {
			s.dropped += len(spec.Indices)
			continue
		}

		model := spec.Transform.Matrix()
		world := make([]math3d.Vec3, len(spec.Vertices))
		for i, v := range spec.Vertices {
			world[i] = model.MulVec3(v)
		}

		tris := make([]Triangle, 0, len(spec.Indices))
		for _, idx := range spec.Indices {
			if !validIndex(idx, len(world)) {
				s.dropped++
				continue
			}
			tri := Triangle{V0: world[idx[0]], V1: world[idx[1]], V2: world[idx[2]]}
			if !tri.IsFinite() {
				s.dropped++
				continue
			}
			tris = append(tris, tri)
		}

		radius := spec.LocalRadius * spec.Transform.MaxScale()
		if math.IsNaN(radius) || radius < 0 {
			radius = 0
		}

		s.objects = append(s.objects, Object{
			ID:           spec.ID,
			Position:     spec.Transform.Position,
			Radius:       radius,
			Triangles:    tris,
			CastsShadows: spec.CastsShadows,
		})
		s.triangles += len(tris)
	}

	return s
}

func validIndex(idx [3]int, n int) bool {
	for _, i := range idx {
		if i < 0 || i >= n {
			return false
		}
	}
	return true
}

// Objects returns the snapshot's objects. The slice must not be modified.
func (s *Snapshot) Objects() []Object {
	if s == nil {
		return nil
	}
	return s.objects
}

// Len returns the number of objects.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.objects)
}

// TriangleCount returns the number of world-space triangles kept.
func (s *Snapshot) TriangleCount() int {
	if s == nil {
		return 0
	}
	return s.triangles
}

// Dropped returns how many triangles were discarded while building.
func (s *Snapshot) Dropped() int {
	if s == nil {
		return 0
	}
	return s.dropped
}
