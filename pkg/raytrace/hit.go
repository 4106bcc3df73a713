package raytrace

import "github.com/taigrr/umbra/pkg/math3d"

// ObjectID identifies an object across the scene and its snapshots.
type ObjectID uint64

// NoObject is the zero ID. It is never assigned to a real object.
const NoObject ObjectID = 0

// HitRecord describes the nearest surface hit of a primary ray.
type HitRecord struct {
	Distance float64
	Point    math3d.Vec3
	Object   ObjectID
}

// Hit reports whether the ray struck anything.
func (h HitRecord) Hit() bool {
	return h.Object != NoObject
}
