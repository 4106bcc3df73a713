package raytrace

import (
	"cmp"
	"slices"

	"github.com/taigrr/umbra/pkg/math3d"
)

// Probe receives per-candidate diagnostics from the shadow pass. Methods may
// be called from several goroutines at once.
type Probe interface {
	// SphereRejected is called when a candidate's bounding sphere misses
	// the shadow ray, so none of its triangles are tested.
	SphereRejected(id ObjectID)
	// TrianglesTested is called with the number of triangles tested
	// against a candidate that passed the sphere filter.
	TrianglesTested(id ObjectID, n int)
}

type candidate struct {
	obj  *Object
	dist float64
}

// Occluded reports whether anything blocks the segment from point to light.
// The owner object is never tested against its own hit point, and objects
// that do not cast shadows are ignored. The first blocking triangle found
// ends the search. probe may be nil.
func (s *Snapshot) Occluded(point math3d.Vec3, owner ObjectID, light math3d.Vec3, probe Probe) bool {
	var scratch []candidate
	return s.occluded(point, owner, light, probe, &scratch)
}

func (s *Snapshot) occluded(point math3d.Vec3, owner ObjectID, light math3d.Vec3, probe Probe, scratch *[]candidate) bool {
	if s == nil {
		return false
	}

	toLight := light.Sub(point)
	lightDist := toLight.Len()
	ray, err := NewRay(point, toLight)
	if err != nil {
		// Point and light coincide.
		return false
	}

	cands := (*scratch)[:0]
	for i := range s.objects {
		obj := &s.objects[i]
		if obj.ID == owner || !obj.CastsShadows || len(obj.Triangles) == 0 {
			continue
		}
		cands = append(cands, candidate{obj: obj, dist: point.Distance(obj.Position)})
	}
	*scratch = cands

	slices.SortStableFunc(cands, func(a, b candidate) int {
		return cmp.Compare(a.dist, b.dist)
	})

	for _, c := range cands {
		if !sphereOnSegment(ray, c.obj, lightDist) {
			if probe != nil {
				probe.SphereRejected(c.obj.ID)
			}
			continue
		}

		tested := 0
		blocked := false
		for _, tri := range c.obj.Triangles {
			tested++
			t, ok := tri.Intersect(ray)
			if ok && t > ShadowEpsilon && t < lightDist {
				blocked = true
				break
			}
		}
		if probe != nil {
			probe.TrianglesTested(c.obj.ID, tested)
		}
		if blocked {
			return true
		}
	}

	return false
}

// sphereOnSegment is the bounding-sphere pre-filter. An origin inside or on
// the sphere always passes since the quadratic's near root is then negative.
// An origin outside passes only when the sphere is entered beyond
// NearEpsilon, so a sphere grazed within NearEpsilon of the origin is
// skipped even if its triangles lie further along the ray. The two cases
// are deliberately asymmetric; change them together.
func sphereOnSegment(r Ray, obj *Object, lightDist float64) bool {
	if r.Origin.Sub(obj.Position).LenSq() <= obj.Radius*obj.Radius {
		return true
	}
	t, ok := IntersectSphere(r, obj.Position, obj.Radius)
	return ok && t > NearEpsilon && t < lightDist
}
