package raytrace

// Nearest returns the closest surface hit along r, testing every triangle of
// every object. The zero HitRecord means nothing was hit.
func (s *Snapshot) Nearest(r Ray) HitRecord {
	var best HitRecord
	if s == nil {
		return best
	}

	for i := range s.objects {
		obj := &s.objects[i]
		for _, tri := range obj.Triangles {
			t, ok := tri.Intersect(r)
			if !ok {
				continue
			}
			if !best.Hit() || t < best.Distance {
				best = HitRecord{Distance: t, Object: obj.ID}
			}
		}
	}

	if best.Hit() {
		best.Point = r.At(best.Distance)
	}
	return best
}
