package raytrace

import (
	"math"
	"sync"

	"github.com/taigrr/umbra/pkg/math3d"
)

// square returns a two-triangle square of half-size h in the local XY plane.
func square(id ObjectID, h float64, tr math3d.Transform) ObjectSpec {
	return ObjectSpec{
		ID:        id,
		Transform: tr,
		Vertices: []math3d.Vec3{
			math3d.V3(-h, -h, 0),
			math3d.V3(h, -h, 0),
			math3d.V3(h, h, 0),
			math3d.V3(-h, h, 0),
		},
		Indices:      [][3]int{{0, 1, 2}, {0, 2, 3}},
		LocalRadius:  h * math.Sqrt2,
		CastsShadows: true,
	}
}

func at(p math3d.Vec3) math3d.Transform {
	tr := math3d.NewTransform()
	tr.Position = p
	return tr
}

// flat lies in the XZ plane, facing up.
func flat(p math3d.Vec3) math3d.Transform {
	tr := at(p)
	tr.Rotation = math3d.V3(-90, 0, 0)
	return tr
}

func mustRay(origin, dir math3d.Vec3) Ray {
	r, err := NewRay(origin, dir)
	if err != nil {
		panic(err)
	}
	return r
}

type recordingProbe struct {
	mu       sync.Mutex
	rejected map[ObjectID]int
	tested   map[ObjectID]int
}

func newRecordingProbe() *recordingProbe {
	return &recordingProbe{
		rejected: make(map[ObjectID]int),
		tested:   make(map[ObjectID]int),
	}
}

func (p *recordingProbe) SphereRejected(id ObjectID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rejected[id]++
}

func (p *recordingProbe) TrianglesTested(id ObjectID, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tested[id] += n
}
