// Package scene holds the editable set of objects shown by the viewer and
// hands immutable per-frame copies of it to the shadow tracer.
package scene

import (
	"errors"
	"fmt"
	"image/color"
	"sync"

	"github.com/taigrr/umbra/pkg/math3d"
	"github.com/taigrr/umbra/pkg/models"
	"github.com/taigrr/umbra/pkg/raytrace"
)

// ErrNotFound is returned when an object ID is not in the scene.
var ErrNotFound = errors.New("scene: object not found")

// DefaultColor is used for objects added without a colour.
var DefaultColor = color.RGBA{200, 200, 200, 255}

// Object is one mesh instance placed in the world. Values returned by Scene
// are copies; change an object through Scene.Update.
type Object struct {
	ID           raytrace.ObjectID
	Name         string
	Mesh         *models.Mesh
	Transform    math3d.Transform
	Color        color.RGBA
	CastsShadows bool

	// LocalRadius is the mesh's bounding radius about its local origin,
	// computed once when the object is added.
	LocalRadius float64
}

type entry struct {
	obj       Object
	positions []math3d.Vec3
	indices   [][3]int
}

// Scene is safe for concurrent use. Meshes must not be modified after they
// are added.
type Scene struct {
	mu      sync.RWMutex
	entries []*entry
	nextID  raytrace.ObjectID
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{}
}

// Add places mesh at the origin with unit scale and returns its ID. The new
// object casts shadows. A mesh with a material uses its base colour.
func (s *Scene) Add(name string, mesh *models.Mesh) raytrace.ObjectID {
	obj := Object{
		Name:         name,
		Mesh:         mesh,
		Transform:    math3d.NewTransform(),
		Color:        DefaultColor,
		CastsShadows: true,
		LocalRadius:  mesh.BoundingRadius(),
	}
	if c, ok := mesh.BaseColor(); ok {
		obj.Color = color.RGBA{toByte(c[0]), toByte(c[1]), toByte(c[2]), 255}
	}

	e := &entry{
		obj:       obj,
		positions: mesh.Positions(),
		indices:   mesh.Indices(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	e.obj.ID = s.nextID
	s.entries = append(s.entries, e)
	return e.obj.ID
}

// AddModel loads a .glb file and adds it at the origin, named after the
// file.
func (s *Scene) AddModel(path string) (raytrace.ObjectID, error) {
	mesh, err := models.LoadGLB(path)
	if err != nil {
		return raytrace.NoObject, fmt.Errorf("load model: %w", err)
	}
	if mesh.TriangleCount() == 0 {
		return raytrace.NoObject, fmt.Errorf("load model: %s has no triangles", path)
	}
	return s.Add(mesh.Name, mesh), nil
}

func toByte(v float64) uint8 {
	return uint8(max(0, min(1, v))*255 + 0.5)
}

// Remove deletes the object with the given ID.
func (s *Scene) Remove(id raytrace.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.obj.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Update calls fn with a copy of the object and stores the result. The ID,
// mesh and local radius cannot be changed.
func (s *Scene) Update(id raytrace.ObjectID, fn func(*Object)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.find(id)
	if e == nil {
		return ErrNotFound
	}

	obj := e.obj
	fn(&obj)
	obj.ID = e.obj.ID
	obj.Mesh = e.obj.Mesh
	obj.LocalRadius = e.obj.LocalRadius
	e.obj = obj
	return nil
}

// Get returns a copy of the object with the given ID.
func (s *Scene) Get(id raytrace.ObjectID) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e := s.find(id); e != nil {
		return e.obj, true
	}
	return Object{}, false
}

func (s *Scene) find(id raytrace.ObjectID) *entry {
	for _, e := range s.entries {
		if e.obj.ID == id {
			return e
		}
	}
	return nil
}

// Objects returns copies of all objects in insertion order.
func (s *Scene) Objects() []Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Object, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.obj
	}
	return out
}

// Len returns the number of objects.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Center returns the mean object position. Objects with a non-finite
// position are ignored. An empty scene is centred on the origin.
func (s *Scene) Center() math3d.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum math3d.Vec3
	n := 0
	for _, e := range s.entries {
		p := e.obj.Transform.Position
		if !p.IsFinite() {
			continue
		}
		sum = sum.Add(p)
		n++
	}
	if n == 0 {
		return math3d.Zero3()
	}
	return sum.Div(float64(n))
}

// Capture is one frame's view of the scene. Objects and Snapshot describe
// the same state and are not affected by later edits.
type Capture struct {
	Objects  []Object
	Snapshot *raytrace.Snapshot
}

// Capture copies the scene under the read lock and builds the world-space
// snapshot from that copy.
func (s *Scene) Capture() Capture {
	s.mu.RLock()
	objs := make([]Object, len(s.entries))
	specs := make([]raytrace.ObjectSpec, len(s.entries))
	for i, e := range s.entries {
		objs[i] = e.obj
		specs[i] = raytrace.ObjectSpec{
			ID:           e.obj.ID,
			Transform:    e.obj.Transform,
			Vertices:     e.positions,
			Indices:      e.indices,
			LocalRadius:  e.obj.LocalRadius,
			CastsShadows: e.obj.CastsShadows,
		}
	}
	s.mu.RUnlock()

	return Capture{Objects: objs, Snapshot: raytrace.NewSnapshot(specs)}
}
