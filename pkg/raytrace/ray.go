// Package raytrace computes per-pixel hard shadows on the CPU.
//
// A frame is traced in two stages. The primary pass casts one ray per mask
// cell from the camera and records the nearest surface hit. The shadow pass
// casts a ray from that hit toward the point light and stops at the first
// occluding triangle. The result is a ShadowMask that a rasterizer samples as
// a texture.
package raytrace

import (
	"errors"

	"github.com/taigrr/umbra/pkg/math3d"
)

// ErrZeroDirection is returned when a ray is built from a direction that
// is zero or not finite.
var ErrZeroDirection = errors.New("raytrace: ray direction has zero length")

// Ray is a half-line. Direction is always unit length when built with NewRay.
type Ray struct {
	Origin    math3d.Vec3
	Direction math3d.Vec3
}

// NewRay builds a ray and normalizes its direction.
func NewRay(origin, dir math3d.Vec3) (Ray, error) {
	if !dir.IsFinite() {
		return Ray{}, ErrZeroDirection
	}
	l := dir.Len()
	if l == 0 {
		return Ray{}, ErrZeroDirection
	}
	return Ray{Origin: origin, Direction: dir.Div(l)}, nil
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) math3d.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}
