package raytrace

import "github.com/taigrr/umbra/pkg/math3d"

// CameraView is everything the primary pass needs from a camera.
type CameraView struct {
	Position      math3d.Vec3
	InvProjection math3d.Mat4
	InvView       math3d.Mat4
}

// NDC maps the centre of pixel (x, y) in a width x height grid to normalized
// device coordinates. Row 0 is the top of the image (NDC y = +1).
func NDC(x, y, width, height int) (float64, float64) {
	nx := 2*(float64(x)+0.5)/float64(width) - 1
	ny := 1 - 2*(float64(y)+0.5)/float64(height)
	return nx, ny
}

// PrimaryRay returns the camera ray through the centre of pixel (x, y).
// The pixel is unprojected onto the far plane and the ray is aimed from the
// camera position at that point.
func (c CameraView) PrimaryRay(x, y, width, height int) (Ray, error) {
	nx, ny := NDC(x, y, width, height)

	eye := c.InvProjection.MulVec4(math3d.V4(nx, ny, 1, 1))
	if eye.W != 0 {
		eye = eye.Scale(1 / eye.W)
	}
	world := c.InvView.MulVec3(eye.Vec3())

	return NewRay(c.Position, world.Sub(c.Position))
}
