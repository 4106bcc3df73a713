package render

import (
	"math"

	"github.com/taigrr/umbra/pkg/math3d"
)

// Ambient is the light level of surfaces facing away from the light or
// hidden from it by the shadow mask.
const Ambient = 0.3

// Vertex represents a vertex with all attributes needed for rasterization.
type Vertex struct {
	Position math3d.Vec3 // World position
	Normal   math3d.Vec3 // World normal, unit length
	Color    Color
}

// Triangle represents a triangle to be rasterized.
type Triangle struct {
	V [3]Vertex
}

// Rasterizer handles software triangle rasterization.
type Rasterizer struct {
	camera                 *Camera
	fb                     *Framebuffer
	zbuffer                []float64
	frustum                Frustum
	frustumDirty           bool
	CullingStats           CullingStats
	ShadeStats             ShadeStats
	DisableBackfaceCulling bool // If true, render both sides of triangles
}

// CullingStats tracks frustum culling performance.
type CullingStats struct {
	MeshesTested int
	MeshesCulled int
	MeshesDrawn  int
}

// ShadeStats counts pixels written by lit draws since the last reset.
type ShadeStats struct {
	Pixels   int // Pixels that passed the depth test
	Shadowed int // Of those, pixels the mask marked as not fully lit
}

// NewRasterizer creates a new rasterizer.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{
		camera:       camera,
		fb:           fb,
		frustumDirty: true,
	}
	r.Resize()
	return r
}

// Resize resizes the depth buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
	r.ClearDepth()
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth clears the Z-buffer (call before each frame).
func (r *Rasterizer) ClearDepth() {
	// Copy-doubling fill
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// BeginFrame clears depth, resets statistics and marks the frustum stale.
// Call it once per frame after the camera has moved.
func (r *Rasterizer) BeginFrame() {
	r.ClearDepth()
	r.CullingStats = CullingStats{}
	r.ShadeStats = ShadeStats{}
	r.frustumDirty = true
}

// Frustum returns the current view frustum, recomputing it if stale.
func (r *Rasterizer) Frustum() Frustum {
	if r.frustumDirty {
		r.frustum = NewFrustumFromMatrix(r.camera.ViewProjectionMatrix())
		r.frustumDirty = false
	}
	return r.frustum
}

// IsVisibleTransformed tests if a local-space AABB is visible after transformation.
func (r *Rasterizer) IsVisibleTransformed(localBounds AABB, transform math3d.Mat4) bool {
	return r.Frustum().IntersectAABB(localBounds.Transform(transform))
}

// SphereVisible tests if a world-space sphere touches the view frustum.
func (r *Rasterizer) SphereVisible(center math3d.Vec3, radius float64) bool {
	return r.Frustum().IntersectsSphere(center, radius)
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y    float64 // Screen coordinates
	Z       float64 // NDC depth
	Diffuse float64 // Lambert term toward the light
	Color   Color
}

// offscreen reports points far enough outside NDC that walking a line to
// them would be wasted work.
func offscreen(ndc math3d.Vec3) bool {
	return math.Abs(ndc.X) > 4 || math.Abs(ndc.Y) > 4
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}

// MeshRenderer is the mesh view the rasterizer needs. It is declared here so
// render does not import models.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3)
	GetFace(i int) [3]int
}

// BoundedMeshRenderer extends MeshRenderer with bounding box support for frustum culling.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (min, max math3d.Vec3)
}

// tryFrustumCull reports whether mesh is entirely outside the frustum.
// Meshes without bounds are never culled.
func (r *Rasterizer) tryFrustumCull(mesh MeshRenderer, transform math3d.Mat4) bool {
	bounded, ok := mesh.(BoundedMeshRenderer)
	if !ok {
		return false
	}

	r.CullingStats.MeshesTested++

	minBounds, maxBounds := bounded.GetBounds()
	if !r.IsVisibleTransformed(AABB{Min: minBounds, Max: maxBounds}, transform) {
		r.CullingStats.MeshesCulled++
		return true
	}

	r.CullingStats.MeshesDrawn++
	return false
}

// DrawMeshLit renders a mesh lit by a point light at lightPos. When shadows
// is non-nil it is sampled per pixel and scales the diffuse term, so
// occluded pixels fall to Ambient.
func (r *Rasterizer) DrawMeshLit(mesh MeshRenderer, transform math3d.Mat4, color Color, lightPos math3d.Vec3, shadows *Texture) {
	if r.tryFrustumCull(mesh, transform) {
		return
	}

	normalMat := transform.NormalMatrix()

	for i := 0; i < mesh.TriangleCount(); i++ {
		face := mesh.GetFace(i)

		var tri Triangle
		for k, idx := range face {
			p, n := mesh.GetVertex(idx)
			tri.V[k] = Vertex{
				Position: transform.MulVec3(p),
				Normal:   normalMat.MulVec3Dir(n).Normalize(),
				Color:    color,
			}
		}

		r.DrawTriangleLit(tri, lightPos, shadows)
	}
}

// DrawMeshWireframe renders a mesh as wireframe.
func (r *Rasterizer) DrawMeshWireframe(mesh MeshRenderer, transform math3d.Mat4, color Color) {
	if r.tryFrustumCull(mesh, transform) {
		return
	}

	for i := 0; i < mesh.TriangleCount(); i++ {
		face := mesh.GetFace(i)

		p0, _ := mesh.GetVertex(face[0])
		p1, _ := mesh.GetVertex(face[1])
		p2, _ := mesh.GetVertex(face[2])

		v0 := transform.MulVec3(p0)
		v1 := transform.MulVec3(p1)
		v2 := transform.MulVec3(p2)

		r.drawLine3D(v0, v1, color)
		r.drawLine3D(v1, v2, color)
		r.drawLine3D(v2, v0, color)
	}
}

// drawLine3D projects a segment and draws it. Segments with an end behind
// the camera are skipped.
func (r *Rasterizer) drawLine3D(a, b math3d.Vec3, color Color) {
	viewProj := r.camera.ViewProjectionMatrix()

	clipA := viewProj.MulVec4(math3d.V4FromV3(a, 1))
	clipB := viewProj.MulVec4(math3d.V4FromV3(b, 1))
	if clipA.W <= 0 || clipB.W <= 0 {
		return
	}

	ndcA := clipA.PerspectiveDivide()
	ndcB := clipB.PerspectiveDivide()
	if offscreen(ndcA) && offscreen(ndcB) {
		return
	}

	x0 := int((ndcA.X + 1) * 0.5 * float64(r.Width()))
	y0 := int((1 - ndcA.Y) * 0.5 * float64(r.Height()))
	x1 := int((ndcB.X + 1) * 0.5 * float64(r.Width()))
	y1 := int((1 - ndcB.Y) * 0.5 * float64(r.Height()))

	r.fb.DrawLine(x0, y0, x1, y1, color)
}
