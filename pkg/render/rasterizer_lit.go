package render

import (
	"math"

	"github.com/taigrr/umbra/pkg/math3d"
)

// edgeCoeffs returns A, B, C such that A*x + B*y + C is the edge function
// of (x0,y0)->(x1,y1): positive on the left, zero on the edge.
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	A = y0 - y1
	B = x1 - x0
	C = x0*y1 - x1*y0
	return
}

func edgeFunc(A, B, C, x, y float64) float64 {
	return A*x + B*y + C
}

// DrawTriangleLit rasterizes a Gouraud-shaded triangle lit by a point light
// at lightPos, using incremental edge functions. The diffuse term is
// computed per vertex and interpolated; shadows, when non-nil, is sampled
// per pixel with the framebuffer stretched over it. Triangles with a vertex
// behind the camera are dropped (there is no near-plane clipping).
func (r *Rasterizer) DrawTriangleLit(tri Triangle, lightPos math3d.Vec3, shadows *Texture) {
	var sv [3]screenVertex

	viewProj := r.camera.ViewProjectionMatrix()
	width, height := r.Width(), r.Height()

	for i := range 3 {
		v := tri.V[i]
		clipPos := viewProj.MulVec4(math3d.V4FromV3(v.Position, 1))
		if clipPos.W <= 0 {
			return
		}

		invW := 1.0 / clipPos.W
		sv[i].X = (clipPos.X*invW + 1) * 0.5 * float64(width)
		sv[i].Y = (1 - clipPos.Y*invW) * 0.5 * float64(height) // Y flipped
		sv[i].Z = clipPos.Z * invW

		toLight := lightPos.Sub(v.Position).Normalize()
		sv[i].Diffuse = math.Max(0, v.Normal.Dot(toLight))
		sv[i].Color = v.Color
	}

	// Backface culling in screen space
	cross := (sv[1].X-sv[0].X)*(sv[2].Y-sv[0].Y) - (sv[1].Y-sv[0].Y)*(sv[2].X-sv[0].X)
	if cross < 0 {
		if !r.DisableBackfaceCulling {
			return
		}
		sv[1], sv[2] = sv[2], sv[1]
		cross = -cross
	}
	if cross == 0 {
		return
	}

	minX := int(math.Max(0, math.Floor(min3(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(width-1), math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(height-1), math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y))))
	if minX > maxX || minY > maxY {
		return
	}

	// Edge 0: v1 -> v2, Edge 1: v2 -> v0, Edge 2: v0 -> v1
	A0, B0, C0 := edgeCoeffs(sv[1].X, sv[1].Y, sv[2].X, sv[2].Y)
	A1, B1, C1 := edgeCoeffs(sv[2].X, sv[2].Y, sv[0].X, sv[0].Y)
	A2, B2, C2 := edgeCoeffs(sv[0].X, sv[0].Y, sv[1].X, sv[1].Y)

	invArea := 1.0 / cross

	r0, g0, b0 := float64(sv[0].Color.R), float64(sv[0].Color.G), float64(sv[0].Color.B)
	r1, g1, b1 := float64(sv[1].Color.R), float64(sv[1].Color.G), float64(sv[1].Color.B)
	r2, g2, b2 := float64(sv[2].Color.R), float64(sv[2].Color.G), float64(sv[2].Color.B)

	px := float64(minX) + 0.5
	py := float64(minY) + 0.5

	w0Row := edgeFunc(A0, B0, C0, px, py)
	w1Row := edgeFunc(A1, B1, C1, px, py)
	w2Row := edgeFunc(A2, B2, C2, px, py)

	zbuffer := r.zbuffer
	pixels := r.fb.Pixels
	if len(zbuffer) < width*height || len(pixels) < width*height {
		return
	}

	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		rowOffset := y * width

		for x := minX; x <= maxX; x++ {
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				bc0 := w0 * invArea
				bc1 := w1 * invArea
				bc2 := w2 * invArea

				z := bc0*sv[0].Z + bc1*sv[1].Z + bc2*sv[2].Z
				idx := rowOffset + x
				if z < zbuffer[idx] {
					diffuse := bc0*sv[0].Diffuse + bc1*sv[1].Diffuse + bc2*sv[2].Diffuse
					if shadows != nil {
						vis := shadows.Visibility(x, y, width, height)
						if vis < 1 {
							r.ShadeStats.Shadowed++
						}
						diffuse *= vis
					}
					intensity := Ambient + (1-Ambient)*diffuse

					zbuffer[idx] = z
					base := RGB(
						uint8(r0*bc0+r1*bc1+r2*bc2),
						uint8(g0*bc0+g1*bc1+g2*bc2),
						uint8(b0*bc0+b1*bc1+b2*bc2),
					)
					pixels[idx] = MultiplyColor(base, intensity)
					r.ShadeStats.Pixels++
				}
			}

			w0 += A0
			w1 += A1
			w2 += A2
		}

		w0Row += B0
		w1Row += B1
		w2Row += B2
	}
}
