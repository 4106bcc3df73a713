package render

import (
	"math"

	"github.com/taigrr/umbra/pkg/raytrace"
)

// Texture is a grayscale shadow mask sampled with nearest-neighbor
// filtering. Coordinates outside [0,1] clamp to the edge.
type Texture struct {
	Width  int
	Height int
	Pixels []Color // Row-major, row 0 at the top
}

// TextureFromMask converts a shadow mask to a grayscale texture.
// Lit cells become white and occluded cells black, so the red channel
// divided by 255 is the light visibility of a cell.
func TextureFromMask(m *raytrace.ShadowMask) *Texture {
	if m == nil {
		return nil
	}
	tex := &Texture{Width: m.Width, Height: m.Height, Pixels: make([]Color, len(m.Pix))}
	for i, v := range m.Pix {
		tex.Pixels[i] = Color{R: v, G: v, B: v, A: 255}
	}
	return tex
}

// GetPixel returns the pixel at (x, y) with bounds checking.
func (t *Texture) GetPixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample samples the texture at UV coordinates (0-1 range). V runs bottom
// to top, so v=1 addresses row 0.
func (t *Texture) Sample(u, v float64) Color {
	u = math.Max(0, math.Min(1, u))
	v = 1 - math.Max(0, math.Min(1, v))

	x := min(int(u*float64(t.Width)), t.Width-1)
	y := min(int(v*float64(t.Height)), t.Height-1)
	return t.GetPixel(x, y)
}

// Visibility returns the light visibility in [0,1] at framebuffer pixel
// (x, y) of a width x height target the texture is stretched over.
func (t *Texture) Visibility(x, y, width, height int) float64 {
	u := (float64(x) + 0.5) / float64(width)
	v := 1 - (float64(y)+0.5)/float64(height)
	return float64(t.Sample(u, v).R) / 255
}

// MultiplyColor multiplies a color by a scalar (for lighting).
func MultiplyColor(c Color, intensity float64) Color {
	return Color{
		R: uint8(math.Min(255, float64(c.R)*intensity)),
		G: uint8(math.Min(255, float64(c.G)*intensity)),
		B: uint8(math.Min(255, float64(c.B)*intensity)),
		A: c.A,
	}
}
