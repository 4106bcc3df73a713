package raytrace

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// Mask cell values.
const (
	Occluded byte = 0
	Lit      byte = 255
)

// ShadowMask is a row-major grid of shadow results. Row 0 is the top of the
// image. Width*Height == len(Pix).
type ShadowMask struct {
	Width  int
	Height int
	Pix    []byte
}

// NewShadowMask returns an all-lit mask.
func NewShadowMask(width, height int) *ShadowMask {
	m := &ShadowMask{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height),
	}
	m.Fill(Lit)
	return m
}

// At returns the cell at (x, y). Coordinates outside the mask read as lit.
func (m *ShadowMask) At(x, y int) byte {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return Lit
	}
	return m.Pix[y*m.Width+x]
}

// Set writes the cell at (x, y). Out of range writes are ignored.
func (m *ShadowMask) Set(x, y int, v byte) {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return
	}
	m.Pix[y*m.Width+x] = v
}

// Fill sets every cell to v.
func (m *ShadowMask) Fill(v byte) {
	for i := range m.Pix {
		m.Pix[i] = v
	}
}

// LitFraction returns the share of lit cells in [0, 1].
func (m *ShadowMask) LitFraction() float64 {
	if len(m.Pix) == 0 {
		return 1
	}
	lit := 0
	for _, v := range m.Pix {
		if v == Lit {
			lit++
		}
	}
	return float64(lit) / float64(len(m.Pix))
}

// Clone returns a deep copy.
func (m *ShadowMask) Clone() *ShadowMask {
	c := &ShadowMask{Width: m.Width, Height: m.Height, Pix: make([]byte, len(m.Pix))}
	copy(c.Pix, m.Pix)
	return c
}

// ToImage returns the mask as a grayscale image sharing no memory with m.
func (m *ShadowMask) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+m.Width], m.Pix[y*m.Width:(y+1)*m.Width])
	}
	return img
}

// SavePNG writes the mask to a grayscale PNG file.
func (m *ShadowMask) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create mask file: %w", err)
	}
	if err := png.Encode(f, m.ToImage()); err != nil {
		f.Close()
		return fmt.Errorf("encode mask: %w", err)
	}
	return f.Close()
}
