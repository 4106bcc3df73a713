package raytrace

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestShadowMaskAccess(t *testing.T) {
	m := NewShadowMask(4, 3)
	if m.LitFraction() != 1 {
		t.Fatalf("new mask LitFraction = %v, want 1", m.LitFraction())
	}

	m.Set(1, 2, Occluded)
	m.Set(-1, 0, Occluded)
	m.Set(4, 0, Occluded)

	if got := m.At(1, 2); got != Occluded {
		t.Errorf("At(1, 2) = %d, want %d", got, Occluded)
	}
	if got := m.Pix[2*4+1]; got != Occluded {
		t.Errorf("Pix not row-major: Pix[9] = %d", got)
	}
	if got := m.At(10, 10); got != Lit {
		t.Errorf("out of range At = %d, want Lit", got)
	}
	if got, want := m.LitFraction(), 11.0/12.0; got != want {
		t.Errorf("LitFraction = %v, want %v", got, want)
	}

	c := m.Clone()
	m.Fill(Occluded)
	if c.At(0, 0) != Lit {
		t.Error("Clone shares memory with the original")
	}
	if m.LitFraction() != 0 {
		t.Errorf("LitFraction after Fill(Occluded) = %v, want 0", m.LitFraction())
	}
}

func TestShadowMaskSavePNG(t *testing.T) {
	m := NewShadowMask(5, 2)
	m.Set(3, 1, Occluded)

	path := filepath.Join(t.TempDir(), "mask.png")
	if err := m.SavePNG(path); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if b := img.Bounds(); b.Dx() != 5 || b.Dy() != 2 {
		t.Fatalf("bounds = %v, want 5x2", b)
	}
	if r, _, _, _ := img.At(3, 1).RGBA(); r != 0 {
		t.Errorf("occluded pixel red = %d, want 0", r)
	}
	if r, _, _, _ := img.At(0, 0).RGBA(); r != 0xffff {
		t.Errorf("lit pixel red = %d, want 0xffff", r)
	}
}
