package raytrace

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/taigrr/umbra/pkg/math3d"
)

func testCamera(eye, target math3d.Vec3) *CameraView {
	view := math3d.LookAt(eye, target, math3d.Up())
	proj := math3d.Perspective(math.Pi/3, 1, 0.1, 100)
	return &CameraView{
		Position:      eye,
		InvProjection: proj.Inverse(),
		InvView:       view.Inverse(),
	}
}

// shadowScene is a floor with a small panel hovering above it.
func shadowScene() *Snapshot {
	return NewSnapshot([]ObjectSpec{
		square(1, 5, flat(math3d.Zero3())),
		square(2, 1, flat(math3d.V3(0, 2, 0))),
	})
}

func TestPrimaryRayOrientation(t *testing.T) {
	cam := testCamera(math3d.Zero3(), math3d.V3(0, 0, -1))

	r, err := cam.PrimaryRay(0, 0, 1, 1)
	if err != nil {
		t.Fatalf("PrimaryRay() error = %v", err)
	}
	if r.Direction.Distance(math3d.V3(0, 0, -1)) > 1e-9 {
		t.Errorf("centre ray direction = %v, want (0,0,-1)", r.Direction)
	}

	r, _ = cam.PrimaryRay(0, 0, 8, 8)
	if r.Direction.X >= 0 || r.Direction.Y <= 0 {
		t.Errorf("pixel (0,0) direction = %v, want up and to the left", r.Direction)
	}
	r, _ = cam.PrimaryRay(7, 7, 8, 8)
	if r.Direction.X <= 0 || r.Direction.Y >= 0 {
		t.Errorf("pixel (7,7) direction = %v, want down and to the right", r.Direction)
	}
}

func TestNewTracerInvalidResolution(t *testing.T) {
	for _, size := range [][2]int{{0, 10}, {10, 0}, {-1, 5}} {
		if _, err := NewTracer(size[0], size[1]); !errors.Is(err, ErrInvalidResolution) {
			t.Errorf("NewTracer(%d, %d) error = %v, want ErrInvalidResolution", size[0], size[1], err)
		}
	}
}

func TestTraceEmptySceneIsLit(t *testing.T) {
	tr, err := NewTracer(16, 12)
	if err != nil {
		t.Fatal(err)
	}

	cams := []*CameraView{
		testCamera(math3d.V3(0, 5, 5), math3d.Zero3()),
		testCamera(math3d.V3(-3, 1, 2), math3d.V3(4, 0, -1)),
	}
	lights := []math3d.Vec3{math3d.V3(0, 5, 0), math3d.V3(-10, -10, 3)}

	for _, cam := range cams {
		for _, light := range lights {
			mask, stats := tr.Trace(Frame{Snapshot: NewSnapshot(nil), Camera: cam, Light: &light})
			if stats.Hits != 0 || stats.Skipped {
				t.Errorf("stats = %+v, want no hits and not skipped", stats)
			}
			for i, v := range mask.Pix {
				if v != Lit {
					t.Fatalf("cell %d = %d, want %d", i, v, Lit)
				}
			}
		}
	}
}

func TestTraceSkippedWithoutLight(t *testing.T) {
	tr, err := NewTracer(16, 16, WithWorkers(2))
	if err != nil {
		t.Fatal(err)
	}
	cam := testCamera(math3d.V3(0, 6, 6), math3d.Zero3())

	mask, stats := tr.Trace(Frame{Snapshot: shadowScene(), Camera: cam})
	if !stats.Skipped {
		t.Error("pass without a light should be skipped")
	}
	if mask.LitFraction() != 1 {
		t.Errorf("initial mask LitFraction = %v, want 1", mask.LitFraction())
	}

	light := math3d.V3(0, 5, 0)
	traced, _ := tr.Trace(Frame{Snapshot: shadowScene(), Camera: cam, Light: &light})
	want := traced.Clone()

	kept, stats := tr.Trace(Frame{Snapshot: shadowScene(), Light: &light})
	if !stats.Skipped {
		t.Error("pass without a camera should be skipped")
	}
	if !bytes.Equal(kept.Pix, want.Pix) {
		t.Error("skipped pass did not return the previous mask")
	}
}

func TestTraceCastsShadow(t *testing.T) {
	tr, err := NewTracer(48, 48)
	if err != nil {
		t.Fatal(err)
	}
	cam := testCamera(math3d.V3(0, 6, 6), math3d.Zero3())
	light := math3d.V3(0, 5, 0)

	mask, stats := tr.Trace(Frame{Snapshot: shadowScene(), Camera: cam, Light: &light})
	if stats.Hits == 0 {
		t.Fatal("no primary hits")
	}
	if stats.Occluded == 0 || stats.Occluded >= stats.Hits {
		t.Errorf("Occluded = %d of %d hits, want some but not all", stats.Occluded, stats.Hits)
	}
	if f := mask.LitFraction(); f <= 0 || f >= 1 {
		t.Errorf("LitFraction = %v, want strictly between 0 and 1", f)
	}
	if tr.TotalHits() != stats.Hits {
		t.Errorf("TotalHits = %d, want %d", tr.TotalHits(), stats.Hits)
	}
	if stats.TriangleTests == 0 {
		t.Error("no triangle tests recorded")
	}

	occluded := 0
	for _, v := range mask.Pix {
		if v == Occluded {
			occluded++
		}
	}
	if int64(occluded) != stats.Occluded {
		t.Errorf("mask has %d occluded cells, stats report %d", occluded, stats.Occluded)
	}
}

func TestTraceWorkerCountDoesNotChangeResult(t *testing.T) {
	cam := testCamera(math3d.V3(2, 6, 5), math3d.Zero3())
	light := math3d.V3(1, 5, -1)
	snap := shadowScene()

	var want []byte
	for _, workers := range []int{1, 2, 7, 32} {
		tr, err := NewTracer(40, 30, WithWorkers(workers))
		if err != nil {
			t.Fatal(err)
		}
		for range 2 {
			mask, _ := tr.Trace(Frame{Snapshot: snap, Camera: cam, Light: &light})
			if want == nil {
				want = bytes.Clone(mask.Pix)
				continue
			}
			if !bytes.Equal(mask.Pix, want) {
				t.Fatalf("workers=%d produced a different mask", workers)
			}
		}
	}
}

func TestTraceProbeReceivesDiagnostics(t *testing.T) {
	probe := newRecordingProbe()
	tr, err := NewTracer(24, 24, WithProbe(probe))
	if err != nil {
		t.Fatal(err)
	}
	cam := testCamera(math3d.V3(0, 6, 6), math3d.Zero3())
	light := math3d.V3(0, 5, 0)

	_, stats := tr.Trace(Frame{Snapshot: shadowScene(), Camera: cam, Light: &light})

	var tested int64
	for _, n := range probe.tested {
		tested += int64(n)
	}
	if tested != stats.TriangleTests {
		t.Errorf("probe saw %d triangle tests, stats report %d", tested, stats.TriangleTests)
	}
}

func TestTracerResize(t *testing.T) {
	tr, err := NewTracer(8, 8)
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.Resize(0, 4); !errors.Is(err, ErrInvalidResolution) {
		t.Errorf("Resize(0, 4) error = %v, want ErrInvalidResolution", err)
	}
	if err := tr.Resize(20, 10); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if w, h := tr.Size(); w != 20 || h != 10 {
		t.Errorf("Size() = %d, %d, want 20, 10", w, h)
	}
	if m := tr.Mask(); len(m.Pix) != 200 {
		t.Errorf("mask has %d cells after resize, want 200", len(m.Pix))
	}
}
