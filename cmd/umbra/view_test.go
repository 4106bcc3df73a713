package main

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/umbra/pkg/engine"
	"github.com/taigrr/umbra/pkg/raytrace"
	"github.com/taigrr/umbra/pkg/render"
	"github.com/taigrr/umbra/pkg/scene"
)

// newTestViewer builds a viewer with no terminal; only input handling and
// the engine are usable.
func newTestViewer(t *testing.T) *viewer {
	t.Helper()
	setup := scene.Default()
	cam := newCamera(setup)
	eng, err := engine.New(setup.Scene, cam, render.NewFramebuffer(48, 32), engine.Options{Workers: 2, Mode: engine.ShadowsRaytraced})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	eng.SetLight(setup.Light)

	return &viewer{
		setup:    setup,
		eng:      eng,
		cam:      cam,
		orbit:    newOrbitController(60, setup.CameraTarget, setup.CameraPosition),
		light:    newLightOrbit(60, setup.Scene.Center(), setup.Light),
		hud:      newHUD(time.Now()),
		logger:   log.New(io.Discard),
		width:    48,
		height:   16,
		lightOn:  true,
		selected: -1,
	}
}

func TestViewerDeleteSelection(t *testing.T) {
	v := newTestViewer(t)
	if stats := v.eng.RenderFrame(); stats.Objects != 3 {
		t.Fatalf("first frame has %d objects, want 3", stats.Objects)
	}

	v.selectNext()
	victim := v.eng.Selected()
	if victim == raytrace.NoObject {
		t.Fatal("Tab selected nothing")
	}

	if quit := v.handle(uv.KeyPressEvent{Code: uv.KeyDelete}); quit {
		t.Fatal("delete quit the viewer")
	}
	if v.setup.Scene.Len() != 2 {
		t.Errorf("scene has %d objects after delete, want 2", v.setup.Scene.Len())
	}
	if _, ok := v.setup.Scene.Get(victim); ok {
		t.Error("deleted object still in scene")
	}
	if v.eng.Selected() != raytrace.NoObject || v.selected != -1 {
		t.Errorf("selection not cleared: %d / %d", v.eng.Selected(), v.selected)
	}

	stats := v.eng.RenderFrame()
	if stats.Objects != 2 || stats.Pass.Skipped {
		t.Errorf("next frame: %d objects, skipped=%v", stats.Objects, stats.Pass.Skipped)
	}

	// Nothing selected: backspace is a no-op.
	v.handle(uv.KeyPressEvent{Code: uv.KeyBackspace})
	if v.setup.Scene.Len() != 2 {
		t.Errorf("backspace without selection removed an object")
	}
}

func TestViewerPasteMissingModel(t *testing.T) {
	v := newTestViewer(t)
	path := filepath.Join(t.TempDir(), "missing.glb")

	v.handle(uv.PasteEvent{Content: "'" + path + "'\n"})
	if v.setup.Scene.Len() != 3 || v.eng.Selected() != raytrace.NoObject {
		t.Errorf("failed load changed the scene: len %d, selected %d", v.setup.Scene.Len(), v.eng.Selected())
	}
}

func TestPastedPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/tmp/a.glb", "/tmp/a.glb"},
		{"  /tmp/a.glb\n", "/tmp/a.glb"},
		{"'/tmp/my model.glb'", "/tmp/my model.glb"},
		{`"/tmp/a.glb"`, "/tmp/a.glb"},
		{`/tmp/my\ model.glb`, "/tmp/my model.glb"},
		{"file:///tmp/a.glb", "/tmp/a.glb"},
		{"   ", ""},
	}
	for _, tc := range tests {
		if got := pastedPath(tc.in); got != tc.want {
			t.Errorf("pastedPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
