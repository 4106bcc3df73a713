package scene

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/umbra/pkg/math3d"
)

const sampleScene = `{
  "camera": {"position": [0, 5, 8], "target": [0, 0, 0], "fovDeg": 45},
  "light": {"position": [1, 6, 1]},
  "background": [1, 2, 3],
  "objects": [
    {"name": "floor", "shape": "plane", "size": 10, "position": [0, 0, 0], "castsShadows": false},
    {"shape": "sphere", "size": 0.5, "sectors": 8, "stacks": 4, "position": [0, 1, 0], "color": [255, 0, 0]},
    {"shape": "cube", "position": [2, 0.5, 0], "rotDeg": [0, 45, 0], "scale": [2, 0, 1]}
  ]
}`

func TestParseAndBuild(t *testing.T) {
	cfg, err := Parse([]byte(sampleScene))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	setup, err := cfg.Build(".")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if setup.Scene.Len() != 3 {
		t.Fatalf("Len = %d, want 3", setup.Scene.Len())
	}
	if setup.Light != math3d.V3(1, 6, 1) {
		t.Errorf("Light = %v, want (1,6,1)", setup.Light)
	}
	if setup.CameraPosition != math3d.V3(0, 5, 8) || setup.CameraTarget != math3d.Zero3() {
		t.Errorf("camera = %v -> %v", setup.CameraPosition, setup.CameraTarget)
	}
	if setup.FOV != math3d.Radians(45) {
		t.Errorf("FOV = %v, want 45 degrees", setup.FOV)
	}
	if setup.Background != (color.RGBA{1, 2, 3, 255}) {
		t.Errorf("Background = %v", setup.Background)
	}

	objs := setup.Scene.Objects()
	if objs[0].Name != "floor" || objs[0].CastsShadows {
		t.Errorf("floor = %+v, want non-casting floor", objs[0])
	}
	if objs[1].Name != "sphere" || objs[1].Color != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("sphere = %+v", objs[1])
	}
	if objs[1].LocalRadius < 0.49 || objs[1].LocalRadius > 0.51 {
		t.Errorf("sphere LocalRadius = %v, want 0.5", objs[1].LocalRadius)
	}
	if objs[2].Transform.Scale != math3d.V3(2, 1, 1) {
		t.Errorf("cube Scale = %v, want (2,1,1)", objs[2].Transform.Scale)
	}
	if objs[2].Transform.Rotation != math3d.V3(0, 45, 0) {
		t.Errorf("cube Rotation = %v", objs[2].Transform.Rotation)
	}
}

func TestBuildDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`{"camera": {"position": [0, 3, 3]}, "objects": [
		{"shape": "cube", "position": [2, 0, 0]},
		{"shape": "cube", "position": [0, 0, 2]}
	]}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	setup, err := cfg.Build(".")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	center := math3d.V3(1, 0, 1)
	if setup.CameraTarget != center {
		t.Errorf("CameraTarget = %v, want scene centre %v", setup.CameraTarget, center)
	}
	if setup.Light != center.Add(LightOffset) {
		t.Errorf("Light = %v, want %v", setup.Light, center.Add(LightOffset))
	}
	if setup.FOV != math3d.Radians(60) {
		t.Errorf("FOV = %v, want 60 degrees", setup.FOV)
	}
	if setup.Background != DefaultBackground {
		t.Errorf("Background = %v, want default", setup.Background)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"malformed", `{"camera": `},
		{"unknown key", `{"camera": {"position": [0,0,1]}, "lights": []}`},
		{"no shape or model", `{"objects": [{"position": [0,0,0]}]}`},
		{"shape and model", `{"objects": [{"shape": "cube", "model": "a.glb"}]}`},
		{"unknown shape", `{"objects": [{"shape": "torus"}]}`},
		{"negative size", `{"objects": [{"shape": "cube", "size": -1}]}`},
		{"negative scale", `{"objects": [{"shape": "cube", "scale": [1, -1, 1]}]}`},
		{"fov too wide", `{"camera": {"position": [0,0,1], "fovDeg": 180}}`},
		{"target at eye", `{"camera": {"position": [1,1,1], "target": [1,1,1]}}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.json)); !errors.Is(err, ErrInvalidScene) {
				t.Errorf("Parse() error = %v, want ErrInvalidScene", err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.json")
	if err := os.WriteFile(path, []byte(sampleScene), 0o644); err != nil {
		t.Fatal(err)
	}

	setup, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if setup.Scene.Len() != 3 {
		t.Errorf("Len = %d, want 3", setup.Scene.Len())
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("LoadFile(missing) should fail")
	}
}

func TestLoadFileMissingModel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.json")
	data := `{"objects": [{"model": "nope.glb"}]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile with a missing model should fail")
	}
}

func TestDefault(t *testing.T) {
	setup := Default()

	if setup.Scene.Len() != 3 {
		t.Fatalf("Len = %d, want 3", setup.Scene.Len())
	}
	if setup.Light != setup.Scene.Center().Add(LightOffset) {
		t.Errorf("Light = %v, want centre + offset", setup.Light)
	}

	c := setup.Scene.Capture()
	if c.Snapshot.TriangleCount() == 0 {
		t.Error("default scene has no triangles")
	}
	if c.Snapshot.Dropped() != 0 {
		t.Errorf("default scene dropped %d triangles", c.Snapshot.Dropped())
	}
}
