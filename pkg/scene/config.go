package scene

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/taigrr/umbra/pkg/math3d"
	"github.com/taigrr/umbra/pkg/models"
)

// ErrInvalidScene wraps every validation failure of a scene file.
var ErrInvalidScene = errors.New("invalid scene")

// LightOffset places the default light above the scene centre.
var LightOffset = math3d.V3(0, 2, 0)

// Primitive shape names accepted in scene files.
const (
	ShapeSphere = "sphere"
	ShapeCube   = "cube"
	ShapePlane  = "plane"
)

// Config is the JSON form of a scene file.
type Config struct {
	Camera     CameraCfg   `json:"camera"`
	Light      *LightCfg   `json:"light,omitempty"`
	Background *[3]uint8   `json:"background,omitempty"`
	Objects    []ObjectCfg `json:"objects"`
}

// CameraCfg places the viewing camera.
type CameraCfg struct {
	Position [3]float64  `json:"position"`
	Target   *[3]float64 `json:"target,omitempty"` // defaults to the scene centre
	FOVDeg   float64     `json:"fovDeg,omitempty"` // defaults to 60
}

// LightCfg places the point light.
type LightCfg struct {
	Position [3]float64 `json:"position"`
}

// ObjectCfg is one primitive or model instance.
type ObjectCfg struct {
	Name string `json:"name,omitempty"`

	// Exactly one of Shape and Model must be set. Model is a .glb path,
	// relative to the scene file.
	Shape string `json:"shape,omitempty"`
	Model string `json:"model,omitempty"`

	Size    float64 `json:"size,omitempty"`    // edge length or radius, defaults 1
	Sectors int     `json:"sectors,omitempty"` // sphere only, defaults 24
	Stacks  int     `json:"stacks,omitempty"`  // sphere only, defaults 12

	Position [3]float64 `json:"position"`
	RotDeg   [3]float64 `json:"rotDeg,omitempty"`
	Scale    [3]float64 `json:"scale,omitempty"` // zero components default to 1

	Color        *[3]uint8 `json:"color,omitempty"`
	CastsShadows *bool     `json:"castsShadows,omitempty"` // defaults to true
}

// Setup is a built scene together with its camera and light placement.
type Setup struct {
	Scene          *Scene
	CameraPosition math3d.Vec3
	CameraTarget   math3d.Vec3
	FOV            float64 // radians
	Light          math3d.Vec3
	Background     color.RGBA
}

// DefaultBackground is used when a scene file gives none.
var DefaultBackground = color.RGBA{20, 24, 32, 255}

// LoadFile reads and builds a scene file. Model paths are resolved relative
// to the file's directory.
func LoadFile(path string) (*Setup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg.Build(filepath.Dir(path))
}

// Parse decodes a scene file. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the config without touching the filesystem.
func (c *Config) Validate() error {
	if c.Camera.FOVDeg < 0 || c.Camera.FOVDeg >= 180 {
		return fmt.Errorf("%w: camera fovDeg %v out of range (0, 180)", ErrInvalidScene, c.Camera.FOVDeg)
	}
	if c.Camera.Target != nil && *c.Camera.Target == c.Camera.Position {
		return fmt.Errorf("%w: camera target equals its position", ErrInvalidScene)
	}
	for i, o := range c.Objects {
		if err := o.validate(); err != nil {
			return fmt.Errorf("%w: object %d: %v", ErrInvalidScene, i, err)
		}
	}
	return nil
}

func (o ObjectCfg) validate() error {
	switch {
	case o.Shape == "" && o.Model == "":
		return errors.New("one of shape or model is required")
	case o.Shape != "" && o.Model != "":
		return errors.New("shape and model are mutually exclusive")
	}
	switch o.Shape {
	case "", ShapeSphere, ShapeCube, ShapePlane:
	default:
		return fmt.Errorf("unknown shape %q", o.Shape)
	}
	if o.Size < 0 {
		return fmt.Errorf("size must be positive, got %v", o.Size)
	}
	if o.Sectors < 0 || o.Stacks < 0 {
		return errors.New("sectors and stacks must be positive")
	}
	for _, s := range o.Scale {
		if s < 0 {
			return fmt.Errorf("scale must be > 0 on all axes, got %v", o.Scale)
		}
	}
	return nil
}

// Build creates the scene. baseDir resolves relative model paths.
func (c *Config) Build(baseDir string) (*Setup, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	s := New()
	for i, o := range c.Objects {
		mesh, err := o.mesh(baseDir)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}

		name := o.Name
		if name == "" {
			name = mesh.Name
		}
		id := s.Add(name, mesh)
		_ = s.Update(id, func(obj *Object) {
			obj.Transform = math3d.Transform{
				Position: vec(o.Position),
				Rotation: vec(o.RotDeg),
				Scale:    scaleOrOne(o.Scale),
			}
			if o.Color != nil {
				obj.Color = color.RGBA{o.Color[0], o.Color[1], o.Color[2], 255}
			}
			if o.CastsShadows != nil {
				obj.CastsShadows = *o.CastsShadows
			}
		})
	}

	setup := &Setup{
		Scene:          s,
		CameraPosition: vec(c.Camera.Position),
		CameraTarget:   s.Center(),
		FOV:            math3d.Radians(60),
		Light:          s.Center().Add(LightOffset),
		Background:     DefaultBackground,
	}
	if c.Camera.Target != nil {
		setup.CameraTarget = vec(*c.Camera.Target)
	}
	if c.Camera.FOVDeg > 0 {
		setup.FOV = math3d.Radians(c.Camera.FOVDeg)
	}
	if c.Light != nil {
		setup.Light = vec(c.Light.Position)
	}
	if c.Background != nil {
		setup.Background = color.RGBA{c.Background[0], c.Background[1], c.Background[2], 255}
	}
	return setup, nil
}

func (o ObjectCfg) mesh(baseDir string) (*models.Mesh, error) {
	if o.Model != "" {
		path := o.Model
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		return models.LoadGLB(path)
	}

	size := o.Size
	if size == 0 {
		size = 1
	}
	switch o.Shape {
	case ShapeSphere:
		return models.NewUVSphere(size, orDefault(o.Sectors, 24), orDefault(o.Stacks, 12)), nil
	case ShapeCube:
		return models.NewCube(size), nil
	default:
		return models.NewPlane(size), nil
	}
}

func vec(a [3]float64) math3d.Vec3 {
	return math3d.V3(a[0], a[1], a[2])
}

func scaleOrOne(a [3]float64) math3d.Vec3 {
	for i := range a {
		if a[i] == 0 || math.IsNaN(a[i]) {
			a[i] = 1
		}
	}
	return vec(a)
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// Default returns the built-in scene: a floor with a sphere and a cube, lit
// from above the scene centre.
func Default() *Setup {
	s := New()

	floor := s.Add("floor", models.NewPlane(12))
	_ = s.Update(floor, func(o *Object) {
		o.Color = color.RGBA{170, 170, 160, 255}
	})

	sphere := s.Add("sphere", models.NewUVSphere(1, 24, 12))
	_ = s.Update(sphere, func(o *Object) {
		o.Transform.Position = math3d.V3(-1.5, 1, 0)
		o.Transform.Rotation = math3d.V3(-90, 0, 0)
		o.Color = color.RGBA{220, 80, 70, 255}
	})

	cube := s.Add("cube", models.NewCube(1.5))
	_ = s.Update(cube, func(o *Object) {
		o.Transform.Position = math3d.V3(1.5, 0.75, 0.5)
		o.Transform.Rotation = math3d.V3(0, 30, 0)
		o.Color = color.RGBA{80, 130, 220, 255}
	})

	center := s.Center()
	return &Setup{
		Scene:          s,
		CameraPosition: math3d.V3(0, 4, 7),
		CameraTarget:   center,
		FOV:            math3d.Radians(60),
		Light:          center.Add(LightOffset),
		Background:     DefaultBackground,
	}
}
