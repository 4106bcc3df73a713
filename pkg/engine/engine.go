// Package engine ties a scene, a camera and a framebuffer together and
// renders frames: a ray-traced shadow mask followed by a rasterized, lit
// pass that samples it.
package engine

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/taigrr/umbra/pkg/math3d"
	"github.com/taigrr/umbra/pkg/raytrace"
	"github.com/taigrr/umbra/pkg/render"
	"github.com/taigrr/umbra/pkg/scene"
)

// DefaultShadowDivisor gives a quarter-resolution mask.
const DefaultShadowDivisor = 2

// gizmoSize is the edge length of the light marker in world units.
const gizmoSize = 0.3

var (
	selectionColor = render.ColorYellow
	gizmoColor     = render.RGB(255, 220, 120)
)

// Options configures an Engine. Zero values select defaults.
type Options struct {
	// ShadowDivisor divides the framebuffer size on each axis to get the
	// mask size.
	ShadowDivisor int
	// Workers is the tracer goroutine count; below one means one per CPU.
	Workers    int
	Mode       ShadowMode
	Background color.RGBA
	Logger     *log.Logger
}

// FrameStats describes one call to RenderFrame.
type FrameStats struct {
	Frame     uint64
	Mode      ShadowMode
	Objects   int
	Triangles int
	Dropped   int // triangles the snapshot rejected
	Skipped   int // objects not drawn because their transform is not finite

	Pass     raytrace.PassStats
	Culling  render.CullingStats
	Shading  render.ShadeStats
	Raster   time.Duration
	Duration time.Duration
}

// Engine renders a scene. It is not safe for concurrent use; the scene it
// reads from is.
type Engine struct {
	scene  *scene.Scene
	camera *render.Camera
	fb     *render.Framebuffer
	rast   *render.Rasterizer
	wire   *render.Wireframe
	tracer *raytrace.Tracer
	log    *log.Logger

	divisor    int
	background color.RGBA
	mode       ShadowMode
	light      *math3d.Vec3
	wireframe  bool
	selected   raytrace.ObjectID

	frames      uint64
	lastDropped int
}

// New creates an engine drawing s through cam into fb. The camera's aspect
// ratio is set from fb.
func New(s *scene.Scene, cam *render.Camera, fb *render.Framebuffer, opts Options) (*Engine, error) {
	if s == nil || cam == nil || fb == nil {
		return nil, errors.New("engine: scene, camera and framebuffer are required")
	}
	if opts.ShadowDivisor < 1 {
		opts.ShadowDivisor = DefaultShadowDivisor
	}
	if opts.Background == (color.RGBA{}) {
		opts.Background = scene.DefaultBackground
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	mw, mh := maskSize(fb.Width, fb.Height, opts.ShadowDivisor)
	tracer, err := raytrace.NewTracer(mw, mh, raytrace.WithWorkers(opts.Workers))
	if err != nil {
		return nil, fmt.Errorf("create tracer: %w", err)
	}

	e := &Engine{
		scene:      s,
		camera:     cam,
		fb:         fb,
		rast:       render.NewRasterizer(cam, fb),
		wire:       render.NewWireframe(cam, fb),
		tracer:     tracer,
		log:        logger,
		divisor:    opts.ShadowDivisor,
		background: opts.Background,
		mode:       opts.Mode,
	}
	cam.SetAspectRatio(aspect(fb.Width, fb.Height))

	logger.Debug("engine ready",
		"framebuffer", fmt.Sprintf("%dx%d", fb.Width, fb.Height),
		"mask", fmt.Sprintf("%dx%d", mw, mh),
		"workers", tracer.Workers(),
		"mode", opts.Mode)
	return e, nil
}

func maskSize(w, h, divisor int) (int, int) {
	return max(1, w/divisor), max(1, h/divisor)
}

func aspect(w, h int) float64 {
	if w <= 0 || h <= 0 {
		return 1
	}
	return float64(w) / float64(h)
}

// SetLight places the point light. Until a light is set no shadow pass runs
// and surfaces are lit from the camera.
func (e *Engine) SetLight(p math3d.Vec3) {
	e.light = &p
}

// ClearLight removes the light.
func (e *Engine) ClearLight() {
	e.light = nil
}

// Light returns the light position, if one is set.
func (e *Engine) Light() (math3d.Vec3, bool) {
	if e.light == nil {
		return math3d.Vec3{}, false
	}
	return *e.light, true
}

// SetMode switches the shadow mode.
func (e *Engine) SetMode(m ShadowMode) {
	if m != e.mode {
		e.log.Info("shadow mode", "mode", m)
	}
	e.mode = m
}

// Mode returns the current shadow mode.
func (e *Engine) Mode() ShadowMode {
	return e.mode
}

// SetWireframe toggles drawing meshes as wireframes instead of lit surfaces.
func (e *Engine) SetWireframe(on bool) {
	e.wireframe = on
}

// Wireframe reports whether wireframe drawing is on.
func (e *Engine) Wireframe() bool {
	return e.wireframe
}

// Select highlights an object; raytrace.NoObject clears the selection.
func (e *Engine) Select(id raytrace.ObjectID) {
	e.selected = id
}

// Selected returns the highlighted object.
func (e *Engine) Selected() raytrace.ObjectID {
	return e.selected
}

// Framebuffer returns the target the engine draws into.
func (e *Engine) Framebuffer() *render.Framebuffer {
	return e.fb
}

// Workers returns the tracer's goroutine count.
func (e *Engine) Workers() int {
	return e.tracer.Workers()
}

// TotalHits returns primary hits over every pass so far.
func (e *Engine) TotalHits() int64 {
	return e.tracer.TotalHits()
}

// Resize changes the framebuffer size and everything derived from it.
func (e *Engine) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize to %dx%d: %w", width, height, raytrace.ErrInvalidResolution)
	}
	e.fb.Resize(width, height)
	e.rast.Resize()
	e.camera.SetAspectRatio(aspect(width, height))

	mw, mh := maskSize(width, height, e.divisor)
	if err := e.tracer.Resize(mw, mh); err != nil {
		return fmt.Errorf("resize mask: %w", err)
	}
	e.log.Debug("resized", "framebuffer", fmt.Sprintf("%dx%d", width, height), "mask", fmt.Sprintf("%dx%d", mw, mh))
	return nil
}

// Mask returns the mask of the last completed shadow pass. It is owned by
// the engine and is overwritten two frames later.
func (e *Engine) Mask() *raytrace.ShadowMask {
	return e.tracer.Mask()
}

// RenderFrame draws one frame into the framebuffer. The scene is captured
// once, so edits made while the frame renders show up in the next one.
func (e *Engine) RenderFrame() FrameStats {
	start := time.Now()
	e.frames++
	capture := e.scene.Capture()

	stats := FrameStats{
		Frame:     e.frames,
		Mode:      e.mode,
		Objects:   capture.Snapshot.Len(),
		Triangles: capture.Snapshot.TriangleCount(),
		Dropped:   capture.Snapshot.Dropped(),
	}
	if stats.Dropped != e.lastDropped {
		if stats.Dropped > 0 {
			e.log.Warn("snapshot dropped invalid triangles", "count", stats.Dropped)
		}
		e.lastDropped = stats.Dropped
	}

	var shadows *render.Texture
	if e.mode == ShadowsRaytraced {
		view := e.camera.View()
		mask, pass := e.tracer.Trace(raytrace.Frame{
			Snapshot: capture.Snapshot,
			Camera:   &view,
			Light:    e.light,
		})
		stats.Pass = pass
		if !pass.Skipped {
			shadows = render.TextureFromMask(mask)
		}
	} else {
		stats.Pass.Skipped = true
	}

	rasterStart := time.Now()
	e.fb.Clear(e.background)
	e.rast.BeginFrame()

	lightPos := e.camera.Position
	if e.light != nil {
		lightPos = *e.light
	}

	for _, obj := range capture.Objects {
		if obj.Mesh == nil {
			continue
		}
		if !obj.Transform.IsFinite() {
			stats.Skipped++
			continue
		}
		m := obj.Transform.Matrix()
		if e.wireframe {
			e.rast.DrawMeshWireframe(obj.Mesh, m, obj.Color)
		} else {
			e.rast.DrawMeshLit(obj.Mesh, m, obj.Color, lightPos, shadows)
		}
	}

	e.drawOverlays(capture)

	stats.Culling = e.rast.CullingStats
	stats.Shading = e.rast.ShadeStats
	stats.Raster = time.Since(rasterStart)
	stats.Duration = time.Since(start)

	e.log.Debug("frame",
		"n", stats.Frame,
		"pass", stats.Pass.Duration,
		"hits", stats.Pass.Hits,
		"occluded", stats.Pass.Occluded,
		"raster", stats.Raster)
	return stats
}

// drawOverlays draws the light gizmo and the selection box over the frame.
func (e *Engine) drawOverlays(capture scene.Capture) {
	if e.light != nil && e.rast.SphereVisible(*e.light, gizmoSize) {
		e.wire.DrawTransformedCube(math3d.Translate(*e.light), gizmoSize, gizmoColor)
		e.wire.DrawPoint(*e.light, gizmoSize*2, gizmoColor)
	}

	if e.selected == raytrace.NoObject {
		return
	}
	for _, obj := range capture.Snapshot.Objects() {
		if obj.ID == e.selected {
			e.wire.DrawTransformedCube(math3d.Translate(obj.Position), 2*obj.Radius, selectionColor)
			return
		}
	}
}
