package main

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/umbra/pkg/math3d"
	"github.com/taigrr/umbra/pkg/render"
)

const (
	minDistance   = 1.5
	maxDistance   = 60
	dragSpeed     = 0.01
	zoomStep      = 1.1
	lightOrbitRPS = 0.15 // turns per second at full speed
	minOrbitRad   = 2.0
)

// springAxis is a value pushed by impulses whose velocity decays smoothly
// to zero.
type springAxis struct {
	value    float64
	velocity float64
	accel    float64 // spring velocity of velocity
	spring   harmonica.Spring
}

func newSpringAxis(fps int, value float64) springAxis {
	// Critically damped: decays without overshoot
	return springAxis{value: value, spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

func (a *springAxis) update() {
	a.value += a.velocity
	a.velocity, a.accel = a.spring.Update(a.velocity, a.accel, 0)
}

// orbitController moves the camera on a sphere around a target.
type orbitController struct {
	target math3d.Vec3
	yaw    springAxis
	pitch  springAxis

	distance     float64
	distVelocity float64
	distTarget   float64
	distSpring   harmonica.Spring

	home [3]float64 // yaw, pitch, distance for reset
}

func newOrbitController(fps int, target, eye math3d.Vec3) *orbitController {
	offset := eye.Sub(target)
	dist := math.Max(offset.Len(), minDistance)
	yaw := math.Atan2(offset.X, offset.Z)
	pitch := math.Asin(math.Max(-1, math.Min(1, offset.Y/dist)))

	return &orbitController{
		target:     target,
		yaw:        newSpringAxis(fps, yaw),
		pitch:      newSpringAxis(fps, pitch),
		distance:   dist,
		distTarget: dist,
		distSpring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
		home:       [3]float64{yaw, pitch, dist},
	}
}

// Drag adds angular velocity from a mouse movement in terminal cells.
func (o *orbitController) Drag(dx, dy int) {
	o.yaw.velocity -= float64(dx) * dragSpeed
	o.pitch.velocity += float64(dy) * dragSpeed
}

// Zoom moves toward (positive steps) or away from the target.
func (o *orbitController) Zoom(steps float64) {
	d := o.distTarget * math.Pow(zoomStep, -steps)
	o.distTarget = math.Max(minDistance, math.Min(maxDistance, d))
}

// Reset returns to the starting view.
func (o *orbitController) Reset() {
	o.yaw.value, o.yaw.velocity = o.home[0], 0
	o.pitch.value, o.pitch.velocity = o.home[1], 0
	o.distTarget = o.home[2]
}

// Update advances the springs by one frame.
func (o *orbitController) Update() {
	o.yaw.update()
	o.pitch.update()
	if p := o.pitch.value; p > render.MaxOrbitPitch || p < -render.MaxOrbitPitch {
		o.pitch.value = math.Max(-render.MaxOrbitPitch, math.Min(render.MaxOrbitPitch, p))
		o.pitch.velocity = 0
	}
	o.distance, o.distVelocity = o.distSpring.Update(o.distance, o.distVelocity, o.distTarget)
}

// Apply positions cam.
func (o *orbitController) Apply(cam *render.Camera) {
	cam.Orbit(o.target, o.yaw.value, o.pitch.value, o.distance)
}

// lightOrbit circles the light around the scene centre at constant height.
// Starting and stopping ease in and out.
type lightOrbit struct {
	center math3d.Vec3
	height float64
	fps    int

	angle       float64
	speed       float64 // radians per frame
	speedAccel  float64
	speedSpring harmonica.Spring

	radius       float64
	radiusVel    float64
	radiusTarget float64
	radiusSpring harmonica.Spring

	running bool
}

func newLightOrbit(fps int, center, light math3d.Vec3) *lightOrbit {
	dx, dz := light.X-center.X, light.Z-center.Z
	r := math.Hypot(dx, dz)
	return &lightOrbit{
		center:       center,
		height:       light.Y,
		fps:          fps,
		angle:        math.Atan2(dz, dx),
		radius:       r,
		radiusTarget: r,
		speedSpring:  harmonica.NewSpring(harmonica.FPS(fps), 2.0, 1.0),
		radiusSpring: harmonica.NewSpring(harmonica.FPS(fps), 2.0, 1.0),
	}
}

// Toggle starts or stops the orbit.
func (l *lightOrbit) Toggle() {
	l.running = !l.running
	if l.running {
		l.radiusTarget = math.Max(l.radiusTarget, minOrbitRad)
	}
}

// Running reports whether the orbit is driving the light.
func (l *lightOrbit) Running() bool {
	return l.running
}

// Update advances one frame and returns the light position. moving is
// false once the orbit has stopped and settled.
func (l *lightOrbit) Update() (pos math3d.Vec3, moving bool) {
	target := 0.0
	if l.running {
		target = 2 * math.Pi * lightOrbitRPS / float64(l.fps)
	}
	l.speed, l.speedAccel = l.speedSpring.Update(l.speed, l.speedAccel, target)
	l.radius, l.radiusVel = l.radiusSpring.Update(l.radius, l.radiusVel, l.radiusTarget)
	l.angle = math.Mod(l.angle+l.speed, 2*math.Pi)

	moving = l.running || math.Abs(l.speed) > 1e-6 || math.Abs(l.radiusVel) > 1e-6
	return l.Position(), moving
}

// Position returns the current light position.
func (l *lightOrbit) Position() math3d.Vec3 {
	return math3d.V3(
		l.center.X+l.radius*math.Cos(l.angle),
		l.height,
		l.center.Z+l.radius*math.Sin(l.angle),
	)
}
