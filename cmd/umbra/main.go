// umbra - ray-traced shadows in the terminal.
//
// A scene of meshes is rasterized with a single point light. Every frame a
// shadow mask is ray traced at reduced resolution on all cores and sampled
// by the rasterizer.
//
// Viewer controls:
//
//	Mouse drag  - Orbit the camera
//	Scroll      - Zoom in/out
//	Tab         - Select the next object
//	Arrows      - Move the selection on the floor plane
//	n/m         - Move the selection down/up
//	,/.         - Rotate the selection
//	c           - Toggle whether the selection casts shadows
//	Del/Bksp    - Delete the selection
//	Paste path  - Load a .glb model (drop a file on the terminal)
//	s           - Toggle ray-traced shadows
//	o           - Start/stop orbiting the light
//	l           - Toggle the light
//	x           - Toggle wireframe
//	r           - Reset the camera
//	?           - Toggle HUD overlay
//	Esc/q       - Quit
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/taigrr/umbra/pkg/engine"
	"github.com/taigrr/umbra/pkg/render"
	"github.com/taigrr/umbra/pkg/scene"
)

var version = "dev"

// globalOptions are the flags shared by every command.
type globalOptions struct {
	workers     int
	shadowDiv   int
	shadowMode  string
	logLevel    string
	logFile     string
	interactive bool // set by commands that own the terminal
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "umbra",
		Short: "Ray-traced shadows in the terminal",
		Long: "umbra renders a scene of meshes lit by one point light. Shadows come from " +
			"a ray-traced mask computed every frame on all cores.",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.IntVar(&opts.workers, "workers", 0, "shadow tracer goroutines (0 = one per CPU)")
	pf.IntVar(&opts.shadowDiv, "shadow-div", engine.DefaultShadowDivisor, "shadow mask is the frame size divided by this on each axis")
	pf.StringVar(&opts.shadowMode, "shadows", engine.ShadowsRaytraced.String(), "shadow mode: none or raytraced")
	pf.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.StringVar(&opts.logFile, "log-file", "", "write logs to this file")

	root.AddCommand(newViewCmd(opts), newRenderCmd(opts))
	return root
}

// newLogger builds the logger for a command. Interactive commands discard
// logs unless a log file is given, since the alternate screen owns stdout.
func (o *globalOptions) newLogger(stderr io.Writer) (*log.Logger, func() error, error) {
	level, err := log.ParseLevel(o.logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("--log-level: %w", err)
	}

	w := stderr
	closeFn := func() error { return nil }
	switch {
	case o.logFile != "":
		f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = f.Close
	case o.interactive:
		w = io.Discard
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "umbra",
	})
	return logger, closeFn, nil
}

// engineOptions converts the shared flags.
func (o *globalOptions) engineOptions(logger *log.Logger, setup *scene.Setup) (engine.Options, error) {
	mode, err := engine.ParseShadowMode(o.shadowMode)
	if err != nil {
		return engine.Options{}, fmt.Errorf("--shadows: %w", err)
	}
	if o.shadowDiv < 1 {
		return engine.Options{}, fmt.Errorf("--shadow-div must be at least 1, got %d", o.shadowDiv)
	}
	return engine.Options{
		ShadowDivisor: o.shadowDiv,
		Workers:       o.workers,
		Mode:          mode,
		Background:    setup.Background,
		Logger:        logger,
	}, nil
}

// loadSetup reads a scene file, or returns the built-in scene for "".
func loadSetup(path string, logger *log.Logger) (*scene.Setup, error) {
	if path == "" {
		logger.Debug("using built-in scene")
		return scene.Default(), nil
	}
	setup, err := scene.LoadFile(path)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded scene", "path", path, "objects", setup.Scene.Len())
	return setup, nil
}

// newCamera places a camera as the scene describes.
func newCamera(setup *scene.Setup) *render.Camera {
	cam := render.NewCamera()
	cam.SetFOV(setup.FOV)
	cam.SetPosition(setup.CameraPosition)
	cam.LookAt(setup.CameraTarget)
	return cam
}

func sceneArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
