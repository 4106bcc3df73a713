package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taigrr/umbra/pkg/engine"
	"github.com/taigrr/umbra/pkg/render"
)

type renderOptions struct {
	output string
	mask   string
	width  int
	height int
}

func newRenderCmd(global *globalOptions) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render [scene.json]",
		Short: "Render one frame to a PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, global, opts, sceneArg(args))
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "frame.png", "output image")
	f.StringVar(&opts.mask, "mask", "", "also write the shadow mask to this PNG")
	f.IntVar(&opts.width, "width", 320, "image width in pixels")
	f.IntVar(&opts.height, "height", 240, "image height in pixels")
	return cmd
}

func runRender(cmd *cobra.Command, global *globalOptions, opts *renderOptions, scenePath string) error {
	if opts.width <= 0 || opts.height <= 0 {
		return fmt.Errorf("image size must be positive, got %dx%d", opts.width, opts.height)
	}

	logger, closeLog, err := global.newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	setup, err := loadSetup(scenePath, logger)
	if err != nil {
		return err
	}
	engOpts, err := global.engineOptions(logger, setup)
	if err != nil {
		return err
	}

	fb := render.NewFramebuffer(opts.width, opts.height)
	eng, err := engine.New(setup.Scene, newCamera(setup), fb, engOpts)
	if err != nil {
		return err
	}
	eng.SetLight(setup.Light)

	stats := eng.RenderFrame()
	logger.Info("rendered",
		"size", fmt.Sprintf("%dx%d", opts.width, opts.height),
		"objects", stats.Objects,
		"triangles", stats.Triangles,
		"pass", stats.Pass.Duration,
		"hits", stats.Pass.Hits,
		"occluded", stats.Pass.Occluded,
		"total", stats.Duration)

	if err := fb.SavePNG(opts.output); err != nil {
		return err
	}
	if opts.mask != "" {
		if stats.Pass.Skipped {
			logger.Warn("no shadow pass ran; mask is all lit", "mode", stats.Mode)
		}
		if err := eng.Mask().SavePNG(opts.mask); err != nil {
			return err
		}
	}
	return nil
}
