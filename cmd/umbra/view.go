package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/taigrr/umbra/pkg/engine"
	"github.com/taigrr/umbra/pkg/raytrace"
	"github.com/taigrr/umbra/pkg/render"
	"github.com/taigrr/umbra/pkg/scene"
)

const (
	moveStep   = 0.1 // world units per key press
	rotateStep = 5.0 // degrees per key press
)

func newViewCmd(global *globalOptions) *cobra.Command {
	var fps int

	cmd := &cobra.Command{
		Use:   "view [scene.json]",
		Short: "Explore a scene interactively in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fps <= 0 {
				return fmt.Errorf("--fps must be positive, got %d", fps)
			}
			global.interactive = true
			logger, closeLog, err := global.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			setup, err := loadSetup(sceneArg(args), logger)
			if err != nil {
				return err
			}
			engOpts, err := global.engineOptions(logger, setup)
			if err != nil {
				return err
			}
			return runViewer(cmd.Context(), setup, engOpts, fps, logger)
		},
	}
	cmd.Flags().IntVar(&fps, "fps", 60, "target frames per second")
	return cmd
}

// viewer is the interactive session state. All fields are owned by the
// render loop goroutine.
type viewer struct {
	term   *uv.Terminal
	setup  *scene.Setup
	eng    *engine.Engine
	cam    *render.Camera
	orbit  *orbitController
	light  *lightOrbit
	hud    *hud
	logger *log.Logger

	width, height int
	lightOn       bool
	selected      int // index into the scene's objects, -1 for none

	mouseDown    bool
	lastX, lastY int
}

func runViewer(ctx context.Context, setup *scene.Setup, opts engine.Options, fps int, logger *log.Logger) error {
	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Any-event mouse tracking, SGR encoding, bracketed paste
	fmt.Fprint(os.Stdout, "\x1b[?1003h\x1b[?1006h\x1b[?2004h")
	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l\x1b[?1006l\x1b[?2004l")
		term.ExitAltScreen()
		term.ShowCursor()
		_ = term.Shutdown(context.Background())
	}()

	cam := newCamera(setup)
	fb := render.NewFramebuffer(max(1, width), max(1, height*2))
	eng, err := engine.New(setup.Scene, cam, fb, opts)
	if err != nil {
		return err
	}
	eng.SetLight(setup.Light)

	v := &viewer{
		term:     term,
		setup:    setup,
		eng:      eng,
		cam:      cam,
		orbit:    newOrbitController(fps, setup.CameraTarget, setup.CameraPosition),
		light:    newLightOrbit(fps, setup.Scene.Center(), setup.Light),
		hud:      newHUD(time.Now()),
		logger:   logger,
		width:    width,
		height:   height,
		lightOn:  true,
		selected: -1,
	}
	logger.Info("viewer started", "size", fmt.Sprintf("%dx%d", width, height), "fps", fps, "workers", eng.Workers())

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	events := term.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if quit := v.handle(ev); quit {
				logger.Info("viewer stopped", "hits", eng.TotalHits())
				return nil
			}
		case <-ticker.C:
			if err := v.frame(); err != nil {
				return err
			}
		}
	}
}

// handle applies one input event and reports whether the viewer should exit.
func (v *viewer) handle(ev uv.Event) bool {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		v.resize(ev.Width, ev.Height)

	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("ctrl+c", "esc", "escape", "q"):
			return true
		case ev.MatchString("tab"):
			v.selectNext()
		case ev.MatchString("left"):
			v.editSelection(func(o *scene.Object) { o.Transform.Position.X -= moveStep })
		case ev.MatchString("right"):
			v.editSelection(func(o *scene.Object) { o.Transform.Position.X += moveStep })
		case ev.MatchString("up"):
			v.editSelection(func(o *scene.Object) { o.Transform.Position.Z -= moveStep })
		case ev.MatchString("down"):
			v.editSelection(func(o *scene.Object) { o.Transform.Position.Z += moveStep })
		case ev.MatchString("n"):
			v.editSelection(func(o *scene.Object) { o.Transform.Position.Y -= moveStep })
		case ev.MatchString("m"):
			v.editSelection(func(o *scene.Object) { o.Transform.Position.Y += moveStep })
		case ev.MatchString(","):
			v.editSelection(func(o *scene.Object) { o.Transform.Rotation.Y -= rotateStep })
		case ev.MatchString("."):
			v.editSelection(func(o *scene.Object) { o.Transform.Rotation.Y += rotateStep })
		case ev.MatchString("delete", "backspace"):
			v.deleteSelection()
		case ev.MatchString("c"):
			v.editSelection(func(o *scene.Object) { o.CastsShadows = !o.CastsShadows })
		case ev.MatchString("s"):
			v.eng.SetMode(v.eng.Mode().Next())
		case ev.MatchString("o"):
			v.light.Toggle()
			v.logger.Debug("light orbit", "running", v.light.Running())
		case ev.MatchString("l"):
			v.toggleLight()
		case ev.MatchString("x"):
			v.eng.SetWireframe(!v.eng.Wireframe())
		case ev.MatchString("r"):
			v.orbit.Reset()
		case ev.MatchString("+", "="):
			v.orbit.Zoom(1)
		case ev.MatchString("-", "_"):
			v.orbit.Zoom(-1)
		case ev.MatchString("?", "shift+/"):
			v.hud.visible = !v.hud.visible
		}

	case uv.PasteEvent:
		v.loadModel(ev.Content)

	case uv.MouseClickEvent:
		v.mouseDown = true
		v.lastX, v.lastY = ev.X, ev.Y

	case uv.MouseReleaseEvent:
		v.mouseDown = false

	case uv.MouseMotionEvent:
		if v.mouseDown {
			v.orbit.Drag(ev.X-v.lastX, ev.Y-v.lastY)
			v.lastX, v.lastY = ev.X, ev.Y
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			v.orbit.Zoom(1)
		case uv.MouseWheelDown:
			v.orbit.Zoom(-1)
		}
	}
	return false
}

func (v *viewer) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	v.width, v.height = width, height
	v.term.Erase()
	v.term.Resize(width, height)
	if err := v.eng.Resize(width, height*2); err != nil {
		v.logger.Error("resize", "err", err)
	}
}

// selectNext cycles the selection through every object and then none.
func (v *viewer) selectNext() {
	objs := v.setup.Scene.Objects()
	v.selected++
	if v.selected >= len(objs) {
		v.selected = -1
	}
	if v.selected < 0 {
		v.eng.Select(raytrace.NoObject)
		return
	}
	v.eng.Select(objs[v.selected].ID)
	v.logger.Debug("selected", "name", objs[v.selected].Name)
}

func (v *viewer) editSelection(fn func(*scene.Object)) {
	id := v.eng.Selected()
	if id == raytrace.NoObject {
		return
	}
	if err := v.setup.Scene.Update(id, fn); err != nil {
		v.logger.Warn("edit selection", "err", err)
	}
}

// deleteSelection removes the selected object from the scene. The next
// frame's capture no longer contains it.
func (v *viewer) deleteSelection() {
	id := v.eng.Selected()
	if id == raytrace.NoObject {
		return
	}
	if err := v.setup.Scene.Remove(id); err != nil {
		v.logger.Warn("delete selection", "err", err)
	}
	v.eng.Select(raytrace.NoObject)
	v.selected = -1
	v.logger.Info("deleted object", "id", id, "remaining", v.setup.Scene.Len())
}

// loadModel adds the .glb file at a pasted path and selects it. Dropping a
// file on most terminals pastes its path, possibly quoted.
func (v *viewer) loadModel(pasted string) {
	path := pastedPath(pasted)
	if path == "" {
		return
	}
	id, err := v.setup.Scene.AddModel(path)
	if err != nil {
		v.logger.Warn("load model", "path", path, "err", err)
		return
	}
	v.eng.Select(id)
	v.selected = v.setup.Scene.Len() - 1
	v.logger.Info("loaded model", "path", path, "id", id)
}

func pastedPath(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	s = strings.TrimPrefix(s, "file://")
	return strings.ReplaceAll(s, "\\ ", " ")
}

func (v *viewer) toggleLight() {
	v.lightOn = !v.lightOn
	if v.lightOn {
		v.eng.SetLight(v.light.Position())
	} else {
		v.eng.ClearLight()
	}
}

func (v *viewer) selectionState() hudState {
	st := hudState{
		wireframe:  v.eng.Wireframe(),
		lightOn:    v.lightOn,
		lightOrbit: v.light.Running(),
	}
	if id := v.eng.Selected(); id != raytrace.NoObject {
		if obj, ok := v.setup.Scene.Get(id); ok {
			st.selection = obj.Name
			st.casts = obj.CastsShadows
		}
	}
	return st
}

// frame advances animation, renders and presents one frame.
func (v *viewer) frame() error {
	v.orbit.Update()
	v.orbit.Apply(v.cam)

	if pos, moving := v.light.Update(); moving && v.lightOn {
		v.eng.SetLight(pos)
	}

	stats := v.eng.RenderFrame()
	v.hud.tick(stats, time.Now())

	area := uv.Rect(0, 0, v.width, v.height)
	v.eng.Framebuffer().Draw(v.term, area)
	v.hud.draw(v.term, area, v.selectionState())
	if err := v.term.Display(); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}
