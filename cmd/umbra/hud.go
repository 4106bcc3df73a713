package main

import (
	"fmt"
	"image/color"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/umbra/pkg/engine"
)

var (
	hudFg     = color.RGBA{235, 235, 235, 255}
	hudBg     = color.RGBA{0, 0, 0, 255}
	hudAccent = color.RGBA{255, 210, 90, 255}
)

// hud tracks frame rate and draws the overlay lines.
type hud struct {
	visible bool
	fps     float64
	frames  int
	since   time.Time
	last    engine.FrameStats
}

func newHUD(now time.Time) *hud {
	return &hud{since: now}
}

// tick records a finished frame.
func (h *hud) tick(stats engine.FrameStats, now time.Time) {
	h.last = stats
	h.frames++
	if elapsed := now.Sub(h.since); elapsed >= time.Second {
		h.fps = float64(h.frames) / elapsed.Seconds()
		h.frames = 0
		h.since = now
	}
}

// hudState is the viewer state the bottom line reports.
type hudState struct {
	wireframe  bool
	lightOn    bool
	lightOrbit bool
	selection  string
	casts      bool
}

func check(on bool) string {
	if on {
		return "[✓]"
	}
	return "[ ]"
}

func (h *hud) topLine() string {
	s := h.last
	pass := "off"
	if !s.Pass.Skipped {
		pass = fmt.Sprintf("%s %dx%d hits %d occluded %d",
			s.Pass.Duration.Round(100*time.Microsecond), s.Pass.Width, s.Pass.Height, s.Pass.Hits, s.Pass.Occluded)
	}
	return fmt.Sprintf(" %.0f FPS | pass %s | %d objects %d tris ", h.fps, pass, s.Objects, s.Triangles)
}

func (h *hud) bottomLine(st hudState) string {
	line := fmt.Sprintf(" %s shadows  %s light  %s orbit  %s wireframe ",
		check(h.last.Mode == engine.ShadowsRaytraced), check(st.lightOn), check(st.lightOrbit), check(st.wireframe))
	if st.selection != "" {
		casts := "casts"
		if !st.casts {
			casts = "no shadow"
		}
		line += fmt.Sprintf("| %s (%s) ", st.selection, casts)
	}
	return line
}

// draw writes the overlay onto the first and last rows of area.
func (h *hud) draw(scr uv.Screen, area uv.Rectangle, st hudState) {
	if !h.visible {
		if st.lightOrbit {
			drawText(scr, area.Min.X, area.Max.Y-1, " light orbit ", hudAccent, hudBg)
		}
		return
	}
	drawText(scr, area.Min.X, area.Min.Y, h.topLine(), hudFg, hudBg)
	drawText(scr, area.Min.X, area.Max.Y-1, h.bottomLine(st), hudFg, hudBg)
}

// drawText writes one cell per rune starting at (x, y), clipped to the
// screen bounds.
func drawText(scr uv.Screen, x, y int, s string, fg, bg color.Color) {
	bounds := scr.Bounds()
	if y < bounds.Min.Y || y >= bounds.Max.Y {
		return
	}
	for _, r := range s {
		if x >= bounds.Max.X {
			return
		}
		if x >= bounds.Min.X {
			scr.SetCell(x, y, &uv.Cell{
				Content: string(r),
				Width:   1,
				Style:   uv.Style{Fg: fg, Bg: bg},
			})
		}
		x++
	}
}
