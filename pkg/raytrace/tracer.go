package raytrace

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/umbra/pkg/math3d"
)

// ErrInvalidResolution is returned for a mask size that is not positive.
var ErrInvalidResolution = errors.New("raytrace: mask resolution must be positive")

// bandsPerWorker controls how finely rows are split so that uneven scene
// density still spreads across workers.
const bandsPerWorker = 4

// Frame is the input of one shadow pass. A nil Camera or Light skips the
// pass. A nil Snapshot is an empty scene.
type Frame struct {
	Snapshot *Snapshot
	Camera   *CameraView
	Light    *math3d.Vec3
}

// PassStats summarizes one call to Trace. The counters are diagnostics and
// have no effect on the mask.
type PassStats struct {
	Width            int
	Height           int
	Pixels           int
	Hits             int64
	Occluded         int64
	SphereRejections int64
	TriangleTests    int64
	Duration         time.Duration
	Skipped          bool
}

// Option configures a Tracer.
type Option func(*Tracer)

// WithWorkers sets the number of goroutines used per pass. Values below one
// select runtime.NumCPU.
func WithWorkers(n int) Option {
	return func(t *Tracer) {
		if n < 1 {
			n = runtime.NumCPU()
		}
		t.workers = n
	}
}

// WithProbe forwards per-candidate shadow diagnostics to p.
func WithProbe(p Probe) Option {
	return func(t *Tracer) {
		t.probe = p
	}
}

// Tracer produces shadow masks. Passes never overlap: a Trace call waits for
// the previous one to finish. Results are written to a back buffer that is
// swapped in only after every row is done.
type Tracer struct {
	mu      sync.Mutex
	width   int
	height  int
	workers int
	probe   Probe

	front *ShadowMask
	back  *ShadowMask

	totalHits atomic.Int64
}

// NewTracer creates a tracer for a width x height mask.
func NewTracer(width, height int, opts ...Option) (*Tracer, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidResolution
	}
	t := &Tracer{
		width:   width,
		height:  height,
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.front = NewShadowMask(width, height)
	t.back = NewShadowMask(width, height)
	return t, nil
}

// Size returns the mask resolution.
func (t *Tracer) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width, t.height
}

// Workers returns the configured worker count.
func (t *Tracer) Workers() int {
	return t.workers
}

// Resize changes the mask resolution. The current mask is reset to all lit.
func (t *Tracer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidResolution
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if width == t.width && height == t.height {
		return nil
	}
	t.width, t.height = width, height
	t.front = NewShadowMask(width, height)
	t.back = NewShadowMask(width, height)
	return nil
}

// Mask returns the most recently completed mask.
func (t *Tracer) Mask() *ShadowMask {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.front
}

// TotalHits returns the number of primary hits over the tracer's lifetime.
func (t *Tracer) TotalHits() int64 {
	return t.totalHits.Load()
}

// Trace runs a primary and a shadow pass for every mask cell and returns the
// finished mask. The mask is owned by the tracer and stays valid until the
// next call to Trace; use Clone to keep it longer.
func (t *Tracer) Trace(f Frame) (*ShadowMask, PassStats) {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := PassStats{Width: t.width, Height: t.height, Pixels: t.width * t.height}
	if f.Camera == nil || f.Light == nil {
		stats.Skipped = true
		return t.front, stats
	}

	start := time.Now()
	var counters passCounters
	counters.next = t.probe

	cam := *f.Camera
	light := *f.Light
	snap := f.Snapshot
	mask := t.back

	rowsPerBand := t.height / (t.workers * bandsPerWorker)
	if rowsPerBand < 1 {
		rowsPerBand = 1
	}

	var g errgroup.Group
	g.SetLimit(t.workers)
	for y0 := 0; y0 < t.height; y0 += rowsPerBand {
		y1 := min(y0+rowsPerBand, t.height)
		g.Go(func() error {
			t.traceBand(mask, snap, cam, light, y0, y1, &counters)
			return nil
		})
	}
	_ = g.Wait()

	t.front, t.back = t.back, t.front
	t.totalHits.Add(counters.hits.Load())

	stats.Hits = counters.hits.Load()
	stats.Occluded = counters.occluded.Load()
	stats.SphereRejections = counters.rejections.Load()
	stats.TriangleTests = counters.tests.Load()
	stats.Duration = time.Since(start)
	return t.front, stats
}

// traceBand fills rows [y0, y1) of mask. Only this goroutine writes them.
func (t *Tracer) traceBand(mask *ShadowMask, snap *Snapshot, cam CameraView, light math3d.Vec3, y0, y1 int, c *passCounters) {
	var scratch []candidate
	var hits, occluded int64

	for y := y0; y < y1; y++ {
		row := mask.Pix[y*t.width : (y+1)*t.width]
		for x := range row {
			row[x] = Lit

			ray, err := cam.PrimaryRay(x, y, t.width, t.height)
			if err != nil {
				continue
			}
			hit := snap.Nearest(ray)
			if !hit.Hit() {
				continue
			}
			hits++
			if snap.occluded(hit.Point, hit.Object, light, c, &scratch) {
				row[x] = Occluded
				occluded++
			}
		}
	}

	c.hits.Add(hits)
	c.occluded.Add(occluded)
}

// passCounters tallies one pass and forwards to the user probe, if any.
type passCounters struct {
	hits       atomic.Int64
	occluded   atomic.Int64
	rejections atomic.Int64
	tests      atomic.Int64
	next       Probe
}

func (c *passCounters) SphereRejected(id ObjectID) {
	c.rejections.Add(1)
	if c.next != nil {
		c.next.SphereRejected(id)
	}
}

func (c *passCounters) TrianglesTested(id ObjectID, n int) {
	c.tests.Add(int64(n))
	if c.next != nil {
		c.next.TrianglesTested(id, n)
	}
}
