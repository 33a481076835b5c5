// Package render drives the per-frame pipeline: modulation, the feedback
// ping-pong pass, the screen pass and presentation.
package render

import (
	"context"
	"image"
	"image/draw"
	"reflect"
	"sync"
	"time"

	"github.com/noriah/mangler/compositor"
	"github.com/noriah/mangler/dsp"
	"github.com/noriah/mangler/effect"
	"github.com/noriah/mangler/feedback"
	"github.com/noriah/mangler/modulation"
	"github.com/noriah/mangler/texture"
	"github.com/noriah/mangler/util"
	"github.com/pkg/errors"
)

var (
	// ErrDisposed is returned by a driver that has been stopped.
	ErrDisposed = errors.New("render loop disposed")

	// ErrNoSurface is returned when starting without a usable surface.
	ErrNoSurface = errors.New("no rendering surface")

	// ErrSurfaceBound is returned when another driver already renders to
	// the surface.
	ErrSurfaceBound = errors.New("surface already bound to a render loop")

	errNotStarted = errors.New("render loop not started")
	errBusy       = errors.New("render loop already running")
)

// bound tracks which driver owns each surface. Surfaces must be comparable.
var bound = struct {
	sync.Mutex
	m map[Surface]*Driver
}{m: map[Surface]*Driver{}}

func bind(s Surface, d *Driver) bool {
	bound.Lock()
	defer bound.Unlock()

	if owner, ok := bound.m[s]; ok && owner != d {
		return false
	}
	bound.m[s] = d
	return true
}

func unbind(s Surface, d *Driver) {
	bound.Lock()
	defer bound.Unlock()

	if bound.m[s] == d {
		delete(bound.m, s)
	}
}

// State is the lifecycle state of a Driver.
type State int

const (
	Uninitialized State = iota
	Running
	Disposed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	case Disposed:
		return "disposed"
	}
	return "unknown"
}

// Surface shows rendered frames. A surface is bound to one driver at a time
// and identified by value, so implementations must be comparable; pointer
// receivers are the usual choice.
type Surface interface {
	// Size returns the viewport size in pixels. A zero size skips the frame.
	Size() (int, int)
	// Present shows frame. The image must not be modified afterwards.
	Present(frame *image.RGBA) error
}

// Source supplies the current video frame. Nil means no frame yet.
type Source interface {
	Frame() *texture.Texture
}

// ParamSource supplies the current parameter snapshot.
type ParamSource interface {
	Load() effect.Params
}

// AudioSource supplies the latest band signal.
type AudioSource interface {
	Signal() dsp.Bands
}

// Config is the driver configuration.
type Config struct {
	FrameRate int         // ticks per second
	Surface   Surface     // display surface
	Source    Source      // video frames; may be nil
	Params    ParamSource // parameter snapshots; nil renders the defaults
	Audio     AudioSource // band signal; may be nil
}

type geometryKey struct {
	w, h   int
	fit    effect.FitMode
	aspect float64
}

// Driver owns the feedback pair and the screen target and runs one
// composite per tick. Only the driver touches the feedback pair.
type Driver struct {
	cfg Config

	mu    sync.Mutex
	state State
	busy  bool

	pair     *feedback.Pair
	screen   *texture.Texture
	geometry compositor.Geometry
	geomKey  geometryKey

	output *util.Cell[*image.RGBA]
	stats  *util.Cell[compositor.Stats]

	timing   *util.MovingWindow
	lastTick float64
}

// NewDriver creates an uninitialized driver.
func NewDriver(cfg Config) *Driver {
	if cfg.FrameRate < 1 {
		cfg.FrameRate = 30
	}

	if cfg.Params == nil {
		cfg.Params = util.NewCell(effect.DefaultParams())
	}

	return &Driver{
		cfg:    cfg,
		output: util.NewCell[*image.RGBA](nil),
		stats:  util.NewCell(compositor.Stats{}),
		timing: util.NewMovingWindow(cfg.FrameRate),
	}
}

// State returns the current lifecycle state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Start binds the driver to its surface and allocates render targets.
// Starting a running driver is a no-op; a disposed driver cannot restart.
func (d *Driver) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case Running:
		return nil
	case Disposed:
		return ErrDisposed
	}

	if d.cfg.Surface == nil {
		return ErrNoSurface
	}

	if !reflect.ValueOf(d.cfg.Surface).Comparable() {
		return errors.WithMessagef(ErrNoSurface, "surface %T is not comparable", d.cfg.Surface)
	}

	w, h := d.cfg.Surface.Size()
	if w < 1 || h < 1 {
		return ErrNoSurface
	}

	if !bind(d.cfg.Surface, d) {
		return ErrSurfaceBound
	}

	d.pair = feedback.NewPair(w, h)
	d.screen = texture.New(w, h)
	d.geometry = compositor.Identity
	d.geomKey = geometryKey{}
	d.state = Running

	return nil
}

// Stop disposes the driver. Any tick entered afterwards returns ErrDisposed
// without touching the released buffers. Stop is idempotent.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == Disposed {
		return
	}

	d.dispose()
}

// dispose must be called with mu held.
func (d *Driver) dispose() {
	prev := d.state
	d.state = Disposed

	if d.pair != nil {
		d.pair.Release()
	}
	d.pair, d.screen = nil, nil

	if prev == Running {
		unbind(d.cfg.Surface, d)
	}
}

// Run starts the driver if needed and ticks it at the configured frame rate
// until ctx is done or a tick fails. The driver is disposed on return.
func (d *Driver) Run(ctx context.Context) error {
	if err := d.Start(); err != nil {
		return err
	}

	d.mu.Lock()
	if d.busy {
		d.mu.Unlock()
		return errBusy
	}
	d.busy = true
	d.mu.Unlock()

	defer d.Stop()

	start := time.Now()
	ticker := time.NewTicker(time.Second / time.Duration(d.cfg.FrameRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		err := d.Tick(time.Since(start).Seconds())
		switch {
		case err == nil:
		case errors.Is(err, ErrDisposed):
			return nil
		default:
			return err
		}
	}
}

// Tick renders one frame for time t, in seconds since the loop started.
func (d *Driver) Tick(t float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case Uninitialized:
		return errNotStarted
	case Disposed:
		return ErrDisposed
	}

	w, h := d.cfg.Surface.Size()
	if w < 1 || h < 1 {
		return nil
	}

	// Both feedback buffers always follow the viewport together.
	d.pair.EnsureSize(w, h)
	if d.screen.W != w || d.screen.H != h {
		d.screen = texture.New(w, h)
	}

	params := d.cfg.Params.Load()

	var audio dsp.Bands
	if params.AudioEnabled && d.cfg.Audio != nil {
		audio = d.cfg.Audio.Signal()
	}

	var src *texture.Texture
	if d.cfg.Source != nil {
		src = d.cfg.Source.Frame()
	}

	d.updateGeometry(w, h, params.FitMode, src)

	frame := &compositor.Frame{
		Params:    &params,
		Effective: modulation.Compute(&params, t, audio),
		Time:      t,
	}

	var stats compositor.Stats

	if params.Feedback {
		stats = compositor.Render(compositor.Pass{
			Frame:    frame,
			Geometry: d.geometry,
			Source:   src,
			Feedback: d.pair.Read(),
			Target:   d.pair.Write(),
			Quantize: true,
		})
		d.pair.Swap()
	}

	// The screen pass sees the history just written.
	screenStats := compositor.Render(compositor.Pass{
		Frame:    frame,
		Geometry: d.geometry,
		Source:   src,
		Feedback: d.pair.Read(),
		Target:   d.screen,
	})

	if !params.Feedback {
		stats = screenStats
	}
	d.stats.Store(stats)

	img := d.screen.RGBA(nil)
	d.output.Store(img)

	if d.lastTick > 0 && t > d.lastTick {
		d.timing.Update(t - d.lastTick)
	}
	d.lastTick = t

	if err := d.cfg.Surface.Present(img); err != nil {
		// A broken surface ends the session rather than leaving it half alive.
		d.dispose()
		return errors.Wrap(err, "failed to present frame")
	}

	return nil
}

func (d *Driver) updateGeometry(w, h int, fit effect.FitMode, src *texture.Texture) {
	aspect := 0.0
	if src != nil {
		aspect = src.Aspect()
	}

	key := geometryKey{w: w, h: h, fit: fit, aspect: aspect}
	if key == d.geomKey {
		return
	}

	d.geomKey = key
	d.geometry = compositor.Fit(fit, float64(w)/float64(h), aspect)
}

// Geometry returns the quad scale used by the last frame.
func (d *Driver) Geometry() compositor.Geometry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.geometry
}

// Latest returns the most recent frame. It is shared and must not be
// modified. Nil before the first frame.
func (d *Driver) Latest() *image.RGBA {
	return d.output.Load()
}

// Snapshot returns a copy of the currently displayed frame, or nil.
func (d *Driver) Snapshot() *image.RGBA {
	src := d.output.Load()
	if src == nil {
		return nil
	}

	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

// Stats returns the pass statistics of the last frame.
func (d *Driver) Stats() compositor.Stats {
	return d.stats.Load()
}

// FPS returns the measured frame rate.
func (d *Driver) FPS() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if mean := d.timing.Mean(); mean > 0 {
		return 1.0 / mean
	}
	return 0
}
