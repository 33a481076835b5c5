package render

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/noriah/mangler/dsp"
	"github.com/noriah/mangler/effect"
	"github.com/noriah/mangler/texture"
	"github.com/noriah/mangler/util"
	"github.com/pkg/errors"
)

type staticSource struct {
	tex *texture.Texture
}

func (s staticSource) Frame() *texture.Texture {
	return s.tex
}

type fixedAudio dsp.Bands

func (a fixedAudio) Signal() dsp.Bands {
	return dsp.Bands(a)
}

func solid(w, h int, c texture.Color) *texture.Texture {
	t := texture.New(w, h)
	t.Fill(c)
	return t
}

func newDriver(t *testing.T, surface Surface, p effect.Params, src *texture.Texture) *Driver {
	t.Helper()

	d := NewDriver(Config{
		FrameRate: 60,
		Surface:   surface,
		Source:    staticSource{src},
		Params:    util.NewCell(p),
	})

	t.Cleanup(d.Stop)
	return d
}

func centerLuma(img *image.RGBA) int {
	b := img.Bounds()
	c := img.RGBAAt(b.Dx()/2, b.Dy()/2)
	return int(c.R) + int(c.G) + int(c.B)
}

func TestStartRequiresSurface(t *testing.T) {
	d := NewDriver(Config{})
	if err := d.Start(); !errors.Is(err, ErrNoSurface) {
		t.Errorf("nil surface: got %v, want ErrNoSurface", err)
	}

	d = NewDriver(Config{Surface: NewHeadless(0, 10)})
	if err := d.Start(); !errors.Is(err, ErrNoSurface) {
		t.Errorf("empty surface: got %v, want ErrNoSurface", err)
	}

	if d.State() != Uninitialized {
		t.Errorf("state %v after failed start", d.State())
	}
}

// sliceSurface is a value type that cannot be used as a map key.
type sliceSurface struct {
	rows []int
}

func (s sliceSurface) Size() (int, int) {
	return 4, 4
}

func (s sliceSurface) Present(*image.RGBA) error {
	return nil
}

func TestStartRejectsIncomparableSurface(t *testing.T) {
	d := NewDriver(Config{Surface: sliceSurface{rows: []int{1}}})

	err := d.Start()
	if !errors.Is(err, ErrNoSurface) {
		t.Fatalf("got %v, want ErrNoSurface", err)
	}

	if d.State() != Uninitialized {
		t.Errorf("state %v after failed start", d.State())
	}

	// Stop must not try to unbind the rejected surface.
	d.Stop()
}

func TestTickBeforeStart(t *testing.T) {
	d := NewDriver(Config{Surface: NewHeadless(4, 4)})
	if err := d.Tick(0); err == nil {
		t.Error("tick before start succeeded")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	surface := NewHeadless(4, 4)
	d := newDriver(t, surface, effect.Neutral(), nil)

	if err := d.Start(); err != nil {
		t.Fatal(err)
	}

	if err := d.Tick(0.1); err != nil {
		t.Fatal(err)
	}

	d.Stop()
	d.Stop()

	if d.State() != Disposed {
		t.Errorf("state %v, want disposed", d.State())
	}

	if err := d.Tick(0.2); !errors.Is(err, ErrDisposed) {
		t.Errorf("tick after stop: got %v, want ErrDisposed", err)
	}

	if err := d.Start(); !errors.Is(err, ErrDisposed) {
		t.Errorf("restart: got %v, want ErrDisposed", err)
	}

	if surface.Frames() != 1 {
		t.Errorf("presented %d frames, want 1", surface.Frames())
	}
}

func TestSurfaceBinding(t *testing.T) {
	surface := NewHeadless(4, 4)
	a := newDriver(t, surface, effect.Neutral(), nil)
	b := newDriver(t, surface, effect.Neutral(), nil)

	if err := a.Start(); err != nil {
		t.Fatal(err)
	}

	if err := b.Start(); !errors.Is(err, ErrSurfaceBound) {
		t.Fatalf("second driver: got %v, want ErrSurfaceBound", err)
	}

	a.Stop()

	if err := b.Start(); err != nil {
		t.Errorf("start after owner stopped: %v", err)
	}
}

func TestNeutralFrameMatchesSource(t *testing.T) {
	src := texture.New(6, 6)
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			src.Set(x, y, texture.Color{R: float64(x) / 5, G: float64(y) / 5, B: 0.5, A: 1})
		}
	}

	d := newDriver(t, NewHeadless(6, 6), effect.Neutral(), src)
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}

	if err := d.Tick(1); err != nil {
		t.Fatal(err)
	}

	if st := d.Stats(); st.Clipped != 0 || st.Covered != 36 {
		t.Errorf("stats %+v, want 36 covered and none clipped", st)
	}

	want := src.RGBA(nil)
	got := d.Latest()

	for i := range want.Pix {
		diff := int(got.Pix[i]) - int(want.Pix[i])
		if diff < -1 || diff > 1 {
			t.Fatalf("pixel byte %d = %d, want %d", i, got.Pix[i], want.Pix[i])
		}
	}
}

func TestFeedbackAccumulates(t *testing.T) {
	p := effect.Neutral()
	p.Feedback = true
	p.FeedbackAmount = 0.95

	white := solid(8, 8, texture.Color{R: 1, G: 1, B: 1, A: 1})
	d := newDriver(t, NewHeadless(8, 8), p, white)

	if err := d.Start(); err != nil {
		t.Fatal(err)
	}

	if err := d.Tick(1.0 / 60); err != nil {
		t.Fatal(err)
	}
	first := centerLuma(d.Snapshot())

	if err := d.Tick(2.0 / 60); err != nil {
		t.Fatal(err)
	}
	second := centerLuma(d.Snapshot())

	if second < first {
		t.Errorf("center brightness fell from %d to %d", first, second)
	}
}

func TestAudioIgnoredWhenDisabled(t *testing.T) {
	p := effect.Neutral()
	p.BassTarget = effect.TargetColorAbyss

	src := solid(4, 4, texture.Color{R: 0.2, G: 0.4, B: 0.6, A: 1})

	render := func(p effect.Params) []byte {
		d := NewDriver(Config{
			Surface: NewHeadless(4, 4),
			Source:  staticSource{src},
			Params:  util.NewCell(p),
			Audio:   fixedAudio{Bass: 1, Mids: 1, Treble: 1},
		})
		defer d.Stop()

		if err := d.Start(); err != nil {
			t.Fatal(err)
		}
		if err := d.Tick(0.5); err != nil {
			t.Fatal(err)
		}
		return d.Snapshot().Pix
	}

	quiet := render(effect.Neutral())
	if got := render(p); string(got) != string(quiet) {
		t.Error("audio changed the frame while audio was disabled")
	}

	p.AudioEnabled = true
	if got := render(p); string(got) == string(quiet) {
		t.Error("audio had no effect while enabled")
	}
}

func TestResizeFollowsSurface(t *testing.T) {
	surface := NewHeadless(4, 4)
	d := newDriver(t, surface, effect.Neutral(), nil)

	if err := d.Start(); err != nil {
		t.Fatal(err)
	}

	surface.Resize(10, 6)
	if err := d.Tick(0.1); err != nil {
		t.Fatal(err)
	}

	if b := d.Latest().Bounds(); b.Dx() != 10 || b.Dy() != 6 {
		t.Errorf("frame bounds %v, want 10x6", b)
	}

	// A zero-sized viewport skips the frame without failing.
	surface.Resize(0, 0)
	if err := d.Tick(0.2); err != nil {
		t.Errorf("tick on empty viewport: %v", err)
	}

	if surface.Frames() != 1 {
		t.Errorf("presented %d frames, want 1", surface.Frames())
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	d := newDriver(t, NewHeadless(4, 4), effect.Neutral(), nil)

	if d.Snapshot() != nil {
		t.Error("snapshot before first frame")
	}

	if err := d.Start(); err != nil {
		t.Fatal(err)
	}
	if err := d.Tick(0.1); err != nil {
		t.Fatal(err)
	}

	snap := d.Snapshot()
	snap.Pix[0] = 200

	if d.Latest().Pix[0] == 200 {
		t.Error("snapshot shares memory with the displayed frame")
	}
}

func TestPresentFailureDisposes(t *testing.T) {
	surface := NewHeadless(4, 4)
	lost := errors.New("surface lost")
	surface.OnPresent = func(*image.RGBA, int) error { return lost }

	d := newDriver(t, surface, effect.Neutral(), nil)
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}

	if err := d.Tick(0.1); !errors.Is(err, lost) {
		t.Fatalf("got %v, want wrapped present error", err)
	}

	if d.State() != Disposed {
		t.Errorf("state %v, want disposed", d.State())
	}
}

func TestRunStopsOnContext(t *testing.T) {
	surface := NewHeadless(4, 4)
	d := newDriver(t, surface, effect.Neutral(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	surface.OnPresent = func(_ *image.RGBA, n int) error {
		if n == 3 {
			cancel()
		}
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return")
	}

	if d.State() != Disposed {
		t.Errorf("state %v after run, want disposed", d.State())
	}

	if surface.Frames() < 3 {
		t.Errorf("presented %d frames, want at least 3", surface.Frames())
	}
}

func BenchmarkTick(b *testing.B) {
	p := effect.DefaultParams()
	p.Feedback = true

	d := NewDriver(Config{
		Surface: NewHeadless(160, 90),
		Source:  staticSource{solid(320, 180, texture.Color{R: 0.5, G: 0.5, B: 0.5, A: 1})},
		Params:  util.NewCell(p),
	})
	defer d.Stop()

	if err := d.Start(); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := d.Tick(float64(i) / 60); err != nil {
			b.Fatal(err)
		}
	}
}
