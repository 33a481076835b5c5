package mangler

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/noriah/mangler/dsp"
	"github.com/noriah/mangler/effect"
	"github.com/noriah/mangler/graphic"
	"github.com/noriah/mangler/preset"
	"github.com/noriah/mangler/recorder"
	"github.com/noriah/mangler/render"
	"github.com/noriah/mangler/util"
	"github.com/noriah/mangler/video"
	"github.com/pkg/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
		ok   bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero fps", func(c *Config) { c.FrameRate = 0 }, false},
		{"fast fps", func(c *Config) { c.FrameRate = MaxFrameRate + 1 }, false},
		{"empty size", func(c *Config) { c.Width = 0 }, false},
		{"low rate", func(c *Config) { c.SampleRate = 100 }, false},
		{"three channels", func(c *Config) { c.ChannelCount = 3 }, false},
		{"no channels", func(c *Config) { c.ChannelCount = 0 }, false},
		{"negative headless", func(c *Config) { c.Headless = -1 }, false},
		{"bad fit", func(c *Config) { c.Fit = "stretch" }, false},
		{"good fit", func(c *Config) { c.Fit = "cover" }, true},
	}

	for _, test := range tests {
		cfg := NewZeroConfig()
		test.edit(&cfg)

		if err := cfg.Validate(); (err == nil) != test.ok {
			t.Errorf("%s: got %v, want ok=%v", test.name, err, test.ok)
		}
	}
}

func TestStatusText(t *testing.T) {
	s := Status{
		Preset:    "Melting",
		Fit:       effect.FitCover,
		FPS:       29.7,
		Recording: true,
		AudioErr:  errors.WithMessage(dsp.ErrMicrophoneUnavailable, "permission denied"),
		VideoErr:  video.ErrSignalLost,
	}

	line := s.String()
	for _, want := range []string{"Melting", "cover", "30 fps", "REC", SignalLostStatus, dsp.MicrophoneStatus} {
		if !strings.Contains(line, want) {
			t.Errorf("%q missing from %q", want, line)
		}
	}

	if (Status{}).AudioText() != "" || (Status{}).VideoText() != "" {
		t.Error("healthy status reports faults")
	}

	cam := Status{VideoErr: errors.WithMessage(video.ErrCameraUnavailable, "busy")}
	if cam.VideoText() != video.CameraStatus {
		t.Errorf("camera fault text %q", cam.VideoText())
	}
}

func openStore(t *testing.T) *preset.Store {
	t.Helper()

	store, err := preset.Open(filepath.Join(t.TempDir(), "storage.json"))
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestResolveParams(t *testing.T) {
	store := openStore(t)

	cfg := NewZeroConfig()
	cfg.Preset = "no such preset"
	if _, err := ResolveParams(store, &cfg); err == nil {
		t.Error("unknown preset resolved")
	}

	cfg = NewZeroConfig()
	cfg.Preset = "Melting"
	cfg.Fit = "fill"
	cfg.Audio = true

	p, err := ResolveParams(store, &cfg)
	if err != nil {
		t.Fatal(err)
	}

	if p.FitMode != effect.FitFill || !p.AudioEnabled {
		t.Errorf("overrides not applied: fit=%v audio=%v", p.FitMode, p.AudioEnabled)
	}
}

func writeImage(t *testing.T, dir string) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 9))
	for y := 0; y < 9; y++ {
		for x := 0; x < 16; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 28), B: 90, A: 255})
		}
	}

	path := filepath.Join(dir, "source.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestRunHeadless(t *testing.T) {
	dir := t.TempDir()

	cfg := NewZeroConfig()
	cfg.Video = "image:" + writeImage(t, dir)
	cfg.Width, cfg.Height = 32, 18
	cfg.FrameRate = 120
	cfg.Headless = 3
	cfg.PresetPath = filepath.Join(dir, "storage.json")
	cfg.Preset = "Kaleido-Dream"
	cfg.Snapshot = filepath.Join(dir, "out", "last.png")

	if err := Run(context.Background(), &cfg); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(cfg.Snapshot)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}

	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 18 {
		t.Errorf("snapshot is %v, want 32x18", b)
	}
}

func newTestApp(t *testing.T) *app {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := NewZeroConfig()
	cfg.OutputDir = t.TempDir()

	a := &app{
		cfg:      &cfg,
		ctx:      ctx,
		store:    openStore(t),
		params:   util.NewCell(effect.DefaultParams()),
		preset:   "Default",
		source:   video.NewSwitcher(ctx),
		analyzer: dsp.NewBandAnalyzer(dsp.DefaultBandAnalyzerConfig()),
		rng:      rand.New(rand.NewSource(7)),
		message:  util.NewCell(""),
	}

	t.Cleanup(func() { a.analyzer.Close() })

	a.driver = render.NewDriver(render.Config{
		Surface: render.NewHeadless(8, 8),
		Source:  a.source,
		Params:  a.params,
	})
	t.Cleanup(a.driver.Stop)

	a.recorder = recorder.New(recorder.Config{Frames: a.driver})

	return a
}

func TestHandlePresets(t *testing.T) {
	a := newTestApp(t)
	names := a.store.Names()

	a.handle(graphic.ActionNextPreset)
	if a.preset != names[1] {
		t.Errorf("next preset %q, want %q", a.preset, names[1])
	}

	want, _ := a.store.Lookup(names[1])
	if got := a.params.Load(); got != want {
		t.Error("preset parameters not applied")
	}

	a.handle(graphic.ActionPrevPreset)
	a.handle(graphic.ActionPrevPreset)
	if a.preset != names[len(names)-1] {
		t.Errorf("previous preset %q, want %q", a.preset, names[len(names)-1])
	}
}

func TestHandleFitAndRandomize(t *testing.T) {
	a := newTestApp(t)

	before := a.params.Load()
	a.handle(graphic.ActionCycleFit)

	if got := a.params.Load().FitMode; got != before.FitMode.Next() {
		t.Errorf("fit %v, want %v", got, before.FitMode.Next())
	}

	a.handle(graphic.ActionRandomize)
	if a.params.Load() == before {
		t.Error("randomize left parameters unchanged")
	}
}

func TestHandleSnapshot(t *testing.T) {
	a := newTestApp(t)

	a.handle(graphic.ActionSnapshot)
	if !strings.Contains(a.message.Load(), "no frame") {
		t.Errorf("message %q before any frame", a.message.Load())
	}

	if err := a.driver.Start(); err != nil {
		t.Fatal(err)
	}
	if err := a.driver.Tick(0.1); err != nil {
		t.Fatal(err)
	}

	a.handle(graphic.ActionSnapshot)

	matches, _ := filepath.Glob(filepath.Join(a.cfg.OutputDir, "mangler-*.png"))
	if len(matches) != 1 {
		t.Errorf("found %d snapshots, want 1", len(matches))
	}
}
