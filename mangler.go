// Package mangler wires the real-time video effects pipeline together: a
// video source and an optional audio analyzer feed the render loop, which
// draws to the terminal or an offscreen surface and can be recorded.
package mangler

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/noriah/mangler/dsp"
	"github.com/noriah/mangler/effect"
	"github.com/noriah/mangler/graphic"
	"github.com/noriah/mangler/input"
	"github.com/noriah/mangler/input/ffmpeg"
	"github.com/noriah/mangler/preset"
	"github.com/noriah/mangler/recorder"
	"github.com/noriah/mangler/render"
	"github.com/noriah/mangler/util"
	"github.com/noriah/mangler/video"
	"github.com/pkg/errors"
)

var errHeadlessDone = errors.New("headless frames rendered")

// ResolveParams returns the startup parameters for cfg: the named preset
// with the config overrides applied.
func ResolveParams(store *preset.Store, cfg *Config) (effect.Params, error) {
	p, ok := store.Lookup(cfg.Preset)
	if !ok {
		return effect.Params{}, errors.Errorf("unknown preset %q", cfg.Preset)
	}

	if cfg.Fit != "" {
		fit, err := effect.ParseFitMode(cfg.Fit)
		if err != nil {
			return effect.Params{}, err
		}
		p.FitMode = fit
	}

	if cfg.Audio {
		p.AudioEnabled = true
	}

	return p, nil
}

type app struct {
	cfg *Config
	ctx context.Context

	store  *preset.Store
	params *util.Cell[effect.Params]
	preset string

	source   *video.Switcher
	analyzer *dsp.BandAnalyzer
	driver   *render.Driver
	recorder *recorder.Recorder

	// mu serializes user actions.
	mu      sync.Mutex
	rng     *rand.Rand
	message *util.Cell[string]
}

// Run runs the pipeline until ctx is done, the user quits or the headless
// frame count is reached.
func Run(ctx context.Context, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	path := cfg.PresetPath
	if path == "" {
		path = preset.DefaultPath()
	}

	store, err := preset.Open(path)
	if err != nil {
		log.Printf("presets: %v", err)
	}

	params, err := ResolveParams(store, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a := &app{
		cfg:     cfg,
		ctx:     ctx,
		store:   store,
		params:  util.NewCell(params),
		preset:  cfg.Preset,
		source:  video.NewSwitcher(ctx),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		message: util.NewCell(""),
	}

	bandCfg := dsp.DefaultBandAnalyzerConfig()
	bandCfg.Backend = cfg.Backend
	bandCfg.Device = cfg.Device
	bandCfg.SampleRate = cfg.SampleRate
	bandCfg.ChannelCount = cfg.ChannelCount
	bandCfg.ProcessRate = cfg.FrameRate
	a.analyzer = dsp.NewBandAnalyzer(bandCfg)
	defer a.analyzer.Close()

	src, err := video.Open(cfg.Video, video.Options{
		Width:     cfg.Width,
		Height:    cfg.Height,
		FrameRate: cfg.FrameRate,
	})
	if err != nil {
		// Render a blank source and show why.
		log.Printf("video: %v", err)
		a.message.Store(err.Error())
	} else if err := a.source.Swap(src); err != nil {
		log.Printf("video: %v", err)
	}
	defer a.source.Close()

	var surface render.Surface
	var display *graphic.Display

	if cfg.Headless > 0 {
		hs := render.NewHeadless(cfg.Width, cfg.Height)
		hs.OnPresent = func(_ *image.RGBA, n int) error {
			if n >= cfg.Headless {
				return errHeadlessDone
			}
			return nil
		}
		surface = hs
	} else {
		display = graphic.NewDisplay()
		display.OnAction = a.handle

		if err := display.Init(); err != nil {
			return err
		}
		defer display.Close()

		surface = display
	}

	a.driver = render.NewDriver(render.Config{
		FrameRate: cfg.FrameRate,
		Surface:   surface,
		Source:    a.source,
		Params:    a.params,
		Audio:     a.analyzer,
	})

	a.recorder = recorder.New(recorder.Config{
		Dir:       cfg.OutputDir,
		Width:     cfg.Width,
		Height:    cfg.Height,
		FrameRate: cfg.FrameRate,
		Frames:    a.driver,
		Audio:     a.recordAudio,
	})

	a.syncAudio(params)

	if display != nil {
		// Key bindings act on the driver and recorder, so they start last.
		ctx = display.Start(ctx)
		go a.statusLoop(ctx, display)
	}

	err = a.driver.Run(ctx)
	if errors.Is(err, errHeadlessDone) {
		err = nil
	}

	if a.recorder.Recording() {
		a.stopRecording()
	}

	if cfg.Snapshot != "" {
		if serr := writeSnapshot(cfg.Snapshot, a.driver.Snapshot()); serr != nil {
			log.Printf("snapshot: %v", serr)
		}
	}

	return err
}

// status collects the values shown on the status line.
func (a *app) status() Status {
	p := a.params.Load()

	return Status{
		Preset:    a.currentPreset(),
		Fit:       p.FitMode,
		Audio:     a.analyzer.Running(),
		Recording: a.recorder.Recording(),
		FPS:       a.driver.FPS(),
		AudioErr:  a.analyzer.Err(),
		VideoErr:  a.source.Err(),
		Message:   a.message.Load(),
	}
}

func (a *app) currentPreset() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.preset
}

func (a *app) statusLoop(ctx context.Context, display *graphic.Display) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		display.SetStatus(a.status().String())

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// handle applies a key binding. Parameters are replaced, never mutated in
// place, so the render loop always reads a consistent snapshot.
func (a *app) handle(action graphic.Action) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p := a.params.Load()

	switch action {
	case graphic.ActionRecord:
		if a.recorder.Recording() {
			go a.stopRecording()
			return
		}

		if err := a.recorder.Start(a.ctx); err != nil {
			log.Printf("record: %v", err)
			a.message.Store(err.Error())
			return
		}
		a.message.Store("")

	case graphic.ActionNextPreset, graphic.ActionPrevPreset:
		names := a.store.Names()
		idx := indexOf(names, a.preset)

		if action == graphic.ActionNextPreset {
			idx = (idx + 1) % len(names)
		} else {
			idx = (idx - 1 + len(names)) % len(names)
		}

		a.preset = names[idx]
		p, _ = a.store.Lookup(a.preset)

	case graphic.ActionRandomize:
		p = effect.Randomize(p, a.rng)
		a.preset = "random"

	case graphic.ActionCycleFit:
		p.FitMode = p.FitMode.Next()

	case graphic.ActionToggleAudio:
		p.AudioEnabled = !p.AudioEnabled

	case graphic.ActionSnapshot:
		name := fmt.Sprintf("mangler-%d.png", time.Now().UnixMilli())
		path := filepath.Join(a.cfg.OutputDir, name)

		if err := writeSnapshot(path, a.driver.Snapshot()); err != nil {
			log.Printf("snapshot: %v", err)
			a.message.Store(err.Error())
			return
		}
		a.message.Store("saved " + path)
		return

	default:
		return
	}

	a.params.Store(p)
	a.syncAudio(p)
}

// syncAudio starts or stops the analyzer to match p.
func (a *app) syncAudio(p effect.Params) {
	running := a.analyzer.Running()

	switch {
	case p.AudioEnabled && !running:
		if err := a.analyzer.Start(a.ctx, a.fileAudio()); err != nil {
			log.Printf("audio: %v", err)
		}

	case !p.AudioEnabled && running:
		a.analyzer.Stop()
	}
}

// fileAudio returns a session reading the audio track of a file source, or
// nil to use the microphone.
func (a *app) fileAudio() input.Session {
	cur := a.source.Current()
	if cur == nil || cur.Live() {
		return nil
	}

	path, ok := strings.CutPrefix(cur.String(), "file:")
	if !ok {
		return nil
	}

	sess, err := ffmpeg.NewSession(ffmpeg.FileDevice(path), input.SessionConfig{
		Device:     ffmpeg.FileDevice(path),
		FrameSize:  a.cfg.ChannelCount,
		SampleSize: dsp.AnalysisSize,
		SampleRate: a.cfg.SampleRate,
	})
	if err != nil {
		return nil
	}

	return sess
}

// recordAudio returns the microphone to merge into a recording of a live
// source.
func (a *app) recordAudio() recorder.AudioInput {
	if !a.source.Live() {
		return nil
	}

	name := a.cfg.Backend
	if name == "" {
		name = input.DefaultBackend()
	}

	backend, err := input.InitBackend(name)
	if err != nil {
		return nil
	}
	defer backend.Close()

	dev, err := input.GetDevice(backend, a.cfg.Device)
	if err != nil {
		return nil
	}

	in, _ := dev.(recorder.AudioInput)
	return in
}

func (a *app) stopRecording() {
	path, err := a.recorder.Stop()
	if err != nil {
		log.Printf("record: %v", err)
		a.message.Store(err.Error())
		return
	}

	if path != "" {
		log.Printf("recording saved to %s", path)
		a.message.Store("saved " + path)
	}
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func writeSnapshot(path string, img *image.RGBA) error {
	if img == nil {
		return errors.New("no frame rendered yet")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create snapshot dir")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create snapshot")
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		return errors.Wrap(err, "failed to encode snapshot")
	}

	return errors.Wrap(f.Close(), "failed to write snapshot")
}
