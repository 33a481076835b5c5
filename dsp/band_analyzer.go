package dsp

import (
	"context"
	"sync"
	"time"

	"github.com/noriah/mangler/input"
	"github.com/noriah/mangler/util"
	"github.com/pkg/errors"
)

// ErrMicrophoneUnavailable is reported when no capture session can be opened
// or the running one fails. It is never fatal: the signal stays at zero.
var ErrMicrophoneUnavailable = errors.New("microphone unavailable")

// MicrophoneStatus is the user-facing text for ErrMicrophoneUnavailable.
const MicrophoneStatus = "Could not access microphone. Please grant permission."

// BandAnalyzerConfig configures a BandAnalyzer.
type BandAnalyzerConfig struct {
	Backend      string         // capture backend; empty picks the platform default
	Device       string         // capture device; empty picks the backend default
	SampleRate   float64        // capture sample rate
	ChannelCount int            // captured channels, mixed down to mono
	ProcessRate  int            // analysis ticks per second
	Analyzer     AnalyzerConfig // spectrum analyzer settings
}

// DefaultBandAnalyzerConfig returns a mono 44.1kHz config analyzed at 60Hz.
func DefaultBandAnalyzerConfig() BandAnalyzerConfig {
	return BandAnalyzerConfig{
		SampleRate:   44100,
		ChannelCount: 1,
		ProcessRate:  60,
		Analyzer:     DefaultAnalyzerConfig(),
	}
}

// BandAnalyzer runs audio analysis as its own periodic task and publishes the
// latest Bands into a single-slot cell. Readers always see the most recent
// value; intermediate values may be lost.
type BandAnalyzer struct {
	cfg BandAnalyzerConfig

	signal *util.Cell[Bands]
	status *util.Cell[error]

	// mu guards the lifecycle fields below.
	mu      sync.Mutex
	backend input.Backend // opened lazily, kept across start/stop cycles
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewBandAnalyzer creates a stopped analyzer.
func NewBandAnalyzer(cfg BandAnalyzerConfig) *BandAnalyzer {
	if cfg.ChannelCount < 1 {
		cfg.ChannelCount = 1
	}

	if cfg.ProcessRate < 1 {
		cfg.ProcessRate = 60
	}

	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}

	if cfg.Analyzer.Size < 2 {
		cfg.Analyzer = DefaultAnalyzerConfig()
	}

	return &BandAnalyzer{
		cfg:    cfg,
		signal: util.NewCell(Bands{}),
		status: util.NewCell[error](nil),
	}
}

// Signal returns the latest band values. It is {0, 0, 0} while stopped.
func (ba *BandAnalyzer) Signal() Bands {
	return ba.signal.Load()
}

// Err returns the last capture failure, or nil.
func (ba *BandAnalyzer) Err() error {
	return ba.status.Load()
}

// Running reports whether an analysis task is active.
func (ba *BandAnalyzer) Running() bool {
	ba.mu.Lock()
	defer ba.mu.Unlock()

	if ba.done == nil {
		return false
	}

	select {
	case <-ba.done:
		return false
	default:
		return true
	}
}

// Start begins analysis of stream. A nil stream opens the configured capture
// device instead. Starting a running analyzer restarts it on the new stream.
//
// A device failure is returned wrapped around ErrMicrophoneUnavailable and
// also kept in Err; the analyzer stays stopped with a zero signal.
func (ba *BandAnalyzer) Start(ctx context.Context, stream input.Session) error {
	ba.Stop()

	ba.mu.Lock()
	defer ba.mu.Unlock()

	cfg := ba.sessionConfig(nil)

	if stream == nil {
		var err error
		if stream, err = ba.openDevice(); err != nil {
			err = errors.WithMessage(ErrMicrophoneUnavailable, err.Error())
			ba.status.Store(err)
			return err
		}
	}

	ba.status.Store(nil)

	ctx, cancel := context.WithCancel(ctx)
	ba.cancel = cancel
	ba.done = make(chan struct{})

	go ba.run(ctx, cancel, stream, cfg, ba.done)

	return nil
}

// Stop ends the analysis task and resets the signal to zero. The capture
// backend stays open for the next Start. Stopping a stopped analyzer is a
// no-op.
func (ba *BandAnalyzer) Stop() {
	ba.mu.Lock()
	cancel, done := ba.cancel, ba.done
	ba.cancel, ba.done = nil, nil
	ba.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done

	ba.signal.Store(Bands{})
}

// Close stops the analyzer and releases the capture backend.
func (ba *BandAnalyzer) Close() error {
	ba.Stop()

	ba.mu.Lock()
	defer ba.mu.Unlock()

	if ba.backend == nil {
		return nil
	}

	err := ba.backend.Close()
	ba.backend = nil

	return errors.Wrap(err, "failed to close input backend")
}

func (ba *BandAnalyzer) sessionConfig(dev input.Device) input.SessionConfig {
	return input.SessionConfig{
		Device:     dev,
		FrameSize:  ba.cfg.ChannelCount,
		SampleSize: ba.cfg.Analyzer.Size,
		SampleRate: ba.cfg.SampleRate,
	}
}

// openDevice must be called with mu held.
func (ba *BandAnalyzer) openDevice() (input.Session, error) {
	if ba.backend == nil {
		name := ba.cfg.Backend
		if name == "" {
			name = input.DefaultBackend()
		}

		if name == "" {
			return nil, errors.New("no audio backend available")
		}

		backend, err := input.InitBackend(name)
		if err != nil {
			return nil, err
		}

		ba.backend = backend
	}

	dev, err := input.GetDevice(ba.backend, ba.cfg.Device)
	if err != nil {
		return nil, err
	}

	session, err := ba.backend.Start(ba.sessionConfig(dev))
	if err != nil {
		return nil, errors.Wrap(err, "failed to start input session")
	}

	return session, nil
}

func (ba *BandAnalyzer) run(ctx context.Context, cancel context.CancelFunc, stream input.Session, cfg input.SessionConfig, done chan struct{}) {
	defer close(done)
	defer cancel()

	var mu sync.Mutex
	buffers := input.MakeBuffers(cfg.FrameSize, cfg.SampleSize)
	kickChan := make(chan bool, 1)

	errCh := make(chan error, 1)
	go func() {
		errCh <- stream.Start(ctx, buffers, kickChan, &mu)
	}()

	az := NewAnalyzer(ba.cfg.Analyzer)
	mono := make([]float64, cfg.SampleSize)

	dur := time.Second / time.Duration(ba.cfg.ProcessRate)
	ticker := time.NewTicker(dur)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			<-errCh
			return

		case err := <-errCh:
			if err != nil && ctx.Err() == nil {
				ba.status.Store(errors.WithMessage(ErrMicrophoneUnavailable, err.Error()))
			}
			ba.signal.Store(Bands{})
			return

		case <-kickChan:
			// Fresh samples; picked up on the next tick.

		case <-ticker.C:
			mu.Lock()
			mixDown(mono, buffers)
			mu.Unlock()

			ba.signal.Store(BandsFromBins(az.Process(mono)))
		}
	}
}

// mixDown averages the channels of src into dst.
func mixDown(dst []float64, src [][]input.Sample) {
	if len(src) == 1 {
		copy(dst, src[0])
		return
	}

	scale := 1.0 / float64(len(src))
	for i := range dst {
		sum := 0.0
		for _, ch := range src {
			sum += ch[i]
		}
		dst[i] = sum * scale
	}
}
