package mangler

import (
	"github.com/noriah/mangler/dsp"
	"github.com/noriah/mangler/effect"
	"github.com/pkg/errors"
)

const (
	// MaxFrameRate is the highest supported render rate.
	MaxFrameRate = 240
	// MaxChannelCount is the highest supported capture channel count.
	MaxChannelCount = 2
)

// Config is the runtime configuration.
type Config struct {
	// Audio backend name from input.GetAllBackendNames; empty picks the
	// platform default.
	Backend string
	// Audio device name from list-devices; empty picks the default.
	Device string
	// The rate that audio samples are read
	SampleRate float64
	// The number of audio channels to read, mixed down to mono
	ChannelCount int

	// Video source: camera[:device], file:<path>, image:<path> or a path.
	Video string
	// Size of captured video frames and recordings
	Width  int
	Height int
	// Render and recording rate
	FrameRate int

	// Preset applied at startup
	Preset string
	// Preset storage file; empty uses preset.DefaultPath
	PresetPath string
	// Fit mode override; empty keeps the preset's
	Fit string
	// Force audio analysis on at startup
	Audio bool

	// Directory for recordings and snapshots
	OutputDir string
	// Render this many frames offscreen and exit; 0 uses the terminal
	Headless int
	// Write the last frame as PNG here on exit
	Snapshot string
}

// NewZeroConfig returns the default configuration.
func NewZeroConfig() Config {
	return Config{
		SampleRate:   44100,
		ChannelCount: 1,
		Video:        "camera",
		Width:        640,
		Height:       360,
		FrameRate:    30,
		Preset:       "Default",
		OutputDir:    ".",
	}
}

// Validate checks the configuration.
func (cfg *Config) Validate() error {
	switch {
	case cfg.FrameRate < 1:
		return errors.New("frame rate too low (1 min)")

	case cfg.FrameRate > MaxFrameRate:
		return errors.Errorf("frame rate too high (%d max)", MaxFrameRate)

	case cfg.Width < 1 || cfg.Height < 1:
		return errors.New("capture size must be at least 1x1")

	case cfg.SampleRate < float64(dsp.AnalysisSize):
		return errors.Errorf("sample rate lower than analysis size (%d)", dsp.AnalysisSize)

	case cfg.ChannelCount > MaxChannelCount:
		return errors.Errorf("too many channels (%d max)", MaxChannelCount)

	case cfg.ChannelCount < 1:
		return errors.New("too few channels (1 min)")

	case cfg.Headless < 0:
		return errors.New("headless frame count cannot be negative")
	}

	if cfg.Fit != "" {
		if _, err := effect.ParseFitMode(cfg.Fit); err != nil {
			return err
		}
	}

	return nil
}
