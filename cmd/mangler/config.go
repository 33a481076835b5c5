package main

import (
	"github.com/noriah/mangler"
	"github.com/pkg/errors"
)

// config holds the flag values.
type config struct {
	// Backend is the backend name from list-backends
	backend string
	// Device is the device name from list-devices
	device string
	// SampleRate is the rate at which audio samples are read
	sampleRate float64
	// ChannelCount is the number of audio channels captured
	channelCount int
	// Video is the source spec (camera[:device], file:<path>, image:<path>)
	video string
	// Width and Height are the capture and recording size
	width  int
	height int
	// FrameRate is the number of frames to render every second
	frameRate int
	// Preset is the startup preset name
	preset string
	// PresetPath is the preset storage file
	presetPath string
	// OutputDir receives recordings and snapshots
	outputDir string
	// Audio turns audio analysis on at startup
	audio bool
	// Fit overrides the preset fit mode
	fit string
	// Headless renders this many frames offscreen and exits
	headless int
	// Snapshot is where the last frame is written on exit
	snapshot string
	// LogPath receives log output while the terminal is in use
	logPath string
}

func newZeroConfig() config {
	def := mangler.NewZeroConfig()

	return config{
		sampleRate:   def.SampleRate,
		channelCount: def.ChannelCount,
		video:        def.Video,
		width:        def.Width,
		height:       def.Height,
		frameRate:    def.FrameRate,
		preset:       def.Preset,
		outputDir:    def.OutputDir,
	}
}

func (cfg *config) validate() error {
	if cfg.preset == "" {
		return errors.New("preset name is empty")
	}

	mcfg := cfg.toMangler()
	return mcfg.Validate()
}

func (cfg *config) toMangler() mangler.Config {
	return mangler.Config{
		Backend:      cfg.backend,
		Device:       cfg.device,
		SampleRate:   cfg.sampleRate,
		ChannelCount: cfg.channelCount,
		Video:        cfg.video,
		Width:        cfg.width,
		Height:       cfg.height,
		FrameRate:    cfg.frameRate,
		Preset:       cfg.preset,
		PresetPath:   cfg.presetPath,
		Fit:          cfg.fit,
		Audio:        cfg.audio,
		OutputDir:    cfg.outputDir,
		Headless:     cfg.headless,
		Snapshot:     cfg.snapshot,
	}
}
