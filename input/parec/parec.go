// Package parec captures PulseAudio sources through the parec tool.
package parec

import (
	"fmt"

	"github.com/lawl/pulseaudio"
	"github.com/noriah/mangler/input"
	"github.com/noriah/mangler/input/common/execread"
	"github.com/pkg/errors"
)

func init() {
	input.RegisterBackend("parec", Backend{})
}

// Backend lists PulseAudio sources and records them with parec.
type Backend struct{}

func (p Backend) Init() error {
	return nil
}

func (p Backend) Close() error {
	return nil
}

// Devices asks the PulseAudio server for its sources. Monitor sources are
// listed too so the output of another program can drive the effects.
func (p Backend) Devices() ([]input.Device, error) {
	c, err := pulseaudio.NewClient()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create client")
	}
	defer c.Close()

	s, err := c.Sources()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get sources")
	}

	devices := make([]input.Device, len(s))
	for i, source := range s {
		devices[i] = PulseDevice(source.Name)
	}

	return devices, nil
}

// DefaultDevice returns the server's default source when it can be asked,
// otherwise the "default" alias.
func (p Backend) DefaultDevice() (input.Device, error) {
	c, err := pulseaudio.NewClient()
	if err != nil {
		return PulseDevice("default"), nil
	}
	defer c.Close()

	info, err := c.ServerInfo()
	if err != nil || info.DefaultSource == "" {
		return PulseDevice("default"), nil
	}

	return PulseDevice(info.DefaultSource), nil
}

func (p Backend) Start(cfg input.SessionConfig) (input.Session, error) {
	return NewSession(cfg)
}

// PulseDevice is the name of a PulseAudio source.
type PulseDevice string

// InputArgs returns the ffmpeg input arguments for the source.
func (d PulseDevice) InputArgs() []string {
	return []string{"-f", "pulse", "-i", string(d)}
}

func (d PulseDevice) String() string {
	return string(d)
}

// NewSession starts recording the configured device as float32 samples.
func NewSession(cfg input.SessionConfig) (*execread.AudioSession, error) {
	dv, ok := cfg.Device.(PulseDevice)
	if !ok {
		return nil, errors.Errorf("invalid device type %T", cfg.Device)
	}

	if cfg.FrameSize > 2 {
		return nil, errors.New("channel count not supported, mono/stereo only")
	}

	argv := []string{
		"parec",
		"--format=float32le",
		fmt.Sprintf("--rate=%.0f", cfg.SampleRate),
		fmt.Sprintf("--channels=%d", cfg.FrameSize),
		// Keep latency to roughly one analysis window.
		fmt.Sprintf("--latency=%d", cfg.SampleSize*cfg.FrameSize*4),
		"-d", dv.String(),
	}

	return execread.NewAudioSession(argv, true, cfg), nil
}
