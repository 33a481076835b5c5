//go:build windows

package ffmpeg

import (
	"github.com/noriah/mangler/input"
)

func init() {
	input.RegisterBackend("ffmpeg-dshow", DShow{})
}

// DShow is the DirectShow input for FFmpeg on Windows.
type DShow struct{}

func (p DShow) Init() error {
	return nil
}

func (p DShow) Close() error {
	return nil
}

func (p DShow) Devices() ([]input.Device, error) {
	listed, err := List("dshow", "audio")
	if err != nil {
		return nil, err
	}

	devices := make([]input.Device, len(listed))
	for i, l := range listed {
		devices[i] = DShowDevice{Name: l.Name}
	}

	return devices, nil
}

// DefaultDevice picks the first listed microphone; dshow has no default alias.
func (p DShow) DefaultDevice() (input.Device, error) {
	listed, err := List("dshow", "audio")
	if err != nil {
		return nil, err
	}
	return DShowDevice{Name: listed[0].Name}, nil
}

func (p DShow) Start(cfg input.SessionConfig) (input.Session, error) {
	dv, ok := cfg.Device.(DShowDevice)
	if !ok {
		return nil, invalidDevice(cfg.Device)
	}

	return NewSession(dv, cfg)
}

// DShowDevice is a DirectShow audio device.
type DShowDevice struct {
	Name string
}

func (d DShowDevice) InputArgs() []string {
	return []string{
		"-f", "dshow", "-audio_buffer_size", "20",
		"-i", "audio=" + d.Name,
	}
}

func (d DShowDevice) String() string {
	return d.Name
}
