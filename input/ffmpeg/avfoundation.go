//go:build darwin

package ffmpeg

import (
	"fmt"

	"github.com/noriah/mangler/input"
)

func init() {
	input.RegisterBackend("ffmpeg-avfoundation", AVFoundation{})
}

// AVFoundation is the avfoundation input for FFmpeg.
type AVFoundation struct{}

func (p AVFoundation) Init() error {
	return nil
}

func (p AVFoundation) Close() error {
	return nil
}

func (p AVFoundation) Devices() ([]input.Device, error) {
	listed, err := List("avfoundation", "audio")
	if err != nil {
		return nil, err
	}

	devices := make([]input.Device, len(listed))
	for i, l := range listed {
		devices[i] = AVFoundationDevice(l)
	}

	return devices, nil
}

func (p AVFoundation) DefaultDevice() (input.Device, error) {
	return AVFoundationDevice{-1, "default"}, nil
}

func (p AVFoundation) Start(cfg input.SessionConfig) (input.Session, error) {
	dv, ok := cfg.Device.(AVFoundationDevice)
	if !ok {
		return nil, invalidDevice(cfg.Device)
	}

	return NewSession(dv, cfg)
}

// AVFoundationDevice is an avfoundation audio device.
type AVFoundationDevice Listed

func (d AVFoundationDevice) InputArgs() []string {
	input := "none:default"
	if d.Index > -1 {
		input = fmt.Sprintf("none:%d", d.Index)
	}
	return []string{"-f", "avfoundation", "-i", input}
}

func (d AVFoundationDevice) String() string {
	return fmt.Sprintf("%d:%s", d.Index, d.Name)
}
