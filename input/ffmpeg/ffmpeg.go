// Package ffmpeg captures audio through the ffmpeg binary. Each platform
// capture API gets its own backend; all of them share the session setup here.
package ffmpeg

import (
	"fmt"

	"github.com/noriah/mangler/input"
	"github.com/noriah/mangler/input/common/execread"
	"github.com/pkg/errors"
)

// Device is an input device that ffmpeg can open.
type Device interface {
	input.Device
	// InputArgs returns the ffmpeg arguments selecting the device.
	InputArgs() []string
}

// NewSession starts ffmpeg reading from dv and emitting float64 samples.
func NewSession(dv Device, cfg input.SessionConfig) (*execread.AudioSession, error) {
	args := []string{"ffmpeg", "-hide_banner", "-loglevel", "panic"}
	args = append(args, dv.InputArgs()...)
	args = append(args,
		"-vn",
		"-ar", fmt.Sprintf("%.0f", cfg.SampleRate),
		"-ac", fmt.Sprintf("%d", cfg.FrameSize),
		"-f", "f64le",
		"-",
	)

	s := execread.NewAudioSession(args, false, cfg)
	s.DisconnectedStderr = true
	return s, nil
}

// FileDevice plays the audio track of a media file in real time, looping it
// like the video of the same file.
type FileDevice string

func (d FileDevice) InputArgs() []string {
	return []string{"-re", "-stream_loop", "-1", "-i", string(d)}
}

func (d FileDevice) String() string {
	return "file:" + string(d)
}

func invalidDevice(dv input.Device) error {
	return errors.Errorf("invalid device type %T", dv)
}
