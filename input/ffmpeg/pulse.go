package ffmpeg

import (
	"github.com/noriah/mangler/input"
	"github.com/noriah/mangler/input/parec"
)

func init() {
	input.RegisterBackend("ffmpeg-pulse", Pulse{})
}

// Pulse is the pulse input for FFmpeg. Device listing is shared with parec.
type Pulse struct {
	parec.Backend
}

func (p Pulse) Start(cfg input.SessionConfig) (input.Session, error) {
	dv, ok := cfg.Device.(parec.PulseDevice)
	if !ok {
		return nil, invalidDevice(cfg.Device)
	}

	return NewSession(dv, cfg)
}
