// Package input captures live audio for the band analyzer.
//
// Backends register themselves on init. A backend lists devices and starts
// sessions; a session streams de-interleaved samples into caller buffers and
// kicks a channel after every write.
package input

import (
	"context"
	"sync"
)

// Sample is the datatype we want from our inputs
type Sample = float64

// Device is an input device of a backend.
type Device interface {
	// String returns the device name as listed by list-devices.
	String() string
}

// SessionConfig is the config for an input session.
type SessionConfig struct {
	Device     Device  // device to read from
	FrameSize  int     // number of channels per frame
	SampleSize int     // number of frames per buffer write
	SampleRate float64 // sample rate
}

// Session is a running capture.
type Session interface {
	// Start blocks, writing samples into dst under mu and kicking kickChan
	// after each write, until ctx is done or the source fails.
	Start(ctx context.Context, dst [][]Sample, kickChan chan bool, mu *sync.Mutex) error
}

// MakeBuffers allocates one sample buffer per channel.
func MakeBuffers(channels, samples int) [][]Sample {
	bufs := make([][]Sample, channels)
	for i := range bufs {
		bufs[i] = make([]Sample, samples)
	}
	return bufs
}

// EnsureBufferLen reports whether buf is shaped for cfg.
func EnsureBufferLen(cfg SessionConfig, buf [][]Sample) bool {
	if len(buf) != cfg.FrameSize {
		return false
	}

	for i := range buf {
		if len(buf[i]) != cfg.SampleSize {
			return false
		}
	}

	return true
}
