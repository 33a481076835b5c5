package execread

import (
	"context"
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/noriah/mangler/input"
	"github.com/pkg/errors"
)

// AudioSession reads interleaved little-endian float samples from a program
// and implements input.Session.
type AudioSession struct {
	*Reader

	cfg     input.SessionConfig
	samples int // frames * channels
	f32mode bool
}

// NewAudioSession creates a session reading float32 samples when f32mode is
// set, float64 otherwise.
func NewAudioSession(argv []string, f32mode bool, cfg input.SessionConfig) *AudioSession {
	samples := cfg.SampleSize * cfg.FrameSize

	width := 8
	if f32mode {
		width = 4
	}

	return &AudioSession{
		Reader:  New(argv, samples*width),
		cfg:     cfg,
		samples: samples,
		f32mode: f32mode,
	}
}

// Start implements input.Session.
func (s *AudioSession) Start(ctx context.Context, dst [][]input.Sample, kickChan chan bool, mu *sync.Mutex) error {
	if !input.EnsureBufferLen(s.cfg, dst) {
		return errors.New("invalid dst length given")
	}

	// The process tends to block longer than one buffer worth of audio when it
	// discards overflowed input, so the first deadline is generous.
	sampleDuration := time.Duration(
		float64(s.cfg.SampleSize) / s.cfg.SampleRate * float64(time.Second))
	s.Timeout = sampleDuration * 6

	framesz := s.cfg.FrameSize
	reader := floatReader{
		order: binary.LittleEndian,
		f64:   !s.f32mode,
	}

	return s.Run(ctx, func(chunk []byte) error {
		mu.Lock()
		if chunk == nil {
			// Silence while the source stalls. Halve the deadline to smooth
			// out the jitter until data flows again.
			s.Timeout = sampleDuration
			for _, buf := range dst {
				for i := range buf {
					buf[i] = 0
				}
			}
		} else {
			s.Timeout = sampleDuration * 6
			reader.reset(chunk)
			for n := 0; n < s.samples; n++ {
				dst[n%framesz][n/framesz] = reader.next()
			}
		}
		mu.Unlock()

		// Signal that we've written to dst.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case kickChan <- true:
		}

		return nil
	})
}

type floatReader struct {
	order binary.ByteOrder
	buf   []byte
	f64   bool
}

func (f *floatReader) reset(b []byte) {
	f.buf = b
}

func (f *floatReader) next() float64 {
	if f.f64 {
		b := f.buf[:8]
		f.buf = f.buf[8:]
		return math.Float64frombits(f.order.Uint64(b))
	}

	b := f.buf[:4]
	f.buf = f.buf[4:]
	return float64(math.Float32frombits(f.order.Uint32(b)))
}
