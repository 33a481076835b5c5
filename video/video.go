// Package video provides the frame sources the compositor reads: a live
// camera, a looping video file or a still image. A Switcher lets the active
// source be replaced while the render loop keeps reading.
package video

import (
	"context"
	"sync"

	"github.com/noriah/mangler/texture"
	"github.com/pkg/errors"
)

var (
	// ErrSignalLost is reported when a source stops delivering frames. The
	// last good frame stays visible.
	ErrSignalLost = errors.New("signal lost")

	// ErrCameraUnavailable is reported when the camera cannot be opened.
	ErrCameraUnavailable = errors.New("camera unavailable")
)

// CameraStatus is the user-facing text for ErrCameraUnavailable.
const CameraStatus = "Could not access camera. Please grant permission."

// Source produces video frames.
type Source interface {
	// Frame returns the latest frame, or nil before the first one. Returned
	// textures are never modified afterwards.
	Frame() *texture.Texture

	// Start begins producing frames in the background.
	Start(ctx context.Context) error

	// Err returns the last playback or device failure, or nil.
	Err() error

	// Close stops the source and waits for it to finish.
	Close() error

	// Live reports whether the source is a capture device.
	Live() bool

	String() string
}

// Switcher is a Source that forwards to a replaceable source.
type Switcher struct {
	mu  sync.Mutex
	ctx context.Context
	cur Source
}

// NewSwitcher creates an empty switcher. Sources swapped in are started with
// ctx.
func NewSwitcher(ctx context.Context) *Switcher {
	return &Switcher{ctx: ctx}
}

// Swap starts next and closes the previous source. When next fails to start
// it still becomes the current source, so its status is visible, and the
// error is returned.
func (s *Switcher) Swap(next Source) error {
	s.mu.Lock()
	prev := s.cur
	s.cur = next
	s.mu.Unlock()

	if prev != nil {
		prev.Close()
	}

	if next == nil {
		return nil
	}

	return next.Start(s.ctx)
}

// Current returns the active source, or nil.
func (s *Switcher) Current() Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

func (s *Switcher) Frame() *texture.Texture {
	if cur := s.Current(); cur != nil {
		return cur.Frame()
	}
	return nil
}

func (s *Switcher) Err() error {
	if cur := s.Current(); cur != nil {
		return cur.Err()
	}
	return nil
}

// Live reports whether the active source is a capture device.
func (s *Switcher) Live() bool {
	cur := s.Current()
	return cur != nil && cur.Live()
}

// Close closes the active source.
func (s *Switcher) Close() error {
	s.mu.Lock()
	cur := s.cur
	s.cur = nil
	s.mu.Unlock()

	if cur == nil {
		return nil
	}
	return cur.Close()
}

func (s *Switcher) String() string {
	if cur := s.Current(); cur != nil {
		return cur.String()
	}
	return "none"
}
