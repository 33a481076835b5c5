package render

import (
	"image"
	"sync"
)

// Headless is an offscreen Surface of fixed size. It keeps the last
// presented frame and counts presentations.
type Headless struct {
	mu     sync.Mutex
	w, h   int
	frames int
	last   *image.RGBA

	// OnPresent, when set, is called after each frame is stored. An error
	// ends the render loop.
	OnPresent func(frame *image.RGBA, count int) error
}

// NewHeadless returns a w x h offscreen surface.
func NewHeadless(w, h int) *Headless {
	return &Headless{w: w, h: h}
}

func (hs *Headless) Size() (int, int) {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	return hs.w, hs.h
}

// Resize changes the reported viewport size.
func (hs *Headless) Resize(w, h int) {
	hs.mu.Lock()
	hs.w, hs.h = w, h
	hs.mu.Unlock()
}

func (hs *Headless) Present(frame *image.RGBA) error {
	hs.mu.Lock()
	hs.frames++
	hs.last = frame
	count, fn := hs.frames, hs.OnPresent
	hs.mu.Unlock()

	if fn != nil {
		return fn(frame, count)
	}
	return nil
}

// Frames returns the number of frames presented.
func (hs *Headless) Frames() int {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	return hs.frames
}

// Last returns the last presented frame, or nil.
func (hs *Headless) Last() *image.RGBA {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	return hs.last
}
