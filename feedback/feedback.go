// Package feedback manages the ping-pong render target pair that carries the
// previous output frame into the next one.
package feedback

import (
	"github.com/noriah/mangler/texture"
)

// Pair is two equally sized textures. One is read (last frame's output), the
// other written (this frame's output); Swap exchanges the roles.
type Pair struct {
	bufs [2]*texture.Texture
	read int
}

// NewPair allocates a pair of w x h buffers.
func NewPair(w, h int) *Pair {
	p := &Pair{}
	p.EnsureSize(w, h)
	return p
}

// EnsureSize reallocates both buffers when either does not match w x h. It
// reports whether a reallocation happened. Fresh buffers are transparent
// black, so the first frame after a resize blends against nothing.
func (p *Pair) EnsureSize(w, h int) bool {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	if p.matches(w, h) {
		return false
	}

	p.bufs = [2]*texture.Texture{texture.New(w, h), texture.New(w, h)}
	p.read = 0

	return true
}

func (p *Pair) matches(w, h int) bool {
	for _, b := range p.bufs {
		if b == nil || b.W != w || b.H != h {
			return false
		}
	}
	return true
}

// Size returns the buffer dimensions.
func (p *Pair) Size() (int, int) {
	if p.bufs[0] == nil {
		return 0, 0
	}
	return p.bufs[0].Size()
}

// Read returns the buffer holding the previous frame.
func (p *Pair) Read() *texture.Texture {
	return p.bufs[p.read]
}

// Write returns the buffer the current frame renders into.
func (p *Pair) Write() *texture.Texture {
	return p.bufs[1-p.read]
}

// ReadIndex returns which slot is currently read.
func (p *Pair) ReadIndex() int {
	return p.read
}

// Swap exchanges the read and write roles. No pixels are copied.
func (p *Pair) Swap() {
	p.read = 1 - p.read
}

// Release drops both buffers. The pair must be sized again before use.
func (p *Pair) Release() {
	p.bufs = [2]*texture.Texture{}
	p.read = 0
}
