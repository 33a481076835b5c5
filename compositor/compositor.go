// Package compositor is the effect program: a pure per-pixel function that
// turns a video frame and the previous output into the next output, and a
// rasterizer that evaluates it over a render target.
//
// Every stage runs in a fixed order for every pixel and depends only on the
// sampling coordinate, the frame time and the effective parameters. The
// numeric details (hash, noise, rotation matrices) are part of the preset
// contract; changing them changes what saved presets look like.
package compositor

import (
	"runtime"
	"sync"

	"github.com/noriah/mangler/texture"
)

// Stats summarizes one pass.
type Stats struct {
	Covered int // pixels inside the quad
	Clipped int // covered pixels the CRT warp pushed off the source
}

// Pass describes one render of the quad into a target.
type Pass struct {
	Frame    *Frame
	Geometry Geometry
	Source   *texture.Texture // video frame
	Feedback *texture.Texture // history; may be nil
	Target   *texture.Texture

	// Quantize stores results like an 8-bit render target. Feedback buffers
	// quantize; the screen target keeps full precision.
	Quantize bool
}

var blank = texture.New(1, 1)

// Render evaluates the program for every pixel of the target, splitting the
// rows across goroutines. Pixels outside the quad become opaque black.
func Render(pass Pass) Stats {
	dst := pass.Target
	w, h := dst.Size()

	src := pass.Source
	if src == nil {
		src = blank
	}

	frame := *pass.Frame
	frame.Width, frame.Height = w, h

	workers := runtime.GOMAXPROCS(0)
	if workers > h {
		workers = h
	}

	stats := make([]Stats, workers)
	rows := (h + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()

			st := &stats[i]
			end := (i + 1) * rows
			if end > h {
				end = h
			}

			for y := i * rows; y < end; y++ {
				for x := 0; x < w; x++ {
					c := texture.Black

					if vUv, ok := pass.Geometry.QuadUV(x, y, w, h); ok {
						var clipped bool
						c, clipped = Shade(&frame, src, pass.Feedback, vUv)

						st.Covered++
						if clipped {
							st.Clipped++
						}
					}

					if pass.Quantize {
						dst.Store8(x, y, c)
					} else {
						dst.Set(x, y, c)
					}
				}
			}
		}(i)
	}

	wg.Wait()

	var total Stats
	for _, st := range stats {
		total.Covered += st.Covered
		total.Clipped += st.Clipped
	}

	return total
}
