package compositor

import (
	"math"

	"github.com/noriah/mangler/effect"
	"gonum.org/v1/gonum/spatial/r2"
)

// Geometry is the scale of the full-screen quad, in viewport units, that
// realizes a fit mode. A scale above 1 extends the quad past the viewport.
type Geometry struct {
	ScaleX, ScaleY float64
}

// Identity fills the viewport.
var Identity = Geometry{ScaleX: 1, ScaleY: 1}

// Fit returns the quad scale showing a source of sourceAspect (width over
// height) in a viewport of viewAspect. Fill, and any aspect that is not a
// positive number, stretch the source over the whole viewport.
func Fit(mode effect.FitMode, viewAspect, sourceAspect float64) Geometry {
	if !(viewAspect > 0) || !(sourceAspect > 0) ||
		math.IsInf(viewAspect, 0) || math.IsInf(sourceAspect, 0) {
		return Identity
	}

	g := Identity
	wider := viewAspect > sourceAspect

	switch mode {
	case effect.FitContain:
		if wider {
			g.ScaleX = sourceAspect / viewAspect
		} else {
			g.ScaleY = viewAspect / sourceAspect
		}

	case effect.FitCover:
		if wider {
			g.ScaleY = viewAspect / sourceAspect
		} else {
			g.ScaleX = sourceAspect / viewAspect
		}
	}

	return g
}

// QuadUV maps the centre of pixel (x, y), counted from the top-left of a
// w x h viewport, to the quad's texture coordinate. ok is false when the
// pixel lies outside the quad.
func (g Geometry) QuadUV(x, y, w, h int) (uv r2.Vec, ok bool) {
	nx := (float64(x)+0.5)/float64(w)*2.0 - 1.0
	ny := 1.0 - (float64(y)+0.5)/float64(h)*2.0

	qx := nx / g.ScaleX
	qy := ny / g.ScaleY

	if math.Abs(qx) > 1.0 || math.Abs(qy) > 1.0 {
		return r2.Vec{}, false
	}

	return r2.Vec{X: (qx + 1.0) * 0.5, Y: (qy + 1.0) * 0.5}, true
}
