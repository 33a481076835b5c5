package graphic

import (
	"image/color"

	"github.com/nsf/termbox-go"
)

// cubeLevels are the channel values of the xterm 6x6x6 colour cube.
var cubeLevels = [6]int{0, 95, 135, 175, 215, 255}

// Index256 returns the closest xterm 256-colour palette index for c, using
// the colour cube or the grey ramp.
func Index256(c color.RGBA) int {
	r, g, b := int(c.R), int(c.G), int(c.B)

	ri, gi, bi := cubeIndex(r), cubeIndex(g), cubeIndex(b)
	cr, cg, cb := cubeLevels[ri], cubeLevels[gi], cubeLevels[bi]
	cube := 16 + 36*ri + 6*gi + bi

	// Grey ramp 232..255 covers 8..238 in steps of 10.
	avg := (r + g + b) / 3
	gi2 := (avg - 3) / 10
	if gi2 < 0 {
		gi2 = 0
	}
	if gi2 > 23 {
		gi2 = 23
	}
	gv := 8 + gi2*10

	if dist(r, g, b, gv, gv, gv) < dist(r, g, b, cr, cg, cb) {
		return 232 + gi2
	}

	return cube
}

// Attribute returns the termbox colour for c in Output256 mode.
func Attribute(c color.RGBA) termbox.Attribute {
	return termbox.Attribute(Index256(c) + 1)
}

func cubeIndex(v int) int {
	if v < 48 {
		return 0
	}
	if v < 115 {
		return 1
	}
	return (v - 35) / 40
}

func dist(r1, g1, b1, r2, g2, b2 int) int {
	dr, dg, db := r1-r2, g1-g2, b1-b2
	return dr*dr + dg*dg + db*db
}
