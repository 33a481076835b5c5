package compositor

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Luma holds the Rec. 709 luminance weights.
var Luma = r3.Vec{X: 0.2126, Y: 0.7152, Z: 0.0722}

var half3 = r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}

const halftoneAngle = 0.785398

func splat(v float64) r3.Vec {
	return r3.Vec{X: v, Y: v, Z: v}
}

func mix3(x, y r3.Vec, a float64) r3.Vec {
	return r3.Add(r3.Scale(1.0-a, x), r3.Scale(a, y))
}

// HueRotate rotates c around the grey axis by angle turns. The coefficient
// layout is the one presets were tuned against; each column below is one
// input channel's contribution.
func HueRotate(c r3.Vec, angle float64) r3.Vec {
	cs := math.Cos(angle * 2.0 * math.Pi)
	sn := math.Sin(angle * 2.0 * math.Pi)

	r := r3.Vec{
		X: 0.213 + 0.787*cs - 0.213*sn,
		Y: 0.715 - 0.715*cs - 0.715*sn,
		Z: 0.072 - 0.072*cs + 0.928*sn,
	}
	g := r3.Vec{
		X: 0.213 - 0.213*cs + 0.143*sn,
		Y: 0.715 + 0.285*cs + 0.140*sn,
		Z: 0.072 - 0.072*cs - 0.283*sn,
	}
	b := r3.Vec{
		X: 0.213 - 0.213*cs - 0.787*sn,
		Y: 0.715 - 0.715*cs + 0.715*sn,
		Z: 0.072 + 0.928*cs + 0.072*sn,
	}

	return r3.Add(r3.Add(r3.Scale(c.X, r), r3.Scale(c.Y, g)), r3.Scale(c.Z, b))
}

// ColorAbyss blends c toward a time and position dependent ramp.
func ColorAbyss(c r3.Vec, amount, time float64, vUv r2.Vec) r3.Vec {
	ramp := r3.Vec{
		X: math.Sin(c.X*math.Pi + time*0.5),
		Y: math.Cos(c.Y * math.Pi * 2.0),
		Z: math.Sin(c.Z*math.Pi + r2.Norm(r2.Sub(vUv, half2))),
	}
	return mix3(c, ramp, amount)
}

// Grade applies contrast, then brightness, then saturation.
func Grade(c r3.Vec, contrast, brightness, saturation float64) r3.Vec {
	c = r3.Add(r3.Scale(contrast, r3.Sub(c, half3)), half3)
	c = r3.Scale(brightness, c)
	gray := r3.Dot(c, Luma)
	return mix3(splat(gray), c, saturation)
}

// Halftone returns 1 inside the dot of the 45 degree lattice cell at uv and
// 0 outside. Dots grow with intensity.
func Halftone(uv r2.Vec, resolution r2.Vec, intensity float64) float64 {
	scale := resolution.X * 0.05
	st := r2.Rotate(r2.Scale(scale, uv), -halftoneAngle, r2.Vec{})
	nearest := r2.Vec{X: 2.0*fract(st.X) - 1.0, Y: 2.0*fract(st.Y) - 1.0}
	return 1.0 - step(intensity, r2.Norm(nearest))
}
