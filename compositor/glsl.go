package compositor

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

func fract(x float64) float64 {
	return x - math.Floor(x)
}

// mod is the floored modulo: the result has the sign of y.
func mod(x, y float64) float64 {
	return x - y*math.Floor(x/y)
}

func mix(x, y, a float64) float64 {
	return x*(1.0-a) + y*a
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}

// step returns 0 when x < edge, 1 otherwise.
func step(edge, x float64) float64 {
	if x < edge {
		return 0.0
	}
	return 1.0
}

func smoothstep(edge0, edge1, x float64) float64 {
	t := clamp((x-edge0)/(edge1-edge0), 0.0, 1.0)
	return t * t * (3.0 - 2.0*t)
}

// addScalar adds s to both components.
func addScalar(v r2.Vec, s float64) r2.Vec {
	return r2.Vec{X: v.X + s, Y: v.Y + s}
}

// Random is the classic sine hash, uniform-ish in [0, 1).
func Random(st r2.Vec) float64 {
	return fract(math.Sin(r2.Dot(st, r2.Vec{X: 12.9898, Y: 78.233})) * 43758.5453123)
}

// Noise is 2D value noise: Random at the lattice corners, blended with
// smoothstep weights.
func Noise(st r2.Vec) float64 {
	i := r2.Vec{X: math.Floor(st.X), Y: math.Floor(st.Y)}
	f := r2.Sub(st, i)

	a := Random(i)
	b := Random(r2.Add(i, r2.Vec{X: 1}))
	c := Random(r2.Add(i, r2.Vec{Y: 1}))
	d := Random(r2.Add(i, r2.Vec{X: 1, Y: 1}))

	ux := f.X * f.X * (3.0 - 2.0*f.X)
	uy := f.Y * f.Y * (3.0 - 2.0*f.Y)

	return mix(a, b, ux) + (c-a)*uy*(1.0-ux) + (d-b)*uy*ux
}
