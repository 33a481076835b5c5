package modulation

import (
	"math"

	"github.com/noriah/mangler/effect"
)

func fract(x float64) float64 {
	return x - math.Floor(x)
}

// Wave evaluates w at phase t in its unipolar form. Every waveform spans
// [0, 1]; the square wave only ever returns 0 or 1.
func Wave(w effect.Waveform, t float64) float64 {
	switch w {
	case effect.WaveTriangle:
		return math.Abs(fract(t)*2.0 - 1.0)

	case effect.WaveSquare:
		if fract(t) < 0.5 {
			return 0.0
		}
		return 1.0

	case effect.WaveSawtooth:
		return fract(t)

	default:
		return (math.Sin(t*2.0*math.Pi) + 1.0) * 0.5
	}
}

// Bipolar evaluates w at phase t mapped to [-1, 1]. The sine wave is
// evaluated directly so it stays exactly sin(2*pi*t).
func Bipolar(w effect.Waveform, t float64) float64 {
	if w == effect.WaveSine || !w.Valid() {
		return math.Sin(t * 2.0 * math.Pi)
	}
	return Wave(w, t)*2.0 - 1.0
}

// LFO returns the oscillator output for the given time, already scaled by
// amount. Unipolar targets get [0, amount], the rest [-amount, amount].
func LFO(w effect.Waveform, time, speed, amount float64, unipolar bool) float64 {
	t := time * speed
	if unipolar {
		return Wave(w, t) * amount
	}
	return Bipolar(w, t) * amount
}
