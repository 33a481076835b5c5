package fft

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// Plan holds a gonum FFT plan.
type Plan struct {
	input  []float64
	output []complex128
	fft    *fourier.FFT
}

func (p *Plan) init() {
	p.fft = fourier.NewFFT(len(p.input))
}

// Execute executes the gonum plan.
func (p *Plan) Execute() {
	if p.fft == nil {
		p.init()
	}
	p.fft.Coefficients(p.output, p.input)
}
