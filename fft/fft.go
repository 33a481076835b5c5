// Package fft provides generic abstractions around fourier transformers.
package fft

// InitPlan sets up a real-to-complex plan reading from input and writing
// len(input)/2+1 coefficients into output.
func InitPlan(pointer **Plan, input []float64, output []complex128) {
	(*pointer) = &Plan{
		input:  input,
		output: output,
	}

	(*pointer).init()
}

// NewPlan returns a ready plan for input and output.
func NewPlan(input []float64, output []complex128) *Plan {
	var p *Plan
	InitPlan(&p, input, output)
	return p
}
