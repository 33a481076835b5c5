package dsp

import "math"

// Smoother blends each bin with its previous value:
//
//	out = tau*prev + (1-tau)*value
type Smoother struct {
	values []float64 // old values used for smoothing
	tau    float64   // time constant in [0, 1)
}

// NewSmoother creates a smoother for size bins. tau is clamped to [0, 1).
func NewSmoother(size int, tau float64) *Smoother {
	switch {
	case math.IsNaN(tau) || tau < 0.0:
		tau = 0.0
	case tau >= 1.0:
		tau = 1.0 - 1e-9
	}

	return &Smoother{
		values: make([]float64, size),
		tau:    tau,
	}
}

// SmoothBin smooths value into bin idx and returns the result.
func (sm *Smoother) SmoothBin(idx int, value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0.0
	}

	value = sm.tau*sm.values[idx] + (1.0-sm.tau)*value
	sm.values[idx] = value

	return value
}

// Reset forgets the history.
func (sm *Smoother) Reset() {
	for i := range sm.values {
		sm.values[i] = 0.0
	}
}
