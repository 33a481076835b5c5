// Package dsp turns captured audio into the three-band signal that drives
// audio-reactive modulation.
//
// The analyzer reproduces the byte spectrum a browser AnalyserNode reports
// (Blackman window, magnitude smoothing, decibel mapping) so presets tuned
// against it react the same here.
package dsp

import (
	"math"
	"math/cmplx"

	"github.com/noriah/mangler/dsp/window"
	"github.com/noriah/mangler/fft"
)

// AnalyzerConfig configures the byte spectrum analyzer.
type AnalyzerConfig struct {
	Size        int             // transform length, a power of two
	Smoothing   float64         // smoothing time constant
	MinDecibels float64         // level mapped to byte 0
	MaxDecibels float64         // level mapped to byte 255
	Window      window.Function // window applied before the transform
}

// DefaultAnalyzerConfig returns the browser AnalyserNode defaults with a
// 256-point transform.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		Size:        AnalysisSize,
		Smoothing:   0.8,
		MinDecibels: -100.0,
		MaxDecibels: -30.0,
		Window:      window.Blackman,
	}
}

// Analyzer computes byte magnitudes of the most recent Size samples.
type Analyzer struct {
	cfg AnalyzerConfig

	work   []float64
	coeffs []complex128
	bins   []uint8

	plan *fft.Plan
	smth *Smoother
}

// NewAnalyzer creates an analyzer for cfg.
func NewAnalyzer(cfg AnalyzerConfig) *Analyzer {
	if cfg.Size < 2 {
		cfg.Size = AnalysisSize
	}

	if cfg.MaxDecibels <= cfg.MinDecibels {
		cfg.MinDecibels, cfg.MaxDecibels = -100.0, -30.0
	}

	az := &Analyzer{
		cfg:    cfg,
		work:   make([]float64, cfg.Size),
		coeffs: make([]complex128, cfg.Size/2+1),
		bins:   make([]uint8, cfg.Size/2),
		smth:   NewSmoother(cfg.Size/2, cfg.Smoothing),
	}

	fft.InitPlan(&az.plan, az.work, az.coeffs)

	return az
}

// BinCount returns the number of frequency bins.
func (az *Analyzer) BinCount() int {
	return len(az.bins)
}

// Process analyzes the last Size samples of buf (zero padded at the front
// when buf is shorter) and returns the byte spectrum. The returned slice is
// reused by the next call.
func (az *Analyzer) Process(buf []float64) []uint8 {
	if len(buf) > len(az.work) {
		buf = buf[len(buf)-len(az.work):]
	}

	pad := len(az.work) - len(buf)
	for i := 0; i < pad; i++ {
		az.work[i] = 0.0
	}
	copy(az.work[pad:], buf)

	if az.cfg.Window != nil {
		az.cfg.Window(az.work)
	}

	az.plan.Execute()

	size := float64(len(az.work))
	scale := 255.0 / (az.cfg.MaxDecibels - az.cfg.MinDecibels)

	for k := range az.bins {
		mag := az.smth.SmoothBin(k, cmplx.Abs(az.coeffs[k])/size)
		az.bins[k] = ToByte(mag, az.cfg.MinDecibels, scale)
	}

	return az.bins
}

// Reset clears the smoothing history.
func (az *Analyzer) Reset() {
	az.smth.Reset()
	for i := range az.bins {
		az.bins[i] = 0
	}
}

// ToByte maps a linear magnitude to the byte range using
// floor(scale * (dB - minDecibels)), clamped to [0, 255].
func ToByte(mag, minDecibels, scale float64) uint8 {
	if mag <= 0.0 || math.IsNaN(mag) {
		return 0
	}

	v := math.Floor(scale * (20.0*math.Log10(mag) - minDecibels))

	switch {
	case v <= 0.0:
		return 0
	case v >= 255.0:
		return 255
	}

	return uint8(v)
}
