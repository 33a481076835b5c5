package effect

import "math/rand"

// Preset is a named parameter snapshot.
type Preset struct {
	Name   string
	Params Params
}

// DefaultParams returns the settings the app starts with.
func DefaultParams() Params {
	return Params{
		Saturation: 1.0, Brightness: 1.0, Contrast: 1.0, Grain: 0.05, ColorAbyss: 0.0,
		RGBShift: 0, ChromaticAberration: 0, FluidDistortion: 0, EdgeDistortion: 0, CRTCurvature: 0.0,
		Kaleidoscope: false, KaleidoscopeSegments: 8,
		Feedback: false, FeedbackAmount: 0.95, FeedbackZoom: 0.01, FeedbackRotation: 0, FeedbackEdgeFade: 1.0,
		Scanlines: false, Vignette: true,
		LFOTarget: TargetNone, LFOWaveform: WaveSine, LFOSpeed: 0.2, LFOAmount: 0.1,
		AudioEnabled: false, BassTarget: TargetNone, MidsTarget: TargetNone, TrebleTarget: TargetNone, AudioGain: 1.0,
		FitMode: FitContain,
	}
}

// BuiltinPresets returns the compiled-in presets. The first one is the
// default. A fresh slice is returned on every call.
func BuiltinPresets() []Preset {
	def := DefaultParams()

	melting := def
	melting.FluidDistortion = 0.05
	melting.Saturation = 1.5
	melting.Feedback = true
	melting.FeedbackAmount = 0.96
	melting.FeedbackZoom = 0.005
	melting.ColorAbyss = 0.2

	crt := def
	crt.Grain = 0.2
	crt.CRTCurvature = 0.1
	crt.EdgeDistortion = 0.15
	crt.ChromaticAberration = 8
	crt.Scanlines = true
	crt.Vignette = true

	kaleido := def
	kaleido.Kaleidoscope = true
	kaleido.KaleidoscopeSegments = 12
	kaleido.Feedback = true
	kaleido.FeedbackAmount = 0.95
	kaleido.FeedbackRotation = 0.005
	kaleido.Saturation = 1.8

	stream := def
	stream.Grain = 0.1
	stream.FluidDistortion = 0.01
	stream.RGBShift = 15
	stream.Feedback = true
	stream.FeedbackAmount = 0.92
	stream.FeedbackZoom = -0.01
	stream.LFOTarget = TargetRGBShift
	stream.LFOWaveform = WaveSquare
	stream.LFOSpeed = 1.5
	stream.LFOAmount = 20

	return []Preset{
		{Name: "Default", Params: def},
		{Name: "Melting", Params: melting},
		{Name: "CRT Overdrive", Params: crt},
		{Name: "Kaleido-Dream", Params: kaleido},
		{Name: "Data Stream", Params: stream},
	}
}

// Randomize returns prev with the "chaos" fields re-rolled. Fields the
// randomizer does not touch keep their value from prev.
func Randomize(prev Params, rng *rand.Rand) Params {
	float := func(min, max float64) float64 {
		return rng.Float64()*(max-min) + min
	}
	chance := func(p float64) bool {
		return rng.Float64() < p
	}

	next := prev
	next.Saturation = float(0, 2)
	next.Brightness = float(0.5, 1.5)
	next.Contrast = float(0.5, 1.5)
	next.Grain = float(0, 0.3)
	next.ColorAbyss = float(0, 1)
	next.RGBShift = float(0, 20)
	next.ChromaticAberration = float(0, 5)
	next.FluidDistortion = float(0, 0.2)
	next.EdgeDistortion = float(0, 0.2)
	next.CRTCurvature = float(0, 0.1)
	next.Kaleidoscope = chance(0.5)
	next.KaleidoscopeSegments = float64(2 * (2 + rng.Intn(10)))
	next.Feedback = chance(0.7)
	next.FeedbackAmount = float(0.8, 0.98)
	next.FeedbackZoom = float(-0.05, 0.05)
	next.FeedbackRotation = float(-0.03, 0.03)
	next.FeedbackEdgeFade = float(0.5, 2.0)
	next.LFOTarget = TargetNone

	return next
}
