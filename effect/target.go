package effect

import (
	"github.com/pkg/errors"
)

// Target names the parameter an LFO or an audio band modulates.
type Target int

// Modulation targets. The zero value modulates nothing.
const (
	TargetNone Target = iota
	TargetRGBShift
	TargetFeedbackZoom
	TargetFeedbackRotation
	TargetFluidDistortion
	TargetEdgeDistortion
	TargetChromaticAberration
	TargetColorAbyss
	TargetHueRotate
	TargetGlitchStrength
	TargetPixelation
	TargetSobelStrength

	targetCount
)

var targetNames = [targetCount]string{
	TargetNone:                "none",
	TargetRGBShift:            "rgbShift",
	TargetFeedbackZoom:        "feedbackZoom",
	TargetFeedbackRotation:    "feedbackRotation",
	TargetFluidDistortion:     "fluidDistortion",
	TargetEdgeDistortion:      "edgeDistortion",
	TargetChromaticAberration: "chromaticAberration",
	TargetColorAbyss:          "colorAbyss",
	TargetHueRotate:           "hueRotate",
	TargetGlitchStrength:      "glitchStrength",
	TargetPixelation:          "pixelation",
	TargetSobelStrength:       "sobelStrength",
}

// Targets returns every modulatable target, excluding TargetNone.
func Targets() []Target {
	out := make([]Target, 0, targetCount-1)
	for t := TargetNone + 1; t < targetCount; t++ {
		out = append(out, t)
	}
	return out
}

// Valid reports whether t is a known target.
func (t Target) Valid() bool {
	return t >= TargetNone && t < targetCount
}

func (t Target) String() string {
	if !t.Valid() {
		return "unknown"
	}
	return targetNames[t]
}

// ParseTarget returns the target with the given name.
func ParseTarget(name string) (Target, error) {
	for t, n := range targetNames {
		if n == name {
			return Target(t), nil
		}
	}
	return TargetNone, errors.Errorf("unknown modulation target %q", name)
}

func (t Target) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, errors.Errorf("invalid modulation target %d", int(t))
	}
	return []byte(targetNames[t]), nil
}

func (t *Target) UnmarshalText(text []byte) error {
	v, err := ParseTarget(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Waveform is the LFO shape.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSquare
	WaveSawtooth

	waveformCount
)

var waveformNames = [waveformCount]string{
	WaveSine:     "sine",
	WaveTriangle: "triangle",
	WaveSquare:   "square",
	WaveSawtooth: "sawtooth",
}

func (w Waveform) Valid() bool {
	return w >= WaveSine && w < waveformCount
}

func (w Waveform) String() string {
	if !w.Valid() {
		return "unknown"
	}
	return waveformNames[w]
}

// ParseWaveform returns the waveform with the given name.
func ParseWaveform(name string) (Waveform, error) {
	for w, n := range waveformNames {
		if n == name {
			return Waveform(w), nil
		}
	}
	return WaveSine, errors.Errorf("unknown waveform %q", name)
}

func (w Waveform) MarshalText() ([]byte, error) {
	if !w.Valid() {
		return nil, errors.Errorf("invalid waveform %d", int(w))
	}
	return []byte(waveformNames[w]), nil
}

func (w *Waveform) UnmarshalText(text []byte) error {
	v, err := ParseWaveform(string(text))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// FitMode is the policy used to place the source inside the viewport.
type FitMode int

const (
	FitContain FitMode = iota
	FitCover
	FitFill

	fitModeCount
)

var fitModeNames = [fitModeCount]string{
	FitContain: "contain",
	FitCover:   "cover",
	FitFill:    "fill",
}

func (f FitMode) Valid() bool {
	return f >= FitContain && f < fitModeCount
}

func (f FitMode) String() string {
	if !f.Valid() {
		return "unknown"
	}
	return fitModeNames[f]
}

// Next returns the fit mode after f, wrapping around.
func (f FitMode) Next() FitMode {
	return (f + 1) % fitModeCount
}

// ParseFitMode returns the fit mode with the given name.
func ParseFitMode(name string) (FitMode, error) {
	for f, n := range fitModeNames {
		if n == name {
			return FitMode(f), nil
		}
	}
	return FitContain, errors.Errorf("unknown fit mode %q", name)
}

func (f FitMode) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, errors.Errorf("invalid fit mode %d", int(f))
	}
	return []byte(fitModeNames[f]), nil
}

func (f *FitMode) UnmarshalText(text []byte) error {
	v, err := ParseFitMode(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
