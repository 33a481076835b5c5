// Package effect holds the parameter snapshot that drives the compositor.
//
// A Params value is immutable once handed to the render loop. The UI layer
// builds a fresh snapshot for every change and the core never mutates it.
package effect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Params is one complete set of effect settings. JSON keys match the preset
// format written by earlier versions of the app.
type Params struct {
	// Style
	Saturation float64 `json:"saturation"`
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	HueRotate  float64 `json:"hueRotate"` // fraction of a full turn
	Invert     bool    `json:"invert"`
	Grain      float64 `json:"grain"`
	ColorAbyss float64 `json:"colorAbyss"`

	// Retro / Digital
	Pixelation     float64 `json:"pixelation"`
	GlitchStrength float64 `json:"glitchStrength"`
	Halftone       float64 `json:"halftone"`
	Scanlines      bool    `json:"scanlines"`
	Vignette       bool    `json:"vignette"`

	// Geometry & Distortion
	RGBShift            float64 `json:"rgbShift"` // pixels
	ChromaticAberration float64 `json:"chromaticAberration"`
	FluidDistortion     float64 `json:"fluidDistortion"`
	EdgeDistortion      float64 `json:"edgeDistortion"`
	SobelStrength       float64 `json:"sobelStrength"`
	CRTCurvature        float64 `json:"crtCurvature"`

	Kaleidoscope         bool    `json:"kaleidoscope"`
	KaleidoscopeSegments float64 `json:"kaleidoscopeSegments"`

	// Feedback
	Feedback         bool    `json:"feedback"`
	FeedbackAmount   float64 `json:"feedbackAmount"`
	FeedbackZoom     float64 `json:"feedbackZoom"`
	FeedbackRotation float64 `json:"feedbackRotation"`
	FeedbackEdgeFade float64 `json:"feedbackEdgeFade"`

	// LFO
	LFOTarget   Target   `json:"lfoTarget"`
	LFOWaveform Waveform `json:"lfoWaveform"`
	LFOSpeed    float64  `json:"lfoSpeed"`
	LFOAmount   float64  `json:"lfoAmount"`

	// Audio reactivity
	AudioEnabled bool    `json:"audioEnabled"`
	BassTarget   Target  `json:"bassTarget"`
	MidsTarget   Target  `json:"midsTarget"`
	TrebleTarget Target  `json:"trebleTarget"`
	AudioGain    float64 `json:"audioGain"`

	// Output
	FitMode FitMode `json:"fitMode"`
}

// Range is a closed interval a numeric parameter is expected to stay in.
type Range struct {
	Min, Max float64
}

// Contains reports whether v lies in r.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Ranges lists the documented range of every numeric field by JSON name.
// Values outside these ranges are accepted and produce overdriven output.
var Ranges = map[string]Range{
	"saturation":           {0, 3},
	"brightness":           {0, 2},
	"contrast":             {0, 3},
	"hueRotate":            {0, 1},
	"grain":                {0, 1},
	"colorAbyss":           {0, 1},
	"pixelation":           {0, 40},
	"glitchStrength":       {0, 1},
	"halftone":             {0, 1},
	"rgbShift":             {0, 50},
	"chromaticAberration":  {0, 20},
	"fluidDistortion":      {0, 0.3},
	"edgeDistortion":       {0, 0.5},
	"sobelStrength":        {0, 1},
	"crtCurvature":         {0, 0.2},
	"kaleidoscopeSegments": {2, 40},
	"feedbackAmount":       {0, 0.99},
	"feedbackZoom":         {-0.1, 0.1},
	"feedbackRotation":     {-0.1, 0.1},
	"feedbackEdgeFade":     {0, 5},
	"lfoSpeed":             {0, 2},
	"lfoAmount":            {0, 1},
	"audioGain":            {0, 5},
}

func (p *Params) numeric() map[string]float64 {
	return map[string]float64{
		"saturation":           p.Saturation,
		"brightness":           p.Brightness,
		"contrast":             p.Contrast,
		"hueRotate":            p.HueRotate,
		"grain":                p.Grain,
		"colorAbyss":           p.ColorAbyss,
		"pixelation":           p.Pixelation,
		"glitchStrength":       p.GlitchStrength,
		"halftone":             p.Halftone,
		"rgbShift":             p.RGBShift,
		"chromaticAberration":  p.ChromaticAberration,
		"fluidDistortion":      p.FluidDistortion,
		"edgeDistortion":       p.EdgeDistortion,
		"sobelStrength":        p.SobelStrength,
		"crtCurvature":         p.CRTCurvature,
		"kaleidoscopeSegments": p.KaleidoscopeSegments,
		"feedbackAmount":       p.FeedbackAmount,
		"feedbackZoom":         p.FeedbackZoom,
		"feedbackRotation":     p.FeedbackRotation,
		"feedbackEdgeFade":     p.FeedbackEdgeFade,
		"lfoSpeed":             p.LFOSpeed,
		"lfoAmount":            p.LFOAmount,
		"audioGain":            p.AudioGain,
	}
}

// Validate reports the fields that fall outside their documented range or
// carry an unknown enum value. It is advisory: the compositor renders any
// snapshot, and callers usually only log the result.
func (p *Params) Validate() error {
	var bad []string

	for name, v := range p.numeric() {
		if r := Ranges[name]; !r.Contains(v) {
			bad = append(bad, fmt.Sprintf("%s=%g not in [%g, %g]", name, v, r.Min, r.Max))
		}
	}

	for name, t := range map[string]Target{
		"lfoTarget":    p.LFOTarget,
		"bassTarget":   p.BassTarget,
		"midsTarget":   p.MidsTarget,
		"trebleTarget": p.TrebleTarget,
	} {
		if !t.Valid() {
			bad = append(bad, name+" unknown")
		}
	}

	if !p.LFOWaveform.Valid() {
		bad = append(bad, "lfoWaveform unknown")
	}

	if !p.FitMode.Valid() {
		bad = append(bad, "fitMode unknown")
	}

	if len(bad) == 0 {
		return nil
	}

	sort.Strings(bad)
	return errors.New("out of range: " + strings.Join(bad, ", "))
}

// Neutral returns the identity parameter set: with it the compositor
// reproduces the source unchanged.
func Neutral() Params {
	return Params{
		Saturation:           1,
		Brightness:           1,
		Contrast:             1,
		KaleidoscopeSegments: 8,
		FeedbackEdgeFade:     1,
		LFOWaveform:          WaveSine,
		AudioGain:            1,
		FitMode:              FitContain,
	}
}
