// Package modulation layers LFO and audio-band modulation onto the base
// effect parameters.
//
// For every modulatable field:
//
//	effective = base
//	          + lfo(phase) * scale            (when the LFO targets the field)
//	          + band * gain * scale           (for each band targeting it)
//
// The per-target scales are part of the preset format and must not change.
// Results are never clamped here; the compositor clamps where it needs to.
package modulation

import (
	"github.com/noriah/mangler/dsp"
	"github.com/noriah/mangler/effect"
)

type targetSpec struct {
	scale    float64
	unipolar bool
}

var specs = map[effect.Target]targetSpec{
	effect.TargetRGBShift:            {scale: 50},
	effect.TargetFeedbackZoom:        {scale: 0.02},
	effect.TargetFeedbackRotation:    {scale: 0.05},
	effect.TargetFluidDistortion:     {scale: 0.2},
	effect.TargetEdgeDistortion:      {scale: 0.3},
	effect.TargetChromaticAberration: {scale: 20},
	effect.TargetColorAbyss:          {scale: 1, unipolar: true},
	effect.TargetHueRotate:           {scale: 1},
	effect.TargetGlitchStrength:      {scale: 1, unipolar: true},
	effect.TargetPixelation:          {scale: 20, unipolar: true},
	effect.TargetSobelStrength:       {scale: 2, unipolar: true},
}

// Scale returns the modulation scale of t, or 0 if t cannot be modulated.
func Scale(t effect.Target) float64 {
	return specs[t].scale
}

// Unipolar reports whether the LFO drives t with a [0, 1] signal instead of
// a signed one.
func Unipolar(t effect.Target) bool {
	return specs[t].unipolar
}

// Effective holds the modulated values of every modulatable field.
type Effective struct {
	RGBShift            float64
	FeedbackZoom        float64
	FeedbackRotation    float64
	FluidDistortion     float64
	EdgeDistortion      float64
	ChromaticAberration float64
	ColorAbyss          float64
	HueRotate           float64
	GlitchStrength      float64
	Pixelation          float64
	SobelStrength       float64
}

// Base returns the unmodulated values of p.
func Base(p *effect.Params) Effective {
	return Effective{
		RGBShift:            p.RGBShift,
		FeedbackZoom:        p.FeedbackZoom,
		FeedbackRotation:    p.FeedbackRotation,
		FluidDistortion:     p.FluidDistortion,
		EdgeDistortion:      p.EdgeDistortion,
		ChromaticAberration: p.ChromaticAberration,
		ColorAbyss:          p.ColorAbyss,
		HueRotate:           p.HueRotate,
		GlitchStrength:      p.GlitchStrength,
		Pixelation:          p.Pixelation,
		SobelStrength:       p.SobelStrength,
	}
}

func (e *Effective) field(t effect.Target) *float64 {
	switch t {
	case effect.TargetRGBShift:
		return &e.RGBShift
	case effect.TargetFeedbackZoom:
		return &e.FeedbackZoom
	case effect.TargetFeedbackRotation:
		return &e.FeedbackRotation
	case effect.TargetFluidDistortion:
		return &e.FluidDistortion
	case effect.TargetEdgeDistortion:
		return &e.EdgeDistortion
	case effect.TargetChromaticAberration:
		return &e.ChromaticAberration
	case effect.TargetColorAbyss:
		return &e.ColorAbyss
	case effect.TargetHueRotate:
		return &e.HueRotate
	case effect.TargetGlitchStrength:
		return &e.GlitchStrength
	case effect.TargetPixelation:
		return &e.Pixelation
	case effect.TargetSobelStrength:
		return &e.SobelStrength
	}
	return nil
}

// Get returns the effective value of t. TargetNone yields 0.
func (e Effective) Get(t effect.Target) float64 {
	if f := e.field(t); f != nil {
		return *f
	}
	return 0
}

func (e *Effective) add(t effect.Target, v float64) {
	if f := e.field(t); f != nil {
		*f += v
	}
}

// Compute returns the effective parameters for the frame at time clock
// (seconds since the loop started). It is a pure function of its inputs.
func Compute(p *effect.Params, clock float64, audio dsp.Bands) Effective {
	eff := Base(p)

	if t := p.LFOTarget; t != effect.TargetNone {
		spec := specs[t]
		lfo := LFO(p.LFOWaveform, clock, p.LFOSpeed, p.LFOAmount, spec.unipolar)
		eff.add(t, lfo*spec.scale)
	}

	bands := [...]struct {
		target effect.Target
		value  float64
	}{
		{p.BassTarget, audio.Bass},
		{p.MidsTarget, audio.Mids},
		{p.TrebleTarget, audio.Treble},
	}

	for _, b := range bands {
		if b.target == effect.TargetNone {
			continue
		}
		eff.add(b.target, b.value*p.AudioGain*specs[b.target].scale)
	}

	return eff
}
