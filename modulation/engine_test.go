package modulation

import (
	"math"
	"testing"

	"github.com/noriah/mangler/dsp"
	"github.com/noriah/mangler/effect"
)

const epsilon = 1e-9

func TestWaveRanges(t *testing.T) {
	waves := []effect.Waveform{
		effect.WaveSine, effect.WaveTriangle, effect.WaveSquare, effect.WaveSawtooth,
	}

	for _, w := range waves {
		for i := 0; i <= 1000; i++ {
			phase := float64(i)*0.0137 - 3.0

			if v := Bipolar(w, phase); v < -1-epsilon || v > 1+epsilon {
				t.Fatalf("%v bipolar(%v) = %v out of [-1, 1]", w, phase, v)
			}

			v := Wave(w, phase)
			if v < 0 || v > 1 {
				t.Fatalf("%v wave(%v) = %v out of [0, 1]", w, phase, v)
			}

			if w == effect.WaveSquare && v != 0 && v != 1 {
				t.Fatalf("square wave produced %v", v)
			}
		}
	}
}

func TestWaveShapes(t *testing.T) {
	for _, tc := range []struct {
		w     effect.Waveform
		phase float64
		want  float64
	}{
		{effect.WaveSine, 0.25, 1},
		{effect.WaveSine, 0.75, -1},
		{effect.WaveTriangle, 0, 1},
		{effect.WaveTriangle, 0.5, -1},
		{effect.WaveSquare, 0.25, -1},
		{effect.WaveSquare, 0.5, 1},
		{effect.WaveSawtooth, 0.25, -0.5},
		{effect.WaveSawtooth, 1.75, 0.5},
	} {
		if got := Bipolar(tc.w, tc.phase); math.Abs(got-tc.want) > epsilon {
			t.Errorf("%v bipolar(%v) = %v, want %v", tc.w, tc.phase, got, tc.want)
		}
	}
}

func TestComputeIsPure(t *testing.T) {
	p := effect.DefaultParams()
	p.LFOTarget = effect.TargetFeedbackZoom
	p.LFOWaveform = effect.WaveTriangle
	p.BassTarget = effect.TargetRGBShift
	p.TrebleTarget = effect.TargetRGBShift

	audio := dsp.Bands{Bass: 0.3, Mids: 0.6, Treble: 0.9}

	a := Compute(&p, 12.5, audio)
	b := Compute(&p, 12.5, audio)
	if a != b {
		t.Errorf("same inputs gave different outputs: %+v vs %+v", a, b)
	}
}

func TestAudioIgnoredWithoutTargets(t *testing.T) {
	p := effect.DefaultParams()
	base := Base(&p)

	for _, audio := range []dsp.Bands{
		{},
		{Bass: 1, Mids: 1, Treble: 1},
		{Bass: 0.2, Mids: 0.7, Treble: 0.01},
	} {
		if got := Compute(&p, 3, audio); got != base {
			t.Errorf("audio %+v leaked into params: %+v", audio, got)
		}
	}
}

func TestBandsSumOnSameTarget(t *testing.T) {
	p := effect.Neutral()
	p.RGBShift = 2
	p.AudioGain = 2
	p.BassTarget = effect.TargetRGBShift
	p.MidsTarget = effect.TargetRGBShift
	p.TrebleTarget = effect.TargetPixelation

	eff := Compute(&p, 0, dsp.Bands{Bass: 0.1, Mids: 0.2, Treble: 0.5})

	if want := 2 + (0.1+0.2)*2*50; math.Abs(eff.RGBShift-want) > epsilon {
		t.Errorf("rgbShift = %v, want %v", eff.RGBShift, want)
	}

	if want := 0.5 * 2 * 20; math.Abs(eff.Pixelation-want) > epsilon {
		t.Errorf("pixelation = %v, want %v", eff.Pixelation, want)
	}
}

func TestLFOAndAudioSum(t *testing.T) {
	p := effect.Neutral()
	p.HueRotate = 0.1
	p.LFOTarget = effect.TargetHueRotate
	p.LFOWaveform = effect.WaveSawtooth
	p.LFOSpeed = 1
	p.LFOAmount = 0.5
	p.BassTarget = effect.TargetHueRotate

	// phase 0.75 -> sawtooth bipolar 0.5 -> 0.25 after amount.
	eff := Compute(&p, 0.75, dsp.Bands{Bass: 0.4})

	if want := 0.1 + 0.25 + 0.4; math.Abs(eff.HueRotate-want) > epsilon {
		t.Errorf("hueRotate = %v, want %v", eff.HueRotate, want)
	}
}

func TestUnipolarTargets(t *testing.T) {
	p := effect.Neutral()
	p.LFOTarget = effect.TargetColorAbyss
	p.LFOWaveform = effect.WaveSquare
	p.LFOSpeed = 1
	p.LFOAmount = 0.5

	low := Compute(&p, 0.25, dsp.Bands{})
	high := Compute(&p, 0.75, dsp.Bands{})

	if low.ColorAbyss != 0 || high.ColorAbyss != 0.5 {
		t.Errorf("unipolar square should swing 0 -> amount, got %v -> %v",
			low.ColorAbyss, high.ColorAbyss)
	}

	// Same LFO on a signed target swings -amount -> +amount.
	p.LFOTarget = effect.TargetHueRotate
	low = Compute(&p, 0.25, dsp.Bands{})
	high = Compute(&p, 0.75, dsp.Bands{})

	if low.HueRotate != -0.5 || high.HueRotate != 0.5 {
		t.Errorf("bipolar square should swing -amount -> amount, got %v -> %v",
			low.HueRotate, high.HueRotate)
	}
}

func TestSquareCrossingStep(t *testing.T) {
	p := effect.Neutral()
	p.RGBShift = 15
	p.LFOTarget = effect.TargetRGBShift
	p.LFOWaveform = effect.WaveSquare
	p.LFOSpeed = 1.5
	p.LFOAmount = 0.2

	// Frame times straddling phase 0.5 (t = 1/3 s at speed 1.5).
	before := Compute(&p, 0.30, dsp.Bands{})
	after := Compute(&p, 0.36, dsp.Bands{})

	// Peak to peak is twice scale*amount on a signed target.
	want := 2 * Scale(effect.TargetRGBShift) * p.LFOAmount
	if got := after.RGBShift - before.RGBShift; math.Abs(got-want) > epsilon {
		t.Errorf("rgbShift step = %v, want %v", got, want)
	}
}

func TestUnknownTargetIgnored(t *testing.T) {
	p := effect.Neutral()
	p.LFOTarget = effect.Target(42)
	p.LFOAmount = 1
	p.LFOSpeed = 1
	p.BassTarget = effect.Target(-3)

	if got, want := Compute(&p, 0.25, dsp.Bands{Bass: 1}), Base(&p); got != want {
		t.Errorf("unknown target changed output: %+v", got)
	}
}

func TestScaleConstants(t *testing.T) {
	for target, want := range map[effect.Target]float64{
		effect.TargetRGBShift:            50,
		effect.TargetFeedbackZoom:        0.02,
		effect.TargetFeedbackRotation:    0.05,
		effect.TargetFluidDistortion:     0.2,
		effect.TargetEdgeDistortion:      0.3,
		effect.TargetChromaticAberration: 20,
		effect.TargetColorAbyss:          1,
		effect.TargetHueRotate:           1,
		effect.TargetGlitchStrength:      1,
		effect.TargetPixelation:          20,
		effect.TargetSobelStrength:       2,
	} {
		if got := Scale(target); got != want {
			t.Errorf("scale(%v) = %v, want %v", target, got, want)
		}
	}

	for _, target := range effect.Targets() {
		if Scale(target) == 0 {
			t.Errorf("target %v has no scale", target)
		}
	}
}
