package compositor

import (
	"math"
	"testing"

	"github.com/noriah/mangler/effect"
	"github.com/noriah/mangler/modulation"
	"github.com/noriah/mangler/texture"
	"gonum.org/v1/gonum/spatial/r2"
)

const rampSize = 64

// rampSource holds u in R and B and v in G, so an interior bilinear sample
// returns the coordinate it was taken at.
func rampSource() *texture.Texture {
	tex := texture.New(rampSize, rampSize)
	for y := 0; y < rampSize; y++ {
		for x := 0; x < rampSize; x++ {
			u := (float64(x) + 0.5) / rampSize
			v := (float64(rampSize-y) - 0.5) / rampSize
			tex.Set(x, y, texture.Color{R: u, G: v, B: u, A: 1})
		}
	}
	return tex
}

func flatSource(v float64) *texture.Texture {
	tex := texture.New(rampSize, rampSize)
	tex.Fill(texture.Color{R: v, G: v, B: v, A: 1})
	return tex
}

func shadeAt(p effect.Params, src *texture.Texture, time, u, v float64) texture.Color {
	f := &Frame{
		Params:    &p,
		Effective: modulation.Base(&p),
		Time:      time,
		Width:     rampSize,
		Height:    rampSize,
	}

	out, clipped := Shade(f, src, nil, r2.Vec{X: u, Y: v})
	if clipped {
		return texture.Color{R: math.NaN(), G: math.NaN(), B: math.NaN()}
	}
	return out
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-5
}

func TestShadeStages(t *testing.T) {
	type want struct{ r, g, b float64 }

	tests := []struct {
		name string
		set  func(p *effect.Params)
		u, v float64
		want want
	}{
		{
			name: "neutral",
			set:  func(*effect.Params) {},
			u:    0.3, v: 0.6,
			want: want{0.3, 0.6, 0.3},
		},
		{
			name: "pixelation snaps to cells",
			set:  func(p *effect.Params) { p.Pixelation = 8 },
			u:    0.30, v: 0.70,
			want: want{0.25, 0.625, 0.25},
		},
		{
			name: "pixelation of one is off",
			set:  func(p *effect.Params) { p.Pixelation = 1 },
			u:    0.30, v: 0.70,
			want: want{0.30, 0.70, 0.30},
		},
		{
			name: "rgb shift moves red right and blue left",
			set:  func(p *effect.Params) { p.RGBShift = 4 },
			u:    0.5, v: 0.5,
			want: want{0.5625, 0.5, 0.4375},
		},
		{
			name: "aberration at the centre",
			set:  func(p *effect.Params) { p.ChromaticAberration = 2 },
			u:    0.5, v: 0.5,
			want: want{0.53125, 0.5, 0.46875},
		},
		{
			name: "aberration grows off centre",
			set:  func(p *effect.Params) { p.ChromaticAberration = 2 },
			u:    0.75, v: 0.5,
			want: want{0.7890625, 0.5, 0.7109375},
		},
		{
			name: "edge distortion upper right",
			set:  func(p *effect.Params) { p.EdgeDistortion = 0.2 },
			u:    0.75, v: 0.75,
			want: want{0.775, 0.775, 0.775},
		},
		{
			name: "edge distortion lower right",
			set:  func(p *effect.Params) { p.EdgeDistortion = 0.2 },
			u:    0.75, v: 0.25,
			want: want{0.725, 0.275, 0.725},
		},
		{
			name: "edge distortion is zero at the centre",
			set:  func(p *effect.Params) { p.EdgeDistortion = 0.2 },
			u:    0.5, v: 0.5,
			want: want{0.5, 0.5, 0.5},
		},
	}

	src := rampSource()

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := effect.Neutral()
			test.set(&p)

			got := shadeAt(p, src, 1.5, test.u, test.v)
			if !near(got.R, test.want.r) || !near(got.G, test.want.g) || !near(got.B, test.want.b) {
				t.Errorf("got (%.6f, %.6f, %.6f), want (%.6f, %.6f, %.6f)",
					got.R, got.G, got.B, test.want.r, test.want.g, test.want.b)
			}
		})
	}
}

func TestPixelationCellsAreFlat(t *testing.T) {
	p := effect.Neutral()
	p.Pixelation = 8

	src := rampSource()
	a := shadeAt(p, src, 0, 0.26, 0.63)
	b := shadeAt(p, src, 0, 0.37, 0.74)

	if !near(a.R, b.R) || !near(a.G, b.G) {
		t.Errorf("one cell shaded %+v and %+v", a, b)
	}
}

func TestFluidDistortion(t *testing.T) {
	const amount = 0.05
	const u, v, time = 0.4, 0.6, 2.0

	src := rampSource()

	p := effect.Neutral()
	p.FluidDistortion = amount
	got := shadeAt(p, src, time, u, v)

	// Both lookups push forward; the second one sees the shifted x.
	x := u + Noise(addScalar(r2.Scale(10, r2.Vec{X: u, Y: v}), time*0.2))*amount
	y := v + Noise(addScalar(r2.Scale(10, r2.Vec{X: x, Y: v}), -time*0.2))*amount

	if !near(got.R, x) || !near(got.G, y) {
		t.Errorf("got (%.6f, %.6f), want (%.6f, %.6f)", got.R, got.G, x, y)
	}

	if got.R < u || got.G < v {
		t.Errorf("fluid distortion moved backwards: (%.6f, %.6f)", got.R, got.G)
	}

	p.FluidDistortion = 0
	if got := shadeAt(p, src, time, u, v); !near(got.R, u) || !near(got.G, v) {
		t.Errorf("zero amount moved the lookup to (%.6f, %.6f)", got.R, got.G)
	}
}

func TestGlitchShiftsRowsOnly(t *testing.T) {
	p := effect.Neutral()
	p.GlitchStrength = 1

	src := rampSource()
	shifted := 0

	for _, time := range []float64{0.5, 1, 1.5, 2} {
		for row := 0; row < rampSize; row++ {
			v := (float64(row) + 0.5) / rampSize
			got := shadeAt(p, src, time, 0.5, v)

			if !near(got.G, v) {
				t.Fatalf("t=%v row %d: glitch moved the lookup vertically (g=%.6f)", time, row, got.G)
			}

			if !near(got.R, got.B) {
				t.Fatalf("t=%v row %d: glitch split channels (r=%.6f b=%.6f)", time, row, got.R, got.B)
			}

			if !near(got.R, 0.5) {
				shifted++
			}
		}
	}

	if shifted == 0 {
		t.Error("full strength glitch never shifted a row")
	}
}

func TestScanlinesRange(t *testing.T) {
	p := effect.Neutral()
	p.Scanlines = true

	src := flatSource(1)
	lo, hi := math.Inf(1), math.Inf(-1)

	for k := 1; k < 256; k++ {
		got := shadeAt(p, src, 0, 0.5, float64(k)/256)
		lo = math.Min(lo, got.G)
		hi = math.Max(hi, got.G)
	}

	if lo < 0.75-1e-9 || hi > 1+1e-9 {
		t.Errorf("scanline multiplier spans [%.4f, %.4f], want within [0.75, 1]", lo, hi)
	}

	if lo > 0.76 || hi < 0.99 {
		t.Errorf("scanline multiplier spans [%.4f, %.4f], want the full swing", lo, hi)
	}
}

func TestVignette(t *testing.T) {
	p := effect.Neutral()
	p.Vignette = true

	src := flatSource(1)

	tests := []struct {
		u, v float64
		want float64
	}{
		{0.5, 0.5, 1},
		{1.0, 0.5, 0.5},
		{0.001, 0.001, 0},
		{0.999, 0.999, 0},
	}

	for _, test := range tests {
		got := shadeAt(p, src, 0, test.u, test.v)
		if !near(got.R, test.want) {
			t.Errorf("vignette at (%v, %v) = %.6f, want %v", test.u, test.v, got.R, test.want)
		}
	}
}

func TestGrainBounds(t *testing.T) {
	const grain = 0.3

	p := effect.Neutral()
	p.Grain = grain

	src := flatSource(0.5)
	moved := false

	for _, time := range []float64{0.25, 1, 3.5} {
		for i := 1; i < 16; i++ {
			for j := 1; j < 16; j++ {
				got := shadeAt(p, src, time, float64(i)/16, float64(j)/16)

				off := got.R - 0.5
				if math.Abs(off) > grain/2+1e-9 {
					t.Fatalf("grain offset %.4f exceeds %.2f", off, grain/2)
				}

				if !near(got.R, got.G) || !near(got.G, got.B) {
					t.Fatalf("grain is not monochrome: %+v", got)
				}

				if !near(off, 0) {
					moved = true
				}
			}
		}
	}

	if !moved {
		t.Error("grain never changed a pixel")
	}
}
