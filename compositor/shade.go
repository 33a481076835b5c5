package compositor

import (
	"math"

	"github.com/noriah/mangler/effect"
	"github.com/noriah/mangler/modulation"
	"github.com/noriah/mangler/texture"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

var half2 = r2.Vec{X: 0.5, Y: 0.5}

// Frame holds the per-pass inputs shared by every fragment.
type Frame struct {
	Params    *effect.Params       // toggles and unmodulated settings
	Effective modulation.Effective // modulated values for this frame
	Time      float64              // seconds since the loop started
	Width     int                  // render target width in pixels
	Height    int                  // render target height in pixels
}

func (f *Frame) resolution() r2.Vec {
	return r2.Vec{X: float64(f.Width), Y: float64(f.Height)}
}

// Curve applies the CRT barrel warp to uv.
func Curve(uv r2.Vec, curvature float64) r2.Vec {
	if !(curvature > 0.0) {
		return uv
	}

	cent := r2.Scale(1.0-curvature*0.5, r2.Sub(uv, half2))
	cent.X *= 1.0 + math.Pow(math.Abs(cent.Y)*2.0, 2.0)*curvature*0.5
	cent.Y *= 1.0 + math.Pow(math.Abs(cent.X)*2.0, 2.0)*curvature*0.5

	return r2.Add(cent, half2)
}

// Segments returns the wedge count actually used for n: rounded, at least
// two and always even.
func Segments(n float64) float64 {
	n = math.Round(n)
	if !(n > 0.0) {
		return 2.0
	}

	if math.Mod(n, 2.0) != 0.0 {
		n++
	}

	return n
}

// Kaleidoscope folds uv around the centre into segments wedges, mirroring
// every other wedge.
func Kaleidoscope(uv r2.Vec, segments float64) r2.Vec {
	kp := r2.Sub(uv, half2)
	r := r2.Norm(kp)
	a := math.Atan2(kp.Y, kp.X)

	segs := Segments(segments)
	segAngle := 2.0 * math.Pi / segs

	// Wedge parity comes from the unfolded angle.
	wedge := math.Floor(a / segAngle)
	a = mod(a, segAngle)
	if mod(wedge+segs, 2.0) > 0.5 {
		a = segAngle - a
	}

	return r2.Vec{X: r*math.Cos(a) + 0.5, Y: r*math.Sin(a) + 0.5}
}

// Sobel returns the gradient magnitude of tex around uv, one texel of
// resolution apart.
func Sobel(tex *texture.Texture, uv r2.Vec, resolution r2.Vec) float64 {
	x := 1.0 / resolution.X
	y := 1.0 / resolution.Y

	at := func(dx, dy float64) r3.Vec {
		return tex.Sample(uv.X+dx, uv.Y+dy).RGB()
	}

	tl, l, bl := at(-x, y), at(-x, 0), at(-x, -y)
	tr, rr, br := at(x, y), at(x, 0), at(x, -y)
	t, b := at(0, y), at(0, -y)

	horiz := r3.Sub(
		r3.Add(r3.Add(tr, r3.Scale(2, rr)), br),
		r3.Add(r3.Add(tl, r3.Scale(2, l)), bl))
	vert := r3.Sub(
		r3.Add(r3.Add(tl, r3.Scale(2, t)), tr),
		r3.Add(r3.Add(bl, r3.Scale(2, b)), br))

	edge := r3.Vec{
		X: math.Hypot(horiz.X, vert.X),
		Y: math.Hypot(horiz.Y, vert.Y),
		Z: math.Hypot(horiz.Z, vert.Z),
	}

	return r3.Norm(edge)
}

// Shade evaluates the effect program for the fragment at vUv, the position
// within the quad with (0, 0) at the bottom left. src is the video frame and
// fb the feedback history. clipped is set when the CRT warp pushed the
// fragment off the source; the fragment is then opaque black.
func Shade(f *Frame, src, fb *texture.Texture, vUv r2.Vec) (out texture.Color, clipped bool) {
	p := f.Params
	e := &f.Effective
	res := f.resolution()

	uv := Curve(vUv, p.CRTCurvature)
	if uv.X < 0.0 || uv.X > 1.0 || uv.Y < 0.0 || uv.Y > 1.0 {
		return texture.Black, true
	}

	centered := r2.Sub(uv, half2)

	// Pixelation
	if e.Pixelation > 1.0 {
		d := 1.0 / e.Pixelation
		uv.X = math.Floor(uv.X*res.X*d) / (res.X * d)
		uv.Y = math.Floor(uv.Y*res.Y*d) / (res.Y * d)
	}

	// Glitch. Blocks shift horizontally only.
	if g := e.GlitchStrength; g > 0.0 {
		block := math.Floor(uv.Y*20.0 + f.Time*5.0)
		seed := r2.Vec{X: block, Y: f.Time}
		if Noise(seed) > 1.0-g*0.5 {
			uv.X += (Random(seed) - 0.5) * g * 0.5
		}
	}

	// Edge distortion
	edgeFactor := math.Pow(r2.Norm(r2.Scale(2.0, centered)), 2.0)
	uv.X += centered.Y * e.EdgeDistortion * edgeFactor
	uv.Y += centered.X * e.EdgeDistortion * edgeFactor

	// Fluid distortion. The second lookup sees the already shifted x.
	uv.X += Noise(addScalar(r2.Scale(10.0, uv), f.Time*0.2)) * e.FluidDistortion
	uv.Y += Noise(addScalar(r2.Scale(10.0, uv), -f.Time*0.2)) * e.FluidDistortion

	if p.Kaleidoscope {
		uv = Kaleidoscope(uv, p.KaleidoscopeSegments)
	}

	// Feedback lookup
	fbp := r2.Rotate(r2.Sub(uv, half2), -e.FeedbackRotation, r2.Vec{})
	fbUV := r2.Add(r2.Scale(1.0-e.FeedbackZoom, fbp), half2)

	var history texture.Color
	if fb != nil {
		history = fb.Sample(fbUV.X, fbUV.Y)
	}
	history.A *= 1.0 - math.Pow(r2.Norm(r2.Scale(2.0, r2.Sub(vUv, half2))), p.FeedbackEdgeFade)

	// RGB shift and chromatic aberration
	shift := e.RGBShift / res.X
	ca := e.ChromaticAberration / res.X * (1.0 + edgeFactor)

	video := texture.Color{
		R: src.Sample(uv.X+shift+ca, uv.Y).R,
		G: src.Sample(uv.X, uv.Y).G,
		B: src.Sample(uv.X-shift-ca, uv.Y).B,
		A: 1.0,
	}

	if e.SobelStrength > 0.0 {
		edge := Sobel(src, uv, res)
		rgb := video.RGB()
		video = video.WithRGB(mix3(rgb, r3.Add(splat(edge), rgb), e.SobelStrength))
	}

	final := video
	if p.Feedback {
		a := p.FeedbackAmount
		final = texture.Color{
			R: mix(video.R, history.R, a),
			G: mix(video.G, history.G, a),
			B: mix(video.B, history.B, a),
			A: mix(video.A, history.A, a),
		}
	}

	rgb := final.RGB()

	if e.HueRotate != 0.0 {
		rgb = HueRotate(rgb, e.HueRotate)
	}

	if p.Invert {
		rgb = r3.Sub(splat(1.0), rgb)
	}

	rgb = ColorAbyss(rgb, clamp(e.ColorAbyss, 0.0, 1.0), f.Time, vUv)
	rgb = Grade(rgb, p.Contrast, p.Brightness, p.Saturation)

	if p.Halftone > 0.0 {
		ht := Halftone(vUv, res, p.Halftone*1.5)
		rgb = r3.Scale(mix(1.0, ht, p.Halftone*0.8), rgb)
	}

	rgb = r3.Add(rgb, splat((Random(r2.Scale(f.Time, vUv))-0.5)*p.Grain))

	if p.Vignette {
		rgb = r3.Scale(smoothstep(0.7, 0.3, r2.Norm(centered)), rgb)
	}

	if p.Scanlines {
		count := res.Y * 0.5
		scan := math.Sin(uv.Y * count * math.Pi * 2.0)
		rgb = r3.Scale(1.0-0.25*(scan*0.5+0.5), rgb)
	}

	return final.WithRGB(rgb), false
}
