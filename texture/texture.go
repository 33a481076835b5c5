// Package texture implements the float RGBA render targets the compositor
// samples from and writes to.
//
// Pixels are stored top row first, like image.RGBA. Sampling uses texture
// coordinates in the GL convention: (0, 0) is the bottom-left corner, (1, 1)
// the top-right, and texel centres sit at half-pixel offsets. Lookups are
// bilinear and clamp to the edge.
package texture

import (
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Color is a linear RGBA value. Components are not clamped.
type Color struct {
	R, G, B, A float64
}

// Black is opaque black.
var Black = Color{A: 1}

// RGB returns the colour part as a vector.
func (c Color) RGB() r3.Vec {
	return r3.Vec{X: c.R, Y: c.G, Z: c.B}
}

// WithRGB returns c with its colour part replaced by v.
func (c Color) WithRGB(v r3.Vec) Color {
	return Color{R: v.X, G: v.Y, B: v.Z, A: c.A}
}

// Texture is a W x H float RGBA image.
type Texture struct {
	W, H int
	Pix  []float32 // 4 values per pixel, rows top to bottom
}

// New allocates a transparent black texture. Sizes below 1 become 1.
func New(w, h int) *Texture {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	return &Texture{
		W:   w,
		H:   h,
		Pix: make([]float32, w*h*4),
	}
}

// Size returns the texture dimensions.
func (t *Texture) Size() (int, int) {
	return t.W, t.H
}

// Aspect returns width over height.
func (t *Texture) Aspect() float64 {
	return float64(t.W) / float64(t.H)
}

// At returns the pixel at column x, row y counted from the top. Out of range
// coordinates are clamped.
func (t *Texture) At(x, y int) Color {
	x, y = clampInt(x, t.W), clampInt(y, t.H)
	i := (y*t.W + x) * 4
	p := t.Pix[i : i+4 : i+4]
	return Color{
		R: float64(p[0]),
		G: float64(p[1]),
		B: float64(p[2]),
		A: float64(p[3]),
	}
}

// Set stores c at column x, row y counted from the top.
func (t *Texture) Set(x, y int, c Color) {
	i := (y*t.W + x) * 4
	p := t.Pix[i : i+4 : i+4]
	p[0] = float32(c.R)
	p[1] = float32(c.G)
	p[2] = float32(c.B)
	p[3] = float32(c.A)
}

// Store8 stores c clamped to [0, 1] and rounded to 8 bits per channel, the
// way an RGBA8 render target keeps it.
func (t *Texture) Store8(x, y int, c Color) {
	t.Set(x, y, Color{
		R: quantize(c.R),
		G: quantize(c.G),
		B: quantize(c.B),
		A: quantize(c.A),
	})
}

// Fill sets every pixel to c.
func (t *Texture) Fill(c Color) {
	for i := 0; i < len(t.Pix); i += 4 {
		t.Pix[i] = float32(c.R)
		t.Pix[i+1] = float32(c.G)
		t.Pix[i+2] = float32(c.B)
		t.Pix[i+3] = float32(c.A)
	}
}

// Clear sets every pixel to transparent black.
func (t *Texture) Clear() {
	for i := range t.Pix {
		t.Pix[i] = 0
	}
}

// Sample returns the bilinear filtered colour at texture coordinate (u, v).
func (t *Texture) Sample(u, v float64) Color {
	if math.IsNaN(u) || math.IsNaN(v) {
		return Color{}
	}

	fx := u*float64(t.W) - 0.5
	// Flip to rows counted from the top.
	fy := float64(t.H) - v*float64(t.H) - 0.5

	x0, y0 := math.Floor(fx), math.Floor(fy)
	ax, ay := fx-x0, fy-y0
	if math.IsNaN(ax) || math.IsNaN(ay) {
		// Infinite coordinates.
		ax, ay = 0, 0
	}

	ix, iy := int(clampFloat(x0, t.W)), int(clampFloat(y0, t.H))
	ix1, iy1 := int(clampFloat(x0+1, t.W)), int(clampFloat(y0+1, t.H))

	c00 := t.At(ix, iy)
	c10 := t.At(ix1, iy)
	c01 := t.At(ix, iy1)
	c11 := t.At(ix1, iy1)

	return mix(mix(c00, c10, ax), mix(c01, c11, ax), ay)
}

// Texel returns the nearest texel to (u, v) without filtering.
func (t *Texture) Texel(u, v float64) Color {
	x := int(math.Floor(u * float64(t.W)))
	y := t.H - 1 - int(math.Floor(v*float64(t.H)))
	return t.At(x, y)
}

// Load copies img into t, resizing t if the bounds differ. Colours are
// converted to straight alpha in [0, 1].
func (t *Texture) Load(img image.Image) {
	b := img.Bounds()
	t.resize(b.Dx(), b.Dy())

	if rgba, ok := img.(*image.RGBA); ok {
		t.LoadRGBA(rgba.Pix, rgba.Stride, b.Dx(), b.Dy())
		return
	}

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			t.Set(x, y, Color{
				R: float64(c.R) / 255.0,
				G: float64(c.G) / 255.0,
				B: float64(c.B) / 255.0,
				A: float64(c.A) / 255.0,
			})
		}
	}
}

// LoadRGBA copies 8-bit RGBA rows with the given stride into t, resizing t
// to w x h if needed. Used for raw video frames.
func (t *Texture) LoadRGBA(pix []byte, stride, w, h int) {
	t.resize(w, h)

	for y := 0; y < h; y++ {
		row := pix[y*stride : y*stride+w*4]
		dst := t.Pix[y*w*4 : (y+1)*w*4]
		for i, b := range row {
			dst[i] = float32(b) / 255.0
		}
	}
}

// RGBA converts t into dst, reallocating dst when it is nil or of another
// size. Values are clamped and rounded to 8 bits; alpha is written opaque
// since the display surface has no backdrop.
func (t *Texture) RGBA(dst *image.RGBA) *image.RGBA {
	if dst == nil || dst.Bounds().Dx() != t.W || dst.Bounds().Dy() != t.H {
		dst = image.NewRGBA(image.Rect(0, 0, t.W, t.H))
	}

	for y := 0; y < t.H; y++ {
		src := t.Pix[y*t.W*4 : (y+1)*t.W*4]
		row := dst.Pix[y*dst.Stride : y*dst.Stride+t.W*4]
		for x := 0; x < t.W; x++ {
			row[x*4] = to8(src[x*4])
			row[x*4+1] = to8(src[x*4+1])
			row[x*4+2] = to8(src[x*4+2])
			row[x*4+3] = 255
		}
	}

	return dst
}

// FromImage returns a new texture holding img.
func FromImage(img image.Image) *Texture {
	t := &Texture{}
	t.Load(img)
	return t
}

func (t *Texture) resize(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	if t.W == w && t.H == h && len(t.Pix) == w*h*4 {
		return
	}

	t.W, t.H = w, h
	t.Pix = make([]float32, w*h*4)
}

func mix(a, b Color, f float64) Color {
	return Color{
		R: a.R + (b.R-a.R)*f,
		G: a.G + (b.G-a.G)*f,
		B: a.B + (b.B-a.B)*f,
		A: a.A + (b.A-a.A)*f,
	}
}

func quantize(v float64) float64 {
	return float64(to8(float32(v))) / 255.0
}

func to8(v float32) uint8 {
	switch {
	case !(v > 0): // also catches NaN
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255.0 + 0.5)
}

func clampInt(v, n int) int {
	switch {
	case v < 0:
		return 0
	case v >= n:
		return n - 1
	}
	return v
}

func clampFloat(v float64, n int) float64 {
	switch {
	case v < 0:
		return 0
	case v > float64(n-1):
		return float64(n - 1)
	}
	return v
}
