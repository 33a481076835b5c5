package video

import (
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/noriah/mangler/texture"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image is a still picture shown as a single frame.
type Image struct {
	path string
	tex  *texture.Texture
}

// LoadImage decodes the picture at path and fits it within maxW x maxH,
// keeping its aspect ratio.
func LoadImage(path string, maxW, maxH int) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open image")
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", path)
	}

	return &Image{path: path, tex: texture.FromImage(FitImage(img, maxW, maxH))}, nil
}

// FitImage scales img down to fit within maxW x maxH. Smaller images are
// returned unchanged.
func FitImage(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if maxW < 1 || maxH < 1 || (w <= maxW && h <= maxH) {
		return img
	}

	scale := float64(maxW) / float64(w)
	if s := float64(maxH) / float64(h); s < scale {
		scale = s
	}

	dw := max(1, int(float64(w)*scale+0.5))
	dh := max(1, int(float64(h)*scale+0.5))

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)

	return dst
}

func (i *Image) Frame() *texture.Texture {
	return i.tex
}

func (i *Image) Start(context.Context) error {
	return nil
}

func (i *Image) Err() error {
	return nil
}

func (i *Image) Close() error {
	return nil
}

func (i *Image) Live() bool {
	return false
}

func (i *Image) String() string {
	return "image:" + i.path
}
