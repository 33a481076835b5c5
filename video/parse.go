package video

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Options are the frame settings applied to parsed sources.
type Options struct {
	Width     int
	Height    int
	FrameRate int
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// Open creates the source named by spec:
//
//	camera           first camera
//	camera:<device>  a specific camera
//	file:<path>      looping video file
//	image:<path>     still image
//	<path>           file or image, by extension
func Open(spec string, opts Options) (Source, error) {
	kind, arg, found := strings.Cut(spec, ":")
	if !found {
		kind, arg = spec, ""
	}

	switch kind {
	case "", "camera":
		cam, err := NewCamera(CameraConfig{
			Device:    arg,
			Width:     opts.Width,
			Height:    opts.Height,
			FrameRate: opts.FrameRate,
		})
		if err != nil {
			return nil, err
		}
		return cam, nil

	case "file":
		if arg == "" {
			return nil, errors.New("file source needs a path")
		}
		return NewFile(arg, opts.Width, opts.Height), nil

	case "image":
		if arg == "" {
			return nil, errors.New("image source needs a path")
		}
		return openImage(arg, opts)
	}

	// A bare path, possibly containing a colon.
	if imageExts[strings.ToLower(filepath.Ext(spec))] {
		return openImage(spec, opts)
	}

	return NewFile(spec, opts.Width, opts.Height), nil
}

func openImage(path string, opts Options) (Source, error) {
	img, err := LoadImage(path, opts.Width, opts.Height)
	if err != nil {
		return nil, err
	}
	return img, nil
}
