package video

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/noriah/mangler/input/ffmpeg"
	"github.com/pkg/errors"
)

// CameraConfig selects a capture device and its frame geometry.
type CameraConfig struct {
	Device    string // device name; empty picks the first camera
	Width     int
	Height    int
	FrameRate int
}

// Cameras lists the capture devices of the host.
func Cameras() ([]string, error) {
	switch runtime.GOOS {
	case "linux", "openbsd", "freebsd":
		devs, err := filepath.Glob("/dev/video*")
		if err != nil {
			return nil, errors.Wrap(err, "failed to list video devices")
		}
		sort.Strings(devs)
		return devs, nil

	case "darwin", "windows":
		format := "avfoundation"
		if runtime.GOOS == "windows" {
			format = "dshow"
		}

		listed, err := ffmpeg.List(format, "video")
		if err != nil {
			return nil, err
		}

		names := make([]string, len(listed))
		for i, l := range listed {
			names[i] = l.Name
		}
		return names, nil
	}

	return nil, errors.Errorf("camera capture not supported on %s", runtime.GOOS)
}

// CameraArgs returns the ffmpeg input arguments opening device on goos.
func CameraArgs(goos, device string, cfg CameraConfig) []string {
	size := fmt.Sprintf("%dx%d", cfg.Width, cfg.Height)
	rate := fmt.Sprint(cfg.FrameRate)

	switch goos {
	case "darwin":
		return []string{
			"-f", "avfoundation", "-framerate", rate, "-video_size", size,
			"-i", device + ":none",
		}

	case "windows":
		return []string{"-f", "dshow", "-framerate", rate, "-i", "video=" + device}

	case "openbsd", "freebsd":
		return []string{"-f", "v4l2", "-i", device}
	}

	return []string{
		"-f", "v4l2", "-framerate", rate, "-video_size", size,
		"-i", device,
	}
}

// NewCamera returns a live source for the configured camera. Opening errors
// are returned wrapped around ErrCameraUnavailable.
func NewCamera(cfg CameraConfig) (*Stream, error) {
	dev := cfg.Device
	if dev == "" {
		devs, err := Cameras()
		if err != nil {
			return nil, errors.WithMessage(ErrCameraUnavailable, err.Error())
		}
		if len(devs) == 0 {
			return nil, errors.WithMessage(ErrCameraUnavailable, "no camera found")
		}
		dev = devs[0]
	}

	argv := []string{"ffmpeg", "-hide_banner", "-loglevel", "panic"}
	argv = append(argv, CameraArgs(runtime.GOOS, dev, cfg)...)
	argv = append(argv, OutputArgs(cfg.Width, cfg.Height)...)

	return NewStream("camera:"+dev, argv, cfg.Width, cfg.Height, true), nil
}

// NewFile returns a source playing the video file at path in real time,
// looping it forever.
func NewFile(path string, w, h int) *Stream {
	argv := []string{
		"ffmpeg", "-hide_banner", "-loglevel", "panic",
		"-re", "-stream_loop", "-1", "-i", path,
	}
	argv = append(argv, OutputArgs(w, h)...)

	return NewStream("file:"+path, argv, w, h, false)
}
