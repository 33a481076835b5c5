package mangler

import (
	"fmt"
	"strings"

	"github.com/noriah/mangler/dsp"
	"github.com/noriah/mangler/effect"
	"github.com/noriah/mangler/video"
	"github.com/pkg/errors"
)

// SignalLostStatus is shown while the video source is not delivering frames.
const SignalLostStatus = "SIGNAL LOST"

// Status is what the status line shows.
type Status struct {
	Preset    string
	Fit       effect.FitMode
	Audio     bool
	Recording bool
	FPS       float64

	AudioErr error
	VideoErr error

	// Message is the last one-off notice, such as a saved file.
	Message string
}

// AudioText returns the user-facing audio fault, or "".
func (s Status) AudioText() string {
	switch {
	case s.AudioErr == nil:
		return ""
	case errors.Is(s.AudioErr, dsp.ErrMicrophoneUnavailable):
		return dsp.MicrophoneStatus
	}
	return s.AudioErr.Error()
}

// VideoText returns the user-facing video fault, or "".
func (s Status) VideoText() string {
	switch {
	case s.VideoErr == nil:
		return ""
	case errors.Is(s.VideoErr, video.ErrCameraUnavailable):
		return video.CameraStatus
	case errors.Is(s.VideoErr, video.ErrSignalLost):
		return SignalLostStatus
	}
	return s.VideoErr.Error()
}

func (s Status) String() string {
	parts := []string{
		s.Preset,
		s.Fit.String(),
		fmt.Sprintf("%.0f fps", s.FPS),
	}

	if s.Audio {
		parts = append(parts, "audio")
	}

	if s.Recording {
		parts = append(parts, "● REC")
	}

	for _, text := range []string{s.VideoText(), s.AudioText(), s.Message} {
		if text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, " | ")
}
