package recorder

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// ErrNoEncoder is returned when ffmpeg offers none of the known formats.
var ErrNoEncoder = errors.New("no supported video encoder")

// Format is a container and codec pair ffmpeg can stream to a pipe.
type Format struct {
	Ext        string
	MIMEType   string
	Muxer      string
	VideoCodec string
	AudioCodec string
	MuxArgs    []string // extra muxer options
}

// Formats lists the recording formats in order of preference. The last one
// is the baseline every ffmpeg build carries.
var Formats = []Format{
	{
		Ext: "webm", MIMEType: "video/webm;codecs=vp9", Muxer: "webm",
		VideoCodec: "libvpx-vp9", AudioCodec: "libopus",
	},
	{
		Ext: "webm", MIMEType: "video/webm", Muxer: "webm",
		VideoCodec: "libvpx", AudioCodec: "libopus",
	},
	{
		Ext: "mp4", MIMEType: "video/mp4", Muxer: "mp4",
		VideoCodec: "mpeg4", AudioCodec: "aac",
		// mp4 needs fragmenting to be written to a pipe.
		MuxArgs: []string{"-movflags", "frag_keyframe+empty_moov"},
	},
}

// Select returns the first format whose video codec is available.
func Select(available map[string]bool) (Format, error) {
	for _, f := range Formats {
		if available[f.VideoCodec] {
			return f, nil
		}
	}
	return Format{}, ErrNoEncoder
}

// ProbeEncoders asks ffmpeg which encoders it was built with.
func ProbeEncoders(ctx context.Context) (map[string]bool, error) {
	out, err := exec.CommandContext(ctx, "ffmpeg", "-hide_banner", "-encoders").Output()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list ffmpeg encoders")
	}

	return ParseEncoders(out), nil
}

// ParseEncoders reads the encoder names from ffmpeg -encoders output. Entries
// follow a " ------" separator line as "<flags> <name> <description>".
func ParseEncoders(out []byte) map[string]bool {
	encoders := map[string]bool{}
	listing := false

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())

		if !listing {
			listing = len(fields) == 1 && strings.HasPrefix(fields[0], "---")
			continue
		}

		if len(fields) < 2 || len(fields[0]) != 6 {
			continue
		}

		encoders[fields[1]] = true
	}

	return encoders
}
