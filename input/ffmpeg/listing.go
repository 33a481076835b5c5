package ffmpeg

import (
	"bufio"
	"bytes"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Listed is a device reported by ffmpeg -list_devices.
type Listed struct {
	Index int
	Name  string
}

// List asks ffmpeg for the devices of an input format ("avfoundation",
// "dshow") and returns those of the given kind ("audio" or "video").
func List(format, kind string) ([]Listed, error) {
	cmd := exec.Command(
		"ffmpeg", "-hide_banner", "-loglevel", "info",
		"-f", format, "-list_devices", "true",
		"-i", "",
	)

	// ffmpeg exits non-zero after listing.
	o, _ := cmd.CombinedOutput()

	devices := ParseListing(o, kind)
	if len(devices) == 0 {
		lines := strings.Split(string(o), "\n")
		for i, line := range lines {
			lines[i] = "\t" + line
		}

		return nil, errors.Errorf("no %s devices found; ffmpeg output:\n%s",
			kind, strings.Join(lines, "\n"))
	}

	return devices, nil
}

// ParseListing extracts devices of kind from ffmpeg -list_devices output. It
// understands the sectioned avfoundation layout ("[0] name" under an
// "... video devices:" header) and both dshow layouts (quoted names under a
// header, or quoted names tagged "(video)" / "(audio)").
func ParseListing(out []byte, kind string) []Listed {
	var devices []Listed
	var section string

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		text := stripLogPrefix(scanner.Text())

		switch {
		case strings.Contains(text, "video devices"):
			section = "video"
			continue
		case strings.Contains(text, "audio devices"):
			section = "audio"
			continue
		}

		switch {
		case strings.HasPrefix(text, "["):
			end := strings.Index(text, "] ")
			if end < 0 || section != kind {
				continue
			}

			n, err := strconv.Atoi(text[1:end])
			if err != nil {
				continue
			}

			devices = append(devices, Listed{Index: n, Name: text[end+2:]})

		case strings.HasPrefix(text, `"`):
			end := strings.Index(text[1:], `"`)
			if end < 0 {
				continue
			}

			name := text[1 : end+1]
			rest := text[end+2:]

			kinds := section
			if open := strings.Index(rest, "("); open >= 0 {
				kinds = rest[open:]
			}

			if !strings.Contains(kinds, kind) {
				continue
			}

			devices = append(devices, Listed{Index: len(devices), Name: name})
		}
	}

	return devices
}

// stripLogPrefix removes the "[dshow @ 0x...] " context ffmpeg puts in front
// of every log line.
func stripLogPrefix(line string) string {
	if strings.HasPrefix(line, "[") && strings.Contains(line, " @ ") {
		if i := strings.Index(line, "] "); i >= 0 {
			line = line[i+2:]
		}
	}
	return strings.TrimSpace(line)
}
