package ffmpeg

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/noriah/mangler/input"
	"github.com/pkg/errors"
)

func init() {
	input.RegisterBackend("ffmpeg-alsa", ALSA{})
}

// ALSA is the alsa input for FFmpeg.
type ALSA struct{}

func (p ALSA) Init() error {
	return nil
}

func (p ALSA) Close() error {
	return nil
}

// Devices returns the capture PCMs listed in /proc/asound/pcm.
func (p ALSA) Devices() ([]input.Device, error) {
	f, err := os.Open("/proc/asound/pcm")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open pcm")
	}
	defer f.Close()

	return parseALSAList(f)
}

func parseALSAList(r io.Reader) ([]input.Device, error) {
	var devices []input.Device

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "capture") {
			continue
		}

		d, err := ParseALSADevice(strings.SplitN(line, ":", 2)[0])
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse device line %q", line)
		}

		devices = append(devices, d)
	}

	return devices, scanner.Err()
}

func (p ALSA) DefaultDevice() (input.Device, error) {
	return ALSADevice("default"), nil
}

func (p ALSA) Start(cfg input.SessionConfig) (input.Session, error) {
	dv, ok := cfg.Device.(ALSADevice)
	if !ok {
		return nil, invalidDevice(cfg.Device)
	}

	return NewSession(dv, cfg)
}

// ALSADevice is an alsa PCM name such as "hw:0,0".
type ALSADevice string

// ParseALSADevice turns a "CC-DD" card-device pair from /proc/asound/pcm into
// a "hw:C,D" device.
func ParseALSADevice(pair string) (ALSADevice, error) {
	parts := strings.Split(strings.TrimSpace(pair), "-")
	if len(parts) != 2 {
		return "", errors.New("mismatch alsa format")
	}

	card, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", errors.Wrap(err, "bad card number")
	}

	dev, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", errors.Wrap(err, "bad device number")
	}

	return ALSADevice("hw:" + strconv.Itoa(card) + "," + strconv.Itoa(dev)), nil
}

func (d ALSADevice) InputArgs() []string {
	return []string{"-f", "alsa", "-i", string(d)}
}

func (d ALSADevice) String() string {
	return string(d)
}
