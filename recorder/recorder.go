// Package recorder captures the rendered output into an encoded video file.
//
// Frames are pulled from the render loop at a fixed rate and piped into an
// ffmpeg encoder as raw RGBA. The encoded stream is buffered in memory chunk
// by chunk and assembled into one file when the recording stops.
package recorder

import (
	"context"
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"github.com/noriah/mangler/input/common/execread"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// FrameSource supplies the most recently displayed frame, or nil.
type FrameSource interface {
	Latest() *image.RGBA
}

// AudioInput is a live audio device ffmpeg can open.
type AudioInput interface {
	InputArgs() []string
}

// Config configures a Recorder.
type Config struct {
	Dir       string // output directory for finished recordings
	Width     int    // encoded frame width
	Height    int    // encoded frame height
	FrameRate int    // frames pulled per second
	Frames    FrameSource

	// Audio returns the live audio input to merge, or nil when the active
	// source carries none.
	Audio func() AudioInput

	// Probe reports the available encoders. Defaults to ProbeEncoders.
	Probe func(ctx context.Context) (map[string]bool, error)

	// Command builds the encoder command line. Defaults to EncoderArgs.
	Command func(f Format, width, height, fps int, audio []string) []string

	// FinishTimeout bounds the wait for the encoder to write the container
	// trailer once its input is closed. Defaults to ten seconds.
	FinishTimeout time.Duration
}

// Recorder records the frame source while started.
type Recorder struct {
	cfg     Config
	session Session

	mu       sync.Mutex
	encoders map[string]bool
	cancel   context.CancelFunc
	kill     context.CancelFunc
	feedDone chan struct{}
	runDone  chan error
}

// New creates an idle recorder.
func New(cfg Config) *Recorder {
	if cfg.FrameRate < 1 {
		cfg.FrameRate = 30
	}

	if cfg.Width < 2 {
		cfg.Width = 640
	}

	if cfg.Height < 2 {
		cfg.Height = 360
	}

	// Most encoders need even dimensions.
	cfg.Width &^= 1
	cfg.Height &^= 1

	if cfg.Probe == nil {
		cfg.Probe = ProbeEncoders
	}

	if cfg.Command == nil {
		cfg.Command = EncoderArgs
	}

	if cfg.FinishTimeout <= 0 {
		cfg.FinishTimeout = 10 * time.Second
	}

	return &Recorder{cfg: cfg}
}

// Recording reports whether a recording is active.
func (r *Recorder) Recording() bool {
	return r.session.Recording()
}

// Start begins recording. It is a no-op while a recording is active. The
// encoding format falls back along Formats to what the host supports.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session.Recording() {
		return nil
	}

	format, err := r.selectFormat(ctx)
	if err != nil {
		return err
	}

	var audio []string
	if r.cfg.Audio != nil {
		if in := r.cfg.Audio(); in != nil {
			audio = in.InputArgs()
		}
	}

	argv := r.cfg.Command(format, r.cfg.Width, r.cfg.Height, r.cfg.FrameRate, audio)

	pr, pw := io.Pipe()

	enc := execread.New(argv, 64*1024)
	enc.Stdin = pr
	enc.Partial = true
	enc.DisconnectedStderr = true

	r.session.Start(format, time.Now())

	// The encoder outlives ctx: it stops when the frame pipe closes, so an
	// interrupted app still gets a complete container.
	encCtx, kill := context.WithCancel(context.WithoutCancel(ctx))
	r.kill = kill

	feedCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.feedDone = make(chan struct{})
	r.runDone = make(chan error, 1)

	go func(done chan error) {
		err := enc.Run(encCtx, func(chunk []byte) error {
			r.session.Append(chunk)
			return nil
		})

		// Unblock the feeder if the encoder went away first.
		pr.CloseWithError(io.ErrClosedPipe)
		done <- err
	}(r.runDone)

	go r.feed(feedCtx, pw, r.feedDone)

	return nil
}

// Stop ends the recording, waits for the encoder to flush and saves the
// assembled file into the output directory. It returns the saved path, or
// "" when no recording was active.
func (r *Recorder) Stop() (string, error) {
	art, err := r.Finalize()
	if err != nil {
		if errors.Is(err, ErrNotRecording) {
			return "", nil
		}
		return "", err
	}

	return art.Save(r.cfg.Dir)
}

// Finalize ends the recording and returns the assembled artifact without
// saving it.
func (r *Recorder) Finalize() (Artifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.session.Recording() {
		return Artifact{}, ErrNotRecording
	}

	// Closing the frame pipe lets the encoder finish the container.
	r.cancel()
	<-r.feedDone

	var runErr error
	timer := time.NewTimer(r.cfg.FinishTimeout)
	select {
	case runErr = <-r.runDone:
		timer.Stop()
	case <-timer.C:
		r.kill()
		runErr = <-r.runDone
		if runErr == nil || errors.Is(runErr, context.Canceled) {
			runErr = errors.New("timed out waiting for the encoder to finish")
		}
	}

	r.kill()
	r.cancel, r.kill = nil, nil

	art, err := r.session.Finalize()
	if err != nil {
		return Artifact{}, err
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return art, errors.Wrap(runErr, "encoder failed")
	}

	return art, nil
}

// selectFormat must be called with mu held.
func (r *Recorder) selectFormat(ctx context.Context) (Format, error) {
	if r.encoders == nil {
		enc, err := r.cfg.Probe(ctx)
		if err != nil {
			return Format{}, err
		}
		r.encoders = enc
	}

	return Select(r.encoders)
}

func (r *Recorder) feed(ctx context.Context, w *io.PipeWriter, done chan struct{}) {
	defer close(done)
	defer w.Close()

	frame := image.NewRGBA(image.Rect(0, 0, r.cfg.Width, r.cfg.Height))

	ticker := time.NewTicker(time.Second / time.Duration(r.cfg.FrameRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if src := r.cfg.Frames.Latest(); src != nil {
			Scale(frame, src)
		}

		// Black frames keep the timeline going until the first render.
		if _, err := w.Write(frame.Pix); err != nil {
			return
		}
	}
}

// Scale draws src over the whole of dst, resampling when the sizes differ.
func Scale(dst *image.RGBA, src *image.RGBA) {
	if dst.Bounds().Size() == src.Bounds().Size() {
		draw.Copy(dst, image.Point{}, src, src.Bounds(), draw.Src, nil)
		return
	}

	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
}

// EncoderArgs returns the ffmpeg command that reads raw RGBA frames of the
// given size on stdin and writes format to stdout. When audio holds input
// arguments, the first audio track of that input is muxed in.
func EncoderArgs(f Format, width, height, fps int, audio []string) []string {
	args := []string{
		"ffmpeg", "-hide_banner", "-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", fmt.Sprint(fps),
		"-i", "-",
	}

	if len(audio) > 0 {
		args = append(args, audio...)
		args = append(args, "-map", "0:v:0", "-map", "1:a:0", "-c:a", f.AudioCodec, "-shortest")
	}

	args = append(args, "-c:v", f.VideoCodec, "-pix_fmt", "yuv420p")

	switch f.VideoCodec {
	case "libvpx", "libvpx-vp9":
		args = append(args, "-deadline", "realtime", "-b:v", "2M")
	}

	args = append(args, f.MuxArgs...)
	args = append(args, "-f", f.Muxer, "-")

	return args
}
