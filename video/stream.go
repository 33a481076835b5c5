package video

import (
	"context"
	"fmt"
	"sync"

	"github.com/noriah/mangler/input/common/execread"
	"github.com/noriah/mangler/texture"
	"github.com/noriah/mangler/util"
	"github.com/pkg/errors"
)

// Stream reads fixed-size rawvideo RGBA frames from a decoder process.
type Stream struct {
	name string
	live bool
	w, h int

	reader *execread.Reader

	frame  *util.Cell[*texture.Texture]
	status *util.Cell[error]

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewStream creates a stream reading w x h frames from the stdout of argv.
func NewStream(name string, argv []string, w, h int, live bool) *Stream {
	r := execread.New(argv, w*h*4)
	r.DisconnectedStderr = true

	return &Stream{
		name:   name,
		live:   live,
		w:      w,
		h:      h,
		reader: r,
		frame:  util.NewCell[*texture.Texture](nil),
		status: util.NewCell[error](nil),
	}
}

// OutputArgs returns the ffmpeg output arguments producing w x h rawvideo
// RGBA on stdout.
func OutputArgs(w, h int) []string {
	return []string{
		"-an",
		"-vf", fmt.Sprintf("scale=%d:%d", w, h),
		"-pix_fmt", "rgba",
		"-f", "rawvideo",
		"-",
	}
}

func (s *Stream) Frame() *texture.Texture {
	return s.frame.Load()
}

func (s *Stream) Err() error {
	return s.status.Load()
}

func (s *Stream) Live() bool {
	return s.live
}

func (s *Stream) String() string {
	return s.name
}

// Start launches the decoder. Starting a started stream is a no-op.
func (s *Stream) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.status.Store(nil)

	go s.run(ctx, s.done)

	return nil
}

// Close stops the decoder and waits for it to exit. The last frame stays
// available.
func (s *Stream) Close() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()
	<-done
	return nil
}

func (s *Stream) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	frames := 0
	err := s.reader.Run(ctx, func(chunk []byte) error {
		if chunk == nil {
			return nil
		}

		tex := texture.New(s.w, s.h)
		tex.LoadRGBA(chunk, s.w*4, s.w, s.h)
		s.frame.Store(tex)
		frames++

		return nil
	})

	if ctx.Err() != nil {
		return
	}

	// The decoder should only stop when asked to.
	cause := ErrSignalLost
	if frames == 0 && s.live {
		cause = ErrCameraUnavailable
	}

	if err != nil {
		s.status.Store(errors.WithMessage(cause, err.Error()))
		return
	}

	s.status.Store(cause)
}
