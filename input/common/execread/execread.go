// Package execread runs an external program and reads fixed-size chunks from
// its stdout.
//
// Audio backends use it to read raw float samples from parec or ffmpeg, the
// video package reads rawvideo frames with it, and the recorder collects the
// encoded container stream.
package execread

import (
	"context"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/pkg/errors"
)

// ChunkFunc receives each chunk read from the process. The slice is reused
// between calls. A nil chunk means the read deadline expired before a full
// chunk arrived.
type ChunkFunc func(chunk []byte) error

// Reader is a program whose stdout is read in chunks.
type Reader struct {
	// OnStart is called after the process has started. Nil by default.
	OnStart func(ctx context.Context, cmd *exec.Cmd) error

	// Stdin is connected to the process stdin when set.
	Stdin io.Reader

	// DisconnectedStderr keeps cmd.Stderr from pointing to os.Stderr. Programs
	// that print progress would otherwise draw over the terminal surface.
	DisconnectedStderr bool

	// Partial delivers whatever a single read returns instead of waiting for a
	// full chunk. Used for container streams where framing does not matter.
	Partial bool

	// Timeout is the per-chunk read deadline. Zero waits forever.
	Timeout time.Duration

	argv  []string
	chunk int
}

// New creates a reader for argv that delivers chunks of size bytes.
func New(argv []string, size int) *Reader {
	if len(argv) < 1 {
		panic("argv has no arg0")
	}

	if size < 1 {
		panic("chunk size must be positive")
	}

	return &Reader{
		argv:  argv,
		chunk: size,
	}
}

// Args returns the command line.
func (r *Reader) Args() []string {
	return r.argv
}

// Run starts the program and calls fn for every chunk until the program
// exits, ctx is done or fn returns an error. A clean exit returns nil.
func (r *Reader) Run(ctx context.Context, fn ChunkFunc) error {
	cmd := exec.CommandContext(ctx, r.argv[0], r.argv[1:]...)
	cmd.Stdin = r.Stdin

	if !r.DisconnectedStderr {
		cmd.Stderr = os.Stderr
	}

	o, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Wrap(err, "failed to get stdout pipe")
	}

	// We need o as an *os.File for SetReadDeadline.
	of, ok := o.(*os.File)
	if !ok {
		return errors.New("stdout pipe is not an *os.File (bug)")
	}

	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, "failed to start "+r.argv[0])
	}

	// Reap the process whatever happens below.
	defer func() {
		o.Close()
		cmd.Wait()
	}()

	if r.OnStart != nil {
		if err := r.OnStart(ctx, cmd); err != nil {
			return err
		}
	}

	raw := make([]byte, r.chunk)

	for {
		if r.Timeout > 0 {
			if err := of.SetReadDeadline(time.Now().Add(r.Timeout)); err != nil {
				return errors.Wrap(err, "failed to set read deadline")
			}
		}

		var n int
		var err error

		if r.Partial {
			n, err = o.Read(raw)
		} else {
			n, err = io.ReadFull(o, raw)
		}

		switch {
		case err == nil:
			if err := fn(raw[:n]); err != nil {
				return err
			}

		case errors.Is(err, os.ErrDeadlineExceeded):
			if err := fn(nil); err != nil {
				return err
			}

		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			if n > 0 && r.Partial {
				if err := fn(raw[:n]); err != nil {
					return err
				}
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil

		default:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "failed to read from "+r.argv[0])
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
