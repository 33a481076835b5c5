package recorder

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrNotRecording is returned when finalizing a session that is idle.
var ErrNotRecording = errors.New("not recording")

// Artifact is a finished recording.
type Artifact struct {
	Name     string // file name, mangler-<unix ms>.<ext>
	MIMEType string
	Data     []byte
}

// Len returns the artifact size in bytes.
func (a *Artifact) Len() int {
	return len(a.Data)
}

// Save writes the artifact into dir and returns the file path.
func (a *Artifact) Save(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create output dir")
	}

	path := filepath.Join(dir, a.Name)
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", errors.Wrap(err, "failed to write recording")
	}

	return path, nil
}

// Session is an append-only buffer of encoded chunks kept in arrival order.
type Session struct {
	mu        sync.Mutex
	recording bool
	format    Format
	started   time.Time
	chunks    [][]byte
	size      int
}

// Start begins a new recording in format. It reports false and changes
// nothing when a recording is already active.
func (s *Session) Start(format Format, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recording {
		return false
	}

	s.recording = true
	s.format = format
	s.started = now
	s.chunks = nil
	s.size = 0

	return true
}

// Recording reports whether a recording is active.
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// Append copies chunk onto the buffer. Empty chunks and chunks arriving
// while idle are dropped.
func (s *Session) Append(chunk []byte) {
	if len(chunk) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recording {
		return
	}

	s.chunks = append(s.chunks, append([]byte(nil), chunk...))
	s.size += len(chunk)
}

// Size returns the number of buffered bytes.
func (s *Session) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Finalize concatenates the buffered chunks into one artifact, clears the
// buffer and returns to idle.
func (s *Session) Finalize() (Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recording {
		return Artifact{}, ErrNotRecording
	}

	data := make([]byte, 0, s.size)
	for _, c := range s.chunks {
		data = append(data, c...)
	}

	art := Artifact{
		Name:     fmt.Sprintf("mangler-%d.%s", s.started.UnixMilli(), s.format.Ext),
		MIMEType: s.format.MIMEType,
		Data:     data,
	}

	s.recording = false
	s.chunks = nil
	s.size = 0

	return art, nil
}
