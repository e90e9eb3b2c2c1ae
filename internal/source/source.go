// Package source supplies frames to the detection pipeline.
//
// A FrameSource yields decoded frames in capture order and returns io.EOF
// once the stream is exhausted. Every frame is resized to the run's frame
// size before it is handed out, so all frames of a run share one width.
//
// Two sources exist: a directory of still images read in lexical order, and
// an OpenCV video capture (file, URL or device index) compiled in with the
// withcv build tag.
package source

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"os"
	"time"
)

// ErrVideoUnsupported is returned by OpenVideo in builds without OpenCV.
var ErrVideoUnsupported = errors.New("video capture not enabled: rebuild with -tags=withcv")

// Frame is one decoded frame.
type Frame struct {
	// Image is the frame, already resized to the run's frame size.
	Image image.Image

	// Sequence numbers frames from 0 in the order they were read.
	Sequence int

	// CapturedAt is when the frame was read, or the file's modification time
	// for image sequences.
	CapturedAt time.Time

	// Name identifies the frame: a file name or "<source>#<sequence>".
	Name string
}

// FrameSource yields frames in capture order.
// Implementations are not safe for concurrent use.
type FrameSource interface {
	// Next returns the next frame, or io.EOF at the end of the stream.
	Next(ctx context.Context) (Frame, error)

	// Close releases the source.
	Close() error
}

// Open picks a source for spec: a directory becomes a DirSource, anything
// else (a file path, URL or device index) a video capture.
func Open(spec string, width, height int, logger *slog.Logger) (FrameSource, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if info, err := os.Stat(spec); err == nil && info.IsDir() {
		return NewDirSource(spec, width, height, logger)
	}
	return OpenVideo(spec, width, height, logger)
}
