//go:build withcv
// +build withcv

package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"gocv.io/x/gocv"

	"github.com/ironsheep/boat-detect/internal/imaging"
)

// VideoSource reads frames from an OpenCV capture.
type VideoSource struct {
	spec    string
	capture *gocv.VideoCapture
	mat     gocv.Mat
	width   int
	height  int
	seq     int
	logger  *slog.Logger
}

// OpenVideo opens spec as a capture device index when it parses as an
// integer, otherwise as a file path or stream URL.
func OpenVideo(spec string, width, height int, logger *slog.Logger) (FrameSource, error) {
	var device interface{} = spec
	if id, err := strconv.Atoi(spec); err == nil {
		device = id
	}

	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("failed to open video capture: %w", err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("video capture %q is not opened", spec)
	}

	logger.Info("opened video capture", "source", spec)
	return &VideoSource{
		spec:    spec,
		capture: capture,
		mat:     gocv.NewMat(),
		width:   width,
		height:  height,
		logger:  logger,
	}, nil
}

// Next implements FrameSource. A failed or empty read is the end of the stream.
func (v *VideoSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if ok := v.capture.Read(&v.mat); !ok || v.mat.Empty() {
		return Frame{}, io.EOF
	}
	captured := time.Now()

	img, err := v.mat.ToImage()
	if err != nil {
		return Frame{}, fmt.Errorf("failed to convert frame %d: %w", v.seq, err)
	}

	f := Frame{
		Image:      imaging.FitFrame(img, v.width, v.height),
		Sequence:   v.seq,
		CapturedAt: captured,
		Name:       fmt.Sprintf("%s#%d", v.spec, v.seq),
	}
	v.seq++
	return f, nil
}

// Close implements FrameSource.
func (v *VideoSource) Close() error {
	if err := v.mat.Close(); err != nil {
		v.logger.Warn("failed to release frame buffer", "error", err)
	}
	return v.capture.Close()
}
