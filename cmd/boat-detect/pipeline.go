package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ironsheep/boat-detect/internal/detection"
	"github.com/ironsheep/boat-detect/internal/imaging"
	"github.com/ironsheep/boat-detect/internal/sink"
	"github.com/ironsheep/boat-detect/internal/source"
)

// maxReadFailures is how many frames in a row may fail to decode before the
// stream is abandoned.
const maxReadFailures = 10

type runOptions struct {
	RunID    string
	Features bool
	DebugDir string
}

type runStats struct {
	Queued     int // frames known up front; zero for live streams
	Frames     int
	Analyzed   int
	Skipped    int
	ReadErrors int
	Written    int // records the sink confirms, when it counts them
}

// runPipeline pulls frames from src until it is exhausted, analyses each one
// and writes a record per analysed frame to out. Frames the detector cannot
// use are logged and dropped without touching the smoothing history.
func runPipeline(ctx context.Context, src source.FrameSource, det *detection.Detector, out sink.Sink, opts runOptions, logger *slog.Logger) (stats runStats, err error) {
	if q, ok := src.(interface{ Len() int }); ok {
		stats.Queued = q.Len()
		logger.Info("frames queued", "frames", stats.Queued)
	}
	if w, ok := out.(interface{ Written() int }); ok {
		defer func() { stats.Written = w.Written() }()
	}
	failures := 0

	for {
		frame, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			stats.ReadErrors++
			failures++
			logger.Warn("failed to read frame", "error", err)
			if failures >= maxReadFailures {
				return stats, fmt.Errorf("giving up after %d unreadable frames: %w", failures, err)
			}
			continue
		}
		failures = 0
		stats.Frames++

		res, err := det.Analyze(frame.Image, 0, nil, true)
		if err != nil {
			stats.Skipped++
			logger.Warn("frame skipped", "sequence", frame.Sequence, "frame", frame.Name, "error", err)
			continue
		}
		stats.Analyzed++

		capturedAt := frame.CapturedAt
		if capturedAt.IsZero() {
			capturedAt = time.Now()
		}
		rec := sink.NewRecord(opts.RunID, frame.Sequence, frame.Name, capturedAt.UTC(), res, opts.Features)
		if err := out.Write(ctx, rec); err != nil {
			return stats, fmt.Errorf("failed to write record %d: %w", frame.Sequence, err)
		}

		if opts.DebugDir != "" {
			prefix := fmt.Sprintf("frame_%06d", frame.Sequence)
			if _, err := imaging.WriteDebugImages(opts.DebugDir, prefix, res.Rotated, res.ROI, res.Band, res.Features, res.Detections); err != nil {
				logger.Warn("failed to write debug images", "sequence", frame.Sequence, "error", err)
			}
		}

		logger.Debug("frame analysed",
			"sequence", frame.Sequence,
			"spans", len(rec.Spans),
			"angle_deg", res.AngleDegrees,
			"elapsed", res.Elapsed)
	}
}
