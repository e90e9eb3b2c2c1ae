package detection

import (
	"fmt"
	"image"
	"io"
	"log/slog"
	"time"

	"github.com/ironsheep/boat-detect/internal/config"
)

// Result is everything Analyze produces for one frame.
type Result struct {
	// ROI is the band of the rotated frame around the horizon.
	ROI *image.NRGBA

	// Rotated is the frame after levelling the horizon.
	Rotated *image.NRGBA

	// Features is the smoothed feature map, 1 x W, before median filtering.
	Features *image.Gray

	// Denoised is Features after the median filter.
	Denoised *image.Gray

	// Detections is the binary detection map, 1 x W, values 0 or 255.
	Detections *image.Gray

	// Horizon is the horizon the frame was rectified against.
	Horizon Horizon

	// Band locates ROI inside Rotated.
	Band image.Rectangle

	// AngleDegrees is the rotation applied to level the horizon.
	AngleDegrees float64

	// Elapsed is the wall time spent in Analyze.
	Elapsed time.Duration
}

// Detector runs frames through the detection pipeline.
// Not safe for concurrent use; call Analyze from a single goroutine in
// capture order.
type Detector struct {
	logger      *slog.Logger
	estimator   HorizonEstimator
	extractor   FeatureExtractor
	smoother    TemporalSmoother
	thresholder Thresholder
	roiHeight   int
	state       SmootherState
	frames      int
}

// New builds a Detector from a validated configuration. If cfg is nil the
// default configuration is used; a nil logger discards output.
func New(cfg *config.Config, logger *slog.Logger) (*Detector, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	extractor, err := NewFeatureExtractor(cfg)
	if err != nil {
		return nil, err
	}

	return &Detector{
		logger: logger,
		estimator: &KMeansHorizon{
			SampleWidth:        cfg.Horizon.SampleWidth,
			MaxIterations:      cfg.Horizon.MaxIterations,
			MinContrast:        cfg.Horizon.MinContrast,
			MinClusterFraction: cfg.Horizon.MinClusterFraction,
			MinColumnFraction:  cfg.Horizon.MinColumnFraction,
		},
		extractor:   extractor,
		smoother:    TemporalSmoother{K: cfg.ComplementaryFilterK},
		thresholder: Thresholder{Window: cfg.MedianWindow, Margin: cfg.ThresholdMargin},
		roiHeight:   cfg.ROIHeight,
	}, nil
}

// ROIHeight returns the configured band height.
func (d *Detector) ROIHeight() int {
	return d.roiHeight
}

// EstimateHorizon runs the horizon estimator alone.
func (d *Detector) EstimateHorizon(frame image.Image) (Horizon, error) {
	return d.estimator.Estimate(frame)
}

// Analyze runs one frame through the pipeline.
//
// When horizon is nil the estimator locates it. When useHistory is false the
// temporal filter is skipped and the smoothing history is neither read nor
// written. A non-positive roiHeight selects the configured height.
//
// ErrNoHorizonFound, ErrInvalidHorizon and ErrInvalidROI mean the frame was
// skipped; the smoothing history is left as it was.
func (d *Detector) Analyze(frame image.Image, roiHeight int, horizon *Horizon, useHistory bool) (*Result, error) {
	start := time.Now()
	if roiHeight <= 0 {
		roiHeight = d.roiHeight
	}

	var h Horizon
	if horizon != nil {
		h = *horizon
	} else {
		est, err := d.estimator.Estimate(frame)
		if err != nil {
			return nil, fmt.Errorf("estimate horizon: %w", err)
		}
		h = est
	}

	rect, err := Rectify(frame, h, roiHeight)
	if err != nil {
		return nil, fmt.Errorf("rectify: %w", err)
	}

	features := d.extractor.Extract(rect.ROI)
	if useHistory {
		features = d.smoother.Smooth(features, &d.state)
		d.frames++
	}
	denoised, binary := d.thresholder.Threshold(features)

	res := &Result{
		ROI:          rect.ROI,
		Rotated:      rect.Rotated,
		Features:     features,
		Denoised:     denoised,
		Detections:   binary,
		Horizon:      h,
		Band:         rect.Band,
		AngleDegrees: rect.AngleDegrees,
		Elapsed:      time.Since(start),
	}

	d.logger.Debug("frame analysed",
		"angle_deg", res.AngleDegrees,
		"band", res.Band.String(),
		"spans", len(Spans(binary)),
		"history", useHistory,
		"elapsed", res.Elapsed)
	return res, nil
}

// Reset clears the smoothing history so the next frame is treated as the
// first of a new run.
func (d *Detector) Reset() {
	d.state.Reset()
	d.frames = 0
	d.logger.Debug("detector reset")
}

// FramesSmoothed returns the number of frames folded into the history since
// the last reset.
func (d *Detector) FramesSmoothed() int {
	return d.frames
}

// History returns a copy of the stored smoothed map, or nil when empty.
func (d *Detector) History() *image.Gray {
	if d.state.Empty() {
		return nil
	}
	return d.state.Previous()
}
