// Package config holds the runtime configuration for the boat detector.
//
// Configuration is read from a JSON file whose keys use snake_case. Fields
// omitted from the file keep the values from DefaultConfig, so partial files
// are safe. Validate normalises out-of-range values and rejects settings the
// pipeline cannot run with.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Feature extractor names accepted by the feature_extractor key.
const (
	ExtractorGradient = "gradient"
	ExtractorDoG      = "dog"
)

// Column reductions accepted by the reduce keys.
const (
	ReduceMean = "mean"
	ReduceMax  = "max"
)

const maxConfigSize = 1 * 1024 * 1024

// Config holds runtime configuration for the detection pipeline.
type Config struct {
	// VideoSource is a directory of frames, a video file or a capture device index.
	VideoSource string `json:"video_source"`

	// FrameWidth and FrameHeight are the size every frame is resized to before
	// analysis. Zero keeps the source size.
	FrameWidth  int `json:"frame_width"`
	FrameHeight int `json:"frame_height"`

	// ROIHeight is the height in pixels of the band cut around the horizon.
	ROIHeight int `json:"roi_height"`

	// ComplementaryFilterK weights the previous frame's feature map, 0..1.
	ComplementaryFilterK float64 `json:"complementary_filter_k"`

	// FeatureExtractor selects "gradient" or "dog".
	FeatureExtractor string `json:"feature_extractor"`

	// ThresholdMargin is added to the row mean to form the binarisation cutoff.
	ThresholdMargin float64 `json:"threshold_margin"`

	// MedianWindow is the odd width of the 1-D median filter.
	MedianWindow int `json:"median_window"`

	Horizon  HorizonConfig  `json:"horizon"`
	Gradient GradientConfig `json:"gradient"`
	DoG      DoGConfig      `json:"dog"`
}

// HorizonConfig tunes the k-means horizon estimator.
type HorizonConfig struct {
	SampleWidth        int     `json:"sample_width"`
	MaxIterations      int     `json:"max_iterations"`
	MinContrast        float64 `json:"min_contrast"`
	MinClusterFraction float64 `json:"min_cluster_fraction"`
	MinColumnFraction  float64 `json:"min_column_fraction"`
}

// GradientConfig tunes the gradient feature extractor.
type GradientConfig struct {
	Reduce string `json:"reduce"`
}

// DoGConfig tunes the difference-of-Gaussians feature extractor.
type DoGConfig struct {
	SigmaSmall float64 `json:"sigma_small"`
	SigmaLarge float64 `json:"sigma_large"`
	Gain       float64 `json:"gain"`
	Reduce     string  `json:"reduce"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		FrameWidth:           1200,
		FrameHeight:          800,
		ROIHeight:            10,
		ComplementaryFilterK: 0.5,
		FeatureExtractor:     ExtractorGradient,
		ThresholdMargin:      30,
		MedianWindow:         5,
		Horizon: HorizonConfig{
			SampleWidth:        160,
			MaxIterations:      20,
			MinContrast:        0.05,
			MinClusterFraction: 0.02,
			MinColumnFraction:  0.5,
		},
		Gradient: GradientConfig{
			Reduce: ReduceMean,
		},
		DoG: DoGConfig{
			SigmaSmall: 1.0,
			SigmaLarge: 3.0,
			Gain:       4.0,
			Reduce:     ReduceMax,
		},
	}
}

// Validate clamps soft settings to safe ranges and returns an error for
// settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.ROIHeight <= 0 {
		return fmt.Errorf("roi_height must be positive, got %d", c.ROIHeight)
	}
	if c.ComplementaryFilterK < 0 || c.ComplementaryFilterK > 1 {
		return fmt.Errorf("complementary_filter_k must be within [0,1], got %v", c.ComplementaryFilterK)
	}
	switch c.FeatureExtractor {
	case "":
		c.FeatureExtractor = ExtractorGradient
	case ExtractorGradient, ExtractorDoG:
	default:
		return fmt.Errorf("unknown feature_extractor %q", c.FeatureExtractor)
	}
	if c.FrameWidth < 0 || c.FrameHeight < 0 {
		return fmt.Errorf("frame size must not be negative, got %dx%d", c.FrameWidth, c.FrameHeight)
	}

	if c.MedianWindow < 1 {
		c.MedianWindow = 1
	}
	if c.MedianWindow%2 == 0 {
		c.MedianWindow++
	}

	if c.Horizon.SampleWidth <= 0 {
		c.Horizon.SampleWidth = 160
	}
	if c.Horizon.MaxIterations <= 0 {
		c.Horizon.MaxIterations = 20
	}
	if c.Horizon.MinContrast < 0 {
		c.Horizon.MinContrast = 0
	}
	if c.Horizon.MinClusterFraction < 0 || c.Horizon.MinClusterFraction >= 0.5 {
		c.Horizon.MinClusterFraction = 0.02
	}
	if c.Horizon.MinColumnFraction <= 0 || c.Horizon.MinColumnFraction > 1 {
		c.Horizon.MinColumnFraction = 0.5
	}

	if err := validReduce(&c.Gradient.Reduce, ReduceMean); err != nil {
		return fmt.Errorf("gradient: %w", err)
	}
	if err := validReduce(&c.DoG.Reduce, ReduceMax); err != nil {
		return fmt.Errorf("dog: %w", err)
	}
	if c.DoG.SigmaSmall <= 0 {
		c.DoG.SigmaSmall = 1.0
	}
	if c.DoG.SigmaLarge <= c.DoG.SigmaSmall {
		c.DoG.SigmaLarge = c.DoG.SigmaSmall * 3
	}
	if c.DoG.Gain <= 0 {
		c.DoG.Gain = 4.0
	}
	return nil
}

func validReduce(v *string, def string) error {
	switch *v {
	case "":
		*v = def
	case ReduceMean, ReduceMax:
	default:
		return fmt.Errorf("unknown reduce %q", *v)
	}
	return nil
}

// Load reads configuration from a JSON file. Fields missing from the file keep
// their defaults. The result is validated before it is returned.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to path as indented JSON.
func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
