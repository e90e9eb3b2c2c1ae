package detection

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/boat-detect/internal/config"
)

// FeatureExtractor reduces an ROI band to one score per column.
//
// Higher scores mean the column stands out more from the sea and sky around
// it. Implementations return a 1 x W map where W is the ROI width, with every
// value in [0,255], and look only at the pixels of the band they are given.
type FeatureExtractor interface {
	Extract(roi image.Image) *image.Gray
}

// Reduce collapses the rows of a band into one value per column.
type Reduce int

const (
	// ReduceMean averages each column.
	ReduceMean Reduce = iota
	// ReduceMax keeps the strongest response in each column.
	ReduceMax
)

// ParseReduce maps a configuration name to a Reduce.
func ParseReduce(name string) (Reduce, error) {
	switch name {
	case config.ReduceMean, "":
		return ReduceMean, nil
	case config.ReduceMax:
		return ReduceMax, nil
	}
	return ReduceMean, fmt.Errorf("unknown reduce %q", name)
}

// GradientExtractor scores columns by Sobel gradient magnitude.
type GradientExtractor struct {
	Reduce Reduce
}

// Extract implements FeatureExtractor.
func (g GradientExtractor) Extract(roi image.Image) *image.Gray {
	gray := effect.Grayscale(roi)
	// The convolution clamps negative responses to zero, so falling edges
	// only show up in the inverted band.
	edges := blend.Lighten(effect.Sobel(gray), effect.Sobel(effect.Invert(gray)))
	return collapseColumns(edges, g.Reduce, 1)
}

// DoGExtractor scores columns by the absolute difference of two Gaussian
// blurs of the band. Structure narrower than SigmaSmall (sensor noise) and
// wider than SigmaLarge (swell, sky gradients) is suppressed.
type DoGExtractor struct {
	SigmaSmall float64
	SigmaLarge float64
	Gain       float64
	Reduce     Reduce
}

// Extract implements FeatureExtractor.
func (d DoGExtractor) Extract(roi image.Image) *image.Gray {
	gray := effect.Grayscale(roi)
	fine := imaging.Blur(gray, d.SigmaSmall)
	coarse := imaging.Blur(gray, d.SigmaLarge)
	diff := blend.Difference(coarse, fine)
	gain := d.Gain
	if gain <= 0 {
		gain = 1
	}
	return collapseColumns(diff, d.Reduce, gain)
}

// NewFeatureExtractor builds the extractor selected by cfg.FeatureExtractor.
func NewFeatureExtractor(cfg *config.Config) (FeatureExtractor, error) {
	switch cfg.FeatureExtractor {
	case config.ExtractorGradient, "":
		r, err := ParseReduce(cfg.Gradient.Reduce)
		if err != nil {
			return nil, fmt.Errorf("gradient: %w", err)
		}
		return GradientExtractor{Reduce: r}, nil
	case config.ExtractorDoG:
		r, err := ParseReduce(cfg.DoG.Reduce)
		if err != nil {
			return nil, fmt.Errorf("dog: %w", err)
		}
		return DoGExtractor{
			SigmaSmall: cfg.DoG.SigmaSmall,
			SigmaLarge: cfg.DoG.SigmaLarge,
			Gain:       cfg.DoG.Gain,
			Reduce:     r,
		}, nil
	}
	return nil, fmt.Errorf("unknown feature extractor %q", cfg.FeatureExtractor)
}

// collapseColumns reduces the red channel of img column by column, scales the
// result by gain and clips it to [0,255]. The inputs here are grey, so red
// carries the intensity.
func collapseColumns(img *image.RGBA, reduce Reduce, gain float64) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, 1))
	if h == 0 {
		return out
	}

	for x := 0; x < w; x++ {
		var acc float64
		for y := 0; y < h; y++ {
			v := float64(img.Pix[y*img.Stride+x*4])
			if reduce == ReduceMax {
				acc = math.Max(acc, v)
			} else {
				acc += v
			}
		}
		if reduce == ReduceMean {
			acc /= float64(h)
		}
		out.Pix[x] = clipByte(acc * gain)
	}
	return out
}

// clipByte rounds v to the nearest integer and clamps it to [0,255].
func clipByte(v float64) uint8 {
	v = math.Round(v)
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
