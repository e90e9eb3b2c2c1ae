package imaging

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"
)

// ErrEmptyBand is returned when a band has no rows left after clamping.
var ErrEmptyBand = errors.New("band is empty after clamping")

// BandBounds computes the full-width row band of the given height centred on
// centerRow, clamped to [0, frameHeight).
//
// The band starts at floor(centerRow) - height/2 and spans height rows before
// clamping, so it may come back shorter than height at the top or bottom of the
// frame. ErrEmptyBand is returned when nothing of the band is inside the frame.
func BandBounds(frameWidth, frameHeight int, centerRow float64, height int) (image.Rectangle, error) {
	if height <= 0 || frameWidth <= 0 || frameHeight <= 0 {
		return image.Rectangle{}, ErrEmptyBand
	}

	top := floorInt(centerRow) - height/2
	bottom := top + height
	top = clamp(top, 0, frameHeight)
	bottom = clamp(bottom, 0, frameHeight)
	if bottom <= top {
		return image.Rectangle{}, ErrEmptyBand
	}
	return image.Rect(0, top, frameWidth, bottom), nil
}

// CropBand extracts a full-width horizontal band of height rows centred on
// centerRow. The returned rectangle is the band in frame coordinates.
func CropBand(img image.Image, centerRow float64, height int) (*image.NRGBA, image.Rectangle, error) {
	b := img.Bounds()
	band, err := BandBounds(b.Dx(), b.Dy(), centerRow, height)
	if err != nil {
		return nil, image.Rectangle{}, err
	}
	return imaging.Crop(img, band.Add(b.Min)), band, nil
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// floorInt rounds toward negative infinity, saturating far outside the int range.
func floorInt(f float64) int {
	const limit = 1 << 30
	switch {
	case f != f:
		return -limit
	case f > limit:
		return limit
	case f < -limit:
		return -limit
	}
	i := int(f)
	if float64(i) > f {
		i--
	}
	return i
}
