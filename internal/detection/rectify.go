package detection

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/ironsheep/boat-detect/internal/imaging"
)

// Rectified is a frame rotated so its horizon is level, plus the band cut
// around the horizon.
type Rectified struct {
	// Rotated is the full frame after rotation, the same size as the input.
	Rotated *image.NRGBA

	// ROI is the band of Rotated around the horizon, full width.
	ROI *image.NRGBA

	// Band locates ROI inside Rotated.
	Band image.Rectangle

	// AngleDegrees is the counter-clockwise rotation that was applied.
	AngleDegrees float64

	// CenterRow is the horizon row in Rotated the band is centred on.
	CenterRow float64
}

// Rectify rotates frame about its centre by the horizon angle atan(DX/DY) so
// the horizon becomes level, then cuts a band of roiHeight rows centred on
// the rotated horizon's base point.
//
// The band is clamped to the frame and may come back shorter than roiHeight
// near the top or bottom edge. ErrInvalidROI is returned when nothing of the
// band is left. The input frame is not modified.
func Rectify(frame image.Image, h Horizon, roiHeight int) (*Rectified, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	if roiHeight <= 0 {
		return nil, fmt.Errorf("%w: roi height %d", ErrInvalidROI, roiHeight)
	}

	deg := h.AngleDegrees()
	rotated := imaging.RotateKeepSize(frame, deg, color.Black)

	b := rotated.Bounds()
	_, row := imaging.RotatePoint(h.Y0, h.X0, b.Dx(), b.Dy(), deg)

	roi, band, err := imaging.CropBand(rotated, row, roiHeight)
	if err != nil {
		if errors.Is(err, imaging.ErrEmptyBand) {
			return nil, fmt.Errorf("%w: band around row %.1f outside frame of height %d", ErrInvalidROI, row, b.Dy())
		}
		return nil, err
	}

	return &Rectified{
		Rotated:      rotated,
		ROI:          roi,
		Band:         band,
		AngleDegrees: deg,
		CenterRow:    row,
	}, nil
}
