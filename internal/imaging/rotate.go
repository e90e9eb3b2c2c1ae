package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// RotateKeepSize rotates img counter-clockwise by degrees about its centre and
// crops the result back to the source dimensions.
//
// Pixels uncovered by the rotation are filled with fill. A zero angle returns a
// copy of the source. The returned image is anchored at (0,0).
func RotateKeepSize(img image.Image, degrees float64, fill color.Color) *image.NRGBA {
	b := img.Bounds()
	if degrees == 0 {
		return imaging.Clone(img)
	}
	rotated := imaging.Rotate(img, degrees, fill)
	return imaging.CropCenter(rotated, b.Dx(), b.Dy())
}

// RotatePoint maps a point of a width x height frame to where RotateKeepSize
// moves it for the same angle.
func RotatePoint(x, y float64, width, height int, degrees float64) (float64, float64) {
	cx := float64(width) / 2
	cy := float64(height) / 2
	rad := degrees * math.Pi / 180
	sin, cos := math.Sincos(rad)

	// Counter-clockwise on screen is clockwise in y-down coordinates.
	px, py := x-cx, y-cy
	rx := px*cos + py*sin
	ry := -px*sin + py*cos
	return cx + rx, cy + ry
}
