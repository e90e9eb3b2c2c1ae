package imaging

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// FitFrame scales img to exactly width x height using bilinear interpolation.
//
// A zero width or height keeps the source size on both axes; the aspect ratio
// is not preserved otherwise. The result is always a fresh *image.RGBA
// anchored at (0,0), so callers may keep it after the source is reused.
func FitFrame(img image.Image, width, height int) *image.RGBA {
	src := img.Bounds()
	if width <= 0 || height <= 0 {
		width, height = src.Dx(), src.Dy()
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if width == src.Dx() && height == src.Dy() {
		xdraw.Copy(dst, image.Point{}, img, src, xdraw.Src, nil)
		return dst
	}
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, src, xdraw.Src, nil)
	return dst
}
