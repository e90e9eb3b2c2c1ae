package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// DetectionTint is the default colour used to mark detected columns.
var DetectionTint = color.NRGBA{R: 255, G: 0, B: 0, A: 255}

// TintColumns blends tint into every pixel of band whose column is set in mask.
//
// mask is a single-row map as wide as img; a column counts as set when its
// value is non-zero. opacity is clamped to [0,1] and controls how much of the
// tint replaces the underlying pixel. Pixels outside band, or in unset
// columns, are copied unchanged.
func TintColumns(img image.Image, mask *image.Gray, band image.Rectangle, tint color.Color, opacity float64) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	tc := color.NRGBAModel.Convert(tint).(color.NRGBA)
	band = band.Intersect(dst.Bounds())
	mb := mask.Bounds()

	for x := band.Min.X; x < band.Max.X; x++ {
		if x >= mb.Dx() || mask.GrayAt(mb.Min.X+x, mb.Min.Y).Y == 0 {
			continue
		}
		for y := band.Min.Y; y < band.Max.Y; y++ {
			i := dst.PixOffset(x, y)
			dst.Pix[i] = mix(dst.Pix[i], tc.R, opacity)
			dst.Pix[i+1] = mix(dst.Pix[i+1], tc.G, opacity)
			dst.Pix[i+2] = mix(dst.Pix[i+2], tc.B, opacity)
		}
	}
	return dst
}

func mix(base, over uint8, opacity float64) uint8 {
	return uint8(float64(base)*(1-opacity) + float64(over)*opacity + 0.5)
}

// Strip stretches a map vertically to height rows so a single-row signal can be
// viewed as an image. Columns are kept as they are.
func Strip(m *image.Gray, height int) *image.NRGBA {
	if height < 1 {
		height = 1
	}
	return imaging.Resize(m, m.Bounds().Dx(), height, imaging.NearestNeighbor)
}

// SavePNG writes img to path, creating or truncating the file.
func SavePNG(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// stripHeight is how tall single-row maps are drawn in debug output.
const stripHeight = 24

// WriteDebugImages saves the debug views of one analysed frame into dir:
//
//	<prefix>_roi.png         the band cut around the horizon
//	<prefix>_overlay.png     the rotated frame with detected columns tinted in the band
//	<prefix>_features.png    the feature row stretched to a strip
//	<prefix>_detections.png  the detection row stretched to a strip
//
// dir is created if needed. The paths written are returned in that order.
func WriteDebugImages(dir, prefix string, rotated, roi image.Image, band image.Rectangle, features, detections *image.Gray) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create debug dir: %w", err)
	}

	views := []struct {
		suffix string
		img    image.Image
	}{
		{"roi", roi},
		{"overlay", TintColumns(rotated, detections, band, DetectionTint, 0.5)},
		{"features", Strip(features, stripHeight)},
		{"detections", Strip(detections, stripHeight)},
	}

	paths := make([]string, 0, len(views))
	for _, v := range views {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", prefix, v.suffix))
		if err := SavePNG(v.img, path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
