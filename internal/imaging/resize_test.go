package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestFitFrame(t *testing.T) {
	img := createSplitImage(60, 40, 20)

	tests := []struct {
		name          string
		width, height int
		want          image.Rectangle
	}{
		{"upscale", 120, 80, image.Rect(0, 0, 120, 80)},
		{"downscale", 30, 20, image.Rect(0, 0, 30, 20)},
		{"keep size", 0, 0, image.Rect(0, 0, 60, 40)},
		{"same size", 60, 40, image.Rect(0, 0, 60, 40)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FitFrame(img, tt.width, tt.height)
			if out.Bounds() != tt.want {
				t.Errorf("bounds: got %v, want %v", out.Bounds(), tt.want)
			}
			// Far from the split the content must survive the resize.
			top := out.RGBAAt(out.Bounds().Dx()/2, 1)
			bottom := out.RGBAAt(out.Bounds().Dx()/2, out.Bounds().Dy()-2)
			if top.R < 200 || bottom.R > 50 {
				t.Errorf("content lost: top %v bottom %v", top, bottom)
			}
		})
	}
}

func TestFitFrame_OffsetSource(t *testing.T) {
	img := createSplitImage(60, 40, 20).SubImage(image.Rect(10, 30, 50, 40))
	out := FitFrame(img, 0, 0)
	if out.Bounds() != image.Rect(0, 0, 40, 10) {
		t.Fatalf("bounds: got %v", out.Bounds())
	}
	if got := out.RGBAAt(0, 0); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("pixel (0,0): got %v, want black", got)
	}
}
