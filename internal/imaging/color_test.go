package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// createInMemoryImage builds a uniform RGBA image.
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestNewLabGrid_Dimensions(t *testing.T) {
	img := createInMemoryImage(400, 100, color.White)

	tests := []struct {
		name     string
		maxWidth int
		wantW    int
		wantH    int
	}{
		{"shrunk", 100, 100, 25},
		{"full resolution", 0, 400, 100},
		{"wider limit", 1000, 400, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewLabGrid(img, tt.maxWidth)
			if g.Width != tt.wantW || g.Height != tt.wantH {
				t.Errorf("size: got %dx%d, want %dx%d", g.Width, g.Height, tt.wantW, tt.wantH)
			}
			if len(g.Lab) != g.Width*g.Height {
				t.Errorf("len(Lab) = %d, want %d", len(g.Lab), g.Width*g.Height)
			}
		})
	}
}

func TestNewLabGrid_KnownColors(t *testing.T) {
	tests := []struct {
		name  string
		c     color.Color
		wantL float64
	}{
		{"white", color.White, 1.0},
		{"black", color.Black, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewLabGrid(createInMemoryImage(4, 4, tt.c), 0)
			lab := g.At(2, 2)
			if math.Abs(lab[0]-tt.wantL) > 1e-3 {
				t.Errorf("L: got %v, want %v", lab[0], tt.wantL)
			}
			if math.Abs(lab[1]) > 1e-3 || math.Abs(lab[2]) > 1e-3 {
				t.Errorf("a,b: got %v,%v, want ~0", lab[1], lab[2])
			}
		})
	}
}

func TestLabDistance(t *testing.T) {
	white := [3]float64{1, 0, 0}
	black := [3]float64{0, 0, 0}
	if d := LabDistance(white, black); math.Abs(d-1) > 1e-12 {
		t.Errorf("white/black distance: got %v, want 1", d)
	}
	if d := LabDistance(white, white); d != 0 {
		t.Errorf("self distance: got %v, want 0", d)
	}
	if LabDistance([3]float64{0.5, 0.1, -0.2}, black) != LabDistance(black, [3]float64{0.5, 0.1, -0.2}) {
		t.Error("distance is not symmetric")
	}
}

func TestMixFraction(t *testing.T) {
	lab := func(r, g, b uint8) [3]float64 {
		l, a, bb := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}.Lab()
		return [3]float64{l, a, bb}
	}
	sky := lab(200, 225, 250)
	sea := lab(20, 50, 80)

	tests := []struct {
		name string
		p    [3]float64
		want float64
	}{
		{"pure sky", sky, 1},
		{"pure sea", sea, 0},
		{"half", lab(110, 138, 165), 0.5},
		{"quarter sky", lab(65, 94, 123), 0.25},
		{"brighter than sky", lab(255, 255, 255), 1},
		{"darker than sea", lab(0, 0, 0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MixFraction(tt.p, sky, sea); math.Abs(got-tt.want) > 0.01 {
				t.Errorf("MixFraction: got %.4f, want %.2f", got, tt.want)
			}
		})
	}

	if got := MixFraction(sky, sea, sea); got != 0.5 {
		t.Errorf("identical endpoints: got %v, want 0.5", got)
	}
}
