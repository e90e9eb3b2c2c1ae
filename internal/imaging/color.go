package imaging

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// LabGrid holds the CIE-Lab value of every pixel of a frame in row-major order.
//
// L lies in [0,1]; a and b are roughly within [-1,1]. Euclidean distance
// between two entries is the CIE76 colour difference scaled by 1/100.
type LabGrid struct {
	Width  int
	Height int
	Lab    [][3]float64
}

// At returns the Lab triple at (x, y).
func (g *LabGrid) At(x, y int) [3]float64 {
	return g.Lab[y*g.Width+x]
}

// NewLabGrid converts img to Lab after shrinking it to at most maxWidth columns.
//
// Shrinking uses a box filter, which averages sea texture rather than picking
// individual wave crests. A maxWidth of zero or one at least as wide as the
// frame converts at full resolution. Alpha is ignored.
func NewLabGrid(img image.Image, maxWidth int) *LabGrid {
	var src *image.NRGBA
	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		src = imaging.Resize(img, maxWidth, 0, imaging.Box)
	} else {
		src = imaging.Clone(img)
	}

	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	grid := &LabGrid{
		Width:  w,
		Height: h,
		Lab:    make([][3]float64, w*h),
	}
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		for x := 0; x < w; x++ {
			c := colorful.Color{
				R: float64(row[x*4]) / 255.0,
				G: float64(row[x*4+1]) / 255.0,
				B: float64(row[x*4+2]) / 255.0,
			}
			l, a, b := c.Lab()
			grid.Lab[y*w+x] = [3]float64{l, a, b}
		}
	}
	return grid
}

// LabDistance is the CIE76 colour difference between two Lab triples, in the
// same units as colorful.Color.DistanceLab. Centroids averaged in Lab space can
// fall outside the sRGB gamut, so the distance is taken on the triples directly.
func LabDistance(p, q [3]float64) float64 {
	dl, da, db := p[0]-q[0], p[1]-q[1], p[2]-q[2]
	return math.Sqrt(dl*dl + da*da + db*db)
}

// MixFraction returns the share of colour a in p, taking p to be a blend of a
// and b. The blend is measured in sRGB, where box-filtered pixels mix
// linearly, and clamped to [0,1]. Identical a and b give 0.5.
func MixFraction(p, a, b [3]float64) float64 {
	pr, ar, br := labToRGB(p), labToRGB(a), labToRGB(b)
	var num, den float64
	for j := 0; j < 3; j++ {
		d := ar[j] - br[j]
		num += (pr[j] - br[j]) * d
		den += d * d
	}
	if den == 0 {
		return 0.5
	}
	return math.Max(0, math.Min(1, num/den))
}

func labToRGB(p [3]float64) [3]float64 {
	c := colorful.Lab(p[0], p[1], p[2])
	return [3]float64{c.R, c.G, c.B}
}
