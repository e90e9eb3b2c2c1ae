package detection

import (
	"bytes"
	"image"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Thresholder denoises a feature map and turns it into a detection map.
//
// Each row is handled on its own, so a stack of per-frame rows from an
// offline run is thresholded exactly as each row would be live.
type Thresholder struct {
	// Window is the odd width of the median filter. Values below 1 act as 1;
	// even values are widened by one.
	Window int

	// Margin is added to the row mean to form the cutoff.
	Margin float64
}

// Threshold median-filters m and binarises the result. It returns the
// denoised map and a detection map of the same shape holding only 0 and 255.
//
// The median filter is repeated until the map stops changing, so the
// denoised map is a root of the filter. Binarising a root gives another
// root, and with a non-negative margin thresholding the binary map again
// returns it unchanged.
func (t Thresholder) Threshold(m *image.Gray) (denoised, binary *image.Gray) {
	denoised = MedianRoot(m, t.Window)
	return denoised, Binarize(denoised, t.Margin)
}

// MedianRoot applies MedianFilter until the output no longer changes. A 1-D
// median converges within a number of passes bounded by the row width.
func MedianRoot(m *image.Gray, window int) *image.Gray {
	out := MedianFilter(m, window)
	for pass := 0; pass < m.Bounds().Dx(); pass++ {
		next := MedianFilter(out, window)
		if bytes.Equal(next.Pix, out.Pix) {
			break
		}
		out = next
	}
	return out
}

// MedianFilter applies a 1-D median of the given window along each row of m.
// Columns beyond the row ends repeat the edge value.
func MedianFilter(m *image.Gray, window int) *image.Gray {
	if window < 1 {
		window = 1
	}
	if window%2 == 0 {
		window++
	}

	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	half := window / 2
	buf := make([]float64, window)

	for y := 0; y < h; y++ {
		row := m.Pix[y*m.Stride : y*m.Stride+w]
		dst := out.Pix[y*out.Stride : y*out.Stride+w]
		for x := 0; x < w; x++ {
			for i := -half; i <= half; i++ {
				buf[i+half] = float64(row[clampIndex(x+i, w)])
			}
			sort.Float64s(buf)
			dst[x] = uint8(stat.Quantile(0.5, stat.Empirical, buf, nil))
		}
	}
	return out
}

// Binarize marks every value strictly above its row's mean + margin as 255
// and everything else as 0.
//
// A row with no columns, or whose values are all equal, has no meaningful
// cutoff and comes back all zero.
func Binarize(m *image.Gray, margin float64) *image.Gray {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 {
		return out
	}

	vals := make([]float64, w)
	for y := 0; y < h; y++ {
		row := m.Pix[y*m.Stride : y*m.Stride+w]
		if uniform(row) {
			continue
		}
		for x, v := range row {
			vals[x] = float64(v)
		}
		cutoff := stat.Mean(vals, nil) + margin

		dst := out.Pix[y*out.Stride : y*out.Stride+w]
		for x, v := range row {
			if float64(v) > cutoff {
				dst[x] = 255
			}
		}
	}
	return out
}

func uniform(row []uint8) bool {
	for _, v := range row[1:] {
		if v != row[0] {
			return false
		}
	}
	return true
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
