package detection

import (
	"image"
	"math"
)

// SmootherState holds the smoothed feature map of the previous frame.
//
// The zero value is an empty history. A SmootherState must be owned by one
// pipeline and is not safe for concurrent use.
type SmootherState struct {
	prev *image.Gray
}

// Empty reports whether no frame has been smoothed since the last reset.
func (s *SmootherState) Empty() bool {
	return s.prev == nil
}

// Previous returns a copy of the stored map, or nil when the history is empty.
func (s *SmootherState) Previous() *image.Gray {
	if s.prev == nil {
		return nil
	}
	return cloneGray(s.prev)
}

// Reset clears the history so the next frame is treated as the first.
func (s *SmootherState) Reset() {
	s.prev = nil
}

// TemporalSmoother blends each feature map with the previous smoothed map:
//
//	smoothed = K*previous + (1-K)*current
//
// Results are rounded to the nearest integer and clamped to [0,255]. The
// smoothed map, not the raw input, is stored as the next history, so the
// filter decays exponentially over past frames.
type TemporalSmoother struct {
	K float64
}

// Smooth returns the smoothed map and stores a copy of it in state.
//
// With an empty history, or one whose shape differs from current, the result
// is a copy of current. current is never modified.
func (t TemporalSmoother) Smooth(current *image.Gray, state *SmootherState) *image.Gray {
	out := cloneGray(current)
	if !state.Empty() && state.prev.Bounds().Size() == current.Bounds().Size() {
		prev := state.prev
		k := math.Min(math.Max(t.K, 0), 1)
		w, h := out.Bounds().Dx(), out.Bounds().Dy()
		for y := 0; y < h; y++ {
			po := prev.Pix[y*prev.Stride : y*prev.Stride+w]
			oo := out.Pix[y*out.Stride : y*out.Stride+w]
			for x := range oo {
				oo[x] = clipByte(k*float64(po[x]) + (1-k)*float64(oo[x]))
			}
		}
	}
	state.prev = cloneGray(out)
	return out
}

// cloneGray copies m into a new image anchored at (0,0).
func cloneGray(m *image.Gray) *image.Gray {
	b := m.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], m.Pix[y*m.Stride:y*m.Stride+b.Dx()])
	}
	return out
}
