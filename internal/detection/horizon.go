package detection

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/boat-detect/internal/imaging"
)

// Horizon is a directed line through a frame in (row, column) order.
type Horizon struct {
	DX float64 `json:"dx"` // Row component of the direction
	DY float64 `json:"dy"` // Column component of the direction
	X0 float64 `json:"x0"` // Row of the base point
	Y0 float64 `json:"y0"` // Column of the base point
}

// Level returns a level horizon at the given row, based at column col.
func Level(row, col float64) Horizon {
	return Horizon{DX: 0, DY: 1, X0: row, Y0: col}
}

// Validate reports ErrInvalidHorizon for a zero or non-finite direction.
func (h Horizon) Validate() error {
	if h.DX == 0 && h.DY == 0 {
		return ErrInvalidHorizon
	}
	for _, v := range []float64{h.DX, h.DY, h.X0, h.Y0} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite component", ErrInvalidHorizon)
		}
	}
	return nil
}

// Angle returns atan(DX/DY) in radians. It is zero for a level horizon and
// positive when the horizon falls toward the right of the frame.
func (h Horizon) Angle() float64 {
	return math.Atan(h.DX / h.DY)
}

// AngleDegrees returns Angle in degrees.
func (h Horizon) AngleDegrees() float64 {
	return h.Angle() * 180 / math.Pi
}

// RowAt returns the row the horizon crosses at column col. A vertical
// horizon returns X0.
func (h Horizon) RowAt(col float64) float64 {
	if h.DY == 0 {
		return h.X0
	}
	return h.X0 + (col-h.Y0)*h.DX/h.DY
}

// HorizonEstimator locates the horizon in a frame.
type HorizonEstimator interface {
	Estimate(frame image.Image) (Horizon, error)
}

// KMeansHorizon estimates the horizon by splitting pixels into two colour
// clusters and fitting a line through the per-column boundary between them.
//
// Given the same frame and parameters the result is always the same: the
// centroids are seeded from the frame content, not at random.
type KMeansHorizon struct {
	// SampleWidth is the width the frame is shrunk to before clustering.
	SampleWidth int

	// MaxIterations bounds the number of k-means refinement passes.
	MaxIterations int

	// MinContrast is the smallest Lab distance between the two centroids that
	// still counts as a sky/sea split.
	MinContrast float64

	// MinClusterFraction is the smallest share of pixels either cluster may hold.
	MinClusterFraction float64

	// MinColumnFraction is the share of columns that must show a split.
	MinColumnFraction float64
}

// NewKMeansHorizon returns an estimator with the default tuning.
func NewKMeansHorizon() *KMeansHorizon {
	return &KMeansHorizon{
		SampleWidth:        160,
		MaxIterations:      20,
		MinContrast:        0.05,
		MinClusterFraction: 0.02,
		MinColumnFraction:  0.5,
	}
}

// Estimate returns the horizon of frame in full-resolution coordinates.
//
// ErrNoHorizonFound is returned when the frame is too uniform to cluster, one
// cluster is nearly empty, too few columns show a sky-over-sea split, or the
// fitted line is not finite.
func (k *KMeansHorizon) Estimate(frame image.Image) (Horizon, error) {
	b := frame.Bounds()
	if b.Dx() < 2 || b.Dy() < 2 {
		return Horizon{}, fmt.Errorf("%w: frame %dx%d too small", ErrNoHorizonFound, b.Dx(), b.Dy())
	}

	grid := imaging.NewLabGrid(frame, k.SampleWidth)
	labels, centroids, err := k.cluster(grid)
	if err != nil {
		return Horizon{}, err
	}

	sky := skyLabel(labels, grid.Width)
	skyLab, seaLab := centroids[sky], centroids[1-sky]
	scaleX := float64(b.Dx()) / float64(grid.Width)
	scaleY := float64(b.Dy()) / float64(grid.Height)

	cols := make([]float64, 0, grid.Width)
	rows := make([]float64, 0, grid.Width)
	for x := 0; x < grid.Width; x++ {
		split, ok := columnSplit(labels, grid.Width, grid.Height, x, sky)
		if !ok {
			continue
		}
		cols = append(cols, (float64(x)+0.5)*scaleX)
		rows = append(rows, boundaryRow(grid, x, split, skyLab, seaLab)*scaleY)
	}

	minCols := int(math.Ceil(k.MinColumnFraction * float64(grid.Width)))
	if minCols < 2 {
		minCols = 2
	}
	if len(cols) < minCols {
		return Horizon{}, fmt.Errorf("%w: only %d of %d columns split", ErrNoHorizonFound, len(cols), grid.Width)
	}

	alpha, beta := fitBoundary(cols, rows, minCols)
	if math.IsNaN(alpha) || math.IsNaN(beta) || math.IsInf(alpha, 0) || math.IsInf(beta, 0) {
		return Horizon{}, fmt.Errorf("%w: degenerate line fit", ErrNoHorizonFound)
	}

	norm := math.Hypot(beta, 1)
	center := float64(b.Dx()) / 2
	return Horizon{
		DX: beta / norm,
		DY: 1 / norm,
		X0: alpha + beta*center,
		Y0: center,
	}, nil
}

// boundaryRow refines a column split to a fractional grid row. Shrinking the
// frame mixes sky and sea in the cells either side of the split, and their
// sky fractions add up to how far below row split-1 the boundary lies.
func boundaryRow(grid *imaging.LabGrid, x, split int, sky, sea [3]float64) float64 {
	above := imaging.MixFraction(grid.At(x, split-1), sky, sea)
	below := imaging.MixFraction(grid.At(x, split), sky, sea)
	return float64(split-1) + above + below
}

// fitBoundary regresses row on column. Points further than two standard
// deviations from the first fit are dropped and the line refitted, as long as
// at least minPoints remain.
func fitBoundary(cols, rows []float64, minPoints int) (alpha, beta float64) {
	alpha, beta = stat.LinearRegression(cols, rows, nil, false)

	residuals := make([]float64, len(cols))
	for i := range cols {
		residuals[i] = rows[i] - (alpha + beta*cols[i])
	}
	limit := 2*stat.StdDev(residuals, nil) + 1

	keptCols := make([]float64, 0, len(cols))
	keptRows := make([]float64, 0, len(rows))
	for i, r := range residuals {
		if math.Abs(r) <= limit {
			keptCols = append(keptCols, cols[i])
			keptRows = append(keptRows, rows[i])
		}
	}
	if len(keptCols) == len(cols) || len(keptCols) < minPoints {
		return alpha, beta
	}
	return stat.LinearRegression(keptCols, keptRows, nil, false)
}

// skyLabel returns the label most common in the top row.
func skyLabel(labels []uint8, width int) uint8 {
	ones := 0
	for x := 0; x < width; x++ {
		ones += int(labels[x])
	}
	if ones*2 > width {
		return 1
	}
	return 0
}

// columnSplit finds the row r that best separates sky above from sea below
// in column x, minimising sea pixels above r plus sky pixels at or below r.
// It reports false when the best split leaves the column all sky or all sea.
func columnSplit(labels []uint8, width, height, x int, sky uint8) (int, bool) {
	skyBelow := 0
	for y := 0; y < height; y++ {
		if labels[y*width+x] == sky {
			skyBelow++
		}
	}

	// Split at r = 0: everything is "below", so every sky pixel is an error.
	best, bestErr := 0, skyBelow
	seaAbove := 0
	for r := 1; r <= height; r++ {
		if labels[(r-1)*width+x] == sky {
			skyBelow--
		} else {
			seaAbove++
		}
		if e := seaAbove + skyBelow; e < bestErr {
			best, bestErr = r, e
		}
	}
	if best == 0 || best == height {
		return 0, false
	}
	return best, true
}
