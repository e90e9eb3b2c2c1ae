package detection

import (
	"fmt"

	"github.com/ironsheep/boat-detect/internal/imaging"
)

// cluster runs two-centroid k-means over the Lab grid and returns one label
// (0 or 1) per pixel in row-major order, along with the final centroids.
//
// Seeding: centroid 0 is the mean colour of the top row, centroid 1 the first
// pixel in scan order furthest from it. Lloyd iterations stop when no label
// changes or after MaxIterations passes.
func (k *KMeansHorizon) cluster(grid *imaging.LabGrid) ([]uint8, [2][3]float64, error) {
	n := len(grid.Lab)
	if n == 0 {
		return nil, [2][3]float64{}, fmt.Errorf("%w: empty frame", ErrNoHorizonFound)
	}

	var c [2][3]float64
	c[0] = meanLab(grid.Lab[:grid.Width])

	far := -1.0
	for _, p := range grid.Lab {
		if d := imaging.LabDistance(p, c[0]); d > far {
			far = d
			c[1] = p
		}
	}
	if far <= k.MinContrast {
		return nil, c, fmt.Errorf("%w: frame contrast %.4f below %.4f", ErrNoHorizonFound, far, k.MinContrast)
	}

	labels := make([]uint8, n)
	for i := range labels {
		labels[i] = 0xFF
	}

	iterations := k.MaxIterations
	if iterations < 1 {
		iterations = 1
	}

	var counts [2]int
	for iter := 0; iter < iterations; iter++ {
		changed := false
		var sums [2][3]float64
		counts = [2]int{}

		for i, p := range grid.Lab {
			var l uint8
			if imaging.LabDistance(p, c[1]) < imaging.LabDistance(p, c[0]) {
				l = 1
			}
			if labels[i] != l {
				labels[i] = l
				changed = true
			}
			counts[l]++
			for j := 0; j < 3; j++ {
				sums[l][j] += p[j]
			}
		}

		if counts[0] == 0 || counts[1] == 0 {
			return nil, c, fmt.Errorf("%w: empty cluster", ErrNoHorizonFound)
		}
		for l := 0; l < 2; l++ {
			for j := 0; j < 3; j++ {
				c[l][j] = sums[l][j] / float64(counts[l])
			}
		}
		if !changed {
			break
		}
	}

	if d := imaging.LabDistance(c[0], c[1]); d < k.MinContrast {
		return nil, c, fmt.Errorf("%w: cluster contrast %.4f below %.4f", ErrNoHorizonFound, d, k.MinContrast)
	}
	minCount := int(k.MinClusterFraction * float64(n))
	if counts[0] < minCount || counts[1] < minCount {
		return nil, c, fmt.Errorf("%w: cluster sizes %d/%d below %d", ErrNoHorizonFound, counts[0], counts[1], minCount)
	}
	return labels, c, nil
}

func meanLab(pts [][3]float64) [3]float64 {
	var m [3]float64
	for _, p := range pts {
		for j := 0; j < 3; j++ {
			m[j] += p[j]
		}
	}
	for j := 0; j < 3; j++ {
		m[j] /= float64(len(pts))
	}
	return m
}
