package detection

import (
	"image"
	"image/color"
	"math"
)

var (
	skyColor = color.RGBA{R: 200, G: 225, B: 250, A: 255}
	seaColor = color.RGBA{R: 20, G: 50, B: 80, A: 255}
)

// grayRow builds a 1 x len(vals) map.
func grayRow(vals ...uint8) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, len(vals), 1))
	copy(m.Pix, vals)
	return m
}

// grayRows stacks equally long rows into one map.
func grayRows(rows ...[]uint8) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, len(rows[0]), len(rows)))
	for y, r := range rows {
		copy(m.Pix[y*m.Stride:], r)
	}
	return m
}

// rowValues returns the first row of m as a slice.
func rowValues(m *image.Gray) []uint8 {
	return append([]uint8(nil), m.Pix[:m.Bounds().Dx()]...)
}

// tiltedFrame paints sky above the line row = centre + tan(deg)*(col - width/2)
// and sea below it.
func tiltedFrame(width, height int, deg float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	slope := math.Tan(deg * math.Pi / 180)
	cx, cy := float64(width)/2, float64(height)/2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			boundary := cy + slope*(float64(x)+0.5-cx)
			if float64(y)+0.5 < boundary {
				img.SetRGBA(x, y, skyColor)
			} else {
				img.SetRGBA(x, y, seaColor)
			}
		}
	}
	return img
}

// solidFrame returns a frame of a single colour.
func solidFrame(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// fillRect paints r in c.
func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}

// boatFrame is a level scene with the horizon at row height/2 and a narrow
// dark hull straddling it at columns [hullX, hullX+hullW).
func boatFrame(width, height, hullX, hullW int) *image.RGBA {
	img := solidFrame(width, height, color.White)
	fillRect(img, image.Rect(0, height/2, width, height), color.Gray{Y: 100})
	fillRect(img, image.Rect(hullX, height/2-6, hullX+hullW, height/2+6), color.Gray{Y: 20})
	return img
}
