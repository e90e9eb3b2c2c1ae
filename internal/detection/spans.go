package detection

import "image"

// Span is a run of detected columns, Start inclusive and End exclusive.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Width returns the number of columns in the span.
func (s Span) Width() int {
	return s.End - s.Start
}

// Center returns the middle column of the span.
func (s Span) Center() float64 {
	return float64(s.Start+s.End) / 2
}

// Spans returns the runs of non-zero columns in the first row of a detection
// map, left to right.
func Spans(binary *image.Gray) []Span {
	b := binary.Bounds()
	if b.Dy() == 0 {
		return nil
	}
	row := binary.Pix[:b.Dx()]

	var spans []Span
	start := -1
	for x, v := range row {
		switch {
		case v != 0 && start < 0:
			start = x
		case v == 0 && start >= 0:
			spans = append(spans, Span{Start: start, End: x})
			start = -1
		}
	}
	if start >= 0 {
		spans = append(spans, Span{Start: start, End: len(row)})
	}
	return spans
}
