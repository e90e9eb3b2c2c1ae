// Package sink delivers per-frame detection records to their consumers.
//
// A Record summarises one analysed frame: the horizon it was rectified
// against, the band that was examined and the column spans flagged as
// targets. Records are written as JSON lines to a stream or published to a
// Kafka topic.
package sink

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/boat-detect/internal/detection"
)

// ErrKafkaUnsupported is returned by NewKafkaSink in builds without cgo.
var ErrKafkaUnsupported = errors.New("kafka sink not available: rebuild with CGO_ENABLED=1")

// Band is the examined row range of the rectified frame, Top inclusive and
// Bottom exclusive.
type Band struct {
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

// Record is the outcome of one analysed frame.
type Record struct {
	RecordID   string    `json:"record_id"`
	RunID      string    `json:"run_id"`
	Sequence   int       `json:"sequence"`
	Frame      string    `json:"frame"`
	CapturedAt time.Time `json:"captured_at"`

	Horizon      detection.Horizon `json:"horizon"`
	AngleDegrees float64           `json:"angle_deg"`
	Band         Band              `json:"band"`
	Width        int               `json:"width"`

	Spans []detection.Span `json:"spans"`

	// Features is the smoothed feature row, present only when requested.
	Features []int `json:"features,omitempty"`

	ElapsedMS float64 `json:"elapsed_ms"`
}

// NewRecord builds a record for one frame's analysis result.
func NewRecord(runID string, seq int, frame string, capturedAt time.Time, res *detection.Result, withFeatures bool) *Record {
	r := &Record{
		RecordID:     uuid.NewString(),
		RunID:        runID,
		Sequence:     seq,
		Frame:        frame,
		CapturedAt:   capturedAt,
		Horizon:      res.Horizon,
		AngleDegrees: res.AngleDegrees,
		Band:         Band{Top: res.Band.Min.Y, Bottom: res.Band.Max.Y},
		Width:        res.Detections.Bounds().Dx(),
		Spans:        detection.Spans(res.Detections),
		ElapsedMS:    float64(res.Elapsed.Microseconds()) / 1000,
	}
	if r.Spans == nil {
		r.Spans = []detection.Span{}
	}
	if withFeatures {
		r.Features = rowInts(res.Features)
	}
	return r
}

// ToJSON serializes the record.
func (r *Record) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FromJSON parses a record.
func FromJSON(data []byte) (*Record, error) {
	var r Record
	err := json.Unmarshal(data, &r)
	return &r, err
}

// Sink consumes detection records.
type Sink interface {
	Write(ctx context.Context, r *Record) error
	Close() error
}

func rowInts(m *image.Gray) []int {
	w := m.Bounds().Dx()
	out := make([]int, w)
	for x := 0; x < w; x++ {
		out[x] = int(m.Pix[x])
	}
	return out
}
