package sink

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// JSONLSink writes one JSON document per line.
type JSONLSink struct {
	mu sync.Mutex
	w  io.Writer
	n  int
}

// NewJSONLSink returns a sink writing to w. Closing the sink does not close w.
func NewJSONLSink(w io.Writer) *JSONLSink {
	return &JSONLSink{w: w}
}

// Write implements Sink.
func (s *JSONLSink) Write(ctx context.Context, r *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := r.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	s.n++
	return nil
}

// Written returns how many records have been written.
func (s *JSONLSink) Written() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

// Close implements Sink.
func (s *JSONLSink) Close() error {
	return nil
}
