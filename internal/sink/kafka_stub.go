//go:build !cgo
// +build !cgo

package sink

import (
	"context"
	"log/slog"

	"github.com/ironsheep/boat-detect/internal/config"
)

// KafkaSink is unavailable without cgo.
type KafkaSink struct{}

// NewKafkaSink is a stub used when cgo is disabled; librdkafka needs cgo.
func NewKafkaSink(cfg *config.KafkaConfig, logger *slog.Logger) (*KafkaSink, error) {
	return nil, ErrKafkaUnsupported
}

// Write implements Sink.
func (s *KafkaSink) Write(ctx context.Context, r *Record) error {
	return ErrKafkaUnsupported
}

// Metrics returns no counters.
func (s *KafkaSink) Metrics() map[string]int64 {
	return nil
}

// Close implements Sink.
func (s *KafkaSink) Close() error {
	return nil
}
