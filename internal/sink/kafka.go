//go:build cgo
// +build cgo

package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/ironsheep/boat-detect/internal/config"
)

// KafkaSink publishes records to a Kafka topic, keyed by run ID so a run's
// records stay ordered within one partition.
type KafkaSink struct {
	producer     *kafka.Producer
	topic        string
	deliveryChan chan kafka.Event
	logger       *slog.Logger

	sent   atomic.Int64
	acked  atomic.Int64
	failed atomic.Int64

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	maxRetries  int
	baseBackoff time.Duration
}

// NewKafkaSink connects a producer with the given settings.
func NewKafkaSink(cfg *config.KafkaConfig, logger *slog.Logger) (*KafkaSink, error) {
	cm := &kafka.ConfigMap{
		"bootstrap.servers":  cfg.BootstrapServers,
		"security.protocol":  cfg.SecurityProtocol,
		"compression.type":   cfg.CompressionType,
		"acks":               cfg.Acks,
		"linger.ms":          cfg.LingerMS,
		"enable.idempotence": true,
		"request.timeout.ms": 30000,
	}
	if cfg.SASLMechanism != "" {
		_ = cm.SetKey("sasl.mechanism", cfg.SASLMechanism)
		_ = cm.SetKey("sasl.username", cfg.SASLUsername)
		_ = cm.SetKey("sasl.password", cfg.SASLPassword)
	}

	p, err := kafka.NewProducer(cm)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &KafkaSink{
		producer:     p,
		topic:        cfg.Topic,
		deliveryChan: make(chan kafka.Event, 1000),
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
		maxRetries:   cfg.MaxRetries,
		baseBackoff:  100 * time.Millisecond,
	}

	s.wg.Add(1)
	go s.handleDeliveryReports()

	logger.Info("kafka sink ready", "topic", cfg.Topic, "servers", cfg.BootstrapServers)
	return s, nil
}

func (s *KafkaSink) handleDeliveryReports() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			s.drainDeliveryReports()
			return
		case e := <-s.deliveryChan:
			s.recordDelivery(e)
		}
	}
}

// drainDeliveryReports counts the reports already buffered when the sink
// shuts down. Flush has returned by then, so nothing more arrives.
func (s *KafkaSink) drainDeliveryReports() {
	for {
		select {
		case e := <-s.deliveryChan:
			s.recordDelivery(e)
		default:
			return
		}
	}
}

func (s *KafkaSink) recordDelivery(e kafka.Event) {
	m, ok := e.(*kafka.Message)
	if !ok {
		return
	}
	if m.TopicPartition.Error != nil {
		s.failed.Add(1)
		s.logger.Error("record delivery failed", "error", m.TopicPartition.Error)
		return
	}
	s.acked.Add(1)
}

// Write implements Sink. Retriable produce errors, such as a full local
// queue, are retried with exponential backoff.
func (s *KafkaSink) Write(ctx context.Context, r *Record) error {
	payload, err := r.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize record: %w", err)
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &s.topic, Partition: kafka.PartitionAny},
		Key:            []byte(r.RunID),
		Value:          payload,
		Headers: []kafka.Header{
			{Key: "record_id", Value: []byte(r.RecordID)},
			{Key: "sequence", Value: []byte(strconv.Itoa(r.Sequence))},
		},
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := s.baseBackoff * time.Duration(1<<uint(attempt-1))
			s.logger.Warn("retrying record", "attempt", attempt, "backoff", backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := s.producer.Produce(msg, s.deliveryChan)
		if err == nil {
			s.sent.Add(1)
			return nil
		}
		lastErr = err

		var kerr kafka.Error
		if errors.As(err, &kerr) && !kerr.IsRetriable() && kerr.Code() != kafka.ErrQueueFull {
			return fmt.Errorf("non-retriable error: %w", err)
		}
	}

	s.failed.Add(1)
	return fmt.Errorf("failed after %d retries: %w", s.maxRetries, lastErr)
}

// Metrics returns delivery counters.
func (s *KafkaSink) Metrics() map[string]int64 {
	return map[string]int64{
		"records_sent":   s.sent.Load(),
		"records_acked":  s.acked.Load(),
		"records_failed": s.failed.Load(),
	}
}

// Close flushes pending records for up to ten seconds and shuts the
// producer down.
func (s *KafkaSink) Close() error {
	remaining := s.producer.Flush(10000)
	if remaining > 0 {
		s.logger.Warn("records still queued after flush", "remaining", remaining)
	}
	s.cancel()
	s.wg.Wait()
	s.producer.Close()
	s.logger.Info("kafka sink closed",
		"sent", s.sent.Load(), "acked", s.acked.Load(), "failed", s.failed.Load())
	return nil
}
