package stream

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// Fetcher is the slice of kafka.Reader the consumer loop depends on.
type Fetcher interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MessageWriter is the slice of kafka.Writer the publisher depends on.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewReader builds a consumer-group reader for one input topic. Partition
// assignment and rebalancing are the broker's concern; within a partition the
// reader delivers messages in order.
func NewReader(brokers []string, topic, group string, pollTimeout time.Duration) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     group,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     pollTimeout,
		StartOffset: kafka.FirstOffset,
	})
}

// NewWriter builds a producer for one output topic. RequireAll makes a write
// block until the broker acknowledges the message on all replicas, bounded by
// the write timeout; messages are keyed by aggregate ID so one call's events
// stay on one partition.
func NewWriter(brokers []string, topic string, ackTimeout time.Duration) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: ackTimeout,
		MaxAttempts:  3,
	}
}
