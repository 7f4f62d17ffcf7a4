package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/voclabs/call-insights/internal/events"
)

// Publisher serializes envelopes and sends them with at-least-once semantics:
// a publish waits for broker acknowledgment up to the ack timeout and reports
// the outcome as an error value.
type Publisher struct {
	writer     MessageWriter
	topic      string
	ackTimeout time.Duration
	log        *zap.Logger
}

func NewPublisher(writer MessageWriter, topic string, ackTimeout time.Duration, log *zap.Logger) *Publisher {
	if ackTimeout <= 0 {
		ackTimeout = 10 * time.Second
	}
	return &Publisher{
		writer:     writer,
		topic:      topic,
		ackTimeout: ackTimeout,
		log:        log,
	}
}

// Publish sends one envelope, keyed by aggregate ID.
func (p *Publisher) Publish(ctx context.Context, env *events.Envelope) error {
	data, err := events.Encode(env)
	if err != nil {
		p.log.Error("Failed to encode envelope",
			zap.String("event_id", env.EventID),
			zap.Error(err))
		return fmt.Errorf("encode envelope: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, p.ackTimeout)
	defer cancel()

	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(env.AggregateID),
		Value: data,
	})
	if err != nil {
		p.log.Error("Failed to publish event",
			zap.String("topic", p.topic),
			zap.String("event_type", env.EventType),
			zap.String("event_id", env.EventID),
			zap.String("aggregate_id", env.AggregateID),
			zap.Error(err))
		return fmt.Errorf("publish %s event: %w", env.EventType, err)
	}

	p.log.Info("Published event",
		zap.String("topic", p.topic),
		zap.String("event_type", env.EventType),
		zap.String("event_id", env.EventID),
		zap.String("aggregate_id", env.AggregateID),
		zap.String("correlation_id", env.CorrelationID))

	return nil
}

// Close flushes buffered messages and closes the producer connection.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
