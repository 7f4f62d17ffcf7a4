package stream

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/voclabs/call-insights/internal/events"
)

// Delivery pairs a decoded envelope with the offset commit for its message.
type Delivery struct {
	Envelope *events.Envelope
	ack      func(context.Context) error
}

// Ack commits the underlying message's offset. Called after processing so
// delivery is at-least-once.
func (d *Delivery) Ack(ctx context.Context) error {
	if d.ack != nil {
		return d.ack(ctx)
	}
	return nil
}

// NewDelivery wraps an envelope with an ack callback. Exposed for tests and
// for the pipeline stage wiring.
func NewDelivery(env *events.Envelope, ack func(context.Context) error) *Delivery {
	return &Delivery{Envelope: env, ack: ack}
}

// ConsumerConfig bounds the poll loop.
type ConsumerConfig struct {
	PollTimeout   time.Duration
	RetryMinDelay time.Duration
	RetryMaxDelay time.Duration
}

// Consumer polls the input topic and emits decoded deliveries. Stream-level
// errors are retried with backoff and never escape the loop; a message that
// fails to decode is logged, committed and skipped without disturbing the
// rest of the stream.
type Consumer struct {
	fetcher Fetcher
	config  ConsumerConfig
	log     *zap.Logger
}

func NewConsumer(fetcher Fetcher, config ConsumerConfig, log *zap.Logger) *Consumer {
	if config.PollTimeout <= 0 {
		config.PollTimeout = time.Second
	}
	if config.RetryMinDelay <= 0 {
		config.RetryMinDelay = 50 * time.Millisecond
	}
	if config.RetryMaxDelay <= 0 {
		config.RetryMaxDelay = time.Second
	}
	return &Consumer{
		fetcher: fetcher,
		config:  config,
		log:     log,
	}
}

// Start runs the poll loop until the context is cancelled, sending deliveries
// to out. The output channel is closed on return.
func (c *Consumer) Start(ctx context.Context, out chan<- *Delivery) {
	defer close(out)

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = c.config.RetryMinDelay
	retry.MaxInterval = c.config.RetryMaxDelay
	retry.MaxElapsedTime = 0

	for {
		select {
		case <-ctx.Done():
			c.log.Info("Consumer shutting down")
			return
		default:
		}

		pollCtx, cancel := context.WithTimeout(ctx, c.config.PollTimeout)
		msg, err := c.fetcher.FetchMessage(pollCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("Consumer shutting down")
				return
			}
			if errors.Is(err, context.DeadlineExceeded) {
				// Idle poll, nothing buffered on the broker.
				retry.Reset()
				continue
			}

			wait := retry.NextBackOff()
			c.log.Error("Failed to fetch message",
				zap.Error(err),
				zap.Duration("retry_in", wait))
			select {
			case <-ctx.Done():
				c.log.Info("Consumer shutting down")
				return
			case <-time.After(wait):
			}
			continue
		}
		retry.Reset()

		delivery := c.decodeMessage(ctx, msg)
		if delivery == nil {
			continue
		}

		select {
		case <-ctx.Done():
			c.log.Info("Consumer shutting down while dispatching")
			return
		case out <- delivery:
		}
	}
}

// decodeMessage turns one raw message into a delivery. A malformed message
// can never decode on redelivery either, so it is committed and dropped.
func (c *Consumer) decodeMessage(ctx context.Context, msg kafka.Message) *Delivery {
	env, err := events.Decode(msg.Value)
	if err != nil {
		c.log.Warn("Skipping malformed message",
			zap.String("topic", msg.Topic),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.Error(err))
		if commitErr := c.fetcher.CommitMessages(ctx, msg); commitErr != nil {
			c.log.Error("Failed to commit malformed message",
				zap.Int64("offset", msg.Offset),
				zap.Error(commitErr))
		}
		return nil
	}

	c.log.Info("Received event",
		zap.String("event_type", env.EventType),
		zap.String("event_id", env.EventID),
		zap.String("aggregate_id", env.AggregateID),
		zap.String("correlation_id", env.CorrelationID))

	return NewDelivery(env, func(ackCtx context.Context) error {
		return c.fetcher.CommitMessages(ackCtx, msg)
	})
}

// Close releases the underlying reader connection.
func (c *Consumer) Close() error {
	return c.fetcher.Close()
}
