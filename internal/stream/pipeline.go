package stream

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/voclabs/call-insights/internal/events"
)

// Handler processes one consumed event. Implementations must isolate their
// own failures; a bad event must never stop the consumer loop.
type Handler interface {
	ProcessOne(ctx context.Context, env *events.Envelope)
}

// PipelineConfig bounds the stage wiring.
type PipelineConfig struct {
	BufferSize     int
	ProcessTimeout time.Duration
}

// Pipeline connects the consumer loop to a handler: one goroutine polls the
// stream, one drains deliveries through the handler. Cancellation stops the
// poll at its next idle point; the processing stage keeps draining what was
// already fetched so in-flight work can finish, bounded by the caller's wait
// on Run returning.
type Pipeline struct {
	consumer *Consumer
	handler  Handler
	config   PipelineConfig
	log      *zap.Logger
}

func NewPipeline(consumer *Consumer, handler Handler, config PipelineConfig, log *zap.Logger) *Pipeline {
	if config.BufferSize <= 0 {
		config.BufferSize = 100
	}
	if config.ProcessTimeout <= 0 {
		config.ProcessTimeout = 5 * time.Minute
	}
	return &Pipeline{
		consumer: consumer,
		handler:  handler,
		config:   config,
		log:      log,
	}
}

// Run blocks until the context is cancelled and both stages have stopped.
func (p *Pipeline) Run(ctx context.Context) error {
	deliveries := make(chan *Delivery, p.config.BufferSize)

	g := new(errgroup.Group)

	g.Go(func() error {
		p.consumer.Start(ctx, deliveries)
		return nil
	})

	g.Go(func() error {
		for delivery := range deliveries {
			// Detached from the shutdown signal so an in-flight event can
			// complete; bounded per event instead.
			procCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.config.ProcessTimeout)
			p.handler.ProcessOne(procCtx, delivery.Envelope)
			if err := delivery.Ack(procCtx); err != nil {
				p.log.Error("Failed to commit offset",
					zap.String("event_id", delivery.Envelope.EventID),
					zap.Error(err))
			}
			cancel()
		}
		p.log.Info("Processing stage drained")
		return nil
	})

	return g.Wait()
}
