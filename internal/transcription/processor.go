package transcription

import (
	"context"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/voclabs/call-insights/internal/events"
	"github.com/voclabs/call-insights/internal/metrics"
)

// Publisher sends the derived event downstream.
type Publisher interface {
	Publish(ctx context.Context, env *events.Envelope) error
}

// Storage fetches call audio to a local temporary file.
type Storage interface {
	Fetch(ctx context.Context, locator string) (string, error)
}

// ProcessorConfig carries the transcription tuning knobs.
type ProcessorConfig struct {
	ServiceName    string
	PauseThreshold float64
}

// Processor owns the fetch-transcribe-diarize-publish flow for one
// CallReceived event, with the same failure containment as the sentiment
// side: nothing thrown here may reach the consumer loop.
type Processor struct {
	storage   Storage
	engine    Engine
	publisher Publisher
	config    ProcessorConfig
	metrics   *metrics.Metrics
	log       *zap.Logger
}

func NewProcessor(storage Storage, engine Engine, publisher Publisher, config ProcessorConfig, m *metrics.Metrics, log *zap.Logger) *Processor {
	if config.PauseThreshold == 0 {
		config.PauseThreshold = DefaultPauseThreshold
	}
	return &Processor{
		storage:   storage,
		engine:    engine,
		publisher: publisher,
		config:    config,
		metrics:   m,
		log:       log,
	}
}

// ProcessOne transcribes one received call and publishes a CallTranscribed
// event causally linked to the input.
func (p *Processor) ProcessOne(ctx context.Context, in *events.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("Panic while processing event",
				zap.String("aggregate_id", in.AggregateID),
				zap.Any("panic", r))
		}
	}()

	payload, ok := in.Payload.(*events.CallReceivedPayload)
	if !ok {
		p.log.Warn("Ignoring event with unexpected payload",
			zap.String("event_type", in.EventType),
			zap.String("aggregate_id", in.AggregateID))
		return
	}

	p.metrics.MessagesConsumed.WithLabelValues(in.EventType).Inc()

	if payload.AudioFileURL == "" {
		p.log.Warn("No audio file for call, skipping",
			zap.String("aggregate_id", in.AggregateID))
		return
	}

	start := time.Now()

	audioPath, err := p.storage.Fetch(ctx, payload.AudioFileURL)
	if err != nil {
		p.log.Error("Failed to fetch audio file",
			zap.String("aggregate_id", in.AggregateID),
			zap.String("audio_url", payload.AudioFileURL),
			zap.Error(err))
		p.metrics.Analyses.WithLabelValues("fetch_failed", "").Inc()
		return
	}
	defer func() {
		if err := os.Remove(audioPath); err != nil {
			p.log.Warn("Failed to remove temporary audio file",
				zap.String("path", audioPath),
				zap.Error(err))
		}
	}()

	raw, err := p.engine.Transcribe(ctx, audioPath)
	if err != nil {
		p.log.Error("Failed to transcribe audio",
			zap.String("aggregate_id", in.AggregateID),
			zap.Error(err))
		p.metrics.Analyses.WithLabelValues("transcribe_failed", "").Inc()
		return
	}

	diarized := Diarize(raw.Segments, p.config.PauseThreshold)
	confidence := BlendConfidence(raw.Segments)

	processingTime := time.Since(start)

	out := events.Derive(in, events.TypeCallTranscribed, &events.CallTranscribedPayload{
		CallID: payload.CallID,
		Transcription: events.Transcription{
			FullText:   strings.TrimSpace(raw.Text),
			Segments:   diarized,
			Language:   raw.Language,
			Confidence: confidence,
		},
	}, map[string]any{
		"service":   p.config.ServiceName,
		"modelName": p.engine.Name(),
	})

	if err := p.publisher.Publish(ctx, out); err != nil {
		// Not retried here: recovery relies on upstream redelivery.
		p.log.Error("Failed to publish transcription event",
			zap.String("aggregate_id", in.AggregateID),
			zap.Error(err))
		p.metrics.Analyses.WithLabelValues("publish_failed", "").Inc()
		return
	}

	p.metrics.MessagesProduced.WithLabelValues(out.EventType).Inc()
	p.metrics.Analyses.WithLabelValues("success", "").Inc()
	p.metrics.ProcessingDuration.Observe(processingTime.Seconds())

	p.log.Info("Transcribed call",
		zap.String("aggregate_id", in.AggregateID),
		zap.String("language", raw.Language),
		zap.Int("segment_count", len(diarized)),
		zap.Float64("confidence", confidence),
		zap.Duration("took", processingTime))
}
