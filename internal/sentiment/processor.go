package sentiment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/voclabs/call-insights/internal/events"
	"github.com/voclabs/call-insights/internal/metrics"
)

// Publisher sends the derived event downstream.
type Publisher interface {
	Publish(ctx context.Context, env *events.Envelope) error
}

// TextAnalyzer is the engine capability the processor consumes.
type TextAnalyzer interface {
	Analyze(ctx context.Context, text string) Result
	ModelName() string
	UsedFallback() bool
}

// ProcessorConfig carries the analysis tuning knobs.
type ProcessorConfig struct {
	ServiceName         string
	Band                Band
	EscalationThreshold float64
}

// Processor owns the consume-analyze-aggregate-publish flow for one
// CallTranscribed event. All failures are contained here: a bad event is
// logged with its aggregate ID and dropped, never surfaced to the loop.
type Processor struct {
	analyzer  TextAnalyzer
	publisher Publisher
	config    ProcessorConfig
	metrics   *metrics.Metrics
	log       *zap.Logger
}

func NewProcessor(analyzer TextAnalyzer, publisher Publisher, config ProcessorConfig, m *metrics.Metrics, log *zap.Logger) *Processor {
	if config.EscalationThreshold == 0 {
		config.EscalationThreshold = DefaultEscalationThreshold
	}
	if config.Band == (Band{}) {
		config.Band = DefaultBand
	}
	return &Processor{
		analyzer:  analyzer,
		publisher: publisher,
		config:    config,
		metrics:   m,
		log:       log,
	}
}

// ProcessOne analyzes one transcribed call and publishes a SentimentAnalyzed
// event causally linked to the input.
func (p *Processor) ProcessOne(ctx context.Context, in *events.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("Panic while processing event",
				zap.String("aggregate_id", in.AggregateID),
				zap.Any("panic", r))
		}
	}()

	payload, ok := in.Payload.(*events.CallTranscribedPayload)
	if !ok {
		p.log.Warn("Ignoring event with unexpected payload",
			zap.String("event_type", in.EventType),
			zap.String("aggregate_id", in.AggregateID))
		return
	}

	p.metrics.MessagesConsumed.WithLabelValues(in.EventType).Inc()

	segments := payload.Transcription.Segments
	if len(segments) == 0 {
		p.log.Warn("No segments found for call, skipping",
			zap.String("aggregate_id", in.AggregateID))
		return
	}

	start := time.Now()

	p.log.Info("Analyzing segments",
		zap.String("aggregate_id", in.AggregateID),
		zap.Int("segment_count", len(segments)))

	analyzed := make([]events.AnalyzedSegment, 0, len(segments))
	for _, seg := range segments {
		result := p.analyzer.Analyze(ctx, seg.Text)
		analyzed = append(analyzed, events.AnalyzedSegment{
			Segment:    seg,
			Sentiment:  result.Sentiment,
			Score:      result.Score,
			Confidence: result.Confidence,
			Emotions:   result.Emotions,
		})
	}

	overallSentiment, overallScore := Aggregate(analyzed, p.config.Band)
	escalationDetected, escalationDetails := DetectEscalation(analyzed, p.config.EscalationThreshold)

	processingTime := time.Since(start)

	out := events.Derive(in, events.TypeSentimentAnalyzed, &events.SentimentAnalyzedPayload{
		CallID:             in.AggregateID,
		OverallSentiment:   overallSentiment,
		SentimentScore:     round3(overallScore),
		Segments:           analyzed,
		EscalationDetected: escalationDetected,
		EscalationDetails:  escalationDetails,
		ProcessingTimeMs:   round2(float64(processingTime.Microseconds()) / 1000),
	}, map[string]any{
		"service":      p.config.ServiceName,
		"modelName":    p.analyzer.ModelName(),
		"usedFallback": p.analyzer.UsedFallback(),
	})

	if err := p.publisher.Publish(ctx, out); err != nil {
		// Not retried here: recovery relies on upstream redelivery.
		p.log.Error("Failed to publish sentiment event",
			zap.String("aggregate_id", in.AggregateID),
			zap.Error(err))
		p.metrics.Analyses.WithLabelValues("publish_failed", overallSentiment).Inc()
		return
	}

	p.metrics.MessagesProduced.WithLabelValues(out.EventType).Inc()
	p.metrics.Analyses.WithLabelValues("success", overallSentiment).Inc()
	p.metrics.ProcessingDuration.Observe(processingTime.Seconds())
	p.metrics.SentimentScores.Observe(overallScore)

	p.log.Info("Processed call",
		zap.String("aggregate_id", in.AggregateID),
		zap.String("sentiment", overallSentiment),
		zap.Float64("score", round3(overallScore)),
		zap.Bool("escalation", escalationDetected),
		zap.Duration("took", processingTime))
}
