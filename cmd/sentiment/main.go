package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/voclabs/call-insights/internal/config"
	"github.com/voclabs/call-insights/internal/health"
	"github.com/voclabs/call-insights/internal/logger"
	"github.com/voclabs/call-insights/internal/metrics"
	"github.com/voclabs/call-insights/internal/sentiment"
	"github.com/voclabs/call-insights/internal/stream"
)

const (
	serviceName    = "sentiment-service"
	serviceVersion = "1.0.0"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Service.Environment, serviceName)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		if err := log.Sync(); err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting sentiment service",
		zap.String("environment", cfg.Service.Environment))

	ctx := context.Background()

	m, registry := metrics.New()
	state := health.NewState(serviceName, serviceVersion)

	// Operational endpoints: liveness, readiness, metrics.
	go func() {
		addr := ":" + cfg.Service.HTTPPort
		log.Info("Health server starting", zap.String("address", addr))
		if err := http.ListenAndServe(addr, health.NewHandler(state, registry)); err != nil {
			log.Error("Health server error", zap.Error(err))
		}
	}()

	band := sentiment.Band{Low: cfg.Sentiment.NeutralLow, High: cfg.Sentiment.NeutralHigh}

	primary := sentiment.NewRemoteEngine(
		cfg.Sentiment.ModelServerURL,
		cfg.Sentiment.ModelName,
		band,
		time.Duration(cfg.Sentiment.RequestTimeoutSec)*time.Second)

	analyzer := sentiment.NewAnalyzer(primary, sentiment.NewLexiconEngine(), log)
	if err := analyzer.Init(ctx); err != nil {
		log.Error("Failed to initialize analysis engines", zap.Error(err))
	}
	// The fallback keeps the service functional even when the primary engine
	// failed to load, so the model is considered loaded either way; the
	// degradation is visible in event metadata.
	state.SetModelLoaded(true)
	log.Info("Analysis engine ready",
		zap.String("model", analyzer.ModelName()),
		zap.Bool("used_fallback", analyzer.UsedFallback()))

	reader := stream.NewReader(cfg.Kafka.Brokers, cfg.Sentiment.InputTopic, cfg.Sentiment.ConsumerGroup, cfg.Kafka.PollTimeout())
	writer := stream.NewWriter(cfg.Kafka.Brokers, cfg.Sentiment.OutputTopic, cfg.Kafka.PublishAckTimeout())

	consumer := stream.NewConsumer(reader, stream.ConsumerConfig{
		PollTimeout:   cfg.Kafka.PollTimeout(),
		RetryMinDelay: cfg.Kafka.RetryMinDelay(),
		RetryMaxDelay: cfg.Kafka.RetryMaxDelay(),
	}, log)
	publisher := stream.NewPublisher(writer, cfg.Sentiment.OutputTopic, cfg.Kafka.PublishAckTimeout(), log)
	state.SetStreamReady(true, true)

	processor := sentiment.NewProcessor(analyzer, publisher, sentiment.ProcessorConfig{
		ServiceName:         serviceName,
		Band:                band,
		EscalationThreshold: cfg.Sentiment.EscalationThreshold,
	}, m, log)

	pipeline := stream.NewPipeline(consumer, processor, stream.PipelineConfig{
		BufferSize: cfg.Kafka.ChannelBufferSize,
	}, log)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := pipeline.Run(runCtx); err != nil {
			log.Error("Pipeline error", zap.Error(err))
		}
	}()

	log.Info("Sentiment service is ready",
		zap.String("input_topic", cfg.Sentiment.InputTopic),
		zap.String("output_topic", cfg.Sentiment.OutputTopic))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down sentiment service")
	cancel()

	select {
	case <-done:
	case <-time.After(cfg.Service.DrainTimeout()):
		log.Warn("Drain timeout reached, abandoning in-flight work")
	}

	state.SetStreamReady(false, false)
	if err := publisher.Close(); err != nil {
		log.Error("Failed to close publisher", zap.Error(err))
	}
	if err := consumer.Close(); err != nil {
		log.Error("Failed to close consumer", zap.Error(err))
	}

	log.Info("Sentiment service shutdown complete")
}
