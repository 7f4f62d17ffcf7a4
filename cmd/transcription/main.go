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
	"github.com/voclabs/call-insights/internal/storage"
	"github.com/voclabs/call-insights/internal/stream"
	"github.com/voclabs/call-insights/internal/transcription"
)

const (
	serviceName    = "transcription-service"
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

	log.Info("Starting transcription service",
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

	store, err := storage.NewClient(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to create object store client", zap.Error(err))
	}
	if !store.HealthCheck(ctx) {
		log.Warn("Object store not reachable at startup")
	}

	engine := transcription.NewWhisperEngine(
		cfg.Transcription.ASRServerURL,
		cfg.Transcription.ModelSize,
		time.Duration(cfg.Transcription.RequestTimeoutSec)*time.Second)

	// A failed probe leaves the service in degraded readiness; transcription
	// is attempted per call, so the model server can come up later.
	if err := engine.Init(ctx); err != nil {
		log.Error("ASR engine not ready", zap.Error(err))
		state.SetModelLoaded(false)
	} else {
		state.SetModelLoaded(true)
	}

	reader := stream.NewReader(cfg.Kafka.Brokers, cfg.Transcription.InputTopic, cfg.Transcription.ConsumerGroup, cfg.Kafka.PollTimeout())
	writer := stream.NewWriter(cfg.Kafka.Brokers, cfg.Transcription.OutputTopic, cfg.Kafka.PublishAckTimeout())

	consumer := stream.NewConsumer(reader, stream.ConsumerConfig{
		PollTimeout:   cfg.Kafka.PollTimeout(),
		RetryMinDelay: cfg.Kafka.RetryMinDelay(),
		RetryMaxDelay: cfg.Kafka.RetryMaxDelay(),
	}, log)
	publisher := stream.NewPublisher(writer, cfg.Transcription.OutputTopic, cfg.Kafka.PublishAckTimeout(), log)
	state.SetStreamReady(true, true)

	processor := transcription.NewProcessor(store, engine, publisher, transcription.ProcessorConfig{
		ServiceName:    serviceName,
		PauseThreshold: cfg.Transcription.PauseThresholdSec,
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

	log.Info("Transcription service is ready",
		zap.String("input_topic", cfg.Transcription.InputTopic),
		zap.String("output_topic", cfg.Transcription.OutputTopic))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down transcription service")
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

	log.Info("Transcription service shutdown complete")
}
