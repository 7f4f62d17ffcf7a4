package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Service       Service
	Kafka         Kafka
	Storage       Storage
	Sentiment     Sentiment
	Transcription Transcription
}

type Service struct {
	Environment     string `envconfig:"SERVICE_ENVIRONMENT" default:"development"`
	HTTPPort        string `envconfig:"SERVICE_HTTP_PORT" default:"8000"`
	DrainTimeoutSec int    `envconfig:"SERVICE_DRAIN_TIMEOUT_SEC" default:"10"`
}

type Kafka struct {
	Brokers              []string `envconfig:"KAFKA_BOOTSTRAP_SERVERS" default:"localhost:9092"`
	PollTimeoutMs        int      `envconfig:"KAFKA_POLL_TIMEOUT_MS" default:"1000"`
	RetryMinDelayMs      int      `envconfig:"KAFKA_RETRY_MIN_DELAY_MS" default:"50"`
	RetryMaxDelayMs      int      `envconfig:"KAFKA_RETRY_MAX_DELAY_MS" default:"1000"`
	PublishAckTimeoutSec int      `envconfig:"KAFKA_PUBLISH_ACK_TIMEOUT_SEC" default:"10"`
	ChannelBufferSize    int      `envconfig:"KAFKA_CHANNEL_BUFFER_SIZE" default:"100"`
}

// Storage points at the S3-compatible object store holding call audio.
// MinIO in development, hence the endpoint override and path-style addressing.
type Storage struct {
	Endpoint  string `envconfig:"MINIO_ENDPOINT" default:"localhost:9000"`
	AccessKey string `envconfig:"MINIO_ACCESS_KEY" default:"minioadmin"`
	SecretKey string `envconfig:"MINIO_SECRET_KEY" default:"minioadmin"`
	Bucket    string `envconfig:"MINIO_BUCKET" default:"calls"`
	Region    string `envconfig:"MINIO_REGION" default:"us-east-1"`
	UseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
}

type Sentiment struct {
	InputTopic          string  `envconfig:"SENTIMENT_INPUT_TOPIC" default:"calls.transcribed"`
	OutputTopic         string  `envconfig:"SENTIMENT_OUTPUT_TOPIC" default:"calls.sentiment-analyzed"`
	ConsumerGroup       string  `envconfig:"SENTIMENT_CONSUMER_GROUP" default:"sentiment-service"`
	ModelServerURL      string  `envconfig:"SENTIMENT_MODEL_SERVER_URL" default:"http://localhost:8501"`
	ModelName           string  `envconfig:"SENTIMENT_MODEL_NAME" default:"cardiffnlp/twitter-roberta-base-sentiment-latest"`
	RequestTimeoutSec   int     `envconfig:"SENTIMENT_REQUEST_TIMEOUT_SEC" default:"30"`
	NeutralLow          float64 `envconfig:"SENTIMENT_NEUTRAL_LOW" default:"-0.2"`
	NeutralHigh         float64 `envconfig:"SENTIMENT_NEUTRAL_HIGH" default:"0.2"`
	EscalationThreshold float64 `envconfig:"SENTIMENT_ESCALATION_THRESHOLD" default:"0.5"`
}

type Transcription struct {
	InputTopic        string  `envconfig:"TRANSCRIPTION_INPUT_TOPIC" default:"calls.received"`
	OutputTopic       string  `envconfig:"TRANSCRIPTION_OUTPUT_TOPIC" default:"calls.transcribed"`
	ConsumerGroup     string  `envconfig:"TRANSCRIPTION_CONSUMER_GROUP" default:"transcription-service"`
	ASRServerURL      string  `envconfig:"TRANSCRIPTION_ASR_SERVER_URL" default:"http://localhost:8502"`
	ModelSize         string  `envconfig:"TRANSCRIPTION_MODEL_SIZE" default:"small"`
	RequestTimeoutSec int     `envconfig:"TRANSCRIPTION_REQUEST_TIMEOUT_SEC" default:"300"`
	PauseThresholdSec float64 `envconfig:"TRANSCRIPTION_PAUSE_THRESHOLD_SEC" default:"1.5"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func (k Kafka) PollTimeout() time.Duration        { return time.Duration(k.PollTimeoutMs) * time.Millisecond }
func (k Kafka) RetryMinDelay() time.Duration      { return time.Duration(k.RetryMinDelayMs) * time.Millisecond }
func (k Kafka) RetryMaxDelay() time.Duration      { return time.Duration(k.RetryMaxDelayMs) * time.Millisecond }
func (k Kafka) PublishAckTimeout() time.Duration  { return time.Duration(k.PublishAckTimeoutSec) * time.Second }
func (s Service) DrainTimeout() time.Duration     { return time.Duration(s.DrainTimeoutSec) * time.Second }
