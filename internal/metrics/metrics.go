package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the counters and histograms the pipeline reports to the
// /metrics endpoint. Names and buckets match the platform dashboards.
type Metrics struct {
	MessagesConsumed   *prometheus.CounterVec
	MessagesProduced   *prometheus.CounterVec
	Analyses           *prometheus.CounterVec
	ProcessingDuration prometheus.Histogram
	SentimentScores    prometheus.Histogram
}

// New registers the pipeline metrics on a fresh registry and returns both.
func New() (*Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		MessagesConsumed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_messages_consumed_total",
			Help: "Total number of Kafka messages consumed",
		}, []string{"topic"}),
		MessagesProduced: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_messages_produced_total",
			Help: "Total number of Kafka messages produced",
		}, []string{"topic"}),
		Analyses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "analyses_total",
			Help: "Total number of call analyses performed",
		}, []string{"status", "result"}),
		ProcessingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "processing_duration_seconds",
			Help:    "Time spent processing one event end to end",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}),
		SentimentScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sentiment_scores",
			Help:    "Distribution of overall sentiment scores",
			Buckets: []float64{-1.0, -0.75, -0.5, -0.25, 0, 0.25, 0.5, 0.75, 1.0},
		}),
	}

	return m, reg
}
