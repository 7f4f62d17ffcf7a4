package sentiment

import (
	"context"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
)

// Sentiment labels carried on analyzed segments and aggregate results.
const (
	Positive = "positive"
	Neutral  = "neutral"
	Negative = "negative"
)

// Result is one engine invocation's output. Score is in [-1, 1], Confidence
// in [0, 1]. Emotions maps labels to probabilities; it is not required to sum
// to one when the fallback engine produced it.
type Result struct {
	Sentiment  string
	Score      float64
	Confidence float64
	Emotions   map[string]float64
}

// Engine is the pluggable analysis capability. Init is called once at
// startup; Analyze may fail per call.
type Engine interface {
	Name() string
	Init(ctx context.Context) error
	Analyze(ctx context.Context, text string) (Result, error)
}

// Analyzer wraps a primary engine with a fallback and implements the two-tier
// degradation rule: an init failure downgrades the process to the fallback
// permanently, while a per-call primary failure substitutes the fallback for
// that single call without touching the process-wide flag.
type Analyzer struct {
	primary  Engine
	fallback Engine
	log      *zap.Logger

	// Written at most once, during Init. Read-only afterwards.
	useFallback atomic.Bool
}

func NewAnalyzer(primary, fallback Engine, log *zap.Logger) *Analyzer {
	return &Analyzer{
		primary:  primary,
		fallback: fallback,
		log:      log,
	}
}

// Init loads the primary engine. Failure is not fatal: the process starts in
// degraded mode on the fallback and reports that via metadata and readiness.
func (a *Analyzer) Init(ctx context.Context) error {
	if err := a.primary.Init(ctx); err != nil {
		a.log.Error("Failed to initialize primary engine, degrading to fallback",
			zap.String("primary", a.primary.Name()),
			zap.String("fallback", a.fallback.Name()),
			zap.Error(err))
		a.useFallback.Store(true)
		return a.fallback.Init(ctx)
	}

	a.log.Info("Primary engine initialized", zap.String("engine", a.primary.Name()))
	return a.fallback.Init(ctx)
}

// UsedFallback reports whether the process permanently degraded at init time.
func (a *Analyzer) UsedFallback() bool {
	return a.useFallback.Load()
}

// ModelName names the engine variant the process is configured to use.
func (a *Analyzer) ModelName() string {
	if a.useFallback.Load() {
		return a.fallback.Name()
	}
	return a.primary.Name()
}

// Analyze scores one text. Empty or whitespace-only text short-circuits to a
// confident neutral without invoking either engine.
func (a *Analyzer) Analyze(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Sentiment: Neutral, Score: 0.0, Confidence: 1.0, Emotions: map[string]float64{}}
	}

	if a.useFallback.Load() {
		return a.analyzeWith(ctx, a.fallback, text)
	}

	result, err := a.primary.Analyze(ctx, text)
	if err != nil {
		a.log.Warn("Primary engine failed, substituting fallback for this call",
			zap.String("primary", a.primary.Name()),
			zap.Error(err))
		return a.analyzeWith(ctx, a.fallback, text)
	}
	return result
}

func (a *Analyzer) analyzeWith(ctx context.Context, engine Engine, text string) Result {
	result, err := engine.Analyze(ctx, text)
	if err != nil {
		// The fallback is not supposed to fail; degrade to neutral rather
		// than let the error reach the orchestrator.
		a.log.Error("Fallback engine failed",
			zap.String("engine", engine.Name()),
			zap.Error(err))
		return Result{Sentiment: Neutral, Score: 0.0, Confidence: 0.0, Emotions: map[string]float64{}}
	}
	return result
}
