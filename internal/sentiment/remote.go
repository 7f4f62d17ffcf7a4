package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RemoteEngine scores text against a transformer model served over HTTP.
// The server returns the full label probability distribution; the weighted
// score and final label are derived here so primary and fallback results
// share one bucketing rule.
type RemoteEngine struct {
	baseURL string
	model   string
	band    Band
	client  *http.Client
}

func NewRemoteEngine(baseURL, model string, band Band, timeout time.Duration) *RemoteEngine {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RemoteEngine{
		baseURL: baseURL,
		model:   model,
		band:    band,
		client:  &http.Client{Timeout: timeout},
	}
}

func (e *RemoteEngine) Name() string {
	return e.model
}

// Init probes the model server so an unreachable or unloaded model is caught
// at startup rather than on the first call.
func (e *RemoteEngine) Init(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("model server unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model server unhealthy: %s", resp.Status)
	}
	return nil
}

type analyzeRequest struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type analyzeResponse struct {
	Scores []labelScore `json:"scores"`
}

// labelValues maps sentiment labels to the score axis.
var labelValues = map[string]float64{
	Negative: -1.0,
	Neutral:  0.0,
	Positive: 1.0,
}

// Analyze posts the text and reduces the returned distribution to a weighted
// score: sum of label value times probability. The top label's probability is
// the confidence; the final sentiment is the bucketed weighted score.
func (e *RemoteEngine) Analyze(ctx context.Context, text string) (Result, error) {
	body, err := json.Marshal(analyzeRequest{Text: text, Model: e.model})
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("analyze request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return Result{}, fmt.Errorf("analyze %s: %s", resp.Status, string(msg))
	}

	var out analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("analyze decode: %w", err)
	}
	if len(out.Scores) == 0 {
		return Result{}, fmt.Errorf("analyze returned empty distribution")
	}

	var weighted float64
	var confidence float64
	emotions := make(map[string]float64, len(out.Scores))

	for _, s := range out.Scores {
		weighted += labelValues[s.Label] * s.Score
		emotions[s.Label] = s.Score
		if s.Score > confidence {
			confidence = s.Score
		}
	}

	return Result{
		Sentiment:  e.band.Bucket(weighted),
		Score:      weighted,
		Confidence: confidence,
		Emotions:   emotions,
	}, nil
}
