package sentiment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func modelServer(t *testing.T, scores []labelScore) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/analyze", func(w http.ResponseWriter, r *http.Request) {
		var req analyzeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.Text)
		assert.NotEmpty(t, req.Model)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(analyzeResponse{Scores: scores})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestRemoteEngine_WeightedScore(t *testing.T) {
	server := modelServer(t, []labelScore{
		{Label: Positive, Score: 0.7},
		{Label: Neutral, Score: 0.2},
		{Label: Negative, Score: 0.1},
	})

	engine := NewRemoteEngine(server.URL, "roberta", DefaultBand, time.Second)
	require.NoError(t, engine.Init(context.Background()))

	result, err := engine.Analyze(context.Background(), "thanks, that fixed it")
	require.NoError(t, err)

	// 1.0*0.7 + 0.0*0.2 + (-1.0)*0.1
	assert.InDelta(t, 0.6, result.Score, 1e-9)
	assert.Equal(t, Positive, result.Sentiment)
	assert.Equal(t, 0.7, result.Confidence)
	assert.InDelta(t, 0.2, result.Emotions[Neutral], 1e-9)
}

func TestRemoteEngine_NearUniformDistributionIsNeutral(t *testing.T) {
	server := modelServer(t, []labelScore{
		{Label: Positive, Score: 0.35},
		{Label: Neutral, Score: 0.35},
		{Label: Negative, Score: 0.3},
	})

	engine := NewRemoteEngine(server.URL, "roberta", DefaultBand, time.Second)

	result, err := engine.Analyze(context.Background(), "okay")
	require.NoError(t, err)

	assert.Equal(t, Neutral, result.Sentiment)
	assert.InDelta(t, 0.05, result.Score, 1e-9)
}

func TestRemoteEngine_ServerErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	engine := NewRemoteEngine(server.URL, "roberta", DefaultBand, time.Second)

	require.Error(t, engine.Init(context.Background()))

	_, err := engine.Analyze(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestRemoteEngine_EmptyDistributionRejected(t *testing.T) {
	server := modelServer(t, nil)

	engine := NewRemoteEngine(server.URL, "roberta", DefaultBand, time.Second)

	_, err := engine.Analyze(context.Background(), "hello")
	require.Error(t, err)
}
