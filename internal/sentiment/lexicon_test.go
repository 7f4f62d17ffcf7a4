package sentiment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexiconEngine_Positive(t *testing.T) {
	engine := NewLexiconEngine()
	require.NoError(t, engine.Init(context.Background()))

	result, err := engine.Analyze(context.Background(), "Thank you, that was excellent and very helpful!")

	require.NoError(t, err)
	assert.Equal(t, Positive, result.Sentiment)
	assert.Greater(t, result.Score, 0.05)
	assert.LessOrEqual(t, result.Score, 1.0)
	assert.Equal(t, result.Confidence, result.Score)
}

func TestLexiconEngine_Negative(t *testing.T) {
	engine := NewLexiconEngine()

	result, err := engine.Analyze(context.Background(), "This is terrible, I am so frustrated with this broken service")

	require.NoError(t, err)
	assert.Equal(t, Negative, result.Sentiment)
	assert.Less(t, result.Score, -0.05)
	assert.GreaterOrEqual(t, result.Score, -1.0)
}

func TestLexiconEngine_NeutralScoresZero(t *testing.T) {
	engine := NewLexiconEngine()

	result, err := engine.Analyze(context.Background(), "the account number is four five six")

	require.NoError(t, err)
	assert.Equal(t, Neutral, result.Sentiment)
	assert.Equal(t, 0.0, result.Score)
}

func TestLexiconEngine_NegationFlipsValence(t *testing.T) {
	engine := NewLexiconEngine()

	positive, err := engine.Analyze(context.Background(), "this is good")
	require.NoError(t, err)
	negated, err := engine.Analyze(context.Background(), "this is not good")
	require.NoError(t, err)

	assert.Equal(t, Positive, positive.Sentiment)
	assert.Less(t, negated.Score, positive.Score)
}

func TestLexiconEngine_EmotionsAreTokenShares(t *testing.T) {
	engine := NewLexiconEngine()

	result, err := engine.Analyze(context.Background(), "great great awful thing")

	require.NoError(t, err)
	assert.InDelta(t, 0.5, result.Emotions[Positive], 1e-9)
	assert.InDelta(t, 0.25, result.Emotions[Negative], 1e-9)
	assert.InDelta(t, 0.25, result.Emotions[Neutral], 1e-9)
}

func TestLexiconEngine_Deterministic(t *testing.T) {
	engine := NewLexiconEngine()
	text := "I love this but the wait was awful"

	first, err := engine.Analyze(context.Background(), text)
	require.NoError(t, err)
	second, err := engine.Analyze(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
