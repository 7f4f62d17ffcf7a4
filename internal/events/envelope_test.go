package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_GeneratesIdentifiers(t *testing.T) {
	env := New(TypeCallReceived, "call-1", &CallReceivedPayload{CallID: "call-1"}, nil)

	assert.NotEmpty(t, env.EventID)
	assert.NotEmpty(t, env.CorrelationID)
	assert.Empty(t, env.CausationID)
	assert.Equal(t, AggregateTypeCall, env.AggregateType)
	assert.Equal(t, 1, env.Version)
	assert.WithinDuration(t, time.Now().UTC(), env.Timestamp, time.Second)

	other := New(TypeCallReceived, "call-1", &CallReceivedPayload{CallID: "call-1"}, nil)
	assert.NotEqual(t, env.EventID, other.EventID)
}

func TestDerive_PreservesCausalChain(t *testing.T) {
	root := New(TypeCallReceived, "call-7", &CallReceivedPayload{CallID: "call-7"}, nil)

	derived := Derive(root, TypeCallTranscribed, &CallTranscribedPayload{CallID: "call-7"}, nil)
	require.NotNil(t, derived)

	assert.Equal(t, root.EventID, derived.CausationID)
	assert.Equal(t, root.CorrelationID, derived.CorrelationID)
	assert.Equal(t, root.AggregateID, derived.AggregateID)
	assert.NotEqual(t, root.EventID, derived.EventID)

	// Correlation stays invariant across the whole chain.
	third := Derive(derived, TypeSentimentAnalyzed, &SentimentAnalyzedPayload{CallID: "call-7"}, nil)
	assert.Equal(t, derived.EventID, third.CausationID)
	assert.Equal(t, root.CorrelationID, third.CorrelationID)
}
