package events

import (
	"time"

	"github.com/google/uuid"
)

// Aggregate and event type tags carried on the envelope wire format.
const (
	AggregateTypeCall = "Call"

	TypeCallReceived      = "CallReceived"
	TypeCallTranscribed   = "CallTranscribed"
	TypeSentimentAnalyzed = "SentimentAnalyzed"
)

// Envelope is the versioned wrapper every domain event travels in.
// CausationID links an event to the event that triggered it; CorrelationID is
// copied unchanged along the whole derived chain so a call can be traced
// end to end. Envelopes are treated as immutable once constructed.
type Envelope struct {
	EventID       string         `json:"eventId"`
	EventType     string         `json:"eventType"`
	AggregateID   string         `json:"aggregateId"`
	AggregateType string         `json:"aggregateType"`
	Timestamp     time.Time      `json:"timestamp"`
	Version       int            `json:"version"`
	CausationID   string         `json:"causationId,omitempty"`
	CorrelationID string         `json:"correlationId"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Payload       any            `json:"payload"`
}

// New constructs a root envelope with fresh event and correlation IDs.
func New(eventType, aggregateID string, payload any, metadata map[string]any) *Envelope {
	return &Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		AggregateID:   aggregateID,
		AggregateType: AggregateTypeCall,
		Timestamp:     time.Now().UTC(),
		Version:       1,
		CorrelationID: uuid.NewString(),
		Metadata:      metadata,
		Payload:       payload,
	}
}

// Derive constructs an envelope caused by another event. The causation ID is
// the trigger's event ID and the correlation ID is copied, never regenerated.
func Derive(cause *Envelope, eventType string, payload any, metadata map[string]any) *Envelope {
	env := New(eventType, cause.AggregateID, payload, metadata)
	env.CausationID = cause.EventID
	env.CorrelationID = cause.CorrelationID
	return env
}
