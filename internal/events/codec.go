package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// wireEnvelope defers payload decoding until the event type is known.
type wireEnvelope struct {
	EventID       string          `json:"eventId"`
	EventType     string          `json:"eventType"`
	AggregateID   string          `json:"aggregateId"`
	AggregateType string          `json:"aggregateType"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CausationID   string          `json:"causationId,omitempty"`
	CorrelationID string          `json:"correlationId"`
	Metadata      map[string]any  `json:"metadata,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// Decode parses an envelope from its JSON wire form, dispatching payload
// decoding on the event type. An unknown event type or a payload that does
// not match its declared shape is a decode error, not a later type error.
func Decode(data []byte) (*Envelope, error) {
	var wire wireEnvelope
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}

	if wire.EventID == "" {
		return nil, fmt.Errorf("envelope missing eventId")
	}
	if wire.EventType == "" {
		return nil, fmt.Errorf("envelope missing eventType")
	}
	if wire.AggregateID == "" {
		return nil, fmt.Errorf("envelope missing aggregateId")
	}
	if len(wire.Payload) == 0 {
		return nil, fmt.Errorf("envelope %s missing payload", wire.EventID)
	}

	payload, err := decodePayload(wire.EventType, wire.Payload)
	if err != nil {
		return nil, fmt.Errorf("envelope %s: %w", wire.EventID, err)
	}

	return &Envelope{
		EventID:       wire.EventID,
		EventType:     wire.EventType,
		AggregateID:   wire.AggregateID,
		AggregateType: wire.AggregateType,
		Timestamp:     wire.Timestamp,
		Version:       wire.Version,
		CausationID:   wire.CausationID,
		CorrelationID: wire.CorrelationID,
		Metadata:      wire.Metadata,
		Payload:       payload,
	}, nil
}

func decodePayload(eventType string, raw json.RawMessage) (any, error) {
	switch eventType {
	case TypeCallReceived:
		var p CallReceivedPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("failed to decode %s payload: %w", eventType, err)
		}
		return &p, nil
	case TypeCallTranscribed:
		var p CallTranscribedPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("failed to decode %s payload: %w", eventType, err)
		}
		return &p, nil
	case TypeSentimentAnalyzed:
		var p SentimentAnalyzedPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("failed to decode %s payload: %w", eventType, err)
		}
		return &p, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}
}

// Encode serializes an envelope to its JSON wire form.
func Encode(env *Envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope %s: %w", env.EventID, err)
	}
	return data, nil
}
