package events

// Segment is a time-bounded span of a call produced by transcription.
type Segment struct {
	Speaker   string  `json:"speaker,omitempty"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	Text      string  `json:"text"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.EndTime - s.StartTime
}

// AnalyzedSegment is a Segment augmented with per-segment sentiment.
// Emotions is the label probability distribution reported by the engine; it
// need not sum to one when the fallback engine produced it.
type AnalyzedSegment struct {
	Segment
	Sentiment  string             `json:"sentiment"`
	Score      float64            `json:"score"`
	Confidence float64            `json:"confidence"`
	Emotions   map[string]float64 `json:"emotions,omitempty"`
}

// CallReceivedPayload announces a stored call recording awaiting transcription.
type CallReceivedPayload struct {
	CallID        string `json:"callId"`
	CallerID      string `json:"callerId"`
	AgentID       string `json:"agentId"`
	Channel       string `json:"channel"`
	StartTime     string `json:"startTime"`
	AudioFileURL  string `json:"audioFileUrl"`
	AudioFormat   string `json:"audioFormat"`
	AudioFileSize int64  `json:"audioFileSize"`
}

// Transcription is the diarized transcription of one call.
type Transcription struct {
	FullText   string    `json:"fullText"`
	Segments   []Segment `json:"segments"`
	Language   string    `json:"language"`
	Confidence float64   `json:"confidence"`
}

type CallTranscribedPayload struct {
	CallID        string        `json:"callId"`
	Transcription Transcription `json:"transcription"`
}

// EscalationDetails describes the largest sentiment drop found in a call.
type EscalationDetails struct {
	MaxDrop    float64 `json:"maxDrop"`
	StartTime  float64 `json:"startTime"`
	EndTime    float64 `json:"endTime"`
	StartScore float64 `json:"startScore"`
	EndScore   float64 `json:"endScore"`
	Duration   float64 `json:"duration"`
}

type SentimentAnalyzedPayload struct {
	CallID             string             `json:"callId"`
	OverallSentiment   string             `json:"overallSentiment"`
	SentimentScore     float64            `json:"sentimentScore"`
	Segments           []AnalyzedSegment  `json:"segments"`
	EscalationDetected bool               `json:"escalationDetected"`
	EscalationDetails  *EscalationDetails `json:"escalationDetails,omitempty"`
	ProcessingTimeMs   float64            `json:"processingTimeMs"`
}
