package transcription

import "context"

// RawSegment is one span as the ASR model emitted it, before diarization.
// AvgLogprob and NoSpeechProb are the model's per-segment quality signals.
type RawSegment struct {
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Text         string  `json:"text"`
	AvgLogprob   float64 `json:"avg_logprob"`
	NoSpeechProb float64 `json:"no_speech_prob"`
}

// RawTranscription is the ASR output for one audio file.
type RawTranscription struct {
	Text     string       `json:"text"`
	Language string       `json:"language"`
	Segments []RawSegment `json:"segments"`
}

// Engine is the pluggable ASR capability.
type Engine interface {
	Name() string
	Init(ctx context.Context) error
	Transcribe(ctx context.Context, audioPath string) (RawTranscription, error)
}
