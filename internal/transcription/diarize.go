package transcription

import (
	"strings"

	"github.com/voclabs/call-insights/internal/events"
)

// Speaker labels assigned by the pause heuristic.
const (
	SpeakerAgent    = "agent"
	SpeakerCustomer = "customer"
)

// DefaultPauseThreshold is the silence gap, in seconds, taken to indicate a
// speaker change.
const DefaultPauseThreshold = 1.5

// Diarize assigns alternating speaker labels based on silence gaps: the agent
// is assumed to speak first, and a gap longer than the threshold toggles the
// speaker. This is a placeholder heuristic, not acoustic diarization — it
// carries exactly one piece of state across the scan and is fully
// deterministic. Timestamps are rounded to two decimals and text is trimmed.
func Diarize(raw []RawSegment, pauseThreshold float64) []events.Segment {
	segments := make([]events.Segment, 0, len(raw))

	currentSpeaker := SpeakerAgent
	lastEnd := 0.0

	for i, seg := range raw {
		if i > 0 && seg.Start-lastEnd > pauseThreshold {
			if currentSpeaker == SpeakerAgent {
				currentSpeaker = SpeakerCustomer
			} else {
				currentSpeaker = SpeakerAgent
			}
		}

		segments = append(segments, events.Segment{
			Speaker:   currentSpeaker,
			StartTime: round2(seg.Start),
			EndTime:   round2(seg.End),
			Text:      strings.TrimSpace(seg.Text),
		})

		lastEnd = seg.End
	}

	return segments
}
