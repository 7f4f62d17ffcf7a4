package sentiment

import (
	"math"

	"github.com/voclabs/call-insights/internal/events"
)

// DefaultEscalationThreshold is the minimum score drop reported as an
// escalation.
const DefaultEscalationThreshold = 0.5

// DetectEscalation scans for the single largest forward score drop across the
// call. The scan is deliberately global, not adjacent-pair: a gradual decline
// that ends sharply several segments later must be caught even when every
// local delta is small. Quadratic in segment count, which stays in the tens
// for a call's segmentation granularity.
func DetectEscalation(segments []events.AnalyzedSegment, threshold float64) (bool, *events.EscalationDetails) {
	if len(segments) < 2 {
		return false, nil
	}

	var maxDrop float64
	startIdx, endIdx := 0, 0

	for i := 0; i < len(segments); i++ {
		for j := i + 1; j < len(segments); j++ {
			drop := segments[i].Score - segments[j].Score
			if drop > maxDrop {
				maxDrop = drop
				startIdx = i
				endIdx = j
			}
		}
	}

	if maxDrop < threshold {
		return false, nil
	}

	return true, &events.EscalationDetails{
		MaxDrop:    round3(maxDrop),
		StartTime:  segments[startIdx].StartTime,
		EndTime:    segments[endIdx].EndTime,
		StartScore: round3(segments[startIdx].Score),
		EndScore:   round3(segments[endIdx].Score),
		Duration:   round2(segments[endIdx].EndTime - segments[startIdx].StartTime),
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
