package sentiment

import (
	"github.com/voclabs/call-insights/internal/events"
)

// Band is the inclusive score range classified as neutral.
type Band struct {
	Low  float64
	High float64
}

var DefaultBand = Band{Low: -0.2, High: 0.2}

// Bucket discretizes a score: inside the band (inclusive on both edges) is
// neutral, above is positive, below is negative. The same rule labels both
// per-segment weighted scores and the call-level aggregate.
func (b Band) Bucket(score float64) string {
	switch {
	case score >= b.Low && score <= b.High:
		return Neutral
	case score > b.High:
		return Positive
	default:
		return Negative
	}
}

// Aggregate combines per-segment scores into a call-level sentiment, weighting
// each score by its segment's duration. Zero-duration segments contribute
// nothing; if no segment has positive duration the call is neutral.
func Aggregate(segments []events.AnalyzedSegment, band Band) (sentiment string, score float64) {
	var weightedSum, totalDuration float64

	for _, seg := range segments {
		duration := seg.Duration()
		if duration > 0 {
			weightedSum += seg.Score * duration
			totalDuration += duration
		}
	}

	if totalDuration == 0 {
		return Neutral, 0.0
	}

	score = weightedSum / totalDuration
	return band.Bucket(score), score
}
