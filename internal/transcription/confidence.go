package transcription

import "math"

// BlendConfidence estimates overall transcription quality from the model's
// per-segment signals. The model reports no direct confidence, so two proxies
// are blended per segment: the average log-probability mapped linearly from
// an assumed [-2, 0] range onto [0, 1], and the complement of the no-speech
// probability. The per-segment blends are then duration-weighted exactly like
// sentiment aggregation; if every segment has zero duration the plain mean is
// used instead.
func BlendConfidence(segments []RawSegment) float64 {
	if len(segments) == 0 {
		return 0.0
	}

	blends := make([]float64, len(segments))
	for i, seg := range segments {
		logprobConfidence := clamp01((seg.AvgLogprob + 2) / 2)
		speechConfidence := 1 - seg.NoSpeechProb
		blends[i] = (logprobConfidence + speechConfidence) / 2
	}

	var totalDuration float64
	for _, seg := range segments {
		totalDuration += seg.End - seg.Start
	}

	if totalDuration == 0 {
		var sum float64
		for _, b := range blends {
			sum += b
		}
		return round3(sum / float64(len(blends)))
	}

	var weightedSum float64
	for i, seg := range segments {
		weightedSum += blends[i] * (seg.End - seg.Start)
	}

	return round3(weightedSum / totalDuration)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
