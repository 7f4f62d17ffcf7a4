package sentiment

import (
	"context"
	"math"
	"strings"
)

// LexiconEngine is the always-available fallback: a small valence lexicon
// with negation handling and VADER-style compound normalization. It is
// deliberately simple; its job is to keep the pipeline producing usable
// scores when the model server is down, not to compete with the model.
type LexiconEngine struct{}

func NewLexiconEngine() *LexiconEngine {
	return &LexiconEngine{}
}

func (e *LexiconEngine) Name() string {
	return "lexicon"
}

func (e *LexiconEngine) Init(ctx context.Context) error {
	return nil
}

// valences holds token scores on a [-4, 4] scale, VADER convention, biased
// toward vocabulary common in support calls.
var valences = map[string]float64{
	"good": 1.9, "great": 3.1, "excellent": 3.2, "amazing": 2.8, "awesome": 3.1,
	"perfect": 2.7, "love": 3.2, "loved": 2.9, "helpful": 1.8, "thanks": 1.9,
	"thank": 1.9, "appreciate": 2.0, "happy": 2.7, "pleased": 1.9, "wonderful": 2.7,
	"resolved": 1.6, "fixed": 1.4, "works": 1.2, "working": 1.1, "fine": 0.8,
	"yes": 0.6, "sure": 0.8, "glad": 2.0, "easy": 1.4, "fast": 1.1,

	"bad": -2.5, "terrible": -3.1, "horrible": -3.0, "awful": -2.9, "worst": -3.1,
	"hate": -2.7, "angry": -2.3, "furious": -2.9, "upset": -1.9, "frustrated": -2.2,
	"frustrating": -2.2, "annoyed": -1.8, "annoying": -1.9, "useless": -1.9,
	"broken": -1.7, "problem": -1.4, "problems": -1.4, "issue": -1.0, "issues": -1.1,
	"fail": -2.3, "failed": -2.2, "wrong": -1.6, "slow": -1.1, "wait": -0.7,
	"waiting": -0.9, "cancel": -1.3, "complaint": -1.7, "refund": -0.9,
	"disappointed": -2.2, "disappointing": -2.2, "unacceptable": -2.6, "ridiculous": -2.3,
	"no": -0.6, "never": -1.0,
}

// negations invert the valence of the following token.
var negations = map[string]bool{
	"not": true, "isn't": true, "wasn't": true, "don't": true, "doesn't": true,
	"didn't": true, "can't": true, "cannot": true, "won't": true, "couldn't": true,
	"wouldn't": true, "shouldn't": true, "never": true, "no": true,
}

// vader's normalization constant.
const normAlpha = 15.0

func (e *LexiconEngine) Analyze(ctx context.Context, text string) (Result, error) {
	tokens := tokenize(text)

	var sum float64
	var posCount, negCount, neuCount int

	negated := false
	for _, tok := range tokens {
		valence, known := valences[tok]
		if known {
			if negated && !negations[tok] {
				valence = -valence
			}
			sum += valence
			switch {
			case valence > 0:
				posCount++
			case valence < 0:
				negCount++
			default:
				neuCount++
			}
		} else {
			neuCount++
		}
		negated = negations[tok]
	}

	compound := sum / math.Sqrt(sum*sum+normAlpha)

	var sentiment string
	var score float64
	switch {
	case compound >= 0.05:
		sentiment = Positive
		score = math.Min(compound, 1.0)
	case compound <= -0.05:
		sentiment = Negative
		score = math.Max(compound, -1.0)
	default:
		sentiment = Neutral
		score = 0.0
	}

	total := float64(len(tokens))
	emotions := map[string]float64{}
	if total > 0 {
		emotions[Positive] = float64(posCount) / total
		emotions[Neutral] = float64(neuCount) / total
		emotions[Negative] = float64(negCount) / total
	}

	return Result{
		Sentiment:  sentiment,
		Score:      score,
		Confidence: math.Abs(compound),
		Emotions:   emotions,
	}, nil
}

func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '\'':
			return r
		default:
			return ' '
		}
	}, strings.ToLower(text))
	return strings.Fields(cleaned)
}
