package sentiment

import (
	"github.com/shopspring/decimal"
)

// Label is a sentiment category
type Label string

const (
	Positive Label = "positive"
	Negative Label = "negative"
	Neutral  Label = "neutral"
)

// Labels lists the categories in tie-break priority order
var Labels = []Label{Positive, Negative, Neutral}

// Precision is the number of decimals every score is rounded to
const Precision = 6

// Score is an immutable sentiment distribution for one text
type Score struct {
	Positive   float64 `json:"positive"`
	Negative   float64 `json:"negative"`
	Neutral    float64 `json:"neutral"`
	Dominant   Label   `json:"dominant_label"`
	Confidence float64 `json:"confidence"`
	Language   string  `json:"language"`
}

// Fallback is the documented result for empty or unscored text
func Fallback(language string) Score {
	return Score{Neutral: 1, Dominant: Neutral, Confidence: 1, Language: language}
}

// FromWeights normalizes raw category weights into a Score. All-zero weights yield Fallback.
func FromWeights(positive, negative, neutral float64, language string) Score {
	total := positive + negative + neutral
	if total <= 0 {
		return Fallback(language)
	}

	s := Score{
		Positive: Round(positive / total),
		Negative: Round(negative / total),
		Neutral:  Round(neutral / total),
		Language: language,
	}
	s.Dominant, _ = dominance(s)

	// per-field rounding can leave the sum a few millionths off 1.0; the
	// dominant field absorbs the residual
	if residual := Round(1 - s.Sum()); residual != 0 {
		switch s.Dominant {
		case Positive:
			s.Positive = Round(s.Positive + residual)
		case Negative:
			s.Negative = Round(s.Negative + residual)
		default:
			s.Neutral = Round(s.Neutral + residual)
		}
	}
	s.Dominant, s.Confidence = dominance(s)
	return s
}

// Value returns the probability for a label
func (s Score) Value(l Label) float64 {
	switch l {
	case Positive:
		return s.Positive
	case Negative:
		return s.Negative
	default:
		return s.Neutral
	}
}

// Sum returns positive+negative+neutral
func (s Score) Sum() float64 {
	return s.Positive + s.Negative + s.Neutral
}

// Polarity maps the dominant label to +1, -1 or 0
func (s Score) Polarity() float64 {
	return Polarity(s.Dominant)
}

// Polarity maps a label to +1, -1 or 0
func Polarity(l Label) float64 {
	switch l {
	case Positive:
		return 1
	case Negative:
		return -1
	default:
		return 0
	}
}

// dominance picks the highest label using Labels order on ties and returns
// it with the gap to the runner-up.
func dominance(s Score) (Label, float64) {
	best := Labels[0]
	for _, l := range Labels[1:] {
		if s.Value(l) > s.Value(best) {
			best = l
		}
	}
	second := -1.0
	for _, l := range Labels {
		if l == best {
			continue
		}
		if v := s.Value(l); v > second {
			second = v
		}
	}
	return best, Round(s.Value(best) - second)
}

// Round rounds half away from zero to Precision decimals
func Round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(Precision).InexactFloat64()
}
