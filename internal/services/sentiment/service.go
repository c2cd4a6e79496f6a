package sentiment

import (
	"strings"

	"marketpulse/internal/domain/dictionary"
	"marketpulse/internal/domain/sentiment"
	"marketpulse/internal/domain/text"
	"marketpulse/pkg/logger"
)

// Classifier scores text against the positive/negative/neutral lexicons of one snapshot
type Classifier struct {
	snap *dictionary.Snapshot
	log  *logger.Logger
}

// NewClassifier binds a classifier to a dictionary snapshot
func NewClassifier(snap *dictionary.Snapshot) *Classifier {
	return &Classifier{
		snap: snap,
		log:  logger.Get().With("component", "sentiment_classifier"),
	}
}

// Classify scores body. languageHint is used when it names a supported profile,
// otherwise the language is detected from stop words. Never fails: empty or
// unmatched text yields the neutral fallback.
func (c *Classifier) Classify(body, languageHint string) sentiment.Score {
	tokens := text.Tokenize(body)
	lang := c.language(tokens, languageHint)
	if len(tokens) == 0 {
		return sentiment.Fallback(lang)
	}

	positive := c.snap.Sentiment(sentiment.Positive).Score(tokens)
	negative := c.snap.Sentiment(sentiment.Negative).Score(tokens)
	neutral := c.snap.Sentiment(sentiment.Neutral).Score(tokens)

	score := sentiment.FromWeights(positive, negative, neutral, lang)
	c.log.Debugw("Sentiment classified",
		"tokens", len(tokens),
		"language", lang,
		"dominant", score.Dominant,
		"confidence", score.Confidence,
	)
	return score
}

func (c *Classifier) language(tokens []string, hint string) string {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint != "" {
		if _, ok := c.snap.StopWordProfiles()[hint]; ok {
			return hint
		}
	}
	return c.snap.DetectLanguage(tokens)
}
