package sector

import (
	"marketpulse/internal/domain/dictionary"
	"marketpulse/internal/domain/sector"
	"marketpulse/internal/domain/text"
	"marketpulse/pkg/logger"
)

// Classifier ranks the fixed sectors by weighted keyword hits
type Classifier struct {
	snap *dictionary.Snapshot
	topN int
	log  *logger.Logger
}

// NewClassifier binds a classifier to a snapshot. topN <= 0 keeps every scored sector.
func NewClassifier(snap *dictionary.Snapshot, topN int) *Classifier {
	return &Classifier{
		snap: snap,
		topN: topN,
		log:  logger.Get().With("component", "sector_classifier"),
	}
}

// Classify ranks sectors for body. Text with no sector keyword is unclassified.
func (c *Classifier) Classify(body string) sector.Score {
	return c.ClassifyTokens(text.Tokenize(body))
}

// ClassifyTokens ranks sectors for already normalized tokens
func (c *Classifier) ClassifyTokens(tokens []string) sector.Score {
	weights := make(map[string]float64, len(sector.Names))
	for _, name := range sector.Names {
		if w := c.snap.Sector(name).Score(tokens); w > 0 {
			weights[name] = w
		}
	}

	score := sector.FromWeights(weights, c.topN)
	c.log.Debugw("Sector classified",
		"tokens", len(tokens),
		"primary", score.Primary,
		"confidence", score.Confidence,
	)
	return score
}
