package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"marketpulse/internal/domain/sentiment"
	"marketpulse/internal/testsupport"
)

func TestClassifyEmptyTextFallsBackToNeutral(t *testing.T) {
	c := NewClassifier(testsupport.Snapshot(t))

	for _, body := range []string{"", "   ", "!!! ..."} {
		s := c.Classify(body, "")
		assert.Equal(t, 1.0, s.Neutral)
		assert.Equal(t, 0.0, s.Positive)
		assert.Equal(t, 0.0, s.Negative)
		assert.Equal(t, 1.0, s.Confidence)
		assert.Equal(t, sentiment.Neutral, s.Dominant)
		assert.Equal(t, "en", s.Language)
	}
}

func TestClassifyUnmatchedTextFallsBackToNeutral(t *testing.T) {
	c := NewClassifier(testsupport.Snapshot(t))

	s := c.Classify("lorem ipsum dolor sit amet", "")
	assert.Equal(t, sentiment.Fallback("en"), s)
}

func TestClassifyMarketArticles(t *testing.T) {
	c := NewClassifier(testsupport.Snapshot(t))

	for i := 0; i < 5; i++ {
		a := testsupport.AppleArticle(i)
		s := c.Classify(a.Text(), "")
		assert.Equal(t, sentiment.Positive, s.Dominant, a.ID)
		assert.InDelta(t, 1.0, s.Sum(), 1e-6)
	}
	for i := 0; i < 3; i++ {
		a := testsupport.FedArticle(i)
		s := c.Classify(a.Text(), "")
		assert.Equal(t, sentiment.Negative, s.Dominant, a.ID)
		assert.InDelta(t, 1.0, s.Sum(), 1e-6)
	}
}

func TestClassifyNeutralText(t *testing.T) {
	c := NewClassifier(testsupport.Snapshot(t))

	s := c.Classify("Output was steady and prices were unchanged", "")
	assert.Equal(t, sentiment.Neutral, s.Dominant)
	assert.Equal(t, 1.0, s.Neutral)
}

func TestClassifyPhraseOutweighsUnigram(t *testing.T) {
	c := NewClassifier(testsupport.Snapshot(t))

	// "rate hike" is matched as one negative phrase
	s := c.Classify("another rate hike", "")
	assert.Equal(t, sentiment.Negative, s.Dominant)
	assert.Equal(t, 1.0, s.Negative)
}

func TestClassifyLanguage(t *testing.T) {
	c := NewClassifier(testsupport.Snapshot(t))

	assert.Equal(t, "ru", c.Classify("Банк заявил, что рост будет и дальше", "").Language)
	assert.Equal(t, "ru", c.Classify("growth", "RU").Language)
	assert.Equal(t, "en", c.Classify("the growth", "xx").Language)
}

func TestClassifyIsReproducible(t *testing.T) {
	c := NewClassifier(testsupport.Snapshot(t))
	body := testsupport.FedArticle(1).Text()

	first := c.Classify(body, "")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, c.Classify(body, ""))
	}
}
