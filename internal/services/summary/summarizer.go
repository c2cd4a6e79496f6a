package summary

import (
	"sort"
	"strings"
	"unicode"

	"marketpulse/internal/domain/dictionary"
	"marketpulse/internal/domain/sentiment"
	"marketpulse/internal/domain/summary"
	"marketpulse/internal/domain/text"
	"marketpulse/internal/services/extraction"
	"marketpulse/pkg/logger"
)

// Length fitness is zero outside [lengthMin, lengthMax], rises linearly to 1 at
// lengthPeakLow, stays 1 up to lengthPeakHigh and falls back to 0 at lengthMax.
const (
	lengthMin      = 20
	lengthPeakLow  = 50
	lengthPeakHigh = 150
	lengthMax      = 300

	digitBonus  = 0.5
	metricBonus = 0.5
)

var metricMarkers = []string{"%", "$", "€", "£", "¥", "₽", "bps", "percent", "million", "billion", "trillion", "bn", "mln"}

// Options bound the size of one extractive summary
type Options struct {
	MaxSentences int
	MaxChars     int
}

// Summarizer selects the most informative sentences of an article
type Summarizer struct {
	snap      *dictionary.Snapshot
	extractor *extraction.Extractor
	opts      Options
	log       *logger.Logger
}

// NewSummarizer creates a summarizer over one snapshot
func NewSummarizer(snap *dictionary.Snapshot, extractor *extraction.Extractor, opts Options) *Summarizer {
	return &Summarizer{
		snap:      snap,
		extractor: extractor,
		opts:      opts,
		log:       logger.Get().With("component", "extractive_summarizer"),
	}
}

// Summarize picks up to MaxSentences sentences of body by score (ties to the
// earlier sentence), restores document order and drops the weakest sentences
// until the result fits MaxChars. Sentences are never cut.
func (s *Summarizer) Summarize(articleID, body string) summary.ExtractiveSummary {
	out := summary.ExtractiveSummary{ArticleID: articleID, Sentences: []summary.Sentence{}}
	if s.opts.MaxSentences <= 0 {
		return out
	}

	var candidates []summary.Sentence
	for i, raw := range text.SplitSentences(body) {
		sent := s.ScoreSentence(raw)
		sent.Index = i
		// a sentence longer than the whole budget can never be selected
		if s.opts.MaxChars > 0 && text.CharCount(sent.Text) > s.opts.MaxChars {
			continue
		}
		candidates = append(candidates, sent)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Index < candidates[j].Index
	})
	if len(candidates) > s.opts.MaxSentences {
		candidates = candidates[:s.opts.MaxSentences]
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Index < candidates[j].Index })

	selected := fitBudget(candidates, s.opts.MaxChars, sentenceSeparator,
		func(x summary.Sentence) string { return x.Text },
		func(x summary.Sentence) float64 { return x.Score },
	)

	texts := make([]string, len(selected))
	for i, sent := range selected {
		texts[i] = sent.Text
		out.EntityCount += sent.EntityCount
		out.KeywordCount += sent.KeywordCount
	}
	out.Sentences = selected
	out.Text = strings.Join(texts, sentenceSeparator)
	out.TotalChars = text.CharCount(out.Text)

	s.log.Debugw("Article summarized",
		"article_id", articleID,
		"selected", len(selected),
		"chars", out.TotalChars,
	)
	return out
}

// ScoreSentence computes the entity/keyword counts and the combined score of one sentence
func (s *Summarizer) ScoreSentence(raw string) summary.Sentence {
	sent := summary.Sentence{
		Text:         strings.TrimSpace(raw),
		EntityCount:  s.extractor.CountEntities(raw),
		KeywordCount: s.snap.KeywordHits(text.Tokenize(raw)),
	}
	sent.Score = sentiment.Round(float64(sent.EntityCount+sent.KeywordCount) +
		LengthFitness(text.CharCount(sent.Text)) +
		MetricBonus(sent.Text))
	return sent
}

// LengthFitness is the triangular length bonus for a sentence of n runes
func LengthFitness(n int) float64 {
	switch {
	case n < lengthMin || n > lengthMax:
		return 0
	case n < lengthPeakLow:
		return float64(n-lengthMin) / float64(lengthPeakLow-lengthMin)
	case n <= lengthPeakHigh:
		return 1
	default:
		return float64(lengthMax-n) / float64(lengthMax-lengthPeakHigh)
	}
}

// MetricBonus rewards sentences carrying numbers and units
func MetricBonus(sentence string) float64 {
	hasDigit := strings.IndexFunc(sentence, unicode.IsDigit) >= 0
	if !hasDigit {
		return 0
	}
	bonus := digitBonus
	lower := strings.ToLower(sentence)
	for _, m := range metricMarkers {
		if strings.Contains(lower, m) {
			bonus += metricBonus
			break
		}
	}
	return bonus
}
