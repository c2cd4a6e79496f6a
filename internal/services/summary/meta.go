package summary

import (
	"sort"
	"strings"

	"marketpulse/internal/domain/summary"
	"marketpulse/internal/domain/text"
	"marketpulse/pkg/logger"
)

// DefaultDedupThreshold is the Jaccard similarity at which two sentences count as duplicates
const DefaultDedupThreshold = 0.8

// MetaOptions bound the cross-batch summary
type MetaOptions struct {
	MaxSentences   int
	MaxChars       int
	DedupThreshold float64
}

// Aggregator merges batch summaries into one deduplicated meta-summary
type Aggregator struct {
	scorer *Summarizer
	opts   MetaOptions
	log    *logger.Logger
}

// NewAggregator creates an aggregator. Sentence counts come from scorer so
// they match the per-article stage exactly.
func NewAggregator(scorer *Summarizer, opts MetaOptions) *Aggregator {
	if opts.DedupThreshold <= 0 {
		opts.DedupThreshold = DefaultDedupThreshold
	}
	return &Aggregator{
		scorer: scorer,
		opts:   opts,
		log:    logger.Get().With("component", "meta_summary"),
	}
}

type candidate struct {
	text   string
	batch  int
	order  int
	score  int
	tokens map[string]struct{}
}

// Aggregate re-splits every batch, drops near-duplicates, keeps the top
// MaxSentences by entity+keyword count and fits them into MaxChars. Output
// follows the order in which sentences appeared across batches.
func (a *Aggregator) Aggregate(batches []summary.BatchSummary) summary.MetaSummary {
	var kept []candidate
	seen, dropped := 0, 0

	for _, b := range batches {
		for _, raw := range text.SplitSentences(b.Text) {
			sent := a.scorer.ScoreSentence(raw)
			c := candidate{
				text:   sent.Text,
				batch:  b.Number,
				order:  seen,
				score:  sent.EntityCount + sent.KeywordCount,
				tokens: text.TokenSet(text.Tokenize(sent.Text)),
			}
			seen++

			var keep bool
			kept, keep = a.admit(kept, c)
			if !keep {
				dropped++
			}
		}
	}

	// rank by score, stable on first-seen order
	ranked := make([]candidate, len(kept))
	copy(ranked, kept)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if a.opts.MaxSentences > 0 && len(ranked) > a.opts.MaxSentences {
		ranked = ranked[:a.opts.MaxSentences]
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].order < ranked[j].order })

	final := fitBudget(ranked, a.opts.MaxChars, sentenceSeparator,
		func(c candidate) string { return c.text },
		func(c candidate) float64 { return float64(c.score) },
	)

	out := summary.MetaSummary{Sentences: make([]summary.MetaSentence, len(final))}
	texts := make([]string, len(final))
	for i, c := range final {
		out.Sentences[i] = summary.MetaSentence{Text: c.text, Batch: c.batch, Score: c.score}
		texts[i] = c.text
	}
	out.Text = strings.Join(texts, sentenceSeparator)
	out.TotalChars = text.CharCount(out.Text)
	out.EstimatedTokens = text.EstimateTokens(out.TotalChars)

	a.log.Debugw("Meta-summary built",
		"batches", len(batches),
		"candidates", seen,
		"duplicates", dropped,
		"selected", len(final),
	)
	return out
}

// admit applies the duplicate rule. A candidate similar to a kept sentence
// scoring at least as high is dropped; otherwise it replaces every similar kept
// sentence. Kept sentences are therefore pairwise below the threshold.
func (a *Aggregator) admit(kept []candidate, c candidate) ([]candidate, bool) {
	var similar []int
	for i, k := range kept {
		if text.Jaccard(k.tokens, c.tokens) >= a.opts.DedupThreshold {
			if k.score >= c.score {
				return kept, false
			}
			similar = append(similar, i)
		}
	}
	if len(similar) == 0 {
		return append(kept, c), true
	}

	next := make([]candidate, 0, len(kept)-len(similar)+1)
	j := 0
	for i, k := range kept {
		if j < len(similar) && similar[j] == i {
			j++
			continue
		}
		next = append(next, k)
	}
	return append(next, c), true
}
