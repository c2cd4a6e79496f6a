package summary

import (
	"strings"

	"marketpulse/internal/domain/summary"
	"marketpulse/internal/domain/text"
)

// BuildBatches groups non-empty summaries in input order. A batch closes when
// it holds batchSize members or the next summary would push it past maxChars.
// A summary that cannot fit even an empty batch keeps only its leading
// sentences that fit; if none fit it is left out. Member sentences are
// joined with line breaks so the aggregator splits on the same boundaries.
func BuildBatches(summaries []summary.ExtractiveSummary, batchSize, maxChars int) []summary.BatchSummary {
	batches := make([]summary.BatchSummary, 0)
	var (
		ids   []string
		parts []string
	)

	flush := func() {
		if len(parts) == 0 {
			return
		}
		joined := strings.Join(parts, batchSeparator)
		chars := text.CharCount(joined)
		batches = append(batches, summary.BatchSummary{
			Number:          len(batches) + 1,
			ArticleIDs:      ids,
			Text:            joined,
			CharCount:       chars,
			EstimatedTokens: text.EstimateTokens(chars),
		})
		ids, parts = nil, nil
	}

	for _, s := range summaries {
		if s.Empty() {
			continue
		}
		part := memberText(s.Sentences)
		if maxChars > 0 && text.CharCount(part) > maxChars {
			part = leadingSentences(s.Sentences, maxChars)
			if part == "" {
				continue
			}
		}

		if len(parts) > 0 {
			full := batchSize > 0 && len(parts) >= batchSize
			next := joinedChars(append(parts[:len(parts):len(parts)], part), batchSeparator, identity)
			if full || (maxChars > 0 && next > maxChars) {
				flush()
			}
		}
		ids = append(ids, s.ArticleID)
		parts = append(parts, part)
	}
	flush()
	return batches
}

// leadingSentences keeps sentences from the start while they fit maxChars
func leadingSentences(sentences []summary.Sentence, maxChars int) string {
	kept := make([]string, 0, len(sentences))
	for _, s := range sentences {
		candidate := append(kept[:len(kept):len(kept)], s.Text)
		if joinedChars(candidate, batchSeparator, identity) > maxChars {
			break
		}
		kept = candidate
	}
	return strings.Join(kept, batchSeparator)
}

func memberText(sentences []summary.Sentence) string {
	texts := make([]string, len(sentences))
	for i, s := range sentences {
		texts[i] = s.Text
	}
	return strings.Join(texts, batchSeparator)
}

func identity(s string) string { return s }
