package summary

import "marketpulse/internal/domain/text"

// Separators used when joining selected sentences
const (
	sentenceSeparator = " "
	batchSeparator    = "\n"
)

// joinedChars is the rune length of texts joined with sep
func joinedChars[T any](items []T, sep string, textOf func(T) string) int {
	if len(items) == 0 {
		return 0
	}
	n := text.CharCount(sep) * (len(items) - 1)
	for _, it := range items {
		n += text.CharCount(textOf(it))
	}
	return n
}

// fitBudget drops the lowest-scoring item until the joined text fits maxChars.
// Among equal lowest scores the later item goes first. items must be in output
// order; the survivors keep that order. maxChars <= 0 disables the budget.
func fitBudget[T any](items []T, maxChars int, sep string, textOf func(T) string, scoreOf func(T) float64) []T {
	out := make([]T, len(items))
	copy(out, items)
	if maxChars <= 0 {
		return out
	}

	for len(out) > 0 && joinedChars(out, sep, textOf) > maxChars {
		drop := len(out) - 1
		for i := len(out) - 2; i >= 0; i-- {
			if scoreOf(out[i]) < scoreOf(out[drop]) {
				drop = i
			}
		}
		out = append(out[:drop], out[drop+1:]...)
	}
	return out
}
