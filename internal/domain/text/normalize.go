// Package text holds the deterministic text primitives shared by every classifier:
// normalization, tokenization, sentence segmentation, language detection,
// lexicon matching and token-set similarity.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold applies NFKC compatibility folding and strips combining marks, so that
// "Société" and "Societe" normalize to the same form.
func Fold(s string) string {
	// transform.Chain keeps state, build a fresh one per call
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFKC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return norm.NFKC.String(s)
	}
	return out
}

// Normalize folds and lowercases s.
func Normalize(s string) string {
	return strings.ToLower(Fold(s))
}

// Tokenize returns the normalized lowercase word tokens of s.
// Any rune that is not a letter or digit separates tokens.
func Tokenize(s string) []string {
	return strings.FieldsFunc(Normalize(s), isSeparator)
}

// Words returns the words of s with their original casing preserved.
func Words(s string) []string {
	return strings.FieldsFunc(s, isSeparator)
}

// NormalizePhrase tokenizes s and joins the tokens with single spaces.
func NormalizePhrase(s string) string {
	return strings.Join(Tokenize(s), " ")
}

// CharCount returns the length of s in runes.
func CharCount(s string) int {
	return len([]rune(s))
}

// EstimateTokens approximates model tokens as chars/4.
func EstimateTokens(chars int) int {
	return chars / 4
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// IsNumeric reports whether token consists only of digits.
func IsNumeric(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// IsCapitalized reports whether word starts with an upper-case letter.
func IsCapitalized(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}

// IsAllCaps reports whether every letter in word is upper-case and it has at least one letter.
func IsAllCaps(word string) bool {
	letters := 0
	for _, r := range word {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters > 0
}
