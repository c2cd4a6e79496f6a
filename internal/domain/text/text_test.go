package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"apple", "s", "iphone", "sales", "rose", "12", "in", "q3"},
		Tokenize("Apple's iPhone sales rose 12% in Q3."))
	assert.Equal(t, []string{"societe", "generale"}, Tokenize("Société Générale"))
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("  ... !!"))
}

func TestWordsKeepCasing(t *testing.T) {
	assert.Equal(t, []string{"Federal", "Reserve", "raises", "rates"}, Words("Federal Reserve raises rates."))
}

func TestCaseHelpers(t *testing.T) {
	assert.True(t, IsCapitalized("Apple"))
	assert.False(t, IsCapitalized("iPhone"))
	assert.True(t, IsAllCaps("AAPL"))
	assert.False(t, IsAllCaps("Aapl"))
	assert.False(t, IsAllCaps("123"))
	assert.True(t, IsNumeric("2024"))
	assert.False(t, IsNumeric("q3"))
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"simple", "First one. Second one! Third?", []string{"First one.", "Second one!", "Third?"}},
		{"decimal", "Revenue grew 3.5 percent. Margins held.", []string{"Revenue grew 3.5 percent.", "Margins held."}},
		{"abbreviation", "Apple Inc. reported results. Shares rose.", []string{"Apple Inc. reported results.", "Shares rose."}},
		{"initials", "The U.S. economy grew. Jobs rose.", []string{"The U.S. economy grew.", "Jobs rose."}},
		{"newline", "Headline without dot\nBody sentence.", []string{"Headline without dot", "Body sentence."}},
		{"quotes", `He said "we will grow." Then left.`, []string{`He said "we will grow."`, "Then left."}},
		{"empty", "   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.in))
		})
	}
}

func TestDetectLanguage(t *testing.T) {
	profiles := map[string]map[string]struct{}{
		"en": TokenSet([]string{"the", "and", "of"}),
		"ru": TokenSet([]string{"и", "в", "на"}),
	}
	assert.Equal(t, "en", DetectLanguage(Tokenize("The rise of the market and more"), profiles, DefaultLanguage))
	assert.Equal(t, "ru", DetectLanguage(Tokenize("Рост и падение на рынке"), profiles, DefaultLanguage))
	assert.Equal(t, "en", DetectLanguage(Tokenize("zzz"), profiles, DefaultLanguage))

	tie := map[string]map[string]struct{}{
		"fr": TokenSet([]string{"a"}),
		"de": TokenSet([]string{"a"}),
	}
	assert.Equal(t, "de", DetectLanguage([]string{"a"}, tie, "en"))
}

func TestJaccard(t *testing.T) {
	a := TokenSet([]string{"fed", "raises", "rates"})
	b := TokenSet([]string{"fed", "raises", "interest", "rates"})
	assert.InDelta(t, 0.75, Jaccard(a, b), 1e-9)
	assert.Equal(t, 1.0, Jaccard(TokenSet(nil), TokenSet(nil)))
	assert.Equal(t, 0.0, Jaccard(a, TokenSet([]string{"apple"})))
	assert.Equal(t, Jaccard(a, b), Jaccard(b, a))
}

func TestLexiconPhrasesBeforeUnigrams(t *testing.T) {
	lex := NewLexicon(map[string]float64{
		"interest rates": 2,
		"rates":          1,
		"Growth":         1.5,
	})
	require.Equal(t, 3, lex.Len())
	assert.Equal(t, []string{"growth", "interest rates", "rates"}, lex.Terms())

	hits := lex.Match(Tokenize("Interest rates and growth; rates again"))
	require.Len(t, hits, 3)
	assert.Equal(t, Hit{Term: "interest rates", Weight: 2, Position: 0}, hits[0])
	assert.Equal(t, "growth", hits[1].Term)
	assert.Equal(t, "rates", hits[2].Term)
	assert.InDelta(t, 4.5, lex.Score(Tokenize("Interest rates and growth; rates again")), 1e-9)
	assert.True(t, lex.Contains(Tokenize("slower growth")))
	assert.False(t, lex.Contains(Tokenize("interest only")))
}

func TestLexiconCollapsedTermsKeepMaxWeight(t *testing.T) {
	lex := NewLexicon(map[string]float64{"Rally": 1, "rally": 3, "RALLY!": 2})
	assert.Equal(t, 1, lex.Len())
	assert.Equal(t, 3.0, lex.Score([]string{"rally"}))
}
