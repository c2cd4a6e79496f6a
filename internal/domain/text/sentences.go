package text

import (
	"strings"
	"unicode"
)

// abbreviations never end a sentence when followed by a period
var abbreviations = map[string]struct{}{
	"mr": {}, "mrs": {}, "ms": {}, "dr": {}, "prof": {}, "jr": {}, "sr": {}, "st": {},
	"inc": {}, "corp": {}, "ltd": {}, "co": {}, "plc": {}, "vs": {}, "etc": {},
	"approx": {}, "est": {}, "dept": {}, "gov": {}, "sen": {}, "rep": {},
	"jan": {}, "feb": {}, "mar": {}, "apr": {}, "jun": {}, "jul": {}, "aug": {},
	"sep": {}, "sept": {}, "oct": {}, "nov": {}, "dec": {},
}

// SplitSentences segments body into trimmed sentences using terminal punctuation
// (. ! ? …) followed by whitespace, and line breaks. Decimals ("3.5"), single-letter
// initials ("U.S.") and common abbreviations ("Inc.") do not end a sentence.
func SplitSentences(body string) []string {
	rs := []rune(body)
	var (
		out   []string
		start int
	)

	flush := func(end int) {
		s := strings.TrimSpace(string(rs[start:end]))
		if s != "" {
			out = append(out, s)
		}
		start = end
	}

	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if r == '\n' || r == '\r' {
			flush(i + 1)
			continue
		}
		if !isTerminal(r) {
			continue
		}

		// absorb runs like "?!" or "..." and closing quotes/brackets
		j := i + 1
		for j < len(rs) && (isTerminal(rs[j]) || isCloser(rs[j])) {
			j++
		}
		if j < len(rs) && !unicode.IsSpace(rs[j]) {
			i = j - 1
			continue
		}
		if r == '.' && j == i+1 && endsWithAbbreviation(rs[start:i]) {
			i = j - 1
			continue
		}
		flush(j)
		i = j - 1
	}
	flush(len(rs))
	return out
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '»', '”', '’':
		return true
	}
	return false
}

func endsWithAbbreviation(prefix []rune) bool {
	end := len(prefix)
	begin := end
	for begin > 0 && (unicode.IsLetter(prefix[begin-1]) || prefix[begin-1] == '.') {
		begin--
	}
	word := strings.Trim(string(prefix[begin:end]), ".")
	if word == "" {
		return false
	}
	// initials and dotted acronyms: "J", "U.S"
	if last := strings.LastIndex(word, "."); last >= 0 {
		word = word[last+1:]
	}
	if len([]rune(word)) == 1 && unicode.IsUpper([]rune(word)[0]) {
		return true
	}
	_, ok := abbreviations[strings.ToLower(word)]
	return ok
}
