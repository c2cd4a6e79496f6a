package text

import (
	"sort"
	"strings"
)

// Lexicon is an immutable weighted term table. Terms may be multi-word phrases;
// both sides are normalized with Tokenize before matching. Phrases take precedence
// over the unigrams they contain, longest phrase first.
type Lexicon struct {
	unigrams map[string]float64
	phrases  map[string][]phrase // keyed by first token, sorted longest first
	terms    []string
}

type phrase struct {
	tokens []string
	key    string
	weight float64
}

// Hit is a single lexicon match.
type Hit struct {
	Term     string
	Weight   float64
	Position int
}

// NewLexicon builds a lexicon from term→weight. Terms that collapse to the same
// normalized form keep the largest weight.
func NewLexicon(terms map[string]float64) *Lexicon {
	l := &Lexicon{
		unigrams: make(map[string]float64),
		phrases:  make(map[string][]phrase),
	}
	merged := make(map[string]float64, len(terms))
	for raw, w := range terms {
		key := NormalizePhrase(raw)
		if key == "" {
			continue
		}
		if prev, ok := merged[key]; !ok || w > prev {
			merged[key] = w
		}
	}
	for key, w := range merged {
		l.terms = append(l.terms, key)
		toks := strings.Split(key, " ")
		if len(toks) == 1 {
			l.unigrams[key] = w
			continue
		}
		l.phrases[toks[0]] = append(l.phrases[toks[0]], phrase{tokens: toks, key: key, weight: w})
	}
	for first := range l.phrases {
		ps := l.phrases[first]
		sort.Slice(ps, func(i, j int) bool {
			if len(ps[i].tokens) != len(ps[j].tokens) {
				return len(ps[i].tokens) > len(ps[j].tokens)
			}
			return ps[i].key < ps[j].key
		})
	}
	sort.Strings(l.terms)
	return l
}

// NewKeywordLexicon builds a lexicon where every term weighs 1.
func NewKeywordLexicon(terms []string) *Lexicon {
	m := make(map[string]float64, len(terms))
	for _, t := range terms {
		m[t] = 1
	}
	return NewLexicon(m)
}

// Len returns the number of distinct normalized terms.
func (l *Lexicon) Len() int {
	if l == nil {
		return 0
	}
	return len(l.terms)
}

// Terms returns the normalized terms in ascending order.
func (l *Lexicon) Terms() []string {
	out := make([]string, len(l.terms))
	copy(out, l.terms)
	return out
}

// Has reports whether a single token is a unigram term.
func (l *Lexicon) Has(token string) bool {
	_, ok := l.unigrams[token]
	return ok
}

// Match scans tokens left to right and returns every hit in order.
func (l *Lexicon) Match(tokens []string) []Hit {
	var hits []Hit
	for i := 0; i < len(tokens); {
		if p, ok := l.matchPhrase(tokens, i); ok {
			hits = append(hits, Hit{Term: p.key, Weight: p.weight, Position: i})
			i += len(p.tokens)
			continue
		}
		if w, ok := l.unigrams[tokens[i]]; ok {
			hits = append(hits, Hit{Term: tokens[i], Weight: w, Position: i})
		}
		i++
	}
	return hits
}

// Score sums the weights of all hits in token order.
func (l *Lexicon) Score(tokens []string) float64 {
	var total float64
	for _, h := range l.Match(tokens) {
		total += h.Weight
	}
	return total
}

// Count returns the number of hits.
func (l *Lexicon) Count(tokens []string) int {
	return len(l.Match(tokens))
}

// Contains reports whether any term occurs in tokens.
func (l *Lexicon) Contains(tokens []string) bool {
	for i := range tokens {
		if _, ok := l.matchPhrase(tokens, i); ok {
			return true
		}
		if _, ok := l.unigrams[tokens[i]]; ok {
			return true
		}
	}
	return false
}

func (l *Lexicon) matchPhrase(tokens []string, i int) (phrase, bool) {
	for _, p := range l.phrases[tokens[i]] {
		if i+len(p.tokens) > len(tokens) {
			continue
		}
		ok := true
		for k, t := range p.tokens {
			if tokens[i+k] != t {
				ok = false
				break
			}
		}
		if ok {
			return p, true
		}
	}
	return phrase{}, false
}
