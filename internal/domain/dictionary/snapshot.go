package dictionary

import (
	"sort"
	"strings"
	"time"

	"marketpulse/internal/domain/sector"
	"marketpulse/internal/domain/sentiment"
	"marketpulse/internal/domain/text"
	"marketpulse/pkg/errors"
)

// Snapshot is an immutable, compiled dictionary. It is safe for concurrent use.
type Snapshot struct {
	version     string
	loadedAt    time.Time
	sentiment   map[sentiment.Label]*text.Lexicon
	sectors     map[string]*text.Lexicon
	risk        *text.Lexicon
	opportunity *text.Lexicon
	stopWords   map[string]map[string]struct{}
	languages   []string
	domain      map[string]struct{}
	tickerStop  map[string]struct{}
}

// NewSnapshot validates doc and compiles it. Categories that end up empty after
// normalization are rejected the same way as missing ones.
func NewSnapshot(doc *Document) (*Snapshot, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	s := &Snapshot{
		version:    doc.Version,
		loadedAt:   time.Now().UTC(),
		sentiment:  make(map[sentiment.Label]*text.Lexicon, len(sentiment.Labels)),
		sectors:    make(map[string]*text.Lexicon, len(sector.Names)),
		stopWords:  make(map[string]map[string]struct{}, len(doc.Languages)),
		domain:     make(map[string]struct{}),
		tickerStop: make(map[string]struct{}, len(doc.TickerStoplist)),
	}

	var problems errors.MultiError
	compile := func(field string, terms map[string]float64) *text.Lexicon {
		lex := text.NewLexicon(terms)
		if lex.Len() == 0 {
			problems.Add(errors.NewValidationError(field, "no usable terms after normalization", len(terms)))
		}
		for _, term := range lex.Terms() {
			for _, tok := range strings.Split(term, " ") {
				s.domain[tok] = struct{}{}
			}
		}
		return lex
	}

	s.sentiment[sentiment.Positive] = compile("Document.Sentiment.Positive", doc.Sentiment.Positive)
	s.sentiment[sentiment.Negative] = compile("Document.Sentiment.Negative", doc.Sentiment.Negative)
	s.sentiment[sentiment.Neutral] = compile("Document.Sentiment.Neutral", doc.Sentiment.Neutral)
	for _, name := range sector.Names {
		s.sectors[name] = compile("Document.Sectors."+name, doc.Sectors[name])
	}

	s.risk = text.NewKeywordLexicon(doc.Risk)
	s.opportunity = text.NewKeywordLexicon(doc.Opportunity)
	if s.risk.Len() == 0 {
		problems.Add(errors.NewValidationError("Document.Risk", "no usable terms after normalization", len(doc.Risk)))
	}
	if s.opportunity.Len() == 0 {
		problems.Add(errors.NewValidationError("Document.Opportunity", "no usable terms after normalization", len(doc.Opportunity)))
	}

	for code, lang := range doc.Languages {
		code = strings.ToLower(strings.TrimSpace(code))
		set := make(map[string]struct{}, len(lang.StopWords))
		for _, w := range lang.StopWords {
			for _, tok := range text.Tokenize(w) {
				set[tok] = struct{}{}
			}
		}
		if len(set) == 0 {
			problems.Add(errors.NewValidationError("Document.Languages."+code, "no usable stop words", len(lang.StopWords)))
			continue
		}
		s.stopWords[code] = set
		s.languages = append(s.languages, code)
	}
	sort.Strings(s.languages)

	for _, t := range doc.TickerStoplist {
		s.tickerStop[strings.ToUpper(strings.TrimSpace(t))] = struct{}{}
	}

	if problems.HasErrors() {
		return nil, errors.NewConfigError("invalid dictionary \""+doc.Version+"\"", problems.ToError())
	}
	return s, nil
}

// Version is the document version tag, used for cache invalidation
func (s *Snapshot) Version() string { return s.version }

// LoadedAt is when the snapshot was compiled
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Sentiment returns the lexicon for one sentiment category
func (s *Snapshot) Sentiment(label sentiment.Label) *text.Lexicon {
	return s.sentiment[label]
}

// Sector returns the lexicon for a sector, nil when the name is unknown
func (s *Snapshot) Sector(name string) *text.Lexicon {
	return s.sectors[name]
}

// Risk returns the risk keyword lexicon
func (s *Snapshot) Risk() *text.Lexicon { return s.risk }

// Opportunity returns the opportunity keyword lexicon
func (s *Snapshot) Opportunity() *text.Lexicon { return s.opportunity }

// Languages returns the supported language codes in ascending order
func (s *Snapshot) Languages() []string {
	out := make([]string, len(s.languages))
	copy(out, s.languages)
	return out
}

// StopWordProfiles exposes the stop-word sets keyed by language code.
// Callers must not modify the returned maps.
func (s *Snapshot) StopWordProfiles() map[string]map[string]struct{} {
	return s.stopWords
}

// IsStopWord reports whether token is a stop word in lang. An unknown language
// checks every profile.
func (s *Snapshot) IsStopWord(lang, token string) bool {
	if set, ok := s.stopWords[lang]; ok {
		_, hit := set[token]
		return hit
	}
	for _, set := range s.stopWords {
		if _, hit := set[token]; hit {
			return true
		}
	}
	return false
}

// DetectLanguage runs stop-word language detection against this snapshot's profiles
func (s *Snapshot) DetectLanguage(tokens []string) string {
	return text.DetectLanguage(tokens, s.stopWords, text.DefaultLanguage)
}

// IsDomainKeyword reports whether token belongs to any sentiment or sector term
func (s *Snapshot) IsDomainKeyword(token string) bool {
	_, ok := s.domain[token]
	return ok
}

// KeywordHits counts sentiment and sector lexicon hits in tokens
func (s *Snapshot) KeywordHits(tokens []string) int {
	n := 0
	for _, l := range sentiment.Labels {
		n += s.sentiment[l].Count(tokens)
	}
	for _, name := range sector.Names {
		n += s.sectors[name].Count(tokens)
	}
	return n
}

// IsTickerStopword reports whether an upper-case token must not be read as a ticker
func (s *Snapshot) IsTickerStopword(symbol string) bool {
	_, ok := s.tickerStop[strings.ToUpper(symbol)]
	return ok
}
