package extraction

import (
	"regexp"
	"sort"
	"strings"

	"marketpulse/internal/domain/dictionary"
	"marketpulse/internal/domain/news"
	"marketpulse/internal/domain/text"
	"marketpulse/pkg/logger"
)

const minKeywordRunes = 3

var (
	cashtagPattern = regexp.MustCompile(`\$([A-Z]{1,5})\b`)
	tickerPattern  = regexp.MustCompile(`\b[A-Z]{2,5}\b`)
)

// Extractor pulls keywords, entity-like phrases and ticker candidates out of text
type Extractor struct {
	snap        *dictionary.Snapshot
	maxKeywords int
	log         *logger.Logger
}

// NewExtractor binds an extractor to a snapshot. maxKeywords caps both the
// keyword and the entity lists; <= 0 means no cap.
func NewExtractor(snap *dictionary.Snapshot, maxKeywords int) *Extractor {
	return &Extractor{
		snap:        snap,
		maxKeywords: maxKeywords,
		log:         logger.Get().With("component", "keyword_extractor"),
	}
}

// Extract runs all three extractors over body
func (e *Extractor) Extract(body, language string) news.Extraction {
	out := news.Extraction{
		Keywords: e.Keywords(body, language),
		Entities: e.Entities(body),
		Tickers:  e.Tickers(body),
	}
	e.log.Debugw("Extracted terms",
		"keywords", len(out.Keywords),
		"entities", len(out.Entities),
		"tickers", len(out.Tickers),
	)
	return out
}

type ranked struct {
	term  string
	count int
	first int
}

// rank orders by count desc then first position asc and applies the cap
func (e *Extractor) rank(stats map[string]*ranked) []string {
	list := make([]*ranked, 0, len(stats))
	for _, r := range stats {
		list = append(list, r)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}
		return list[i].first < list[j].first
	})
	if e.maxKeywords > 0 && len(list) > e.maxKeywords {
		list = list[:e.maxKeywords]
	}
	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.term
	}
	return out
}

// Keywords returns non-stop-word tokens of at least three runes that are not
// purely numeric, by frequency.
func (e *Extractor) Keywords(body, language string) []string {
	tokens := text.Tokenize(body)
	if language == "" {
		language = e.snap.DetectLanguage(tokens)
	}

	stats := make(map[string]*ranked)
	for pos, tok := range tokens {
		if text.CharCount(tok) < minKeywordRunes || text.IsNumeric(tok) || e.snap.IsStopWord(language, tok) {
			continue
		}
		if r, ok := stats[tok]; ok {
			r.count++
			continue
		}
		stats[tok] = &ranked{term: tok, count: 1, first: pos}
	}
	return e.rank(stats)
}

// Entities returns maximal runs of capitalized words per sentence, by frequency.
// A sentence-initial word that is a stop word ("The", "In") does not start a run.
func (e *Extractor) Entities(body string) []string {
	stats := make(map[string]*ranked)
	pos := 0
	for _, sentence := range text.SplitSentences(body) {
		for _, entity := range e.sentenceEntities(sentence) {
			if r, ok := stats[entity]; ok {
				r.count++
			} else {
				stats[entity] = &ranked{term: entity, count: 1, first: pos}
			}
			pos++
		}
	}
	return e.rank(stats)
}

// CountEntities returns how many entity runs a single sentence contains
func (e *Extractor) CountEntities(sentence string) int {
	return len(e.sentenceEntities(sentence))
}

func (e *Extractor) sentenceEntities(sentence string) []string {
	words := text.Words(sentence)
	var (
		out []string
		run []string
	)
	flush := func() {
		if len(run) > 0 {
			out = append(out, strings.Join(run, " "))
			run = nil
		}
	}
	for i, w := range words {
		if !text.IsCapitalized(w) || text.IsNumeric(w) {
			flush()
			continue
		}
		if i == 0 && e.snap.IsStopWord("", text.Normalize(w)) {
			continue
		}
		run = append(run, w)
	}
	flush()
	return out
}

// Tickers returns cashtags and bare upper-case symbols in first-seen order.
// Bare symbols on the ticker stoplist are ignored; cashtags never are.
func (e *Extractor) Tickers(body string) []string {
	type hit struct {
		pos    int
		symbol string
	}
	var hits []hit
	for _, m := range cashtagPattern.FindAllStringSubmatchIndex(body, -1) {
		hits = append(hits, hit{pos: m[0], symbol: body[m[2]:m[3]]})
	}
	for _, m := range tickerPattern.FindAllStringIndex(body, -1) {
		symbol := body[m[0]:m[1]]
		if e.snap.IsTickerStopword(symbol) {
			continue
		}
		hits = append(hits, hit{pos: m[0], symbol: symbol})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	seen := make(map[string]struct{}, len(hits))
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		if _, ok := seen[h.symbol]; ok {
			continue
		}
		seen[h.symbol] = struct{}{}
		out = append(out, h.symbol)
	}
	return out
}
