package portfolio

import (
	"sort"
	"strings"

	"marketpulse/internal/domain/driver"
	"marketpulse/internal/domain/portfolio"
	"marketpulse/internal/domain/scenario"
	"marketpulse/internal/domain/sector"
	"marketpulse/internal/domain/sentiment"
	"marketpulse/internal/domain/text"
	sectorsvc "marketpulse/internal/services/sector"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
	"marketpulse/pkg/templates"
)

const (
	impactTemplate = "mapping/impact"
	impactBlock    = "impact"
)

// CheckTemplates verifies that reg can render impact descriptions
func CheckTemplates(reg *templates.Registry) error {
	return reg.Require(impactTemplate, impactBlock)
}

// corporate suffixes stripped from the end of asset names before alias matching
var corporateSuffixes = map[string]struct{}{
	"inc": {}, "incorporated": {}, "corp": {}, "corporation": {}, "co": {}, "company": {},
	"ltd": {}, "limited": {}, "plc": {}, "llc": {}, "ag": {}, "sa": {}, "nv": {},
}

// Options control the mapper
type Options struct {
	MinConfidence float64
}

// Mapper links portfolio assets to drivers by ticker, name/alias or sector
type Mapper struct {
	sectors   *sectorsvc.Classifier
	templates *templates.Registry
	opts      Options
	log       *logger.Logger
}

// NewMapper creates a mapper. sectors infers a sector for items that carry none.
// A nil registry uses the embedded templates.
func NewMapper(sectors *sectorsvc.Classifier, registry *templates.Registry, opts Options) *Mapper {
	if registry == nil {
		registry = templates.Get()
	}
	return &Mapper{
		sectors:   sectors,
		templates: registry,
		opts:      opts,
		log:       logger.Get().With("component", "portfolio_mapper"),
	}
}

type impactData struct {
	Asset        string
	Driver       string
	Match        string
	Sensitivity  float64
	MarketImpact string
}

// Map tries ticker, then name/alias, then sector for every item and keeps the
// first hit. Each asset appears at most once, with its highest tier. The result
// is sorted by confidence desc, then asset id asc.
func (m *Mapper) Map(d driver.Driver, scenarios scenario.Set, memberTexts []string, items []portfolio.Item) ([]portfolio.AssetMapping, error) {
	rawText := strings.Join(memberTexts, "\n")
	tokens := text.Tokenize(rawText)

	marketImpact := ""
	if base, ok := scenarios.Find(scenario.Base); ok {
		marketImpact = base.MarketImpact
	}

	best := make(map[string]portfolio.AssetMapping)
	for _, item := range items {
		if err := item.Validate(); err != nil {
			m.log.Warnw("Skipping invalid portfolio item", "item_id", item.ID, "error", err)
			continue
		}

		match, ok := m.match(d, item, rawText, tokens)
		if !ok || match.Confidence() < m.opts.MinConfidence {
			continue
		}
		if prev, seen := best[item.ID]; seen && prev.Confidence >= match.Confidence() {
			continue
		}

		mapping := portfolio.AssetMapping{
			DriverID:    d.ID,
			AssetID:     item.ID,
			AssetName:   item.Name,
			Symbol:      item.Symbol,
			MatchType:   match,
			Confidence:  match.Confidence(),
			Sensitivity: Sensitivity(d.DominantSentiment, match),
		}
		desc, err := m.templates.RenderNamed(impactTemplate, impactBlock, impactData{
			Asset:        displayName(item),
			Driver:       d.Label,
			Match:        string(match),
			Sensitivity:  mapping.Sensitivity,
			MarketImpact: marketImpact,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "render impact for %s", item.ID)
		}
		mapping.ImpactDescription = templates.Collapse(desc)
		best[item.ID] = mapping
	}

	out := make([]portfolio.AssetMapping, 0, len(best))
	for _, mp := range best {
		out = append(out, mp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].AssetID < out[j].AssetID
	})

	m.log.Debugw("Portfolio mapped",
		"driver_id", d.ID,
		"items", len(items),
		"mappings", len(out),
	)
	return out, nil
}

func (m *Mapper) match(d driver.Driver, item portfolio.Item, rawText string, tokens []string) (portfolio.MatchType, bool) {
	if MatchesTicker(rawText, item.Symbol) {
		return portfolio.MatchTicker, true
	}
	for _, name := range aliasPhrases(item) {
		if containsPhrase(tokens, name) {
			return portfolio.MatchAlias, true
		}
	}
	if s := m.itemSector(item); s != sector.Unclassified && s == d.DominantSector {
		return portfolio.MatchSector, true
	}
	return "", false
}

func (m *Mapper) itemSector(item portfolio.Item) string {
	if s := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(item.Sector)), " ", "_"); s != "" {
		return s
	}
	if m.sectors == nil {
		return sector.Unclassified
	}
	names := append([]string{item.Name}, item.Aliases...)
	return m.sectors.Classify(strings.Join(names, " ")).Primary
}

// Sensitivity is the driver polarity scaled by the match tier
func Sensitivity(dominant sentiment.Label, match portfolio.MatchType) float64 {
	return sentiment.Round(sentiment.Polarity(dominant) * match.Scale())
}

// MatchesTicker reports whether symbol occurs verbatim in text, optionally as a
// cashtag, bounded by characters other than ASCII letters and digits. Matching
// is case-sensitive and scans body without allocating.
func MatchesTicker(body, symbol string) bool {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return false
	}
	for from := 0; from < len(body); {
		i := strings.Index(body[from:], symbol)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(symbol)
		// a leading '$' is itself a boundary
		if (start == 0 || !isASCIIAlnum(body[start-1])) && (end == len(body) || !isASCIIAlnum(body[end])) {
			return true
		}
		from = start + 1
	}
	return false
}

func isASCIIAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// aliasPhrases returns the normalized name without corporate suffixes plus every alias
func aliasPhrases(item portfolio.Item) [][]string {
	var out [][]string
	if name := stripSuffixes(text.Tokenize(item.Name)); len(name) > 0 {
		out = append(out, name)
	}
	for _, alias := range item.Aliases {
		if toks := text.Tokenize(alias); len(toks) > 0 {
			out = append(out, toks)
		}
	}
	return out
}

func stripSuffixes(tokens []string) []string {
	for len(tokens) > 1 {
		if _, ok := corporateSuffixes[tokens[len(tokens)-1]]; !ok {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}

// containsPhrase reports whether phrase occurs as a contiguous token run
func containsPhrase(tokens, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return false
	}
outer:
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		for k, p := range phrase {
			if tokens[i+k] != p {
				continue outer
			}
		}
		return true
	}
	return false
}

func displayName(item portfolio.Item) string {
	switch {
	case item.Name != "" && item.Symbol != "":
		return item.Name + " (" + item.Symbol + ")"
	case item.Name != "":
		return item.Name
	default:
		return item.Symbol
	}
}
