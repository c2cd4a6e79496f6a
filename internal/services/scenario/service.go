package scenario

import (
	"math"
	"sort"

	"marketpulse/internal/domain/dictionary"
	"marketpulse/internal/domain/driver"
	"marketpulse/internal/domain/news"
	"marketpulse/internal/domain/scenario"
	"marketpulse/internal/domain/sentiment"
	"marketpulse/internal/domain/text"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
	"marketpulse/pkg/templates"
)

// Confidence factors per variant
const (
	baseFactor    = 1.0
	variantFactor = 0.85
)

// Blocks lists the blocks every scenario template defines
var Blocks = []string{
	"title", "description", "timeframe", "market_impact",
	"assumptions", "risks", "invalidators", "actions", "triggers",
}

// TemplateID is the registry id of the template for v
func TemplateID(v scenario.Variant) string {
	return "scenarios/" + string(v)
}

// CheckTemplates reports the first variant template in reg that misses a block
func CheckTemplates(reg *templates.Registry) error {
	for _, v := range scenario.Variants {
		if err := reg.Require(TemplateID(v), Blocks...); err != nil {
			return err
		}
	}
	return nil
}

// Options control which optional variants survive
type Options struct {
	MinConfidence float64
}

// Generator fills base/risk/opportunity scenarios from embedded templates
type Generator struct {
	snap      *dictionary.Snapshot
	templates *templates.Registry
	opts      Options
	log       *logger.Logger
}

// NewGenerator creates a generator. A nil registry uses the embedded templates.
func NewGenerator(snap *dictionary.Snapshot, registry *templates.Registry, opts Options) *Generator {
	if registry == nil {
		registry = templates.Get()
	}
	return &Generator{
		snap:      snap,
		templates: registry,
		opts:      opts,
		log:       logger.Get().With("component", "scenario_generator"),
	}
}

type templateData struct {
	Label            string
	Sector           string
	Sentiment        string
	Members          int
	Keywords         []string
	Profile          Profile
	Tone             Tone
	RiskTerms        []string
	OpportunityTerms []string
}

// Generate always returns a fully populated base scenario. Risk is added when
// the driver is negative or member text mentions a risk term; opportunity when
// it is positive or mentions an opportunity term. Optional variants under
// MinConfidence are dropped.
func (g *Generator) Generate(d driver.Driver, members []news.Article) (scenario.Set, error) {
	var tokens [][]string
	for _, a := range members {
		tokens = append(tokens, text.Tokenize(a.Text()))
	}

	data := templateData{
		Label:            d.Label,
		Sector:           d.DominantSector,
		Sentiment:        string(d.DominantSentiment),
		Members:          d.Size(),
		Keywords:         d.Keywords,
		Profile:          ProfileFor(d.DominantSector),
		Tone:             ToneFor(d.DominantSentiment),
		RiskTerms:        matchedTerms(g.snap.Risk(), tokens),
		OpportunityTerms: matchedTerms(g.snap.Opportunity(), tokens),
	}

	set := make(scenario.Set, 0, len(scenario.Variants))
	for _, v := range scenario.Variants {
		if !Emits(v, d.DominantSentiment, len(data.RiskTerms) > 0, len(data.OpportunityTerms) > 0) {
			continue
		}

		factor := variantFactor
		if v == scenario.Base {
			factor = baseFactor
		}
		confidence := Confidence(d.Score, d.Size(), factor)
		if v != scenario.Base && confidence < g.opts.MinConfidence {
			g.log.Debugw("Scenario below confidence threshold",
				"driver_id", d.ID,
				"variant", v,
				"confidence", confidence,
			)
			continue
		}

		sc, err := g.render(v, d, data)
		if err != nil {
			return nil, errors.Wrapf(err, "render %s scenario for driver %s", v, d.Label)
		}
		sc.Confidence = confidence
		set = append(set, sc)
	}

	g.log.Debugw("Scenarios generated",
		"driver_id", d.ID,
		"label", d.Label,
		"variants", len(set),
		"risk_terms", len(data.RiskTerms),
		"opportunity_terms", len(data.OpportunityTerms),
	)
	return set, nil
}

// Emits reports whether a variant is produced for the given driver signals
func Emits(v scenario.Variant, dominant sentiment.Label, hasRiskTerm, hasOpportunityTerm bool) bool {
	switch v {
	case scenario.Base:
		return true
	case scenario.Risk:
		return dominant == sentiment.Negative || hasRiskTerm
	case scenario.Opportunity:
		return dominant == sentiment.Positive || hasOpportunityTerm
	default:
		return false
	}
}

// Confidence is monotonic in driver score and member count and stays in [0,1]
func Confidence(score float64, members int, factor float64) float64 {
	strength := 1 - math.Exp(-(score+float64(members))/10)
	c := factor * (0.4 + 0.6*strength)
	return sentiment.Round(math.Max(0, math.Min(1, c)))
}

func (g *Generator) render(v scenario.Variant, d driver.Driver, data templateData) (scenario.Scenario, error) {
	id := TemplateID(v)
	fb := fallbacks(d)

	single := func(block, fallback string) (string, error) {
		out, err := g.templates.RenderNamed(id, block, data)
		if err != nil {
			return "", err
		}
		if out = templates.Collapse(out); out == "" {
			return fallback, nil
		}
		return out, nil
	}
	list := func(block string, atLeast int, fallback []string) ([]string, error) {
		out, err := g.templates.RenderNamed(id, block, data)
		if err != nil {
			return nil, err
		}
		items := dedupe(templates.Lines(out))
		for _, f := range fallback {
			if len(items) >= atLeast {
				break
			}
			items = append(items, f)
		}
		return items, nil
	}

	sc := scenario.Scenario{DriverID: d.ID, Variant: v}
	var err error
	if sc.Title, err = single("title", fb.title); err != nil {
		return sc, err
	}
	if sc.Description, err = single("description", fb.description); err != nil {
		return sc, err
	}
	if sc.Timeframe, err = single("timeframe", data.Profile.Horizon); err != nil {
		return sc, err
	}
	if sc.MarketImpact, err = single("market_impact", data.Tone.Impact); err != nil {
		return sc, err
	}
	if sc.Assumptions, err = list("assumptions", 2, fb.assumptions); err != nil {
		return sc, err
	}
	if sc.Risks, err = list("risks", 1, fb.risks); err != nil {
		return sc, err
	}
	if sc.Invalidators, err = list("invalidators", 1, fb.invalidators); err != nil {
		return sc, err
	}
	if sc.SuggestedActions, err = list("actions", 1, fb.actions); err != nil {
		return sc, err
	}
	if sc.Triggers, err = list("triggers", 1, fb.triggers); err != nil {
		return sc, err
	}
	return sc, nil
}

type fallbackLines struct {
	title        string
	description  string
	assumptions  []string
	risks        []string
	invalidators []string
	actions      []string
	triggers     []string
}

func fallbacks(d driver.Driver) fallbackLines {
	label := templates.Label(d.Label)
	return fallbackLines{
		title:        label + " outlook",
		description:  "Scenario derived from " + templates.Count(d.Size(), "article") + " on " + label + ".",
		assumptions:  []string{"The theme persists at its current intensity", "No unrelated shock dominates the market"},
		risks:        []string{"Unexpected news reverses the theme"},
		invalidators: []string{"Contradicting coverage on " + label},
		actions:      []string{"Monitor coverage on " + label},
		triggers:     []string{"New coverage on " + label},
	}
}

// matchedTerms returns the distinct lexicon terms found in any token list, ascending
func matchedTerms(lex *text.Lexicon, docs [][]string) []string {
	set := make(map[string]struct{})
	for _, tokens := range docs {
		for _, h := range lex.Match(tokens) {
			set[h.Term] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
