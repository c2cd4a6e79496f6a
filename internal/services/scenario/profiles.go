package scenario

import (
	"marketpulse/internal/domain/sentiment"
)

// Profile is the sector-specific vocabulary the scenario templates draw on.
// Indicators, Catalysts and Headwinds are never empty.
type Profile struct {
	Name       string
	Assets     string
	Horizon    string
	Indicators []string
	Catalysts  []string
	Headwinds  []string
}

// Tone is the sentiment-specific phrasing of a scenario
type Tone struct {
	Bias      string
	Direction string
	Opposite  string
	Stance    string
	Impact    string
}

var profiles = map[string]Profile{
	"consumer": {
		Name:       "Consumer",
		Assets:     "retail and consumer brand equities",
		Horizon:    "1-3 months",
		Indicators: []string{"Monthly retail sales", "Consumer confidence surveys", "Same-store sales reports"},
		Catalysts:  []string{"Strong holiday spending", "Easing input costs"},
		Headwinds:  []string{"Weaker household spending", "Margin pressure from discounting"},
	},
	"energy": {
		Name:       "Energy",
		Assets:     "oil, gas and energy producer equities",
		Horizon:    "2-8 weeks",
		Indicators: []string{"Weekly crude inventories", "OPEC production decisions", "Refinery utilization"},
		Catalysts:  []string{"Supply cuts tightening the market", "Rising fuel demand"},
		Headwinds:  []string{"Oversupply pushing prices lower", "Demand slowdown in major economies"},
	},
	"finance": {
		Name:       "Finance",
		Assets:     "bank stocks and rate-sensitive bonds",
		Horizon:    "1-3 months",
		Indicators: []string{"Central bank policy statements", "Treasury yield curve", "Inflation prints"},
		Catalysts:  []string{"A pause in policy tightening", "Improving credit quality"},
		Headwinds:  []string{"Higher funding costs", "Rising loan defaults"},
	},
	"healthcare": {
		Name:       "Healthcare",
		Assets:     "pharma and biotech equities",
		Horizon:    "3-6 months",
		Indicators: []string{"Regulatory approval decisions", "Clinical trial readouts", "Drug pricing policy"},
		Catalysts:  []string{"Positive trial data", "New product approvals"},
		Headwinds:  []string{"Pricing regulation", "Failed trials or recalls"},
	},
	"industrial": {
		Name:       "Industrial",
		Assets:     "industrial and transport equities",
		Horizon:    "1-3 months",
		Indicators: []string{"Manufacturing PMI", "Durable goods orders", "Freight volumes"},
		Catalysts:  []string{"Order backlog growth", "Infrastructure spending"},
		Headwinds:  []string{"Supply chain disruption", "Slowing factory output"},
	},
	"materials": {
		Name:       "Materials",
		Assets:     "metals, mining and chemical equities",
		Horizon:    "1-3 months",
		Indicators: []string{"Industrial metal prices", "China import data", "Inventory levels at exchanges"},
		Catalysts:  []string{"Stimulus-driven demand", "Supply disruptions at mines"},
		Headwinds:  []string{"Falling commodity prices", "Weak construction demand"},
	},
	"real_estate": {
		Name:       "Real estate",
		Assets:     "REITs and homebuilder equities",
		Horizon:    "3-6 months",
		Indicators: []string{"Mortgage rates", "Housing starts", "Office vacancy rates"},
		Catalysts:  []string{"Falling mortgage rates", "Recovering transaction volumes"},
		Headwinds:  []string{"Higher financing costs", "Rising vacancies"},
	},
	"tech": {
		Name:       "Technology",
		Assets:     "large-cap technology equities",
		Horizon:    "1-3 months",
		Indicators: []string{"Quarterly earnings guidance", "Product demand data", "Semiconductor orders"},
		Catalysts:  []string{"Strong product cycles", "Accelerating cloud and AI spending"},
		Headwinds:  []string{"Demand normalization after the product cycle", "Regulatory scrutiny"},
	},
}

var fallbackProfile = Profile{
	Name:       "Cross-market",
	Assets:     "broad market exposure",
	Horizon:    "1-3 months",
	Indicators: []string{"Follow-up news flow", "Broad index performance"},
	Catalysts:  []string{"Supportive follow-up news"},
	Headwinds:  []string{"Unexpected negative news"},
}

var tones = map[sentiment.Label]Tone{
	sentiment.Positive: {
		Bias:      "constructive",
		Direction: "higher",
		Opposite:  "negative",
		Stance:    "overweight",
		Impact:    "Moderate upside",
	},
	sentiment.Negative: {
		Bias:      "defensive",
		Direction: "lower",
		Opposite:  "positive",
		Stance:    "underweight",
		Impact:    "Moderate downside",
	},
	sentiment.Neutral: {
		Bias:      "balanced",
		Direction: "sideways",
		Opposite:  "decisively one-sided",
		Stance:    "neutral",
		Impact:    "Limited directional impact",
	},
}

// ProfileFor returns the sector profile, or the cross-market fallback
func ProfileFor(sectorName string) Profile {
	if p, ok := profiles[sectorName]; ok {
		return p
	}
	return fallbackProfile
}

// ToneFor returns the phrasing for a sentiment label, neutral when unknown
func ToneFor(label sentiment.Label) Tone {
	if t, ok := tones[label]; ok {
		return t
	}
	return tones[sentiment.Neutral]
}
