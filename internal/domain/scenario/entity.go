package scenario

// Variant is the scenario flavour
type Variant string

const (
	Base        Variant = "base"
	Risk        Variant = "risk"
	Opportunity Variant = "opportunity"
)

// Variants lists every variant in output order
var Variants = []Variant{Base, Risk, Opportunity}

// Scenario is one templated outlook for a driver
type Scenario struct {
	DriverID         string   `json:"driver_id"`
	Variant          Variant  `json:"variant"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Assumptions      []string `json:"assumptions"`
	Risks            []string `json:"risks"`
	Invalidators     []string `json:"invalidators"`
	Confidence       float64  `json:"confidence"`
	Timeframe        string   `json:"timeframe"`
	MarketImpact     string   `json:"market_impact"`
	SuggestedActions []string `json:"suggested_actions"`
	Triggers         []string `json:"triggers"`
}

// Complete reports whether every field is populated
func (s Scenario) Complete() bool {
	return s.DriverID != "" && s.Title != "" && s.Description != "" &&
		len(s.Assumptions) >= 2 && len(s.Risks) >= 1 && len(s.Invalidators) >= 1 &&
		s.Timeframe != "" && s.MarketImpact != "" &&
		len(s.SuggestedActions) > 0 && len(s.Triggers) > 0
}

// Set is the scenarios generated for one driver, base first
type Set []Scenario

// Find returns the scenario of the given variant
func (s Set) Find(v Variant) (Scenario, bool) {
	for _, sc := range s {
		if sc.Variant == v {
			return sc, true
		}
	}
	return Scenario{}, false
}

// Has reports whether the set contains variant v
func (s Set) Has(v Variant) bool {
	_, ok := s.Find(v)
	return ok
}
