package analysis

import (
	"context"
	"strings"

	"marketpulse/internal/domain/dictionary"
	"marketpulse/internal/domain/driver"
	"marketpulse/internal/domain/news"
	"marketpulse/internal/domain/portfolio"
	"marketpulse/internal/domain/scenario"
	"marketpulse/internal/domain/summary"
	"marketpulse/pkg/errors"
)

// Mode names an analyzer capability
type Mode string

const (
	ModeRuleBased     Mode = "rule_based"
	ModeExternalModel Mode = "external_model"
)

// ParseMode accepts the configuration spelling of a mode. Empty means rule_based.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeRuleBased:
		return ModeRuleBased, nil
	case ModeExternalModel:
		return ModeExternalModel, nil
	default:
		return "", errors.NewValidationError("mode", "unknown analyzer mode", s)
	}
}

// Analyzer turns a set of articles into a report
type Analyzer interface {
	Mode() Mode
	Analyze(ctx context.Context, req Request) (*Report, error)
}

// NewAnalyzer returns the analyzer for mode. The external model capability is
// supplied by collaborators and is reported as unavailable here.
func NewAnalyzer(mode Mode, store *dictionary.Store, opts Options, cache Cache) (Analyzer, error) {
	switch mode {
	case ModeRuleBased, "":
		return NewPipeline(store, opts, cache)
	case ModeExternalModel:
		return nil, errors.Wrapf(errors.ErrUnavailable, "analyzer mode %q", mode)
	default:
		return nil, errors.NewValidationError("mode", "unknown analyzer mode", mode)
	}
}

// Request is one analysis invocation
type Request struct {
	Articles  []news.Article   `json:"articles"`
	Portfolio []portfolio.Item `json:"portfolio,omitempty"`
	// Language is an optional hint; unknown codes fall back to detection
	Language string `json:"language,omitempty"`
}

// DriverReport bundles a driver with what was derived from it
type DriverReport struct {
	Driver    driver.Driver            `json:"driver"`
	Scenarios scenario.Set             `json:"scenarios"`
	Mappings  []portfolio.AssetMapping `json:"mappings"`
}

// Report is the full output of one invocation. Articles keep input order.
type Report struct {
	Mode              Mode                   `json:"mode"`
	DictionaryVersion string                 `json:"dictionary_version"`
	Articles          []news.Analysis        `json:"articles"`
	Batches           []summary.BatchSummary `json:"batches"`
	MetaSummary       summary.MetaSummary    `json:"meta_summary"`
	Drivers           []DriverReport         `json:"drivers"`
	Warnings          []news.Warning         `json:"warnings"`
}

// WarningsWithCode filters warnings by code
func (r *Report) WarningsWithCode(code string) []news.Warning {
	var out []news.Warning
	for _, w := range r.Warnings {
		if w.Code == code {
			out = append(out, w)
		}
	}
	return out
}
