// Package dictionary holds the keyword, sentiment and sector tables every
// classifier reads. Documents are validated in full before they become a
// Snapshot, and a Store swaps snapshots atomically on reload.
package dictionary

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"

	"marketpulse/internal/domain/sector"
	"marketpulse/pkg/errors"
)

// Terms maps a word or phrase to its weight
type Terms map[string]float64

const termsRule = "required,min=1,dive,keys,required,endkeys,gt=0"

// Document is the on-disk dictionary schema (YAML, TOML or JSON)
type Document struct {
	Version        string              `yaml:"version" toml:"version" json:"version" validate:"required"`
	Languages      map[string]Language `yaml:"languages" toml:"languages" json:"languages" validate:"required,min=1"`
	Sentiment      SentimentTables     `yaml:"sentiment" toml:"sentiment" json:"sentiment"`
	Sectors        map[string]Terms    `yaml:"sectors" toml:"sectors" json:"sectors" validate:"required"`
	Risk           []string            `yaml:"risk" toml:"risk" json:"risk" validate:"required,min=1,dive,required"`
	Opportunity    []string            `yaml:"opportunity" toml:"opportunity" json:"opportunity" validate:"required,min=1,dive,required"`
	TickerStoplist []string            `yaml:"ticker_stoplist,omitempty" toml:"ticker_stoplist,omitempty" json:"ticker_stoplist,omitempty" validate:"omitempty,dive,required"`
}

// Language is one stop-word profile used for language detection and keyword filtering
type Language struct {
	StopWords []string `yaml:"stop_words" toml:"stop_words" json:"stop_words" validate:"required,min=1,dive,required"`
}

// SentimentTables holds the three sentiment categories
type SentimentTables struct {
	Positive Terms `yaml:"positive" toml:"positive" json:"positive" validate:"required,min=1,dive,keys,required,endkeys,gt=0"`
	Negative Terms `yaml:"negative" toml:"negative" json:"negative" validate:"required,min=1,dive,keys,required,endkeys,gt=0"`
	Neutral  Terms `yaml:"neutral" toml:"neutral" json:"neutral" validate:"required,min=1,dive,keys,required,endkeys,gt=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that every required category is present and non-empty.
// The returned error is a ConfigError wrapping one ValidationError per problem.
func (d *Document) Validate() error {
	if d == nil {
		return errors.NewConfigError("dictionary document is nil", nil)
	}

	var problems errors.MultiError
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				problems.Add(errors.NewValidationError(fe.Namespace(), fe.Tag(), fe.Value()))
			}
		} else {
			problems.Add(err)
		}
	}

	codes := make([]string, 0, len(d.Languages))
	for code := range d.Languages {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		if code == "" {
			problems.Add(errors.NewValidationError("Document.Languages", "empty language code", code))
			continue
		}
		if err := validate.Struct(d.Languages[code]); err != nil {
			problems.Add(errors.NewValidationError("Document.Languages."+code+".StopWords", "empty stop words", nil))
		}
	}

	// the sector set is fixed: no missing names and no extra ones
	for _, name := range sector.Names {
		terms, ok := d.Sectors[name]
		if !ok {
			problems.Add(errors.NewValidationError("Document.Sectors."+name, "missing sector", nil))
			continue
		}
		if err := validate.Var(terms, termsRule); err != nil {
			problems.Add(errors.NewValidationError("Document.Sectors."+name, "empty or non-positive weights", len(terms)))
		}
	}
	extra := make([]string, 0)
	for name := range d.Sectors {
		if !sector.IsKnown(name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		problems.Add(errors.NewValidationError("Document.Sectors."+name, "unknown sector", name))
	}

	if problems.HasErrors() {
		return errors.NewConfigError(fmt.Sprintf("invalid dictionary %q", d.Version), problems.ToError())
	}
	return nil
}
