package analysis

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"marketpulse/pkg/errors"
)

// Options are the tunables of one pipeline. Field names in errors follow the
// json tags, which match the configuration option names.
type Options struct {
	MaxSentencesPerNews      int     `json:"max_sentences_per_news" validate:"gte=1"`
	MaxCharsPerNews          int     `json:"max_chars_per_news" validate:"gte=1"`
	MaxCharsPerBatch         int     `json:"max_chars_per_batch" validate:"gte=1"`
	BatchSize                int     `json:"batch_size" validate:"gte=1"`
	MetaSummaryMaxSentences  int     `json:"meta_summary_max_sentences" validate:"gte=1"`
	MetaSummaryMaxChars      int     `json:"meta_summary_max_chars" validate:"gte=1"`
	MinNewsPerDriver         int     `json:"min_news_per_driver" validate:"gte=1"`
	MaxDrivers               int     `json:"max_drivers" validate:"gte=1"`
	MaxKeywords              int     `json:"max_keywords" validate:"gte=1"`
	MinKeywordFreq           int     `json:"min_keyword_freq" validate:"gte=0"`
	MinScenarioConfidence    float64 `json:"min_scenario_confidence" validate:"gte=0,lte=1"`
	MinMappingConfidence     float64 `json:"min_mapping_confidence" validate:"gte=0,lte=1"`
	DedupSimilarityThreshold float64 `json:"dedup_similarity_threshold" validate:"gt=0,lte=1"`
	SectorTopN               int     `json:"sector_top_n" validate:"gte=1,lte=8"`
	MinArticleChars          int     `json:"min_article_chars" validate:"gte=0"`
	Workers                  int     `json:"workers" validate:"gte=1"`
}

// DefaultOptions returns the documented defaults
func DefaultOptions() Options {
	return Options{
		MaxSentencesPerNews:      3,
		MaxCharsPerNews:          600,
		MaxCharsPerBatch:         4000,
		BatchSize:                10,
		MetaSummaryMaxSentences:  8,
		MetaSummaryMaxChars:      1500,
		MinNewsPerDriver:         2,
		MaxDrivers:               5,
		MaxKeywords:              10,
		MinKeywordFreq:           1,
		MinScenarioConfidence:    0.3,
		MinMappingConfidence:     0.4,
		DedupSimilarityThreshold: 0.8,
		SectorTopN:               3,
		MinArticleChars:          20,
		Workers:                  4,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

// Validate reports every out-of-range option as a ValidationError
func (o Options) Validate() error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(err, "validate analysis options")
	}

	var multi errors.MultiError
	for _, fe := range fieldErrs {
		multi.Add(errors.NewValidationError(
			fe.Field(),
			fmt.Sprintf("must satisfy %s %s", fe.Tag(), fe.Param()),
			fe.Value(),
		))
	}
	return multi.ToError()
}
