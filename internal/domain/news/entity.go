package news

import (
	"strings"
	"time"

	"marketpulse/internal/domain/sector"
	"marketpulse/internal/domain/sentiment"
	"marketpulse/internal/domain/summary"
)

// Article is one news item supplied by the caller
type Article struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Text returns title and body as one document, title first on its own line
func (a Article) Text() string {
	title := strings.TrimSpace(a.Title)
	body := strings.TrimSpace(a.Body)
	switch {
	case title == "":
		return body
	case body == "":
		return title
	default:
		return title + "\n" + body
	}
}

// Extraction is the keyword/entity/ticker output for one text
type Extraction struct {
	Keywords []string `json:"keywords"`
	Entities []string `json:"entities"`
	Tickers  []string `json:"tickers"`
}

// Analysis is everything computed for a single article. Skipped articles carry
// the classifier fallbacks and take no part in batch or driver stages.
type Analysis struct {
	ArticleID string                    `json:"article_id"`
	Sentiment sentiment.Score           `json:"sentiment"`
	Sector    sector.Score              `json:"sector"`
	Keywords  []string                  `json:"keywords"`
	Entities  []string                  `json:"entities"`
	Tickers   []string                  `json:"tickers"`
	Summary   summary.ExtractiveSummary `json:"summary"`
	Skipped   bool                      `json:"skipped,omitempty"`
}

// Warning is a recovered problem reported next to partial results
type Warning struct {
	Code      string `json:"code"`
	ArticleID string `json:"article_id,omitempty"`
	DriverID  string `json:"driver_id,omitempty"`
	Message   string `json:"message"`
}
