package summary

// Sentence is one candidate or selected sentence with its scoring inputs
type Sentence struct {
	Text         string  `json:"text"`
	Index        int     `json:"index"`
	EntityCount  int     `json:"entity_count"`
	KeywordCount int     `json:"keyword_count"`
	Score        float64 `json:"score"`
}

// ExtractiveSummary is the per-article selection, sentences in document order
type ExtractiveSummary struct {
	ArticleID    string     `json:"article_id"`
	Sentences    []Sentence `json:"sentences"`
	Text         string     `json:"text"`
	TotalChars   int        `json:"total_chars"`
	EntityCount  int        `json:"entity_count"`
	KeywordCount int        `json:"keyword_count"`
}

// Empty reports whether no sentence was selected
func (s ExtractiveSummary) Empty() bool {
	return len(s.Sentences) == 0
}

// BatchSummary joins several extractive summaries under one char budget
type BatchSummary struct {
	Number          int      `json:"batch_number"`
	ArticleIDs      []string `json:"article_ids"`
	Text            string   `json:"text"`
	CharCount       int      `json:"char_count"`
	EstimatedTokens int      `json:"estimated_tokens"`
}

// MetaSentence is a sentence kept by the cross-batch aggregator
type MetaSentence struct {
	Text  string `json:"text"`
	Batch int    `json:"batch_number"`
	Score int    `json:"score"`
}

// MetaSummary is the deduplicated cross-batch summary, in stream order
type MetaSummary struct {
	Sentences       []MetaSentence `json:"sentences"`
	Text            string         `json:"text"`
	TotalChars      int            `json:"total_chars"`
	EstimatedTokens int            `json:"estimated_tokens"`
}
