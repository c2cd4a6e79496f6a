package sector

import (
	"sort"

	"marketpulse/internal/domain/sentiment"
)

// Names are the fixed sector dictionaries, in ascending order
var Names = []string{
	"consumer",
	"energy",
	"finance",
	"healthcare",
	"industrial",
	"materials",
	"real_estate",
	"tech",
}

// Unclassified marks text that matched no sector keyword
const Unclassified = "unclassified"

// IsKnown reports whether name is one of Names
func IsKnown(name string) bool {
	i := sort.SearchStrings(Names, name)
	return i < len(Names) && Names[i] == name
}

// Ranked is one sector with its share of the matched keyword weight
type Ranked struct {
	Sector string  `json:"sector"`
	Score  float64 `json:"score"`
}

// Score is the immutable sector classification of one text
type Score struct {
	Ranking    []Ranked `json:"ranking"`
	Primary    string   `json:"primary_sector"`
	Confidence float64  `json:"confidence"`
}

// FromWeights turns raw per-sector weights into a ranked Score. Scores are shares
// of the total weight. Ranking is (score desc, name asc) and cut to topN (all when
// topN <= 0). Confidence is rank0 - rank1, with a missing rank1 counted as zero.
func FromWeights(weights map[string]float64, topN int) Score {
	var total float64
	names := make([]string, 0, len(weights))
	for name, w := range weights {
		if w > 0 {
			names = append(names, name)
		}
	}
	// sum in name order so the float result does not depend on map iteration
	sort.Strings(names)
	for _, name := range names {
		total += weights[name]
	}
	if total <= 0 {
		return Score{Primary: Unclassified}
	}

	ranking := make([]Ranked, 0, len(names))
	for _, name := range names {
		ranking = append(ranking, Ranked{Sector: name, Score: sentiment.Round(weights[name] / total)})
	}
	Sort(ranking)

	top := ranking[0].Score
	second := 0.0
	if len(ranking) > 1 {
		second = ranking[1].Score
	}
	if topN > 0 && len(ranking) > topN {
		ranking = ranking[:topN]
	}

	return Score{
		Ranking:    ranking,
		Primary:    ranking[0].Sector,
		Confidence: sentiment.Round(top - second),
	}
}

// Sort orders by score desc, then name asc
func Sort(r []Ranked) {
	sort.SliceStable(r, func(i, j int) bool {
		if r[i].Score != r[j].Score {
			return r[i].Score > r[j].Score
		}
		return r[i].Sector < r[j].Sector
	})
}
