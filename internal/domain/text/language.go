package text

import "sort"

// DefaultLanguage is used when no profile shares a stop word with the text.
const DefaultLanguage = "en"

// DetectLanguage picks the profile whose stop words overlap most with tokens.
// Ties resolve to the alphabetically first code; no overlap yields fallback.
func DetectLanguage(tokens []string, profiles map[string]map[string]struct{}, fallback string) string {
	codes := make([]string, 0, len(profiles))
	for code := range profiles {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	best, bestHits := fallback, 0
	for _, code := range codes {
		stop := profiles[code]
		hits := 0
		for _, tok := range tokens {
			if _, ok := stop[tok]; ok {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = code, hits
		}
	}
	return best
}
