package drivers

import (
	"sort"

	"marketpulse/internal/domain/driver"
	"marketpulse/internal/domain/news"
	"marketpulse/internal/domain/sector"
	"marketpulse/internal/domain/sentiment"
	"marketpulse/internal/domain/text"
	"marketpulse/pkg/logger"
)

const driverKeywords = 5

// Options control grouping
type Options struct {
	MinNewsPerDriver int
	MaxDrivers       int
	MinKeywordFreq   int
}

// Detector clusters scored articles into thematic drivers
type Detector struct {
	opts Options
	log  *logger.Logger
}

// NewDetector creates a detector
func NewDetector(opts Options) *Detector {
	if opts.MinNewsPerDriver < 1 {
		opts.MinNewsPerDriver = 1
	}
	return &Detector{
		opts: opts,
		log:  logger.Get().With("component", "driver_detector"),
	}
}

type group struct {
	kind    driver.Kind
	label   string
	members []int
	score   float64
}

// Detect groups analyses by primary sector and by shared keyword/entity.
// Candidates are taken by (score desc, label asc); each claims the articles no
// earlier candidate took and is kept only if it still has enough members. The
// survivors are re-scored, re-ranked and cut to MaxDrivers. Skipped analyses
// are ignored. No qualifying group yields an empty, non-nil slice.
func (d *Detector) Detect(analyses []news.Analysis) []driver.Driver {
	var usable []news.Analysis
	for _, a := range analyses {
		if !a.Skipped {
			usable = append(usable, a)
		}
	}

	candidates := append(d.sectorGroups(usable), d.keywordGroups(usable)...)
	sortGroups(candidates)

	assigned := make([]bool, len(usable))
	var accepted []group
	for _, c := range candidates {
		var free []int
		for _, m := range c.members {
			if !assigned[m] {
				free = append(free, m)
			}
		}
		if len(free) < d.opts.MinNewsPerDriver {
			continue
		}
		for _, m := range free {
			assigned[m] = true
		}
		accepted = append(accepted, group{
			kind:    c.kind,
			label:   c.label,
			members: free,
			score:   float64(len(free)) * c.kind.Weight(),
		})
	}

	sortGroups(accepted)
	if d.opts.MaxDrivers > 0 && len(accepted) > d.opts.MaxDrivers {
		accepted = accepted[:d.opts.MaxDrivers]
	}

	out := make([]driver.Driver, 0, len(accepted))
	for _, g := range accepted {
		out = append(out, d.build(g, usable))
	}

	d.log.Debugw("Drivers detected",
		"articles", len(usable),
		"candidates", len(candidates),
		"drivers", len(out),
	)
	return out
}

func (d *Detector) sectorGroups(usable []news.Analysis) []group {
	bySector := make(map[string][]int)
	for i, a := range usable {
		if a.Sector.Primary == "" || a.Sector.Primary == sector.Unclassified {
			continue
		}
		bySector[a.Sector.Primary] = append(bySector[a.Sector.Primary], i)
	}

	var out []group
	for name, members := range bySector {
		if len(members) < d.opts.MinNewsPerDriver {
			continue
		}
		out = append(out, group{
			kind:    driver.KindSector,
			label:   name,
			members: members,
			score:   float64(len(members)) * driver.KindSector.Weight(),
		})
	}
	return out
}

// keywordGroups collects every normalized keyword or entity whose article
// frequency exceeds MinKeywordFreq
func (d *Detector) keywordGroups(usable []news.Analysis) []group {
	byTerm := make(map[string][]int)
	for i, a := range usable {
		for term := range articleTerms(a) {
			byTerm[term] = append(byTerm[term], i)
		}
	}

	var out []group
	for term, members := range byTerm {
		if len(members) <= d.opts.MinKeywordFreq || len(members) < d.opts.MinNewsPerDriver {
			continue
		}
		out = append(out, group{
			kind:    driver.KindKeyword,
			label:   term,
			members: members,
			score:   float64(len(members)) * driver.KindKeyword.Weight(),
		})
	}
	return out
}

func articleTerms(a news.Analysis) map[string]struct{} {
	terms := make(map[string]struct{}, len(a.Keywords)+len(a.Entities))
	for _, list := range [][]string{a.Keywords, a.Entities} {
		for _, raw := range list {
			if term := text.NormalizePhrase(raw); term != "" {
				terms[term] = struct{}{}
			}
		}
	}
	return terms
}

// sortGroups orders by score desc, label asc, sector before keyword
func sortGroups(gs []group) {
	sort.SliceStable(gs, func(i, j int) bool {
		if gs[i].score != gs[j].score {
			return gs[i].score > gs[j].score
		}
		if gs[i].label != gs[j].label {
			return gs[i].label < gs[j].label
		}
		return gs[i].kind.Weight() > gs[j].kind.Weight()
	})
}

func (d *Detector) build(g group, usable []news.Analysis) driver.Driver {
	// member indexes are already ascending, i.e. input order
	ids := make([]string, len(g.members))
	labels := make([]sentiment.Label, len(g.members))
	sectors := make([]string, len(g.members))
	for i, m := range g.members {
		ids[i] = usable[m].ArticleID
		labels[i] = usable[m].Sentiment.Dominant
		sectors[i] = usable[m].Sector.Primary
	}

	dominantSector := g.label
	if g.kind != driver.KindSector {
		dominantSector = majoritySector(sectors)
	}

	return driver.Driver{
		ID:                driver.NewID(g.kind, g.label),
		Label:             g.label,
		Kind:              g.kind,
		MemberIDs:         ids,
		DominantSentiment: MajoritySentiment(labels),
		DominantSector:    dominantSector,
		Score:             g.score,
		Keywords:          topTerms(g.members, usable),
	}
}

// MajoritySentiment returns the most frequent label; any tie for first place is neutral
func MajoritySentiment(labels []sentiment.Label) sentiment.Label {
	counts := make(map[sentiment.Label]int, len(sentiment.Labels))
	for _, l := range labels {
		counts[l]++
	}
	best, bestCount, tied := sentiment.Neutral, 0, false
	for _, l := range sentiment.Labels {
		switch c := counts[l]; {
		case c > bestCount:
			best, bestCount, tied = l, c, false
		case c == bestCount && c > 0:
			tied = true
		}
	}
	if tied || bestCount == 0 {
		return sentiment.Neutral
	}
	return best
}

// majoritySector returns the most frequent sector, ties to the alphabetically first
func majoritySector(sectors []string) string {
	counts := make(map[string]int)
	for _, s := range sectors {
		counts[s]++
	}
	best, bestCount := sector.Unclassified, 0
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if counts[name] > bestCount {
			best, bestCount = name, counts[name]
		}
	}
	return best
}

// topTerms returns the most common member keywords, by article frequency then name
func topTerms(members []int, usable []news.Analysis) []string {
	freq := make(map[string]int)
	for _, m := range members {
		for term := range articleTerms(usable[m]) {
			freq[term]++
		}
	}
	terms := make([]string, 0, len(freq))
	for term := range freq {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > driverKeywords {
		terms = terms[:driverKeywords]
	}
	return terms
}
