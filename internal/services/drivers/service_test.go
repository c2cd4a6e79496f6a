package drivers

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/domain/driver"
	"marketpulse/internal/domain/news"
	"marketpulse/internal/domain/sector"
	"marketpulse/internal/domain/sentiment"
)

func analysis(id, sectorName string, label sentiment.Label, keywords ...string) news.Analysis {
	return news.Analysis{
		ArticleID: id,
		Sentiment: sentiment.Score{Dominant: label},
		Sector:    sector.Score{Primary: sectorName},
		Keywords:  keywords,
	}
}

func defaultOptions() Options {
	return Options{MinNewsPerDriver: 2, MaxDrivers: 5, MinKeywordFreq: 1}
}

func TestDetectEmpty(t *testing.T) {
	d := NewDetector(defaultOptions())

	out := d.Detect(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)

	out = d.Detect([]news.Analysis{analysis("a", "tech", sentiment.Positive, "apple")})
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestDetectSectorAndKeywordConflict(t *testing.T) {
	var in []news.Analysis
	for i := 0; i < 5; i++ {
		in = append(in, analysis(fmt.Sprintf("apple-%d", i), "tech", sentiment.Positive, "apple", "iphone", "record"))
	}
	for i := 0; i < 3; i++ {
		in = append(in, analysis(fmt.Sprintf("fed-%d", i), "finance", sentiment.Negative, "fed", "rates"))
	}

	out := NewDetector(defaultOptions()).Detect(in)
	require.Len(t, out, 2)

	assert.Equal(t, "tech", out[0].Label)
	assert.Equal(t, driver.KindSector, out[0].Kind)
	assert.Equal(t, []string{"apple-0", "apple-1", "apple-2", "apple-3", "apple-4"}, out[0].MemberIDs)
	assert.Equal(t, sentiment.Positive, out[0].DominantSentiment)
	assert.Equal(t, "tech", out[0].DominantSector)
	assert.Equal(t, 10.0, out[0].Score)
	assert.Equal(t, []string{"apple", "iphone", "record"}, out[0].Keywords)

	assert.Equal(t, "finance", out[1].Label)
	assert.Equal(t, sentiment.Negative, out[1].DominantSentiment)
	assert.Equal(t, 6.0, out[1].Score)
	assert.Equal(t, driver.NewID(driver.KindSector, "finance"), out[1].ID)
}

func TestDetectHigherScoringGroupClaimsArticles(t *testing.T) {
	in := []news.Analysis{
		analysis("t1", "tech", sentiment.Positive, "chip"),
		analysis("t2", "tech", sentiment.Positive, "chip"),
		analysis("t3", "tech", sentiment.Positive, "chip"),
		analysis("f1", "finance", sentiment.Negative, "chip"),
		analysis("f2", "finance", sentiment.Negative, "chip"),
	}

	out := NewDetector(defaultOptions()).Detect(in)
	require.Len(t, out, 2)
	assert.Equal(t, "tech", out[0].Label)
	// "chip" (5 x 1.0) outranks finance (2 x 2.0) and takes the remaining articles
	assert.Equal(t, "chip", out[1].Label)
	assert.Equal(t, driver.KindKeyword, out[1].Kind)
	assert.Equal(t, []string{"f1", "f2"}, out[1].MemberIDs)
	assert.Equal(t, "finance", out[1].DominantSector)
	assert.Equal(t, 2.0, out[1].Score)
}

func TestDetectKeywordDriverForUnclassified(t *testing.T) {
	in := []news.Analysis{
		analysis("a", sector.Unclassified, sentiment.Neutral, "merger"),
		analysis("b", sector.Unclassified, sentiment.Positive, "Merger"),
		analysis("c", sector.Unclassified, sentiment.Positive, "merger", "talks"),
	}

	out := NewDetector(defaultOptions()).Detect(in)
	require.Len(t, out, 1)
	assert.Equal(t, "merger", out[0].Label)
	assert.Equal(t, sector.Unclassified, out[0].DominantSector)
	assert.Equal(t, sentiment.Positive, out[0].DominantSentiment)
}

func TestDetectKeywordFrequencyMustExceedMinimum(t *testing.T) {
	in := []news.Analysis{
		analysis("a", sector.Unclassified, sentiment.Neutral, "merger"),
		analysis("b", sector.Unclassified, sentiment.Neutral, "merger"),
	}

	opts := defaultOptions()
	opts.MinKeywordFreq = 2
	assert.Empty(t, NewDetector(opts).Detect(in))
}

func TestDetectMaxDriversTieBreakByLabel(t *testing.T) {
	var in []news.Analysis
	for _, name := range []string{"materials", "healthcare", "energy"} {
		for i := 0; i < 2; i++ {
			in = append(in, analysis(fmt.Sprintf("%s-%d", name, i), name, sentiment.Neutral))
		}
	}

	opts := defaultOptions()
	opts.MaxDrivers = 2
	out := NewDetector(opts).Detect(in)
	require.Len(t, out, 2)
	assert.Equal(t, "energy", out[0].Label)
	assert.Equal(t, "healthcare", out[1].Label)
}

func TestDetectIgnoresSkipped(t *testing.T) {
	skipped := analysis("s", "tech", sentiment.Positive)
	skipped.Skipped = true
	in := []news.Analysis{analysis("a", "tech", sentiment.Positive), skipped}

	assert.Empty(t, NewDetector(defaultOptions()).Detect(in))
}

func TestDetectNeverReturnsUndersizedDrivers(t *testing.T) {
	sectors := []string{"tech", "finance", "energy", "tech", "materials", "finance", "tech", sector.Unclassified}
	terms := []string{"alpha", "beta", "gamma"}
	var in []news.Analysis
	for i := 0; i < 40; i++ {
		in = append(in, analysis(fmt.Sprintf("n-%d", i), sectors[i%len(sectors)], sentiment.Labels[i%3], terms[i%len(terms)], terms[(i/2)%len(terms)]))
	}

	for _, minNews := range []int{1, 2, 3, 5, 8} {
		opts := Options{MinNewsPerDriver: minNews, MaxDrivers: 10, MinKeywordFreq: 1}
		out := NewDetector(opts).Detect(in)

		seen := make(map[string]bool)
		for _, d := range out {
			assert.GreaterOrEqual(t, d.Size(), minNews)
			for _, id := range d.MemberIDs {
				assert.False(t, seen[id], "article %s in two drivers", id)
				seen[id] = true
			}
		}
		for i := 1; i < len(out); i++ {
			assert.GreaterOrEqual(t, out[i-1].Score, out[i].Score)
		}
	}
}

func TestMajoritySentiment(t *testing.T) {
	tests := []struct {
		name     string
		labels   []sentiment.Label
		expected sentiment.Label
	}{
		{"empty", nil, sentiment.Neutral},
		{"clear positive", []sentiment.Label{sentiment.Positive, sentiment.Positive, sentiment.Negative}, sentiment.Positive},
		{"positive negative tie", []sentiment.Label{sentiment.Positive, sentiment.Negative}, sentiment.Neutral},
		{"neutral wins outright", []sentiment.Label{sentiment.Neutral, sentiment.Neutral, sentiment.Negative}, sentiment.Neutral},
		{"negative over smaller tie", []sentiment.Label{sentiment.Negative, sentiment.Negative, sentiment.Positive, sentiment.Neutral}, sentiment.Negative},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MajoritySentiment(tt.labels))
		})
	}
}
