package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/domain/driver"
	"marketpulse/internal/domain/news"
	"marketpulse/internal/domain/scenario"
	"marketpulse/internal/domain/sector"
	"marketpulse/internal/domain/sentiment"
	"marketpulse/internal/testsupport"
	"marketpulse/pkg/templates"
)

func testDriver(label, sectorName string, s sentiment.Label, members int) driver.Driver {
	ids := make([]string, members)
	for i := range ids {
		ids[i] = label + "-" + string(rune('a'+i))
	}
	return driver.Driver{
		ID:                driver.NewID(driver.KindSector, label),
		Label:             label,
		Kind:              driver.KindSector,
		MemberIDs:         ids,
		DominantSentiment: s,
		DominantSector:    sectorName,
		Score:             float64(members) * driver.KindSector.Weight(),
		Keywords:          []string{"alpha", "beta"},
	}
}

func TestGenerateTechDriverEmitsOpportunityOnly(t *testing.T) {
	g := NewGenerator(testsupport.Snapshot(t), nil, Options{MinConfidence: 0.3})

	var members []news.Article
	for i := 0; i < 5; i++ {
		members = append(members, testsupport.AppleArticle(i))
	}
	set, err := g.Generate(testDriver("tech", "tech", sentiment.Positive, 5), members)
	require.NoError(t, err)

	assert.True(t, set.Has(scenario.Base))
	assert.True(t, set.Has(scenario.Opportunity))
	assert.False(t, set.Has(scenario.Risk))
	assert.Equal(t, scenario.Base, set[0].Variant)

	opp, _ := set.Find(scenario.Opportunity)
	assert.True(t, opp.Complete())
	assert.Contains(t, opp.Description, "record")
}

func TestGenerateFinanceDriverEmitsRiskOnly(t *testing.T) {
	g := NewGenerator(testsupport.Snapshot(t), nil, Options{MinConfidence: 0.3})

	var members []news.Article
	for i := 0; i < 3; i++ {
		members = append(members, testsupport.FedArticle(i))
	}
	set, err := g.Generate(testDriver("finance", "finance", sentiment.Negative, 3), members)
	require.NoError(t, err)

	assert.True(t, set.Has(scenario.Base))
	assert.True(t, set.Has(scenario.Risk))
	assert.False(t, set.Has(scenario.Opportunity))

	risk, _ := set.Find(scenario.Risk)
	assert.True(t, risk.Complete())
	assert.Contains(t, risk.Triggers, "Escalating coverage of inflation")
}

func TestGenerateBaseAlwaysComplete(t *testing.T) {
	g := NewGenerator(testsupport.Snapshot(t), nil, Options{MinConfidence: 0.3})

	sectors := append([]string{sector.Unclassified, "unknown"}, sector.Names...)
	for _, name := range sectors {
		for _, label := range sentiment.Labels {
			set, err := g.Generate(testDriver(name, name, label, 2), nil)
			require.NoError(t, err)

			base, ok := set.Find(scenario.Base)
			require.True(t, ok, name)
			assert.True(t, base.Complete(), "%s/%s: %+v", name, label, base)
			assert.GreaterOrEqual(t, len(base.Assumptions), 2)
			assert.True(t, base.Confidence >= 0 && base.Confidence <= 1)
		}
	}
}

func TestGenerateNeutralWithoutTermsIsBaseOnly(t *testing.T) {
	g := NewGenerator(testsupport.Snapshot(t), nil, Options{MinConfidence: 0.3})

	members := []news.Article{{ID: "a", Body: "Output was steady."}, {ID: "b", Body: "Prices were unchanged."}}
	set, err := g.Generate(testDriver("energy", "energy", sentiment.Neutral, 2), members)
	require.NoError(t, err)
	assert.Len(t, set, 1)
}

func TestGenerateKeywordTriggersVariant(t *testing.T) {
	g := NewGenerator(testsupport.Snapshot(t), nil, Options{MinConfidence: 0.3})

	members := []news.Article{{ID: "a", Body: "The lawsuit was filed on Monday."}, {ID: "b", Body: "A partnership was signed."}}
	set, err := g.Generate(testDriver("energy", "energy", sentiment.Neutral, 2), members)
	require.NoError(t, err)
	assert.True(t, set.Has(scenario.Risk))
	assert.True(t, set.Has(scenario.Opportunity))
}

func TestGenerateMinConfidenceNeverDropsBase(t *testing.T) {
	g := NewGenerator(testsupport.Snapshot(t), nil, Options{MinConfidence: 0.99})

	set, err := g.Generate(testDriver("tech", "tech", sentiment.Positive, 2), nil)
	require.NoError(t, err)
	require.Len(t, set, 1)
	assert.Equal(t, scenario.Base, set[0].Variant)
}

func TestEmits(t *testing.T) {
	tests := []struct {
		variant  scenario.Variant
		label    sentiment.Label
		risk     bool
		opp      bool
		expected bool
	}{
		{scenario.Base, sentiment.Neutral, false, false, true},
		{scenario.Risk, sentiment.Negative, false, false, true},
		{scenario.Risk, sentiment.Positive, true, false, true},
		{scenario.Risk, sentiment.Positive, false, true, false},
		{scenario.Opportunity, sentiment.Positive, false, false, true},
		{scenario.Opportunity, sentiment.Negative, false, true, true},
		{scenario.Opportunity, sentiment.Neutral, true, false, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Emits(tt.variant, tt.label, tt.risk, tt.opp), "%s %s", tt.variant, tt.label)
	}
}

func TestConfidence(t *testing.T) {
	assert.InDelta(t, 0.866122, Confidence(10, 5, 1.0), 1e-6)
	assert.InDelta(t, 0.4, Confidence(0, 0, 1.0), 1e-9)

	prev := 0.0
	for members := 1; members < 50; members++ {
		c := Confidence(float64(members)*2, members, 1.0)
		assert.GreaterOrEqual(t, c, prev)
		assert.LessOrEqual(t, c, 1.0)
		assert.Less(t, Confidence(float64(members)*2, members, 0.85), c)
		prev = c
	}
	assert.Equal(t, 1.0, Confidence(100, 100, 5))
}

func TestGenerateFallsBackOnEmptyBlocks(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "scenarios", "base.tmpl")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	content := `{{define "title"}}  {{end}}{{define "description"}}{{end}}{{define "assumptions"}}- only one{{end}}` +
		`{{define "risks"}}{{end}}{{define "invalidators"}}{{end}}{{define "timeframe"}}{{end}}` +
		`{{define "market_impact"}}{{end}}{{define "actions"}}{{end}}{{define "triggers"}}{{end}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reg, err := templates.NewRegistry(base)
	require.NoError(t, err)

	g := NewGenerator(testsupport.Snapshot(t), reg, Options{})
	set, err := g.Generate(testDriver("real_estate", "real_estate", sentiment.Neutral, 2), nil)
	require.NoError(t, err)
	require.Len(t, set, 1)

	sc := set[0]
	assert.True(t, sc.Complete())
	assert.Equal(t, "real estate outlook", sc.Title)
	assert.Equal(t, []string{"only one", "The theme persists at its current intensity"}, sc.Assumptions)
	assert.Equal(t, "3-6 months", sc.Timeframe)
}

func TestGenerateMissingTemplateIsAnError(t *testing.T) {
	reg, err := templates.NewRegistry(t.TempDir())
	require.NoError(t, err)

	g := NewGenerator(testsupport.Snapshot(t), reg, Options{})
	_, err = g.Generate(testDriver("tech", "tech", sentiment.Neutral, 2), nil)
	assert.Error(t, err)
}

func TestCheckTemplates(t *testing.T) {
	require.NoError(t, CheckTemplates(templates.Get()))

	base := t.TempDir()
	for _, v := range scenario.Variants {
		path := filepath.Join(base, filepath.FromSlash(TemplateID(v))+".tmpl")
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(`{{define "title"}}x{{end}}`), 0o644))
	}
	reg, err := templates.NewRegistry(base)
	require.NoError(t, err)

	err = CheckTemplates(reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenarios/base")
	assert.Contains(t, err.Error(), "market_impact")
}
