package dictionary

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/domain/sector"
	"marketpulse/internal/domain/sentiment"
	"marketpulse/internal/domain/text"
	"marketpulse/pkg/errors"
)

func minimalDocument(version string) *Document {
	sectors := make(map[string]Terms, len(sector.Names))
	for _, name := range sector.Names {
		sectors[name] = Terms{name: 1}
	}
	sectors["tech"] = Terms{"apple": 2, "chip": 1}
	return &Document{
		Version:   version,
		Languages: map[string]Language{"en": {StopWords: []string{"the", "a"}}},
		Sentiment: SentimentTables{
			Positive: Terms{"growth": 1},
			Negative: Terms{"loss": 1},
			Neutral:  Terms{"steady": 1},
		},
		Sectors:        sectors,
		Risk:           []string{"lawsuit"},
		Opportunity:    []string{"launch"},
		TickerStoplist: []string{"ceo"},
	}
}

func TestLoadEmbedded(t *testing.T) {
	doc, err := LoadEmbedded()
	require.NoError(t, err)

	snap, err := NewSnapshot(doc)
	require.NoError(t, err)

	assert.NotEmpty(t, snap.Version())
	assert.Equal(t, []string{"en", "ru"}, snap.Languages())
	for _, name := range sector.Names {
		assert.Greater(t, snap.Sector(name).Len(), 0, name)
	}
	for _, l := range sentiment.Labels {
		assert.Greater(t, snap.Sentiment(l).Len(), 0, string(l))
	}
	assert.True(t, snap.Risk().Contains(text.Tokenize("a rate hike is coming")))
	assert.True(t, snap.Opportunity().Contains(text.Tokenize("record quarter")))
	assert.True(t, snap.IsTickerStopword("CEO"))
	assert.False(t, snap.IsTickerStopword("AAPL"))
	assert.True(t, snap.IsDomainKeyword("iphone"))
	assert.True(t, snap.IsStopWord("en", "the"))
	assert.Equal(t, "ru", snap.DetectLanguage(text.Tokenize("Банк сообщил, что ставка не изменится и рост будет")))
	assert.Equal(t, "en", snap.DetectLanguage(text.Tokenize("The bank said that rates will stay")))
}

func TestValidateRejectsPartialDocuments(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Document)
	}{
		{"missing version", func(d *Document) { d.Version = "" }},
		{"no languages", func(d *Document) { d.Languages = nil }},
		{"empty stop words", func(d *Document) { d.Languages["en"] = Language{} }},
		{"empty positive", func(d *Document) { d.Sentiment.Positive = Terms{} }},
		{"missing neutral", func(d *Document) { d.Sentiment.Neutral = nil }},
		{"zero weight", func(d *Document) { d.Sentiment.Negative = Terms{"loss": 0} }},
		{"missing sector", func(d *Document) { delete(d.Sectors, "energy") }},
		{"empty sector", func(d *Document) { d.Sectors["finance"] = Terms{} }},
		{"unknown sector", func(d *Document) { d.Sectors["crypto"] = Terms{"bitcoin": 1} }},
		{"no risk", func(d *Document) { d.Risk = nil }},
		{"blank opportunity", func(d *Document) { d.Opportunity = []string{""} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := minimalDocument("v1")
			tt.mutate(doc)

			err := doc.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrConfig))
			assert.Equal(t, errors.CodeConfig, errors.CodeOf(err))
		})
	}
}

func TestNewSnapshotRejectsTermsThatNormalizeAway(t *testing.T) {
	doc := minimalDocument("v1")
	doc.Risk = []string{"!!!"}

	_, err := NewSnapshot(doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfig))
}

func TestStoreReloadSwapsAtomically(t *testing.T) {
	store, err := NewStore(minimalDocument("v1"))
	require.NoError(t, err)

	before := store.Current()
	require.NoError(t, store.Reload(minimalDocument("v2")))

	assert.Equal(t, "v2", store.Version())
	assert.Equal(t, "v1", before.Version(), "a held snapshot is never mutated")
}

func TestStoreReloadFailureKeepsPreviousSnapshot(t *testing.T) {
	store, err := NewStore(minimalDocument("v1"))
	require.NoError(t, err)
	active := store.Current()

	bad := minimalDocument("v2")
	delete(bad.Sectors, "tech")

	err = store.Reload(bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfig))
	assert.Same(t, active, store.Current())
	assert.Equal(t, "v1", store.Version())
}

func TestNewStoreFailsOnBadDocument(t *testing.T) {
	doc := minimalDocument("v1")
	doc.Sentiment.Positive = nil

	_, err := NewStore(doc)
	assert.True(t, errors.Is(err, errors.ErrConfig))
}

func TestStoreConcurrentReadersDuringReload(t *testing.T) {
	store, err := NewStore(minimalDocument("v1"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				snap := store.Current()
				v := snap.Version()
				assert.Contains(t, []string{"v1", "v2", "v3"}, v)
				assert.NotNil(t, snap.Sector("tech"))
			}
		}()
	}
	for _, v := range []string{"v2", "v3"} {
		require.NoError(t, store.Reload(minimalDocument(v)))
	}
	wg.Wait()
}

const tomlDoc = `
version = "t1"
risk = ["lawsuit"]
opportunity = ["launch"]

[languages.en]
stop_words = ["the", "a"]

[sentiment.positive]
growth = 1.0
[sentiment.negative]
loss = 1.0
[sentiment.neutral]
steady = 1.0

[sectors.consumer]
retail = 1.0
[sectors.energy]
oil = 1.0
[sectors.finance]
"federal reserve" = 2.0
[sectors.healthcare]
drug = 1.0
[sectors.industrial]
factory = 1.0
[sectors.materials]
steel = 1.0
[sectors.real_estate]
housing = 1.0
[sectors.tech]
apple = 2.0
`

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()

	tomlPath := filepath.Join(dir, "dict.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(tomlDoc), 0o600))
	doc, err := Load(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, "t1", doc.Version)
	assert.Equal(t, 2.0, doc.Sectors["finance"]["federal reserve"])

	jsonPath := filepath.Join(dir, "dict.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"version":"j1","unexpected":true}`), 0o600))
	_, err = Load(jsonPath)
	assert.True(t, errors.Is(err, errors.ErrConfig), "unknown fields are rejected")

	_, err = Load(filepath.Join(dir, "dict.ini"))
	assert.True(t, errors.Is(err, errors.ErrConfig))

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.Is(err, errors.ErrConfig))
}

func TestReloadFile(t *testing.T) {
	store, err := NewStore(minimalDocument("v1"))
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "dict.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: broken\nsentiment: [\n"), 0o600))

	err = store.ReloadFile(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfig))
	assert.Equal(t, "v1", store.Version())

	require.NoError(t, os.WriteFile(path, []byte(tomlDoc), 0o600))
	tomlPath := filepath.Join(dir, "dict.toml")
	require.NoError(t, os.Rename(path, tomlPath))
	require.NoError(t, store.ReloadFile(tomlPath))
	assert.Equal(t, "t1", store.Version())
}
