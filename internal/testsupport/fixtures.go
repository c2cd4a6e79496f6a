package testsupport

import (
	"fmt"
	"testing"
	"time"

	"marketpulse/internal/domain/dictionary"
	"marketpulse/internal/domain/news"
	"marketpulse/internal/domain/portfolio"
)

// Snapshot compiles the embedded default dictionary or fails the test
func Snapshot(t testing.TB) *dictionary.Snapshot {
	t.Helper()

	doc, err := dictionary.LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded dictionary: %v", err)
	}
	snap, err := dictionary.NewSnapshot(doc)
	if err != nil {
		t.Fatalf("compile embedded dictionary: %v", err)
	}
	return snap
}

// Store returns a store over the embedded default dictionary
func Store(t testing.TB) *dictionary.Store {
	t.Helper()

	store, err := dictionary.NewStoreFromFile("")
	if err != nil {
		t.Fatalf("create dictionary store: %v", err)
	}
	return store
}

var baseTime = time.Date(2026, 10, 1, 14, 0, 0, 0, time.UTC)

var appleBodies = []string{
	"Apple announces record iPhone growth in the holiday quarter. Revenue from the iPhone line climbed 12% to $69.7 billion. Chief executive Tim Cook said demand for the new models was strong in every region.",
	"Apple reported record iPhone sales as upgrades to the latest smartphone beat forecasts. Analysts at Morgan Stanley lifted their targets after the strong results. Services revenue also reached a new high of $24 billion.",
	"Shipments of the iPhone grew 9% year over year, giving Apple a record share of the premium smartphone market. The company said growth was strongest in India and Europe. Investors welcomed the robust numbers.",
	"Apple shares gained after the company posted record growth for its iPhone business. Software and services added to the strong quarter. Tim Cook thanked developers for building on the App Store.",
	"Demand for the iPhone drove record growth at Apple this quarter, with sales up 11% to $71 billion. Suppliers in Taiwan said orders for chips stayed strong. Apple plans more devices next year.",
}

var fedBodies = []string{
	"The Federal Reserve raises interest rates by 25 basis points to fight inflation. Officials warned that lending conditions for banks will stay tight through the next meeting. Markets turned weaker after the statement.",
	"The Fed raises interest rates again as inflation stays above target. Treasury yields climbed and bank stocks fell on the decision. Chair Jerome Powell warned that further tightening remains on the table.",
	"Investors sold bonds after the Fed raises interest rates for a third time this year. Mortgage lenders and banks warned of weaker lending as borrowing costs reach 5.5%. The statement gave no sign of a pause.",
}

// AppleArticle returns the i-th positive technology article
func AppleArticle(i int) news.Article {
	return news.Article{
		ID:        fmt.Sprintf("apple-%d", i+1),
		Title:     "Apple announces record iPhone growth",
		Body:      appleBodies[i%len(appleBodies)],
		Source:    "wire",
		Timestamp: baseTime.Add(time.Duration(i) * time.Minute),
	}
}

// FedArticle returns the i-th negative monetary policy article
func FedArticle(i int) news.Article {
	return news.Article{
		ID:        fmt.Sprintf("fed-%d", i+1),
		Title:     "Fed raises interest rates",
		Body:      fedBodies[i%len(fedBodies)],
		Source:    "wire",
		Timestamp: baseTime.Add(time.Hour + time.Duration(i)*time.Minute),
	}
}

// MarketArticles returns five Apple articles followed by three Fed articles
func MarketArticles() []news.Article {
	out := make([]news.Article, 0, 8)
	for i := 0; i < 5; i++ {
		out = append(out, AppleArticle(i))
	}
	for i := 0; i < 3; i++ {
		out = append(out, FedArticle(i))
	}
	return out
}

// Portfolio returns a small book with one name for each matching tier
func Portfolio() []portfolio.Item {
	return []portfolio.Item{
		{ID: "asset-aapl", Name: "Apple Inc.", Symbol: "AAPL", AssetType: "equity"},
		{ID: "asset-jpm", Name: "JPMorgan Chase & Co.", Symbol: "JPM", AssetType: "equity", Sector: "finance"},
		{ID: "asset-xom", Name: "Exxon Mobil Corp", Symbol: "XOM", AssetType: "equity"},
		{ID: "asset-msft", Name: "Microsoft Corporation", Symbol: "MSFT", AssetType: "equity"},
	}
}
