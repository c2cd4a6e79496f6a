package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"marketpulse/internal/domain/dictionary"
	"marketpulse/internal/domain/sector"
)

// DictionaryCollector exports the active dictionary snapshot on every scrape
type DictionaryCollector struct {
	store *dictionary.Store

	// Descriptors
	info     *prometheus.Desc
	loadedAt *prometheus.Desc
	terms    *prometheus.Desc
}

// NewDictionaryCollector creates a collector over store
func NewDictionaryCollector(store *dictionary.Store) *DictionaryCollector {
	return &DictionaryCollector{
		store: store,
		info: prometheus.NewDesc(
			"marketpulse_dictionary_info",
			"Active dictionary version (always 1)",
			[]string{"version"}, nil,
		),
		loadedAt: prometheus.NewDesc(
			"marketpulse_dictionary_loaded_timestamp",
			"Unix timestamp of the active dictionary snapshot",
			nil, nil,
		),
		terms: prometheus.NewDesc(
			"marketpulse_dictionary_terms",
			"Number of compiled terms per lexicon",
			[]string{"lexicon"}, // lexicon: risk|opportunity|sector name
			nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *DictionaryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.info
	ch <- c.loadedAt
	ch <- c.terms
}

// Collect implements prometheus.Collector
func (c *DictionaryCollector) Collect(ch chan<- prometheus.Metric) {
	snap := c.store.Current()

	ch <- prometheus.MustNewConstMetric(c.info, prometheus.GaugeValue, 1, snap.Version())
	ch <- prometheus.MustNewConstMetric(c.loadedAt, prometheus.GaugeValue, float64(snap.LoadedAt().Unix()))

	ch <- prometheus.MustNewConstMetric(c.terms, prometheus.GaugeValue, float64(snap.Risk().Len()), "risk")
	ch <- prometheus.MustNewConstMetric(c.terms, prometheus.GaugeValue, float64(snap.Opportunity().Len()), "opportunity")
	for _, name := range sector.Names {
		ch <- prometheus.MustNewConstMetric(c.terms, prometheus.GaugeValue, float64(snap.Sector(name).Len()), name)
	}
}
