package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marketpulse/pkg/errors"
)

var (
	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketpulse_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketpulse_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"worker"},
	)

	WorkerLastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marketpulse_worker_last_run_timestamp",
			Help: "Unix timestamp of last worker execution",
		},
		[]string{"worker"},
	)

	// Pipeline metrics
	Articles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketpulse_articles_total",
			Help: "Articles seen by the pipeline",
		},
		[]string{"status"}, // status: analyzed|skipped
	)

	Drivers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketpulse_drivers_total",
			Help: "Drivers detected",
		},
	)

	Scenarios = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketpulse_scenarios_total",
			Help: "Scenarios generated by variant",
		},
		[]string{"variant"},
	)

	Mappings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketpulse_asset_mappings_total",
			Help: "Asset mappings produced by match type",
		},
		[]string{"match_type"},
	)

	Warnings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketpulse_warnings_total",
			Help: "Recovered problems reported as warnings",
		},
		[]string{"code"},
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketpulse_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"stage"}, // stage: map|summarize|drivers|scenarios|total
	)

	// Dictionary metrics
	DictionaryReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketpulse_dictionary_reloads_total",
			Help: "Dictionary reload attempts",
		},
		[]string{"status"}, // status: success|error
	)

	// Cache metrics
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketpulse_report_cache_lookups_total",
			Help: "Report cache lookups",
		},
		[]string{"result"}, // result: hit|miss|error
	)

	// Stream metrics
	StreamMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketpulse_stream_messages_total",
			Help: "Stream requests consumed and reports produced",
		},
		[]string{"direction", "status"}, // direction: in|out, status: ok|decode_error|error
	)
)

var registerOnce sync.Once

// Init registers all metrics with Prometheus. Safe to call more than once.
func Init(extra ...prometheus.Collector) {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			WorkerExecutions,
			WorkerDuration,
			WorkerLastRun,
			Articles,
			Drivers,
			Scenarios,
			Mappings,
			Warnings,
			StageDuration,
			DictionaryReloads,
			CacheLookups,
			StreamMessages,
		)
	})
	for _, c := range extra {
		register(c)
	}
}

// register replaces a previously registered collector with the same descriptors
func register(c prometheus.Collector) {
	err := prometheus.Register(c)
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		prometheus.Unregister(are.ExistingCollector)
		err = prometheus.Register(c)
	}
	if err != nil {
		panic(err)
	}
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordWorkerExecution records a worker execution
func RecordWorkerExecution(worker string, duration time.Duration, err error) {
	WorkerExecutions.WithLabelValues(worker, status(err)).Inc()
	WorkerDuration.WithLabelValues(worker).Observe(duration.Seconds())
	WorkerLastRun.WithLabelValues(worker).SetToCurrentTime()
}

// RecordStage records how long a pipeline stage took
func RecordStage(stage string, duration time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordArticles records analyzed and skipped article counts
func RecordArticles(analyzed, skipped int) {
	Articles.WithLabelValues("analyzed").Add(float64(analyzed))
	Articles.WithLabelValues("skipped").Add(float64(skipped))
}

// RecordDriver records one driver with its scenarios and mappings
func RecordDriver(variants []string, matchTypes []string) {
	Drivers.Inc()
	for _, v := range variants {
		Scenarios.WithLabelValues(v).Inc()
	}
	for _, m := range matchTypes {
		Mappings.WithLabelValues(m).Inc()
	}
}

// RecordWarning counts a warning by code
func RecordWarning(code string) {
	Warnings.WithLabelValues(code).Inc()
}

// RecordDictionaryReload records a reload attempt
func RecordDictionaryReload(err error) {
	DictionaryReloads.WithLabelValues(status(err)).Inc()
}

// RecordCacheLookup records a report cache lookup result (hit|miss|error)
func RecordCacheLookup(result string) {
	CacheLookups.WithLabelValues(result).Inc()
}

// RecordStreamMessage records a consumed (in) or produced (out) stream message
func RecordStreamMessage(direction, result string) {
	StreamMessages.WithLabelValues(direction, result).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
