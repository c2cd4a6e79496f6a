package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"marketpulse/internal/services/analysis"
	"marketpulse/pkg/errors"
)

type Config struct {
	App           AppConfig
	Analytics     AnalyticsConfig
	Dictionary    DictionaryConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Stream        StreamConfig
	Metrics       MetricsConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"marketpulse"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
}

// AnalyticsConfig mirrors analysis.Options
type AnalyticsConfig struct {
	Mode                     string  `envconfig:"ANALYTICS_MODE" default:"rule_based"`
	MaxSentencesPerNews      int     `envconfig:"ANALYTICS_MAX_SENTENCES_PER_NEWS" default:"3"`
	MaxCharsPerNews          int     `envconfig:"ANALYTICS_MAX_CHARS_PER_NEWS" default:"600"`
	MaxCharsPerBatch         int     `envconfig:"ANALYTICS_MAX_CHARS_PER_BATCH" default:"4000"`
	BatchSize                int     `envconfig:"ANALYTICS_BATCH_SIZE" default:"10"`
	MetaSummaryMaxSentences  int     `envconfig:"ANALYTICS_META_SUMMARY_MAX_SENTENCES" default:"8"`
	MetaSummaryMaxChars      int     `envconfig:"ANALYTICS_META_SUMMARY_MAX_CHARS" default:"1500"`
	MinNewsPerDriver         int     `envconfig:"ANALYTICS_MIN_NEWS_PER_DRIVER" default:"2"`
	MaxDrivers               int     `envconfig:"ANALYTICS_MAX_DRIVERS" default:"5"`
	MaxKeywords              int     `envconfig:"ANALYTICS_MAX_KEYWORDS" default:"10"`
	MinKeywordFreq           int     `envconfig:"ANALYTICS_MIN_KEYWORD_FREQ" default:"1"`
	MinScenarioConfidence    float64 `envconfig:"ANALYTICS_MIN_SCENARIO_CONFIDENCE" default:"0.3"`
	MinMappingConfidence     float64 `envconfig:"ANALYTICS_MIN_MAPPING_CONFIDENCE" default:"0.4"`
	DedupSimilarityThreshold float64 `envconfig:"ANALYTICS_DEDUP_SIMILARITY_THRESHOLD" default:"0.8"`
	SectorTopN               int     `envconfig:"ANALYTICS_SECTOR_TOP_N" default:"3"`
	MinArticleChars          int     `envconfig:"ANALYTICS_MIN_ARTICLE_CHARS" default:"20"`
	Workers                  int     `envconfig:"ANALYTICS_WORKERS" default:"4"`
}

type DictionaryConfig struct {
	Path           string        `envconfig:"DICTIONARY_PATH"` // empty: embedded default
	ReloadInterval time.Duration `envconfig:"DICTIONARY_RELOAD_INTERVAL" default:"1m"`
}

type RedisConfig struct {
	Enabled  bool          `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int           `envconfig:"REDIS_PORT" default:"6379"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL time.Duration `envconfig:"REDIS_CACHE_TTL" default:"10m"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type KafkaConfig struct {
	Brokers      []string `envconfig:"KAFKA_BROKERS"`
	GroupID      string   `envconfig:"KAFKA_GROUP_ID" default:"marketpulse"`
	RequestTopic string   `envconfig:"KAFKA_REQUEST_TOPIC" default:"news.analysis.requests"`
	ReportTopic  string   `envconfig:"KAFKA_REPORT_TOPIC" default:"news.analysis.reports"`
}

// Enabled reports whether stream mode should use Kafka instead of stdio
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

type StreamConfig struct {
	RatePerSecond float64 `envconfig:"STREAM_RATE_PER_SECOND" default:"20"`
	Burst         int     `envconfig:"STREAM_BURST" default:"5"`
	MaxLineBytes  int     `envconfig:"STREAM_MAX_LINE_BYTES" default:"8388608"`
}

type MetricsConfig struct {
	Addr string `envconfig:"METRICS_ADDR" default:":9090"` // empty disables the endpoint
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	Provider    string `envconfig:"ERROR_TRACKING_PROVIDER" default:"sentry"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// AnalysisOptions converts the analytics section into pipeline options
func (c *Config) AnalysisOptions() analysis.Options {
	a := c.Analytics
	return analysis.Options{
		MaxSentencesPerNews:      a.MaxSentencesPerNews,
		MaxCharsPerNews:          a.MaxCharsPerNews,
		MaxCharsPerBatch:         a.MaxCharsPerBatch,
		BatchSize:                a.BatchSize,
		MetaSummaryMaxSentences:  a.MetaSummaryMaxSentences,
		MetaSummaryMaxChars:      a.MetaSummaryMaxChars,
		MinNewsPerDriver:         a.MinNewsPerDriver,
		MaxDrivers:               a.MaxDrivers,
		MaxKeywords:              a.MaxKeywords,
		MinKeywordFreq:           a.MinKeywordFreq,
		MinScenarioConfidence:    a.MinScenarioConfidence,
		MinMappingConfidence:     a.MinMappingConfidence,
		DedupSimilarityThreshold: a.DedupSimilarityThreshold,
		SectorTopN:               a.SectorTopN,
		MinArticleChars:          a.MinArticleChars,
		Workers:                  a.Workers,
	}
}

// CacheConfig converts the redis section into report cache settings
func (c *Config) CacheConfig() analysis.CacheConfig {
	return analysis.CacheConfig{
		Enabled: c.Redis.Enabled,
		TTL:     c.Redis.CacheTTL,
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	if _, err := analysis.ParseMode(cfg.Analytics.Mode); err != nil {
		return nil, errors.Wrap(err, "invalid analytics config")
	}
	if err := cfg.AnalysisOptions().Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid analytics config")
	}
	return &cfg, nil
}
