package bootstrap

import (
	"io"

	"marketpulse/internal/adapters/config"
	errnoop "marketpulse/internal/adapters/errors/noop"
	"marketpulse/internal/adapters/errors/sentry"
	"marketpulse/internal/adapters/kafka"
	redisclient "marketpulse/internal/adapters/redis"
	"marketpulse/internal/adapters/stdio"
	"marketpulse/internal/api"
	"marketpulse/internal/api/health"
	"marketpulse/internal/consumers"
	"marketpulse/internal/domain/dictionary"
	"marketpulse/internal/metrics"
	"marketpulse/internal/services/analysis"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
)

// StdStreams is the stdio transport used when Kafka is not configured
type StdStreams struct {
	In  io.Reader
	Out io.Writer
}

// ========================================
// Phase 1: Configuration & Logging
// ========================================

// InitConfig loads configuration, applies overrides (command-line flags) and
// initializes logger
func (c *Container) InitConfig(overrides ...func(*config.Config)) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	for _, apply := range overrides {
		apply(cfg)
	}
	if _, err := analysis.ParseMode(cfg.Analytics.Mode); err != nil {
		return errors.Wrap(err, "invalid analytics config")
	}
	c.Config = cfg

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		return errors.Wrap(err, "failed to init logger")
	}

	c.Log = logger.Get()
	c.Log.Debugf("Starting %s %s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Env)

	c.ErrorTracker = provideErrorTracker(cfg, c.Log)
	logger.SetErrorTracker(c.ErrorTracker)
	return nil
}

// ========================================
// Phase 2: Infrastructure Layer
// ========================================

// InitInfrastructure loads the dictionary and connects to Redis when enabled.
// A missing or malformed dictionary is fatal here.
func (c *Container) InitInfrastructure() error {
	store, err := provideDictionary(c.Config, c.Log)
	if err != nil {
		return err
	}
	c.Dictionary = store

	if c.Config.Redis.Enabled {
		c.Log.Infow("Connecting to Redis...", "addr", c.Config.Redis.Addr())
		c.Redis, err = redisclient.NewClient(c.Context, c.Config.Redis)
		if err != nil {
			// the cache is optional; analysis runs without it
			c.Log.Warnw("Redis unavailable, report cache disabled", "error", err)
			c.Redis = nil
		} else {
			c.Log.Info("✓ Redis connected")
		}
	}
	return nil
}

// ========================================
// Phase 3: Services
// ========================================

// InitServices builds the report cache and the analyzer for the configured mode
func (c *Container) InitServices() error {
	c.Services.Cache = provideReportCache(c.Config, c.Redis)

	mode, err := analysis.ParseMode(c.Config.Analytics.Mode)
	if err != nil {
		return err
	}
	analyzer, err := analysis.NewAnalyzer(mode, c.Dictionary, c.Config.AnalysisOptions(), c.Services.Cache)
	if err != nil {
		return errors.Wrap(err, "failed to create analyzer")
	}
	c.Services.Analyzer = analyzer

	metrics.Init(metrics.NewDictionaryCollector(c.Dictionary))
	c.Log.Debugw("✓ Analyzer ready", "mode", analyzer.Mode(), "dictionary_version", c.Dictionary.Version())
	return nil
}

// ========================================
// Phase 4: Adapters, Background, Application (stream mode)
// ========================================

// InitAdapters picks Kafka when brokers are configured, stdio otherwise
func (c *Container) InitAdapters(streams StdStreams) {
	if c.Config.Kafka.Enabled() {
		c.Adapters.KafkaConsumer = provideKafkaConsumer(c.Config, c.Log)
		c.Adapters.KafkaProducer = provideKafkaProducer(c.Config, c.Log)
		c.Adapters.Source = c.Adapters.KafkaConsumer
		c.Adapters.Sink = c.Adapters.KafkaProducer
		return
	}

	c.Log.Info("Kafka brokers not configured, streaming JSON lines over stdio")
	c.Adapters.Source = stdio.NewLineSource(streams.In, c.Config.Stream.MaxLineBytes)
	c.Adapters.Sink = stdio.NewJSONSink(streams.Out)
}

// InitBackground wires the consumer and the workers
func (c *Container) InitBackground() {
	c.Background.WorkerScheduler = provideWorkers(c.Config, c.Dictionary, c.Log)
	c.Background.AnalysisSvc = consumers.NewAnalysisConsumer(
		c.Adapters.Source,
		c.Adapters.Sink,
		c.Services.Analyzer,
		c.ErrorTracker,
		consumers.AnalysisConsumerConfig{
			ReportTopic:   c.Config.Kafka.ReportTopic,
			RatePerSecond: c.Config.Stream.RatePerSecond,
			Burst:         c.Config.Stream.Burst,
		},
	)
}

// InitApplication builds the metrics and health server
func (c *Container) InitApplication() {
	var pinger health.Pinger
	if c.Redis != nil {
		pinger = c.Redis
	}
	c.Application.HealthHandler = health.New(
		c.Log, c.Dictionary, c.Background.WorkerScheduler, pinger,
		c.Config.App.Name, c.Config.App.Version,
	)
	if c.Config.Metrics.Addr == "" {
		c.Log.Info("Metrics endpoint disabled")
		return
	}
	c.Application.HTTPServer = api.NewServer(api.ServerConfig{
		Addr:        c.Config.Metrics.Addr,
		ServiceName: c.Config.App.Name,
		Version:     c.Config.App.Version,
	}, c.Application.HealthHandler, c.Log)
}

// ========================================
// Helper Provider Functions
// ========================================

func provideErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Debug("Error tracking disabled")
		return errnoop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment, cfg.App.Version)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return errnoop.New()
	}

	log.Info("✓ Error tracking initialized (Sentry)")
	return tracker
}

func provideDictionary(cfg *config.Config, log *logger.Logger) (*dictionary.Store, error) {
	store, err := dictionary.NewStoreFromFile(cfg.Dictionary.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load dictionary")
	}
	source := cfg.Dictionary.Path
	if source == "" {
		source = "embedded"
	}
	log.Debugw("✓ Dictionary loaded", "source", source, "version", store.Version())
	return store, nil
}

func provideReportCache(cfg *config.Config, redis *redisclient.Client) analysis.Cache {
	cacheCfg := cfg.CacheConfig()
	if !cacheCfg.Enabled || redis == nil {
		return nil
	}
	return analysis.NewReportCache(cacheCfg, redis)
}

func provideKafkaProducer(cfg *config.Config, log *logger.Logger) *kafka.Producer {
	if cfg.Kafka.ReportTopic == "" {
		cfg.Kafka.ReportTopic = kafka.TopicReports
	}
	producer := kafka.NewProducer(kafka.ProducerConfig{
		Brokers: cfg.Kafka.Brokers,
		Async:   false,
	})
	log.Infow("✓ Kafka producer initialized", "topic", cfg.Kafka.ReportTopic)
	return producer
}

func provideKafkaConsumer(cfg *config.Config, log *logger.Logger) *kafka.Consumer {
	if cfg.Kafka.RequestTopic == "" {
		cfg.Kafka.RequestTopic = kafka.TopicRequests
	}
	consumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.GroupID,
		Topic:   cfg.Kafka.RequestTopic,
	})
	log.Infow("✓ Kafka consumer initialized", "topic", cfg.Kafka.RequestTopic)
	return consumer
}
