package bootstrap

import (
	"context"
	"sync"

	"marketpulse/internal/adapters/config"
	"marketpulse/internal/adapters/kafka"
	redisclient "marketpulse/internal/adapters/redis"
	"marketpulse/internal/api"
	"marketpulse/internal/api/health"
	"marketpulse/internal/consumers"
	"marketpulse/internal/domain/dictionary"
	"marketpulse/internal/services/analysis"
	"marketpulse/internal/workers"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
)

// Container holds all application dependencies and their lifecycle
// Components are organized in initialization order
type Container struct {
	// Core configuration & logging
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	// Infrastructure Layer
	Redis      *redisclient.Client // nil unless REDIS_ENABLED
	Dictionary *dictionary.Store

	// Domain Layer - Services
	Services *Services

	// External Adapters (stream mode only)
	Adapters *Adapters

	// Application Layer
	Application *Application

	// Background Processing
	Background *Background

	// Lifecycle management
	Lifecycle *Lifecycle
	WG        *sync.WaitGroup
	Context   context.Context
	Cancel    context.CancelFunc
}

// Services groups the analysis services
type Services struct {
	Cache    analysis.Cache // nil when caching is disabled
	Analyzer analysis.Analyzer
}

// Adapters groups the stream transport
type Adapters struct {
	KafkaProducer *kafka.Producer
	KafkaConsumer *kafka.Consumer

	Source consumers.Source
	Sink   consumers.Sink
}

// Application groups application layer components
type Application struct {
	HTTPServer    *api.Server // nil when METRICS_ADDR is empty
	HealthHandler *health.Handler
}

// Background groups all background processing components
type Background struct {
	WorkerScheduler *workers.Scheduler
	AnalysisSvc     *consumers.AnalysisConsumer
}

// NewContainer creates a new dependency container
func NewContainer() *Container {
	ctx, cancel := context.WithCancel(context.Background())

	return &Container{
		Services:    &Services{},
		Adapters:    &Adapters{},
		Application: &Application{},
		Background:  &Background{},
		Lifecycle:   NewLifecycle(),
		WG:          &sync.WaitGroup{},
		Context:     ctx,
		Cancel:      cancel,
	}
}

// InitAnalysis prepares everything a one-shot analysis needs. Call InitConfig first.
func (c *Container) InitAnalysis() error {
	if err := c.InitInfrastructure(); err != nil {
		return err
	}
	return c.InitServices()
}

// InitStream prepares the long-running stream service on top of InitAnalysis
func (c *Container) InitStream(streams StdStreams) error {
	if err := c.InitAnalysis(); err != nil {
		return err
	}
	c.InitAdapters(streams)
	c.InitBackground()
	c.InitApplication()
	return nil
}

// Start starts all background components
func (c *Container) Start() error {
	c.Log.Info("Starting all systems...")

	if err := c.Background.WorkerScheduler.Start(c.Context); err != nil {
		return errors.Wrap(err, "failed to start workers")
	}

	if c.Application.HTTPServer != nil {
		c.WG.Add(1)
		go func() {
			defer c.WG.Done()
			if err := c.Application.HTTPServer.Start(); err != nil {
				c.Log.Errorf("HTTP server failed: %v", err)
				c.Cancel() // Trigger shutdown on fatal HTTP error
			}
		}()
	}

	c.Log.Info("✓ All systems operational")
	return nil
}

// RunConsumer blocks until the stream is exhausted or the container is cancelled
func (c *Container) RunConsumer() error {
	return c.Background.AnalysisSvc.Start(c.Context)
}

// Shutdown performs graceful shutdown in the correct order
func (c *Container) Shutdown() {
	c.Log.Info("Initiating graceful shutdown...")

	c.Cancel()

	c.Lifecycle.Shutdown(
		c.WG,
		c.Application.HTTPServer,
		c.Background.WorkerScheduler,
		c.Adapters.KafkaConsumer,
		c.Adapters.KafkaProducer,
		c.Redis,
		c.ErrorTracker,
		c.Log,
	)
}

// Close releases what a one-shot command opened
func (c *Container) Close() {
	c.Cancel()
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Log.Warnw("Redis close failed", "error", err)
		}
	}
	if c.ErrorTracker != nil {
		c.Lifecycle.flushErrorTracker(context.Background(), c.ErrorTracker, c.Log)
	}
	_ = logger.Sync()
}

// GetMetrics returns metrics for observability
func (c *Container) GetMetrics() map[string]interface{} {
	out := map[string]interface{}{}
	if c.Dictionary != nil {
		out["dictionary_version"] = c.Dictionary.Version()
	}
	if rc, ok := c.Services.Cache.(*analysis.ReportCache); ok {
		out["cache"] = rc.GetMetrics()
	}
	if c.Background.AnalysisSvc != nil {
		out["stream"] = c.Background.AnalysisSvc.Stats()
	}
	return out
}
