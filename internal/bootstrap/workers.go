package bootstrap

import (
	"marketpulse/internal/adapters/config"
	"marketpulse/internal/domain/dictionary"
	"marketpulse/internal/workers"
	"marketpulse/pkg/logger"
)

// provideWorkers initializes all background workers
func provideWorkers(cfg *config.Config, store *dictionary.Store, log *logger.Logger) *workers.Scheduler {
	scheduler := workers.NewScheduler()

	reload := workers.NewDictionaryReloadWorker(store, cfg.Dictionary.Path, cfg.Dictionary.ReloadInterval)
	scheduler.RegisterWorker(reload)

	log.Infow("✓ Workers initialized",
		"dictionary_reload", reload.Enabled(),
		"interval", cfg.Dictionary.ReloadInterval,
	)
	return scheduler
}
