package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/services/analysis"
	"marketpulse/pkg/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "marketpulse", cfg.App.Name)
	assert.Equal(t, analysis.DefaultOptions(), cfg.AnalysisOptions())
	assert.Equal(t, time.Minute, cfg.Dictionary.ReloadInterval)
	assert.Empty(t, cfg.Dictionary.Path)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, analysis.CacheConfig{Enabled: false, TTL: 10 * time.Minute}, cfg.CacheConfig())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ANALYTICS_MAX_DRIVERS", "2")
	t.Setenv("ANALYTICS_DEDUP_SIMILARITY_THRESHOLD", "0.9")
	t.Setenv("DICTIONARY_PATH", "/etc/marketpulse/dictionary.yaml")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	opts := cfg.AnalysisOptions()
	assert.Equal(t, 2, opts.MaxDrivers)
	assert.Equal(t, 0.9, opts.DedupSimilarityThreshold)
	assert.Equal(t, "/etc/marketpulse/dictionary.yaml", cfg.Dictionary.Path)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
}

func TestLoadRejectsOutOfRangeOptions(t *testing.T) {
	t.Setenv("ANALYTICS_WORKERS", "0")

	_, err := Load()
	require.Error(t, err)
	var ve *errors.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestLoadRejectsUnknownMode(t *testing.T) {
	t.Setenv("ANALYTICS_MODE", "magic")

	_, err := Load()
	assert.Error(t, err)
}
