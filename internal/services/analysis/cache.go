package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"marketpulse/internal/metrics"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
)

const cacheKeyPrefix = "marketpulse:report"

// Cache stores finished reports. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) (*Report, bool, error)
	Set(ctx context.Context, key string, report *Report) error
}

// KeyValueStore is the part of the Redis adapter the report cache uses. Get
// must return an error matching errors.ErrNotFound on a miss.
type KeyValueStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CacheConfig contains configuration for report caching
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// DefaultCacheConfig returns default configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: true,
		TTL:     10 * time.Minute,
	}
}

// ReportCache caches reports in a key/value store. Keys embed the dictionary
// version, so a reload never serves a report built from older tables.
type ReportCache struct {
	config CacheConfig
	store  KeyValueStore
	log    *logger.Logger

	// Metrics
	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

// NewReportCache creates a new report cache
func NewReportCache(config CacheConfig, store KeyValueStore) *ReportCache {
	return &ReportCache{
		config: config,
		store:  store,
		log:    logger.Get().With("component", "report_cache"),
	}
}

// Get retrieves a cached report
func (rc *ReportCache) Get(ctx context.Context, key string) (*Report, bool, error) {
	if !rc.config.Enabled {
		return nil, false, nil
	}

	var cached Report
	if err := rc.store.Get(ctx, key, &cached); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			rc.misses.Add(1)
			metrics.RecordCacheLookup("miss")
			return nil, false, nil
		}
		metrics.RecordCacheLookup("error")
		return nil, false, errors.Wrap(err, "failed to get from cache")
	}

	rc.hits.Add(1)
	metrics.RecordCacheLookup("hit")
	rc.log.Debugw("Cache hit", "key", key)
	return &cached, true, nil
}

// Set stores a report
func (rc *ReportCache) Set(ctx context.Context, key string, report *Report) error {
	if !rc.config.Enabled || report == nil {
		return nil
	}

	if err := rc.store.Set(ctx, key, report, rc.config.TTL); err != nil {
		return errors.Wrap(err, "failed to set cache")
	}

	rc.sets.Add(1)
	rc.log.Debugw("Cache set", "key", key, "ttl", rc.config.TTL)
	return nil
}

// GetMetrics returns cache metrics for monitoring
func (rc *ReportCache) GetMetrics() map[string]interface{} {
	hits, misses := rc.hits.Load(), rc.misses.Load()
	total := hits + misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	return map[string]interface{}{
		"enabled":  rc.config.Enabled,
		"hits":     hits,
		"misses":   misses,
		"sets":     rc.sets.Load(),
		"hit_rate": hitRate,
		"total":    total,
		"ttl":      rc.config.TTL.String(),
	}
}

// CacheKey derives marketpulse:report:<version>:<sha256> from the request and
// the options it is analyzed with.
func CacheKey(version string, req Request, opts Options) (string, error) {
	data, err := json.Marshal(struct {
		Request Request `json:"request"`
		Options Options `json:"options"`
	}{req, opts})
	if err != nil {
		return "", errors.Wrap(err, "encode cache key")
	}
	return fmt.Sprintf("%s:%s:%x", cacheKeyPrefix, version, sha256.Sum256(data)), nil
}
