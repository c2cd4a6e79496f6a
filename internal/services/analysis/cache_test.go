package analysis

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/testsupport"
	"marketpulse/pkg/errors"
)

// memoryStore mimics the Redis adapter: JSON values, ErrNotFound on miss
type memoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryStore) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	raw, ok := m.data[key]
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "key %s", key)
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryStore) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	m.ttls[key] = ttl
	return nil
}

func TestCacheKey(t *testing.T) {
	req := Request{Articles: testsupport.MarketArticles()}

	k1, err := CacheKey("v1", req, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(k1, "marketpulse:report:v1:"))
	assert.Len(t, strings.TrimPrefix(k1, "marketpulse:report:v1:"), 64)

	k2, err := CacheKey("v1", req, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, k1, k2, "same input, same key")

	k3, err := CacheKey("v2", req, DefaultOptions())
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3, "dictionary version is part of the key")

	opts := DefaultOptions()
	opts.MaxDrivers = 1
	k4, err := CacheKey("v1", req, opts)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k4, "options are part of the key")
}

func TestReportCacheRoundTrip(t *testing.T) {
	store := newMemoryStore()
	cache := NewReportCache(DefaultCacheConfig(), store)
	ctx := context.Background()

	got, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	report := &Report{Mode: ModeRuleBased, DictionaryVersion: "v1"}
	require.NoError(t, cache.Set(ctx, "k", report))
	assert.Equal(t, 10*time.Minute, store.ttls["k"])

	got, ok, err = cache.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1", got.DictionaryVersion)

	m := cache.GetMetrics()
	assert.Equal(t, int64(1), m["hits"])
	assert.Equal(t, int64(1), m["misses"])
	assert.Equal(t, int64(1), m["sets"])
}

func TestReportCacheDisabled(t *testing.T) {
	store := newMemoryStore()
	cache := NewReportCache(CacheConfig{Enabled: false}, store)

	require.NoError(t, cache.Set(context.Background(), "k", &Report{}))
	assert.Empty(t, store.data)

	_, ok, err := cache.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReportCacheStoreError(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("connection refused")
	cache := NewReportCache(DefaultCacheConfig(), store)

	_, ok, err := cache.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestPipelineUsesCache(t *testing.T) {
	store := newMemoryStore()
	p := newPipeline(t, DefaultOptions(), NewReportCache(DefaultCacheConfig(), store))
	req := Request{Articles: testsupport.MarketArticles(), Portfolio: testsupport.Portfolio()}

	first, err := p.Analyze(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, store.data, 1)

	second, err := p.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.DictionaryVersion, second.DictionaryVersion)
	assert.Len(t, second.Drivers, len(first.Drivers))
	assert.Len(t, store.data, 1)
}

func TestPipelineIgnoresCacheFailures(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("connection refused")
	p := newPipeline(t, DefaultOptions(), NewReportCache(DefaultCacheConfig(), store))

	report, err := p.Analyze(context.Background(), Request{Articles: testsupport.MarketArticles()})
	require.NoError(t, err)
	assert.Len(t, report.Drivers, 2)
}
