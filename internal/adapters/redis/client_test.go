package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/services/analysis"
	"marketpulse/internal/testsupport"
	"marketpulse/internal/testsupport/redistest"
	"marketpulse/pkg/errors"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	return NewFromRedis(redistest.NewClient(t, redistest.ConfigFromEnv(t)))
}

func TestClientMissReturnsNotFound(t *testing.T) {
	c := newTestClient(t)

	var dest map[string]string
	err := c.Get(context.Background(), "missing", &dest)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestClientJSONRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var got map[string]int
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, map[string]int{"a": 1}, got)

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Delete(ctx, "k"))
	ok, err = c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReportCacheOverRedis(t *testing.T) {
	c := newTestClient(t)
	store := testsupport.Store(t)

	cache := analysis.NewReportCache(analysis.DefaultCacheConfig(), c)
	p, err := analysis.NewPipeline(store, analysis.DefaultOptions(), cache)
	require.NoError(t, err)

	req := analysis.Request{Articles: testsupport.MarketArticles(), Portfolio: testsupport.Portfolio()}
	first, err := p.Analyze(context.Background(), req)
	require.NoError(t, err)

	key, err := analysis.CacheKey(store.Version(), req, analysis.DefaultOptions())
	require.NoError(t, err)
	ok, err := c.Exists(context.Background(), key)
	require.NoError(t, err)
	require.True(t, ok)

	second, err := p.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.Drivers[0].Driver.ID, second.Drivers[0].Driver.ID)
}
