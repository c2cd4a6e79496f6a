package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/testsupport"
	"marketpulse/internal/workers"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
)

type pinger struct{ err error }

func (p pinger) Health(context.Context) error { return p.err }

func serve(t *testing.T, handler http.HandlerFunc) (int, HealthStatus) {
	t.Helper()
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	return rec.Code, status
}

func TestHandleHealth_Healthy(t *testing.T) {
	store := testsupport.Store(t)
	h := New(logger.NewNop(), store, workers.NewScheduler(), pinger{}, "marketpulse", "test")

	code, status := serve(t, h.HandleHealth)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, store.Version(), status.DictionaryVersion)
	assert.Contains(t, status.Checks, "redis")
}

func TestHandleHealth_DegradedWithoutRedis(t *testing.T) {
	h := New(logger.NewNop(), testsupport.Store(t), nil, pinger{err: errors.New("connection refused")}, "marketpulse", "test")

	code, status := serve(t, h.HandleHealth)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "connection refused", status.Checks["redis"].Error)

	code, status = serve(t, h.HandleReadiness)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", status.Status)
}

func TestHandleReadiness_NoDictionary(t *testing.T) {
	h := New(logger.NewNop(), nil, nil, nil, "marketpulse", "test")

	code, status := serve(t, h.HandleReadiness)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", status.Checks["dictionary"].Status)
	assert.NotContains(t, status.Checks, "redis")
}

func TestHandleLiveness(t *testing.T) {
	h := New(logger.NewNop(), nil, nil, nil, "marketpulse", "test")
	rec := httptest.NewRecorder()
	h.HandleLiveness(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())
}
