package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"marketpulse/internal/domain/dictionary"
	"marketpulse/internal/workers"
	"marketpulse/pkg/logger"
)

// Pinger is satisfied by the Redis adapter
type Pinger interface {
	Health(ctx context.Context) error
}

// Handler provides health check endpoints
type Handler struct {
	log         *logger.Logger
	dictionary  *dictionary.Store
	scheduler   *workers.Scheduler
	redis       Pinger // nil when the report cache is disabled
	startTime   time.Time
	serviceName string
	version     string
}

// New creates a new health check handler. scheduler and redis may be nil.
func New(
	log *logger.Logger,
	store *dictionary.Store,
	scheduler *workers.Scheduler,
	redis Pinger,
	serviceName string,
	version string,
) *Handler {
	return &Handler{
		log:         log,
		dictionary:  store,
		scheduler:   scheduler,
		redis:       redis,
		startTime:   time.Now(),
		serviceName: serviceName,
		version:     version,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status            string                          `json:"status"` // "healthy", "degraded", "unhealthy"
	Service           string                          `json:"service"`
	Version           string                          `json:"version"`
	DictionaryVersion string                          `json:"dictionary_version"`
	Uptime            string                          `json:"uptime"`
	Timestamp         string                          `json:"timestamp"`
	Checks            map[string]ComponentHealth      `json:"checks"`
	Workers           map[string]workers.WorkerHealth `json:"workers,omitempty"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HandleLiveness returns 200 OK if service is running
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HandleReadiness reports ready once a dictionary snapshot is active and every
// configured dependency answers.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.collect(ctx)
	code := http.StatusOK
	if status.Status != "healthy" {
		status.Status = "unhealthy"
		code = http.StatusServiceUnavailable
		h.log.Warnw("Readiness check failed", "checks", status.Checks)
	}
	writeJSON(w, code, status)
}

// HandleHealth returns detailed health status including worker runs
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := h.collect(ctx)
	if h.scheduler != nil {
		status.Workers = h.scheduler.Health()
	}

	code := http.StatusOK
	if status.Status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

func (h *Handler) collect(ctx context.Context) HealthStatus {
	checks := map[string]ComponentHealth{
		"dictionary": h.checkDictionary(),
	}
	if h.redis != nil {
		checks["redis"] = h.checkRedis(ctx)
	}

	healthy := 0
	for _, c := range checks {
		if c.Status == "healthy" {
			healthy++
		}
	}

	status := HealthStatus{
		Status:    "healthy",
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    checks,
	}
	if h.dictionary != nil {
		status.DictionaryVersion = h.dictionary.Version()
	}

	switch {
	case checks["dictionary"].Status != "healthy":
		status.Status = "unhealthy"
	case healthy < len(checks):
		// analysis still works without the report cache
		status.Status = "degraded"
	}
	return status
}

func (h *Handler) checkDictionary() ComponentHealth {
	if h.dictionary == nil || h.dictionary.Current() == nil {
		return ComponentHealth{Status: "unhealthy", Error: "no dictionary snapshot loaded"}
	}
	return ComponentHealth{Status: "healthy"}
}

// checkRedis verifies Redis connectivity
func (h *Handler) checkRedis(ctx context.Context) ComponentHealth {
	start := time.Now()
	err := h.redis.Health(ctx)
	elapsed := time.Since(start)

	if err != nil {
		h.log.Warnw("Redis health check failed", "error", err, "elapsed", elapsed)
		return ComponentHealth{
			Status:       "unhealthy",
			ResponseTime: elapsed.String(),
			Error:        err.Error(),
		}
	}

	return ComponentHealth{
		Status:       "healthy",
		ResponseTime: elapsed.String(),
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
