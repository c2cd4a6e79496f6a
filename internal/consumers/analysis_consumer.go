package consumers

import (
	"context"
	"encoding/json"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"marketpulse/internal/metrics"
	"marketpulse/internal/services/analysis"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
)

// CodeAnalysis marks a request the analyzer rejected without a domain code
const CodeAnalysis = "ANALYSIS_ERROR"

// Source yields raw request messages. io.EOF ends the stream.
type Source interface {
	Read(ctx context.Context) (key string, value []byte, err error)
	Close() error
}

// Sink receives report envelopes
type Sink interface {
	Publish(ctx context.Context, topic, key string, event interface{}) error
	Close() error
}

// RequestEnvelope is one analysis request on the wire
type RequestEnvelope struct {
	ID string `json:"id,omitempty"`
	analysis.Request
}

// EnvelopeError describes why a request produced no report
type EnvelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ReportEnvelope answers exactly one RequestEnvelope
type ReportEnvelope struct {
	ID     string           `json:"id"`
	Report *analysis.Report `json:"report,omitempty"`
	Error  *EnvelopeError   `json:"error,omitempty"`
}

// AnalysisConsumerConfig tunes the consume loop
type AnalysisConsumerConfig struct {
	ReportTopic    string
	RatePerSecond  float64 // <= 0 disables throttling
	Burst          int
	ProcessTimeout time.Duration
}

// ConsumerStats counts what the loop has seen so far
type ConsumerStats struct {
	Received  int64
	Published int64
	Failed    int64
}

// AnalysisConsumer reads requests, runs the analyzer and publishes one
// envelope per request, in arrival order.
type AnalysisConsumer struct {
	source   Source
	sink     Sink
	analyzer analysis.Analyzer
	tracker  errors.Tracker
	limiter  *rate.Limiter
	cfg      AnalysisConsumerConfig
	log      *logger.Logger

	received  atomic.Int64
	published atomic.Int64
	failed    atomic.Int64
}

// NewAnalysisConsumer creates a consumer; tracker may be nil
func NewAnalysisConsumer(
	source Source,
	sink Sink,
	analyzer analysis.Analyzer,
	tracker errors.Tracker,
	cfg AnalysisConsumerConfig,
) *AnalysisConsumer {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.ProcessTimeout <= 0 {
		cfg.ProcessTimeout = 30 * time.Second
	}

	return &AnalysisConsumer{
		source:   source,
		sink:     sink,
		analyzer: analyzer,
		tracker:  tracker,
		limiter:  rate.NewLimiter(limit, cfg.Burst),
		cfg:      cfg,
		log:      logger.Get().With("component", "analysis_consumer", "topic", cfg.ReportTopic),
	}
}

// Start consumes until the source is exhausted or ctx is cancelled. The
// message in flight when ctx is cancelled is still answered.
func (c *AnalysisConsumer) Start(ctx context.Context) error {
	c.log.Info("Starting analysis consumer...")

	defer func() {
		if err := c.source.Close(); err != nil {
			c.log.Warnw("Failed to close source", "error", err)
		}
		if err := c.sink.Close(); err != nil {
			c.log.Warnw("Failed to close sink", "error", err)
		}
		c.log.Infow("Analysis consumer closed",
			"received", c.received.Load(),
			"published", c.published.Load(),
			"failed", c.failed.Load(),
		)
	}()

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			c.log.Info("Analysis consumer stopping (context cancelled)")
			return nil
		}

		key, value, err := c.source.Read(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.log.Info("Analysis consumer stopping (source exhausted)")
				return nil
			}
			if ctx.Err() != nil {
				c.log.Info("Analysis consumer stopping (context cancelled)")
				return nil
			}
			c.log.Warnw("Failed to read request", "error", err)
			continue
		}
		c.received.Add(1)

		processCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.ProcessTimeout)
		if err := c.handleMessage(processCtx, key, value); err != nil {
			c.log.Errorw("Failed to publish report", "key", key, "error", err)
		}
		cancel()

		if ctx.Err() != nil {
			c.log.Info("Analysis consumer stopping after processing current message")
			return nil
		}
	}
}

// Stats returns the counters accumulated so far
func (c *AnalysisConsumer) Stats() ConsumerStats {
	return ConsumerStats{
		Received:  c.received.Load(),
		Published: c.published.Load(),
		Failed:    c.failed.Load(),
	}
}

func (c *AnalysisConsumer) handleMessage(ctx context.Context, key string, value []byte) error {
	var req RequestEnvelope
	if err := json.Unmarshal(value, &req); err != nil {
		metrics.RecordStreamMessage("in", "decode_error")
		c.failed.Add(1)
		id := key
		if id == "" {
			id = uuid.NewString()
		}
		return c.publish(ctx, ReportEnvelope{
			ID:    id,
			Error: &EnvelopeError{Code: errors.CodeInput, Message: "decode request: " + err.Error()},
		})
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	metrics.RecordStreamMessage("in", "ok")

	ctx = errors.ContextWithRequestID(ctx, req.ID)
	c.breadcrumb(ctx, "analysis requested", map[string]interface{}{
		"request_id": req.ID,
		"articles":   len(req.Articles),
		"portfolio":  len(req.Portfolio),
	})

	report, err := c.analyzer.Analyze(ctx, req.Request)
	if err != nil {
		c.failed.Add(1)
		code := errors.CodeOf(err)
		if code == "" {
			code = CodeAnalysis
		}
		c.log.Warnw("Analysis failed", "request_id", req.ID, "code", code, "error", err)
		if c.tracker != nil {
			_ = c.tracker.CaptureError(ctx, err, map[string]string{"component": "analysis_consumer"})
		}
		return c.publish(ctx, ReportEnvelope{
			ID:    req.ID,
			Error: &EnvelopeError{Code: code, Message: err.Error()},
		})
	}

	c.log.Debugw("Analysis completed",
		"request_id", req.ID,
		"drivers", len(report.Drivers),
		"warnings", len(report.Warnings),
	)
	return c.publish(ctx, ReportEnvelope{ID: req.ID, Report: report})
}

func (c *AnalysisConsumer) publish(ctx context.Context, env ReportEnvelope) error {
	if err := c.sink.Publish(ctx, c.cfg.ReportTopic, env.ID, env); err != nil {
		metrics.RecordStreamMessage("out", "error")
		return errors.Wrapf(err, "publish report %s", env.ID)
	}
	metrics.RecordStreamMessage("out", "ok")
	c.published.Add(1)
	return nil
}

func (c *AnalysisConsumer) breadcrumb(ctx context.Context, msg string, data map[string]interface{}) {
	if c.tracker != nil {
		c.tracker.AddBreadcrumb(ctx, msg, "stream", errors.LevelInfo, data)
	}
}
