package integration

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/prapazar/backend/internal/domain/integration"
	"github.com/prapazar/backend/internal/infrastructure/telemetry"
)

// ---------------------------------------------------------------------------
// MetricsCollector
// ---------------------------------------------------------------------------

// AdapterStats holds the counters for one channel. Latency is a rolling
// incremental average over executed calls; skipped calls are counted
// separately and do not move the average.
type AdapterStats struct {
	Requests      int64
	Successes     int64
	Failures      int64
	Skips         int64
	AvgLatency    time.Duration
	LastSuccessAt *time.Time
	LastFailureAt *time.Time
}

// ErrorRate returns failures over executed requests, in [0, 1].
func (s AdapterStats) ErrorRate() float64 {
	if s.Requests == 0 {
		return 0
	}
	return float64(s.Failures) / float64(s.Requests)
}

// GlobalStats is the rollup across all channels.
type GlobalStats struct {
	Requests  int64
	Successes int64
	Failures  int64
	Skips     int64
}

// ErrorRate returns failures over executed requests, in [0, 1].
func (s GlobalStats) ErrorRate() float64 {
	if s.Requests == 0 {
		return 0
	}
	return float64(s.Failures) / float64(s.Requests)
}

// MetricsCollector aggregates per-channel sync counters and mirrors them to
// OpenTelemetry instruments. Snapshot reads are eventually consistent with
// respect to in-flight syncs.
type MetricsCollector struct {
	mu       sync.Mutex
	channels map[integration.ChannelCode]*AdapterStats

	requests *telemetry.Counter
	duration *telemetry.Histogram
}

// Metric attribute keys
var (
	attrChannel = attribute.Key("channel")
	attrResult  = attribute.Key("result")
)

// NewMetricsCollector creates a collector. The otel instruments are created
// on the given meter; with a no-op meter the collector still aggregates its
// own counters.
func NewMetricsCollector(meter metric.Meter) (*MetricsCollector, error) {
	requests, err := telemetry.NewCounter(meter,
		"hub_sync_requests_total",
		"Total channel sync calls by channel and result",
		"{call}")
	if err != nil {
		return nil, err
	}

	duration, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "hub_sync_duration_seconds",
		Description: "Channel sync call duration",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &MetricsCollector{
		channels: make(map[integration.ChannelCode]*AdapterStats),
		requests: requests,
		duration: duration,
	}, nil
}

// RecordSuccess counts a successful call and folds its latency into the
// rolling average.
func (c *MetricsCollector) RecordSuccess(ctx context.Context, code integration.ChannelCode, latency time.Duration) {
	c.record(ctx, code, latency, true)
}

// RecordFailure counts a failed call.
func (c *MetricsCollector) RecordFailure(ctx context.Context, code integration.ChannelCode, latency time.Duration) {
	c.record(ctx, code, latency, false)
}

// RecordSkip counts a call rejected by a local gate before execution.
func (c *MetricsCollector) RecordSkip(ctx context.Context, code integration.ChannelCode, reason integration.SkipReason) {
	c.mu.Lock()
	c.statsFor(code).Skips++
	c.mu.Unlock()

	c.requests.Inc(ctx,
		attrChannel.String(code.String()),
		attrResult.String("skipped_"+string(reason)),
	)
}

func (c *MetricsCollector) record(ctx context.Context, code integration.ChannelCode, latency time.Duration, success bool) {
	now := time.Now()

	c.mu.Lock()
	stats := c.statsFor(code)
	// incremental rolling average over all executed calls
	stats.AvgLatency = time.Duration(
		(int64(stats.AvgLatency)*stats.Requests + int64(latency)) / (stats.Requests + 1),
	)
	stats.Requests++
	if success {
		stats.Successes++
		stats.LastSuccessAt = &now
	} else {
		stats.Failures++
		stats.LastFailureAt = &now
	}
	c.mu.Unlock()

	result := "success"
	if !success {
		result = "failure"
	}
	c.requests.Inc(ctx, attrChannel.String(code.String()), attrResult.String(result))
	c.duration.RecordDuration(ctx, latency, attrChannel.String(code.String()))
}

// statsFor returns the stats entry for a channel. Caller holds the lock.
func (c *MetricsCollector) statsFor(code integration.ChannelCode) *AdapterStats {
	stats, ok := c.channels[code]
	if !ok {
		stats = &AdapterStats{}
		c.channels[code] = stats
	}
	return stats
}

// Snapshot returns a copy of the per-channel stats.
func (c *MetricsCollector) Snapshot() map[integration.ChannelCode]AdapterStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[integration.ChannelCode]AdapterStats, len(c.channels))
	for code, stats := range c.channels {
		out[code] = *stats
	}
	return out
}

// ChannelStats returns the stats for one channel.
func (c *MetricsCollector) ChannelStats(code integration.ChannelCode) AdapterStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	if stats, ok := c.channels[code]; ok {
		return *stats
	}
	return AdapterStats{}
}

// Global returns the rollup across all channels.
func (c *MetricsCollector) Global() GlobalStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var g GlobalStats
	for _, stats := range c.channels {
		g.Requests += stats.Requests
		g.Successes += stats.Successes
		g.Failures += stats.Failures
		g.Skips += stats.Skips
	}
	return g
}
