package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prapazar/backend/internal/domain/integration"
)

func TestMetricsCollector_RollingAverage(t *testing.T) {
	c := newTestMetrics()
	ctx := context.Background()

	c.RecordSuccess(ctx, integration.ChannelCodeTrendyol, 100*time.Millisecond)
	c.RecordSuccess(ctx, integration.ChannelCodeTrendyol, 200*time.Millisecond)
	c.RecordFailure(ctx, integration.ChannelCodeTrendyol, 600*time.Millisecond)

	stats := c.ChannelStats(integration.ChannelCodeTrendyol)
	assert.Equal(t, int64(3), stats.Requests)
	assert.Equal(t, 300*time.Millisecond, stats.AvgLatency, "(100+200+600)/3")
	require.NotNil(t, stats.LastSuccessAt)
	require.NotNil(t, stats.LastFailureAt)
}

func TestMetricsCollector_ErrorRate(t *testing.T) {
	c := newTestMetrics()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		c.RecordSuccess(ctx, integration.ChannelCodeHepsiburada, time.Millisecond)
	}
	for i := 0; i < 5; i++ {
		c.RecordFailure(ctx, integration.ChannelCodeHepsiburada, time.Millisecond)
	}

	stats := c.ChannelStats(integration.ChannelCodeHepsiburada)
	assert.Equal(t, int64(15), stats.Requests)
	assert.InDelta(t, 1.0/3.0, stats.ErrorRate(), 1e-9)
}

func TestMetricsCollector_ErrorRateEmpty(t *testing.T) {
	c := newTestMetrics()
	assert.Zero(t, c.ChannelStats(integration.ChannelCodeTrendyol).ErrorRate())
	assert.Zero(t, c.Global().ErrorRate())
}

func TestMetricsCollector_SkipsDoNotMoveTheAverage(t *testing.T) {
	c := newTestMetrics()
	ctx := context.Background()

	c.RecordSuccess(ctx, integration.ChannelCodeTrendyol, 100*time.Millisecond)
	c.RecordSkip(ctx, integration.ChannelCodeTrendyol, integration.SkipCircuitOpen)
	c.RecordSkip(ctx, integration.ChannelCodeTrendyol, integration.SkipRateLimited)

	stats := c.ChannelStats(integration.ChannelCodeTrendyol)
	assert.Equal(t, int64(1), stats.Requests)
	assert.Equal(t, int64(2), stats.Skips)
	assert.Equal(t, 100*time.Millisecond, stats.AvgLatency)
	assert.Zero(t, stats.ErrorRate(), "skips are not failures")
}

func TestMetricsCollector_GlobalRollup(t *testing.T) {
	c := newTestMetrics()
	ctx := context.Background()

	c.RecordSuccess(ctx, integration.ChannelCodeTrendyol, time.Millisecond)
	c.RecordFailure(ctx, integration.ChannelCodeHepsiburada, time.Millisecond)
	c.RecordSkip(ctx, integration.ChannelCodeN11, integration.SkipCircuitOpen)

	g := c.Global()
	assert.Equal(t, int64(2), g.Requests)
	assert.Equal(t, int64(1), g.Successes)
	assert.Equal(t, int64(1), g.Failures)
	assert.Equal(t, int64(1), g.Skips)
	assert.InDelta(t, 0.5, g.ErrorRate(), 1e-9)

	snapshot := c.Snapshot()
	assert.Len(t, snapshot, 3)
}
