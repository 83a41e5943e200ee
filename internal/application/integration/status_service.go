package integration

import (
	"context"

	"github.com/google/uuid"

	"github.com/prapazar/backend/internal/domain/integration"
)

// StatusService assembles status and metrics views over the registry and
// the metrics collector.
type StatusService struct {
	registry *AdapterRegistry
	metrics  *MetricsCollector
}

// NewStatusService creates a StatusService.
func NewStatusService(registry *AdapterRegistry, metrics *MetricsCollector) *StatusService {
	return &StatusService{registry: registry, metrics: metrics}
}

// Overview returns the combined stored and live state of every integration
// the user has, optionally filtered by category.
func (s *StatusService) Overview(ctx context.Context, userID uuid.UUID, category *integration.Category) ([]IntegrationStatusResponse, error) {
	stored, err := s.registry.List(ctx, userID, category)
	if err != nil {
		return nil, err
	}

	out := make([]IntegrationStatusResponse, len(stored))
	for i := range stored {
		out[i] = s.statusOf(&stored[i])
	}
	return out, nil
}

// Status returns the combined state of one integration.
func (s *StatusService) Status(ctx context.Context, userID, integrationID uuid.UUID) (*IntegrationStatusResponse, error) {
	entry, live := s.registry.Live(userID, integrationID)
	if live {
		status := s.statusOf(entry.Integration)
		return &status, nil
	}

	stored, err := s.registry.List(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	for i := range stored {
		if stored[i].ID == integrationID {
			status := s.statusOf(&stored[i])
			return &status, nil
		}
	}
	return nil, integration.ErrIntegrationNotFound
}

// Metrics returns the comprehensive per-channel and global metrics rollup.
func (s *StatusService) Metrics() MetricsResponse {
	snapshot := s.metrics.Snapshot()
	channels := make(map[string]*ChannelStatsDetail, len(snapshot))
	for code, stats := range snapshot {
		channels[code.String()] = toChannelStatsDetail(stats)
	}

	global := s.metrics.Global()
	return MetricsResponse{
		Global: GlobalStatsDetail{
			Requests:  global.Requests,
			Successes: global.Successes,
			Failures:  global.Failures,
			Skips:     global.Skips,
			ErrorRate: global.ErrorRate(),
		},
		Channels: channels,
	}
}

func (s *StatusService) statusOf(integ *integration.Integration) IntegrationStatusResponse {
	status := IntegrationStatusResponse{
		IntegrationResponse: ToIntegrationResponse(integ),
	}

	if entry, ok := s.registry.Live(integ.UserID, integ.ID); ok {
		status.Live = true
		status.BreakerState = entry.Breaker.State().String()
		status.FailureCount = entry.Breaker.FailureCount()
		status.RateLimit = entry.Limiter.Limit()
		status.RateRemaining = entry.Limiter.Remaining()
	}

	stats := s.metrics.ChannelStats(integ.ChannelCode)
	if stats.Requests > 0 || stats.Skips > 0 {
		status.Stats = toChannelStatsDetail(stats)
	}
	return status
}
