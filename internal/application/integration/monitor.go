package integration

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/prapazar/backend/internal/domain/integration"
)

// HealthMonitor periodically probes every live adapter. A failed probe on
// an active integration flips it to the error status; a later successful
// probe flips it back. Probes run under their own short timeout so a hung
// channel cannot stall the sweep.
type HealthMonitor struct {
	registry *AdapterRegistry
	interval time.Duration
	logger   *zap.Logger

	stopOnce sync.Once
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewHealthMonitor creates a monitor sweeping at the given interval.
func NewHealthMonitor(registry *AdapterRegistry, interval time.Duration, logger *zap.Logger) *HealthMonitor {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &HealthMonitor{
		registry: registry,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start launches the sweep loop. The first sweep runs after one interval.
func (m *HealthMonitor) Start() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-m.stopChan:
				return
			case <-ticker.C:
				m.Sweep(context.Background())
			}
		}
	}()
}

// Stop halts the sweep loop and waits for an in-flight sweep to finish.
func (m *HealthMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
	m.wg.Wait()
}

// Sweep probes every live adapter once.
func (m *HealthMonitor) Sweep(ctx context.Context) {
	entries := m.registry.ListAllLive()
	for _, entry := range entries {
		m.probe(ctx, entry)
	}
}

func (m *HealthMonitor) probe(ctx context.Context, entry *LiveIntegration) {
	integ := entry.Integration

	probeCtx, cancel := context.WithTimeout(ctx, integ.Settings.HealthTimeout)
	err := entry.Adapter.HealthCheck(probeCtx)
	cancel()

	wasOK := integ.LastHealthOK
	integ.RecordHealth(err == nil)
	if err == nil && integ.Status == integration.StatusError {
		// the adapter is still live, so a passing probe restores it
		integ.Activate()
	}

	if err != nil {
		m.logger.Warn("health probe failed",
			zap.String("integration_id", integ.ID.String()),
			zap.String("channel", integ.ChannelCode.String()),
			zap.Error(err),
		)
	} else if !wasOK {
		m.logger.Info("health probe recovered",
			zap.String("integration_id", integ.ID.String()),
			zap.String("channel", integ.ChannelCode.String()),
		)
	}

	if saveErr := m.registry.SaveHealth(ctx, integ); saveErr != nil {
		m.logger.Error("failed to persist health state",
			zap.String("integration_id", integ.ID.String()),
			zap.Error(saveErr),
		)
	}
}
