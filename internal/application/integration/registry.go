package integration

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prapazar/backend/internal/domain/integration"
	"github.com/prapazar/backend/internal/infrastructure/resilience"
)

// ---------------------------------------------------------------------------
// LiveIntegration
// ---------------------------------------------------------------------------

// LiveIntegration is one activated integration with its co-located
// protection state. Breaker and limiter live and die with the entry; a
// restart starts them over in their permissive initial state.
type LiveIntegration struct {
	Integration *integration.Integration
	Adapter     integration.ChannelAdapter
	Breaker     *resilience.CircuitBreaker
	Limiter     *resilience.RateLimiter
}

func newLiveIntegration(integ *integration.Integration, adapter integration.ChannelAdapter) *LiveIntegration {
	s := integ.Settings
	return &LiveIntegration{
		Integration: integ,
		Adapter:     adapter,
		Breaker:     resilience.NewCircuitBreaker(s.BreakerThreshold, s.BreakerCoolDown),
		Limiter:     resilience.NewRateLimiter(s.RateCeiling, s.RateWindow),
	}
}

// ---------------------------------------------------------------------------
// AdapterRegistry
// ---------------------------------------------------------------------------

// AdapterRegistry manages the lifecycle of integrations and the in-memory
// map of live adapters. Concrete adapters are built through the factory
// table fixed at construction time; there is no dynamic lookup by name.
type AdapterRegistry struct {
	mu   sync.RWMutex
	live map[uuid.UUID]*LiveIntegration

	repo      integration.IntegrationRepository
	factories map[integration.ChannelCode]integration.AdapterFactory
	logger    *zap.Logger
}

// NewAdapterRegistry creates a registry with the given factory table.
func NewAdapterRegistry(
	repo integration.IntegrationRepository,
	factories map[integration.ChannelCode]integration.AdapterFactory,
	logger *zap.Logger,
) *AdapterRegistry {
	return &AdapterRegistry{
		live:      make(map[uuid.UUID]*LiveIntegration),
		repo:      repo,
		factories: factories,
		logger:    logger,
	}
}

// Register stores a new integration in the inactive state. A second
// registration for the same (user, channel) is rejected while the first is
// not soft-deleted.
func (r *AdapterRegistry) Register(ctx context.Context, userID uuid.UUID, code integration.ChannelCode, name string, credentials map[string]string, settings *integration.Settings) (*integration.Integration, error) {
	if _, ok := r.factories[code]; !ok {
		return nil, integration.ErrChannelNotSupported
	}

	exists, err := r.repo.ExistsByUserAndChannel(ctx, userID, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, integration.ErrDuplicateIntegration
	}

	integ, err := integration.NewIntegration(userID, code, name, credentials)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		integ.Settings = *settings
		integ.Settings.Normalize()
	}

	if err := r.repo.Save(ctx, integ); err != nil {
		return nil, err
	}

	r.logger.Info("integration registered",
		zap.String("integration_id", integ.ID.String()),
		zap.String("channel", code.String()),
	)
	return integ, nil
}

// Activate builds the adapter, verifies connectivity and marks the
// integration active. A failed connect leaves the stored status untouched.
func (r *AdapterRegistry) Activate(ctx context.Context, userID, integrationID uuid.UUID) (*integration.Integration, error) {
	integ, err := r.findOwned(ctx, userID, integrationID)
	if err != nil {
		return nil, err
	}

	factory, ok := r.factories[integ.ChannelCode]
	if !ok {
		return nil, integration.ErrChannelNotSupported
	}
	adapter, err := factory(integ)
	if err != nil {
		return nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, integ.Settings.Timeout)
	defer cancel()
	if err := adapter.Connect(connectCtx); err != nil {
		r.logger.Warn("integration activation failed",
			zap.String("integration_id", integ.ID.String()),
			zap.String("channel", integ.ChannelCode.String()),
			zap.Error(err),
		)
		return nil, err
	}

	integ.Activate()
	if err := r.repo.Save(ctx, integ); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.live[integ.ID] = newLiveIntegration(integ, adapter)
	r.mu.Unlock()

	r.logger.Info("integration activated",
		zap.String("integration_id", integ.ID.String()),
		zap.String("channel", integ.ChannelCode.String()),
	)
	return integ, nil
}

// Deactivate removes the live entry and marks the integration inactive.
// Deactivating an already inactive integration is a no-op.
func (r *AdapterRegistry) Deactivate(ctx context.Context, userID, integrationID uuid.UUID) error {
	integ, err := r.findOwned(ctx, userID, integrationID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.live, integ.ID)
	r.mu.Unlock()

	if integ.Status == integration.StatusInactive {
		return nil
	}
	integ.Deactivate()
	return r.repo.Save(ctx, integ)
}

// Remove soft-deletes an integration, freeing the (user, channel) slot.
func (r *AdapterRegistry) Remove(ctx context.Context, userID, integrationID uuid.UUID) error {
	integ, err := r.findOwned(ctx, userID, integrationID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.live, integ.ID)
	r.mu.Unlock()

	return r.repo.Delete(ctx, integ.ID)
}

// Restore rebuilds the live map from stored active integrations. Called
// once at startup; breakers and limiters start fresh.
func (r *AdapterRegistry) Restore(ctx context.Context) error {
	actives, err := r.repo.FindActive(ctx)
	if err != nil {
		return err
	}

	restored := 0
	for i := range actives {
		integ := actives[i]
		factory, ok := r.factories[integ.ChannelCode]
		if !ok {
			r.logger.Warn("skipping stored integration for unsupported channel",
				zap.String("integration_id", integ.ID.String()),
				zap.String("channel", integ.ChannelCode.String()),
			)
			continue
		}
		adapter, err := factory(&integ)
		if err != nil {
			r.logger.Warn("skipping stored integration with invalid credentials",
				zap.String("integration_id", integ.ID.String()),
				zap.Error(err),
			)
			continue
		}

		r.mu.Lock()
		r.live[integ.ID] = newLiveIntegration(&integ, adapter)
		r.mu.Unlock()
		restored++
	}

	r.logger.Info("live integrations restored", zap.Int("count", restored))
	return nil
}

// ListActive returns the live entries for a user, optionally filtered to
// the given categories.
func (r *AdapterRegistry) ListActive(userID uuid.UUID, categories ...integration.Category) []*LiveIntegration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*LiveIntegration, 0, len(r.live))
	for _, entry := range r.live {
		if entry.Integration.UserID != userID {
			continue
		}
		if len(categories) > 0 && !containsCategory(categories, entry.Integration.Category) {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// ListAllLive returns every live entry across users, for the health monitor.
func (r *AdapterRegistry) ListAllLive() []*LiveIntegration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*LiveIntegration, 0, len(r.live))
	for _, entry := range r.live {
		out = append(out, entry)
	}
	return out
}

// Live returns the live entry for one integration, if active.
func (r *AdapterRegistry) Live(userID, integrationID uuid.UUID) (*LiveIntegration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.live[integrationID]
	if !ok || entry.Integration.UserID != userID {
		return nil, false
	}
	return entry, true
}

// List returns a user's stored integrations, optionally by category.
func (r *AdapterRegistry) List(ctx context.Context, userID uuid.UUID, category *integration.Category) ([]integration.Integration, error) {
	return r.repo.FindByUser(ctx, userID, category)
}

// SaveHealth persists health bookkeeping after a probe.
func (r *AdapterRegistry) SaveHealth(ctx context.Context, integ *integration.Integration) error {
	return r.repo.Save(ctx, integ)
}

// findOwned loads an integration and verifies ownership.
func (r *AdapterRegistry) findOwned(ctx context.Context, userID, integrationID uuid.UUID) (*integration.Integration, error) {
	integ, err := r.repo.FindByID(ctx, integrationID)
	if err != nil {
		return nil, err
	}
	if integ.UserID != userID || integ.DeletedAt != nil {
		return nil, integration.ErrIntegrationNotFound
	}
	return integ, nil
}

func containsCategory(categories []integration.Category, c integration.Category) bool {
	for _, candidate := range categories {
		if candidate == c {
			return true
		}
	}
	return false
}
