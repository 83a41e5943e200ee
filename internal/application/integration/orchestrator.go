package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/prapazar/backend/internal/domain/integration"
	"github.com/prapazar/backend/internal/infrastructure/cache"
)

// ---------------------------------------------------------------------------
// SyncPayload
// ---------------------------------------------------------------------------

// SyncPayload carries the operation parameters for one sync cycle. Which
// fields matter depends on the operation; Validate enforces that before any
// adapter is touched.
type SyncPayload struct {
	// Page applies to listing operations
	Page integration.Pagination
	// Dates applies to order fetches
	Dates integration.DateRange
	// LocalProductID selects the product for push operations
	LocalProductID uuid.UUID
	// ExternalID overrides mapping lookup for push operations
	ExternalID string
	// Quantity applies to stock pushes
	Quantity int
	// Price applies to price pushes
	Price decimal.Decimal
	// Channels optionally restricts the fan-out to specific channels
	Channels []integration.ChannelCode
}

// Validate checks the payload fits the operation. Runs synchronously before
// the fan-out so a malformed request never reaches a channel.
func (p *SyncPayload) Validate(op integration.SyncOperation) error {
	if !op.IsValid() {
		return fmt.Errorf("%w: unknown operation %q", integration.ErrValidation, op)
	}
	switch op {
	case integration.OpSyncOrders:
		if err := p.Dates.Validate(); err != nil {
			return fmt.Errorf("%w: %v", integration.ErrValidation, err)
		}
	case integration.OpUpdateStock:
		if p.LocalProductID == uuid.Nil && p.ExternalID == "" {
			return fmt.Errorf("%w: a local product or external id is required", integration.ErrValidation)
		}
		if p.Quantity < 0 {
			return fmt.Errorf("%w: quantity must not be negative", integration.ErrValidation)
		}
	case integration.OpUpdatePrice:
		if p.LocalProductID == uuid.Nil && p.ExternalID == "" {
			return fmt.Errorf("%w: a local product or external id is required", integration.ErrValidation)
		}
		if !p.Price.IsPositive() {
			return fmt.Errorf("%w: price must be positive", integration.ErrValidation)
		}
	}
	return nil
}

// wantsChannel reports whether the payload restricts the fan-out and
// whether the channel passes that restriction.
func (p *SyncPayload) wantsChannel(code integration.ChannelCode) bool {
	if len(p.Channels) == 0 {
		return true
	}
	for _, c := range p.Channels {
		if c == code {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// SyncOrchestrator
// ---------------------------------------------------------------------------

// SyncOrchestrator runs one operation across a user's active adapters. Each
// adapter executes in its own goroutine behind its breaker and limiter; one
// adapter's failure never aborts the others. The folded SyncLog is
// persisted before RunSync returns, and only that persistence failure is
// fatal to the cycle.
type SyncOrchestrator struct {
	registry *AdapterRegistry
	syncLogs integration.SyncLogRepository
	mappings integration.ProductMappingRepository
	cache    cache.Store
	metrics  *MetricsCollector
	logger   *zap.Logger
}

// NewSyncOrchestrator wires the orchestrator.
func NewSyncOrchestrator(
	registry *AdapterRegistry,
	syncLogs integration.SyncLogRepository,
	mappings integration.ProductMappingRepository,
	store cache.Store,
	metrics *MetricsCollector,
	logger *zap.Logger,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		registry: registry,
		syncLogs: syncLogs,
		mappings: mappings,
		cache:    store,
		metrics:  metrics,
		logger:   logger,
	}
}

// RunSync validates the payload, fans the operation out to every matching
// active adapter, folds the per-adapter outcomes into a SyncLog and
// persists it.
func (o *SyncOrchestrator) RunSync(ctx context.Context, userID uuid.UUID, op integration.SyncOperation, payload SyncPayload) (*integration.SyncLog, error) {
	if err := payload.Validate(op); err != nil {
		return nil, err
	}

	entries := o.registry.ListActive(userID, op.Categories()...)
	log := integration.NewSyncLog(userID, op)

	results := make(chan integration.SyncResult, len(entries))
	var wg sync.WaitGroup
	for _, entry := range entries {
		if !payload.wantsChannel(entry.Integration.ChannelCode) {
			continue
		}
		wg.Add(1)
		go func(entry *LiveIntegration) {
			defer wg.Done()
			// a panicking adapter must not take the other goroutines down;
			// it folds into the cycle as a failed result
			defer func() {
				if r := recover(); r != nil {
					o.logger.Error("adapter sync panicked",
						zap.String("integration_id", entry.Integration.ID.String()),
						zap.String("channel", entry.Integration.ChannelCode.String()),
						zap.String("operation", op.String()),
						zap.Any("panic", r),
						zap.Stack("stack"),
					)
					entry.Breaker.RecordFailure()
					o.metrics.RecordFailure(ctx, entry.Integration.ChannelCode, 0)
					results <- integration.SyncResult{
						IntegrationID: entry.Integration.ID,
						ChannelCode:   entry.Integration.ChannelCode,
						Status:        integration.SyncStatusFailed,
						Error:         fmt.Sprintf("panic: %v", r),
					}
				}
			}()
			results <- o.runAdapter(ctx, entry, op, payload)
		}(entry)
	}
	wg.Wait()
	close(results)

	for result := range results {
		log.AddResult(result)
	}
	log.Finish()

	if err := o.syncLogs.Save(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to persist sync log: %w", err)
	}

	o.logger.Info("sync cycle finished",
		zap.String("operation", op.String()),
		zap.String("status", log.Status.String()),
		zap.Int("total", log.TotalCount),
		zap.Int("success", log.SuccessCount),
		zap.Int("failed", log.FailureCount),
		zap.Int("skipped", log.SkipCount),
		zap.Duration("duration", log.Duration()),
	)
	return log, nil
}

// runAdapter executes one adapter's share of the cycle: breaker gate,
// limiter gate, cache lookup, then the gated call with its retry budget.
func (o *SyncOrchestrator) runAdapter(ctx context.Context, entry *LiveIntegration, op integration.SyncOperation, payload SyncPayload) integration.SyncResult {
	integ := entry.Integration
	result := integration.SyncResult{
		IntegrationID: integ.ID,
		ChannelCode:   integ.ChannelCode,
	}

	if !entry.Breaker.ShouldAllowRequest() {
		result.Status = integration.SyncStatusSkipped
		result.SkipReason = integration.SkipCircuitOpen
		o.metrics.RecordSkip(ctx, integ.ChannelCode, integration.SkipCircuitOpen)
		return result
	}
	if !entry.Limiter.IsAllowed() {
		result.Status = integration.SyncStatusSkipped
		result.SkipReason = integration.SkipRateLimited
		o.metrics.RecordSkip(ctx, integ.ChannelCode, integration.SkipRateLimited)
		return result
	}

	// idempotent reads may be served from cache without touching the channel
	cacheKey := o.cacheKey(integ.ID, op, payload)
	if cacheKey != "" {
		if count, ok := o.cachedCount(ctx, cacheKey); ok {
			result.Status = integration.SyncStatusSuccess
			result.FromCache = true
			result.ItemCount = count
			entry.Breaker.RecordSuccess()
			o.metrics.RecordSuccess(ctx, integ.ChannelCode, 0)
			return result
		}
	}

	start := time.Now()
	count, err := o.executeWithRetry(ctx, entry, op, payload, &result)
	result.Duration = time.Since(start)
	result.ItemCount = count

	if err != nil {
		result.Status = integration.SyncStatusFailed
		result.Error = err.Error()
		entry.Breaker.RecordFailure()
		o.metrics.RecordFailure(ctx, integ.ChannelCode, result.Duration)
		o.logger.Warn("adapter sync failed",
			zap.String("integration_id", integ.ID.String()),
			zap.String("channel", integ.ChannelCode.String()),
			zap.String("operation", op.String()),
			zap.Int("attempts", result.Attempts),
			zap.Error(err),
		)
		return result
	}

	result.Status = integration.SyncStatusSuccess
	entry.Breaker.RecordSuccess()
	o.metrics.RecordSuccess(ctx, integ.ChannelCode, result.Duration)
	return result
}

// executeWithRetry runs the operation with the integration's retry budget.
// Channel-side throttling, auth failures, validation errors and context
// cancellation are terminal; transient failures back off exponentially.
func (o *SyncOrchestrator) executeWithRetry(ctx context.Context, entry *LiveIntegration, op integration.SyncOperation, payload SyncPayload, result *integration.SyncResult) (int, error) {
	settings := entry.Integration.Settings
	backoff := settings.RetryBackoff

	var lastErr error
	for attempt := 0; attempt <= settings.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		result.Attempts = attempt + 1

		callCtx, cancel := context.WithTimeout(ctx, settings.Timeout)
		count, err := o.execute(callCtx, entry, op, payload)
		cancel()

		if err == nil {
			return count, nil
		}
		lastErr = err

		if isTerminal(err) || ctx.Err() != nil {
			break
		}
	}
	return 0, lastErr
}

// execute dispatches one attempt of the operation to the adapter.
func (o *SyncOrchestrator) execute(ctx context.Context, entry *LiveIntegration, op integration.SyncOperation, payload SyncPayload) (int, error) {
	integ := entry.Integration

	switch op {
	case integration.OpSyncProducts:
		products, err := entry.Adapter.FetchProducts(ctx, payload.Page)
		if err != nil {
			return 0, err
		}
		o.storeInCache(ctx, integ, op, payload, len(products))
		return len(products), nil

	case integration.OpSyncOrders:
		orders, err := entry.Adapter.FetchOrders(ctx, payload.Dates, payload.Page)
		if err != nil {
			return 0, err
		}
		o.storeInCache(ctx, integ, op, payload, len(orders))
		return len(orders), nil

	case integration.OpUpdateStock:
		externalID, mapping, err := o.resolveExternalID(ctx, integ, payload)
		if err != nil {
			return 0, err
		}
		if err := entry.Adapter.PushStockUpdate(ctx, externalID, payload.Quantity); err != nil {
			o.recordMappingFailure(ctx, mapping, err)
			return 0, err
		}
		o.recordMappingSuccess(ctx, integ, payload, mapping, externalID)
		return 1, nil

	case integration.OpUpdatePrice:
		externalID, mapping, err := o.resolveExternalID(ctx, integ, payload)
		if err != nil {
			return 0, err
		}
		if err := entry.Adapter.PushPriceUpdate(ctx, externalID, payload.Price); err != nil {
			o.recordMappingFailure(ctx, mapping, err)
			return 0, err
		}
		o.recordMappingSuccess(ctx, integ, payload, mapping, externalID)
		return 1, nil

	default:
		return 0, fmt.Errorf("%w: unknown operation %q", integration.ErrValidation, op)
	}
}

// resolveExternalID finds the channel-side product identity for a push.
// An explicit ExternalID wins; otherwise the product mapping routes it.
func (o *SyncOrchestrator) resolveExternalID(ctx context.Context, integ *integration.Integration, payload SyncPayload) (string, *integration.ProductMapping, error) {
	if payload.ExternalID != "" && payload.LocalProductID == uuid.Nil {
		return payload.ExternalID, nil, nil
	}

	mapping, err := o.mappings.FindByLocalProductAndChannel(ctx, integ.UserID, payload.LocalProductID, integ.ChannelCode)
	if err == nil {
		return mapping.ExternalProductID, mapping, nil
	}
	if errors.Is(err, integration.ErrMappingNotFound) && payload.ExternalID != "" {
		// first push for this product on this channel: mapping gets upserted
		// after the push succeeds
		return payload.ExternalID, nil, nil
	}
	return "", nil, err
}

// recordMappingSuccess updates sync bookkeeping and upserts the mapping on
// a first successful push.
func (o *SyncOrchestrator) recordMappingSuccess(ctx context.Context, integ *integration.Integration, payload SyncPayload, mapping *integration.ProductMapping, externalID string) {
	if mapping == nil {
		if payload.LocalProductID == uuid.Nil {
			return
		}
		created, err := integration.NewProductMapping(integ.UserID, payload.LocalProductID, integ.ChannelCode, externalID)
		if err != nil {
			return
		}
		mapping = created
	}
	mapping.RecordSyncSuccess()
	if err := o.mappings.Save(ctx, mapping); err != nil {
		o.logger.Warn("failed to persist product mapping",
			zap.String("mapping_id", mapping.ID.String()),
			zap.Error(err),
		)
	}
}

// recordMappingFailure updates sync bookkeeping on a failed push.
func (o *SyncOrchestrator) recordMappingFailure(ctx context.Context, mapping *integration.ProductMapping, pushErr error) {
	if mapping == nil {
		return
	}
	mapping.RecordSyncFailure(pushErr.Error())
	if err := o.mappings.Save(ctx, mapping); err != nil {
		o.logger.Warn("failed to persist product mapping",
			zap.String("mapping_id", mapping.ID.String()),
			zap.Error(err),
		)
	}
}

// ---------------------------------------------------------------------------
// Cache helpers
// ---------------------------------------------------------------------------

// cachedPage is what read operations store: enough to answer a repeat
// request without replaying the channel call.
type cachedPage struct {
	ItemCount int       `json:"item_count"`
	FetchedAt time.Time `json:"fetched_at"`
}

// cacheKey returns the namespaced key for cacheable operations, or "" for
// writes, which are never cached.
func (o *SyncOrchestrator) cacheKey(integrationID uuid.UUID, op integration.SyncOperation, payload SyncPayload) string {
	switch op {
	case integration.OpSyncProducts:
		return cache.Key(integrationID.String(), op.String(),
			fmt.Sprintf("p%d", payload.Page.Page), fmt.Sprintf("s%d", payload.Page.Size))
	case integration.OpSyncOrders:
		return cache.Key(integrationID.String(), op.String(),
			fmt.Sprintf("%d-%d", payload.Dates.Start.Unix(), payload.Dates.End.Unix()),
			fmt.Sprintf("p%d", payload.Page.Page))
	default:
		return ""
	}
}

func (o *SyncOrchestrator) cachedCount(ctx context.Context, key string) (int, bool) {
	data, found, err := o.cache.Get(ctx, key)
	if err != nil || !found {
		return 0, false
	}
	var page cachedPage
	if err := json.Unmarshal(data, &page); err != nil {
		return 0, false
	}
	return page.ItemCount, true
}

func (o *SyncOrchestrator) storeInCache(ctx context.Context, integ *integration.Integration, op integration.SyncOperation, payload SyncPayload, count int) {
	key := o.cacheKey(integ.ID, op, payload)
	if key == "" {
		return
	}
	data, err := json.Marshal(cachedPage{ItemCount: count, FetchedAt: time.Now()})
	if err != nil {
		return
	}
	if err := o.cache.Set(ctx, key, data, integ.Settings.CacheTTL); err != nil {
		o.logger.Warn("failed to cache sync result", zap.String("key", key), zap.Error(err))
	}
}

// isTerminal reports whether retrying the call cannot help. An expired
// attempt deadline is transient and stays retryable; the retry loop checks
// the parent context itself, so only parent cancellation stops the budget.
func isTerminal(err error) bool {
	return errors.Is(err, integration.ErrChannelRateLimited) ||
		errors.Is(err, integration.ErrAuthenticationFailed) ||
		errors.Is(err, integration.ErrValidation) ||
		errors.Is(err, integration.ErrMappingNotFound)
}
