package integration

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/prapazar/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Fake repositories
// ---------------------------------------------------------------------------

type fakeIntegrationRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*integration.Integration
}

func newFakeIntegrationRepo() *fakeIntegrationRepo {
	return &fakeIntegrationRepo{items: make(map[uuid.UUID]*integration.Integration)}
}

func (r *fakeIntegrationRepo) FindByID(_ context.Context, id uuid.UUID) (*integration.Integration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if integ, ok := r.items[id]; ok {
		clone := *integ
		return &clone, nil
	}
	return nil, integration.ErrIntegrationNotFound
}

func (r *fakeIntegrationRepo) FindByUserAndChannel(_ context.Context, userID uuid.UUID, code integration.ChannelCode) (*integration.Integration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, integ := range r.items {
		if integ.UserID == userID && integ.ChannelCode == code && integ.DeletedAt == nil {
			clone := *integ
			return &clone, nil
		}
	}
	return nil, integration.ErrIntegrationNotFound
}

func (r *fakeIntegrationRepo) FindByUser(_ context.Context, userID uuid.UUID, category *integration.Category) ([]integration.Integration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []integration.Integration
	for _, integ := range r.items {
		if integ.UserID != userID || integ.DeletedAt != nil {
			continue
		}
		if category != nil && integ.Category != *category {
			continue
		}
		out = append(out, *integ)
	}
	return out, nil
}

func (r *fakeIntegrationRepo) FindActive(_ context.Context) ([]integration.Integration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []integration.Integration
	for _, integ := range r.items {
		if integ.Status == integration.StatusActive && integ.DeletedAt == nil {
			out = append(out, *integ)
		}
	}
	return out, nil
}

func (r *fakeIntegrationRepo) ExistsByUserAndChannel(ctx context.Context, userID uuid.UUID, code integration.ChannelCode) (bool, error) {
	_, err := r.FindByUserAndChannel(ctx, userID, code)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (r *fakeIntegrationRepo) Save(_ context.Context, integ *integration.Integration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *integ
	r.items[integ.ID] = &clone
	return nil
}

func (r *fakeIntegrationRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	integ, ok := r.items[id]
	if !ok {
		return integration.ErrIntegrationNotFound
	}
	integ.SoftDelete()
	return nil
}

type fakeSyncLogRepo struct {
	mu   sync.Mutex
	logs []*integration.SyncLog
	err  error
}

func (r *fakeSyncLogRepo) Save(_ context.Context, log *integration.SyncLog) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

func (r *fakeSyncLogRepo) FindByID(_ context.Context, id uuid.UUID) (*integration.SyncLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, log := range r.logs {
		if log.ID == id {
			return log, nil
		}
	}
	return nil, integration.ErrIntegrationNotFound
}

func (r *fakeSyncLogRepo) FindByUser(_ context.Context, userID uuid.UUID, _ integration.SyncLogFilter) ([]integration.SyncLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []integration.SyncLog
	for _, log := range r.logs {
		if log.UserID == userID {
			out = append(out, *log)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeSyncLogRepo) saved() []*integration.SyncLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*integration.SyncLog(nil), r.logs...)
}

type fakeMappingRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*integration.ProductMapping
}

func newFakeMappingRepo() *fakeMappingRepo {
	return &fakeMappingRepo{items: make(map[uuid.UUID]*integration.ProductMapping)}
}

func (r *fakeMappingRepo) FindByID(_ context.Context, id uuid.UUID) (*integration.ProductMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.items[id]; ok {
		clone := *m
		return &clone, nil
	}
	return nil, integration.ErrMappingNotFound
}

func (r *fakeMappingRepo) FindByLocalProduct(_ context.Context, userID, localProductID uuid.UUID) ([]integration.ProductMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []integration.ProductMapping
	for _, m := range r.items {
		if m.UserID == userID && m.LocalProductID == localProductID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMappingRepo) FindByLocalProductAndChannel(_ context.Context, userID, localProductID uuid.UUID, code integration.ChannelCode) (*integration.ProductMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.items {
		if m.UserID == userID && m.LocalProductID == localProductID && m.ChannelCode == code {
			clone := *m
			return &clone, nil
		}
	}
	return nil, integration.ErrMappingNotFound
}

func (r *fakeMappingRepo) FindByExternalProduct(_ context.Context, userID uuid.UUID, code integration.ChannelCode, externalProductID string) (*integration.ProductMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.items {
		if m.UserID == userID && m.ChannelCode == code && m.ExternalProductID == externalProductID {
			clone := *m
			return &clone, nil
		}
	}
	return nil, integration.ErrMappingNotFound
}

func (r *fakeMappingRepo) FindAll(_ context.Context, userID uuid.UUID, _ integration.ProductMappingFilter) ([]integration.ProductMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []integration.ProductMapping
	for _, m := range r.items {
		if m.UserID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMappingRepo) FindSyncEnabled(_ context.Context, userID uuid.UUID, code integration.ChannelCode) ([]integration.ProductMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []integration.ProductMapping
	for _, m := range r.items {
		if m.UserID == userID && m.ChannelCode == code && m.SyncEnabled {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMappingRepo) Count(ctx context.Context, userID uuid.UUID, filter integration.ProductMappingFilter) (int64, error) {
	all, err := r.FindAll(ctx, userID, filter)
	return int64(len(all)), err
}

func (r *fakeMappingRepo) ExistsByExternalProduct(ctx context.Context, userID uuid.UUID, code integration.ChannelCode, externalProductID string) (bool, error) {
	_, err := r.FindByExternalProduct(ctx, userID, code, externalProductID)
	return err == nil, nil
}

func (r *fakeMappingRepo) Save(_ context.Context, m *integration.ProductMapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *m
	r.items[m.ID] = &clone
	return nil
}

func (r *fakeMappingRepo) SaveBatch(ctx context.Context, mappings []*integration.ProductMapping) error {
	for _, m := range mappings {
		if err := r.Save(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeMappingRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return integration.ErrMappingNotFound
	}
	delete(r.items, id)
	return nil
}

// ---------------------------------------------------------------------------
// Fake adapter
// ---------------------------------------------------------------------------

// fakeAdapter scripts adapter behavior per call. Errors are consumed in
// order; once the script runs out, calls succeed.
type fakeAdapter struct {
	mu   sync.Mutex
	code integration.ChannelCode

	connectErr error
	healthErr  error
	script     []error
	panicMsg   string

	products []integration.RawProduct
	orders   []integration.RawOrder

	fetchCalls  int
	pushCalls   int
	healthCalls int
	lastExtID   string
	lastQty     int
	lastPrice   decimal.Decimal
}

var _ integration.ChannelAdapter = (*fakeAdapter)(nil)

func newFakeAdapter(code integration.ChannelCode) *fakeAdapter {
	return &fakeAdapter{code: code}
}

func (a *fakeAdapter) nextErr() error {
	if len(a.script) == 0 {
		return nil
	}
	err := a.script[0]
	a.script = a.script[1:]
	return err
}

func (a *fakeAdapter) Code() integration.ChannelCode { return a.code }

func (a *fakeAdapter) Connect(context.Context) error { return a.connectErr }

func (a *fakeAdapter) FetchProducts(_ context.Context, _ integration.Pagination) ([]integration.RawProduct, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fetchCalls++
	if a.panicMsg != "" {
		panic(a.panicMsg)
	}
	if err := a.nextErr(); err != nil {
		return nil, err
	}
	return a.products, nil
}

func (a *fakeAdapter) FetchOrders(_ context.Context, _ integration.DateRange, _ integration.Pagination) ([]integration.RawOrder, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fetchCalls++
	if err := a.nextErr(); err != nil {
		return nil, err
	}
	return a.orders, nil
}

func (a *fakeAdapter) PushStockUpdate(_ context.Context, externalID string, quantity int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pushCalls++
	a.lastExtID = externalID
	a.lastQty = quantity
	return a.nextErr()
}

func (a *fakeAdapter) PushPriceUpdate(_ context.Context, externalID string, price decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pushCalls++
	a.lastExtID = externalID
	a.lastPrice = price
	return a.nextErr()
}

func (a *fakeAdapter) HealthCheck(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.healthCalls++
	return a.healthErr
}

// ---------------------------------------------------------------------------
// Builders
// ---------------------------------------------------------------------------

func newTestMetrics() *MetricsCollector {
	metrics, err := NewMetricsCollector(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		panic(err)
	}
	return metrics
}

func fastSettings() integration.Settings {
	s := integration.DefaultSettings()
	s.Timeout = time.Second
	s.HealthTimeout = time.Second
	s.MaxRetries = 0
	s.RetryBackoff = time.Millisecond
	return s
}

func newTestIntegration(userID uuid.UUID, code integration.ChannelCode) *integration.Integration {
	integ, err := integration.NewIntegration(userID, code, "", map[string]string{"api_key": "k"})
	if err != nil {
		panic(err)
	}
	integ.Settings = fastSettings()
	return integ
}

func newTestRegistry(repo integration.IntegrationRepository, adapters map[integration.ChannelCode]*fakeAdapter) *AdapterRegistry {
	factories := make(map[integration.ChannelCode]integration.AdapterFactory, len(adapters))
	for code, adapter := range adapters {
		adapter := adapter
		factories[code] = func(*integration.Integration) (integration.ChannelAdapter, error) {
			return adapter, nil
		}
	}
	return NewAdapterRegistry(repo, factories, zap.NewNop())
}
