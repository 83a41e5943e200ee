package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	appintegration "github.com/prapazar/backend/internal/application/integration"
	"github.com/prapazar/backend/internal/domain/integration"
	"github.com/prapazar/backend/internal/infrastructure/cache"
)

// ---------------------------------------------------------------------------
// In-memory repositories
// ---------------------------------------------------------------------------

type memIntegrationRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*integration.Integration
}

func newMemIntegrationRepo() *memIntegrationRepo {
	return &memIntegrationRepo{items: make(map[uuid.UUID]*integration.Integration)}
}

func (r *memIntegrationRepo) FindByID(_ context.Context, id uuid.UUID) (*integration.Integration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.items[id]
	if !ok || i.DeletedAt != nil {
		return nil, integration.ErrIntegrationNotFound
	}
	clone := *i
	return &clone, nil
}

func (r *memIntegrationRepo) FindByUserAndChannel(_ context.Context, userID uuid.UUID, code integration.ChannelCode) (*integration.Integration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.items {
		if i.UserID == userID && i.ChannelCode == code && i.DeletedAt == nil {
			clone := *i
			return &clone, nil
		}
	}
	return nil, integration.ErrIntegrationNotFound
}

func (r *memIntegrationRepo) FindByUser(_ context.Context, userID uuid.UUID, category *integration.Category) ([]integration.Integration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []integration.Integration
	for _, i := range r.items {
		if i.UserID != userID || i.DeletedAt != nil {
			continue
		}
		if category != nil && i.Category != *category {
			continue
		}
		out = append(out, *i)
	}
	return out, nil
}

func (r *memIntegrationRepo) FindActive(_ context.Context) ([]integration.Integration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []integration.Integration
	for _, i := range r.items {
		if i.Status == integration.StatusActive && i.DeletedAt == nil {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (r *memIntegrationRepo) ExistsByUserAndChannel(_ context.Context, userID uuid.UUID, code integration.ChannelCode) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.items {
		if i.UserID == userID && i.ChannelCode == code && i.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (r *memIntegrationRepo) Save(_ context.Context, integ *integration.Integration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *integ
	r.items[integ.ID] = &clone
	return nil
}

func (r *memIntegrationRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.items[id]; ok {
		i.SoftDelete()
	}
	return nil
}

type memSyncLogRepo struct {
	mu   sync.Mutex
	logs []integration.SyncLog
}

func (r *memSyncLogRepo) Save(_ context.Context, log *integration.SyncLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *memSyncLogRepo) FindByID(_ context.Context, id uuid.UUID) (*integration.SyncLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.logs {
		if r.logs[i].ID == id {
			clone := r.logs[i]
			return &clone, nil
		}
	}
	return nil, integration.ErrIntegrationNotFound
}

func (r *memSyncLogRepo) FindByUser(_ context.Context, userID uuid.UUID, filter integration.SyncLogFilter) ([]integration.SyncLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []integration.SyncLog
	for i := len(r.logs) - 1; i >= 0; i-- {
		log := r.logs[i]
		if log.UserID != userID {
			continue
		}
		if filter.Operation != nil && log.Operation != *filter.Operation {
			continue
		}
		if filter.Status != nil && log.Status != *filter.Status {
			continue
		}
		out = append(out, log)
	}
	return out, int64(len(out)), nil
}

type memMappingRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*integration.ProductMapping
}

func newMemMappingRepo() *memMappingRepo {
	return &memMappingRepo{items: make(map[uuid.UUID]*integration.ProductMapping)}
}

func (r *memMappingRepo) FindByID(_ context.Context, id uuid.UUID) (*integration.ProductMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok {
		return nil, integration.ErrMappingNotFound
	}
	clone := *m
	return &clone, nil
}

func (r *memMappingRepo) FindByLocalProduct(_ context.Context, userID, localProductID uuid.UUID) ([]integration.ProductMapping, error) {
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

func (r *memMappingRepo) FindByLocalProductAndChannel(_ context.Context, userID, localProductID uuid.UUID, code integration.ChannelCode) (*integration.ProductMapping, error) {
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

func (r *memMappingRepo) FindByExternalProduct(_ context.Context, userID uuid.UUID, code integration.ChannelCode, externalProductID string) (*integration.ProductMapping, error) {
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

func (r *memMappingRepo) FindAll(_ context.Context, userID uuid.UUID, filter integration.ProductMappingFilter) ([]integration.ProductMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []integration.ProductMapping
	for _, m := range r.items {
		if m.UserID != userID {
			continue
		}
		if filter.ChannelCode != nil && m.ChannelCode != *filter.ChannelCode {
			continue
		}
		if filter.SyncEnabled != nil && m.SyncEnabled != *filter.SyncEnabled {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func (r *memMappingRepo) FindSyncEnabled(_ context.Context, userID uuid.UUID, code integration.ChannelCode) ([]integration.ProductMapping, error) {
	enabled := true
	return r.FindAll(context.Background(), userID, integration.ProductMappingFilter{ChannelCode: &code, SyncEnabled: &enabled})
}

func (r *memMappingRepo) Count(ctx context.Context, userID uuid.UUID, filter integration.ProductMappingFilter) (int64, error) {
	all, err := r.FindAll(ctx, userID, filter)
	return int64(len(all)), err
}

func (r *memMappingRepo) ExistsByExternalProduct(ctx context.Context, userID uuid.UUID, code integration.ChannelCode, externalProductID string) (bool, error) {
	_, err := r.FindByExternalProduct(ctx, userID, code, externalProductID)
	return err == nil, nil
}

func (r *memMappingRepo) Save(_ context.Context, mapping *integration.ProductMapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *mapping
	r.items[mapping.ID] = &clone
	return nil
}

func (r *memMappingRepo) SaveBatch(ctx context.Context, mappings []*integration.ProductMapping) error {
	for _, m := range mappings {
		if err := r.Save(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *memMappingRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

// ---------------------------------------------------------------------------
// Stub adapter
// ---------------------------------------------------------------------------

type stubAdapter struct {
	code integration.ChannelCode
}

var _ integration.ChannelAdapter = (*stubAdapter)(nil)

func (a *stubAdapter) Code() integration.ChannelCode { return a.code }
func (a *stubAdapter) Connect(context.Context) error { return nil }
func (a *stubAdapter) FetchProducts(context.Context, integration.Pagination) ([]integration.RawProduct, error) {
	return []integration.RawProduct{{ExternalID: "ext-1", SKU: "SKU-1", Title: "Test"}}, nil
}
func (a *stubAdapter) PushStockUpdate(context.Context, string, int) error { return nil }
func (a *stubAdapter) PushPriceUpdate(context.Context, string, decimal.Decimal) error {
	return nil
}
func (a *stubAdapter) FetchOrders(context.Context, integration.DateRange, integration.Pagination) ([]integration.RawOrder, error) {
	return nil, nil
}
func (a *stubAdapter) HealthCheck(context.Context) error { return nil }

// ---------------------------------------------------------------------------
// Test fixture
// ---------------------------------------------------------------------------

type fixture struct {
	router   *gin.Engine
	userID   uuid.UUID
	registry *appintegration.AdapterRegistry
	mappings *memMappingRepo
	logs     *memSyncLogRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	integRepo := newMemIntegrationRepo()
	logRepo := &memSyncLogRepo{}
	mappingRepo := newMemMappingRepo()
	store := cache.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	factories := map[integration.ChannelCode]integration.AdapterFactory{
		integration.ChannelCodeTrendyol: func(cfg *integration.Integration) (integration.ChannelAdapter, error) {
			return &stubAdapter{code: integration.ChannelCodeTrendyol}, nil
		},
		integration.ChannelCodeHepsiburada: func(cfg *integration.Integration) (integration.ChannelAdapter, error) {
			return &stubAdapter{code: integration.ChannelCodeHepsiburada}, nil
		},
	}

	logger := zap.NewNop()
	registry := appintegration.NewAdapterRegistry(integRepo, factories, logger)

	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := appintegration.NewMetricsCollector(meter)
	if err != nil {
		t.Fatalf("metrics collector: %v", err)
	}

	orchestrator := appintegration.NewSyncOrchestrator(registry, logRepo, mappingRepo, store, metrics, logger)
	status := appintegration.NewStatusService(registry, metrics)
	mappingSvc := appintegration.NewProductMappingService(mappingRepo)

	router := gin.New()
	api := router.Group("/api/v1")
	NewIntegrationHandler(registry, status, logger).RegisterRoutes(api)
	NewSyncHandler(orchestrator, logRepo, logger).RegisterRoutes(api)
	NewMappingHandler(mappingSvc).RegisterRoutes(api)
	NewSystemHandler(nil).RegisterRoutes(api)

	return &fixture{
		router:   router,
		userID:   uuid.New(),
		registry: registry,
		mappings: mappingRepo,
		logs:     logRepo,
	}
}

// do sends a request as the fixture user and returns the recorder.
func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", f.userID.String())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// registerAndActivate registers an integration for the fixture user and
// brings it live.
func (f *fixture) registerAndActivate(t *testing.T, code integration.ChannelCode) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	integ, err := f.registry.Register(ctx, f.userID, code, "", map[string]string{"api_key": "k"}, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := f.registry.Activate(ctx, f.userID, integ.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}
	return integ.ID
}

var _ integration.IntegrationRepository = (*memIntegrationRepo)(nil)
var _ integration.SyncLogRepository = (*memSyncLogRepo)(nil)
var _ integration.ProductMappingRepository = (*memMappingRepo)(nil)
