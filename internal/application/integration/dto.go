package integration

import (
	"time"

	"github.com/google/uuid"

	"github.com/prapazar/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Integration DTOs
// ---------------------------------------------------------------------------

// IntegrationResponse represents a stored integration in API responses.
// Credentials never leave the application layer.
type IntegrationResponse struct {
	ID           uuid.UUID               `json:"id"`
	ChannelCode  integration.ChannelCode `json:"channel_code"`
	ChannelName  string                  `json:"channel_name"`
	Name         string                  `json:"name"`
	Category     integration.Category    `json:"category"`
	Status       integration.Status      `json:"status"`
	LastHealthAt *time.Time              `json:"last_health_at,omitempty"`
	LastHealthOK bool                    `json:"last_health_ok"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// ToIntegrationResponse converts a domain Integration to a response DTO.
func ToIntegrationResponse(i *integration.Integration) IntegrationResponse {
	return IntegrationResponse{
		ID:           i.ID,
		ChannelCode:  i.ChannelCode,
		ChannelName:  i.ChannelCode.DisplayName(),
		Name:         i.Name,
		Category:     i.Category,
		Status:       i.Status,
		LastHealthAt: i.LastHealthAt,
		LastHealthOK: i.LastHealthOK,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}

// ToIntegrationResponses converts a slice of integrations.
func ToIntegrationResponses(items []integration.Integration) []IntegrationResponse {
	out := make([]IntegrationResponse, len(items))
	for i := range items {
		out[i] = ToIntegrationResponse(&items[i])
	}
	return out
}

// ---------------------------------------------------------------------------
// Status DTOs
// ---------------------------------------------------------------------------

// IntegrationStatusResponse combines stored state with the live protection
// state of one integration.
type IntegrationStatusResponse struct {
	IntegrationResponse
	Live          bool                `json:"live"`
	BreakerState  string              `json:"breaker_state,omitempty"`
	FailureCount  int                 `json:"failure_count"`
	RateLimit     int                 `json:"rate_limit,omitempty"`
	RateRemaining int                 `json:"rate_remaining,omitempty"`
	Stats         *ChannelStatsDetail `json:"stats,omitempty"`
}

// ChannelStatsDetail is the per-channel metrics slice of a status response.
type ChannelStatsDetail struct {
	Requests      int64      `json:"requests"`
	Successes     int64      `json:"successes"`
	Failures      int64      `json:"failures"`
	Skips         int64      `json:"skips"`
	ErrorRate     float64    `json:"error_rate"`
	AvgLatencyMS  int64      `json:"avg_latency_ms"`
	LastSuccessAt *time.Time `json:"last_success_at,omitempty"`
	LastFailureAt *time.Time `json:"last_failure_at,omitempty"`
}

func toChannelStatsDetail(s AdapterStats) *ChannelStatsDetail {
	return &ChannelStatsDetail{
		Requests:      s.Requests,
		Successes:     s.Successes,
		Failures:      s.Failures,
		Skips:         s.Skips,
		ErrorRate:     s.ErrorRate(),
		AvgLatencyMS:  s.AvgLatency.Milliseconds(),
		LastSuccessAt: s.LastSuccessAt,
		LastFailureAt: s.LastFailureAt,
	}
}

// MetricsResponse is the comprehensive metrics rollup across channels.
type MetricsResponse struct {
	Global   GlobalStatsDetail              `json:"global"`
	Channels map[string]*ChannelStatsDetail `json:"channels"`
}

// GlobalStatsDetail is the cross-channel slice of a metrics response.
type GlobalStatsDetail struct {
	Requests  int64   `json:"requests"`
	Successes int64   `json:"successes"`
	Failures  int64   `json:"failures"`
	Skips     int64   `json:"skips"`
	ErrorRate float64 `json:"error_rate"`
}

// ---------------------------------------------------------------------------
// Sync Log DTOs
// ---------------------------------------------------------------------------

// SyncLogResponse represents one sync cycle in API responses.
type SyncLogResponse struct {
	ID           uuid.UUID                `json:"id"`
	Operation    integration.SyncOperation `json:"operation"`
	Status       integration.SyncStatus   `json:"status"`
	Results      []SyncResultResponse     `json:"results"`
	TotalCount   int                      `json:"total_count"`
	SuccessCount int                      `json:"success_count"`
	FailureCount int                      `json:"failure_count"`
	SkipCount    int                      `json:"skip_count"`
	StartedAt    time.Time                `json:"started_at"`
	FinishedAt   time.Time                `json:"finished_at"`
	DurationMS   int64                    `json:"duration_ms"`
}

// SyncResultResponse represents one adapter's outcome within a cycle.
type SyncResultResponse struct {
	IntegrationID uuid.UUID               `json:"integration_id"`
	ChannelCode   integration.ChannelCode `json:"channel_code"`
	Status        integration.SyncStatus  `json:"status"`
	SkipReason    integration.SkipReason  `json:"skip_reason,omitempty"`
	ItemCount     int                     `json:"item_count"`
	FromCache     bool                    `json:"from_cache"`
	Attempts      int                     `json:"attempts"`
	DurationMS    int64                   `json:"duration_ms"`
	Error         string                  `json:"error,omitempty"`
}

// ToSyncLogResponse converts a domain SyncLog to a response DTO.
func ToSyncLogResponse(l *integration.SyncLog) SyncLogResponse {
	results := make([]SyncResultResponse, len(l.Results))
	for i, r := range l.Results {
		results[i] = SyncResultResponse{
			IntegrationID: r.IntegrationID,
			ChannelCode:   r.ChannelCode,
			Status:        r.Status,
			SkipReason:    r.SkipReason,
			ItemCount:     r.ItemCount,
			FromCache:     r.FromCache,
			Attempts:      r.Attempts,
			DurationMS:    r.Duration.Milliseconds(),
			Error:         r.Error,
		}
	}
	return SyncLogResponse{
		ID:           l.ID,
		Operation:    l.Operation,
		Status:       l.Status,
		Results:      results,
		TotalCount:   l.TotalCount,
		SuccessCount: l.SuccessCount,
		FailureCount: l.FailureCount,
		SkipCount:    l.SkipCount,
		StartedAt:    l.StartedAt,
		FinishedAt:   l.FinishedAt,
		DurationMS:   l.Duration().Milliseconds(),
	}
}

// ToSyncLogResponses converts a slice of sync logs.
func ToSyncLogResponses(logs []integration.SyncLog) []SyncLogResponse {
	out := make([]SyncLogResponse, len(logs))
	for i := range logs {
		out[i] = ToSyncLogResponse(&logs[i])
	}
	return out
}

// ---------------------------------------------------------------------------
// Product Mapping DTOs
// ---------------------------------------------------------------------------

// ProductMappingResponse represents a product mapping in API responses.
type ProductMappingResponse struct {
	ID                  uuid.UUID               `json:"id"`
	LocalProductID      uuid.UUID               `json:"local_product_id"`
	ChannelCode         integration.ChannelCode `json:"channel_code"`
	ChannelName         string                  `json:"channel_name"`
	ExternalProductID   string                  `json:"external_product_id"`
	ExternalProductName string                  `json:"external_product_name,omitempty"`
	SKUMappings         []SKUMappingResponse    `json:"sku_mappings"`
	IsActive            bool                    `json:"is_active"`
	SyncEnabled         bool                    `json:"sync_enabled"`
	LastSyncAt          *time.Time              `json:"last_sync_at,omitempty"`
	LastSyncStatus      integration.SyncStatus  `json:"last_sync_status"`
	LastSyncError       string                  `json:"last_sync_error,omitempty"`
	CreatedAt           time.Time               `json:"created_at"`
	UpdatedAt           time.Time               `json:"updated_at"`
}

// SKUMappingResponse represents a SKU mapping in API responses.
type SKUMappingResponse struct {
	LocalSKU    string `json:"local_sku"`
	ExternalSKU string `json:"external_sku"`
	IsActive    bool   `json:"is_active"`
}

// ToProductMappingResponse converts a domain ProductMapping to a response DTO.
func ToProductMappingResponse(m *integration.ProductMapping) ProductMappingResponse {
	skus := make([]SKUMappingResponse, len(m.SKUMappings))
	for i, sku := range m.SKUMappings {
		skus[i] = SKUMappingResponse{
			LocalSKU:    sku.LocalSKU,
			ExternalSKU: sku.ExternalSKU,
			IsActive:    sku.IsActive,
		}
	}
	return ProductMappingResponse{
		ID:                  m.ID,
		LocalProductID:      m.LocalProductID,
		ChannelCode:         m.ChannelCode,
		ChannelName:         m.ChannelCode.DisplayName(),
		ExternalProductID:   m.ExternalProductID,
		ExternalProductName: m.ExternalProductName,
		SKUMappings:         skus,
		IsActive:            m.IsActive,
		SyncEnabled:         m.SyncEnabled,
		LastSyncAt:          m.LastSyncAt,
		LastSyncStatus:      m.LastSyncStatus,
		LastSyncError:       m.LastSyncError,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// ToProductMappingResponses converts a slice of mappings.
func ToProductMappingResponses(mappings []integration.ProductMapping) []ProductMappingResponse {
	out := make([]ProductMappingResponse, len(mappings))
	for i := range mappings {
		out[i] = ToProductMappingResponse(&mappings[i])
	}
	return out
}
