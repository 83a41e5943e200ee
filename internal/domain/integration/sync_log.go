package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// SyncOperation
// ---------------------------------------------------------------------------

// SyncOperation names one orchestrated operation across active adapters.
type SyncOperation string

const (
	// OpSyncProducts pulls product listings from marketplace channels
	OpSyncProducts SyncOperation = "sync_products"
	// OpSyncOrders pulls orders within a date range
	OpSyncOrders SyncOperation = "sync_orders"
	// OpUpdateStock pushes a stock quantity to marketplace channels
	OpUpdateStock SyncOperation = "update_stock"
	// OpUpdatePrice pushes a price to marketplace channels
	OpUpdatePrice SyncOperation = "update_price"
)

// IsValid returns true if the operation is one the orchestrator runs
func (o SyncOperation) IsValid() bool {
	switch o {
	case OpSyncProducts, OpSyncOrders, OpUpdateStock, OpUpdatePrice:
		return true
	default:
		return false
	}
}

// String returns the string representation of SyncOperation
func (o SyncOperation) String() string {
	return string(o)
}

// Categories returns the channel categories an operation fans out to.
func (o SyncOperation) Categories() []Category {
	switch o {
	case OpSyncProducts, OpUpdateStock, OpUpdatePrice:
		return []Category{CategoryMarketplace, CategoryEcommerce}
	case OpSyncOrders:
		return []Category{CategoryMarketplace, CategoryEcommerce}
	default:
		return nil
	}
}

// ---------------------------------------------------------------------------
// SyncStatus and SkipReason
// ---------------------------------------------------------------------------

// SyncStatus is the outcome of a sync, per adapter or aggregate.
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusPartial SyncStatus = "partial"
	SyncStatusFailed  SyncStatus = "failed"
	SyncStatusSkipped SyncStatus = "skipped"
)

// String returns the string representation of SyncStatus
func (s SyncStatus) String() string {
	return string(s)
}

// SkipReason explains why an adapter was not called at all. Skips are not
// failures: they never feed the circuit breaker.
type SkipReason string

const (
	SkipNone        SkipReason = ""
	SkipCircuitOpen SkipReason = "circuit_open"
	SkipRateLimited SkipReason = "rate_limited"
)

// ---------------------------------------------------------------------------
// SyncResult
// ---------------------------------------------------------------------------

// SyncResult is the outcome of one adapter's participation in a sync cycle.
type SyncResult struct {
	// IntegrationID identifies the integration that ran
	IntegrationID uuid.UUID
	// ChannelCode is denormalized for readable logs
	ChannelCode ChannelCode
	// Status is the per-adapter outcome
	Status SyncStatus
	// SkipReason is set when Status is skipped
	SkipReason SkipReason
	// ItemCount is how many products/orders the call handled
	ItemCount int
	// FromCache reports whether the result was served from cache
	FromCache bool
	// Attempts is how many attempts were made (retries included)
	Attempts int
	// Duration is the wall time of the adapter execution
	Duration time.Duration
	// Error holds the final error message on failure
	Error string
}

// ---------------------------------------------------------------------------
// SyncLog Entity
// ---------------------------------------------------------------------------

// SyncLog is the append-only record of one orchestrated sync cycle. One row
// per RunSync call, holding the per-adapter results and the folded totals.
type SyncLog struct {
	// ID is the unique identifier of this log entry
	ID uuid.UUID
	// UserID is the seller the cycle ran for
	UserID uuid.UUID
	// Operation is what the cycle did
	Operation SyncOperation
	// Status is the folded outcome across adapters
	Status SyncStatus
	// Results holds the per-adapter outcomes
	Results []SyncResult
	// TotalCount is how many adapters were resolved for the cycle
	TotalCount int
	// SuccessCount is how many adapters succeeded
	SuccessCount int
	// FailureCount is how many adapters failed
	FailureCount int
	// SkipCount is how many adapters were skipped by a local gate
	SkipCount int
	// StartedAt is when the cycle began
	StartedAt time.Time
	// FinishedAt is when the cycle ended
	FinishedAt time.Time
	// CreatedAt is when the row was persisted
	CreatedAt time.Time
}

// NewSyncLog opens a log for a cycle that is about to fan out.
func NewSyncLog(userID uuid.UUID, operation SyncOperation) *SyncLog {
	return &SyncLog{
		ID:        uuid.New(),
		UserID:    userID,
		Operation: operation,
		Status:    SyncStatusPending,
		Results:   make([]SyncResult, 0),
		StartedAt: time.Now(),
	}
}

// AddResult folds one adapter outcome into the log.
func (l *SyncLog) AddResult(r SyncResult) {
	l.Results = append(l.Results, r)
	l.TotalCount++
	switch r.Status {
	case SyncStatusSuccess:
		l.SuccessCount++
	case SyncStatusFailed:
		l.FailureCount++
	case SyncStatusSkipped:
		l.SkipCount++
	}
}

// Finish computes the aggregate status. All adapters succeeding (or all
// skipped with none failing) is success; a mix is partial; none succeeding
// with at least one failure is failed.
func (l *SyncLog) Finish() {
	l.FinishedAt = time.Now()
	switch {
	case l.FailureCount == 0:
		l.Status = SyncStatusSuccess
	case l.SuccessCount > 0:
		l.Status = SyncStatusPartial
	default:
		l.Status = SyncStatusFailed
	}
}

// Duration is the wall time of the whole cycle.
func (l *SyncLog) Duration() time.Duration {
	if l.FinishedAt.IsZero() {
		return 0
	}
	return l.FinishedAt.Sub(l.StartedAt)
}

// ---------------------------------------------------------------------------
// SyncLogRepository Interface
// ---------------------------------------------------------------------------

// SyncLogFilter defines filter criteria for sync log listings
type SyncLogFilter struct {
	// Operation filters by operation (optional)
	Operation *SyncOperation
	// Status filters by aggregate status (optional)
	Status *SyncStatus
	// Since filters to cycles started after this time (optional)
	Since *time.Time
	// Page number (1-indexed)
	Page int
	// Page size
	PageSize int
}

// SyncLogRepository persists sync cycles. Append-only: logs are never
// updated or deleted by application code.
type SyncLogRepository interface {
	// Save persists a finished sync log
	Save(ctx context.Context, log *SyncLog) error

	// FindByID finds a sync log by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*SyncLog, error)

	// FindByUser lists a user's sync logs, newest first
	FindByUser(ctx context.Context, userID uuid.UUID, filter SyncLogFilter) ([]SyncLog, int64, error)
}
