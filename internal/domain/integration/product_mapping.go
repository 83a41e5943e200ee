package integration

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Mapping Errors
// ---------------------------------------------------------------------------

var (
	ErrMappingNotFound         = errors.New("integration: product mapping not found")
	ErrMappingInvalidUserID    = errors.New("integration: invalid user ID for mapping")
	ErrMappingInvalidProductID = errors.New("integration: invalid local product ID")
	ErrMappingInvalidChannel   = errors.New("integration: invalid channel code for mapping")
	ErrMappingInvalidExternal  = errors.New("integration: invalid external product ID")
	ErrMappingExists           = errors.New("integration: product mapping already exists")
)

// ---------------------------------------------------------------------------
// ProductMapping Entity
// ---------------------------------------------------------------------------

// ProductMapping links a local product to its identity on one channel. It is
// what routes stock and price updates: without a mapping the orchestrator
// has no external ID to push to. Mappings are upserted automatically on the
// first successful product sync and can also be managed by hand.
type ProductMapping struct {
	// ID is the unique identifier of this mapping
	ID uuid.UUID
	// UserID is the seller this mapping belongs to
	UserID uuid.UUID
	// LocalProductID is our internal product ID
	LocalProductID uuid.UUID
	// ChannelCode identifies which channel this mapping is for
	ChannelCode ChannelCode
	// ExternalProductID is the product ID on the channel
	ExternalProductID string
	// ExternalProductName is the product name on the channel (for reference)
	ExternalProductName string
	// SKUMappings contains the SKU-level mappings
	SKUMappings []SKUMapping
	// IsActive indicates if this mapping is currently active
	IsActive bool
	// SyncEnabled indicates if auto-sync is enabled for this mapping
	SyncEnabled bool
	// LastSyncAt is when this mapping was last synced
	LastSyncAt *time.Time
	// LastSyncStatus is the result of the last sync
	LastSyncStatus SyncStatus
	// LastSyncError contains any error from last sync
	LastSyncError string
	// CreatedAt is when this mapping was created
	CreatedAt time.Time
	// UpdatedAt is when this mapping was last updated
	UpdatedAt time.Time
}

// NewProductMapping creates a new product mapping
func NewProductMapping(userID, localProductID uuid.UUID, code ChannelCode, externalProductID string) (*ProductMapping, error) {
	if userID == uuid.Nil {
		return nil, ErrMappingInvalidUserID
	}
	if localProductID == uuid.Nil {
		return nil, ErrMappingInvalidProductID
	}
	if !code.IsValid() {
		return nil, ErrMappingInvalidChannel
	}
	if externalProductID == "" {
		return nil, ErrMappingInvalidExternal
	}

	now := time.Now()
	return &ProductMapping{
		ID:                uuid.New(),
		UserID:            userID,
		LocalProductID:    localProductID,
		ChannelCode:       code,
		ExternalProductID: externalProductID,
		SKUMappings:       make([]SKUMapping, 0),
		IsActive:          true,
		SyncEnabled:       true,
		LastSyncStatus:    SyncStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// Validate validates the product mapping
func (m *ProductMapping) Validate() error {
	if m.UserID == uuid.Nil {
		return ErrMappingInvalidUserID
	}
	if m.LocalProductID == uuid.Nil {
		return ErrMappingInvalidProductID
	}
	if !m.ChannelCode.IsValid() {
		return ErrMappingInvalidChannel
	}
	if m.ExternalProductID == "" {
		return ErrMappingInvalidExternal
	}
	return nil
}

// AddSKUMapping adds a SKU mapping to this product mapping
func (m *ProductMapping) AddSKUMapping(localSKU, externalSKU string) error {
	if localSKU == "" || externalSKU == "" {
		return errors.New("integration: both local and external SKU are required")
	}

	for _, existing := range m.SKUMappings {
		if existing.LocalSKU == localSKU && existing.ExternalSKU == externalSKU {
			return nil // Already exists
		}
	}

	m.SKUMappings = append(m.SKUMappings, SKUMapping{
		LocalSKU:    localSKU,
		ExternalSKU: externalSKU,
		IsActive:    true,
	})
	m.UpdatedAt = time.Now()
	return nil
}

// RemoveSKUMapping removes a SKU mapping by external SKU
func (m *ProductMapping) RemoveSKUMapping(externalSKU string) {
	for i, mapping := range m.SKUMappings {
		if mapping.ExternalSKU == externalSKU {
			m.SKUMappings = append(m.SKUMappings[:i], m.SKUMappings[i+1:]...)
			m.UpdatedAt = time.Now()
			return
		}
	}
}

// ExternalSKUFor returns the external SKU for a local SKU
func (m *ProductMapping) ExternalSKUFor(localSKU string) (string, bool) {
	for _, mapping := range m.SKUMappings {
		if mapping.LocalSKU == localSKU && mapping.IsActive {
			return mapping.ExternalSKU, true
		}
	}
	return "", false
}

// EnableSync enables automatic synchronization
func (m *ProductMapping) EnableSync() {
	m.SyncEnabled = true
	m.UpdatedAt = time.Now()
}

// DisableSync disables automatic synchronization
func (m *ProductMapping) DisableSync() {
	m.SyncEnabled = false
	m.UpdatedAt = time.Now()
}

// RecordSyncSuccess records a successful sync
func (m *ProductMapping) RecordSyncSuccess() {
	now := time.Now()
	m.LastSyncAt = &now
	m.LastSyncStatus = SyncStatusSuccess
	m.LastSyncError = ""
	m.UpdatedAt = now
}

// RecordSyncFailure records a failed sync
func (m *ProductMapping) RecordSyncFailure(errMsg string) {
	now := time.Now()
	m.LastSyncAt = &now
	m.LastSyncStatus = SyncStatusFailed
	m.LastSyncError = errMsg
	m.UpdatedAt = now
}

// ---------------------------------------------------------------------------
// SKUMapping Value Object
// ---------------------------------------------------------------------------

// SKUMapping links a local SKU code to its counterpart on the channel
type SKUMapping struct {
	// LocalSKU is our internal SKU code
	LocalSKU string
	// ExternalSKU is the SKU code on the channel
	ExternalSKU string
	// IsActive indicates if this SKU mapping is active
	IsActive bool
}

// ---------------------------------------------------------------------------
// ProductMappingRepository Interface
// ---------------------------------------------------------------------------

// ProductMappingReader defines the interface for reading product mappings
type ProductMappingReader interface {
	// FindByID finds a mapping by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*ProductMapping, error)

	// FindByLocalProduct finds all channel mappings for a local product
	FindByLocalProduct(ctx context.Context, userID, localProductID uuid.UUID) ([]ProductMapping, error)

	// FindByLocalProductAndChannel finds a specific mapping
	FindByLocalProductAndChannel(ctx context.Context, userID, localProductID uuid.UUID, code ChannelCode) (*ProductMapping, error)

	// FindByExternalProduct finds a mapping by external product ID
	FindByExternalProduct(ctx context.Context, userID uuid.UUID, code ChannelCode, externalProductID string) (*ProductMapping, error)
}

// ProductMappingFinder defines the interface for searching product mappings
type ProductMappingFinder interface {
	// FindAll finds all mappings for a user with optional filters
	FindAll(ctx context.Context, userID uuid.UUID, filter ProductMappingFilter) ([]ProductMapping, error)

	// FindSyncEnabled finds all mappings with sync enabled for a channel
	FindSyncEnabled(ctx context.Context, userID uuid.UUID, code ChannelCode) ([]ProductMapping, error)

	// Count counts mappings matching the filter
	Count(ctx context.Context, userID uuid.UUID, filter ProductMappingFilter) (int64, error)

	// ExistsByExternalProduct checks if a mapping exists for an external product
	ExistsByExternalProduct(ctx context.Context, userID uuid.UUID, code ChannelCode, externalProductID string) (bool, error)
}

// ProductMappingWriter defines the interface for persisting product mappings
type ProductMappingWriter interface {
	// Save creates or updates a mapping
	Save(ctx context.Context, mapping *ProductMapping) error

	// SaveBatch creates or updates multiple mappings
	SaveBatch(ctx context.Context, mappings []*ProductMapping) error

	// Delete deletes a mapping
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductMappingRepository defines the full interface for product mapping persistence
type ProductMappingRepository interface {
	ProductMappingReader
	ProductMappingFinder
	ProductMappingWriter
}

// ProductMappingFilter defines filter criteria for product mappings
type ProductMappingFilter struct {
	// ChannelCode filters by channel (optional)
	ChannelCode *ChannelCode
	// IsActive filters by active status (optional)
	IsActive *bool
	// SyncEnabled filters by sync enabled status (optional)
	SyncEnabled *bool
	// SearchKeyword searches in external product names (optional)
	SearchKeyword string
	// Page number (1-indexed)
	Page int
	// Page size
	PageSize int
}
