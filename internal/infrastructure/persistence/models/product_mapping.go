package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/prapazar/backend/internal/domain/integration"
)

// ProductMappingModel is the persistence model for the ProductMapping entity.
type ProductMappingModel struct {
	ID                  uuid.UUID               `gorm:"type:uuid;primary_key"`
	UserID              uuid.UUID               `gorm:"type:uuid;not null;index:idx_product_mappings_user,priority:1;index:idx_product_mappings_user_product_channel,priority:1"`
	LocalProductID      uuid.UUID               `gorm:"type:uuid;not null;index:idx_product_mappings_user_product_channel,priority:2"`
	ChannelCode         integration.ChannelCode `gorm:"type:varchar(30);not null;index:idx_product_mappings_user_product_channel,priority:3"`
	ExternalProductID   string                  `gorm:"type:varchar(100);not null;index"`
	ExternalProductName string                  `gorm:"type:varchar(255)"`
	SKUMappingsJSON     string                  `gorm:"type:jsonb;column:sku_mappings"`
	IsActive            bool                    `gorm:"not null;default:true"`
	SyncEnabled         bool                    `gorm:"not null;default:true"`
	LastSyncAt          *time.Time              `gorm:"index"`
	LastSyncStatus      integration.SyncStatus  `gorm:"type:varchar(20);not null;default:'pending'"`
	LastSyncError       string                  `gorm:"type:text"`
	CreatedAt           time.Time               `gorm:"not null"`
	UpdatedAt           time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductMappingModel) TableName() string {
	return "product_mappings"
}

// ToDomain converts the persistence model to a domain ProductMapping entity.
func (m *ProductMappingModel) ToDomain() *integration.ProductMapping {
	mapping := &integration.ProductMapping{
		ID:                  m.ID,
		UserID:              m.UserID,
		LocalProductID:      m.LocalProductID,
		ChannelCode:         m.ChannelCode,
		ExternalProductID:   m.ExternalProductID,
		ExternalProductName: m.ExternalProductName,
		SKUMappings:         make([]integration.SKUMapping, 0),
		IsActive:            m.IsActive,
		SyncEnabled:         m.SyncEnabled,
		LastSyncAt:          m.LastSyncAt,
		LastSyncStatus:      m.LastSyncStatus,
		LastSyncError:       m.LastSyncError,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}

	if m.SKUMappingsJSON != "" {
		var skuMappings []integration.SKUMapping
		if err := json.Unmarshal([]byte(m.SKUMappingsJSON), &skuMappings); err == nil {
			mapping.SKUMappings = skuMappings
		}
	}

	return mapping
}

// FromDomain populates the persistence model from a domain ProductMapping entity.
func (m *ProductMappingModel) FromDomain(pm *integration.ProductMapping) {
	m.ID = pm.ID
	m.UserID = pm.UserID
	m.LocalProductID = pm.LocalProductID
	m.ChannelCode = pm.ChannelCode
	m.ExternalProductID = pm.ExternalProductID
	m.ExternalProductName = pm.ExternalProductName
	m.IsActive = pm.IsActive
	m.SyncEnabled = pm.SyncEnabled
	m.LastSyncAt = pm.LastSyncAt
	m.LastSyncStatus = pm.LastSyncStatus
	m.LastSyncError = pm.LastSyncError
	m.CreatedAt = pm.CreatedAt
	m.UpdatedAt = pm.UpdatedAt

	if len(pm.SKUMappings) > 0 {
		if jsonBytes, err := json.Marshal(pm.SKUMappings); err == nil {
			m.SKUMappingsJSON = string(jsonBytes)
		}
	} else {
		m.SKUMappingsJSON = "[]"
	}
}

// ProductMappingModelFromDomain creates a new persistence model from a domain ProductMapping entity.
func ProductMappingModelFromDomain(pm *integration.ProductMapping) *ProductMappingModel {
	m := &ProductMappingModel{}
	m.FromDomain(pm)
	return m
}
