package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prapazar/backend/internal/domain/integration"
	"github.com/prapazar/backend/internal/infrastructure/persistence/models"
)

// GormProductMappingRepository implements ProductMappingRepository using GORM
type GormProductMappingRepository struct {
	db *gorm.DB
}

// NewGormProductMappingRepository creates a new GormProductMappingRepository
func NewGormProductMappingRepository(db *gorm.DB) *GormProductMappingRepository {
	return &GormProductMappingRepository{db: db}
}

// ---------------------------------------------------------------------------
// ProductMappingReader implementation
// ---------------------------------------------------------------------------

// FindByID finds a mapping by its ID
func (r *GormProductMappingRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.ProductMapping, error) {
	var model models.ProductMappingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLocalProduct finds all channel mappings for a local product
func (r *GormProductMappingRepository) FindByLocalProduct(ctx context.Context, userID, localProductID uuid.UUID) ([]integration.ProductMapping, error) {
	var mappingModels []models.ProductMappingModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND local_product_id = ?", userID, localProductID).
		Order("channel_code ASC").
		Find(&mappingModels).Error; err != nil {
		return nil, err
	}
	return toDomainMappings(mappingModels), nil
}

// FindByLocalProductAndChannel finds a specific mapping
func (r *GormProductMappingRepository) FindByLocalProductAndChannel(ctx context.Context, userID, localProductID uuid.UUID, code integration.ChannelCode) (*integration.ProductMapping, error) {
	var model models.ProductMappingModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND local_product_id = ? AND channel_code = ?", userID, localProductID, code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByExternalProduct finds a mapping by external product ID
func (r *GormProductMappingRepository) FindByExternalProduct(ctx context.Context, userID uuid.UUID, code integration.ChannelCode, externalProductID string) (*integration.ProductMapping, error) {
	var model models.ProductMappingModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND channel_code = ? AND external_product_id = ?", userID, code, externalProductID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ---------------------------------------------------------------------------
// ProductMappingFinder implementation
// ---------------------------------------------------------------------------

// FindAll finds all mappings for a user with optional filters
func (r *GormProductMappingRepository) FindAll(ctx context.Context, userID uuid.UUID, filter integration.ProductMappingFilter) ([]integration.ProductMapping, error) {
	query := applyMappingFilter(r.db.WithContext(ctx).
		Model(&models.ProductMappingModel{}).
		Where("user_id = ?", userID), filter)

	query = query.Order("created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var mappingModels []models.ProductMappingModel
	if err := query.Find(&mappingModels).Error; err != nil {
		return nil, err
	}
	return toDomainMappings(mappingModels), nil
}

// FindSyncEnabled finds all mappings with sync enabled for a channel
func (r *GormProductMappingRepository) FindSyncEnabled(ctx context.Context, userID uuid.UUID, code integration.ChannelCode) ([]integration.ProductMapping, error) {
	var mappingModels []models.ProductMappingModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND channel_code = ? AND is_active = ? AND sync_enabled = ?", userID, code, true, true).
		Order("created_at DESC").
		Find(&mappingModels).Error; err != nil {
		return nil, err
	}
	return toDomainMappings(mappingModels), nil
}

// Count counts mappings matching the filter
func (r *GormProductMappingRepository) Count(ctx context.Context, userID uuid.UUID, filter integration.ProductMappingFilter) (int64, error) {
	var count int64
	query := applyMappingFilter(r.db.WithContext(ctx).
		Model(&models.ProductMappingModel{}).
		Where("user_id = ?", userID), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByExternalProduct checks if a mapping exists for an external product
func (r *GormProductMappingRepository) ExistsByExternalProduct(ctx context.Context, userID uuid.UUID, code integration.ChannelCode, externalProductID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProductMappingModel{}).
		Where("user_id = ? AND channel_code = ? AND external_product_id = ?", userID, code, externalProductID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ---------------------------------------------------------------------------
// ProductMappingWriter implementation
// ---------------------------------------------------------------------------

// Save creates or updates a mapping
func (r *GormProductMappingRepository) Save(ctx context.Context, mapping *integration.ProductMapping) error {
	model := models.ProductMappingModelFromDomain(mapping)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveBatch creates or updates multiple mappings
func (r *GormProductMappingRepository) SaveBatch(ctx context.Context, mappings []*integration.ProductMapping) error {
	if len(mappings) == 0 {
		return nil
	}

	mappingModels := make([]*models.ProductMappingModel, len(mappings))
	for i, m := range mappings {
		mappingModels[i] = models.ProductMappingModelFromDomain(m)
	}
	return r.db.WithContext(ctx).Save(mappingModels).Error
}

// Delete deletes a mapping
func (r *GormProductMappingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductMappingModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return integration.ErrMappingNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// applyMappingFilter applies filter options without pagination
func applyMappingFilter(query *gorm.DB, filter integration.ProductMappingFilter) *gorm.DB {
	if filter.ChannelCode != nil && filter.ChannelCode.IsValid() {
		query = query.Where("channel_code = ?", *filter.ChannelCode)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.SyncEnabled != nil {
		query = query.Where("sync_enabled = ?", *filter.SyncEnabled)
	}
	if filter.SearchKeyword != "" {
		pattern := "%" + escapeLikePattern(filter.SearchKeyword) + "%"
		query = query.Where("external_product_name ILIKE ? OR external_product_id ILIKE ?", pattern, pattern)
	}
	return query
}

// toDomainMappings converts a slice of models to domain entities
func toDomainMappings(mappingModels []models.ProductMappingModel) []integration.ProductMapping {
	mappings := make([]integration.ProductMapping, len(mappingModels))
	for i, model := range mappingModels {
		mappings[i] = *model.ToDomain()
	}
	return mappings
}

// escapeLikePattern escapes special characters in LIKE patterns
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

// Ensure GormProductMappingRepository implements ProductMappingRepository
var _ integration.ProductMappingRepository = (*GormProductMappingRepository)(nil)
