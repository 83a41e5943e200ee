package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prapazar/backend/internal/domain/integration"
	"github.com/prapazar/backend/internal/infrastructure/persistence/models"
)

// GormIntegrationRepository implements IntegrationRepository using GORM
type GormIntegrationRepository struct {
	db *gorm.DB
}

// NewGormIntegrationRepository creates a new GormIntegrationRepository
func NewGormIntegrationRepository(db *gorm.DB) *GormIntegrationRepository {
	return &GormIntegrationRepository{db: db}
}

// ---------------------------------------------------------------------------
// IntegrationReader implementation
// ---------------------------------------------------------------------------

// FindByID finds an integration by its ID
func (r *GormIntegrationRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Integration, error) {
	var model models.IntegrationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrIntegrationNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUserAndChannel finds a user's non-deleted integration for a channel
func (r *GormIntegrationRepository) FindByUserAndChannel(ctx context.Context, userID uuid.UUID, code integration.ChannelCode) (*integration.Integration, error) {
	var model models.IntegrationModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND channel_code = ? AND deleted_at IS NULL", userID, code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrIntegrationNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ---------------------------------------------------------------------------
// IntegrationFinder implementation
// ---------------------------------------------------------------------------

// FindByUser lists a user's non-deleted integrations, optionally by category
func (r *GormIntegrationRepository) FindByUser(ctx context.Context, userID uuid.UUID, category *integration.Category) ([]integration.Integration, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ? AND deleted_at IS NULL", userID)
	if category != nil && category.IsValid() {
		query = query.Where("category = ?", *category)
	}

	var integrationModels []models.IntegrationModel
	if err := query.Order("channel_code ASC").Find(&integrationModels).Error; err != nil {
		return nil, err
	}

	integrations := make([]integration.Integration, len(integrationModels))
	for i, model := range integrationModels {
		integrations[i] = *model.ToDomain()
	}
	return integrations, nil
}

// FindActive lists all active integrations across users
func (r *GormIntegrationRepository) FindActive(ctx context.Context) ([]integration.Integration, error) {
	var integrationModels []models.IntegrationModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND deleted_at IS NULL", integration.StatusActive).
		Order("user_id ASC, channel_code ASC").
		Find(&integrationModels).Error; err != nil {
		return nil, err
	}

	integrations := make([]integration.Integration, len(integrationModels))
	for i, model := range integrationModels {
		integrations[i] = *model.ToDomain()
	}
	return integrations, nil
}

// ExistsByUserAndChannel reports whether a non-deleted integration exists
func (r *GormIntegrationRepository) ExistsByUserAndChannel(ctx context.Context, userID uuid.UUID, code integration.ChannelCode) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.IntegrationModel{}).
		Where("user_id = ? AND channel_code = ? AND deleted_at IS NULL", userID, code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ---------------------------------------------------------------------------
// IntegrationWriter implementation
// ---------------------------------------------------------------------------

// Save creates or updates an integration
func (r *GormIntegrationRepository) Save(ctx context.Context, integ *integration.Integration) error {
	model := models.IntegrationModelFromDomain(integ)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete soft-deletes an integration
func (r *GormIntegrationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.IntegrationModel{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]any{
			"deleted_at": gorm.Expr("NOW()"),
			"status":     integration.StatusInactive,
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return integration.ErrIntegrationNotFound
	}
	return nil
}

// Ensure GormIntegrationRepository implements IntegrationRepository
var _ integration.IntegrationRepository = (*GormIntegrationRepository)(nil)
