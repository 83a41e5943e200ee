package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prapazar/backend/internal/domain/integration"
	"github.com/prapazar/backend/internal/infrastructure/persistence/models"
)

// GormSyncLogRepository implements SyncLogRepository using GORM
type GormSyncLogRepository struct {
	db *gorm.DB
}

// NewGormSyncLogRepository creates a new GormSyncLogRepository
func NewGormSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

// Save persists a finished sync log. Logs are append-only, so this is always
// an insert.
func (r *GormSyncLogRepository) Save(ctx context.Context, log *integration.SyncLog) error {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	model := models.SyncLogModelFromDomain(log)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds a sync log by its ID
func (r *GormSyncLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.SyncLog, error) {
	var model models.SyncLogModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrIntegrationNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUser lists a user's sync logs, newest first
func (r *GormSyncLogRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter integration.SyncLogFilter) ([]integration.SyncLog, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.SyncLogModel{}).
		Where("user_id = ?", userID)
	base = applySyncLogFilter(base, filter)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base.Order("started_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var logModels []models.SyncLogModel
	if err := query.Find(&logModels).Error; err != nil {
		return nil, 0, err
	}

	logs := make([]integration.SyncLog, len(logModels))
	for i, model := range logModels {
		logs[i] = *model.ToDomain()
	}
	return logs, total, nil
}

// applySyncLogFilter applies filter options to the query
func applySyncLogFilter(query *gorm.DB, filter integration.SyncLogFilter) *gorm.DB {
	if filter.Operation != nil && filter.Operation.IsValid() {
		query = query.Where("operation = ?", *filter.Operation)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Since != nil {
		query = query.Where("started_at >= ?", *filter.Since)
	}
	return query
}

// Ensure GormSyncLogRepository implements SyncLogRepository
var _ integration.SyncLogRepository = (*GormSyncLogRepository)(nil)
