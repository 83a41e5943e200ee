package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/prapazar/backend/internal/domain/integration"
)

// SyncLogModel is the persistence model for the append-only SyncLog entity.
// Per-adapter results are stored as a JSONB array.
type SyncLogModel struct {
	ID           uuid.UUID                 `gorm:"type:uuid;primary_key"`
	UserID       uuid.UUID                 `gorm:"type:uuid;not null;index:idx_sync_logs_user,priority:1"`
	Operation    integration.SyncOperation `gorm:"type:varchar(30);not null;index"`
	Status       integration.SyncStatus    `gorm:"type:varchar(20);not null;index"`
	ResultsJSON  string                    `gorm:"type:jsonb;column:results"`
	TotalCount   int                       `gorm:"not null;default:0"`
	SuccessCount int                       `gorm:"not null;default:0"`
	FailureCount int                       `gorm:"not null;default:0"`
	SkipCount    int                       `gorm:"not null;default:0"`
	StartedAt    time.Time                 `gorm:"not null;index"`
	FinishedAt   time.Time                 `gorm:"not null"`
	CreatedAt    time.Time                 `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SyncLogModel) TableName() string {
	return "sync_logs"
}

// ToDomain converts the persistence model to a domain SyncLog entity.
func (m *SyncLogModel) ToDomain() *integration.SyncLog {
	log := &integration.SyncLog{
		ID:           m.ID,
		UserID:       m.UserID,
		Operation:    m.Operation,
		Status:       m.Status,
		Results:      make([]integration.SyncResult, 0),
		TotalCount:   m.TotalCount,
		SuccessCount: m.SuccessCount,
		FailureCount: m.FailureCount,
		SkipCount:    m.SkipCount,
		StartedAt:    m.StartedAt,
		FinishedAt:   m.FinishedAt,
		CreatedAt:    m.CreatedAt,
	}

	if m.ResultsJSON != "" {
		var results []integration.SyncResult
		if err := json.Unmarshal([]byte(m.ResultsJSON), &results); err == nil {
			log.Results = results
		}
	}

	return log
}

// FromDomain populates the persistence model from a domain SyncLog entity.
func (m *SyncLogModel) FromDomain(log *integration.SyncLog) {
	m.ID = log.ID
	m.UserID = log.UserID
	m.Operation = log.Operation
	m.Status = log.Status
	m.TotalCount = log.TotalCount
	m.SuccessCount = log.SuccessCount
	m.FailureCount = log.FailureCount
	m.SkipCount = log.SkipCount
	m.StartedAt = log.StartedAt
	m.FinishedAt = log.FinishedAt
	m.CreatedAt = log.CreatedAt

	if len(log.Results) > 0 {
		if resultsBytes, err := json.Marshal(log.Results); err == nil {
			m.ResultsJSON = string(resultsBytes)
		}
	} else {
		m.ResultsJSON = "[]"
	}
}

// SyncLogModelFromDomain creates a new persistence model from a domain SyncLog.
func SyncLogModelFromDomain(log *integration.SyncLog) *SyncLogModel {
	m := &SyncLogModel{}
	m.FromDomain(log)
	return m
}
