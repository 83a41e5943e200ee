package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/prapazar/backend/internal/domain/integration"
)

// IntegrationModel is the persistence model for the Integration aggregate.
// Credentials and settings are stored as JSONB blobs; credentials are opaque
// to the hub and must never appear in logs.
type IntegrationModel struct {
	ID              uuid.UUID               `gorm:"type:uuid;primary_key"`
	UserID          uuid.UUID               `gorm:"type:uuid;not null;index:idx_integrations_user,priority:1;index:idx_integrations_user_channel,priority:1"`
	ChannelCode     integration.ChannelCode `gorm:"type:varchar(30);not null;index:idx_integrations_user_channel,priority:2"`
	Name            string                  `gorm:"type:varchar(255);not null"`
	Category        integration.Category    `gorm:"type:varchar(20);not null;index"`
	CredentialsJSON string                  `gorm:"type:jsonb;column:credentials"`
	SettingsJSON    string                  `gorm:"type:jsonb;column:settings"`
	Status          integration.Status      `gorm:"type:varchar(20);not null;default:'inactive';index"`
	LastHealthAt    *time.Time
	LastHealthOK    bool       `gorm:"not null;default:false"`
	CreatedAt       time.Time  `gorm:"not null"`
	UpdatedAt       time.Time  `gorm:"not null"`
	DeletedAt       *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (IntegrationModel) TableName() string {
	return "integrations"
}

// settingsBlob is the stored shape of the settings JSONB column. MaxRetries
// is a pointer because an explicit zero means "no retries" and must survive
// the round trip, while an absent field falls back to the default budget.
type settingsBlob struct {
	Timeout          time.Duration `json:"timeout"`
	HealthTimeout    time.Duration `json:"health_timeout"`
	MaxRetries       *int          `json:"max_retries"`
	RetryBackoff     time.Duration `json:"retry_backoff"`
	RateCeiling      int           `json:"rate_ceiling"`
	RateWindow       time.Duration `json:"rate_window"`
	BreakerThreshold int           `json:"breaker_threshold"`
	BreakerCoolDown  time.Duration `json:"breaker_cool_down"`
	CacheTTL         time.Duration `json:"cache_ttl"`
}

func (b settingsBlob) toDomain() integration.Settings {
	retries := -1
	if b.MaxRetries != nil {
		retries = *b.MaxRetries
	}
	return integration.Settings{
		Timeout:          b.Timeout,
		HealthTimeout:    b.HealthTimeout,
		MaxRetries:       retries,
		RetryBackoff:     b.RetryBackoff,
		RateCeiling:      b.RateCeiling,
		RateWindow:       b.RateWindow,
		BreakerThreshold: b.BreakerThreshold,
		BreakerCoolDown:  b.BreakerCoolDown,
		CacheTTL:         b.CacheTTL,
	}
}

func settingsBlobFrom(s integration.Settings) settingsBlob {
	retries := s.MaxRetries
	return settingsBlob{
		Timeout:          s.Timeout,
		HealthTimeout:    s.HealthTimeout,
		MaxRetries:       &retries,
		RetryBackoff:     s.RetryBackoff,
		RateCeiling:      s.RateCeiling,
		RateWindow:       s.RateWindow,
		BreakerThreshold: s.BreakerThreshold,
		BreakerCoolDown:  s.BreakerCoolDown,
		CacheTTL:         s.CacheTTL,
	}
}

// ToDomain converts the persistence model to a domain Integration aggregate.
func (m *IntegrationModel) ToDomain() *integration.Integration {
	integ := &integration.Integration{
		ID:           m.ID,
		UserID:       m.UserID,
		ChannelCode:  m.ChannelCode,
		Name:         m.Name,
		Category:     m.Category,
		Credentials:  make(map[string]string),
		Status:       m.Status,
		LastHealthAt: m.LastHealthAt,
		LastHealthOK: m.LastHealthOK,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		DeletedAt:    m.DeletedAt,
	}

	if m.CredentialsJSON != "" {
		var creds map[string]string
		if err := json.Unmarshal([]byte(m.CredentialsJSON), &creds); err == nil {
			integ.Credentials = creds
		}
	}
	if m.SettingsJSON != "" {
		var blob settingsBlob
		if err := json.Unmarshal([]byte(m.SettingsJSON), &blob); err == nil {
			integ.Settings = blob.toDomain()
		}
	}
	// stored rows with missing or partial settings still get sane tunables
	integ.Settings.Normalize()

	return integ
}

// FromDomain populates the persistence model from a domain Integration aggregate.
func (m *IntegrationModel) FromDomain(integ *integration.Integration) {
	m.ID = integ.ID
	m.UserID = integ.UserID
	m.ChannelCode = integ.ChannelCode
	m.Name = integ.Name
	m.Category = integ.Category
	m.Status = integ.Status
	m.LastHealthAt = integ.LastHealthAt
	m.LastHealthOK = integ.LastHealthOK
	m.CreatedAt = integ.CreatedAt
	m.UpdatedAt = integ.UpdatedAt
	m.DeletedAt = integ.DeletedAt

	if credsBytes, err := json.Marshal(integ.Credentials); err == nil {
		m.CredentialsJSON = string(credsBytes)
	} else {
		m.CredentialsJSON = "{}"
	}
	if settingsBytes, err := json.Marshal(settingsBlobFrom(integ.Settings)); err == nil {
		m.SettingsJSON = string(settingsBytes)
	} else {
		m.SettingsJSON = "{}"
	}
}

// IntegrationModelFromDomain creates a new persistence model from a domain Integration.
func IntegrationModelFromDomain(integ *integration.Integration) *IntegrationModel {
	m := &IntegrationModel{}
	m.FromDomain(integ)
	return m
}
