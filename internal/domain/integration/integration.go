package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Status
// ---------------------------------------------------------------------------

// Status represents the lifecycle state of an integration.
type Status string

const (
	// StatusInactive means the integration is registered but not connected
	StatusInactive Status = "inactive"
	// StatusActive means the integration is connected and participating in syncs
	StatusActive Status = "active"
	// StatusError means the last connect or health check failed
	StatusError Status = "error"
	// StatusMaintenance means the channel is known to be down for maintenance
	StatusMaintenance Status = "maintenance"
	// StatusSuspended means the seller account is suspended on the channel
	StatusSuspended Status = "suspended"
)

// IsValid returns true if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusInactive, StatusActive, StatusError, StatusMaintenance, StatusSuspended:
		return true
	default:
		return false
	}
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

// Settings holds the per-integration resilience tunables. Zero values are
// replaced by defaults in Normalize so a stored row with missing settings
// still behaves.
type Settings struct {
	// Timeout bounds a single adapter call
	Timeout time.Duration
	// HealthTimeout bounds a health check probe
	HealthTimeout time.Duration
	// MaxRetries is the retry budget per adapter call (attempts = MaxRetries + 1)
	MaxRetries int
	// RetryBackoff is the base backoff, doubled per retry
	RetryBackoff time.Duration
	// RateCeiling is the max requests admitted per RateWindow
	RateCeiling int
	// RateWindow is the sliding rate-limit window
	RateWindow time.Duration
	// BreakerThreshold is the consecutive failure count that opens the breaker
	BreakerThreshold int
	// BreakerCoolDown is how long the breaker stays open before a probe
	BreakerCoolDown time.Duration
	// CacheTTL is how long idempotent reads are served from cache
	CacheTTL time.Duration
}

// DefaultSettings mirrors the defaults the original hub shipped with.
func DefaultSettings() Settings {
	return Settings{
		Timeout:          30 * time.Second,
		HealthTimeout:    5 * time.Second,
		MaxRetries:       3,
		RetryBackoff:     time.Second,
		RateCeiling:      1000,
		RateWindow:       time.Hour,
		BreakerThreshold: 5,
		BreakerCoolDown:  5 * time.Minute,
		CacheTTL:         5 * time.Minute,
	}
}

// Normalize fills zero or negative fields with defaults.
func (s *Settings) Normalize() {
	d := DefaultSettings()
	if s.Timeout <= 0 {
		s.Timeout = d.Timeout
	}
	if s.HealthTimeout <= 0 {
		s.HealthTimeout = d.HealthTimeout
	}
	if s.MaxRetries < 0 {
		s.MaxRetries = d.MaxRetries
	}
	if s.RetryBackoff <= 0 {
		s.RetryBackoff = d.RetryBackoff
	}
	if s.RateCeiling <= 0 {
		s.RateCeiling = d.RateCeiling
	}
	if s.RateWindow <= 0 {
		s.RateWindow = d.RateWindow
	}
	if s.BreakerThreshold <= 0 {
		s.BreakerThreshold = d.BreakerThreshold
	}
	if s.BreakerCoolDown <= 0 {
		s.BreakerCoolDown = d.BreakerCoolDown
	}
	if s.CacheTTL <= 0 {
		s.CacheTTL = d.CacheTTL
	}
}

// ---------------------------------------------------------------------------
// Integration Aggregate
// ---------------------------------------------------------------------------

// Integration is the aggregate root for one seller's configuration of one
// external channel. Credentials are an opaque map owned by the concrete
// adapter; the hub never inspects or logs their values.
type Integration struct {
	// ID is the unique identifier of this integration
	ID uuid.UUID
	// UserID is the seller this integration belongs to
	UserID uuid.UUID
	// ChannelCode identifies which channel this integration targets
	ChannelCode ChannelCode
	// Name is the seller-facing display name
	Name string
	// Category is derived from the channel code at creation
	Category Category
	// Credentials is the opaque credential map passed to the adapter factory
	Credentials map[string]string
	// Settings holds the resilience tunables
	Settings Settings
	// Status is the lifecycle state
	Status Status
	// LastHealthAt is when the last health check ran
	LastHealthAt *time.Time
	// LastHealthOK is the result of the last health check
	LastHealthOK bool
	// CreatedAt is when this integration was registered
	CreatedAt time.Time
	// UpdatedAt is when this integration was last modified
	UpdatedAt time.Time
	// DeletedAt marks a soft-deleted integration
	DeletedAt *time.Time
}

// NewIntegration registers a new integration in the inactive state.
func NewIntegration(userID uuid.UUID, code ChannelCode, name string, credentials map[string]string) (*Integration, error) {
	if userID == uuid.Nil {
		return nil, ErrValidation
	}
	if !code.IsValid() {
		return nil, ErrChannelNotSupported
	}
	if name == "" {
		name = code.DisplayName()
	}
	if credentials == nil {
		credentials = make(map[string]string)
	}

	now := time.Now()
	settings := DefaultSettings()
	return &Integration{
		ID:          uuid.New(),
		UserID:      userID,
		ChannelCode: code,
		Name:        name,
		Category:    CategoryOf(code),
		Credentials: credentials,
		Settings:    settings,
		Status:      StatusInactive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsActive reports whether the integration participates in syncs.
func (i *Integration) IsActive() bool {
	return i.Status == StatusActive && i.DeletedAt == nil
}

// Activate marks the integration active. Callers connect first; a failed
// connect must leave the previous status untouched.
func (i *Integration) Activate() {
	i.Status = StatusActive
	i.UpdatedAt = time.Now()
}

// Deactivate marks the integration inactive. Idempotent.
func (i *Integration) Deactivate() {
	i.Status = StatusInactive
	i.UpdatedAt = time.Now()
}

// MarkError records a failed connect or health check.
func (i *Integration) MarkError() {
	i.Status = StatusError
	i.UpdatedAt = time.Now()
}

// RecordHealth stores the outcome of a health probe without changing status
// unless the probe failed for an active integration.
func (i *Integration) RecordHealth(ok bool) {
	now := time.Now()
	i.LastHealthAt = &now
	i.LastHealthOK = ok
	if !ok && i.Status == StatusActive {
		i.Status = StatusError
	}
	i.UpdatedAt = now
}

// SoftDelete hides the integration from listings and frees the (user,
// channel) slot for re-registration.
func (i *Integration) SoftDelete() {
	now := time.Now()
	i.DeletedAt = &now
	i.Status = StatusInactive
	i.UpdatedAt = now
}

// ---------------------------------------------------------------------------
// IntegrationRepository Interface
// ---------------------------------------------------------------------------

// IntegrationReader defines the interface for reading integrations
type IntegrationReader interface {
	// FindByID finds an integration by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Integration, error)

	// FindByUserAndChannel finds a user's non-deleted integration for a channel
	FindByUserAndChannel(ctx context.Context, userID uuid.UUID, code ChannelCode) (*Integration, error)
}

// IntegrationFinder defines the interface for listing integrations
type IntegrationFinder interface {
	// FindByUser lists a user's non-deleted integrations, optionally by category
	FindByUser(ctx context.Context, userID uuid.UUID, category *Category) ([]Integration, error)

	// FindActive lists all active integrations across users
	FindActive(ctx context.Context) ([]Integration, error)

	// ExistsByUserAndChannel reports whether a non-deleted integration exists
	ExistsByUserAndChannel(ctx context.Context, userID uuid.UUID, code ChannelCode) (bool, error)
}

// IntegrationWriter defines the interface for persisting integrations
type IntegrationWriter interface {
	// Save creates or updates an integration
	Save(ctx context.Context, integration *Integration) error

	// Delete soft-deletes an integration
	Delete(ctx context.Context, id uuid.UUID) error
}

// IntegrationRepository defines the full interface for integration persistence
type IntegrationRepository interface {
	IntegrationReader
	IntegrationFinder
	IntegrationWriter
}
