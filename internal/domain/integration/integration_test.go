package integration

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIntegration(t *testing.T) {
	userID := uuid.New()

	t.Run("valid registration starts inactive", func(t *testing.T) {
		creds := map[string]string{"api_key": "k", "api_secret": "s"}
		integ, err := NewIntegration(userID, ChannelCodeTrendyol, "My Trendyol Store", creds)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, integ.ID)
		assert.Equal(t, userID, integ.UserID)
		assert.Equal(t, StatusInactive, integ.Status)
		assert.Equal(t, CategoryMarketplace, integ.Category)
		assert.Equal(t, "My Trendyol Store", integ.Name)
		assert.False(t, integ.IsActive())
		assert.Equal(t, DefaultSettings(), integ.Settings)
	})

	t.Run("empty name falls back to display name", func(t *testing.T) {
		integ, err := NewIntegration(userID, ChannelCodeHepsiburada, "", nil)
		require.NoError(t, err)
		assert.Equal(t, "Hepsiburada", integ.Name)
		assert.NotNil(t, integ.Credentials)
	})

	t.Run("nil user rejected", func(t *testing.T) {
		_, err := NewIntegration(uuid.Nil, ChannelCodeTrendyol, "x", nil)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown channel rejected", func(t *testing.T) {
		_, err := NewIntegration(userID, ChannelCode("EBAY"), "x", nil)
		assert.ErrorIs(t, err, ErrChannelNotSupported)
	})
}

func TestIntegration_Lifecycle(t *testing.T) {
	integ, err := NewIntegration(uuid.New(), ChannelCodeTrendyol, "", nil)
	require.NoError(t, err)

	integ.Activate()
	assert.Equal(t, StatusActive, integ.Status)
	assert.True(t, integ.IsActive())

	integ.Deactivate()
	assert.Equal(t, StatusInactive, integ.Status)
	integ.Deactivate() // idempotent
	assert.Equal(t, StatusInactive, integ.Status)

	integ.Activate()
	integ.MarkError()
	assert.Equal(t, StatusError, integ.Status)
	assert.False(t, integ.IsActive())
}

func TestIntegration_RecordHealth(t *testing.T) {
	integ, err := NewIntegration(uuid.New(), ChannelCodeTrendyol, "", nil)
	require.NoError(t, err)
	integ.Activate()

	integ.RecordHealth(true)
	require.NotNil(t, integ.LastHealthAt)
	assert.True(t, integ.LastHealthOK)
	assert.Equal(t, StatusActive, integ.Status)

	integ.RecordHealth(false)
	assert.False(t, integ.LastHealthOK)
	assert.Equal(t, StatusError, integ.Status)

	// failed probe on an inactive integration does not flip it to error
	integ.Deactivate()
	integ.RecordHealth(false)
	assert.Equal(t, StatusInactive, integ.Status)
}

func TestIntegration_SoftDelete(t *testing.T) {
	integ, err := NewIntegration(uuid.New(), ChannelCodeTrendyol, "", nil)
	require.NoError(t, err)
	integ.Activate()

	integ.SoftDelete()
	assert.NotNil(t, integ.DeletedAt)
	assert.Equal(t, StatusInactive, integ.Status)
	assert.False(t, integ.IsActive())
}

func TestSettings_Normalize(t *testing.T) {
	t.Run("zero value gets defaults", func(t *testing.T) {
		var s Settings
		s.Normalize()
		want := DefaultSettings()
		want.MaxRetries = 0 // zero is a valid retry budget, only negatives reset
		assert.Equal(t, want, s)
	})

	t.Run("negative retries reset to default", func(t *testing.T) {
		s := Settings{MaxRetries: -1}
		s.Normalize()
		assert.Equal(t, DefaultSettings().MaxRetries, s.MaxRetries)
	})

	t.Run("explicit values kept", func(t *testing.T) {
		s := Settings{
			Timeout:          10 * time.Second,
			HealthTimeout:    2 * time.Second,
			MaxRetries:       1,
			RetryBackoff:     500 * time.Millisecond,
			RateCeiling:      5,
			RateWindow:       time.Minute,
			BreakerThreshold: 3,
			BreakerCoolDown:  time.Minute,
			CacheTTL:         time.Minute,
		}
		want := s
		s.Normalize()
		assert.Equal(t, want, s)
	})

	t.Run("zero retries is a valid budget", func(t *testing.T) {
		s := Settings{MaxRetries: 0}
		s.Normalize()
		assert.Equal(t, 0, s.MaxRetries)
	})
}
