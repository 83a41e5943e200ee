package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prapazar/backend/internal/domain/integration"
)

func TestAdapterRegistry_Register(t *testing.T) {
	repo := newFakeIntegrationRepo()
	registry := newTestRegistry(repo, map[integration.ChannelCode]*fakeAdapter{
		integration.ChannelCodeTrendyol: newFakeAdapter(integration.ChannelCodeTrendyol),
	})
	userID := uuid.New()

	t.Run("registers inactive with derived name", func(t *testing.T) {
		integ, err := registry.Register(context.Background(), userID, integration.ChannelCodeTrendyol, "", map[string]string{"api_key": "k"}, nil)
		require.NoError(t, err)
		assert.Equal(t, integration.StatusInactive, integ.Status)
		assert.Equal(t, "Trendyol", integ.Name)
	})

	t.Run("rejects second registration for same channel", func(t *testing.T) {
		_, err := registry.Register(context.Background(), userID, integration.ChannelCodeTrendyol, "again", nil, nil)
		assert.ErrorIs(t, err, integration.ErrDuplicateIntegration)
	})

	t.Run("rejects channel without a factory", func(t *testing.T) {
		_, err := registry.Register(context.Background(), userID, integration.ChannelCodeN11, "n11", nil, nil)
		assert.ErrorIs(t, err, integration.ErrChannelNotSupported)
	})

	t.Run("normalizes custom settings", func(t *testing.T) {
		settings := integration.Settings{MaxRetries: -1}
		integ, err := registry.Register(context.Background(), uuid.New(), integration.ChannelCodeTrendyol, "custom", nil, &settings)
		require.NoError(t, err)
		assert.Equal(t, integration.DefaultSettings().MaxRetries, integ.Settings.MaxRetries)
	})
}

func TestAdapterRegistry_Activate(t *testing.T) {
	t.Run("connect failure leaves stored status untouched", func(t *testing.T) {
		repo := newFakeIntegrationRepo()
		adapter := newFakeAdapter(integration.ChannelCodeTrendyol)
		adapter.connectErr = integration.ErrAuthenticationFailed
		registry := newTestRegistry(repo, map[integration.ChannelCode]*fakeAdapter{
			integration.ChannelCodeTrendyol: adapter,
		})
		userID := uuid.New()

		integ, err := registry.Register(context.Background(), userID, integration.ChannelCodeTrendyol, "", nil, nil)
		require.NoError(t, err)

		_, err = registry.Activate(context.Background(), userID, integ.ID)
		assert.ErrorIs(t, err, integration.ErrAuthenticationFailed)

		stored, err := repo.FindByID(context.Background(), integ.ID)
		require.NoError(t, err)
		assert.Equal(t, integration.StatusInactive, stored.Status)
		_, live := registry.Live(userID, integ.ID)
		assert.False(t, live)
	})

	t.Run("successful connect goes live", func(t *testing.T) {
		repo := newFakeIntegrationRepo()
		registry := newTestRegistry(repo, map[integration.ChannelCode]*fakeAdapter{
			integration.ChannelCodeTrendyol: newFakeAdapter(integration.ChannelCodeTrendyol),
		})
		userID := uuid.New()

		integ, err := registry.Register(context.Background(), userID, integration.ChannelCodeTrendyol, "", nil, nil)
		require.NoError(t, err)

		activated, err := registry.Activate(context.Background(), userID, integ.ID)
		require.NoError(t, err)
		assert.Equal(t, integration.StatusActive, activated.Status)

		entry, live := registry.Live(userID, integ.ID)
		require.True(t, live)
		assert.NotNil(t, entry.Breaker)
		assert.NotNil(t, entry.Limiter)
	})

	t.Run("foreign integration is invisible", func(t *testing.T) {
		repo := newFakeIntegrationRepo()
		registry := newTestRegistry(repo, map[integration.ChannelCode]*fakeAdapter{
			integration.ChannelCodeTrendyol: newFakeAdapter(integration.ChannelCodeTrendyol),
		})

		owner := uuid.New()
		integ, err := registry.Register(context.Background(), owner, integration.ChannelCodeTrendyol, "", nil, nil)
		require.NoError(t, err)

		_, err = registry.Activate(context.Background(), uuid.New(), integ.ID)
		assert.ErrorIs(t, err, integration.ErrIntegrationNotFound)
	})
}

func TestAdapterRegistry_Deactivate(t *testing.T) {
	repo := newFakeIntegrationRepo()
	registry := newTestRegistry(repo, map[integration.ChannelCode]*fakeAdapter{
		integration.ChannelCodeTrendyol: newFakeAdapter(integration.ChannelCodeTrendyol),
	})
	userID := uuid.New()

	integ, err := registry.Register(context.Background(), userID, integration.ChannelCodeTrendyol, "", nil, nil)
	require.NoError(t, err)
	_, err = registry.Activate(context.Background(), userID, integ.ID)
	require.NoError(t, err)

	require.NoError(t, registry.Deactivate(context.Background(), userID, integ.ID))
	_, live := registry.Live(userID, integ.ID)
	assert.False(t, live)

	// deactivating twice is a no-op
	require.NoError(t, registry.Deactivate(context.Background(), userID, integ.ID))

	stored, err := repo.FindByID(context.Background(), integ.ID)
	require.NoError(t, err)
	assert.Equal(t, integration.StatusInactive, stored.Status)
}

func TestAdapterRegistry_RemoveFreesChannelSlot(t *testing.T) {
	repo := newFakeIntegrationRepo()
	registry := newTestRegistry(repo, map[integration.ChannelCode]*fakeAdapter{
		integration.ChannelCodeTrendyol: newFakeAdapter(integration.ChannelCodeTrendyol),
	})
	userID := uuid.New()

	integ, err := registry.Register(context.Background(), userID, integration.ChannelCodeTrendyol, "", nil, nil)
	require.NoError(t, err)
	require.NoError(t, registry.Remove(context.Background(), userID, integ.ID))

	_, err = registry.Register(context.Background(), userID, integration.ChannelCodeTrendyol, "second", nil, nil)
	assert.NoError(t, err, "soft delete frees the slot")
}

func TestAdapterRegistry_Restore(t *testing.T) {
	repo := newFakeIntegrationRepo()
	userID := uuid.New()

	active := newTestIntegration(userID, integration.ChannelCodeTrendyol)
	active.Activate()
	require.NoError(t, repo.Save(context.Background(), active))

	inactive := newTestIntegration(userID, integration.ChannelCodeHepsiburada)
	require.NoError(t, repo.Save(context.Background(), inactive))

	orphan := newTestIntegration(userID, integration.ChannelCodeN11)
	orphan.Activate()
	require.NoError(t, repo.Save(context.Background(), orphan))

	// only trendyol has a factory; the stored n11 row is skipped
	registry := newTestRegistry(repo, map[integration.ChannelCode]*fakeAdapter{
		integration.ChannelCodeTrendyol: newFakeAdapter(integration.ChannelCodeTrendyol),
	})
	require.NoError(t, registry.Restore(context.Background()))

	entries := registry.ListActive(userID)
	require.Len(t, entries, 1)
	assert.Equal(t, integration.ChannelCodeTrendyol, entries[0].Integration.ChannelCode)
}

func TestAdapterRegistry_ListActiveFiltersByCategory(t *testing.T) {
	repo := newFakeIntegrationRepo()
	registry := newTestRegistry(repo, map[integration.ChannelCode]*fakeAdapter{
		integration.ChannelCodeTrendyol:    newFakeAdapter(integration.ChannelCodeTrendyol),
		integration.ChannelCodeHepsiburada: newFakeAdapter(integration.ChannelCodeHepsiburada),
		integration.ChannelCodeArasKargo:   newFakeAdapter(integration.ChannelCodeArasKargo),
	})
	userID := uuid.New()

	for _, code := range []integration.ChannelCode{
		integration.ChannelCodeTrendyol,
		integration.ChannelCodeHepsiburada,
		integration.ChannelCodeArasKargo,
	} {
		integ, err := registry.Register(context.Background(), userID, code, "", nil, nil)
		require.NoError(t, err)
		_, err = registry.Activate(context.Background(), userID, integ.ID)
		require.NoError(t, err)
	}

	marketplace := registry.ListActive(userID, integration.CategoryMarketplace, integration.CategoryEcommerce)
	assert.Len(t, marketplace, 2, "cargo channels are outside the sync categories")

	all := registry.ListActive(userID)
	assert.Len(t, all, 3)

	other := registry.ListActive(uuid.New())
	assert.Empty(t, other)
}
