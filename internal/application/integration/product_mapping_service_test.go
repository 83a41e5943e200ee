package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prapazar/backend/internal/domain/integration"
)

func TestProductMappingService_CreateMapping(t *testing.T) {
	repo := newFakeMappingRepo()
	service := NewProductMappingService(repo)
	userID := uuid.New()
	productID := uuid.New()

	t.Run("creates mapping", func(t *testing.T) {
		mapping, err := service.CreateMapping(context.Background(), userID, productID, integration.ChannelCodeTrendyol, "TY-1")
		require.NoError(t, err)
		assert.True(t, mapping.SyncEnabled)
		assert.Equal(t, integration.SyncStatusPending, mapping.LastSyncStatus)
	})

	t.Run("rejects duplicate local product on same channel", func(t *testing.T) {
		_, err := service.CreateMapping(context.Background(), userID, productID, integration.ChannelCodeTrendyol, "TY-2")
		assert.ErrorIs(t, err, integration.ErrMappingExists)
	})

	t.Run("rejects external product already mapped elsewhere", func(t *testing.T) {
		_, err := service.CreateMapping(context.Background(), userID, uuid.New(), integration.ChannelCodeTrendyol, "TY-1")
		assert.ErrorIs(t, err, integration.ErrMappingExists)
	})

	t.Run("same product on another channel is fine", func(t *testing.T) {
		_, err := service.CreateMapping(context.Background(), userID, productID, integration.ChannelCodeHepsiburada, "HB-1")
		assert.NoError(t, err)
	})
}

func TestProductMappingService_Ownership(t *testing.T) {
	repo := newFakeMappingRepo()
	service := NewProductMappingService(repo)
	owner := uuid.New()

	mapping, err := service.CreateMapping(context.Background(), owner, uuid.New(), integration.ChannelCodeTrendyol, "TY-1")
	require.NoError(t, err)

	stranger := uuid.New()
	_, err = service.GetMapping(context.Background(), stranger, mapping.ID)
	assert.ErrorIs(t, err, integration.ErrMappingNotFound)

	err = service.DeleteMapping(context.Background(), stranger, mapping.ID)
	assert.ErrorIs(t, err, integration.ErrMappingNotFound)

	err = service.DisableSync(context.Background(), stranger, mapping.ID)
	assert.ErrorIs(t, err, integration.ErrMappingNotFound)

	_, err = service.GetMapping(context.Background(), owner, mapping.ID)
	assert.NoError(t, err)
}

func TestProductMappingService_SKUMappings(t *testing.T) {
	repo := newFakeMappingRepo()
	service := NewProductMappingService(repo)
	userID := uuid.New()
	productID := uuid.New()

	mapping, err := service.CreateMapping(context.Background(), userID, productID, integration.ChannelCodeTrendyol, "TY-1")
	require.NoError(t, err)

	require.NoError(t, service.AddSKUMapping(context.Background(), userID, mapping.ID, "SKU-RED-M", "EXT-100"))

	external, err := service.GetExternalSKU(context.Background(), userID, productID, integration.ChannelCodeTrendyol, "SKU-RED-M")
	require.NoError(t, err)
	assert.Equal(t, "EXT-100", external)

	_, err = service.GetExternalSKU(context.Background(), userID, productID, integration.ChannelCodeTrendyol, "SKU-BLUE-L")
	assert.ErrorIs(t, err, integration.ErrMappingNotFound)

	require.NoError(t, service.RemoveSKUMapping(context.Background(), userID, mapping.ID, "EXT-100"))
	_, err = service.GetExternalSKU(context.Background(), userID, productID, integration.ChannelCodeTrendyol, "SKU-RED-M")
	assert.Error(t, err)
}

func TestProductMappingService_Lookups(t *testing.T) {
	repo := newFakeMappingRepo()
	service := NewProductMappingService(repo)
	userID := uuid.New()
	productID := uuid.New()

	_, err := service.CreateMapping(context.Background(), userID, productID, integration.ChannelCodeTrendyol, "TY-1")
	require.NoError(t, err)

	local, err := service.GetLocalProductID(context.Background(), userID, integration.ChannelCodeTrendyol, "TY-1")
	require.NoError(t, err)
	assert.Equal(t, productID, local)

	external, err := service.GetExternalProductID(context.Background(), userID, productID, integration.ChannelCodeTrendyol)
	require.NoError(t, err)
	assert.Equal(t, "TY-1", external)

	_, err = service.GetLocalProductID(context.Background(), userID, integration.ChannelCodeHepsiburada, "TY-1")
	assert.ErrorIs(t, err, integration.ErrMappingNotFound)
}

func TestProductMappingService_SyncToggle(t *testing.T) {
	repo := newFakeMappingRepo()
	service := NewProductMappingService(repo)
	userID := uuid.New()

	mapping, err := service.CreateMapping(context.Background(), userID, uuid.New(), integration.ChannelCodeTrendyol, "TY-1")
	require.NoError(t, err)

	require.NoError(t, service.DisableSync(context.Background(), userID, mapping.ID))
	enabled, err := service.GetMappingsForSync(context.Background(), userID, integration.ChannelCodeTrendyol)
	require.NoError(t, err)
	assert.Empty(t, enabled)

	require.NoError(t, service.EnableSync(context.Background(), userID, mapping.ID))
	enabled, err = service.GetMappingsForSync(context.Background(), userID, integration.ChannelCodeTrendyol)
	require.NoError(t, err)
	assert.Len(t, enabled, 1)
}

func TestProductMappingService_CreateBatchMappings(t *testing.T) {
	repo := newFakeMappingRepo()
	service := NewProductMappingService(repo)
	userID := uuid.New()
	productID := uuid.New()

	_, err := service.CreateMapping(context.Background(), userID, productID, integration.ChannelCodeTrendyol, "TY-1")
	require.NoError(t, err)

	results, err := service.CreateBatchMappings(context.Background(), userID, []CreateMappingRequest{
		{LocalProductID: uuid.New(), ChannelCode: integration.ChannelCodeTrendyol, ExternalProductID: "TY-2"},
		{LocalProductID: productID, ChannelCode: integration.ChannelCodeTrendyol, ExternalProductID: "TY-3"},
		{LocalProductID: uuid.New(), ChannelCode: integration.ChannelCodeHepsiburada, ExternalProductID: "HB-1"},
	})

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success, "duplicate in the batch is reported, not fatal")
	assert.NotEmpty(t, results[1].Error)
	assert.True(t, results[2].Success)
}
