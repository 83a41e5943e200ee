package integration

import (
	"context"

	"github.com/google/uuid"

	"github.com/prapazar/backend/internal/domain/integration"
)

// ProductMappingService manages product mappings by hand, alongside the
// automatic upserts the orchestrator does on successful pushes.
type ProductMappingService struct {
	mappings integration.ProductMappingRepository
}

// NewProductMappingService creates a new ProductMappingService.
func NewProductMappingService(mappings integration.ProductMappingRepository) *ProductMappingService {
	return &ProductMappingService{mappings: mappings}
}

// ---------------------------------------------------------------------------
// CRUD Operations
// ---------------------------------------------------------------------------

// CreateMapping creates a new product mapping. An external product already
// mapped to another local product is rejected.
func (s *ProductMappingService) CreateMapping(
	ctx context.Context,
	userID uuid.UUID,
	localProductID uuid.UUID,
	code integration.ChannelCode,
	externalProductID string,
) (*integration.ProductMapping, error) {
	if _, err := s.mappings.FindByLocalProductAndChannel(ctx, userID, localProductID, code); err == nil {
		return nil, integration.ErrMappingExists
	}

	exists, err := s.mappings.ExistsByExternalProduct(ctx, userID, code, externalProductID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, integration.ErrMappingExists
	}

	mapping, err := integration.NewProductMapping(userID, localProductID, code, externalProductID)
	if err != nil {
		return nil, err
	}

	if err := s.mappings.Save(ctx, mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

// UpdateMapping validates and persists a modified mapping.
func (s *ProductMappingService) UpdateMapping(ctx context.Context, mapping *integration.ProductMapping) error {
	if err := mapping.Validate(); err != nil {
		return err
	}
	return s.mappings.Save(ctx, mapping)
}

// DeleteMapping deletes a mapping after verifying ownership.
func (s *ProductMappingService) DeleteMapping(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.findOwned(ctx, userID, id); err != nil {
		return err
	}
	return s.mappings.Delete(ctx, id)
}

// GetMapping retrieves a mapping by ID after verifying ownership.
func (s *ProductMappingService) GetMapping(ctx context.Context, userID, id uuid.UUID) (*integration.ProductMapping, error) {
	return s.findOwned(ctx, userID, id)
}

// ListMappings lists mappings with filtering and pagination.
func (s *ProductMappingService) ListMappings(
	ctx context.Context,
	userID uuid.UUID,
	filter integration.ProductMappingFilter,
) ([]integration.ProductMapping, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	mappings, err := s.mappings.FindAll(ctx, userID, filter)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.mappings.Count(ctx, userID, filter)
	if err != nil {
		return nil, 0, err
	}
	return mappings, count, nil
}

// ---------------------------------------------------------------------------
// SKU Mapping Operations
// ---------------------------------------------------------------------------

// AddSKUMapping adds a SKU-level mapping to a product mapping.
func (s *ProductMappingService) AddSKUMapping(ctx context.Context, userID, mappingID uuid.UUID, localSKU, externalSKU string) error {
	mapping, err := s.findOwned(ctx, userID, mappingID)
	if err != nil {
		return err
	}
	if err := mapping.AddSKUMapping(localSKU, externalSKU); err != nil {
		return err
	}
	return s.mappings.Save(ctx, mapping)
}

// RemoveSKUMapping removes a SKU mapping by its external SKU.
func (s *ProductMappingService) RemoveSKUMapping(ctx context.Context, userID, mappingID uuid.UUID, externalSKU string) error {
	mapping, err := s.findOwned(ctx, userID, mappingID)
	if err != nil {
		return err
	}
	mapping.RemoveSKUMapping(externalSKU)
	return s.mappings.Save(ctx, mapping)
}

// ---------------------------------------------------------------------------
// Lookup Operations
// ---------------------------------------------------------------------------

// GetLocalProductID returns the local product for an external product.
func (s *ProductMappingService) GetLocalProductID(
	ctx context.Context,
	userID uuid.UUID,
	code integration.ChannelCode,
	externalProductID string,
) (uuid.UUID, error) {
	mapping, err := s.mappings.FindByExternalProduct(ctx, userID, code, externalProductID)
	if err != nil {
		return uuid.Nil, err
	}
	return mapping.LocalProductID, nil
}

// GetExternalProductID returns the channel-side product ID for a local product.
func (s *ProductMappingService) GetExternalProductID(
	ctx context.Context,
	userID uuid.UUID,
	localProductID uuid.UUID,
	code integration.ChannelCode,
) (string, error) {
	mapping, err := s.mappings.FindByLocalProductAndChannel(ctx, userID, localProductID, code)
	if err != nil {
		return "", err
	}
	return mapping.ExternalProductID, nil
}

// GetExternalSKU returns the channel-side SKU for a local SKU.
func (s *ProductMappingService) GetExternalSKU(
	ctx context.Context,
	userID uuid.UUID,
	localProductID uuid.UUID,
	code integration.ChannelCode,
	localSKU string,
) (string, error) {
	mapping, err := s.mappings.FindByLocalProductAndChannel(ctx, userID, localProductID, code)
	if err != nil {
		return "", err
	}
	external, found := mapping.ExternalSKUFor(localSKU)
	if !found {
		return "", integration.ErrMappingNotFound
	}
	return external, nil
}

// ---------------------------------------------------------------------------
// Sync Operations
// ---------------------------------------------------------------------------

// EnableSync enables automatic synchronization for a mapping.
func (s *ProductMappingService) EnableSync(ctx context.Context, userID, mappingID uuid.UUID) error {
	mapping, err := s.findOwned(ctx, userID, mappingID)
	if err != nil {
		return err
	}
	mapping.EnableSync()
	return s.mappings.Save(ctx, mapping)
}

// DisableSync disables automatic synchronization for a mapping.
func (s *ProductMappingService) DisableSync(ctx context.Context, userID, mappingID uuid.UUID) error {
	mapping, err := s.findOwned(ctx, userID, mappingID)
	if err != nil {
		return err
	}
	mapping.DisableSync()
	return s.mappings.Save(ctx, mapping)
}

// GetMappingsForSync returns the sync-enabled mappings for a channel.
func (s *ProductMappingService) GetMappingsForSync(
	ctx context.Context,
	userID uuid.UUID,
	code integration.ChannelCode,
) ([]integration.ProductMapping, error) {
	return s.mappings.FindSyncEnabled(ctx, userID, code)
}

// ---------------------------------------------------------------------------
// Batch Operations
// ---------------------------------------------------------------------------

// CreateBatchMappings creates multiple mappings, collecting per-item results
// instead of aborting the batch on the first failure.
func (s *ProductMappingService) CreateBatchMappings(
	ctx context.Context,
	userID uuid.UUID,
	requests []CreateMappingRequest,
) ([]CreateMappingResult, error) {
	results := make([]CreateMappingResult, len(requests))
	for i, req := range requests {
		result := CreateMappingResult{
			LocalProductID:    req.LocalProductID,
			ChannelCode:       req.ChannelCode,
			ExternalProductID: req.ExternalProductID,
		}

		mapping, err := s.CreateMapping(ctx, userID, req.LocalProductID, req.ChannelCode, req.ExternalProductID)
		if err != nil {
			result.Error = err.Error()
		} else {
			result.Success = true
			result.MappingID = mapping.ID
		}
		results[i] = result
	}
	return results, nil
}

// findOwned loads a mapping and verifies it belongs to the user.
func (s *ProductMappingService) findOwned(ctx context.Context, userID, id uuid.UUID) (*integration.ProductMapping, error) {
	mapping, err := s.mappings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mapping.UserID != userID {
		return nil, integration.ErrMappingNotFound
	}
	return mapping, nil
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// CreateMappingRequest is one item of a batch mapping request.
type CreateMappingRequest struct {
	LocalProductID    uuid.UUID
	ChannelCode       integration.ChannelCode
	ExternalProductID string
}

// CreateMappingResult is the per-item outcome of a batch mapping request.
type CreateMappingResult struct {
	LocalProductID    uuid.UUID               `json:"local_product_id"`
	ChannelCode       integration.ChannelCode `json:"channel_code"`
	ExternalProductID string                  `json:"external_product_id"`
	MappingID         uuid.UUID               `json:"mapping_id,omitempty"`
	Success           bool                    `json:"success"`
	Error             string                  `json:"error,omitempty"`
}
