package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appintegration "github.com/prapazar/backend/internal/application/integration"
	"github.com/prapazar/backend/internal/domain/integration"
	"github.com/prapazar/backend/internal/interfaces/http/dto"
)

// MappingHandler exposes product mapping management endpoints.
type MappingHandler struct {
	BaseHandler
	mappings *appintegration.ProductMappingService
}

// NewMappingHandler creates a new MappingHandler.
func NewMappingHandler(mappings *appintegration.ProductMappingService) *MappingHandler {
	return &MappingHandler{mappings: mappings}
}

// RegisterRoutes registers mapping routes on the API group.
func (h *MappingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	mappings := rg.Group("/mappings")
	{
		mappings.POST("", h.Create)
		mappings.POST("/batch", h.CreateBatch)
		mappings.GET("", h.List)
		mappings.GET("/:id", h.Get)
		mappings.DELETE("/:id", h.Delete)
		mappings.POST("/:id/skus", h.AddSKU)
		mappings.DELETE("/:id/skus/:externalSku", h.RemoveSKU)
		mappings.POST("/:id/sync/enable", h.EnableSync)
		mappings.POST("/:id/sync/disable", h.DisableSync)
	}
}

// CreateMappingRequest is the payload for creating a mapping.
type CreateMappingRequest struct {
	LocalProductID    uuid.UUID `json:"local_product_id" binding:"required"`
	ChannelCode       string    `json:"channel_code" binding:"required"`
	ExternalProductID string    `json:"external_product_id" binding:"required"`
}

// CreateBatchRequest is the payload for creating multiple mappings.
type CreateBatchRequest struct {
	Mappings []CreateMappingRequest `json:"mappings" binding:"required,min=1,max=500"`
}

// AddSKURequest is the payload for adding a SKU-level mapping.
type AddSKURequest struct {
	LocalSKU    string `json:"local_sku" binding:"required"`
	ExternalSKU string `json:"external_sku" binding:"required"`
}

// Create creates a single product mapping.
func (h *MappingHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "Invalid request body: "+err.Error())
		return
	}

	mapping, err := h.mappings.CreateMapping(
		c.Request.Context(), userID, req.LocalProductID,
		integration.ChannelCode(req.ChannelCode), req.ExternalProductID,
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, appintegration.ToProductMappingResponse(mapping))
}

// CreateBatch creates multiple mappings, reporting per-item outcomes.
func (h *MappingHandler) CreateBatch(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "Invalid request body: "+err.Error())
		return
	}

	requests := make([]appintegration.CreateMappingRequest, len(req.Mappings))
	for i, m := range req.Mappings {
		requests[i] = appintegration.CreateMappingRequest{
			LocalProductID:    m.LocalProductID,
			ChannelCode:       integration.ChannelCode(m.ChannelCode),
			ExternalProductID: m.ExternalProductID,
		}
	}

	results, err := h.mappings.CreateBatchMappings(c.Request.Context(), userID, requests)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, results)
}

// List lists the user's mappings with optional filters.
func (h *MappingHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var list dto.ListRequest
	if err := c.ShouldBindQuery(&list); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	list.Normalize()

	filter := integration.ProductMappingFilter{
		SearchKeyword: list.Search,
		Page:          list.Page,
		PageSize:      list.PageSize,
	}
	if raw := c.Query("channel"); raw != "" {
		code := integration.ChannelCode(raw)
		if !code.IsValid() {
			h.BadRequest(c, "Unknown channel: "+raw)
			return
		}
		filter.ChannelCode = &code
	}
	if raw := c.Query("sync_enabled"); raw != "" {
		enabled := raw == "true"
		filter.SyncEnabled = &enabled
	}

	mappings, total, err := h.mappings.ListMappings(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, appintegration.ToProductMappingResponses(mappings), total, filter.Page, filter.PageSize)
}

// Get returns one mapping by ID.
func (h *MappingHandler) Get(c *gin.Context) {
	userID, mappingID, ok := h.userAndID(c)
	if !ok {
		return
	}

	mapping, err := h.mappings.GetMapping(c.Request.Context(), userID, mappingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appintegration.ToProductMappingResponse(mapping))
}

// Delete removes a mapping.
func (h *MappingHandler) Delete(c *gin.Context) {
	userID, mappingID, ok := h.userAndID(c)
	if !ok {
		return
	}

	if err := h.mappings.DeleteMapping(c.Request.Context(), userID, mappingID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddSKU adds a SKU-level mapping to an existing mapping.
func (h *MappingHandler) AddSKU(c *gin.Context) {
	userID, mappingID, ok := h.userAndID(c)
	if !ok {
		return
	}

	var req AddSKURequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "Invalid request body: "+err.Error())
		return
	}

	if err := h.mappings.AddSKUMapping(c.Request.Context(), userID, mappingID, req.LocalSKU, req.ExternalSKU); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RemoveSKU removes a SKU-level mapping by its external SKU.
func (h *MappingHandler) RemoveSKU(c *gin.Context) {
	userID, mappingID, ok := h.userAndID(c)
	if !ok {
		return
	}

	externalSKU := c.Param("externalSku")
	if externalSKU == "" {
		h.BadRequest(c, "External SKU is required")
		return
	}

	if err := h.mappings.RemoveSKUMapping(c.Request.Context(), userID, mappingID, externalSKU); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// EnableSync turns automatic synchronization on for a mapping.
func (h *MappingHandler) EnableSync(c *gin.Context) {
	userID, mappingID, ok := h.userAndID(c)
	if !ok {
		return
	}

	if err := h.mappings.EnableSync(c.Request.Context(), userID, mappingID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// DisableSync turns automatic synchronization off for a mapping.
func (h *MappingHandler) DisableSync(c *gin.Context) {
	userID, mappingID, ok := h.userAndID(c)
	if !ok {
		return
	}

	if err := h.mappings.DisableSync(c.Request.Context(), userID, mappingID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *MappingHandler) userAndID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid mapping ID")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}
